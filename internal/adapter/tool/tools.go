package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
)

const (
	financialPeriods = 3
	newsHeader       = "Recent News:\n\n"
)

type TickerSearchTool struct {
	market output.MarketDataPort
	logger output.LoggerPort
}

func NewTickerSearchTool(market output.MarketDataPort, logger output.LoggerPort) *TickerSearchTool {
	return &TickerSearchTool{market: market, logger: logger}
}

func (t *TickerSearchTool) Name() entity.ToolName { return entity.ToolTickerSearch }
func (t *TickerSearchTool) Description() string {
	return "Use only when you need to get stock ticker from internet, you can also get recent stock related news. Dont use it for any other analysis or task"
}

// Execute never fails: a lookup that errors or resolves to nothing answers
// entity.TickerNotFound, which ends the analysis.
func (t *TickerSearchTool) Execute(ctx context.Context, input string) (string, error) {
	query := cleanInput(input)
	if query == "" {
		return entity.TickerNotFound, nil
	}

	symbol, err := t.market.SearchTicker(ctx, query)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			t.logger.Warn("Ticker lookup failed", "query", query, "error", err)
		}
		return entity.TickerNotFound, nil
	}
	if strings.TrimSpace(symbol) == "" {
		return entity.TickerNotFound, nil
	}
	return symbol, nil
}

type PriceHistoryTool struct {
	market output.MarketDataPort
	suffix string
	logger output.LoggerPort
}

func NewPriceHistoryTool(market output.MarketDataPort, exchangeSuffix string, logger output.LoggerPort) *PriceHistoryTool {
	return &PriceHistoryTool{market: market, suffix: exchangeSuffix, logger: logger}
}

func (t *PriceHistoryTool) Name() entity.ToolName { return entity.ToolPriceHistory }
func (t *PriceHistoryTool) Description() string {
	return "Use when you are asked to evaluate or analyze a stock. This will output historic share price data. You should input the stock ticker to it"
}

func (t *PriceHistoryTool) Execute(ctx context.Context, input string) (string, error) {
	symbol := NormalizeSymbol(input, t.suffix)
	if symbol == "" {
		return "", errors.New("empty ticker")
	}

	points, err := t.market.PriceHistory(ctx, symbol)
	if err != nil {
		return "", err
	}
	if len(points) == 0 {
		return "", fmt.Errorf("no price data for %s", symbol)
	}

	t.logger.Debug("Price history loaded", "symbol", symbol, "points", len(points))
	return PriceTable(points), nil
}

type FinancialStatementsTool struct {
	market output.MarketDataPort
	suffix string
	logger output.LoggerPort
}

func NewFinancialStatementsTool(market output.MarketDataPort, exchangeSuffix string, logger output.LoggerPort) *FinancialStatementsTool {
	return &FinancialStatementsTool{market: market, suffix: exchangeSuffix, logger: logger}
}

func (t *FinancialStatementsTool) Name() entity.ToolName { return entity.ToolFinancialStatements }
func (t *FinancialStatementsTool) Description() string {
	return "Use this to get financial statement of the company. With the help of this data company's historic performance can be evaluated. You should input stock ticker to it"
}

func (t *FinancialStatementsTool) Execute(ctx context.Context, input string) (string, error) {
	symbol := NormalizeSymbol(input, t.suffix)
	if symbol == "" {
		return "", errors.New("empty ticker")
	}

	sheet, err := t.market.BalanceSheet(ctx, symbol)
	if err != nil {
		return "", err
	}

	recent := RecentPeriods(sheet, financialPeriods)
	if len(recent.Rows) == 0 {
		return "", fmt.Errorf("no complete balance sheet rows for %s", symbol)
	}

	t.logger.Debug("Balance sheet loaded",
		"symbol", symbol,
		"rows", len(recent.Rows),
		"dropped", len(sheet.Rows)-len(recent.Rows),
	)
	return BalanceSheetTable(recent), nil
}

type RecentNewsTool struct {
	news   output.NewsPort
	logger output.LoggerPort
}

func NewRecentNewsTool(news output.NewsPort, logger output.LoggerPort) *RecentNewsTool {
	return &RecentNewsTool{news: news, logger: logger}
}

func (t *RecentNewsTool) Name() entity.ToolName { return entity.ToolRecentNews }
func (t *RecentNewsTool) Description() string {
	return "Use this to fetch recent news about stocks"
}

func (t *RecentNewsTool) Execute(ctx context.Context, input string) (string, error) {
	query := cleanInput(input)
	if query == "" {
		return "", errors.New("empty company name")
	}

	items, err := t.news.Search(ctx, NewsQuery(query))
	if err != nil {
		return "", err
	}
	t.logger.Debug("News loaded", "query", query, "items", len(items))

	if len(items) == 0 {
		return newsHeader + "No recent news found.", nil
	}

	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i, item)
	}
	return newsHeader + strings.Join(lines, "\n"), nil
}

// NormalizeSymbol maps "INFY", "infy.BO" or "Tata Motors" onto the configured
// exchange listing. With no suffix configured the symbol is only cleaned.
func NormalizeSymbol(input, suffix string) string {
	s := cleanInput(input)
	if suffix == "" {
		return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	}
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return ""
	}
	return s + suffix
}

func NewsQuery(company string) string {
	if strings.Contains(company, "news") {
		return company
	}
	return company + " stock news"
}

// RecentPeriods keeps the n most recent periods and drops rows with a gap in them.
func RecentPeriods(sheet *entity.BalanceSheet, n int) *entity.BalanceSheet {
	keep := min(n, len(sheet.Periods))
	out := &entity.BalanceSheet{
		Symbol:  sheet.Symbol,
		Periods: append([]time.Time(nil), sheet.Periods[:keep]...),
	}
	for _, row := range sheet.Rows {
		trimmed := entity.BalanceSheetRow{Item: row.Item, Values: row.Values[:min(keep, len(row.Values))]}
		if len(trimmed.Values) == keep && trimmed.Complete() {
			out.Rows = append(out.Rows, trimmed)
		}
	}
	return out
}

// cleanInput strips whitespace and the quotes models like to wrap inputs in.
func cleanInput(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`")
}
