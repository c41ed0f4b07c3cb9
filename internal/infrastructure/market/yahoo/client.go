package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"github.com/tidwall/gjson"
)

var _ output.MarketDataPort = (*Client)(nil)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"

	maxBodyBytes = 4 << 20
)

// balanceSheetTypes are the annual fundamentals requested for the balance sheet,
// in display order.
var balanceSheetTypes = []string{
	"TotalAssets",
	"CurrentAssets",
	"CashAndCashEquivalents",
	"TotalLiabilitiesNetMinorityInterest",
	"CurrentLiabilities",
	"TotalDebt",
	"NetDebt",
	"StockholdersEquity",
	"RetainedEarnings",
	"WorkingCapital",
	"InvestedCapital",
	"TangibleBookValue",
	"OrdinarySharesNumber",
}

type Config struct {
	BaseURL string
	// ExchangeSuffix picks the listing to prefer when a search returns several.
	ExchangeSuffix string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ExchangeSuffix: ".NS",
		Timeout:        15 * time.Second,
	}
}

type Client struct {
	http    *http.Client
	baseURL string
	suffix  string
	logger  output.LoggerPort
	now     func() time.Time
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(base, "/"),
		suffix:  cfg.ExchangeSuffix,
		logger:  cfg.Logger,
		now:     time.Now,
	}
}

// SearchTicker resolves a company name to a listed equity symbol.
func (c *Client) SearchTicker(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "10")
	q.Set("newsCount", "0")

	body, err := c.get(ctx, "/v1/finance/search", q)
	if err != nil {
		return "", err
	}

	var first, preferred string
	gjson.GetBytes(body, "quotes").ForEach(func(_, quote gjson.Result) bool {
		if quote.Get("quoteType").String() != "EQUITY" {
			return true
		}
		sym := quote.Get("symbol").String()
		if sym == "" {
			return true
		}
		if first == "" {
			first = sym
		}
		if c.suffix != "" && strings.HasSuffix(sym, c.suffix) {
			preferred = sym
			return false
		}
		return true
	})

	switch {
	case preferred != "":
		return preferred, nil
	case first != "":
		return first, nil
	default:
		return "", fmt.Errorf("%w: no equity matches %q", entity.ErrNotFound, query)
	}
}

// PriceHistory returns one year of daily closes.
func (c *Client) PriceHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	q := url.Values{}
	q.Set("range", "1y")
	q.Set("interval", "1d")

	body, err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, err
	}

	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, desc.String())
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: no chart for %s", entity.ErrNotFound, symbol)
	}

	loc := time.UTC
	if tz := result.Get("meta.exchangeTimezoneName").String(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	stamps := result.Get("timestamp").Array()
	closes := result.Get("indicators.quote.0.close").Array()
	volumes := result.Get("indicators.quote.0.volume").Array()

	points := make([]entity.PricePoint, 0, len(stamps))
	for i, ts := range stamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		p := entity.PricePoint{
			Date:  time.Unix(ts.Int(), 0).In(loc),
			Close: closes[i].Float(),
		}
		if i < len(volumes) {
			p.Volume = volumes[i].Int()
		}
		points = append(points, p)
	}
	return points, nil
}

// BalanceSheet returns annual balance sheet items, most recent period first.
func (c *Client) BalanceSheet(ctx context.Context, symbol string) (*entity.BalanceSheet, error) {
	types := make([]string, len(balanceSheetTypes))
	for i, t := range balanceSheetTypes {
		types[i] = "annual" + t
	}

	now := c.now()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", strings.Join(types, ","))
	q.Set("period1", strconv.FormatInt(now.AddDate(-5, 0, 0).Unix(), 10))
	q.Set("period2", strconv.FormatInt(now.Unix(), 10))

	body, err := c.get(ctx, "/ws/fundamentals-timeseries/v1/finance/timeseries/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, err
	}

	values := make(map[string]map[time.Time]float64)
	periods := make(map[time.Time]struct{})

	gjson.GetBytes(body, "timeseries.result").ForEach(func(_, series gjson.Result) bool {
		name := series.Get("meta.type.0").String()
		if name == "" {
			return true
		}
		series.Get(name).ForEach(func(_, point gjson.Result) bool {
			if point.Type == gjson.Null {
				return true
			}
			date, err := time.Parse(time.DateOnly, point.Get("asOfDate").String())
			if err != nil {
				return true
			}
			raw := point.Get("reportedValue.raw")
			if !raw.Exists() {
				return true
			}
			if values[name] == nil {
				values[name] = make(map[time.Time]float64)
			}
			values[name][date] = raw.Float()
			periods[date] = struct{}{}
			return true
		})
		return true
	})

	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no balance sheet for %s", entity.ErrNotFound, symbol)
	}

	sheet := &entity.BalanceSheet{Symbol: symbol}
	for p := range periods {
		sheet.Periods = append(sheet.Periods, p)
	}
	sort.Slice(sheet.Periods, func(i, j int) bool { return sheet.Periods[i].After(sheet.Periods[j]) })

	for i, t := range balanceSheetTypes {
		byDate, ok := values[types[i]]
		if !ok {
			continue
		}
		row := entity.BalanceSheetRow{Item: itemLabel(t), Values: make([]*float64, len(sheet.Periods))}
		for j, p := range sheet.Periods {
			if v, ok := byDate[p]; ok {
				row.Values[j] = &v
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %w", entity.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read yahoo %s: %w", entity.ErrUpstream, path, err)
	}

	if c.logger != nil {
		c.logger.Debug("Yahoo request",
			"path", path,
			"status", resp.StatusCode,
			"bytes", len(body),
			"duration", time.Since(start),
		)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: yahoo %s", entity.ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: yahoo %s: status %d", entity.ErrUpstream, path, resp.StatusCode)
	case !gjson.ValidBytes(body):
		return nil, fmt.Errorf("%w: yahoo %s: invalid json", entity.ErrUpstream, path)
	}
	return body, nil
}

// itemLabel turns "TotalLiabilitiesNetMinorityInterest" into
// "Total Liabilities Net Minority Interest".
func itemLabel(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
