package tool

import (
	"strconv"
	"time"

	"stock-advisor/internal/domain/entity"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func markdownTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(headers...).
		Rows(rows...).
		String()
}

func PriceTable(points []entity.PricePoint) string {
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{
			p.Date.Format(time.DateOnly),
			strconv.FormatFloat(p.Close, 'f', 2, 64),
			strconv.FormatInt(p.Volume, 10),
		}
	}
	return markdownTable([]string{"Date", "Close", "Volume"}, rows)
}

func BalanceSheetTable(sheet *entity.BalanceSheet) string {
	headers := []string{"Item"}
	for _, p := range sheet.Periods {
		headers = append(headers, p.Format(time.DateOnly))
	}

	rows := make([][]string, len(sheet.Rows))
	for i, r := range sheet.Rows {
		row := []string{r.Item}
		for _, v := range r.Values {
			row = append(row, formatAmount(v))
		}
		rows[i] = row
	}
	return markdownTable(headers, rows)
}

func formatAmount(v *float64) string {
	if v == nil {
		return "NaN"
	}
	if *v == float64(int64(*v)) {
		return strconv.FormatInt(int64(*v), 10)
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
