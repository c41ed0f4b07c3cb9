package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*Console)(nil)

type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (c *Console) AskQuestion(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(c.out, "\n%s\n> ", question)

	answer, err := c.reader.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

func (c *Console) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(c.out, "\n━━━ Step %d/%d ━━━\n", iteration, maxIterations)
}

func (c *Console) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}

	blue := color.New(color.FgBlue)
	blue.Fprint(c.out, "\n💭 Thought: ")

	dim := color.New(color.Faint)
	dim.Fprintln(c.out, truncate(content, 500))
}

func (c *Console) ShowToolStart(ctx context.Context, toolName, input string) {
	icon := toolIcon(toolName)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "\n%s %s\n", icon, toolName)

	if input != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(c.out, "   Input: %s\n", truncate(input, 80))
	}
}

func (c *Console) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		red := color.New(color.FgRed)
		red.Fprint(c.out, "❌ ")

		dim := color.New(color.Faint)
		dim.Fprintln(c.out, truncate(result, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(c.out, "✓ %s\n", summarizeResult(toolName, result))
}

func (c *Console) ShowFinal(ctx context.Context, answer string) {
	bold := color.New(color.FgGreen, color.Bold)
	bold.Fprintln(c.out, "\n━━━ Final Answer ━━━")
	fmt.Fprintln(c.out, answer)
}

func toolIcon(toolName string) string {
	icons := map[entity.ToolName]string{
		entity.ToolTickerSearch:        "🔎",
		entity.ToolPriceHistory:        "📈",
		entity.ToolFinancialStatements: "📊",
		entity.ToolRecentNews:          "📰",
	}

	if icon, ok := icons[entity.ToolName(toolName)]; ok {
		return icon
	}
	return "🔧"
}

func summarizeResult(toolName, result string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolTickerSearch:
		return result

	case entity.ToolPriceHistory:
		// header and separator lines are not data
		rows := strings.Count(result, "\n") - 1
		if rows > 0 {
			return fmt.Sprintf("%d trading days", rows)
		}

	case entity.ToolFinancialStatements:
		rows := strings.Count(result, "\n") - 1
		if rows > 0 {
			return fmt.Sprintf("%d balance sheet items", rows)
		}

	case entity.ToolRecentNews:
		lines := strings.Split(strings.TrimSpace(result), "\n")
		if len(lines) > 2 {
			return fmt.Sprintf("%d headlines", len(lines)-2)
		}
	}

	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
