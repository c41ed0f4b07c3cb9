package advisor

import (
	"context"
	"strings"
	"sync"
	"testing"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/application/service"
	"stock-advisor/internal/domain/entity"
	"stock-advisor/internal/infrastructure/logger"
	"stock-advisor/internal/infrastructure/prompts"
	"stock-advisor/internal/usecase/evaluator"

	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	stops     [][]string
	err       error
}

func (s *scriptedLLM) Complete(ctx context.Context, req output.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, req.Prompt)
	s.stops = append(s.stops, req.Stop)
	if s.err != nil {
		return "", s.err
	}
	if len(s.prompts) > len(s.responses) {
		return "Thought: I have run out of ideas", nil
	}
	return s.responses[len(s.prompts)-1], nil
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (c *callRecorder) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

func (c *callRecorder) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fakeTool struct {
	name entity.ToolName
	fn   func(input string) (string, error)
	rec  *callRecorder
}

func (f *fakeTool) Name() entity.ToolName { return f.name }
func (f *fakeTool) Description() string   { return "fake " + string(f.name) }
func (f *fakeTool) Execute(ctx context.Context, input string) (string, error) {
	f.rec.add(string(f.name))
	return f.fn(input)
}

func defaultToolFuncs() map[entity.ToolName]func(string) (string, error) {
	return map[entity.ToolName]func(string) (string, error){
		entity.ToolTickerSearch: func(in string) (string, error) {
			return strings.ToUpper(strings.ReplaceAll(in, " ", "")) + ".NS", nil
		},
		entity.ToolPriceHistory: func(in string) (string, error) {
			return "| Date | Close | Volume |\n| 2025-01-02 | 100.50 | 1000 |", nil
		},
		entity.ToolFinancialStatements: func(in string) (string, error) {
			return "| Item | 2025-03-31 |\n| Total Assets | 1000 |", nil
		},
		entity.ToolRecentNews: func(in string) (string, error) {
			return "Recent News:\n\n0. Results beat estimates", nil
		},
	}
}

func newRegistry(t *testing.T, overrides map[entity.ToolName]func(string) (string, error)) (*service.ToolRegistryImpl, *callRecorder) {
	t.Helper()

	funcs := defaultToolFuncs()
	for name, fn := range overrides {
		funcs[name] = fn
	}

	rec := &callRecorder{}
	tools := make([]output.ToolPort, 0, len(funcs))
	for _, name := range entity.ToolNames() {
		tools = append(tools, &fakeTool{name: name, fn: funcs[name], rec: rec})
	}

	reg, err := service.NewToolRegistry(logger.NewNop(), tools)
	require.NoError(t, err)
	return reg, rec
}

func newTestLoop(t *testing.T, llm output.LLMPort, reg *service.ToolRegistryImpl, maxSteps int) *Loop {
	t.Helper()

	builder, err := prompts.NewBuilder(prompts.AdvisorPrompt, reg.Definitions())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxSteps = maxSteps
	return NewLoop(llm, reg, builder, evaluator.New(logger.NewNop()), nil, logger.NewNop(), cfg)
}

var happyScript = []string{
	"I need the ticker first.\nAction: Stock Ticker Search\nAction Input: Infosys",
	"Now the price history.\nAction: Get Stock Historical Price\nAction Input: INFOSYS.NS",
	"Next the balance sheet.\nAction: Get Financial Statements\nAction Input: INFOSYS.NS",
	"Finally the news.\nAction: Get Recent News\nAction Input: Infosys",
	"I now know the final answer\nFinal Answer: **Buy**\nPrice is up 14% over the year and total assets grew.",
}
