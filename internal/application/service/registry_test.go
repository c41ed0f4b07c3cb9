package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
	"stock-advisor/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   entity.ToolName
	result string
	err    error
	panic  bool
	calls  int
}

func (s *stubTool) Name() entity.ToolName { return s.name }
func (s *stubTool) Description() string   { return "describes " + string(s.name) }
func (s *stubTool) Execute(ctx context.Context, input string) (string, error) {
	s.calls++
	if s.panic {
		panic("provider exploded")
	}
	return s.result, s.err
}

type recordingMetrics struct {
	tools  []string
	failed []bool
}

func (m *recordingMetrics) ObserveAnalysis(string, int, time.Duration) {}
func (m *recordingMetrics) ObserveToolCall(tool string, failed bool, _ time.Duration) {
	m.tools = append(m.tools, tool)
	m.failed = append(m.failed, failed)
}

func fullSet() []output.ToolPort {
	var tools []output.ToolPort
	for _, name := range entity.ToolNames() {
		tools = append(tools, &stubTool{name: name, result: "ok from " + string(name)})
	}
	return tools
}

func TestNewToolRegistry_RequiresClosedSet(t *testing.T) {
	tools := fullSet()[:3]

	_, err := NewToolRegistry(logger.NewNop(), tools)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(entity.ToolRecentNews))
}

func TestNewToolRegistry_RejectsUnknownName(t *testing.T) {
	tools := append(fullSet(), &stubTool{name: "Search Internet"})

	_, err := NewToolRegistry(logger.NewNop(), tools)
	assert.ErrorIs(t, err, entity.ErrUnknownTool)
}

func TestNewToolRegistry_RejectsDuplicates(t *testing.T) {
	tools := append(fullSet(), &stubTool{name: entity.ToolPriceHistory})

	_, err := NewToolRegistry(logger.NewNop(), tools)
	assert.Error(t, err)
}

func TestDefinitions_PolicyOrder(t *testing.T) {
	r, err := NewToolRegistry(logger.NewNop(), fullSet())
	require.NoError(t, err)

	defs := r.Definitions()
	require.Len(t, defs, 4)
	for i, name := range entity.ToolNames() {
		assert.Equal(t, name, defs[i].Name)
		assert.Equal(t, "describes "+string(name), defs[i].Description)
	}
}

func TestDispatch_Success(t *testing.T) {
	m := &recordingMetrics{}
	r, err := NewToolRegistry(logger.NewNop(), fullSet(), WithMetrics(m))
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolPriceHistory), "TCS")

	assert.False(t, res.Failed())
	assert.Equal(t, "ok from Get Stock Historical Price", res.Observation)
	assert.Equal(t, []string{string(entity.ToolPriceHistory)}, m.tools)
	assert.Equal(t, []bool{false}, m.failed)
}

func TestDispatch_UnknownToolIsObservation(t *testing.T) {
	r, err := NewToolRegistry(logger.NewNop(), fullSet())
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), "stock ticker search", "TCS")

	assert.ErrorIs(t, res.Err, entity.ErrUnknownTool)
	assert.True(t, strings.HasPrefix(res.Observation, "Error: no such tool 'stock ticker search'"))
	assert.Contains(t, res.Observation, string(entity.ToolTickerSearch))
}

func TestDispatch_ToolErrorIsObservation(t *testing.T) {
	tools := fullSet()
	tools[1] = &stubTool{name: entity.ToolPriceHistory, err: errors.New("connection reset")}
	r, err := NewToolRegistry(logger.NewNop(), tools)
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolPriceHistory), "TCS")

	assert.ErrorIs(t, res.Err, entity.ErrToolFailed)
	assert.Equal(t, "Error: Get Stock Historical Price failed: connection reset", res.Observation)
}

func TestDispatch_PanicIsObservation(t *testing.T) {
	tools := fullSet()
	tools[2] = &stubTool{name: entity.ToolFinancialStatements, panic: true}
	r, err := NewToolRegistry(logger.NewNop(), tools)
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolFinancialStatements), "TCS")

	assert.True(t, res.Failed())
	assert.Contains(t, res.Observation, "provider exploded")
}

func TestDispatch_EmptyResultIsFailure(t *testing.T) {
	tools := fullSet()
	tools[3] = &stubTool{name: entity.ToolRecentNews, result: "  \n"}
	r, err := NewToolRegistry(logger.NewNop(), tools)
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolRecentNews), "TCS")

	assert.ErrorIs(t, res.Err, entity.ErrEmptyResult)
	assert.Contains(t, res.Observation, "empty result")
}

func TestDispatch_TruncatesLongObservation(t *testing.T) {
	tools := fullSet()
	tools[1] = &stubTool{name: entity.ToolPriceHistory, result: strings.Repeat("x", 100)}
	r, err := NewToolRegistry(logger.NewNop(), tools, WithMaxObservationLen(10))
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolPriceHistory), "TCS")

	assert.Equal(t, strings.Repeat("x", 10)+"\n... (truncated)", res.Observation)
}

func TestDispatch_TruncatesOnRuneBoundary(t *testing.T) {
	tools := fullSet()
	tools[3] = &stubTool{name: entity.ToolRecentNews, result: strings.Repeat("₹", 10)}
	r, err := NewToolRegistry(logger.NewNop(), tools, WithMaxObservationLen(4))
	require.NoError(t, err)

	res := r.Dispatch(context.Background(), string(entity.ToolRecentNews), "Infosys")

	assert.True(t, utf8.ValidString(res.Observation), "observation %q", res.Observation)
	assert.Equal(t, "₹\n... (truncated)", res.Observation)
}
