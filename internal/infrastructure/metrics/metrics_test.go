package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveAnalysis(t *testing.T) {
	m := NewMetrics()
	m.ObserveAnalysis("done", 5, 12*time.Second)
	m.ObserveAnalysis("done", 3, 4*time.Second)
	m.ObserveAnalysis("exhausted", 10, 30*time.Second)

	body := scrape(t, m)
	assert.Contains(t, body, `advisor_analyses_total{state="done"} 2`)
	assert.Contains(t, body, `advisor_analyses_total{state="exhausted"} 1`)
	assert.Contains(t, body, "advisor_analysis_iterations_count 3")
}

func TestObserveToolCall(t *testing.T) {
	m := NewMetrics()
	m.ObserveToolCall("Stock Ticker Search", false, 200*time.Millisecond)
	m.ObserveToolCall("Get Recent News", true, time.Second)

	body := scrape(t, m)
	assert.Contains(t, body, `advisor_tool_calls_total{status="ok",tool_name="Stock Ticker Search"} 1`)
	assert.Contains(t, body, `advisor_tool_calls_total{status="error",tool_name="Get Recent News"} 1`)
	assert.Contains(t, body, `advisor_tool_call_failures_total{tool_name="Get Recent News"} 1`)
	assert.False(t, strings.Contains(body, `advisor_tool_call_failures_total{tool_name="Stock Ticker Search"}`))
}

func TestRegistryIsPrivate(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveAnalysis("done", 1, time.Second)

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "advisor_analyses_total" {
			assert.Empty(t, f.GetMetric())
		}
	}
}
