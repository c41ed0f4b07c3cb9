package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/domain/entity"
	"stock-advisor/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdvisor struct {
	got input.AnalyzeRequest
	res *input.AnalyzeResult
	err error
	// hang waits for the request context to end.
	hang bool
}

func (f *fakeAdvisor) Analyze(ctx context.Context, req input.AnalyzeRequest) (*input.AnalyzeResult, error) {
	f.got = req
	if f.hang {
		<-ctx.Done()
		return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
	}
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(req.APIKey) == "" || strings.TrimSpace(req.Stock) == "" {
		return nil, entity.ErrInput
	}
	return f.res, nil
}

func newTestRouter(adv input.Advisor) http.Handler {
	return NewRouter(RouterConfig{
		Advisor: adv,
		Logger:  logger.NewNop(),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("advisor_analyses_total 0\n"))
		}),
	})
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestAnalyze_OK(t *testing.T) {
	adv := &fakeAdvisor{res: &input.AnalyzeResult{
		FinalAnswer:    "Buy\nStrong growth.",
		Recommendation: entity.RecommendationBuy,
		State:          entity.StateDone,
		Steps: []entity.ScratchpadEntry{
			{Thought: "ticker", Action: "Stock Ticker Search", ActionInput: "Infosys", Observation: "INFY.NS"},
		},
	}}

	rec, out := post(t, newTestRouter(adv), `{"apiKey":"sk-test","stock":"Infosys"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Buy\nStrong growth.", out["analysis"])
	assert.Equal(t, "Buy", out["recommendation"])
	assert.Len(t, out["steps"], 1)
	assert.Equal(t, input.AnalyzeRequest{APIKey: "sk-test", Stock: "Infosys"}, adv.got)
}

func TestAnalyze_ShortCircuit(t *testing.T) {
	adv := &fakeAdvisor{res: &input.AnalyzeResult{FinalAnswer: entity.StockDoesNotExist, ShortCircuited: true}}

	rec, out := post(t, newTestRouter(adv), `{"apiKey":"sk-test","stock":"Nonexistent Widgets"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.StockDoesNotExist, out["analysis"])
	assert.NotContains(t, out, "recommendation")
}

func TestAnalyze_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing key", `{"stock":"Infosys"}`, "Missing API key or stock name"},
		{"missing stock", `{"apiKey":"sk-test"}`, "Missing API key or stock name"},
		{"empty object", `{}`, "Missing API key or stock name"},
		{"not json", `apiKey=x`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := post(t, newTestRouter(&fakeAdvisor{}), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, out["error"])
		})
	}
}

func TestAnalyze_InternalError(t *testing.T) {
	for _, sentinel := range []error{entity.ErrUpstream, entity.ErrBudgetExceeded} {
		adv := &fakeAdvisor{err: fmt.Errorf("%w: boom", sentinel)}

		rec, out := post(t, newTestRouter(adv), `{"apiKey":"sk-test","stock":"Infosys"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, out["error"], "boom")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(&fakeAdvisor{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "advisor_analyses_total")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&fakeAdvisor{})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeAdvisor{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyze_TimeoutIsGatewayTimeout(t *testing.T) {
	h := NewRouter(RouterConfig{
		Advisor:        &fakeAdvisor{hang: true},
		Logger:         logger.NewNop(),
		RequestTimeout: 20 * time.Millisecond,
	})

	rec, out := post(t, h, `{"apiKey":"sk-test","stock":"Infosys"}`)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "Analysis timed out", out["error"])
}
