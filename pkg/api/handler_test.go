package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/api"
	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

// stubGen returns a fixed outcome for every call.
type stubGen struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (g *stubGen) Generate(ctx context.Context, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.text, g.err
}

func newTestHandler(t *testing.T, gen gateway.Generator) *api.Handler {
	t.Helper()
	tracker, err := gateway.NewTracker(gateway.NewUsageState(), gateway.TrackerConfig{
		PerMinute: 10,
		PerDay:    100,
	})
	require.NoError(t, err)
	failover := gateway.NewFailover(gen, tracker, gateway.FailoverConfig{
		Candidates: []string{"model-a", "model-b"},
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
	})
	gw, err := gateway.New(gen, tracker, failover, gateway.Config{Timeout: time.Second})
	require.NoError(t, err)

	h, err := api.NewHandler(api.Config{
		Gateway:        gw,
		ServiceName:    "poopalooza-assistant",
		Version:        "test",
		ProviderHourly: 1000,
	})
	require.NoError(t, err)
	return h
}

func doRequest(t *testing.T, h *api.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestNewHandler_RequiresGateway(t *testing.T) {
	_, err := api.NewHandler(api.Config{})
	assert.Error(t, err)
}

func TestAssistant_Success(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "Eat more fiber."})

	rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Eat more fiber.", resp.Answer)
	assert.Equal(t, "model-a", resp.Model)
	assert.Equal(t, "success", resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, 1, resp.Usage.Today)
	assert.Equal(t, 99, resp.Usage.Remaining)
}

func TestAssistant_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_input", resp.Error)
	assert.NotEmpty(t, resp.Answer)
}

func TestAssistant_EmptyQuestion(t *testing.T) {
	gen := &stubGen{text: "ok"}
	h := newTestHandler(t, gen)

	rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_input", resp.Error)
	assert.Equal(t, 0, gen.calls, "empty question must not reach the provider")
}

func TestAssistant_RateLimited(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	for i := 0; i < 10; i++ {
		rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "minute_limit", resp.Error)
	assert.Positive(t, resp.RetryAfter)
	assert.Equal(t, rec.Header().Get("Retry-After"),
		fmt.Sprintf("%d", resp.RetryAfter))
}

func TestAssistant_ProviderQuota(t *testing.T) {
	gen := &stubGen{err: fmt.Errorf("429: %w", gateway.ErrUpstreamQuota)}
	h := newTestHandler(t, gen)

	rec := doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)
	// The probe fails too, so the request surfaces as model exhaustion.
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "models_exhausted", resp.Error)
	assert.NotEmpty(t, resp.Answer)
}

func TestHealth_Unhealthy(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "missing", resp.APIKey)
	assert.Equal(t, "not selected", resp.Model)
}

func TestHealth_DegradedThenHealthy(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	rec := doRequest(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "configured", resp.APIKey)

	// A successful question caches a model and flips health to healthy.
	doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)

	rec = doRequest(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "model-a", resp.Model)
}

func TestRoot(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	rec := doRequest(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "poopalooza-assistant", resp.Service)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 10, resp.Limits.PerMinute)
	assert.Equal(t, 100, resp.Limits.PerDay)
	assert.Equal(t, 1000, resp.Limits.ProviderHourly)
}

func TestUsage(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})
	doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)

	rec := doRequest(t, h, http.MethodGet, "/api/usage", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Usage.Today)
	assert.Equal(t, 99, resp.Usage.RemainingToday)
	assert.Equal(t, "model-a", resp.Model)
}

func TestModels(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})
	doRequest(t, h, http.MethodPost, "/api/assistant", `{"question":"why am I constipated"}`)

	rec := doRequest(t, h, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.ModelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 2)
	assert.Equal(t, "model-a", resp.Active)
	assert.Equal(t, api.ModelStatus{Name: "model-a", Rank: 1, Active: true}, resp.Models[0])
	assert.Equal(t, api.ModelStatus{Name: "model-b", Rank: 2, Active: false}, resp.Models[1])
}

func TestNotFound(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	rec := doRequest(t, h, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Endpoints, "POST /api/assistant")
	assert.Contains(t, resp.Endpoints, "GET /api/health")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, &stubGen{text: "ok"})

	rec := doRequest(t, h, http.MethodOptions, "/api/assistant", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
