package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

// availableEndpoints is the listing returned by the 404 catch-all.
var availableEndpoints = []string{
	"GET /",
	"POST /api/assistant",
	"GET /api/usage",
	"GET /api/models",
	"GET /api/health",
	"GET /metrics",
}

// Handler serves the gateway over HTTP.
type Handler struct {
	config  Config
	started time.Time
}

func newHandler(config Config) *Handler {
	return &Handler{
		config:  config,
		started: time.Now(),
	}
}

// Routes builds the chi router for all gateway endpoints. Extra handlers
// (such as a metrics endpoint) can be mounted on the returned router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(allowAllCORS)

	r.Get("/", h.Root)
	r.Post("/api/assistant", h.Assistant)
	r.Get("/api/usage", h.Usage)
	r.Get("/api/models", h.Models)
	r.Get("/api/health", h.Health)
	r.NotFound(h.NotFound)
	return r
}

// allowAllCORS is the permissive policy the app's web client relies on.
func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Root reports the service identity, configured limits, and a usage snapshot.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	tracker := h.config.Gateway.Tracker()
	h.writeJSON(w, http.StatusOK, RootResponse{
		Service: h.config.ServiceName,
		Version: h.config.Version,
		Status:  h.healthStatus(),
		Limits:  h.limits(),
		Usage:   tracker.Snapshot(),
	})
}

// Assistant answers one question through the gateway.
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, AskResponse{
			Answer: "Please provide a valid question.",
			Status: string(gateway.StatusError),
			Error:  string(gateway.KindInvalidInput),
		})
		return
	}

	result := h.config.Gateway.Ask(r.Context(), req.Question)

	resp := AskResponse{
		Answer: result.Answer,
		Model:  result.Model,
		Status: string(result.Status),
		Usage: UsageBrief{
			Today:     result.Usage.Today,
			Remaining: result.Usage.RemainingToday,
		},
		ResponseTimeMs: result.ResponseTime.Milliseconds(),
	}
	if result.Kind != gateway.KindNone {
		resp.Error = string(result.Kind)
	}
	if result.RetryAfter > 0 {
		resp.RetryAfter = int64(result.RetryAfter.Seconds())
	}

	status := result.Kind.HTTPStatus()
	if resp.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(resp.RetryAfter, 10))
	}
	h.writeJSON(w, status, resp)
}

// Usage reports the full counters, remaining budget, per-model failure
// diagnostics, and the recent daily history.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	tracker := h.config.Gateway.Tracker()
	failover := h.config.Gateway.Failover()

	model := "not selected"
	if cached, ok := failover.Cached(); ok {
		model = cached.ID
	}

	h.writeJSON(w, http.StatusOK, UsageResponse{
		Usage:   tracker.Snapshot(),
		Limits:  h.limits(),
		Model:   model,
		History: tracker.History(),
	})
}

// Models lists each candidate with its rank, failure count, and whether it is
// the active cached model. The listing is served from recorded diagnostics;
// no live probes are issued.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	tracker := h.config.Gateway.Tracker()
	failover := h.config.Gateway.Failover()

	active := ""
	if cached, ok := failover.Cached(); ok {
		active = cached.ID
	}
	failures := tracker.Snapshot().ModelFailures

	candidates := failover.Candidates()
	models := make([]ModelStatus, 0, len(candidates))
	for i, name := range candidates {
		models = append(models, ModelStatus{
			Name:     name,
			Rank:     i + 1,
			Active:   name == active,
			Failures: failures[name],
		})
	}

	h.writeJSON(w, http.StatusOK, ModelsResponse{Models: models, Active: active})
}

// Health reports composite health: unhealthy without a provider client,
// degraded until a model has been cached, healthy otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	failover := h.config.Gateway.Failover()

	apiKey := "configured"
	if !failover.Configured() {
		apiKey = "missing"
	}

	model := "not selected"
	if cached, ok := failover.Cached(); ok {
		model = cached.ID
	}

	status := h.healthStatus()
	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, HealthResponse{
		Status:    status,
		APIKey:    apiKey,
		Model:     model,
		UptimeSec: int64(time.Since(h.started).Seconds()),
	})
}

// NotFound lists the available endpoints.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error:     "endpoint not found",
		Endpoints: availableEndpoints,
	})
}

func (h *Handler) healthStatus() string {
	failover := h.config.Gateway.Failover()
	switch {
	case !failover.Configured():
		return "unhealthy"
	default:
		if _, ok := failover.Cached(); ok {
			return "healthy"
		}
		return "degraded"
	}
}

func (h *Handler) limits() LimitsInfo {
	tracker := h.config.Gateway.Tracker()
	return LimitsInfo{
		PerMinute:      tracker.PerMinuteLimit(),
		PerDay:         tracker.PerDayLimit(),
		ProviderHourly: h.config.ProviderHourly,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.config.Logger.Error("encode response", gateway.Field{Key: "error", Value: err.Error()})
	}
}
