package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/config"
	"github.com/rmoliv/powerfit/internal/model"
	"github.com/rmoliv/powerfit/internal/sizing"
)

const maxBodyBytes = 1 << 20

// Handler serves the sizing API.
type Handler struct {
	cfg     config.Config
	cat     *catalog.Catalog
	targets []model.ServerModel
	sizer   *sizing.Sizer
	cache   *Cache
	metrics *Metrics
	group   singleflight.Group
}

// NewHandler wires the sizing engine behind the HTTP API. cat may be nil in
// tests; sizing requests are then answered with 503.
func NewHandler(cfg config.Config, cat *catalog.Catalog, targets []model.ServerModel) *Handler {
	return &Handler{
		cfg:     cfg,
		cat:     cat,
		targets: targets,
		sizer: &sizing.Sizer{
			UtilizationFloor: cfg.Sizing.UtilizationFloor,
			MaxResults:       cfg.Sizing.TopN,
		},
		cache:   NewCache(cfg.Server.CacheTTL),
		metrics: NewMetrics(),
	}
}

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: h.Health},
		{Method: http.MethodPost, Path: "/api/v1/sizing", Handler: h.Sizing},
		{Method: http.MethodGet, Path: "/api/v1/catalog", Handler: h.Catalog},
	}
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type inventoryItem struct {
	Model string `json:"model"`
	Cores int    `json:"cores"`
	Count int    `json:"count"`
}

type growthSpec struct {
	AnnualPercent float64 `json:"annual_percent"`
	Years         int     `json:"years"`
}

type sizingRequest struct {
	Inventory []inventoryItem `json:"inventory"`
	Growth    *growthSpec     `json:"growth,omitempty"`
}

type scenarioResponse struct {
	Rank               int     `json:"rank"`
	Model              string  `json:"model"`
	Family             string  `json:"family"`
	Servers            int     `json:"servers"`
	CoresPerServer     int     `json:"cores_per_server"`
	UtilizationPercent float64 `json:"utilization_percent"`
	TotalRPerf         float64 `json:"total_rperf"`
	SurplusRPerf       float64 `json:"surplus_rperf"`
}

type sizingResponse struct {
	BaseRPerf     float64            `json:"base_rperf"`
	RequiredRPerf float64            `json:"required_rperf"`
	Scenarios     []scenarioResponse `json:"scenarios"`
}

// apiError carries an HTTP status alongside the message.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

// Health reports liveness and catalog size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.cat != nil {
		resp["models"] = h.cat.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sizing computes ranked replacement scenarios for a posted inventory.
func (h *Handler) Sizing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req sizingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.SizingsTotal.WithLabelValues("invalid").Inc()
		writeError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := validateRequest(req); err != nil {
		h.metrics.SizingsTotal.WithLabelValues("invalid").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.cat == nil {
		writeError(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	key := requestKey(req)
	if cached, ok := h.cache.Get(key); ok {
		h.metrics.CacheHits.Inc()
		h.metrics.SizingsTotal.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, cached)
		return
	}

	// Identical concurrent requests share one computation.
	v, err, _ := h.group.Do(key, func() (any, error) {
		return h.computeSizing(req)
	})
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			if ae.status == http.StatusNotFound {
				h.metrics.SizingsTotal.WithLabelValues("unknown_model").Inc()
			} else {
				h.metrics.SizingsTotal.WithLabelValues("invalid").Inc()
			}
			writeError(w, ae.message, ae.status)
			return
		}
		h.metrics.SizingsTotal.WithLabelValues("error").Inc()
		slog.Error("sizing failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.cache.Set(key, v)
	h.metrics.SizingsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) computeSizing(req sizingRequest) (*sizingResponse, error) {
	lines := make([]model.InventoryLine, 0, len(req.Inventory))
	for _, item := range req.Inventory {
		m, err := h.cat.ResolveConfig(item.Model, item.Cores)
		if err != nil {
			if errors.Is(err, catalog.ErrUnknownModel) {
				return nil, &apiError{http.StatusNotFound, err.Error()}
			}
			return nil, err
		}
		count := item.Count
		if count == 0 {
			count = 1
		}
		lines = append(lines, model.InventoryLine{
			ModelRef:    m.ID,
			ActiveCores: item.Cores,
			Utilization: 1.0,
			Count:       count,
		})
	}

	base, err := sizing.BaseRequirement(h.cat, lines)
	if err != nil {
		return nil, err
	}

	required := base
	if req.Growth != nil && req.Growth.AnnualPercent > 0 && req.Growth.Years > 0 {
		required, err = sizing.ApplyGrowth(base, req.Growth.AnnualPercent/100, req.Growth.Years)
		if err != nil {
			return nil, &apiError{http.StatusBadRequest, err.Error()}
		}
	}

	scenarios := h.sizer.Rank(required, h.targets)

	resp := &sizingResponse{
		BaseRPerf:     round2(base),
		RequiredRPerf: round2(required),
		Scenarios:     make([]scenarioResponse, 0, len(scenarios)),
	}
	for _, sc := range scenarios {
		resp.Scenarios = append(resp.Scenarios, scenarioResponse{
			Rank:               sc.Rank,
			Model:              sc.ModelID,
			Family:             sc.Family,
			Servers:            sc.Servers,
			CoresPerServer:     sc.CoresPerServer,
			UtilizationPercent: round2(sc.UtilizationPercent()),
			TotalRPerf:         round2(sc.TotalRPerf),
			SurplusRPerf:       round2(sc.SurplusRPerf),
		})
	}
	return resp, nil
}

// Catalog lists catalog models, optionally filtered by generation and
// a substring of the unique id.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h.cat == nil {
		writeError(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	gen := r.URL.Query().Get("generation")
	search := r.URL.Query().Get("search")

	entries := h.cat.Entries()
	if search != "" {
		entries = h.cat.Search(search)
	}

	type catalogEntry struct {
		Model        string  `json:"model"`
		Family       string  `json:"family"`
		Generation   string  `json:"generation"`
		FrequencyGHz string  `json:"frequency_ghz,omitempty"`
		MaxCores     int     `json:"max_cores"`
		TotalRPerf   float64 `json:"rperf_total"`
		PerfPerCore  float64 `json:"perf_per_core"`
	}

	out := make([]catalogEntry, 0, len(entries))
	for _, e := range entries {
		if gen != "" && !e.IsGeneration(gen) {
			continue
		}
		out = append(out, catalogEntry{
			Model:        e.ID,
			Family:       e.Family,
			Generation:   e.Generation,
			FrequencyGHz: e.FrequencyGHz,
			MaxCores:     e.MaxCores,
			TotalRPerf:   e.TotalRPerf,
			PerfPerCore:  round2(e.PerfPerCore),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models": out,
		"count":  len(out),
	})
}

func validateRequest(req sizingRequest) error {
	if len(req.Inventory) == 0 {
		return errors.New("inventory must not be empty")
	}
	for i, item := range req.Inventory {
		if item.Model == "" {
			return fmt.Errorf("inventory[%d]: model must not be empty", i)
		}
		if item.Cores <= 0 {
			return fmt.Errorf("inventory[%d]: cores must be positive", i)
		}
		if item.Count < 0 {
			return fmt.Errorf("inventory[%d]: count must not be negative", i)
		}
	}
	if req.Growth != nil && (req.Growth.AnnualPercent < 0 || req.Growth.Years < 0) {
		return errors.New("growth parameters must not be negative")
	}
	return nil
}

// requestKey builds a deterministic cache key for a request.
func requestKey(req sizingRequest) string {
	b, _ := json.Marshal(req)
	return string(b)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}
