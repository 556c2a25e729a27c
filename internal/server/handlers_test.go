package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/config"
	"github.com/rmoliv/powerfit/internal/model"
)

func testEntries() []model.ServerModel {
	return []model.ServerModel{
		{ID: "S922-8c", Family: "S922", Generation: "p10", MaxCores: 8, TotalRPerf: 16, PerfPerCore: 2.0},
		{ID: "S1022-16c", Family: "S1022", Generation: "p10", MaxCores: 16, TotalRPerf: 38.4, PerfPerCore: 2.4},
		{ID: "E1080-40c", Family: "E1080", Generation: "p11", MaxCores: 40, TotalRPerf: 120, PerfPerCore: 3.0},
	}
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := config.Default()
	cat := catalog.New(testEntries())
	targets, err := cat.Targets(cfg.Catalog.Generations)
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	return NewHandler(cfg, cat, targets)
}

func postSizing(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/sizing", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Sizing(w, req)
	return w
}

func TestSizingHandler_Success(t *testing.T) {
	h := newTestHandler(t)

	// 2 servers x 8 cores x 2.0 rPerf/core = base 32; +20% for 1 year = 38.4.
	w := postSizing(t, h, `{
		"inventory": [{"model": "S922", "cores": 8, "count": 2}],
		"growth": {"annual_percent": 20, "years": 1}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp sizingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.BaseRPerf != 32 {
		t.Errorf("base_rperf = %v, want 32", resp.BaseRPerf)
	}
	if resp.RequiredRPerf != 38.4 {
		t.Errorf("required_rperf = %v, want 38.4", resp.RequiredRPerf)
	}
	if len(resp.Scenarios) == 0 {
		t.Fatal("expected at least one scenario")
	}
	top := resp.Scenarios[0]
	// S1022-16c fits 38.4 rPerf exactly: 1 server, all 16 cores active.
	if top.Model != "S1022-16c" || top.Servers != 1 || top.CoresPerServer != 16 {
		t.Errorf("unexpected top scenario: %+v", top)
	}
	if top.UtilizationPercent != 100 {
		t.Errorf("utilization_percent = %v, want 100", top.UtilizationPercent)
	}
	if top.SurplusRPerf != 0 {
		t.Errorf("surplus_rperf = %v, want 0", top.SurplusRPerf)
	}
	if top.Rank != 1 {
		t.Errorf("rank = %d, want 1", top.Rank)
	}
}

func TestSizingHandler_UnknownModel(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{"inventory": [{"model": "S814", "cores": 8, "count": 1}]}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if !strings.Contains(resp.Error, `"S814"`) || !strings.Contains(resp.Error, "8 cores") {
		t.Errorf("error should name the unresolved configuration: %q", resp.Error)
	}
}

func TestSizingHandler_MalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{"inventory": [`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestSizingHandler_EmptyInventory(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{"inventory": []}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestSizingHandler_InvalidInventoryEntry(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{"inventory": [{"model": "S922", "cores": 0}]}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for non-positive cores, got %d", w.Code)
	}
}

func TestSizingHandler_NegativeGrowth(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{
		"inventory": [{"model": "S922", "cores": 8, "count": 1}],
		"growth": {"annual_percent": -5, "years": 2}
	}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestSizingHandler_GrowthRequiresBothParameters(t *testing.T) {
	h := newTestHandler(t)

	// Zero years means no projection even with a positive rate.
	w := postSizing(t, h, `{
		"inventory": [{"model": "S922", "cores": 8, "count": 1}],
		"growth": {"annual_percent": 20, "years": 0}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp sizingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequiredRPerf != resp.BaseRPerf {
		t.Errorf("no projection expected: base %v, required %v", resp.BaseRPerf, resp.RequiredRPerf)
	}
}

func TestSizingHandler_CountDefaultsToOne(t *testing.T) {
	h := newTestHandler(t)

	w := postSizing(t, h, `{"inventory": [{"model": "S922", "cores": 8}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp sizingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.BaseRPerf != 16 {
		t.Errorf("base_rperf = %v, want 16 (one server assumed)", resp.BaseRPerf)
	}
}

func TestSizingHandler_CatalogUnavailable(t *testing.T) {
	h := NewHandler(config.Default(), nil, nil)

	w := postSizing(t, h, `{"inventory": [{"model": "S922", "cores": 8, "count": 1}]}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestSizingHandler_RepeatServedFromCache(t *testing.T) {
	h := newTestHandler(t)
	body := `{"inventory": [{"model": "S922", "cores": 8, "count": 2}]}`

	first := postSizing(t, h, body)
	second := postSizing(t, h, body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both requests to succeed: %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached response should be identical")
	}
	if hits := testutil.ToFloat64(h.metrics.CacheHits); hits != 1 {
		t.Errorf("expected 1 cache hit, got %v", hits)
	}
}

func TestCatalogHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/catalog", nil)
	w := httptest.NewRecorder()
	h.Catalog(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 {
		t.Errorf("count = %d, want 3", resp.Count)
	}
}

func TestCatalogHandler_Filtered(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/catalog?generation=p11", nil)
	w := httptest.NewRecorder()
	h.Catalog(w, req)

	var resp struct {
		Count  int `json:"count"`
		Models []struct {
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Models[0].Model != "E1080-40c" {
		t.Errorf("expected only the p11 model, got %+v", resp)
	}

	req = httptest.NewRequest("GET", "/api/v1/catalog?search=s922", nil)
	w = httptest.NewRecorder()
	h.Catalog(w, req)
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Models[0].Model != "S922-8c" {
		t.Errorf("expected the search match, got %+v", resp)
	}
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["models"].(float64) != 3 {
		t.Errorf("models = %v, want 3", resp["models"])
	}
}
