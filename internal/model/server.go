package model

import "strings"

// ServerModel represents one orderable server configuration from the rating catalog.
type ServerModel struct {
	// Catalog identity
	ID     string `json:"id"`     // unique model id, e.g. "S922-12c-3.4"
	Family string `json:"family"` // base family, e.g. "S922"

	// Processor
	Generation   string `json:"generation"`              // processor generation tag, e.g. "p10"
	FrequencyGHz string `json:"frequency_ghz,omitempty"` // informational, carried as published

	// Capacity
	MaxCores   int     `json:"max_cores"`   // maximum activatable cores
	TotalRPerf float64 `json:"total_rperf"` // rated rPerf at full activation

	// Derived at catalog build time
	PerfPerCore float64 `json:"perf_per_core"`
}

// MatchesFamily reports whether name equals the model family, ignoring case.
func (m ServerModel) MatchesFamily(name string) bool {
	return strings.EqualFold(m.Family, name)
}

// IsGeneration reports whether the model's processor tag equals gen, ignoring case.
func (m ServerModel) IsGeneration(gen string) bool {
	return strings.EqualFold(m.Generation, gen)
}
