package model

// Scenario is one recommended replacement configuration: n identical servers
// of one model with a uniform number of activated cores.
type Scenario struct {
	Rank int `json:"rank"`

	// Model identity
	ModelID      string `json:"model"`
	Family       string `json:"family"`
	Generation   string `json:"generation"`
	FrequencyGHz string `json:"frequency_ghz,omitempty"`

	// Configuration
	Servers        int `json:"servers"`
	CoresPerServer int `json:"cores_per_server"`
	MaxCores       int `json:"max_cores"`

	// Capacity
	CoreUtilization float64 `json:"core_utilization"` // 0.0 - 1.0
	TotalRPerf      float64 `json:"total_rperf"`
	SurplusRPerf    float64 `json:"surplus_rperf"`
}

// TotalCores returns the activated cores across all servers in the scenario.
func (s Scenario) TotalCores() int {
	return s.Servers * s.CoresPerServer
}

// UtilizationPercent returns core utilization as a percentage.
func (s Scenario) UtilizationPercent() float64 {
	return s.CoreUtilization * 100.0
}
