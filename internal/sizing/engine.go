package sizing

import (
	"math"
	"sort"

	"github.com/rmoliv/powerfit/internal/model"
)

const (
	// MinCoreUtilization is the lowest acceptable ratio of activated cores
	// to a model's maximum. Configurations below it waste licensed capacity
	// and are discarded.
	MinCoreUtilization = 0.60

	// MaxScenarios caps the ranked list presented to the user.
	MaxScenarios = 10
)

// Sizer evaluates candidate models against a required rPerf and keeps the
// best configuration per model family.
type Sizer struct {
	UtilizationFloor float64
	MaxResults       int
}

// NewSizer returns a Sizer with the standard activation policy.
func NewSizer() *Sizer {
	return &Sizer{
		UtilizationFloor: MinCoreUtilization,
		MaxResults:       MaxScenarios,
	}
}

// Rank sizes every candidate for the required rPerf and returns at most
// MaxResults scenarios, one per family, ordered by server count and then
// surplus capacity. An empty result means no candidate can serve the
// requirement acceptably; it is a valid outcome, not an error.
func (s *Sizer) Rank(required float64, candidates []model.ServerModel) []model.Scenario {
	champions := make(map[string]model.Scenario, len(candidates))
	var families []string // first-encounter order, kept for stable ties

	for _, m := range candidates {
		sc, ok := s.evaluate(required, m)
		if !ok {
			continue
		}
		champ, seen := champions[m.Family]
		if !seen {
			champions[m.Family] = sc
			families = append(families, m.Family)
			continue
		}
		if sc.Servers < champ.Servers ||
			(sc.Servers == champ.Servers && sc.SurplusRPerf < champ.SurplusRPerf) {
			champions[m.Family] = sc
		}
	}

	ranked := make([]model.Scenario, 0, len(families))
	for _, fam := range families {
		ranked = append(ranked, champions[fam])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Servers != ranked[j].Servers {
			return ranked[i].Servers < ranked[j].Servers
		}
		return ranked[i].SurplusRPerf < ranked[j].SurplusRPerf
	})

	if len(ranked) > s.MaxResults {
		ranked = ranked[:s.MaxResults]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// evaluate sizes one candidate model. ok is false when the model cannot
// serve the requirement under the activation policy.
func (s *Sizer) evaluate(required float64, m model.ServerModel) (model.Scenario, bool) {
	if m.MaxCores <= 0 || m.PerfPerCore <= 0 {
		return model.Scenario{}, false
	}

	coresNeeded := required / m.PerfPerCore
	servers := int(math.Ceil(coresNeeded / float64(m.MaxCores)))
	if servers <= 0 {
		return model.Scenario{}, false
	}

	cores := int(math.Ceil(coresNeeded / float64(servers)))
	// Power cores activate in pairs.
	if cores%2 != 0 {
		cores++
	}

	utilization := float64(cores) / float64(m.MaxCores)
	// Pair rounding can push past the physical maximum; such configurations
	// are rejected, never clamped.
	if utilization < s.UtilizationFloor || cores > m.MaxCores {
		return model.Scenario{}, false
	}

	total := float64(servers) * float64(cores) * m.PerfPerCore
	return model.Scenario{
		ModelID:         m.ID,
		Family:          m.Family,
		Generation:      m.Generation,
		FrequencyGHz:    m.FrequencyGHz,
		Servers:         servers,
		CoresPerServer:  cores,
		MaxCores:        m.MaxCores,
		CoreUtilization: utilization,
		TotalRPerf:      total,
		SurplusRPerf:    total - required,
	}, true
}
