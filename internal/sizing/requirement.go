package sizing

import (
	"errors"
	"fmt"
	"math"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/model"
)

// ErrInvalidGrowth rejects negative growth parameters.
var ErrInvalidGrowth = errors.New("growth rate and years must not be negative")

// BaseRequirement computes the aggregate rPerf the installed estate
// delivers today: for every inventory line, servers × active cores ×
// per-core rPerf of the model × observed utilization, summed over lines.
// Lines referencing the same model simply add up, so callers may pass
// merged or unmerged inventories. An unresolvable model ref fails the
// whole computation.
func BaseRequirement(cat *catalog.Catalog, lines []model.InventoryLine) (float64, error) {
	var total float64
	for _, line := range lines {
		m, ok := cat.Lookup(line.ModelRef)
		if !ok {
			return 0, fmt.Errorf("%w: %q", catalog.ErrUnknownModel, line.ModelRef)
		}
		total += float64(line.Count) * float64(line.ActiveCores) * m.PerfPerCore * line.Utilization
	}
	return total, nil
}

// ApplyGrowth projects base forward by years of compound annual growth.
// rate is a fraction (0.20 = 20% per year). A zero rate or zero years
// returns base unchanged.
func ApplyGrowth(base, rate float64, years int) (float64, error) {
	if rate < 0 || years < 0 {
		return 0, fmt.Errorf("%w: rate %v, years %d", ErrInvalidGrowth, rate, years)
	}
	if rate == 0 || years == 0 {
		return base, nil
	}
	return base * math.Pow(1+rate, float64(years)), nil
}
