package report

import (
	"context"
	"io"
	"time"

	"github.com/rmoliv/powerfit/internal/model"
)

// Reporter formats and writes ranked scenarios to an output destination.
type Reporter interface {
	Report(ctx context.Context, scenarios []model.Scenario, meta ReportMeta) error
}

// ReportMeta contains contextual metadata for the report.
type ReportMeta struct {
	BaseRPerf     float64   `json:"base_rperf"`
	RequiredRPerf float64   `json:"required_rperf"`
	GrowthRate    float64   `json:"growth_rate"` // fraction per year, 0 when no projection
	GrowthYears   int       `json:"growth_years"`
	Generations   []string  `json:"generations,omitempty"`
	CatalogPath   string    `json:"catalog_path,omitempty"`
	Candidates    int       `json:"candidates"`
	SkippedRows   int       `json:"skipped_rows,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Projected reports whether a growth projection was applied.
func (m ReportMeta) Projected() bool {
	return m.GrowthRate > 0 && m.GrowthYears > 0
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "markdown":
		return &MarkdownReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}
