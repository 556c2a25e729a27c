package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rmoliv/powerfit/internal/model"
)

// JSONReporter outputs ranked scenarios as JSON.
type JSONReporter struct {
	w io.Writer
}

type jsonOutput struct {
	Meta      ReportMeta       `json:"meta"`
	Scenarios []model.Scenario `json:"scenarios"`
}

func (r *JSONReporter) Report(ctx context.Context, scenarios []model.Scenario, meta ReportMeta) error {
	output := jsonOutput{
		Meta:      meta,
		Scenarios: scenarios,
	}
	if output.Scenarios == nil {
		output.Scenarios = []model.Scenario{}
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
