package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/model"
	"github.com/rmoliv/powerfit/internal/report"
	"github.com/rmoliv/powerfit/internal/sizing"
)

const toolName = "size_servers"

// Tool computes ranked consolidation scenarios on behalf of the model.
type Tool struct {
	cat     *catalog.Catalog
	targets []model.ServerModel
	sizer   *sizing.Sizer
}

// NewTool binds the sizing engine to the loaded catalog and target models.
func NewTool(cat *catalog.Catalog, targets []model.ServerModel, sizer *sizing.Sizer) *Tool {
	return &Tool{cat: cat, targets: targets, sizer: sizer}
}

type toolServer struct {
	Model       string  `json:"model"`
	Count       int     `json:"count"`
	Cores       int     `json:"cores"`
	Utilization float64 `json:"utilization"`
}

type toolRequest struct {
	Inventory     []toolServer `json:"inventory"`
	GrowthPercent float64      `json:"growth_percent"`
	GrowthYears   int          `json:"growth_years"`
}

// Definition describes the tool to the Anthropic API.
func (t *Tool) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name: toolName,
			Description: anthropic.String(
				"Compute and rank hardware consolidation scenarios for the collected " +
					"inventory. Only call this once every server's model, count, active " +
					"cores and utilization are known."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"inventory": map[string]any{
						"type":        "array",
						"description": "Every server group in the current estate.",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"model": map[string]any{
									"type":        "string",
									"description": "Exact server model id, e.g. \"S922-8c\".",
								},
								"count": map[string]any{
									"type":        "integer",
									"description": "How many identical servers.",
								},
								"cores": map[string]any{
									"type":        "integer",
									"description": "Active cores per server.",
								},
								"utilization": map[string]any{
									"type":        "number",
									"description": "Peak utilization as a fraction, e.g. 0.8 for 80%.",
								},
							},
							"required": []string{"model", "count", "cores", "utilization"},
						},
					},
					"growth_percent": map[string]any{
						"type":        "number",
						"description": "Annual growth rate in percent, e.g. 20 for 20%. Zero when no projection.",
					},
					"growth_years": map[string]any{
						"type":        "integer",
						"description": "Years to project the growth over.",
					},
				},
				Required: []string{"inventory"},
			},
		},
	}
}

// Run executes a tool call and renders the result as markdown.
func (t *Tool) Run(ctx context.Context, input []byte) (string, error) {
	var req toolRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return "", fmt.Errorf("decode tool input: %w", err)
	}
	if len(req.Inventory) == 0 {
		return "", errors.New("the inventory is empty, collect at least one server first")
	}
	if req.GrowthPercent < 0 || req.GrowthYears < 0 {
		return "", errors.New("growth rate and years must not be negative")
	}

	lines := make([]model.InventoryLine, 0, len(req.Inventory))
	for _, s := range req.Inventory {
		if s.Cores <= 0 {
			return "", fmt.Errorf("server %q needs a positive active core count", s.Model)
		}
		util := s.Utilization
		switch {
		case util <= 0:
			util = 1.0
		case util > 1 && util <= 100:
			// Models sometimes send percent instead of a fraction.
			util = util / 100
		case util > 100:
			return "", fmt.Errorf("server %q has an impossible utilization %v", s.Model, s.Utilization)
		}
		count := s.Count
		if count <= 0 {
			count = 1
		}
		lines = append(lines, model.InventoryLine{
			ModelRef:    s.Model,
			ActiveCores: s.Cores,
			Utilization: util,
			Count:       count,
		})
	}

	base, err := sizing.BaseRequirement(t.cat, lines)
	if err != nil {
		return "", err
	}
	required := base
	rate := 0.0
	if req.GrowthPercent > 0 && req.GrowthYears > 0 {
		rate = req.GrowthPercent / 100
		required, err = sizing.ApplyGrowth(base, rate, req.GrowthYears)
		if err != nil {
			return "", err
		}
	}

	scenarios := t.sizer.Rank(required, t.targets)

	var buf bytes.Buffer
	rep := report.NewReporter("markdown", &buf)
	meta := report.ReportMeta{
		BaseRPerf:     base,
		RequiredRPerf: required,
		GrowthRate:    rate,
		GrowthYears:   req.GrowthYears,
		Candidates:    len(t.targets),
		GeneratedAt:   time.Now().UTC(),
	}
	if err := rep.Report(ctx, scenarios, meta); err != nil {
		return "", err
	}
	return buf.String(), nil
}
