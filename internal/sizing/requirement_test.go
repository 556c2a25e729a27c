package sizing

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/model"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]model.ServerModel{
		makeModel("S922-8c", "S922", 8, 2.0),
		makeModel("E1080-40c", "E1080", 40, 10.0),
	})
}

func TestBaseRequirement_SumsContributions(t *testing.T) {
	cat := testCatalog()

	lines := []model.InventoryLine{
		{ModelRef: "S922-8c", ActiveCores: 8, Utilization: 1.0, Count: 2},   // 2*8*2.0 = 32
		{ModelRef: "E1080-40c", ActiveCores: 4, Utilization: 0.5, Count: 1}, // 1*4*10*0.5 = 20
	}

	got, err := BaseRequirement(cat, lines)
	if err != nil {
		t.Fatalf("BaseRequirement failed: %v", err)
	}
	if math.Abs(got-52.0) > 1e-9 {
		t.Errorf("BaseRequirement = %v, want 52", got)
	}
}

func TestBaseRequirement_UnknownModel(t *testing.T) {
	cat := testCatalog()

	lines := []model.InventoryLine{
		{ModelRef: "S922-8c", ActiveCores: 8, Utilization: 1.0, Count: 1},
		{ModelRef: "NOPE-99c", ActiveCores: 4, Utilization: 1.0, Count: 1},
	}

	got, err := BaseRequirement(cat, lines)
	if !errors.Is(err, catalog.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
	if !strings.Contains(err.Error(), "NOPE-99c") {
		t.Errorf("error should name the unresolved ref: %v", err)
	}
	if got != 0 {
		t.Errorf("no partial sums on error, got %v", got)
	}
}

func TestBaseRequirement_OrderIndependent(t *testing.T) {
	cat := testCatalog()

	lines := []model.InventoryLine{
		{ModelRef: "S922-8c", ActiveCores: 6, Utilization: 0.9, Count: 3},
		{ModelRef: "E1080-40c", ActiveCores: 40, Utilization: 0.75, Count: 2},
		{ModelRef: "S922-8c", ActiveCores: 2, Utilization: 0.3, Count: 1},
	}
	reversed := []model.InventoryLine{lines[2], lines[1], lines[0]}

	a, err := BaseRequirement(cat, lines)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BaseRequirement(cat, reversed)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("order changed the sum: %v vs %v", a, b)
	}
}

func TestBaseRequirement_DuplicateLinesMatchMerged(t *testing.T) {
	cat := testCatalog()

	split := []model.InventoryLine{
		{ModelRef: "S922-8c", ActiveCores: 8, Utilization: 1.0, Count: 2},
		{ModelRef: "S922-8c", ActiveCores: 8, Utilization: 1.0, Count: 3},
	}

	a, err := BaseRequirement(cat, split)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BaseRequirement(cat, model.Merge(split))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("merged inventory should sum the same: %v vs %v", a, b)
	}
}

func TestBaseRequirement_EmptyInventory(t *testing.T) {
	got, err := BaseRequirement(testCatalog(), nil)
	if err != nil {
		t.Fatalf("empty inventory should not error: %v", err)
	}
	if got != 0 {
		t.Errorf("BaseRequirement = %v, want 0", got)
	}
}

func TestBaseRequirement_RefIgnoresCase(t *testing.T) {
	lines := []model.InventoryLine{
		{ModelRef: "s922-8C", ActiveCores: 8, Utilization: 1.0, Count: 1},
	}

	got, err := BaseRequirement(testCatalog(), lines)
	if err != nil {
		t.Fatalf("case-insensitive ref should resolve: %v", err)
	}
	if math.Abs(got-16.0) > 1e-9 {
		t.Errorf("BaseRequirement = %v, want 16", got)
	}
}

func TestApplyGrowth_Identity(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		years int
	}{
		{"zero rate", 0, 5},
		{"zero years", 0.2, 0},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyGrowth(100, tt.rate, tt.years)
			if err != nil {
				t.Fatalf("ApplyGrowth failed: %v", err)
			}
			if got != 100 {
				t.Errorf("ApplyGrowth = %v, want 100 unchanged", got)
			}
		})
	}
}

func TestApplyGrowth_Compound(t *testing.T) {
	got, err := ApplyGrowth(100, 0.2, 3)
	if err != nil {
		t.Fatalf("ApplyGrowth failed: %v", err)
	}
	if math.Abs(got-172.8) > 1e-9 {
		t.Errorf("ApplyGrowth = %v, want 172.8", got)
	}
}

func TestApplyGrowth_RejectsNegativeInputs(t *testing.T) {
	if _, err := ApplyGrowth(100, -0.1, 3); !errors.Is(err, ErrInvalidGrowth) {
		t.Errorf("negative rate: expected ErrInvalidGrowth, got %v", err)
	}
	if _, err := ApplyGrowth(100, 0.1, -1); !errors.Is(err, ErrInvalidGrowth) {
		t.Errorf("negative years: expected ErrInvalidGrowth, got %v", err)
	}
}

func TestApplyGrowth_ZeroBase(t *testing.T) {
	got, err := ApplyGrowth(0, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("ApplyGrowth = %v, want 0", got)
	}
}
