package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmoliv/powerfit/internal/model"
)

const sampleTable = `model;family;cores_max;rperf_total;frequency_ghz;processor
S922-8c;S922;8c;120.5;3.4;p10
S922-12c;S922;12c;175.2;3.4;p10
S1022-16c;S1022;16;260.0;3.6;P11
E1080-40c;E1080;40c;980.0;3.9;p10
POWER8-OLD;P8;24c;310.0;3.5;p8
`

func parseSample(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(sampleTable), DefaultDelimiter)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func TestParse_BuildsEntries(t *testing.T) {
	c := parseSample(t)

	if c.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", c.Len())
	}
	if c.SkippedRows() != 0 {
		t.Errorf("expected 0 skipped rows, got %d", c.SkippedRows())
	}

	m, ok := c.Lookup("S922-12c")
	if !ok {
		t.Fatal("expected S922-12c in catalog")
	}
	if m.MaxCores != 12 {
		t.Errorf("MaxCores = %d, want 12 (suffix not stripped?)", m.MaxCores)
	}
	if math.Abs(m.PerfPerCore-175.2/12.0) > 1e-9 {
		t.Errorf("PerfPerCore = %v, want %v", m.PerfPerCore, 175.2/12.0)
	}
	if m.FrequencyGHz != "3.4" {
		t.Errorf("FrequencyGHz = %q, want %q", m.FrequencyGHz, "3.4")
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	table := "model;family;rperf_total;processor\nS922-8c;S922;120.5;p10\n"

	_, err := Parse(strings.NewReader(table), DefaultDelimiter)
	if !errors.Is(err, ErrCatalogFormat) {
		t.Fatalf("expected ErrCatalogFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "cores_max") {
		t.Errorf("error should name the missing column: %v", err)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := Parse(strings.NewReader(""), DefaultDelimiter)
	if !errors.Is(err, ErrCatalogFormat) {
		t.Fatalf("expected ErrCatalogFormat for empty input, got %v", err)
	}
}

func TestParse_SkipsBadRows(t *testing.T) {
	table := `model;family;cores_max;rperf_total;frequency_ghz;processor
GOOD-8c;G;8c;100.0;3.0;p10
BAD-CORES;G;eightc;100.0;3.0;p10
ZERO-CORES;G;0c;100.0;3.0;p10
BAD-RPERF;G;8c;n/a;3.0;p10
ZERO-RPERF;G;8c;0;3.0;p10
;G;8c;100.0;3.0;p10
ALSO-GOOD-16c;G;16;200.0;3.0;p11
`

	c, err := Parse(strings.NewReader(table), DefaultDelimiter)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 usable entries, got %d", c.Len())
	}
	if c.SkippedRows() != 5 {
		t.Errorf("expected 5 skipped rows, got %d", c.SkippedRows())
	}
	if _, ok := c.Lookup("BAD-CORES"); ok {
		t.Error("row with unparsable cores should have been dropped")
	}
}

func TestParse_DuplicateIDFirstWins(t *testing.T) {
	table := `model;family;cores_max;rperf_total;processor
DUP-8c;G;8;100.0;p10
DUP-8c;G;8;999.0;p10
`

	c, err := Parse(strings.NewReader(table), DefaultDelimiter)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	m, ok := c.Lookup("dup-8c")
	if !ok {
		t.Fatal("expected DUP-8c in catalog")
	}
	if m.TotalRPerf != 100.0 {
		t.Errorf("lookup should return the first occurrence, got rperf %v", m.TotalRPerf)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(path, []byte(sampleTable), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, DefaultDelimiter)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("expected 5 entries, got %d", c.Len())
	}
	if c.Source() != path {
		t.Errorf("Source() = %q, want %q", c.Source(), path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), DefaultDelimiter)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTargets_FiltersByGeneration(t *testing.T) {
	c := parseSample(t)

	targets, err := c.Targets([]string{"p10", "p11"})
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if len(targets) != 4 {
		t.Fatalf("expected 4 target models, got %d", len(targets))
	}
	for _, m := range targets {
		if m.ID == "POWER8-OLD" {
			t.Error("p8 model should not be a target")
		}
	}
	// P11 tag in the file, p11 in the filter.
	found := false
	for _, m := range targets {
		if m.ID == "S1022-16c" {
			found = true
		}
	}
	if !found {
		t.Error("generation match should ignore case")
	}
}

func TestTargets_NoneMatch(t *testing.T) {
	c := parseSample(t)

	_, err := c.Targets([]string{"p12"})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	c := parseSample(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"family substring", "s922", 2},
		{"exact id", "E1080-40c", 1},
		{"no match", "zz99", 0},
		{"empty matches all", "", 5},
		{"surrounding space", "  s1022  ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Search(tt.query); len(got) != tt.want {
				t.Errorf("Search(%q) returned %d models, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestSearch_PreservesFileOrder(t *testing.T) {
	c := parseSample(t)

	got := c.Search("s922")
	if len(got) != 2 || got[0].ID != "S922-8c" || got[1].ID != "S922-12c" {
		t.Errorf("expected file order [S922-8c S922-12c], got %+v", got)
	}
}

func TestResolveConfig(t *testing.T) {
	c := parseSample(t)

	tests := []struct {
		name    string
		family  string
		cores   int
		wantID  string
		wantErr bool
	}{
		{"exact", "S922", 12, "S922-12c", false},
		{"case-insensitive family", "s1022", 16, "S1022-16c", false},
		{"unknown family", "S814", 8, "", true},
		{"known family wrong cores", "S922", 10, "", true},
		{"family substring does not match", "S92", 12, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := c.ResolveConfig(tt.family, tt.cores)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownModel) {
					t.Fatalf("expected ErrUnknownModel, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveConfig failed: %v", err)
			}
			if m.ID != tt.wantID {
				t.Errorf("resolved %q, want %q", m.ID, tt.wantID)
			}
		})
	}
}

func TestResolveConfig_FirstMatchWins(t *testing.T) {
	entries := []model.ServerModel{
		{ID: "A-8c", Family: "A", MaxCores: 8, TotalRPerf: 100, PerfPerCore: 12.5},
		{ID: "A-8c-alt", Family: "A", MaxCores: 8, TotalRPerf: 110, PerfPerCore: 13.75},
	}
	c := New(entries)

	m, err := c.ResolveConfig("a", 8)
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if m.ID != "A-8c" {
		t.Errorf("expected first matching entry, got %q", m.ID)
	}
}
