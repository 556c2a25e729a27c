package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rmoliv/powerfit/internal/model"
)

// DefaultDelimiter is the field separator used by published rating tables.
const DefaultDelimiter = ';'

// Rating table columns. Header matching is case-insensitive and extra
// columns are ignored; frequency_ghz is optional.
const (
	colModel     = "model"
	colFamily    = "family"
	colCores     = "cores_max"
	colRPerf     = "rperf_total"
	colProcessor = "processor"
	colFrequency = "frequency_ghz"
)

type columnIndex struct {
	model     int
	family    int
	cores     int
	rperf     int
	processor int
	frequency int
}

// Load reads the rating table at path.
func Load(path string, delimiter rune) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	c.source = path
	return c, nil
}

// Parse reads a rating table from r. A missing required column makes the
// whole table unusable; a row that fails to parse is dropped and counted,
// never fatal.
func Parse(r io.Reader, delimiter rune) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrCatalogFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var entries []model.ServerModel
	skipped := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		entry, ok := buildEntry(rec, cols)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	c := New(entries)
	c.skipped = skipped
	return c, nil
}

func mapColumns(header []string) (columnIndex, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := byName[name]; !ok {
			byName[name] = i
		}
	}

	cols := columnIndex{frequency: -1}
	for _, req := range []struct {
		name string
		dst  *int
	}{
		{colModel, &cols.model},
		{colFamily, &cols.family},
		{colCores, &cols.cores},
		{colRPerf, &cols.rperf},
		{colProcessor, &cols.processor},
	} {
		i, ok := byName[req.name]
		if !ok {
			return columnIndex{}, fmt.Errorf("%w: %s", ErrCatalogFormat, req.name)
		}
		*req.dst = i
	}
	if i, ok := byName[colFrequency]; ok {
		cols.frequency = i
	}
	return cols, nil
}

func buildEntry(rec []string, cols columnIndex) (model.ServerModel, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	id := field(cols.model)
	family := field(cols.family)
	if id == "" || family == "" {
		return model.ServerModel{}, false
	}

	cores, err := parseCores(field(cols.cores))
	if err != nil || cores <= 0 {
		return model.ServerModel{}, false
	}

	rperf, err := strconv.ParseFloat(field(cols.rperf), 64)
	if err != nil || rperf <= 0 {
		return model.ServerModel{}, false
	}

	return model.ServerModel{
		ID:           id,
		Family:       family,
		Generation:   field(cols.processor),
		FrequencyGHz: field(cols.frequency),
		MaxCores:     cores,
		TotalRPerf:   rperf,
		PerfPerCore:  rperf / float64(cores),
	}, true
}

// parseCores accepts plain integers and values carrying the published "c"
// core-count suffix ("24c").
func parseCores(v string) (int, error) {
	v = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "c")
	return strconv.Atoi(strings.TrimSpace(v))
}
