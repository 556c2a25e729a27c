package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmoliv/powerfit/internal/model"
)

var (
	ErrCatalogFormat = errors.New("catalog file is missing required columns")
	ErrUnknownModel  = errors.New("model not found in catalog")
	ErrNoCandidates  = errors.New("no catalog models match the target generations")
)

// Catalog holds the rated server models loaded from the rating table.
type Catalog struct {
	entries []model.ServerModel
	byID    map[string]model.ServerModel
	skipped int
	source  string
}

// New builds a catalog from already-validated entries. Lookup is
// case-insensitive on the unique id; when a file carries duplicate ids the
// first occurrence wins.
func New(entries []model.ServerModel) *Catalog {
	c := &Catalog{
		entries: entries,
		byID:    make(map[string]model.ServerModel, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(e.ID)
		if _, ok := c.byID[key]; !ok {
			c.byID[key] = e
		}
	}
	return c
}

// Len returns the number of usable entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all usable entries in file order.
func (c *Catalog) Entries() []model.ServerModel {
	return c.entries
}

// SkippedRows returns the number of rows dropped during load.
func (c *Catalog) SkippedRows() int {
	return c.skipped
}

// Source returns the path the catalog was loaded from, if any.
func (c *Catalog) Source() string {
	return c.source
}

// Lookup finds a model by unique id, ignoring case.
func (c *Catalog) Lookup(id string) (model.ServerModel, bool) {
	m, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return m, ok
}

// Search returns the models whose unique id contains q, ignoring case,
// in file order. An empty query matches everything.
func (c *Catalog) Search(q string) []model.ServerModel {
	q = strings.ToLower(strings.TrimSpace(q))
	var matches []model.ServerModel
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.ID), q) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Targets returns the candidate models whose processor generation is in
// generations, in file order.
func (c *Catalog) Targets(generations []string) ([]model.ServerModel, error) {
	var targets []model.ServerModel
	for _, e := range c.entries {
		for _, gen := range generations {
			if e.IsGeneration(gen) {
				targets = append(targets, e)
				break
			}
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoCandidates
	}
	return targets, nil
}

// ResolveConfig finds the first model whose family matches name (ignoring
// case) with exactly cores maximum cores. Integrations identify installed
// machines this way rather than by unique id.
func (c *Catalog) ResolveConfig(family string, cores int) (model.ServerModel, error) {
	for _, e := range c.entries {
		if e.MatchesFamily(family) && e.MaxCores == cores {
			return e, nil
		}
	}
	return model.ServerModel{}, fmt.Errorf("%w: family %q with %d cores", ErrUnknownModel, family, cores)
}
