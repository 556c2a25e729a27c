package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmoliv/powerfit/internal/catalog"
	"github.com/rmoliv/powerfit/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Result is the inventory and projection collected by the wizard.
type Result struct {
	Lines       []model.InventoryLine
	GrowthRate  float64 // fraction per year
	GrowthYears int
}

// Wizard guides the user through entering the installed estate by hand.
type Wizard struct {
	cat *catalog.Catalog
	out io.Writer
}

// NewWizard creates a wizard over the loaded catalog.
func NewWizard(cat *catalog.Catalog, out io.Writer) *Wizard {
	return &Wizard{cat: cat, out: out}
}

// Run collects inventory lines until the user stops, then the optional
// growth projection. Lines repeating a model merge by adding counts.
func (w *Wizard) Run() (*Result, error) {
	fmt.Fprintln(w.out, titleStyle.Render("PowerFit interactive sizing"))
	fmt.Fprintln(w.out, dimStyle.Render("Describe the installed servers one group at a time."))
	fmt.Fprintln(w.out)

	var lines []model.InventoryLine
	for {
		line, err := w.collectLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)

		more := false
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Add another server group?").
				Value(&more),
		)).WithTheme(huh.ThemeCharm())
		if err := confirm.Run(); err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	result := &Result{Lines: model.Merge(lines)}

	project := false
	confirm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Apply an annual growth projection?").
			Value(&project),
	)).WithTheme(huh.ThemeCharm())
	if err := confirm.Run(); err != nil {
		return nil, err
	}
	if project {
		rate, years, err := w.collectGrowth()
		if err != nil {
			return nil, err
		}
		result.GrowthRate = rate
		result.GrowthYears = years
	}

	return result, nil
}

// collectLine searches the catalog, disambiguates, and asks for the group's
// configuration.
func (w *Wizard) collectLine() (model.InventoryLine, error) {
	var chosen model.ServerModel
	for {
		var query string
		search := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Model search").
				Description("Part of the unique model id, e.g. \"S922\"").
				Placeholder("S922").
				Value(&query),
		)).WithTheme(huh.ThemeCharm())
		if err := search.Run(); err != nil {
			return model.InventoryLine{}, err
		}

		matches := w.cat.Search(query)
		if len(matches) == 0 {
			fmt.Fprintln(w.out, warnStyle.Render(fmt.Sprintf("No models match %q.", query)))
			continue
		}
		if len(matches) == 1 {
			chosen = matches[0]
			break
		}

		options := make([]huh.Option[string], 0, len(matches))
		for _, e := range matches {
			label := fmt.Sprintf("%s  (%d cores, %s)", e.ID, e.MaxCores, e.Generation)
			options = append(options, huh.NewOption(label, e.ID))
		}
		var id string
		sel := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%d models match", len(matches))).
				Options(options...).
				Value(&id),
		)).WithTheme(huh.ThemeCharm())
		if err := sel.Run(); err != nil {
			return model.InventoryLine{}, err
		}
		chosen, _ = w.cat.Lookup(id)
		break
	}

	cores := strconv.Itoa(chosen.MaxCores)
	util := "100"
	count := "1"
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Active cores per server (max %d)", chosen.MaxCores)).
			Value(&cores).
			Validate(validatePositiveInt),
		huh.NewInput().
			Title("Observed utilization % (1-100)").
			Value(&util).
			Validate(validatePercent),
		huh.NewInput().
			Title("Number of identical servers").
			Value(&count).
			Validate(validatePositiveInt),
	).Title(chosen.ID)).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return model.InventoryLine{}, err
	}

	coresN, _ := strconv.Atoi(strings.TrimSpace(cores))
	utilN, _ := strconv.ParseFloat(strings.TrimSpace(util), 64)
	countN, _ := strconv.Atoi(strings.TrimSpace(count))

	return model.InventoryLine{
		ModelRef:    chosen.ID,
		ActiveCores: coresN,
		Utilization: utilN / 100,
		Count:       countN,
	}, nil
}

func (w *Wizard) collectGrowth() (float64, int, error) {
	rate := "20"
	years := "3"
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Annual growth rate %").
			Value(&rate).
			Validate(validateNonNegativeFloat),
		huh.NewInput().
			Title("Projection years").
			Value(&years).
			Validate(validateNonNegativeInt),
	).Title("Growth projection")).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return 0, 0, err
	}

	rateN, _ := strconv.ParseFloat(strings.TrimSpace(rate), 64)
	yearsN, _ := strconv.Atoi(strings.TrimSpace(years))
	return rateN / 100, yearsN, nil
}

// RenderInventory prints the collected estate before sizing.
func (w *Wizard) RenderInventory(lines []model.InventoryLine) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, titleStyle.Render("Installed estate"))
	for _, l := range lines {
		fmt.Fprintf(w.out, "  %-24s %3d cores  %3.0f%% util  x%d\n",
			l.ModelRef, l.ActiveCores, l.Utilization*100, l.Count)
	}
	fmt.Fprintln(w.out)
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v <= 0 || v > 100 {
		return fmt.Errorf("must be between 1 and 100")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
