package model

// InventoryLine describes a group of identical installed servers whose
// delivered capacity contributes to the sizing baseline.
type InventoryLine struct {
	ModelRef    string  // resolves against catalog unique ids
	ActiveCores int     // activated cores per server
	Utilization float64 // observed utilization fraction, (0, 1]
	Count       int     // number of identical servers
}

// Merge folds lines that reference the same model into a single line by
// adding server counts. The first line seen for a model keeps its cores and
// utilization. Order of distinct models is preserved.
func Merge(lines []InventoryLine) []InventoryLine {
	merged := make([]InventoryLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ModelRef]; ok {
			merged[i].Count += line.Count
			continue
		}
		index[line.ModelRef] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
