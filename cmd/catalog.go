package cmd

import "github.com/abhisek/adaptprep/internal/catalog"

// demoItems builds a small synthetic item bank covering every subskill in
// the closed enumeration, spanning a spread of difficulties so the
// selector and the estimators have something to chew on. Real content
// bundling is an external collaborator's job (per the core's Non-goals);
// this is only the demo CLI's stand-in catalog.
func demoItems() []catalog.Item {
	bs := []float64{-2, -1, 0, 1, 2}
	var items []catalog.Item
	for _, sub := range catalog.AllSubskills() {
		for i, b := range bs {
			id := sub.ID + "-" + string(rune('a'+i))
			items = append(items, catalog.Item{
				ID:                id,
				Section:           sub.Section,
				Kind:              catalog.KindSingleSelect,
				Choices:           []string{"A", "B", "C", "D"},
				CorrectIndex:      0,
				PrimarySubskill:   sub.ID,
				DifficultyTier:    tierForB(b),
				TimeBenchmarkSecs: 60,
				IRT:               catalog.IRTParams{A: 1, B: b, C: 0.25},
			})
		}
	}
	return items
}

func tierForB(b float64) int {
	switch {
	case b <= -1.5:
		return 1
	case b <= -0.5:
		return 2
	case b <= 0.5:
		return 3
	case b <= 1.5:
		return 4
	default:
		return 5
	}
}

func newDemoCatalog() (*catalog.MemoryReader, error) {
	return catalog.NewMemoryReader(demoItems())
}
