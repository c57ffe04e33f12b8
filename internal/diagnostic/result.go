package diagnostic

import (
	"sort"

	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/irt"
)

// SubskillEstimate is the per-subskill posterior snapshot reported at
// diagnostic completion.
type SubskillEstimate struct {
	SubskillID        string
	Theta             float64
	SE                float64
	ItemsAdministered int
	Accuracy          float64
}

// Result is the immutable snapshot emitted when the diagnostic
// terminates.
type Result struct {
	PerSubskill           []SubskillEstimate
	SectionMeans          map[catalog.Section]float64
	ScaledScores          map[catalog.Section]irt.ScaledScore
	RecommendedFocusAreas []string
	TotalWallClockSeconds float64
}

// buildResult assembles a Result from the final per-subskill progress map
// and the elapsed wall-clock duration. Section means are the unweighted
// mean theta over each section's subskills; recommended focus areas are
// the three subskills with the smallest theta.
func buildResult(progress map[string]*subskillProgress, elapsedSeconds float64) Result {
	estimates := make([]SubskillEstimate, 0, len(progress))
	sectionSums := map[catalog.Section]float64{}
	sectionCounts := map[catalog.Section]int{}

	ids := make([]string, 0, len(progress))
	for id := range progress {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := progress[id]
		est := SubskillEstimate{
			SubskillID:        id,
			Theta:             p.theta,
			SE:                p.se,
			ItemsAdministered: len(p.attempts),
			Accuracy:          p.accuracy(),
		}
		estimates = append(estimates, est)

		if sub, err := catalog.GetSubskill(id); err == nil {
			sectionSums[sub.Section] += p.theta
			sectionCounts[sub.Section]++
		}
	}

	sectionMeans := make(map[catalog.Section]float64, len(sectionSums))
	scaledScores := make(map[catalog.Section]irt.ScaledScore, len(sectionSums))
	for sec, sum := range sectionSums {
		mean := sum / float64(sectionCounts[sec])
		sectionMeans[sec] = mean
		scaledScores[sec] = irt.MapScaledScore(sec, mean)
	}

	focus := make([]SubskillEstimate, len(estimates))
	copy(focus, estimates)
	sort.Slice(focus, func(i, j int) bool { return focus[i].Theta < focus[j].Theta })
	k := 3
	if k > len(focus) {
		k = len(focus)
	}
	recommended := make([]string, 0, k)
	for i := 0; i < k; i++ {
		recommended = append(recommended, focus[i].SubskillID)
	}

	return Result{
		PerSubskill:           estimates,
		SectionMeans:          sectionMeans,
		ScaledScores:          scaledScores,
		RecommendedFocusAreas: recommended,
		TotalWallClockSeconds: elapsedSeconds,
	}
}
