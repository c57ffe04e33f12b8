package bkt

import "math"

func clampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InitFromDiagnostic derives a starting BKT state from a subskill's
// diagnostic-phase theta/SE estimate plus its raw attempt/correct counts.
// Higher theta and lower SE (more confidence) push P(known) toward the
// theta-implied base rate; higher SE regresses it toward a neutral 0.4.
// Diagnostic accuracy sets the initial learn rate: a learner who is
// already scoring well on a subskill is assumed to pick up remaining gaps
// faster, and vice versa.
func InitFromDiagnostic(theta, se float64, attempts, correct int) (pKnown, pLearn, pForget float64) {
	base := clampTo(0.5+0.8*theta/6, 0.1, 0.9)
	confidence := math.Max(0, 1-se)
	pKnown = base*confidence + 0.4*(1-confidence)

	var accuracy float64
	if attempts > 0 {
		accuracy = float64(correct) / float64(attempts)
	}
	switch {
	case accuracy > 0.70:
		pLearn = 0.12
	case accuracy < 0.40:
		pLearn = 0.08
	default:
		pLearn = DefaultLearn
	}

	pForget = DefaultForget
	return
}
