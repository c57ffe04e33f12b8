package irt

import (
	"math"

	"github.com/abhisek/adaptprep/internal/catalog"
)

// Config holds the numerical knobs for EAP estimation: quadrature node
// count, theta range, and the SE floor.
type Config struct {
	QuadratureNodes int
	ThetaMin        float64
	ThetaMax        float64
	SEFloor         float64
}

// DefaultConfig returns the standard quadrature configuration: 81 nodes
// over [-4, 4], SE floored at 0.01.
func DefaultConfig() Config {
	return Config{QuadratureNodes: 81, ThetaMin: -4, ThetaMax: 4, SEFloor: 0.01}
}

// Observation is one scored attempt against an item's IRT parameters.
type Observation struct {
	Params  catalog.IRTParams
	Correct bool
}

// EAP approximates the posterior mean and standard deviation of theta
// under a Gaussian prior N(priorMean, priorSD^2) given a set of scored
// observations, by quadrature over evenly spaced nodes in
// [cfg.ThetaMin, cfg.ThetaMax].
//
// With no observations, it returns the prior mean and SD, the SD raised to
// cfg.SEFloor if it is below it. If every node's posterior weight
// underflows to zero (the "numerical edge" failure mode), it also returns
// the prior that way rather than dividing by zero.
func EAP(priorMean, priorSD float64, obs []Observation, cfg Config) (theta, se float64) {
	if len(obs) == 0 {
		return priorMean, math.Max(priorSD, cfg.SEFloor)
	}

	nodes := cfg.QuadratureNodes
	if nodes < 2 {
		nodes = 2
	}
	step := (cfg.ThetaMax - cfg.ThetaMin) / float64(nodes-1)

	var totalWeight, weightedSum float64
	thetas := make([]float64, nodes)
	weights := make([]float64, nodes)

	for k := 0; k < nodes; k++ {
		t := cfg.ThetaMin + float64(k)*step
		thetas[k] = t

		w := gaussianDensity(t, priorMean, priorSD)
		for _, o := range obs {
			if !o.Params.Finite() {
				continue // zero-information item, skipped
			}
			p := Probability(t, o.Params)
			p = clampProb(p)
			if o.Correct {
				w *= p
			} else {
				w *= 1 - p
			}
		}
		weights[k] = w
		totalWeight += w
		weightedSum += w * t
	}

	if totalWeight <= 0 {
		// All likelihoods underflowed to zero: recover with the prior
		// rather than fail.
		return priorMean, math.Max(priorSD, cfg.SEFloor)
	}

	mean := weightedSum / totalWeight

	var varSum float64
	for k := 0; k < nodes; k++ {
		d := thetas[k] - mean
		varSum += weights[k] * d * d
	}
	variance := varSum / totalWeight
	sd := math.Sqrt(math.Max(variance, 0))

	if sd < cfg.SEFloor {
		sd = cfg.SEFloor
	}
	if mean < cfg.ThetaMin {
		mean = cfg.ThetaMin
	}
	if mean > cfg.ThetaMax {
		mean = cfg.ThetaMax
	}
	return mean, sd
}

func gaussianDensity(x, mean, sd float64) float64 {
	if sd <= 0 {
		sd = 1e-6
	}
	z := (x - mean) / sd
	return math.Exp(-0.5*z*z) / (sd * math.Sqrt(2*math.Pi))
}

// clampProb keeps a probability strictly inside (0, 1) so that likelihood
// products never hit an exact 0 or 1 boundary from floating point error.
func clampProb(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
