// Package irt implements the 3-parameter-logistic Item Response Theory
// engine: response probability, Fisher information, EAP ability
// estimation by fixed-grid quadrature, and scaled-score mapping.
package irt

import (
	"math"

	"github.com/abhisek/adaptprep/internal/catalog"
)

// Probability returns P(correct | theta, a, b, c) under the 3PL model.
// A non-finite parameter triple is undefined; callers should check
// catalog.IRTParams.Finite() first and treat the item as zero-information.
func Probability(theta float64, p catalog.IRTParams) float64 {
	z := -p.A * (theta - p.B)
	return p.C + (1-p.C)/(1+math.Exp(z))
}

// Information returns the Fisher information an item provides about theta.
// It returns 0 when P is at or below c, or at or above 1, within floating
// point tolerance, rather than letting the (1-c) denominator blow up.
func Information(theta float64, p catalog.IRTParams) float64 {
	prob := Probability(theta, p)
	const eps = 1e-9
	if prob <= p.C+eps || prob >= 1-eps {
		return 0
	}
	num := prob - p.C
	denom := 1 - p.C
	ratio := num / denom
	return p.A * p.A * ratio * ratio * (1 - prob) / prob
}
