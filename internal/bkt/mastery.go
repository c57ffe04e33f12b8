package bkt

import "time"

// MasteryState is the one-record-per-(learner, subskill) joint model: the
// IRT ability pair (Theta, SE) plus the BKT probabilistic state. The IRT
// half is estimated by the irt package and written in here by the
// controller that owns the update step; BKT owns the probabilistic fields
// and the attempt bookkeeping.
type MasteryState struct {
	SubskillID string

	Theta float64
	SE    float64

	State State
}

// NewMasteryState returns a lazily-created default state for a subskill
// seen for the first time, with theta/SE at the prior.
func NewMasteryState(subskillID string, priorTheta, priorSE float64) MasteryState {
	return MasteryState{
		SubskillID: subskillID,
		Theta:      priorTheta,
		SE:         priorSE,
		State:      NewState(),
	}
}

// FromDiagnostic builds an initial MasteryState from diagnostic results,
// via InitFromDiagnostic's theta/SE-to-BKT-parameter mapping.
func FromDiagnostic(subskillID string, theta, se float64, attempts, correct int) MasteryState {
	pKnown, pLearn, pForget := InitFromDiagnostic(theta, se, attempts, correct)
	return MasteryState{
		SubskillID: subskillID,
		Theta:      theta,
		SE:         se,
		State: State{
			PKnown:       pKnown,
			PLearn:       pLearn,
			PForget:      pForget,
			AttemptCount: attempts,
			CorrectCount: correct,
		},
	}
}

// ApplyAttempt folds one scored attempt into the mastery state: forgetting
// since LastPracticed, the Bayesian update under the given slip/guess
// (global config values, not per-subskill state), then the learn-rate
// adjustment, and records the new theta/SE the caller already computed via
// EAP over the relevant attempt history. now becomes the new
// LastPracticed.
func (m MasteryState) ApplyAttempt(newTheta, newSE float64, correct bool, responseTimeMs, timeBenchmarkSecs int, slip, guess float64, now time.Time) MasteryState {
	elapsedDays := 0.0
	if !m.State.LastPracticed.IsZero() {
		elapsedDays = now.Sub(m.State.LastPracticed).Hours() / 24
	}

	m.State = Observe(m.State, correct, elapsedDays, responseTimeMs, timeBenchmarkSecs, slip, guess)
	m.State.LastPracticed = now
	m.Theta = newTheta
	m.SE = newSE
	return m
}
