package spacedrep

import (
	"math"
	"time"
)

// Quality is a review outcome grade.
type Quality int

const (
	Forgot Quality = 0
	Hard   Quality = 1
	Good   Quality = 2
	Easy   Quality = 3
)

// stabilityMultiplier and firstStability give the per-quality constants
// used by the FSRS-inspired stability update.
func stabilityMultiplier(q Quality) float64 {
	switch q {
	case Easy:
		return 3.5
	case Good:
		return 2.5
	default: // Hard
		return 1.3
	}
}

func firstStability(q Quality) float64 {
	switch q {
	case Easy:
		return 4.0
	case Good:
		return 1.0
	default: // Hard
		return 0.5
	}
}

// Review applies one FSRS-inspired review to card under quality q at time
// now, returning the updated card. This is the primary scheduler; new
// code must call this, not the legacy scheduler.
func Review(card Flashcard, q Quality, now time.Time) Flashcard {
	if q >= 2 {
		card = reviewSuccess(card, q)
	} else {
		card = reviewFailure(card, q)
	}

	card.Ease = math.Max(MinEase, card.Ease+(0.1-float64(3-int(q))*(0.08+float64(3-int(q))*0.02)))
	card.LastReview = now
	card.NextReview = now.Add(time.Duration(card.IntervalHours * float64(time.Hour)))
	return card
}

func reviewSuccess(card Flashcard, q Quality) Flashcard {
	if card.StabilityDays == 0 {
		card.StabilityDays = firstStability(q)
	} else {
		m := stabilityMultiplier(q)
		card.StabilityDays = math.Min(card.StabilityDays*m*(1-0.3*card.Difficulty), MaxIntervalDays)
	}
	card.Difficulty = clamp01(card.Difficulty - 0.1*float64(int(q)-2))
	card.IntervalHours = math.Max(1, math.Round(card.StabilityDays*0.9*24))
	card.Repetitions++
	return card
}

func reviewFailure(card Flashcard, q Quality) Flashcard {
	card.StabilityDays = math.Max(0.5, card.StabilityDays*0.2)
	card.Difficulty = math.Min(1, card.Difficulty+0.2)
	if q == Forgot {
		card.IntervalHours = 1
	} else {
		card.IntervalHours = 4
	}
	card.Repetitions = 0
	card.LapseCount++
	return card
}

// Retrievability estimates the probability of recall right now, given the
// card's stability and elapsed time since the last review — FSRS's
// namesake quantity, used only for reporting (the scheduling decision
// itself is driven by NextReview/IsDue, not by a live retrievability
// threshold).
func Retrievability(card Flashcard, now time.Time) float64 {
	if card.StabilityDays <= 0 || card.LastReview.IsZero() {
		return 0
	}
	elapsedDays := now.Sub(card.LastReview).Hours() / 24
	if elapsedDays <= 0 {
		return 1
	}
	return math.Exp(-elapsedDays / card.StabilityDays)
}

// SelectDue returns the due cards among candidates, ordered by overdue
// amount descending, tie-broken by ease ascending.
func SelectDue(candidates []Flashcard, now time.Time) []Flashcard {
	var due []Flashcard
	for _, c := range candidates {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	for i := 1; i < len(due); i++ {
		for j := i; j > 0 && lessDue(due[j], due[j-1], now); j-- {
			due[j], due[j-1] = due[j-1], due[j]
		}
	}
	return due
}

func lessDue(a, b Flashcard, now time.Time) bool {
	oa, ob := a.OverdueBy(now), b.OverdueBy(now)
	if oa != ob {
		return oa > ob // more overdue first
	}
	return a.Ease < b.Ease
}
