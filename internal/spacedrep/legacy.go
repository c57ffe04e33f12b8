package spacedrep

import "time"

// BaseIntervals is the legacy scheduler's expanding interval schedule, in
// days. Stage 0 is the first review after a card is introduced.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// GraduationStage is the number of consecutive correct reviews after which
// a card graduates.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated cards.
const GraduatedIntervalDays = 90

// LegacyCardState is the SM-2-style, stage-indexed review state preserved
// for historical parity. The FSRS-inspired scheduler in fsrs.go is the
// intended target for new sessions; this path exists only so a flashcard
// deck scheduled under the old rules keeps working.
type LegacyCardState struct {
	Word            string
	Stage           int
	NextReviewDate  time.Time
	ConsecutiveHits int
	Graduated       bool
	LastReviewDate  time.Time
}

// InitLegacyCard returns a fresh legacy review state, first due after
// BaseIntervals[0] days.
func InitLegacyCard(word string, now time.Time) LegacyCardState {
	return LegacyCardState{
		Word:           word,
		NextReviewDate: now.AddDate(0, 0, BaseIntervals[0]),
		LastReviewDate: now,
	}
}

// IsDue reports whether the card is at or past its review date.
func (rs LegacyCardState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewDate)
}

// OverdueDays returns how many days past due the card is, or 0 if not yet
// due.
func (rs LegacyCardState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReviewDate) {
		return 0
	}
	return now.Sub(rs.NextReviewDate).Hours() / 24.0
}

// CurrentIntervalDays returns the card's current review interval in days.
func (rs LegacyCardState) CurrentIntervalDays() int {
	if rs.Graduated {
		return GraduatedIntervalDays
	}
	if rs.Stage >= len(BaseIntervals) {
		return BaseIntervals[len(BaseIntervals)-1]
	}
	return BaseIntervals[rs.Stage]
}

// IsRustyThreshold reports whether the card has exceeded its grace period
// (half its current interval) past due.
func (rs LegacyCardState) IsRustyThreshold(now time.Time) bool {
	if !rs.IsDue(now) {
		return false
	}
	interval := rs.CurrentIntervalDays()
	graceHours := float64(interval) * 0.5 * 24.0
	threshold := rs.NextReviewDate.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewLegacy applies one legacy review outcome, advancing the stage on a
// correct answer (graduating once ConsecutiveHits reaches
// GraduationStage) and resetting the hit streak on an incorrect one
// without moving NextReviewDate backward.
func ReviewLegacy(rs LegacyCardState, correct bool, now time.Time) LegacyCardState {
	rs.LastReviewDate = now

	if correct {
		rs.ConsecutiveHits++
		if !rs.Graduated {
			rs.Stage++
			if rs.ConsecutiveHits >= GraduationStage {
				rs.Graduated = true
			}
		}
		rs.NextReviewDate = now.AddDate(0, 0, rs.CurrentIntervalDays())
	} else {
		rs.ConsecutiveHits = 0
	}
	return rs
}
