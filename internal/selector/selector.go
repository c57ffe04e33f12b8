// Package selector picks the next item to present: a hard eligibility
// filter followed by a multi-criteria score (information + balancing +
// zone-of-proximal-development guardrail - exposure penalty), with a
// random tie-break among the top three candidates to avoid
// determinism-induced over-exposure of tied items.
package selector

import (
	"errors"
	"math/rand"

	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/irt"
	"github.com/abhisek/adaptprep/internal/session"
)

// ErrCatalogExhausted is returned when no item at all — eligible or
// fallback — can be offered. The controller treats this as termination,
// not as a propagated error.
var ErrCatalogExhausted = errors.New("selector: catalog exhausted")

// Mode is the selection mode, which sets the ZPD guardrail's target
// accuracy.
type Mode string

const (
	ModeLearning   Mode = "learning"
	ModeAssessment Mode = "assessment"
	ModeReview     Mode = "review"
)

func targetAccuracy(mode Mode) float64 {
	switch mode {
	case ModeAssessment:
		return 0.50
	case ModeReview:
		return 0.60
	default:
		return 0.70
	}
}

const (
	tolerance   = 0.15
	lambdaAcc   = 2.0
	betaBalance = 0.5
	gammaExp    = 0.01
	topK        = 3
)

// Constraints is the content-constraint record bounding eligibility.
type Constraints struct {
	MaxPerSubskill int
	MinPerSubskill int
	MaxExposure    int
}

// ExposureCounts reports a candidate's global ("lifetime", cross-session)
// exposure count by item id. A nil or missing entry is treated as zero.
type ExposureCounts map[string]int

// Selector picks items from a fixed candidate set under the rules above.
// It holds no mutable state of its own; all per-session state lives in
// session.History, passed in on each call.
type Selector struct {
	rng *rand.Rand
}

// New returns a Selector seeded deterministically by seed, so the
// top-three tie-break uses a seeded PRNG rather than an unseeded one, for
// reproducible tests.
func New(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

type candidate struct {
	item  catalog.Item
	score float64
}

// Select returns the next item to present from items, given the current
// theta estimate, session history, selection mode, constraints, and
// global exposure counts. If targetSubskills is non-empty, only items
// whose primary or secondary subskill intersects it are considered
// eligible (used by the diagnostic controller to target one subskill at a
// time); an empty targetSubskills means no subskill restriction.
func (s *Selector) Select(theta float64, items []catalog.Item, hist *session.History, mode Mode, c Constraints, exposure ExposureCounts, targetSubskills map[string]bool) (catalog.Item, error) {
	eligible := s.eligible(items, hist, c, exposure, targetSubskills)

	if len(eligible) == 0 {
		return s.fallback(items, hist, targetSubskills)
	}

	target := targetAccuracy(mode)
	scored := make([]candidate, 0, len(eligible))
	for _, it := range eligible {
		scored = append(scored, candidate{item: it, score: s.score(it, theta, target, hist, c, exposure)})
	}

	return s.pickFromTop(scored), nil
}

func (s *Selector) eligible(items []catalog.Item, hist *session.History, c Constraints, exposure ExposureCounts, targetSubskills map[string]bool) []catalog.Item {
	var out []catalog.Item
	for _, it := range items {
		if hist.Seen(it.ID) {
			continue
		}
		if len(targetSubskills) > 0 && !matchesTarget(it, targetSubskills) {
			continue
		}
		if hist.SubskillCount(it.PrimarySubskill) >= c.MaxPerSubskill {
			continue
		}
		if exposure[it.ID] >= c.MaxExposure {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesTarget(it catalog.Item, targetSubskills map[string]bool) bool {
	if targetSubskills[it.PrimarySubskill] {
		return true
	}
	for _, sub := range it.SecondarySubskills {
		if targetSubskills[sub] {
			return true
		}
	}
	return false
}

// fallback returns any unseen item (optionally still honoring the
// subskill target, since a targeted fallback is still preferable),
// ignoring all other constraints; if none exists, reports catalog
// exhaustion.
func (s *Selector) fallback(items []catalog.Item, hist *session.History, targetSubskills map[string]bool) (catalog.Item, error) {
	var targeted, any []catalog.Item
	for _, it := range items {
		if hist.Seen(it.ID) {
			continue
		}
		any = append(any, it)
		if len(targetSubskills) == 0 || matchesTarget(it, targetSubskills) {
			targeted = append(targeted, it)
		}
	}
	if len(targeted) > 0 {
		return targeted[s.rng.Intn(len(targeted))], nil
	}
	if len(any) > 0 {
		return any[s.rng.Intn(len(any))], nil
	}
	return catalog.Item{}, ErrCatalogExhausted
}

func (s *Selector) score(it catalog.Item, theta, target float64, hist *session.History, c Constraints, exposure ExposureCounts) float64 {
	info := irt.Information(theta, it.IRT)
	p := irt.Probability(theta, it.IRT)

	diff := absFloat(p-target) - tolerance
	if diff < 0 {
		diff = 0
	}
	penalty := lambdaAcc * diff

	balance := 0.0
	if hist.SubskillCount(it.PrimarySubskill) < c.MinPerSubskill {
		balance = betaBalance
	}

	exp := gammaExp * float64(exposure[it.ID])

	return info - penalty + balance - exp
}

func (s *Selector) pickFromTop(scored []candidate) catalog.Item {
	sortDescending(scored)
	k := topK
	if k > len(scored) {
		k = len(scored)
	}
	idx := s.rng.Intn(k)
	return scored[idx].item
}

func sortDescending(c []candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].score > c[j-1].score; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
