// Package diagnostic drives the multi-subskill adaptive diagnostic: an
// item-limited test that targets the subskill with the largest posterior
// uncertainty until every subskill has converged or exhausted its item
// budget, then emits a Result and an initial mastery state per subskill.
package diagnostic

import (
	"fmt"
	"time"

	"github.com/abhisek/adaptprep/internal/applog"
	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/irt"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/abhisek/adaptprep/internal/session"
)

// Config is the diagnostic-specific slice of the recognized-options
// record.
type Config struct {
	MaxItemsPerSubskill int
	SEThreshold         float64
}

// DefaultConfig returns the standard diagnostic defaults.
func DefaultConfig() Config {
	return Config{MaxItemsPerSubskill: 5, SEThreshold: 0.30}
}

type subskillProgress struct {
	subskillID   string
	attempts     []irt.Observation
	correctCount int
	theta        float64
	se           float64
}

// newSubskillProgress seeds SE at the prior standard deviation (1.0) so a
// subskill with zero attempts reads as maximally uncertain rather than as
// already converged — the zero value of float64 would otherwise satisfy
// se < SEThreshold before a single item is administered.
func newSubskillProgress(subskillID string) *subskillProgress {
	return &subskillProgress{subskillID: subskillID, se: 1.0}
}

func (p *subskillProgress) accuracy() float64 {
	if len(p.attempts) == 0 {
		return 0
	}
	return float64(p.correctCount) / float64(len(p.attempts))
}

func (p *subskillProgress) complete(cfg Config) bool {
	return p.se < cfg.SEThreshold || len(p.attempts) >= cfg.MaxItemsPerSubskill
}

// Controller runs one diagnostic session for one learner. It holds no
// state beyond one session's lifetime; commit of the final Result and the
// derived initial MasteryStates is the caller's job via the store
// contract.
type Controller struct {
	items []catalog.Item
	sel   *selector.Selector
	clk   clock.Clock
	cfg   Config
	log   *applog.Logger

	hist      *session.History
	progress  map[string]*subskillProgress
	status    session.Status
	current   *catalog.Item
	startedAt time.Time
}

// New returns a diagnostic controller over the given item set. Start
// seeds coverage tracking from the full catalog subskill enumeration, not
// just the subskills present among items, so an uncovered subskill is
// still reported in the final result.
func New(items []catalog.Item, sel *selector.Selector, clk clock.Clock, cfg Config, log *applog.Logger) *Controller {
	return &Controller{
		items: items,
		sel:   sel,
		clk:   clk,
		cfg:   cfg,
		log:   log,
	}
}

// Start initializes the diagnostic: one subskillProgress per subskill in
// the closed enumeration (catalog.AllSubskills), an empty session
// history, and the first item selection. Seeding from the full
// enumeration rather than from the administered items' primary
// subskills ensures a subskill with no items in the supplied catalog
// still gets a zero-attempt entry and is reported as such in the final
// Result, instead of being silently omitted.
func (c *Controller) Start() error {
	c.hist = session.NewHistory()
	c.progress = map[string]*subskillProgress{}
	c.startedAt = c.clk.Now()
	for _, sub := range catalog.AllSubskills() {
		c.progress[sub.ID] = newSubskillProgress(sub.ID)
	}
	c.status = session.InProgress(0, false)
	return c.advance()
}

// targetSubskill returns the incomplete subskill with the largest SE, or
// ok=false if every subskill is complete.
func (c *Controller) targetSubskill() (string, bool) {
	best := ""
	bestSE := -1.0
	for id, p := range c.progress {
		if p.complete(c.cfg) {
			continue
		}
		if p.se > bestSE {
			best, bestSE = id, p.se
		}
	}
	return best, best != ""
}

// incompleteByDecreasingSE returns incomplete subskill ids ordered by
// decreasing SE, for the fallthrough rule in step 3 of the loop.
func (c *Controller) incompleteByDecreasingSE() []string {
	var ids []string
	for id, p := range c.progress {
		if !p.complete(c.cfg) {
			ids = append(ids, id)
		}
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && c.progress[ids[j]].se > c.progress[ids[j-1]].se; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func (c *Controller) advance() error {
	target, ok := c.targetSubskill()
	if !ok {
		return c.complete()
	}

	cons := selector.Constraints{MaxPerSubskill: c.cfg.MaxItemsPerSubskill, MinPerSubskill: 1, MaxExposure: 1 << 30}

	it, err := c.sel.Select(0, c.items, c.hist, selector.ModeAssessment, cons, selector.ExposureCounts{}, map[string]bool{target: true})
	if err == nil {
		c.current = &it
		return nil
	}

	for _, id := range c.incompleteByDecreasingSE() {
		it, err := c.sel.Select(0, c.items, c.hist, selector.ModeAssessment, cons, selector.ExposureCounts{}, map[string]bool{id: true})
		if err == nil {
			c.current = &it
			return nil
		}
	}

	it, err = c.sel.Select(0, c.items, c.hist, selector.ModeAssessment, cons, selector.ExposureCounts{}, nil)
	if err != nil {
		c.log.Warn("diagnostic: catalog exhausted before every subskill converged")
		return c.complete()
	}
	c.current = &it
	return nil
}

// CurrentItem returns the id of the currently presented item, if any.
func (c *Controller) CurrentItem() (string, bool) {
	if c.current == nil {
		return "", false
	}
	return c.current.ID, true
}

// State reports the controller's current finite-state-machine status.
func (c *Controller) State() session.Status {
	return c.status
}

// Skip treats the current item as a skipped (null-choice) attempt.
func (c *Controller) Skip() error {
	return c.SubmitAnswer(nil, 0)
}

// Cancel discards in-memory session history; no Result is emitted.
func (c *Controller) Cancel() error {
	c.status = session.Cancelled()
	c.current = nil
	return nil
}

// SubmitAnswer scores the current item, folds the outcome into every
// subskill it tests (primary and secondary), re-estimates each such
// subskill's (theta, SE) by EAP, and advances to the next item or to
// completion.
func (c *Controller) SubmitAnswer(choice *int, responseTimeMs int) error {
	if c.current == nil {
		return fmt.Errorf("diagnostic: no current item")
	}
	it := *c.current
	correct := it.IsCorrect(choice)

	subskills := append([]string{it.PrimarySubskill}, it.SecondarySubskills...)
	c.hist.Record(it.ID, subskills, correct, c.clk.Now())

	for _, id := range subskills {
		p, ok := c.progress[id]
		if !ok {
			continue // item tests a subskill outside this diagnostic's coverage
		}
		p.attempts = append(p.attempts, irt.Observation{Params: it.IRT, Correct: correct})
		if correct {
			p.correctCount++
		}
		theta, se := irt.EAP(0, 1, p.attempts, irt.DefaultConfig())
		p.theta, p.se = theta, se
	}

	c.current = nil
	if _, ok := c.targetSubskill(); !ok {
		return c.complete()
	}
	c.status = session.InProgress(c.hist.Len(), true)
	return c.advance()
}

func (c *Controller) complete() error {
	elapsed := c.clk.Now().Sub(c.startedAt).Seconds()
	result := buildResult(c.progress, elapsed)
	c.status = session.Completed(c.hist.Len(), result)
	c.current = nil
	return nil
}

// InitialMasteryStates derives an initial bkt.MasteryState per subskill
// from the diagnostic's final estimates. Valid only after completion.
func (c *Controller) InitialMasteryStates() map[string]bkt.MasteryState {
	out := map[string]bkt.MasteryState{}
	for id, p := range c.progress {
		out[id] = bkt.FromDiagnostic(id, p.theta, p.se, len(p.attempts), p.correctCount)
	}
	return out
}
