// Package practice drives a length-bounded practice session focused on one
// or more subskills: item selection, per-attempt ability re-estimation and
// mastery-state update, and error categorization on incorrect answers.
package practice

import (
	"fmt"

	"github.com/abhisek/adaptprep/internal/applog"
	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/irt"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/abhisek/adaptprep/internal/session"
	"github.com/google/uuid"
)

// ExternalMode is the session mode a host UI requests. timed and untimed
// both map to the selector's learning mode; only review keeps its own
// identity.
type ExternalMode string

const (
	ModeTimed   ExternalMode = "timed"
	ModeUntimed ExternalMode = "untimed"
	ModeReview  ExternalMode = "review"
)

func toSelectorMode(m ExternalMode) selector.Mode {
	if m == ModeReview {
		return selector.ModeReview
	}
	return selector.ModeLearning
}

// Config is the practice-specific slice of the recognized-options record.
type Config struct {
	QuestionCount   int
	Mode            ExternalMode
	TargetSubskills map[string]bool // empty means no restriction
	Constraints     selector.Constraints
	Slip, Guess     float64
}

// DefaultConfig returns the standard practice defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount: 20,
		Mode:          ModeUntimed,
		Constraints:   selector.Constraints{MaxPerSubskill: 10, MinPerSubskill: 2, MaxExposure: 100},
		Slip:          bkt.DefaultSlip,
		Guess:         bkt.DefaultGuess,
	}
}

// Controller runs one practice session for one learner across a set of
// subskills' prior MasteryState records, supplied by the caller from the
// store and committed back by the caller after each attempt (the
// controller itself never touches a store; it only mutates its in-memory
// copy and hands the caller the updated records through Mastery()).
type Controller struct {
	items    []catalog.Item
	sel      *selector.Selector
	clk      clock.Clock
	cfg      Config
	log      *applog.Logger
	exposure selector.ExposureCounts

	mastery     map[string]bkt.MasteryState
	startTheta  float64
	sessionID   string
	hist        *session.History
	attempts    []session.Attempt
	errorLogs   []ErrorLog
	status      session.Status
	current     *catalog.Item
	totalRespMs int
}

// New returns a practice controller over the given item set and prior
// mastery records (one per subskill the caller has a record for; missing
// subskills get a lazily-created default on first use).
func New(items []catalog.Item, sel *selector.Selector, clk clock.Clock, cfg Config, log *applog.Logger, prior map[string]bkt.MasteryState, exposure selector.ExposureCounts) *Controller {
	m := make(map[string]bkt.MasteryState, len(prior))
	for k, v := range prior {
		m[k] = v
	}
	if exposure == nil {
		exposure = selector.ExposureCounts{}
	}
	return &Controller{items: items, sel: sel, clk: clk, cfg: cfg, log: log, mastery: m, exposure: exposure}
}

// startingTheta is the attempt-count-weighted mean of theta across the
// relevant subskills. With no prior attempts anywhere, it falls back to
// the population prior mean of 0.
func (c *Controller) startingTheta() float64 {
	relevant := c.relevantSubskillIDs()
	var weightedSum float64
	var totalWeight int
	for _, id := range relevant {
		st, ok := c.mastery[id]
		if !ok {
			continue
		}
		w := st.State.AttemptCount
		weightedSum += st.Theta * float64(w)
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / float64(totalWeight)
}

func (c *Controller) relevantSubskillIDs() []string {
	if len(c.cfg.TargetSubskills) > 0 {
		ids := make([]string, 0, len(c.cfg.TargetSubskills))
		for id := range c.cfg.TargetSubskills {
			ids = append(ids, id)
		}
		return ids
	}
	seen := map[string]bool{}
	var ids []string
	for _, it := range c.items {
		if !seen[it.PrimarySubskill] {
			seen[it.PrimarySubskill] = true
			ids = append(ids, it.PrimarySubskill)
		}
	}
	return ids
}

// Start initializes the session: starting theta from prior attempt counts,
// an empty session history, and the first item selection.
func (c *Controller) Start() error {
	c.hist = session.NewHistory()
	c.startTheta = c.startingTheta()
	c.sessionID = uuid.New().String()
	c.status = session.InProgress(0, false)
	return c.advance()
}

func (c *Controller) advance() error {
	if c.hist.Len() >= c.cfg.QuestionCount {
		return c.complete()
	}

	it, err := c.sel.Select(c.startTheta, c.items, c.hist, toSelectorMode(c.cfg.Mode), c.cfg.Constraints, c.exposure, c.cfg.TargetSubskills)
	if err != nil {
		c.log.Warn("practice: catalog exhausted before question count reached", "seen", c.hist.Len())
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

// Cancel discards in-memory session state; no SessionStats is emitted.
func (c *Controller) Cancel() error {
	c.status = session.Cancelled()
	c.current = nil
	return nil
}

// Mastery returns the controller's current in-memory mastery records,
// ready for the caller to persist.
func (c *Controller) Mastery() map[string]bkt.MasteryState {
	out := make(map[string]bkt.MasteryState, len(c.mastery))
	for k, v := range c.mastery {
		out[k] = v
	}
	return out
}

// ErrorLogs returns the error-log entries written this session.
func (c *Controller) ErrorLogs() []ErrorLog {
	out := make([]ErrorLog, len(c.errorLogs))
	copy(out, c.errorLogs)
	return out
}

// Attempts returns the immutable attempt records written this session.
func (c *Controller) Attempts() []session.Attempt {
	out := make([]session.Attempt, len(c.attempts))
	copy(out, c.attempts)
	return out
}

// SubmitAnswer scores the current item, re-estimates theta by EAP over the
// full session history, updates the primary subskill's MasteryState, and
// writes an immutable Attempt record (plus an ErrorLog on an incorrect
// answer), then advances to the next item or to completion.
func (c *Controller) SubmitAnswer(choice *int, responseTimeMs int) error {
	if c.current == nil {
		return fmt.Errorf("practice: no current item")
	}
	it := *c.current
	correct := it.IsCorrect(choice)
	now := c.clk.Now()

	prior, ok := c.mastery[it.PrimarySubskill]
	if !ok {
		prior = bkt.NewMasteryState(it.PrimarySubskill, c.startTheta, 1.0)
	}
	thetaBefore, pKnownBefore := prior.Theta, prior.State.PKnown

	subskills := append([]string{it.PrimarySubskill}, it.SecondarySubskills...)
	c.hist.Record(it.ID, subskills, correct, now)
	c.exposure[it.ID]++
	c.totalRespMs += responseTimeMs

	theta, se := c.reestimateTheta()

	updated := prior.ApplyAttempt(theta, se, correct, responseTimeMs, it.TimeBenchmarkSecs, c.cfg.Slip, c.cfg.Guess, now)
	c.mastery[it.PrimarySubskill] = updated

	attempt := session.Attempt{
		ID:              uuid.New().String(),
		SessionID:       c.sessionID,
		ItemID:          it.ID,
		SelectedChoice:  choice,
		Correct:         correct,
		ResponseTimeMs:  responseTimeMs,
		Timestamp:       now,
		PrimarySubskill: it.PrimarySubskill,
		ThetaBefore:     thetaBefore,
		ThetaAfter:      theta,
		PKnownBefore:    pKnownBefore,
		PKnownAfter:     updated.State.PKnown,
	}
	c.attempts = append(c.attempts, attempt)

	if !correct {
		cat := Categorize(DefaultClassifiers(), ClassifyInput{ResponseTimeMs: responseTimeMs, TimeBenchmarkSecs: it.TimeBenchmarkSecs})
		c.errorLogs = append(c.errorLogs, ErrorLog{AttemptID: attempt.ID, ItemID: it.ID, Category: cat})
	}

	c.current = nil
	c.status = session.InProgress(c.hist.Len(), true)
	return c.advance()
}

// reestimateTheta recomputes theta/SE by EAP over the full session history
// (every attempt regardless of which subskill it tested), with the
// session's starting theta as the prior mean — the practice controller's
// pooled re-estimation, distinct from the diagnostic's per-subskill split.
func (c *Controller) reestimateTheta() (theta, se float64) {
	obs := make([]irt.Observation, 0, c.hist.Len())
	for _, s := range c.hist.Summaries() {
		it, ok := c.findItem(s.ItemID)
		if !ok {
			continue // a serialized attempt referencing an unknown item is dropped from estimation
		}
		obs = append(obs, irt.Observation{Params: it.IRT, Correct: s.Correct})
	}
	return irt.EAP(c.startTheta, 1.0, obs, irt.DefaultConfig())
}

func (c *Controller) findItem(id string) (catalog.Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return catalog.Item{}, false
}

func (c *Controller) complete() error {
	stats := buildSessionStats(c.hist.Summaries(), c.totalRespMs)
	c.status = session.Completed(c.hist.Len(), stats)
	c.current = nil
	return nil
}
