package practice

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/adaptprep/internal/applog"
	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/coder/quartz"
)

func buildItems(t *testing.T, subskillID string, n int) []catalog.Item {
	t.Helper()
	bs := []float64{-1, 0, 1}
	items := make([]catalog.Item, 0, n)
	for i := 0; i < n; i++ {
		it := catalog.Item{
			ID:                subskillID + "-" + string(rune('a'+i)),
			Section:           catalog.SectionQuant,
			Kind:              catalog.KindSingleSelect,
			Choices:           []string{"a", "b", "c", "d"},
			CorrectIndex:      0,
			PrimarySubskill:   subskillID,
			DifficultyTier:    3,
			TimeBenchmarkSecs: 60,
			IRT:               catalog.IRTParams{A: 1, B: bs[i%len(bs)], C: 0.25},
		}
		if err := it.Validate(); err != nil {
			t.Fatalf("invalid fixture item: %v", err)
		}
		items = append(items, it)
	}
	return items
}

func TestPractice_RunsToQuestionCountAndUpdatesMastery(t *testing.T) {
	items := buildItems(t, "quant.arithmetic", 30)
	cfg := DefaultConfig()
	cfg.QuestionCount = 10

	mclock := quartz.NewMock(t)
	c := New(items, selector.New(1), mclock, cfg, applog.Discard(), nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcomes := 0
	for c.State().Kind == "in_progress" {
		if outcomes > cfg.QuestionCount+5 {
			t.Fatalf("practice session did not terminate within %d questions", cfg.QuestionCount)
		}
		itemID, ok := c.CurrentItem()
		if !ok {
			t.Fatal("in-progress state with no current item")
		}
		correct := outcomes%2 == 0
		choice := 0
		if !correct {
			choice = 1
		}
		mclock.Advance(1 * time.Hour).MustWait(context.Background())
		if err := c.SubmitAnswer(&choice, 20000); err != nil {
			t.Fatalf("SubmitAnswer(%s): %v", itemID, err)
		}
		outcomes++
	}

	if outcomes != cfg.QuestionCount {
		t.Errorf("outcomes = %d, want %d", outcomes, cfg.QuestionCount)
	}
	if c.State().Kind != "completed" {
		t.Fatalf("final state = %v, want completed", c.State().Kind)
	}

	stats := c.State().Completed.Summary.(SessionStats)
	if stats.Total != cfg.QuestionCount {
		t.Errorf("stats.Total = %d, want %d", stats.Total, cfg.QuestionCount)
	}
	if stats.Correct != 5 {
		t.Errorf("stats.Correct = %d, want 5 (alternating outcomes)", stats.Correct)
	}

	m, ok := c.Mastery()["quant.arithmetic"]
	if !ok {
		t.Fatal("expected a mastery record for quant.arithmetic after practice")
	}
	if m.State.AttemptCount != cfg.QuestionCount {
		t.Errorf("mastery attempt count = %d, want %d", m.State.AttemptCount, cfg.QuestionCount)
	}
	if m.State.CorrectCount != 5 {
		t.Errorf("mastery correct count = %d, want 5", m.State.CorrectCount)
	}

	attempts := c.Attempts()
	if len(attempts) != cfg.QuestionCount {
		t.Fatalf("len(Attempts()) = %d, want %d", len(attempts), cfg.QuestionCount)
	}
	for i, a := range attempts {
		if a.PrimarySubskill != "quant.arithmetic" {
			t.Errorf("attempt %d: primary subskill = %s", i, a.PrimarySubskill)
		}
	}

	// Half the attempts were incorrect, so half should have produced an
	// ErrorLog entry.
	logs := c.ErrorLogs()
	if len(logs) != cfg.QuestionCount/2 {
		t.Errorf("len(ErrorLogs()) = %d, want %d", len(logs), cfg.QuestionCount/2)
	}
	for _, l := range logs {
		if l.Category == "" {
			t.Error("error log entry has empty category")
		}
	}
}

func TestPractice_StartingThetaIsAttemptWeightedMean(t *testing.T) {
	items := buildItems(t, "quant.algebra", 5)
	cfg := DefaultConfig()

	strong := bkt.NewMasteryState("quant.algebra", 1.5, 0.3)
	strong.State.AttemptCount = 10

	prior := map[string]bkt.MasteryState{"quant.algebra": strong}
	c := New(items, selector.New(3), clock.Real(), cfg, applog.Discard(), prior, nil)

	got := c.startingTheta()
	if got != 1.5 {
		t.Errorf("startingTheta() = %v, want 1.5 (single contributing subskill)", got)
	}
}

func TestPractice_StartingThetaFallsBackToZeroWithNoPriorAttempts(t *testing.T) {
	items := buildItems(t, "quant.geometry", 5)
	cfg := DefaultConfig()
	c := New(items, selector.New(4), clock.Real(), cfg, applog.Discard(), nil, nil)

	if got := c.startingTheta(); got != 0 {
		t.Errorf("startingTheta() = %v, want 0 with no prior attempts", got)
	}
}

func TestPractice_SkipIsTreatedAsIncorrect(t *testing.T) {
	items := buildItems(t, "quant.data-analysis", 5)
	cfg := DefaultConfig()
	cfg.QuestionCount = 1
	c := New(items, selector.New(5), clock.Real(), cfg, applog.Discard(), nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	attempts := c.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("len(Attempts()) = %d, want 1", len(attempts))
	}
	if attempts[0].Correct {
		t.Error("skipped attempt should be recorded as incorrect")
	}
	if attempts[0].SelectedChoice != nil {
		t.Error("skipped attempt should have a nil selected choice")
	}
}

func TestPractice_CancelDiscardsSessionNoStats(t *testing.T) {
	items := buildItems(t, "verbal.reading-comprehension", 5)
	c := New(items, selector.New(6), clock.Real(), DefaultConfig(), applog.Discard(), nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c.State().Kind != "cancelled" {
		t.Errorf("state = %v, want cancelled", c.State().Kind)
	}
}

func TestPractice_CompletesEarlyWhenCatalogExhausted(t *testing.T) {
	items := buildItems(t, "verbal.text-completion", 3)
	cfg := DefaultConfig()
	cfg.QuestionCount = 100 // far more than the 3 available items
	c := New(items, selector.New(7), clock.Real(), cfg, applog.Discard(), nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcomes := 0
	for c.State().Kind == "in_progress" {
		if outcomes > len(items)+1 {
			t.Fatalf("practice kept running past catalog exhaustion")
		}
		choice := 0
		if err := c.SubmitAnswer(&choice, 15000); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		outcomes++
	}
	if c.State().Kind != "completed" {
		t.Fatalf("state = %v, want completed", c.State().Kind)
	}
	if outcomes > len(items) {
		t.Errorf("outcomes = %d, want <= %d (only %d items exist)", outcomes, len(items), len(items))
	}
}

func TestPractice_TargetSubskillsRestrictSelection(t *testing.T) {
	a := buildItems(t, "quant.arithmetic", 5)
	b := buildItems(t, "quant.algebra", 5)
	items := append(a, b...)

	cfg := DefaultConfig()
	cfg.QuestionCount = 5
	cfg.TargetSubskills = map[string]bool{"quant.algebra": true}

	c := New(items, selector.New(8), clock.Real(), cfg, applog.Discard(), nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for c.State().Kind == "in_progress" {
		choice := 0
		if err := c.SubmitAnswer(&choice, 20000); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
	}

	for _, a := range c.Attempts() {
		if a.PrimarySubskill != "quant.algebra" {
			t.Errorf("attempt against %s, want only quant.algebra", a.PrimarySubskill)
		}
	}
}
