package cmd

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/practice"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/abhisek/adaptprep/internal/store"
	"github.com/spf13/cobra"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a length-bounded practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		count, _ := cmd.Flags().GetInt("count")
		mode, _ := cmd.Flags().GetString("mode")
		subskill, _ := cmd.Flags().GetString("subskill")
		auto, _ := cmd.Flags().GetBool("auto")
		seed, _ := cmd.Flags().GetInt64("seed")

		loadedCfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reader, err := newDemoCatalog()
		if err != nil {
			return fmt.Errorf("build demo catalog: %w", err)
		}
		ctx := context.Background()
		items, err := reader.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("fetch items: %w", err)
		}

		cfg := loadedCfg.PracticeConfig()
		cfg.QuestionCount = count
		switch mode {
		case "timed":
			cfg.Mode = practice.ModeTimed
		case "review":
			cfg.Mode = practice.ModeReview
		default:
			cfg.Mode = practice.ModeUntimed
		}
		if subskill != "" {
			cfg.TargetSubskills = map[string]bool{subskill: true}
		}

		prior, err := loadPriorMastery(ctx, s, learner, items)
		if err != nil {
			return err
		}

		sel := selector.New(seed)
		ctrl := practice.New(items, sel, clock.Real(), cfg, resolveLogger(cmd), prior, selector.ExposureCounts{})
		if err := ctrl.Start(); err != nil {
			return fmt.Errorf("start practice: %w", err)
		}

		rng := rand.New(rand.NewSource(seed))
		in := bufio.NewReader(os.Stdin)

		for ctrl.State().Kind == "in_progress" {
			itemID, ok := ctrl.CurrentItem()
			if !ok {
				break
			}
			it, err := reader.FetchByID(ctx, itemID)
			if err != nil {
				return fmt.Errorf("fetch current item: %w", err)
			}
			choice, err := nextChoice(it, auto, rng, in)
			if err != nil {
				return err
			}
			if err := ctrl.SubmitAnswer(choice, 20000); err != nil {
				return fmt.Errorf("submit answer: %w", err)
			}
		}

		st := ctrl.State()
		if st.Kind != "completed" {
			fmt.Println("Session ended without completion:", st.Kind)
			return nil
		}
		stats := st.Completed.Summary.(practice.SessionStats)
		fmt.Printf("\nPractice complete: %d/%d correct, avg %.0fms/item\n",
			stats.Correct, stats.Total, stats.AverageResponseMs)

		for id, m := range ctrl.Mastery() {
			if err := s.UpsertMastery(ctx, learner, m); err != nil {
				return fmt.Errorf("persist mastery for %s: %w", id, err)
			}
		}
		for _, a := range ctrl.Attempts() {
			if err := s.AppendAttempt(ctx, learner, a); err != nil {
				return fmt.Errorf("persist attempt %s: %w", a.ID, err)
			}
		}
		for _, e := range ctrl.ErrorLogs() {
			if err := s.AppendErrorLog(ctx, learner, e); err != nil {
				return fmt.Errorf("persist error log for %s: %w", e.ItemID, err)
			}
		}
		if len(ctrl.ErrorLogs()) > 0 {
			fmt.Println("\nError categories:")
			for _, e := range ctrl.ErrorLogs() {
				fmt.Printf("  %-20s %s\n", e.ItemID, e.Category)
			}
		}
		return nil
	},
}

func init() {
	practiceCmd.Flags().Int("count", practice.DefaultConfig().QuestionCount, "Number of questions")
	practiceCmd.Flags().String("mode", "untimed", "Session mode: timed, untimed, or review")
	practiceCmd.Flags().String("subskill", "", "Restrict to one subskill id (empty means no restriction)")
	practiceCmd.Flags().Bool("auto", false, "Answer automatically instead of prompting at the terminal")
	practiceCmd.Flags().Int64("seed", 1, "Selector PRNG seed")
}

func loadPriorMastery(ctx context.Context, s *store.SQLiteStore, learner string, items []catalog.Item) (map[string]bkt.MasteryState, error) {
	seen := map[string]bool{}
	out := map[string]bkt.MasteryState{}
	for _, it := range items {
		if seen[it.PrimarySubskill] {
			continue
		}
		seen[it.PrimarySubskill] = true
		m, ok, err := s.GetMastery(ctx, learner, it.PrimarySubskill)
		if err != nil {
			return nil, fmt.Errorf("load mastery for %s: %w", it.PrimarySubskill, err)
		}
		if ok {
			out[it.PrimarySubskill] = m
		}
	}
	return out, nil
}
