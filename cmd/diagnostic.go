package cmd

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/diagnostic"
	"github.com/abhisek/adaptprep/internal/irt"
	"github.com/abhisek/adaptprep/internal/selector"
	"github.com/spf13/cobra"
)

var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic",
	Short: "Run the adaptive diagnostic across every subskill",
	RunE: func(cmd *cobra.Command, args []string) error {
		auto, _ := cmd.Flags().GetBool("auto")
		seed, _ := cmd.Flags().GetInt64("seed")

		learner, _ := cmd.Flags().GetString("learner")
		cfg, err := resolveConfig(cmd)
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

		sel := selector.New(seed)
		ctrl := diagnostic.New(items, sel, clock.Real(), cfg.DiagnosticConfig(), resolveLogger(cmd))
		if err := ctrl.Start(); err != nil {
			return fmt.Errorf("start diagnostic: %w", err)
		}

		rng := rand.New(rand.NewSource(seed))
		reader2 := bufio.NewReader(os.Stdin)

		for ctrl.State().Kind == "in_progress" {
			itemID, ok := ctrl.CurrentItem()
			if !ok {
				break
			}
			it, err := reader.FetchByID(ctx, itemID)
			if err != nil {
				return fmt.Errorf("fetch current item: %w", err)
			}

			choice, err := nextChoice(it, auto, rng, reader2)
			if err != nil {
				return err
			}
			if err := ctrl.SubmitAnswer(choice, 20000); err != nil {
				return fmt.Errorf("submit answer: %w", err)
			}
		}

		st := ctrl.State()
		if st.Kind != "completed" {
			return fmt.Errorf("diagnostic ended in unexpected state %q", st.Kind)
		}
		result := st.Completed.Summary.(diagnostic.Result)
		printDiagnosticResult(result)

		if err := s.InsertDiagnosticResult(ctx, learner, result); err != nil {
			return fmt.Errorf("persist diagnostic result: %w", err)
		}
		for id, mastery := range ctrl.InitialMasteryStates() {
			if err := s.UpsertMastery(ctx, learner, mastery); err != nil {
				return fmt.Errorf("persist initial mastery for %s: %w", id, err)
			}
		}
		return nil
	},
}

func init() {
	diagnosticCmd.Flags().Bool("auto", false, "Answer automatically instead of prompting at the terminal")
	diagnosticCmd.Flags().Int64("seed", 1, "Selector PRNG seed")
}

// nextChoice prompts at the terminal for a choice index, or synthesizes
// one from the item's IRT difficulty when auto is set (biased toward
// correct on easier items), for scripted demo runs.
func nextChoice(it catalog.Item, auto bool, rng *rand.Rand, in *bufio.Reader) (*int, error) {
	if auto {
		pCorrect := irt.Probability(0, it.IRT)
		correct := rng.Float64() < pCorrect
		choice := it.CorrectIndex
		if !correct {
			choice = (it.CorrectIndex + 1) % len(it.Choices)
		}
		return &choice, nil
	}

	fmt.Printf("\n[%s] %s (choices: %s)\n", it.PrimarySubskill, it.ID, strings.Join(it.Choices, ", "))
	fmt.Print("Your answer (index, or 's' to skip): ")
	line, err := in.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read answer: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "s" || line == "" {
		return nil, nil
	}
	idx, err := strconv.Atoi(line)
	if err != nil || idx < 0 || idx >= len(it.Choices) {
		return nil, fmt.Errorf("invalid choice %q", line)
	}
	return &idx, nil
}

func printDiagnosticResult(r diagnostic.Result) {
	fmt.Println("\nDiagnostic complete")
	fmt.Println(strings.Repeat("─", 40))
	for _, est := range r.PerSubskill {
		fmt.Printf("  %-32s θ=%.2f SE=%.2f (%d items, %.0f%% correct)\n",
			est.SubskillID, est.Theta, est.SE, est.ItemsAdministered, est.Accuracy*100)
	}
	fmt.Println()
	for sec, mean := range r.SectionMeans {
		scaled := r.ScaledScores[sec]
		fmt.Printf("  %-10s mean θ=%.2f  scaled=%.0f (%.0f-%.0f)\n",
			sec, mean, scaled.Score, scaled.Low, scaled.High)
	}
	fmt.Println()
	fmt.Println("Recommended focus areas:", strings.Join(r.RecommendedFocusAreas, ", "))
	fmt.Printf("Elapsed: %.0fs\n", r.TotalWallClockSeconds)
}
