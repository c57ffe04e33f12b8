package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/adaptprep/internal/clock"
	"github.com/abhisek/adaptprep/internal/spacedrep"
	"github.com/spf13/cobra"
)

// defaultDeck seeds a learner's flashcard deck on first use, so `review`
// has something to show on an empty database.
var defaultDeck = []string{"apropos", "ephemeral", "laconic", "obdurate", "sycophant"}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a spaced-repetition flashcard review",
	RunE: func(cmd *cobra.Command, args []string) error {
		legacy, _ := cmd.Flags().GetBool("legacy")
		if legacy {
			return runLegacyParityDemo()
		}

		learner, _ := cmd.Flags().GetString("learner")
		auto, _ := cmd.Flags().GetBool("auto")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := context.Background()
		clk := clock.Real()

		due, err := s.DueFlashcards(ctx, learner)
		if err != nil {
			return fmt.Errorf("load due flashcards: %w", err)
		}
		if len(due) == 0 {
			if err := seedDeck(ctx, s, learner); err != nil {
				return err
			}
			due, err = s.DueFlashcards(ctx, learner)
			if err != nil {
				return fmt.Errorf("load due flashcards: %w", err)
			}
		}
		due = spacedrep.SelectDue(due, clk.Now())

		in := bufio.NewReader(os.Stdin)
		for _, card := range due {
			quality, err := nextQuality(card, auto, in)
			if err != nil {
				return err
			}
			updated := spacedrep.Review(card, quality, clk.Now())
			if err := s.UpsertFlashcard(ctx, learner, updated); err != nil {
				return fmt.Errorf("persist flashcard %s: %w", card.Word, err)
			}
			fmt.Printf("  %-16s stability=%.2fd ease=%.2f next review in %.1fh\n",
				card.Word, updated.StabilityDays, updated.Ease, updated.IntervalHours)
		}
		fmt.Printf("\nReviewed %d card(s)\n", len(due))
		return nil
	},
}

func init() {
	reviewCmd.Flags().Bool("legacy", false, "Demonstrate the legacy SM-2-style scheduler instead of the FSRS-inspired one")
	reviewCmd.Flags().Bool("auto", false, "Grade automatically instead of prompting at the terminal")
}

func seedDeck(ctx context.Context, s interface {
	UpsertFlashcard(ctx context.Context, learnerID string, card spacedrep.Flashcard) error
}, learner string) error {
	for _, word := range defaultDeck {
		if err := s.UpsertFlashcard(ctx, learner, spacedrep.NewFlashcard(word)); err != nil {
			return fmt.Errorf("seed flashcard %s: %w", word, err)
		}
	}
	return nil
}

func nextQuality(card spacedrep.Flashcard, auto bool, in *bufio.Reader) (spacedrep.Quality, error) {
	if auto {
		return spacedrep.Good, nil
	}
	fmt.Printf("\n%s — grade (0=forgot, 1=hard, 2=good, 3=easy): ", card.Word)
	line, err := in.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("read grade: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 || n > 3 {
		return 0, fmt.Errorf("invalid grade %q", line)
	}
	return spacedrep.Quality(n), nil
}

// runLegacyParityDemo shows a fresh card given one "forgot" review
// followed by one "good" review, demonstrating the legacy scheduler
// preserved for parity alongside the FSRS-inspired primary one.
func runLegacyParityDemo() error {
	now := time.Now()
	card := spacedrep.InitLegacyCard("demo-word", now)
	fmt.Printf("fresh card: next review in %d day(s)\n", spacedrep.BaseIntervals[0])

	card = spacedrep.ReviewLegacy(card, false, now)
	fmt.Println("after forgot: consecutive hits reset to 0, stage unchanged")

	card = spacedrep.ReviewLegacy(card, true, now)
	fmt.Printf("after good: stage=%d consecutive hits=%d interval=%dd (graduated=%v)\n",
		card.Stage, card.ConsecutiveHits, card.CurrentIntervalDays(), card.Graduated)
	return nil
}
