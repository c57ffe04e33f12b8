package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/adaptprep/internal/bkt"
	"github.com/abhisek/adaptprep/internal/catalog"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery statistics for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := context.Background()

		type row struct {
			subskillID string
			state      bkt.MasteryState
		}
		var rows []row
		var newCount int
		for _, sub := range catalog.AllSubskills() {
			m, ok, err := s.GetMastery(ctx, learner, sub.ID)
			if err != nil {
				return fmt.Errorf("load mastery for %s: %w", sub.ID, err)
			}
			if !ok {
				newCount++
				continue
			}
			rows = append(rows, row{subskillID: sub.ID, state: m})
		}

		sort.Slice(rows, func(i, j int) bool { return rows[i].state.State.PKnown > rows[j].state.State.PKnown })

		fmt.Println("Mastery Stats —", learner)
		fmt.Println(strings.Repeat("─", 40))
		fmt.Println()
		fmt.Printf("Subskills: %d tracked, %d not yet attempted\n", len(rows), newCount)
		fmt.Println()

		for _, r := range rows {
			level := bkt.MasteryLevel(r.state.State.PKnown)
			fmt.Printf("  %-30s %-12s θ=%+.2f P(known)=%.2f (%d attempts, %.0f%% correct)\n",
				r.subskillID, level, r.state.Theta, r.state.State.PKnown,
				r.state.State.AttemptCount, r.state.State.Accuracy()*100)
		}

		result, ok, err := s.LatestDiagnosticResult(ctx, learner)
		if err != nil {
			return fmt.Errorf("load latest diagnostic result: %w", err)
		}
		if ok {
			fmt.Println()
			fmt.Println("Latest diagnostic recommended focus areas:", strings.Join(result.RecommendedFocusAreas, ", "))
		}
		return nil
	},
}
