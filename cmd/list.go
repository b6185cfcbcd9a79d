package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/report"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var listObserver string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listObserver, "observer", "", "add this player's result column (any steam id format)")
}

func runList(_ *cobra.Command, _ []string) error {
	observer, err := observerOrDefault(listObserver)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	return printMatchList(db, observer)
}

func printMatchList(db *storage.DB, observer model.PlayerID) error {
	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'csmatchstats parse <demo.dem>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-10s  %-24s  %7s  %6s  %s\n",
		"HASH", "MAP", "DATE", "TEAMS", "SCORE", "RESULT", "TICK")
	fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-10s  %-24s  %7s  %6s  %s\n",
		"──────────────", "────────────", "──────────", "────────────────────────", "───────", "──────", "────")
	for _, m := range matches {
		score := fmt.Sprintf("%d-%d", m.ScoreTeam1, m.ScoreTeam2)
		if m.Surrender.Valid() {
			score += "*"
		}
		result := ""
		if observer.Valid() {
			v, err := matchVerdict(db, m, observer)
			if err != nil {
				return err
			}
			result = v.String()
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-10s  %-24s  %7s  %6s  %.0f\n",
			report.ShortHash(m.Hash), m.MapName, m.MatchDate, m.Team1Name+" vs "+m.Team2Name, score, result, m.Tickrate)
	}
	return nil
}
