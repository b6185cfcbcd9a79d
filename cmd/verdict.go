package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var verdictCmd = &cobra.Command{
	Use:   "verdict <hash-prefix> <steamid>",
	Short: "Print one player's outcome of a stored match",
	Long: `Resolve the match outcome from the given player's point of view using the
stored scores, surrender and scoreboard. Prints one of won, lost, draw,
won-s or lost-s (the -s forms mean the match ended by surrender), or
"undetermined" when the player was on neither team or nothing was scored.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerdict,
}

func runVerdict(_ *cobra.Command, args []string) error {
	observer, err := requireSteamID(args[1])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	return printVerdict(db, args[0], observer)
}

func printVerdict(db *storage.DB, prefix string, observer model.PlayerID) error {
	rec, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if rec == nil {
		fmt.Fprintf(os.Stderr, "No match found with hash prefix %q\n", prefix)
		return nil
	}

	v, err := matchVerdict(db, *rec, observer)
	if err != nil {
		return err
	}
	if v == stats.VerdictUndetermined {
		fmt.Fprintln(os.Stdout, "undetermined")
		return nil
	}
	fmt.Fprintln(os.Stdout, v)
	return nil
}

func matchVerdict(db *storage.DB, rec storage.MatchRecord, observer model.PlayerID) (stats.Verdict, error) {
	team, err := db.GetPlayerTeam(rec.Hash, observer)
	if err != nil {
		return stats.VerdictUndetermined, fmt.Errorf("get player team: %w", err)
	}
	return stats.ResolveVerdict(rec.ScoreTeam1, rec.ScoreTeam2, rec.Surrender, team), nil
}
