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

var historyCmd = &cobra.Command{
	Use:   "history <steamid>",
	Short: "Chronological per-match scoreboard rows for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(_ *cobra.Command, args []string) error {
	id, err := requireSteamID(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	return printHistory(db, id)
}

func printHistory(db *storage.DB, id model.PlayerID) error {
	history, err := db.GetPlayerHistory(id)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	if len(history) == 0 {
		fmt.Println("no matches found")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%s (%s), %d matches\n\n", history[len(history)-1].Line.Name, id.String(), len(history))
	report.PrintHistoryTable(os.Stdout, history)
	return nil
}
