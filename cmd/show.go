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

var (
	showObserver string
	showFields   bool
)

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored match stats by hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showObserver, "observer", "", "highlight this player (any steam id format)")
	showCmd.Flags().BoolVar(&showFields, "fields", false, "also print every stored derived field")
}

func runShow(_ *cobra.Command, args []string) error {
	observer, err := observerOrDefault(showObserver)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	return showMatch(db, args[0], observer)
}

func showMatch(db *storage.DB, prefix string, observer model.PlayerID) error {
	rec, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if rec == nil {
		fmt.Fprintf(os.Stderr, "No match found with hash prefix %q\n", prefix)
		return nil
	}
	lines, err := db.GetPlayerLines(rec.Hash)
	if err != nil {
		return fmt.Errorf("get player lines: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, *rec)
	report.PrintPlayerTable(os.Stdout, lines, observer)
	report.PrintMultiKillTable(os.Stdout, lines, observer)
	if showFields {
		report.PrintFields(os.Stdout, rec.Fields)
	}
	return nil
}
