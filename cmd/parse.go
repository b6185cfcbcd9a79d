package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/parser"
	"github.com/pable/go-cs-matchstats/internal/report"
	"github.com/pable/go-cs-matchstats/internal/stats"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var parseObserver string

var parseCmd = &cobra.Command{
	Use:   "parse <demo.dem>",
	Short: "Parse a CS2 demo file and store its statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseObserver, "observer", "", "print this player's perspective (any steam id format)")
}

func runParse(_ *cobra.Command, args []string) error {
	demoPath := args[0]
	observer, err := observerOrDefault(parseObserver)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", demoPath)
	demo, err := decode(demoPath)
	if err != nil {
		return err
	}

	exists, err := db.MatchExists(demo.Hash)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if exists {
		fmt.Fprintf(os.Stdout, "Demo %s already stored, showing cached results.\n", report.ShortHash(demo.Hash))
		return showMatch(db, demo.Hash, observer)
	}

	snap := demo.Match.Snapshot()
	rec := storage.NewMatchRecord(demo.Hash, demo.MapName, demo.MatchDate, demo.Tickrate, snap)
	if err := db.SaveMatch(rec, snap.Players); err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	if demo.Rejected > 0 {
		slog.Warn("Events rejected while recording", slog.Int("count", demo.Rejected))
	}

	report.PrintMatchSummary(os.Stdout, rec)
	report.PrintPlayerTable(os.Stdout, snap.Players, observer)
	report.PrintMultiKillTable(os.Stdout, snap.Players, observer)
	report.PrintMatchStats(os.Stdout, snap.Stats, playerNames(snap.Players))
	report.PrintOvertimeTable(os.Stdout, demo.Match.Store().Overtimes())

	if observer.Valid() {
		printPerspective(demo.Match, observer)
	}
	return nil
}

func decode(path string) (*parser.Demo, error) {
	demo, err := parser.ParseDemo(path, parser.Options{
		HalfLength:         conf.Match.HalfLength,
		TradeWindowSeconds: conf.Match.TradeWindow.Seconds(),
		Logger:             slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("parse demo: %w", err)
	}
	return demo, nil
}

func printPerspective(m *stats.Match, observer model.PlayerID) {
	p, ok := m.Store().Player(observer)
	if !ok {
		fmt.Fprintf(os.Stderr, "Player %s did not take part in this match\n", observer.String())
		return
	}
	persp := m.Perspective(observer)
	defer persp.Close()
	report.PrintPerspective(os.Stdout, p.Name, persp.Stats(), persp.Verdict())
}

func playerNames(lines []stats.PlayerLine) map[model.PlayerID]string {
	names := make(map[model.PlayerID]string, len(lines))
	for _, l := range lines {
		names[l.ID] = l.Name
	}
	return names
}
