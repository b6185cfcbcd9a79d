package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match database",
	Long: `Run an arbitrary SQL query against the match database and print results as a table.

Schema overview:
  matches(hash, map_name, match_date, tickrate, team1_name, team2_name,
    score_team1, score_team2, surrender, winner, round_count, snapshot_json)
  match_players(match_hash, steam_id TEXT, name, team, kills, deaths, assists,
    headshots, trade_kills, entry_kills, clutch_won, mvps, one_k, two_k, three_k,
    four_k, five_k, kill_per_round, average_damage, rating, rws, verdict)

snapshot_json holds every derived field of the match as a JSON object, e.g.
  SELECT hash, json_extract(snapshot_json, '$.most_headshot_player') FROM matches

Note: steam_id is stored as TEXT. Use quotes: WHERE steam_id = '76561198031906602'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(_ *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRaw(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
