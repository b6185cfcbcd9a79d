package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/report"
)

var roundsSide string

// roundsCmd is the cobra command for the round timeline of one demo.
var roundsCmd = &cobra.Command{
	Use:   "rounds <demo.dem>",
	Short: "Round timeline of a demo with the running score",
	Long: `Decode a demo and print every recorded round: its tick span, winner, winning
side, end reason and the running score. Rounds are not stored, so this
always reads the demo.`,
	Args: cobra.ExactArgs(1),
	RunE: runRounds,
}

func init() {
	roundsCmd.Flags().StringVar(&roundsSide, "side", "", "only show rounds won by this side: CT or T")
}

// filterRounds applies the --side filter.
func filterRounds(rounds []model.Round, side string) []model.Round {
	side = strings.ToUpper(side)
	if side == "" {
		return rounds
	}
	var out []model.Round
	for _, r := range rounds {
		if r.WinnerSide.String() == side {
			out = append(out, r)
		}
	}
	return out
}

func runRounds(_ *cobra.Command, args []string) error {
	side := strings.ToUpper(roundsSide)
	if side != "" && side != "CT" && side != "T" {
		return fmt.Errorf("invalid --side %q, want CT or T", roundsSide)
	}

	demo, err := decode(args[0])
	if err != nil {
		return err
	}
	s := demo.Match.Store()

	names := make(map[model.TeamLabel]string, 2)
	for _, l := range []model.TeamLabel{model.Team1, model.Team2} {
		if t, err := s.Team(l); err == nil {
			names[l] = t.Name
		}
	}

	rounds := filterRounds(s.Rounds(), side)
	if len(rounds) == 0 {
		fmt.Println("no rounds match the filter")
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n%s  |  %s vs %s  |  %s\n\n", demo.MapName, names[model.Team1], names[model.Team2], report.ShortHash(demo.Hash))
	report.PrintRoundTable(os.Stdout, rounds, names)
	report.PrintOvertimeTable(os.Stdout, s.Overtimes())
	return nil
}
