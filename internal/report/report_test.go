package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leighmacdonald/steamid/v4/steamid"
	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
	"github.com/stretchr/testify/assert"

	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var (
	alice = steamid.New(int64(76561198000000001))
	bob   = steamid.New(int64(76561198000000002))
)

func TestPrintMatchSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintMatchSummary(&buf, storage.MatchRecord{
		Hash: "0123456789abcdef", MapName: "de_mirage", MatchDate: "2025-04-01",
		Team1Name: "Blue", Team2Name: "Red", ScoreTeam1: 9, ScoreTeam2: 4, RoundCount: 13,
		Surrender: model.Team2,
	})

	out := buf.String()
	assert.Contains(t, out, "Blue 9 – 4 Red")
	assert.Contains(t, out, "Red surrendered")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
}

func TestPrintPlayerTable_MarksFocus(t *testing.T) {
	lines := []stats.PlayerLine{
		{ID: alice, Name: "alice", Team: model.Team1, Kills: 20, Deaths: 10, Headshots: 10, Verdict: stats.VerdictWin},
		{ID: bob, Name: "bob", Team: model.Team2, Kills: 10, Deaths: 20, Verdict: stats.VerdictUndetermined},
	}

	var buf bytes.Buffer
	PrintPlayerTable(&buf, lines, alice)

	out := buf.String()
	assert.Contains(t, out, ">")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "2.00")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "won")
	assert.Contains(t, out, none)
}

func TestPrintMatchStats_AbsentRankings(t *testing.T) {
	st := stats.Stats{
		KillCount:          1200,
		MostHeadshotPlayer: stats.PlayerRanking{Key: alice, Score: 7, OK: true},
		MostKillingWeapon:  stats.WeaponRanking{Key: common.EqAK47, Score: 1500, OK: true},
	}

	var buf bytes.Buffer
	PrintMatchStats(&buf, st, map[model.PlayerID]string{alice: "alice"})

	out := buf.String()
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "alice (7)")
	assert.Contains(t, out, "AK-47 (1,500)")
	assert.Contains(t, out, none)
}

func TestPrintHitGroupTable(t *testing.T) {
	var buf bytes.Buffer
	PrintHitGroupTable(&buf, stats.Stats{})
	assert.Empty(t, buf.String())

	PrintHitGroupTable(&buf, stats.Stats{
		DamageByHitGroup: map[model.HitGroup]int{model.HitGroupHead: 300, model.HitGroupChest: 100},
		HitGroupShare:    map[model.HitGroup]float64{model.HitGroupHead: 75, model.HitGroupChest: 25},
	})
	out := buf.String()
	assert.Contains(t, out, "head")
	assert.Contains(t, out, "75.0%")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("head")), bytes.Index(buf.Bytes(), []byte("chest")))
}

func TestPrintRoundTable_RunningScore(t *testing.T) {
	rounds := []model.Round{
		{Number: 1, StartTick: 0, FreezeEndTick: 1280, EndTick: 6400, Winner: model.Team1, WinnerSide: model.SideCT, EndReason: model.EndReasonEliminated},
		{Number: 2, StartTick: 6500, FreezeEndTick: 7780, EndTick: 12000, Winner: model.Team2, WinnerSide: model.SideT, EndReason: model.EndReasonTargetBombed},
		{Number: 3, StartTick: 12100, FreezeEndTick: 13380, EndTick: 20000, Winner: model.Team1, WinnerSide: model.SideCT, EndReason: model.EndReasonTargetSaved},
	}

	var buf bytes.Buffer
	PrintRoundTable(&buf, rounds, map[model.TeamLabel]string{model.Team1: "Blue", model.Team2: "Red"})

	out := buf.String()
	assert.Contains(t, out, "2 – 1")
	assert.Contains(t, out, "bomb exploded")
	assert.Contains(t, out, "12,000")
	assert.Contains(t, out, "Red")
}

func TestPrintHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryTable(&buf, []storage.PlayerMatch{{
		Hash: "fedcba9876543210", MapName: "de_anubis", MatchDate: "2025-05-05",
		Line: stats.PlayerLine{ID: alice, Team: model.Team2, Kills: 18, Deaths: 12, Verdict: stats.VerdictLossBySurrender},
	}})

	out := buf.String()
	assert.Contains(t, out, "de_anubis")
	assert.Contains(t, out, "fedcba987654")
	assert.Contains(t, out, "1.50")
	assert.Contains(t, out, "lost-s")
}

func TestPrintOvertimeTable(t *testing.T) {
	var buf bytes.Buffer
	PrintOvertimeTable(&buf, nil)
	assert.Empty(t, buf.String())

	PrintOvertimeTable(&buf, []model.Overtime{{Number: 1, StartRound: 25, EndRound: 30, ScoreTeam1: 4, ScoreTeam2: 2}})
	assert.Contains(t, buf.String(), "25–30")
	assert.Contains(t, buf.String(), "4 – 2")
}

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	PrintFields(&buf, map[string]any{
		"kill_count":          12345.0,
		"kill_per_round":      0.75,
		"most_damage_weapon":  nil,
		"damage_by_hit_group": map[string]any{"head": 300.0, "chest": 100.0},
		"winner":              "team1",
	})

	out := buf.String()
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "0.75")
	assert.Contains(t, out, "chest=100 head=300")
	assert.Contains(t, out, none)
	assert.Less(t, strings.Index(out, "damage_by_hit_group"), strings.Index(out, "winner"))
}

func TestPrintRaw(t *testing.T) {
	var buf bytes.Buffer
	PrintRaw(&buf, []string{"map_name", "n"}, [][]string{{"de_nuke", "3"}, {"de_inferno", "NULL"}})

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "MAP")
	assert.Contains(t, out, "de_inferno")
	assert.Contains(t, out, "NULL")
}

func TestPrintSummaryTables(t *testing.T) {
	var buf bytes.Buffer
	PrintMapStats(&buf, []storage.MapStats{{MapName: "de_nuke", Matches: 2, AvgRounds: 21.5, Overtimes: 1}})
	PrintTopPlayers(&buf, []storage.PlayerActivity{{Name: "alice", SteamID: alice.String(), Matches: 2, Wins: 1, AvgKD: 1.25, AvgRating: 1.1}})

	out := buf.String()
	assert.Contains(t, out, "21.5")
	assert.Contains(t, out, "1.25")
	assert.Contains(t, out, "1.100")
	assert.Contains(t, out, alice.String())
}
