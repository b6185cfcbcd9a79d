package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

const none = "—"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// ShortHash is the display form of a demo hash.
func ShortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, rec storage.MatchRecord) {
	outcome := ""
	if rec.Surrender.Valid() {
		outcome = fmt.Sprintf("  |  %s surrendered", teamName(rec, rec.Surrender))
	}
	fmt.Fprintf(w, "\nMap: %s  |  Date: %s  |  Score: %s %d – %d %s  |  Rounds: %d%s  |  Hash: %s\n\n",
		rec.MapName, rec.MatchDate, rec.Team1Name, rec.ScoreTeam1, rec.ScoreTeam2, rec.Team2Name,
		rec.RoundCount, outcome, ShortHash(rec.Hash))
}

func teamName(rec storage.MatchRecord, l model.TeamLabel) string {
	switch l {
	case model.Team1:
		return rec.Team1Name
	case model.Team2:
		return rec.Team2Name
	default:
		return l.String()
	}
}

// PrintPlayerTable prints the scoreboard. If focus is valid, that player's
// row is marked with ">".
func PrintPlayerTable(w io.Writer, lines []stats.PlayerLine, focus model.PlayerID) {
	table := newTable(w)
	table.Header(" ", "NAME", "TEAM", "K", "A", "D", "K/D", "HS%", "KPR", "ADR",
		"ENTRY_K", "TRADE_K", "CLUTCH_W", "MVP", "RATING", "RWS", "RESULT")

	for _, l := range lines {
		table.Append(
			marker(l.ID, focus),
			l.Name,
			l.Team.String(),
			strconv.Itoa(l.Kills),
			strconv.Itoa(l.Assists),
			strconv.Itoa(l.Deaths),
			fmt.Sprintf("%.2f", ratio(l.Kills, l.Deaths)),
			fmt.Sprintf("%.0f%%", percent(l.Headshots, l.Kills)),
			fmt.Sprintf("%.2f", l.KillPerRound),
			fmt.Sprintf("%.1f", l.AverageDamage),
			strconv.Itoa(l.EntryKills),
			strconv.Itoa(l.TradeKills),
			strconv.Itoa(l.ClutchWon),
			strconv.Itoa(l.Mvps),
			fmt.Sprintf("%.3f", l.Rating),
			fmt.Sprintf("%.2f", l.Rws),
			orDash(l.Verdict.String()),
		)
	}
	table.Render()
}

// PrintMultiKillTable prints rounds with 1 to 5 kills per player.
func PrintMultiKillTable(w io.Writer, lines []stats.PlayerLine, focus model.PlayerID) {
	table := newTable(w)
	table.Header(" ", "PLAYER", "1K", "2K", "3K", "4K", "5K")
	for _, l := range lines {
		row := []any{marker(l.ID, focus), l.Name}
		for _, n := range l.MultiKills {
			row = append(row, strconv.Itoa(n))
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintMatchStats prints the whole-match totals and rankings.
func PrintMatchStats(w io.Writer, st stats.Stats, names map[model.PlayerID]string) {
	table := newTable(w)
	table.Header("STAT", "VALUE")
	rows := [][2]string{
		{"Rounds", strconv.Itoa(st.RoundCount)},
		{"Overtimes", strconv.Itoa(st.OvertimeCount)},
		{"First half", fmt.Sprintf("%d – %d", st.ScoreFirstHalfTeam1, st.ScoreFirstHalfTeam2)},
		{"Second half", fmt.Sprintf("%d – %d", st.ScoreSecondHalfTeam1, st.ScoreSecondHalfTeam2)},
		{"Kills", humanize.Comma(int64(st.KillCount))},
		{"Headshots", humanize.Comma(int64(st.HeadshotCount))},
		{"Trade kills", humanize.Comma(int64(st.TradeKillCount))},
		{"Team kills", humanize.Comma(int64(st.TeamKillCount))},
		{"Shots", humanize.Comma(int64(st.WeaponFiredCount))},
		{"Hits", humanize.Comma(int64(st.HitCount))},
		{"Health damage", humanize.Comma(int64(st.DamageHealthCount))},
		{"Armor damage", humanize.Comma(int64(st.DamageArmorCount))},
		{"Bombs planted", strconv.Itoa(st.BombPlantedCount)},
		{"Bombs defused", strconv.Itoa(st.BombDefusedCount)},
		{"Grenades (flash/smoke/HE/molo/inc/decoy)", fmt.Sprintf("%d/%d/%d/%d/%d/%d",
			st.FlashbangThrownCount, st.SmokeThrownCount, st.HeThrownCount,
			st.MolotovThrownCount, st.IncendiaryThrownCount, st.DecoyThrownCount)},
		{"Players blinded", humanize.Comma(int64(st.PlayerBlindedCount))},
		{"Most headshots", playerRanking(st.MostHeadshotPlayer, names)},
		{"Most entry kills", playerRanking(st.MostEntryKillPlayer, names)},
		{"Most bombs planted", playerRanking(st.MostBombPlantedPlayer, names)},
		{"Most damage weapon", weaponRanking(st.MostDamageWeapon)},
		{"Most killing weapon", weaponRanking(st.MostKillingWeapon)},
	}
	for _, r := range rows {
		table.Append(r[0], r[1])
	}
	table.Render()
}

// PrintPerspective prints one observer's own statistics and verdict.
func PrintPerspective(w io.Writer, name string, st stats.Stats, verdict stats.Verdict) {
	fmt.Fprintf(w, "\n--- %s ---\n\n", name)
	table := newTable(w)
	table.Header("K", "D", "A", "KPR", "DPR", "APR", "ADR", "DMG", "HS", "ENTRY", "CLUTCH", "RATING", "RWS", "RESULT")
	table.Append(
		strconv.Itoa(st.KillCount),
		strconv.Itoa(st.DeathCount),
		strconv.Itoa(st.AssistCount),
		fmt.Sprintf("%.2f", st.KillPerRound),
		fmt.Sprintf("%.2f", st.DeathPerRound),
		fmt.Sprintf("%.2f", st.AssistPerRound),
		fmt.Sprintf("%.1f", st.AverageHealthDamage),
		humanize.Comma(int64(st.DamageHealthCount)),
		strconv.Itoa(st.HeadshotCount),
		strconv.Itoa(st.EntryKillCount),
		fmt.Sprintf("%d/%d", st.ClutchWonCount, st.ClutchCount),
		fmt.Sprintf("%.3f", st.AverageHltvRating),
		fmt.Sprintf("%.2f", st.AverageEseaRws),
		orDash(verdict.String()),
	)
	table.Render()
	PrintHitGroupTable(w, st)
}

// PrintHitGroupTable prints health damage per body area with its share.
func PrintHitGroupTable(w io.Writer, st stats.Stats) {
	if len(st.DamageByHitGroup) == 0 {
		return
	}
	groups := make([]model.HitGroup, 0, len(st.DamageByHitGroup))
	for g := range st.DamageByHitGroup {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })

	table := newTable(w)
	table.Header("HITGROUP", "DAMAGE", "SHARE")
	for _, g := range groups {
		table.Append(g.String(), humanize.Comma(int64(st.DamageByHitGroup[g])), fmt.Sprintf("%.1f%%", st.HitGroupShare[g]))
	}
	table.Render()
}

func playerRanking(r stats.PlayerRanking, names map[model.PlayerID]string) string {
	if !r.OK {
		return none
	}
	name := names[r.Key]
	if name == "" {
		name = r.Key.String()
	}
	return fmt.Sprintf("%s (%d)", name, r.Score)
}

func weaponRanking(r stats.WeaponRanking) string {
	if !r.OK {
		return none
	}
	return fmt.Sprintf("%s (%s)", r.Key.String(), humanize.Comma(int64(r.Score)))
}

func marker(id, focus model.PlayerID) string {
	if focus.Valid() && id == focus {
		return ">"
	}
	return " "
}

func orDash(s string) string {
	if s == "" {
		return none
	}
	return s
}

func ratio(a, b int) float64 {
	if b == 0 {
		return float64(a)
	}
	return float64(a) / float64(b)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// PrintHistoryTable prints one row per match a player appears in.
func PrintHistoryTable(w io.Writer, history []storage.PlayerMatch) {
	table := newTable(w)
	table.Header("DATE", "MAP", "HASH", "TEAM", "K", "D", "A", "K/D", "KPR", "ADR", "RATING", "RWS", "RESULT")
	for _, pm := range history {
		l := pm.Line
		table.Append(
			pm.MatchDate,
			pm.MapName,
			ShortHash(pm.Hash),
			l.Team.String(),
			strconv.Itoa(l.Kills),
			strconv.Itoa(l.Deaths),
			strconv.Itoa(l.Assists),
			fmt.Sprintf("%.2f", ratio(l.Kills, l.Deaths)),
			fmt.Sprintf("%.2f", l.KillPerRound),
			fmt.Sprintf("%.1f", l.AverageDamage),
			fmt.Sprintf("%.3f", l.Rating),
			fmt.Sprintf("%.2f", l.Rws),
			orDash(l.Verdict.String()),
		)
	}
	table.Render()
}

// PrintRoundTable prints the round timeline with the running score.
func PrintRoundTable(w io.Writer, rounds []model.Round, teamNames map[model.TeamLabel]string) {
	table := newTable(w)
	table.Header("ROUND", "START", "FREEZE_END", "END", "WINNER", "SIDE", "REASON", "SCORE")
	var score1, score2 int
	for _, r := range rounds {
		switch r.Winner {
		case model.Team1:
			score1++
		case model.Team2:
			score2++
		}
		winner := teamNames[r.Winner]
		if winner == "" {
			winner = none
		}
		table.Append(
			strconv.Itoa(r.Number),
			humanize.Comma(int64(r.StartTick)),
			humanize.Comma(int64(r.FreezeEndTick)),
			humanize.Comma(int64(r.EndTick)),
			winner,
			r.WinnerSide.String(),
			r.EndReason.String(),
			fmt.Sprintf("%d – %d", score1, score2),
		)
	}
	table.Render()
}

// PrintOvertimeTable prints each overtime period and its score. Nothing is
// printed for a match decided in regulation.
func PrintOvertimeTable(w io.Writer, overtimes []model.Overtime) {
	if len(overtimes) == 0 {
		return
	}
	table := newTable(w)
	table.Header("OVERTIME", "ROUNDS", "SCORE")
	for _, o := range overtimes {
		table.Append(
			strconv.Itoa(o.Number),
			fmt.Sprintf("%d–%d", o.StartRound, o.EndRound),
			fmt.Sprintf("%d – %d", o.ScoreTeam1, o.ScoreTeam2),
		)
	}
	table.Render()
}

// PrintFields prints the persisted derived fields of a match by name.
func PrintFields(w io.Writer, fields map[string]any) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	table := newTable(w)
	table.Header("FIELD", "VALUE")
	for _, k := range names {
		table.Append(k, fieldValue(fields[k]))
	}
	table.Render()
}

func fieldValue(v any) string {
	switch x := v.(type) {
	case nil:
		return none
	case string:
		return orDash(x)
	case float64:
		if x == math.Trunc(x) {
			return humanize.Comma(int64(x))
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + fieldValue(x[k])
		}
		return orDash(strings.Join(parts, " "))
	default:
		return fmt.Sprint(x)
	}
}

// PrintRaw prints the result of an ad-hoc query.
func PrintRaw(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
}

// PrintMapStats prints the per-map breakdown of stored matches.
func PrintMapStats(w io.Writer, maps []storage.MapStats) {
	table := newTable(w)
	table.Header("MAP", "MATCHES", "AVG ROUNDS", "SURRENDERS", "OVERTIMES")
	for _, m := range maps {
		table.Append(
			m.MapName,
			strconv.Itoa(m.Matches),
			fmt.Sprintf("%.1f", m.AvgRounds),
			strconv.Itoa(m.Surrenders),
			strconv.Itoa(m.Overtimes),
		)
	}
	table.Render()
}

// PrintTopPlayers prints the most active players across stored matches.
func PrintTopPlayers(w io.Writer, players []storage.PlayerActivity) {
	table := newTable(w)
	table.Header("NAME", "STEAM ID", "MATCHES", "WINS", "AVG K/D", "AVG ADR", "AVG RATING")
	for _, p := range players {
		table.Append(
			p.Name,
			p.SteamID,
			strconv.Itoa(p.Matches),
			strconv.Itoa(p.Wins),
			fmt.Sprintf("%.2f", p.AvgKD),
			fmt.Sprintf("%.1f", p.AvgADR),
			fmt.Sprintf("%.3f", p.AvgRating),
		)
	}
	table.Render()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
