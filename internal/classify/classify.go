// Package classify derives the per-kill and per-player classifications that
// the statistics core only counts: trade kills, entry kills, clutches, round
// MVPs, HLTV 1.0 rating and RWS. It runs on the decoder side, one finished
// round at a time.
package classify

import (
	"math"
	"sort"

	"github.com/pable/go-cs-matchstats/internal/model"
)

// DefaultTradeWindowSeconds is how soon after a teammate's death a kill on
// the killer still counts as a trade.
const DefaultTradeWindowSeconds = 5.0

// Round is everything observed during one round, before classification.
type Round struct {
	Round model.Round
	Kills []model.Kill
	Hurts []model.PlayerHurt
	// Teams maps every player alive at the start of the round to their team.
	Teams map[model.PlayerID]model.TeamLabel
	// Planter and Defuser are set when the round ended on the bomb exploding
	// or being defused.
	Planter model.PlayerID
	Defuser model.PlayerID
	MVP     model.PlayerID
}

// Clutch is a 1vN situation: the player was the last one alive on their team
// while Opponents enemies were still up.
type Clutch struct {
	Player    model.PlayerID
	Team      model.TeamLabel
	Opponents int
	Won       bool
}

// Result is the classification of one round.
type Result struct {
	Round model.Round
	// Kills is the round's kills in tick order with IsTradeKill set.
	Kills       []model.Kill
	EntryKiller model.PlayerID
	Clutches    []Clutch
	MVP         model.PlayerID
	Players     []model.PlayerID
	RWS         map[model.PlayerID]float64
}

// Classify annotates one round. tradeWindowTicks bounds the trade look-back.
func Classify(r Round, tradeWindowTicks int) Result {
	kills := make([]model.Kill, len(r.Kills))
	copy(kills, r.Kills)
	sort.SliceStable(kills, func(i, j int) bool { return kills[i].Tick < kills[j].Tick })
	MarkTrades(kills, tradeWindowTicks)

	res := Result{
		Round:    r.Round,
		Kills:    kills,
		Clutches: Clutches(kills, r.Teams, r.Round.Winner),
		MVP:      r.MVP,
		Players:  sortedPlayers(r.Teams),
		RWS:      RWS(r),
	}
	if k, ok := EntryKill(r.Round, kills); ok {
		res.EntryKiller = k.Killer
	}
	return res
}

// MarkTrades flags, in place, every kill that avenges a teammate killed by the
// victim within windowTicks. kills must be sorted by tick.
func MarkTrades(kills []model.Kill, windowTicks int) {
	for i := range kills {
		k := &kills[i]
		if !k.Killer.Valid() || k.IsTeamKill() {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			prev := kills[j]
			if k.Tick-prev.Tick > windowTicks {
				break
			}
			// prev.Killer took out one of k.Killer's teammates; k.Killer now
			// kills prev.Killer.
			if prev.Killer == k.Victim && prev.VictimTeam == k.KillerTeam && prev.Victim != k.Killer {
				k.IsTradeKill = true
				break
			}
		}
	}
}

// EntryKill returns the first kill after the freeze time ended. Team kills
// and world kills do not open a round.
func EntryKill(round model.Round, kills []model.Kill) (model.Kill, bool) {
	for _, k := range kills {
		if k.Tick < round.FreezeEndTick {
			continue
		}
		if !k.Killer.Valid() || k.IsTeamKill() {
			continue
		}
		return k, true
	}
	return model.Kill{}, false
}

// Clutches walks the kills in order and records, for each team, the first
// moment a single player is left alive against at least one opponent.
func Clutches(kills []model.Kill, teams map[model.PlayerID]model.TeamLabel, winner model.TeamLabel) []Clutch {
	alive := map[model.TeamLabel]map[model.PlayerID]bool{
		model.Team1: {},
		model.Team2: {},
	}
	for id, t := range teams {
		if t.Valid() {
			alive[t][id] = true
		}
	}

	var out []Clutch
	seen := make(map[model.TeamLabel]bool)
	check := func(team model.TeamLabel) {
		if seen[team] || len(alive[team]) != 1 {
			return
		}
		opponents := len(alive[team.Opponent()])
		if opponents == 0 {
			return
		}
		for id := range alive[team] {
			out = append(out, Clutch{Player: id, Team: team, Opponents: opponents})
		}
		seen[team] = true
	}

	for _, k := range kills {
		t, ok := teams[k.Victim]
		if !ok || !t.Valid() {
			continue
		}
		delete(alive[t], k.Victim)
		check(model.Team1)
		check(model.Team2)
	}
	for i := range out {
		out[i].Won = winner.Valid() && out[i].Team == winner
	}
	return out
}

// RWS splits 100 points across the winning team by share of health damage
// dealt to enemies. When the round ended on the bomb, the planter (T win) or
// defuser (CT win) takes 30 points and the rest share 70.
func RWS(r Round) map[model.PlayerID]float64 {
	out := make(map[model.PlayerID]float64)
	winner := r.Round.Winner
	if !winner.Valid() {
		return out
	}

	damage := make(map[model.PlayerID]int)
	total := 0
	for _, h := range r.Hurts {
		if r.Teams[h.Attacker] != winner || r.Teams[h.Victim] == winner {
			continue
		}
		damage[h.Attacker] += h.HealthDamage
		total += h.HealthDamage
	}

	pool := 100.0
	var objective model.PlayerID
	switch r.Round.EndReason {
	case model.EndReasonTargetBombed:
		objective = r.Planter
	case model.EndReasonBombDefused:
		objective = r.Defuser
	}
	if objective.Valid() && r.Teams[objective] == winner {
		out[objective] = 30
		pool = 70
	}
	if total == 0 {
		return out
	}
	for id, d := range damage {
		out[id] += pool * float64(d) / float64(total)
	}
	return out
}

func sortedPlayers(teams map[model.PlayerID]model.TeamLabel) []model.PlayerID {
	out := make([]model.PlayerID, 0, len(teams))
	for id := range teams {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Int64() < out[j].Int64() })
	return out
}

// Rating1 is the HLTV 1.0 rating.
func Rating1(kills, deaths, rounds int, multi [5]int) float64 {
	if rounds == 0 {
		return 0
	}
	r := float64(rounds)
	killRating := float64(kills) / r / 0.679
	survivalRating := float64(rounds-deaths) / r / 0.317
	multiRating := float64(multi[0]+4*multi[1]+9*multi[2]+16*multi[3]+25*multi[4]) / r / 1.277
	return roundTo((killRating+0.7*survivalRating+multiRating)/2.7, 3)
}

func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}
