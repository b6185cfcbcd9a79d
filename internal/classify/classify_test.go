package classify

import (
	"testing"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/pable/go-cs-matchstats/internal/model"
)

const tickRate = 64.0

var tradeWindowTicks = int(DefaultTradeWindowSeconds * tickRate)

// IDs for test players. A and C are on team 1, B and D on team 2.
var (
	playerA = steamid.New(int64(76561198000001001))
	playerB = steamid.New(int64(76561198000001002))
	playerC = steamid.New(int64(76561198000001003))
	playerD = steamid.New(int64(76561198000001004))
)

func teamOf(id model.PlayerID) model.TeamLabel {
	if id == playerA || id == playerC {
		return model.Team1
	}
	return model.Team2
}

func teams(ids ...model.PlayerID) map[model.PlayerID]model.TeamLabel {
	out := make(map[model.PlayerID]model.TeamLabel, len(ids))
	for _, id := range ids {
		out[id] = teamOf(id)
	}
	return out
}

func kill(tick int, killer, victim model.PlayerID) model.Kill {
	return model.Kill{Tick: tick, Killer: killer, Victim: victim,
		KillerTeam: teamOf(killer), VictimTeam: teamOf(victim)}
}

// ---- Trade window tests ----

// buildTradeScenario: B kills A at tick 1000, then C kills B deltaTicks later.
func buildTradeScenario(deltaTicks int) Round {
	return Round{
		Round: model.Round{Number: 1, StartTick: 0, FreezeEndTick: 500, EndTick: 10000, Winner: model.Team1},
		Kills: []model.Kill{kill(1000, playerB, playerA), kill(1000+deltaTicks, playerC, playerB)},
		Teams: teams(playerA, playerB, playerC),
	}
}

func TestTradeKill_ExactlyAtWindow(t *testing.T) {
	res := Classify(buildTradeScenario(int(5.0*tickRate)), tradeWindowTicks)

	if res.Kills[0].IsTradeKill {
		t.Error("opening kill must not be a trade")
	}
	if !res.Kills[1].IsTradeKill {
		t.Error("expected C's kill to be a trade at exactly 5.0s")
	}
}

func TestTradeKill_JustOverWindow(t *testing.T) {
	seconds := 5.1
	res := Classify(buildTradeScenario(int(seconds*tickRate)+1), tradeWindowTicks)

	if res.Kills[1].IsTradeKill {
		t.Error("expected NO trade kill at 5.1s (just over window)")
	}
}

func TestTradeKill_UnsortedInput(t *testing.T) {
	r := buildTradeScenario(64)
	r.Kills[0], r.Kills[1] = r.Kills[1], r.Kills[0]

	res := Classify(r, tradeWindowTicks)
	if res.Kills[0].Killer != playerB || !res.Kills[1].IsTradeKill {
		t.Errorf("expected kills sorted by tick with the second one traded, got %+v", res.Kills)
	}
	if r.Kills[0].IsTradeKill || r.Kills[1].IsTradeKill {
		t.Error("Classify must not modify its input")
	}
}

func TestTradeKill_TeamKillIsNotATrade(t *testing.T) {
	kills := []model.Kill{kill(1000, playerB, playerA), kill(1010, playerD, playerB)}
	MarkTrades(kills, tradeWindowTicks)

	if kills[1].IsTradeKill {
		t.Error("a team kill cannot trade")
	}
}

// ---- Entry kill tests ----

func TestEntryKill_SkipsFreezeTime(t *testing.T) {
	round := model.Round{Number: 1, FreezeEndTick: 500, EndTick: 5000}
	kills := []model.Kill{
		kill(100, playerA, playerB),
		kill(600, playerD, playerC),
		kill(700, playerA, playerD),
	}

	k, ok := EntryKill(round, kills)
	if !ok {
		t.Fatal("expected an entry kill")
	}
	if k.Killer != playerD {
		t.Errorf("expected playerD to open the round, got %s", k.Killer.String())
	}
}

func TestEntryKill_IgnoresWorldAndTeamKills(t *testing.T) {
	round := model.Round{Number: 1, FreezeEndTick: 0, EndTick: 5000}
	kills := []model.Kill{
		{Tick: 10, Victim: playerA, VictimTeam: model.Team1},
		kill(20, playerB, playerD),
	}

	if _, ok := EntryKill(round, kills); ok {
		t.Error("expected no entry kill")
	}
}

// ---- Clutch tests ----

func TestClutch_OneVsThreeWon(t *testing.T) {
	// Team 1: A, C. Team 2: B, D, plus a third player E.
	playerE := steamid.New(int64(76561198000001005))
	tm := teams(playerA, playerB, playerC, playerD)
	tm[playerE] = model.Team2

	kills := []model.Kill{
		kill(100, playerB, playerC), // A alone vs B, D, E
		kill(200, playerA, playerB),
		kill(300, playerA, playerD), // E alone vs A
		{Tick: 400, Killer: playerA, Victim: playerE, KillerTeam: model.Team1, VictimTeam: model.Team2},
	}

	got := Clutches(kills, tm, model.Team1)
	if len(got) != 2 {
		t.Fatalf("expected two clutches, got %+v", got)
	}
	if c := got[0]; c.Player != playerA || c.Opponents != 3 || !c.Won {
		t.Errorf("expected A to win a 1v3, got %+v", c)
	}
	if c := got[1]; c.Player != playerE || c.Opponents != 1 || c.Won {
		t.Errorf("expected E to lose a 1v1, got %+v", c)
	}
}

func TestClutch_BothSidesInOneVsOne(t *testing.T) {
	tm := teams(playerA, playerB, playerC, playerD)
	kills := []model.Kill{
		kill(100, playerB, playerC), // A vs B, D
		kill(200, playerA, playerD), // A vs B: B is now also alone
		kill(300, playerB, playerA),
	}

	got := Clutches(kills, tm, model.Team2)
	if len(got) != 2 {
		t.Fatalf("expected two clutches, got %+v", got)
	}
	if got[0].Player != playerA || got[0].Won {
		t.Errorf("expected A to lose the clutch, got %+v", got[0])
	}
	if got[1].Player != playerB || !got[1].Won || got[1].Opponents != 1 {
		t.Errorf("expected B to win a 1v1, got %+v", got[1])
	}
}

// ---- RWS tests ----

func TestRWS_DamageShare(t *testing.T) {
	r := Round{
		Round: model.Round{Number: 1, Winner: model.Team1, EndReason: model.EndReasonEliminated},
		Teams: teams(playerA, playerB, playerC, playerD),
		Hurts: []model.PlayerHurt{
			{Attacker: playerA, Victim: playerB, HealthDamage: 150},
			{Attacker: playerC, Victim: playerD, HealthDamage: 50},
			{Attacker: playerB, Victim: playerA, HealthDamage: 80}, // loser damage
			{Attacker: playerC, Victim: playerA, HealthDamage: 20}, // team damage
		},
	}

	rws := RWS(r)
	if rws[playerA] != 75 || rws[playerC] != 25 {
		t.Errorf("expected 75/25 split, got %v", rws)
	}
	if _, ok := rws[playerB]; ok {
		t.Error("losers earn no RWS")
	}
}

func TestRWS_BombBonus(t *testing.T) {
	r := Round{
		Round:   model.Round{Number: 1, Winner: model.Team2, EndReason: model.EndReasonTargetBombed},
		Teams:   teams(playerA, playerB, playerC, playerD),
		Planter: playerD,
		Hurts: []model.PlayerHurt{
			{Attacker: playerB, Victim: playerA, HealthDamage: 100},
		},
	}

	rws := RWS(r)
	if rws[playerD] != 30 || rws[playerB] != 70 {
		t.Errorf("expected planter 30 and B 70, got %v", rws)
	}
}

// ---- Rating and tracker tests ----

func TestRating1_AverageLine(t *testing.T) {
	// One kill per round, alive in 1 of 3 rounds, three 1K rounds.
	got := Rating1(3, 2, 3, [5]int{3, 0, 0, 0, 0})
	want := roundTo((1/0.679+0.7*(1.0/3)/0.317+1/1.277)/2.7, 3)
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if Rating1(0, 0, 0, [5]int{}) != 0 {
		t.Error("zero rounds must rate 0")
	}
}

func TestTracker_Apply(t *testing.T) {
	tr := NewTracker()
	tm := teams(playerA, playerB, playerC, playerD)

	tr.Observe(Classify(Round{
		Round: model.Round{Number: 1, FreezeEndTick: 0, EndTick: 5000, Winner: model.Team1},
		Kills: []model.Kill{kill(10, playerA, playerB), kill(20, playerA, playerD)},
		Hurts: []model.PlayerHurt{{Attacker: playerA, Victim: playerB, HealthDamage: 100}},
		Teams: tm,
		MVP:   playerA,
	}, tradeWindowTicks))
	tr.Observe(Classify(Round{
		Round: model.Round{Number: 2, StartTick: 5001, FreezeEndTick: 5001, EndTick: 9000, Winner: model.Team2},
		Kills: []model.Kill{kill(6000, playerB, playerA)},
		Teams: tm,
	}, tradeWindowTicks))

	p := model.Player{ID: playerA}
	tr.Apply(&p)
	if p.EntryKillCount != 1 || p.RoundMvpCount != 1 {
		t.Errorf("unexpected tallies: %+v", p)
	}
	if p.EseaRws != 50 {
		t.Errorf("expected RWS 50 (100 over 2 rounds), got %v", p.EseaRws)
	}
	if want := Rating1(2, 1, 2, [5]int{0, 1, 0, 0, 0}); p.RatingHltv != want {
		t.Errorf("expected rating %v, got %v", want, p.RatingHltv)
	}

	tr.Reset()
	if tr.Rounds() != 0 || tr.Tally(playerA) != (Tally{}) {
		t.Error("reset must clear every tally")
	}
}
