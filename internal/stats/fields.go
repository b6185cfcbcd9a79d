package stats

import (
	"math"

	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
	"golang.org/x/exp/constraints"

	"github.com/pable/go-cs-matchstats/internal/bus"
	"github.com/pable/go-cs-matchstats/internal/engine"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/rank"
	"github.com/pable/go-cs-matchstats/internal/store"
)

// Derived field names. They double as snapshot keys.
const (
	FieldRoundCount    = "round_count"
	FieldOvertimeCount = "overtime_count"

	FieldKillCount        = "kill_count"
	FieldDeathCount       = "death_count"
	FieldAssistCount      = "assist_count"
	FieldFlashAssistCount = "flash_assist_count"
	FieldHeadshotCount    = "headshot_count"
	FieldTradeKillCount   = "trade_kill_count"
	FieldKnifeKillCount   = "knife_kill_count"
	FieldJumpKillCount    = "jump_kill_count"
	FieldCrouchKillCount  = "crouch_kill_count"
	FieldTeamKillCount    = "teamkill_count"

	FieldEntryKillCount  = "entry_kill_count"
	FieldClutchCount     = "clutch_count"
	FieldClutchWonCount  = "clutch_won_count"
	FieldClutchLostCount = "clutch_lost_count"
	FieldMvpCount        = "mvp_count"

	// FieldMultiKills holds the five counts below as one [5]int.
	FieldMultiKills     = "multi_kills"
	FieldOneKillCount   = "one_kill_count"
	FieldTwoKillCount   = "two_kill_count"
	FieldThreeKillCount = "three_kill_count"
	FieldFourKillCount  = "four_kill_count"
	FieldFiveKillCount  = "five_kill_count"

	FieldBombPlantedCount  = "bomb_planted_count"
	FieldBombDefusedCount  = "bomb_defused_count"
	FieldBombExplodedCount = "bomb_exploded_count"

	FieldWeaponFiredCount      = "shot_count"
	FieldHitCount              = "hit_count"
	FieldDamageHealthCount     = "damage_health_count"
	FieldDamageArmorCount      = "damage_armor_count"
	FieldDamageByHitGroup      = "damage_by_hitgroup"
	FieldHitGroupShare         = "hitgroup_share"
	FieldFlashbangThrownCount  = "flashbang_thrown_count"
	FieldSmokeThrownCount      = "smoke_thrown_count"
	FieldHeThrownCount         = "he_thrown_count"
	FieldDecoyThrownCount      = "decoy_thrown_count"
	FieldMolotovThrownCount    = "molotov_thrown_count"
	FieldIncendiaryThrownCount = "incendiary_thrown_count"
	FieldPlayerBlindedCount    = "player_blinded_count"
	FieldDecoyStartedCount     = "decoy_started_count"
	FieldMolotovFireStarted    = "molotov_fire_started_count"

	FieldKillPerRound        = "kill_per_round"
	FieldDeathPerRound       = "death_per_round"
	FieldAssistPerRound      = "assist_per_round"
	FieldAverageHealthDamage = "average_health_damage"
	FieldAverageDamage       = "average_damage"
	FieldAverageHltvRating   = "average_hltv_rating"
	FieldAverageEseaRws      = "average_esea_rws"

	FieldMostHeadshotPlayer    = "most_headshot_player"
	FieldMostBombPlantedPlayer = "most_bomb_planted_player"
	FieldMostEntryKillPlayer   = "most_entry_kill_player"
	FieldMostDamageWeapon      = "most_damage_weapon"
	FieldMostKillingWeapon     = "most_killing_weapon"

	FieldScoreTeam1           = "score_team1"
	FieldScoreTeam2           = "score_team2"
	FieldScoreFirstHalfTeam1  = "score_half1_team1"
	FieldScoreFirstHalfTeam2  = "score_half1_team2"
	FieldScoreSecondHalfTeam1 = "score_half2_team1"
	FieldScoreSecondHalfTeam2 = "score_half2_team2"
	FieldSurrender            = "surrender"
	FieldWinner               = "winner"

	// Registered for perspectives only.
	FieldVerdict = "verdict"
)

// PlayerRanking and WeaponRanking are the "most X" results. OK is false when
// no candidate scored.
type (
	PlayerRanking = rank.Result[model.PlayerID, int]
	WeaponRanking = rank.Result[model.Weapon, int]
)

func sum[T any, V constraints.Integer | constraints.Float](items []T, value func(T) V) V {
	var total V
	for _, it := range items {
		total += value(it)
	}
	return total
}

func count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// inRounds keeps the events whose tick falls inside a round span.
func inRounds[T model.Event](rounds []model.Round, events []T) []T {
	return filter(events, func(ev T) bool { return model.RoundIndex(rounds, ev.EventTick()) >= 0 })
}

// roundTo rounds x half away from zero to the given number of decimals.
func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// perRound averages total over rounds. No rounds yields 0. A total whose
// magnitude is below 0.1 is returned as is, so rounding cannot turn float
// noise into a visible non-zero average.
func perRound(total float64, rounds, places int) float64 {
	if rounds == 0 {
		return 0
	}
	if math.Abs(total) < 0.1 {
		return total
	}
	return roundTo(total/float64(rounds), places)
}

func isGrenade(w model.Weapon) bool {
	return w.Class() == common.EqClassGrenade
}

// isGun excludes grenades and utility such as the bomb, kevlar or defuse kit.
func isGun(w model.Weapon) bool {
	c := w.Class()
	return c != common.EqClassGrenade && c != common.EqClassEquipment && c != common.EqClassUnknown
}

// multiKills counts, per round, the kills of each matching killer and tallies
// the rounds in which a killer reached n kills. Index 0 holds 1K rounds and
// index 4 holds 5K-or-more rounds.
func multiKills(v View) [5]int {
	rounds := v.Rounds()
	type key struct {
		round  int
		killer model.PlayerID
	}
	kills := make(map[key]int)
	var order []key
	for _, k := range v.Kills() {
		if !k.Killer.Valid() || k.IsTeamKill() {
			continue
		}
		ri := model.RoundIndex(rounds, k.Tick)
		if ri < 0 {
			continue
		}
		kk := key{round: ri, killer: k.Killer}
		if _, ok := kills[kk]; !ok {
			order = append(order, kk)
		}
		kills[kk]++
	}
	var out [5]int
	for _, kk := range order {
		n := min(kills[kk], 5)
		out[n-1]++
	}
	return out
}

// topPlayer ranks the view's players in roster order by score, skipping
// players that scored nothing.
func topPlayer(players []model.Player, scoreOf func(model.PlayerID) int) PlayerRanking {
	tally := rank.NewTally[model.PlayerID, int]()
	for _, p := range players {
		if s := scoreOf(p.ID); s > 0 {
			tally.Add(p.ID, s)
		}
	}
	return tally.Top()
}

func countBy[T any](items []T, key func(T) model.PlayerID) map[model.PlayerID]int {
	out := make(map[model.PlayerID]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

func score(rounds []model.Round, team model.TeamLabel, from, to int) int {
	return count(rounds, func(r model.Round) bool {
		return r.Winner == team && r.Number >= from && r.Number <= to
	})
}

// definitions returns every derived field for v. halfLength is the positive
// number of regulation rounds per half; rounds past two halves only count
// toward the totals.
func definitions(v View, halfLength int) []engine.Field {
	src := func(kinds ...bus.Kind) []bus.Kind { return kinds }
	kills := src(store.Kills)
	killsAndRounds := src(store.Kills, store.Rounds)
	hurts := src(store.PlayersHurt)
	fires := src(store.WeaponFires)
	players := src(store.Players)

	thrown := func(name string, eq common.EquipmentType) engine.Field {
		return engine.Field{Name: name, Sources: fires, Compute: func(engine.Inputs) any {
			return count(v.WeaponFires(), func(w model.WeaponFire) bool { return w.Weapon == eq })
		}}
	}
	killsWhere := func(name string, pred func(model.Kill) bool) engine.Field {
		return engine.Field{Name: name, Sources: kills, Compute: func(engine.Inputs) any {
			return count(v.Kills(), pred)
		}}
	}
	playerSum := func(name string, value func(model.Player) int) engine.Field {
		return engine.Field{Name: name, Sources: players, Compute: func(engine.Inputs) any {
			return sum(v.Players(), value)
		}}
	}
	multi := func(name string, n int) engine.Field {
		return engine.Field{Name: name, Deps: []string{FieldMultiKills}, Compute: func(in engine.Inputs) any {
			return engine.As[[5]int](in, FieldMultiKills)[n-1]
		}}
	}

	regulation := 2 * halfLength

	return []engine.Field{
		{Name: FieldRoundCount, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return len(v.Rounds())
		}},
		{Name: FieldOvertimeCount, Sources: src(store.Overtimes), Compute: func(engine.Inputs) any {
			return len(v.Overtimes())
		}},

		// Kills.
		{Name: FieldKillCount, Sources: kills, Compute: func(engine.Inputs) any { return len(v.Kills()) }},
		{Name: FieldDeathCount, Sources: kills, Compute: func(engine.Inputs) any { return len(v.Deaths()) }},
		{Name: FieldAssistCount, Sources: kills, Compute: func(engine.Inputs) any { return len(v.Assists()) }},
		{Name: FieldFlashAssistCount, Sources: kills, Compute: func(engine.Inputs) any {
			return count(v.Assists(), func(k model.Kill) bool { return k.AssistedFlash })
		}},
		killsWhere(FieldHeadshotCount, func(k model.Kill) bool { return k.IsHeadshot }),
		killsWhere(FieldTradeKillCount, func(k model.Kill) bool { return k.IsTradeKill }),
		killsWhere(FieldKnifeKillCount, func(k model.Kill) bool { return k.Weapon == common.EqKnife }),
		killsWhere(FieldJumpKillCount, func(k model.Kill) bool { return k.KillerVelocityZ > 0 }),
		killsWhere(FieldCrouchKillCount, func(k model.Kill) bool { return k.KillerCrouching }),
		killsWhere(FieldTeamKillCount, model.Kill.IsTeamKill),
		{Name: FieldMultiKills, Sources: killsAndRounds, Compute: func(engine.Inputs) any {
			return multiKills(v)
		}},
		multi(FieldOneKillCount, 1),
		multi(FieldTwoKillCount, 2),
		multi(FieldThreeKillCount, 3),
		multi(FieldFourKillCount, 4),
		multi(FieldFiveKillCount, 5),

		// Classifier tallies carried on players.
		playerSum(FieldEntryKillCount, func(p model.Player) int { return p.EntryKillCount }),
		playerSum(FieldClutchCount, func(p model.Player) int { return p.ClutchCount }),
		playerSum(FieldClutchWonCount, func(p model.Player) int { return p.ClutchWonCount }),
		playerSum(FieldClutchLostCount, func(p model.Player) int { return p.ClutchLostCount }),
		playerSum(FieldMvpCount, func(p model.Player) int { return p.RoundMvpCount }),

		// Bomb.
		{Name: FieldBombPlantedCount, Sources: src(store.BombsPlanted), Compute: func(engine.Inputs) any {
			return len(v.BombsPlanted())
		}},
		{Name: FieldBombDefusedCount, Sources: src(store.BombsDefused), Compute: func(engine.Inputs) any {
			return len(v.BombsDefused())
		}},
		{Name: FieldBombExplodedCount, Sources: src(store.BombsExploded), Compute: func(engine.Inputs) any {
			return len(v.BombsExploded())
		}},

		// Weapons, damage and utility.
		{Name: FieldWeaponFiredCount, Sources: fires, Compute: func(engine.Inputs) any {
			return count(v.WeaponFires(), func(w model.WeaponFire) bool { return isGun(w.Weapon) })
		}},
		{Name: FieldHitCount, Sources: hurts, Compute: func(engine.Inputs) any {
			return count(v.Hurts(), func(h model.PlayerHurt) bool {
				return h.Attacker.Valid() && !isGrenade(h.Weapon)
			})
		}},
		{Name: FieldDamageHealthCount, Sources: hurts, Compute: func(engine.Inputs) any {
			return sum(v.Hurts(), func(h model.PlayerHurt) int { return h.HealthDamage })
		}},
		{Name: FieldDamageArmorCount, Sources: hurts, Compute: func(engine.Inputs) any {
			return sum(v.Hurts(), func(h model.PlayerHurt) int { return h.ArmorDamage })
		}},
		{Name: FieldDamageByHitGroup, Sources: hurts, Compute: func(engine.Inputs) any {
			out := make(map[model.HitGroup]int)
			for _, h := range v.Hurts() {
				out[h.HitGroup] += h.HealthDamage
			}
			return out
		}},
		{Name: FieldHitGroupShare, Deps: []string{FieldDamageByHitGroup, FieldDamageHealthCount}, Compute: func(in engine.Inputs) any {
			total := engine.As[int](in, FieldDamageHealthCount)
			out := make(map[model.HitGroup]float64)
			if total == 0 {
				return out
			}
			for g, d := range engine.As[map[model.HitGroup]int](in, FieldDamageByHitGroup) {
				out[g] = roundTo(float64(d)*100/float64(total), 1)
			}
			return out
		}},
		thrown(FieldFlashbangThrownCount, common.EqFlash),
		thrown(FieldSmokeThrownCount, common.EqSmoke),
		thrown(FieldHeThrownCount, common.EqHE),
		thrown(FieldDecoyThrownCount, common.EqDecoy),
		thrown(FieldMolotovThrownCount, common.EqMolotov),
		thrown(FieldIncendiaryThrownCount, common.EqIncendiary),
		{Name: FieldPlayerBlindedCount, Sources: src(store.PlayersBlinded), Compute: func(engine.Inputs) any {
			return len(v.Blinds())
		}},
		{Name: FieldDecoyStartedCount, Sources: src(store.DecoysStarted), Compute: func(engine.Inputs) any {
			return len(v.DecoysStarted())
		}},
		{Name: FieldMolotovFireStarted, Sources: src(store.MolotovsFired), Compute: func(engine.Inputs) any {
			return len(v.MolotovsFired())
		}},

		// Per-round averages. Events outside every round span are ignored.
		{Name: FieldKillPerRound, Sources: killsAndRounds, Deps: []string{FieldRoundCount}, Compute: func(in engine.Inputs) any {
			total := len(inRounds(v.Rounds(), v.Kills()))
			return perRound(float64(total), engine.As[int](in, FieldRoundCount), 2)
		}},
		{Name: FieldDeathPerRound, Sources: killsAndRounds, Deps: []string{FieldRoundCount}, Compute: func(in engine.Inputs) any {
			total := len(inRounds(v.Rounds(), v.Deaths()))
			return perRound(float64(total), engine.As[int](in, FieldRoundCount), 2)
		}},
		{Name: FieldAssistPerRound, Sources: killsAndRounds, Deps: []string{FieldRoundCount}, Compute: func(in engine.Inputs) any {
			total := len(inRounds(v.Rounds(), v.Assists()))
			return perRound(float64(total), engine.As[int](in, FieldRoundCount), 2)
		}},
		{Name: FieldAverageHealthDamage, Sources: src(store.PlayersHurt, store.Rounds), Deps: []string{FieldRoundCount}, Compute: func(in engine.Inputs) any {
			total := sum(inRounds(v.Rounds(), v.Hurts()), func(h model.PlayerHurt) int { return h.HealthDamage })
			return perRound(float64(total), engine.As[int](in, FieldRoundCount), 1)
		}},
		{Name: FieldAverageDamage, Sources: src(store.PlayersHurt, store.Rounds), Deps: []string{FieldRoundCount}, Compute: func(in engine.Inputs) any {
			total := sum(inRounds(v.Rounds(), v.Hurts()), func(h model.PlayerHurt) int { return h.HealthDamage + h.ArmorDamage })
			return perRound(float64(total), engine.As[int](in, FieldRoundCount), 1)
		}},
		{Name: FieldAverageHltvRating, Sources: players, Compute: func(engine.Inputs) any {
			ps := v.Players()
			if len(ps) == 0 {
				return 0.0
			}
			return sum(ps, func(p model.Player) float64 { return p.RatingHltv }) / float64(len(ps))
		}},
		{Name: FieldAverageEseaRws, Sources: players, Compute: func(engine.Inputs) any {
			ps := v.Players()
			if len(ps) == 0 {
				return 0.0
			}
			return roundTo(sum(ps, func(p model.Player) float64 { return p.EseaRws })/float64(len(ps)), 2)
		}},

		// Rankings.
		{Name: FieldMostHeadshotPlayer, Sources: src(store.Kills, store.Players), Compute: func(engine.Inputs) any {
			hs := countBy(filter(v.Kills(), func(k model.Kill) bool { return k.IsHeadshot }),
				func(k model.Kill) model.PlayerID { return k.Killer })
			return topPlayer(v.Players(), func(id model.PlayerID) int { return hs[id] })
		}},
		{Name: FieldMostBombPlantedPlayer, Sources: src(store.BombsPlanted, store.Players), Compute: func(engine.Inputs) any {
			planted := countBy(v.BombsPlanted(), func(b model.BombPlanted) model.PlayerID { return b.Planter })
			return topPlayer(v.Players(), func(id model.PlayerID) int { return planted[id] })
		}},
		{Name: FieldMostEntryKillPlayer, Sources: players, Compute: func(engine.Inputs) any {
			ps := v.Players()
			entries := make(map[model.PlayerID]int, len(ps))
			for _, p := range ps {
				entries[p.ID] = p.EntryKillCount
			}
			return topPlayer(ps, func(id model.PlayerID) int { return entries[id] })
		}},
		{Name: FieldMostDamageWeapon, Sources: src(store.PlayersHurt, store.Rounds), Compute: func(engine.Inputs) any {
			tally := rank.NewTally[model.Weapon, int]()
			for _, h := range inRounds(v.Rounds(), v.Hurts()) {
				if d := h.HealthDamage + h.ArmorDamage; d > 0 {
					tally.Add(h.Weapon, d)
				}
			}
			return tally.Top()
		}},
		{Name: FieldMostKillingWeapon, Sources: kills, Compute: func(engine.Inputs) any {
			tally := rank.NewTally[model.Weapon, int]()
			for _, k := range v.Kills() {
				tally.Add(k.Weapon, 1)
			}
			return tally.Top()
		}},

		// Score.
		{Name: FieldScoreTeam1, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team1, 1, math.MaxInt)
		}},
		{Name: FieldScoreTeam2, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team2, 1, math.MaxInt)
		}},
		{Name: FieldScoreFirstHalfTeam1, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team1, 1, halfLength)
		}},
		{Name: FieldScoreFirstHalfTeam2, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team2, 1, halfLength)
		}},
		{Name: FieldScoreSecondHalfTeam1, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team1, halfLength+1, regulation)
		}},
		{Name: FieldScoreSecondHalfTeam2, Sources: src(store.Rounds), Compute: func(engine.Inputs) any {
			return score(v.Rounds(), model.Team2, halfLength+1, regulation)
		}},
		{Name: FieldSurrender, Sources: src(store.Outcome), Compute: func(engine.Inputs) any {
			return v.Store().Surrender()
		}},
		{Name: FieldWinner, Deps: []string{FieldScoreTeam1, FieldScoreTeam2, FieldSurrender}, Compute: func(in engine.Inputs) any {
			if s := engine.As[model.TeamLabel](in, FieldSurrender); s.Valid() {
				return s.Opponent()
			}
			s1, s2 := engine.As[int](in, FieldScoreTeam1), engine.As[int](in, FieldScoreTeam2)
			switch {
			case s1 > s2:
				return model.Team1
			case s2 > s1:
				return model.Team2
			default:
				return model.TeamNone
			}
		}},
	}
}

// verdictField resolves the observer's verdict against current team rosters.
func verdictField(s *store.Store, observer model.PlayerID) engine.Field {
	return engine.Field{
		Name:    FieldVerdict,
		Sources: []bus.Kind{store.Teams, store.Players},
		Deps:    []string{FieldScoreTeam1, FieldScoreTeam2, FieldSurrender},
		Compute: func(in engine.Inputs) any {
			return ResolveVerdict(
				engine.As[int](in, FieldScoreTeam1),
				engine.As[int](in, FieldScoreTeam2),
				engine.As[model.TeamLabel](in, FieldSurrender),
				s.TeamOf(observer),
			)
		},
	}
}
