package stats

import (
	"testing"

	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-cs-matchstats/internal/model"
)

func TestResolveVerdict(t *testing.T) {
	cases := []struct {
		name           string
		score1, score2 int
		surrender      model.TeamLabel
		team           model.TeamLabel
		want           Verdict
	}{
		{"win on team 1", 16, 10, model.TeamNone, model.Team1, VerdictWin},
		{"loss on team 2", 16, 10, model.TeamNone, model.Team2, VerdictLoss},
		{"draw on team 1", 15, 15, model.TeamNone, model.Team1, VerdictDraw},
		{"draw on team 2", 15, 15, model.TeamNone, model.Team2, VerdictDraw},
		{"no score", 0, 0, model.TeamNone, model.Team1, VerdictUndetermined},
		{"on neither team", 16, 10, model.TeamNone, model.TeamNone, VerdictUndetermined},
		{"own team surrendered while ahead", 10, 3, model.Team1, model.Team1, VerdictLossBySurrender},
		{"opponent surrendered while ahead", 3, 10, model.Team2, model.Team1, VerdictWinBySurrender},
		{"surrender before any round", 0, 0, model.Team1, model.Team2, VerdictWinBySurrender},
		{"surrender on tied score", 5, 5, model.Team2, model.Team2, VerdictLossBySurrender},
		{"surrender, observer on neither team", 5, 5, model.Team2, model.TeamNone, VerdictUndetermined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveVerdict(tc.score1, tc.score2, tc.surrender, tc.team))
		})
	}
}

func TestVerdictStrings(t *testing.T) {
	require.Equal(t, "won", VerdictWin.String())
	require.Equal(t, "lost-s", VerdictLossBySurrender.String())
	require.Equal(t, "", VerdictUndetermined.String())
	for _, v := range []Verdict{VerdictLossBySurrender, VerdictLoss, VerdictDraw, VerdictWin, VerdictWinBySurrender} {
		require.Equal(t, v, ParseVerdict(v.String()))
	}
	require.Equal(t, VerdictUndetermined, ParseVerdict("bogus"))
}

func repeat(label model.TeamLabel, n int) []model.TeamLabel {
	out := make([]model.TeamLabel, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func TestPerspectiveVerdictScenarios(t *testing.T) {
	m := newMatch(t)
	addRounds(t, m, repeat(model.Team1, 16)...)
	addRounds(t, m, repeat(model.Team2, 10)...)

	onTeam1 := m.Perspective(alice)
	defer onTeam1.Close()
	onTeam2 := m.Perspective(bob)
	defer onTeam2.Close()

	require.Equal(t, VerdictWin, onTeam1.Verdict())
	require.Equal(t, VerdictLoss, onTeam2.Verdict())

	// Membership is evaluated against the current rosters.
	require.NoError(t, m.Store().AssignTeam(bob, model.Team1))
	require.Equal(t, VerdictWin, onTeam2.Verdict())
	require.NoError(t, m.Store().AssignTeam(bob, model.Team2))

	// A surrender overrides the score.
	require.NoError(t, m.Store().SetSurrender(model.Team1))
	require.Equal(t, VerdictLossBySurrender, onTeam1.Verdict())
	require.Equal(t, VerdictWinBySurrender, onTeam2.Verdict())
}

func TestPerspectiveDrawRegardlessOfSide(t *testing.T) {
	m := newMatch(t)
	addRounds(t, m, repeat(model.Team1, 15)...)
	addRounds(t, m, repeat(model.Team2, 15)...)

	for _, id := range []model.PlayerID{alice, bob} {
		p := m.Perspective(id)
		require.Equal(t, VerdictDraw, p.Verdict())
		p.Close()
	}
}

func TestPerspectiveUnknownObserver(t *testing.T) {
	m := newMatch(t)
	addRounds(t, m, model.Team1)

	p := m.Perspective(model.PlayerID{})
	defer p.Close()
	require.Equal(t, VerdictUndetermined, p.Verdict())
	require.Zero(t, p.Stats().KillCount)
}

func TestPerspectiveSharesFormulas(t *testing.T) {
	m := newMatch(t)
	addRounds(t, m, model.Team1, model.Team1)
	s := m.Store()
	p := m.Perspective(alice)
	defer p.Close()

	assisted := kill(tick(1, 2), carol, bob)
	assisted.Assister = alice
	assisted.AssistedFlash = true
	require.NoError(t, s.AddKill(headshot(kill(tick(1, 1), alice, bob))))
	require.NoError(t, s.AddKill(assisted))
	require.NoError(t, s.AddKill(kill(tick(2, 1), bob, alice)))
	require.NoError(t, s.AddPlayerHurt(model.PlayerHurt{Tick: tick(1, 1), Attacker: alice, Victim: bob, Weapon: common.EqAK47, HealthDamage: 100, HitGroup: model.HitGroupHead}))
	require.NoError(t, s.AddPlayerHurt(model.PlayerHurt{Tick: tick(2, 1), Attacker: bob, Victim: alice, Weapon: common.EqAK47, HealthDamage: 100}))
	require.NoError(t, s.AddBombPlanted(model.BombPlanted{Tick: tick(2, 2), Planter: bob}))

	st := p.Stats()
	require.Equal(t, 1, st.KillCount)
	require.Equal(t, 1, st.DeathCount)
	require.Equal(t, 1, st.AssistCount)
	require.Equal(t, 1, st.FlashAssistCount)
	require.Equal(t, 1, st.HeadshotCount)
	require.Equal(t, 0.5, st.KillPerRound)
	require.Equal(t, 0.5, st.AssistPerRound)
	require.Equal(t, 50.0, st.AverageHealthDamage)
	require.Zero(t, st.BombPlantedCount)
	require.Equal(t, map[model.HitGroup]float64{model.HitGroupHead: 100}, st.HitGroupShare)
	require.Equal(t, alice, st.MostHeadshotPlayer.Key)

	whole := m.Stats()
	require.Equal(t, 3, whole.KillCount)
	require.Equal(t, 100.0, whole.AverageHealthDamage)
	require.Equal(t, bob, whole.MostBombPlantedPlayer.Key)
}
