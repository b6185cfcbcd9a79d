package parser

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/leighmacdonald/steamid/v4/steamid"
	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-cs-matchstats/internal/engine"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
)

var (
	alice = steamid.New(int64(76561198000000001))
	bob   = steamid.New(int64(76561198000000002))
	carol = steamid.New(int64(76561198000000003))
)

func newTestRecorder(t *testing.T, halfLength int) *recorder {
	t.Helper()
	m := stats.NewMatch(stats.WithHalfLength(halfLength))
	rec := newRecorder(m, 320, slog.Default())
	rec.see(alice, "alice", model.Team1)
	rec.see(bob, "bob", model.Team2)
	return rec
}

func roster() map[model.PlayerID]model.TeamLabel {
	return map[model.PlayerID]model.TeamLabel{alice: model.Team1, bob: model.Team2}
}

// playRound records one round starting at start in which alice kills bob.
func playRound(rec *recorder, start int, winner model.TeamLabel) {
	rec.startRound(start, roster())
	rec.freezeEnd(start + 100)
	rec.weaponFire(model.WeaponFire{Tick: start + 150, Shooter: alice, Weapon: common.EqAK47})
	rec.hurt(model.PlayerHurt{Tick: start + 190, Attacker: alice, Victim: bob, Weapon: common.EqAK47, HealthDamage: 100})
	rec.kill(model.Kill{Tick: start + 200, Killer: alice, Victim: bob, Weapon: common.EqAK47,
		KillerTeam: model.Team1, VictimTeam: model.Team2, IsHeadshot: true})
	rec.roundMVP(alice)
	rec.endRound(start+900, winner, model.SideCT, model.EndReasonEliminated, model.TeamNone)
}

func TestRecorder_RoundIsOneChange(t *testing.T) {
	rec := newTestRecorder(t, 12)

	var updates []engine.Update
	unsubscribe := rec.match.OnChange(func(u engine.Update) { updates = append(updates, u) })
	defer unsubscribe()

	playRound(rec, 0, model.Team1)

	require.Len(t, updates, 1)
	st := rec.match.Stats()
	assert.Equal(t, 1, st.RoundCount)
	assert.Equal(t, 1, st.KillCount)
	assert.Equal(t, 1, st.HeadshotCount)
	assert.Equal(t, 1, st.WeaponFiredCount)
	assert.Equal(t, 100, st.DamageHealthCount)
	assert.Equal(t, 1, st.ScoreTeam1)
	assert.Equal(t, 1, st.EntryKillCount)
	assert.Equal(t, 1, st.MvpCount)

	p, ok := rec.match.Store().Player(alice)
	require.True(t, ok)
	assert.Equal(t, 1, p.EntryKillCount)
	assert.Equal(t, 1, p.RoundMvpCount)
	assert.Equal(t, 100.0, p.EseaRws)
}

func TestRecorder_EventsOutsideRoundsAreDropped(t *testing.T) {
	rec := newTestRecorder(t, 12)

	rec.kill(model.Kill{Tick: 5, Killer: alice, Victim: bob})
	rec.freezeEnd(10)
	rec.endRound(20, model.Team1, model.SideCT, model.EndReasonEliminated, model.TeamNone)

	assert.Empty(t, rec.match.Store().Kills())
	assert.Empty(t, rec.match.Store().Rounds())
}

func TestRecorder_UnknownPlayerIsRejected(t *testing.T) {
	rec := newTestRecorder(t, 12)

	rec.startRound(0, roster())
	rec.kill(model.Kill{Tick: 100, Killer: carol, Victim: bob, KillerTeam: model.Team1, VictimTeam: model.Team2})
	rec.endRound(500, model.Team1, model.SideCT, model.EndReasonEliminated, model.TeamNone)

	assert.Equal(t, 1, rec.rejected)
	assert.Empty(t, rec.match.Store().Kills())
	assert.Len(t, rec.match.Store().Rounds(), 1)
}

func TestRecorder_NameTeam(t *testing.T) {
	var buf bytes.Buffer
	m := stats.NewMatch(stats.WithHalfLength(12))
	rec := newRecorder(m, 320, slog.New(slog.NewTextHandler(&buf, nil)))

	rec.nameTeam(model.Team1, "Vitality")
	rec.nameTeam(model.Team2, "")
	team, err := m.Store().Team(model.Team1)
	require.NoError(t, err)
	assert.Equal(t, "Vitality", team.Name)
	team, err = m.Store().Team(model.Team2)
	require.NoError(t, err)
	assert.Equal(t, model.Team2.String(), team.Name)
	assert.Empty(t, buf.String())

	rec.nameTeam(model.TeamLabel(7), "Spirit")
	assert.Contains(t, buf.String(), "Failed to rename team")
	assert.Contains(t, buf.String(), "error=")
}

func TestRecorder_Surrender(t *testing.T) {
	rec := newTestRecorder(t, 12)

	playRound(rec, 0, model.Team1)
	rec.startRound(1000, roster())
	rec.endRound(1100, model.Team1, model.SideCT, model.EndReasonSurrender, model.Team2)

	st := rec.match.Stats()
	assert.Equal(t, model.Team2, st.Surrender)
	assert.Equal(t, model.Team1, st.Winner)
	assert.Equal(t, stats.VerdictWinBySurrender, rec.match.Perspective(alice).Verdict())
}

func TestRecorder_RestartKeepsRoster(t *testing.T) {
	rec := newTestRecorder(t, 12)
	playRound(rec, 0, model.Team1)

	rec.restart()

	s := rec.match.Store()
	assert.Empty(t, s.Rounds())
	assert.Empty(t, s.Kills())
	assert.Len(t, s.Players(), 2)
	assert.Equal(t, model.Team1, s.TeamOf(alice))
	p, _ := s.Player(alice)
	assert.Zero(t, p.EntryKillCount)
	assert.Zero(t, rec.tracker.Rounds())

	playRound(rec, 5000, model.Team2)
	assert.Equal(t, 1, s.Rounds()[0].Number)
}

func TestRecorder_Overtimes(t *testing.T) {
	rec := newTestRecorder(t, 1)
	winners := []model.TeamLabel{model.Team1, model.Team2, model.Team1, model.Team1, model.Team2}
	for i, w := range winners {
		playRound(rec, i*1000, w)
	}

	rec.finish()

	ots := rec.match.Store().Overtimes()
	require.Len(t, ots, 1)
	assert.Equal(t, model.Overtime{Number: 1, StartRound: 3, EndRound: 5, ScoreTeam1: 2, ScoreTeam2: 1}, ots[0])
	assert.Equal(t, 1, rec.match.Stats().OvertimeCount)
}

func TestRecorder_SeeMovesPlayer(t *testing.T) {
	rec := newTestRecorder(t, 12)

	rec.see(alice, "alice", model.Team2)
	rec.see(alice, "alice", model.TeamNone)

	assert.Equal(t, model.Team2, rec.match.Store().TeamOf(alice))
	rec.see(model.PlayerID{}, "bot", model.Team1)
	assert.Len(t, rec.match.Store().Players(), 2)
}
