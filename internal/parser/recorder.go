package parser

import (
	"log/slog"

	"github.com/pable/go-cs-matchstats/internal/classify"
	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
)

// overtimeLength is the number of rounds in one MR3 overtime period.
const overtimeLength = 6

// recorder buffers one round of decoded events, classifies the round when it
// ends and flushes it into the match as a single change.
type recorder struct {
	match            *stats.Match
	log              *slog.Logger
	tracker          *classify.Tracker
	tradeWindowTicks int

	roundNumber int
	inRound     bool
	round       model.Round
	teams       map[model.PlayerID]model.TeamLabel
	mvp         model.PlayerID
	planter     model.PlayerID
	defuser     model.PlayerID

	kills    []model.Kill
	hurts    []model.PlayerHurt
	planted  []model.BombPlanted
	defused  []model.BombDefused
	exploded []model.BombExploded
	fires    []model.WeaponFire
	blinds   []model.PlayerBlinded
	decoys   []model.DecoyStarted
	molotovs []model.MolotovFireStarted

	rejected int
}

func newRecorder(m *stats.Match, tradeWindowTicks int, logger *slog.Logger) *recorder {
	return &recorder{
		match:            m,
		log:              logger,
		tracker:          classify.NewTracker(),
		tradeWindowTicks: tradeWindowTicks,
	}
}

// see registers a player, moving them to team when they are on one.
func (r *recorder) see(id model.PlayerID, name string, team model.TeamLabel) {
	if !id.Valid() {
		return
	}
	s := r.match.Store()
	if _, ok := s.Player(id); !ok {
		if err := s.AddPlayer(model.Player{ID: id, Name: name}, team); err != nil {
			r.log.Warn("Failed to add player", slog.String("player", id.String()), log.ErrAttr(err))
		}
		return
	}
	if team.Valid() && s.TeamOf(id) != team {
		if err := s.AssignTeam(id, team); err != nil {
			r.log.Warn("Failed to assign team", slog.String("player", id.String()), log.ErrAttr(err))
		}
	}
}

// nameTeam records a clan name announced by the demo for team.
func (r *recorder) nameTeam(team model.TeamLabel, name string) {
	if name == "" {
		return
	}
	s := r.match.Store()
	if t, err := s.Team(team); err == nil && t.Name == name {
		return
	}
	if err := s.SetTeamName(team, name); err != nil {
		r.log.Warn("Failed to rename team", slog.String("team", team.String()), log.ErrAttr(err))
	}
}

func (r *recorder) startRound(tick int, roster map[model.PlayerID]model.TeamLabel) {
	r.roundNumber++
	r.inRound = true
	r.round = model.Round{Number: r.roundNumber, StartTick: tick, FreezeEndTick: tick}
	r.teams = roster
	r.mvp, r.planter, r.defuser = model.PlayerID{}, model.PlayerID{}, model.PlayerID{}
	r.kills, r.hurts = nil, nil
	r.planted, r.defused, r.exploded = nil, nil, nil
	r.fires, r.blinds, r.decoys, r.molotovs = nil, nil, nil, nil
}

func (r *recorder) freezeEnd(tick int) {
	if r.inRound {
		r.round.FreezeEndTick = tick
	}
}

func (r *recorder) kill(k model.Kill) {
	if r.inRound {
		r.kills = append(r.kills, k)
	}
}

func (r *recorder) hurt(h model.PlayerHurt) {
	if r.inRound {
		r.hurts = append(r.hurts, h)
	}
}

func (r *recorder) bombPlanted(b model.BombPlanted) {
	if r.inRound {
		r.planted = append(r.planted, b)
		r.planter = b.Planter
	}
}

func (r *recorder) bombDefused(b model.BombDefused) {
	if r.inRound {
		r.defused = append(r.defused, b)
		r.defuser = b.Defuser
	}
}

func (r *recorder) bombExploded(b model.BombExploded) {
	if r.inRound {
		b.Planter = r.planter
		r.exploded = append(r.exploded, b)
	}
}

func (r *recorder) weaponFire(w model.WeaponFire) {
	if r.inRound {
		r.fires = append(r.fires, w)
	}
}

func (r *recorder) blinded(b model.PlayerBlinded) {
	if r.inRound {
		r.blinds = append(r.blinds, b)
	}
}

func (r *recorder) decoy(d model.DecoyStarted) {
	if r.inRound {
		r.decoys = append(r.decoys, d)
	}
}

func (r *recorder) molotov(m model.MolotovFireStarted) {
	if r.inRound {
		r.molotovs = append(r.molotovs, m)
	}
}

func (r *recorder) roundMVP(id model.PlayerID) {
	if r.inRound {
		r.mvp = id
	}
}

// endRound classifies the buffered round and appends it, its events and the
// updated player tallies as one change. surrender is the team that conceded,
// if the round ended that way.
func (r *recorder) endRound(tick int, winner model.TeamLabel, winnerSide model.Side, reason model.RoundEndReason, surrender model.TeamLabel) {
	if !r.inRound {
		return
	}
	r.inRound = false
	r.round.EndTick = tick
	r.round.Winner = winner
	r.round.WinnerSide = winnerSide
	r.round.EndReason = reason

	res := classify.Classify(classify.Round{
		Round:   r.round,
		Kills:   r.kills,
		Hurts:   r.hurts,
		Teams:   r.teams,
		Planter: r.planter,
		Defuser: r.defuser,
		MVP:     r.mvp,
	}, r.tradeWindowTicks)

	s := r.match.Store()
	s.Bus().Batch(func() {
		if err := s.AddRound(r.round); err != nil {
			r.log.Warn("Dropped round", slog.Int("round", r.round.Number), log.ErrAttr(err))
			r.roundNumber--
			return
		}
		r.tracker.Observe(res)

		for _, k := range res.Kills {
			r.check(s.AddKill(k))
		}
		for _, h := range r.hurts {
			r.check(s.AddPlayerHurt(h))
		}
		for _, b := range r.planted {
			r.check(s.AddBombPlanted(b))
		}
		for _, b := range r.defused {
			r.check(s.AddBombDefused(b))
		}
		for _, b := range r.exploded {
			r.check(s.AddBombExploded(b))
		}
		for _, w := range r.fires {
			r.check(s.AddWeaponFire(w))
		}
		for _, b := range r.blinds {
			r.check(s.AddPlayerBlinded(b))
		}
		for _, d := range r.decoys {
			r.check(s.AddDecoyStarted(d))
		}
		for _, m := range r.molotovs {
			r.check(s.AddMolotovFireStarted(m))
		}
		for _, p := range s.Players() {
			r.check(s.UpdatePlayer(p.ID, r.tracker.Apply))
		}
		if surrender.Valid() {
			r.check(s.SetSurrender(surrender))
		}
	})

	r.log.Debug("Round recorded",
		slog.Int("round", r.round.Number),
		slog.String("winner", winner.String()),
		slog.Int("kills", len(res.Kills)))
}

func (r *recorder) check(err error) {
	if err != nil {
		r.rejected++
	}
}

// restart drops everything recorded so far but keeps the roster, for a match
// restarted after warmup or a technical pause.
func (r *recorder) restart() {
	if len(r.match.Store().Rounds()) == 0 && !r.inRound {
		return
	}
	r.log.Debug("Match restarted", slog.Int("rounds_dropped", len(r.match.Store().Rounds())))
	r.match.Reset(stats.ResetStatsOnly)
	r.tracker.Reset()
	r.roundNumber = 0
	r.inRound = false
}

// finish closes the overtime periods once every round is known.
func (r *recorder) finish() {
	s := r.match.Store()
	rounds := s.Rounds()
	regulation := 2 * r.match.HalfLength()
	for i, start := 1, regulation+1; ; i, start = i+1, start+overtimeLength {
		end := start + overtimeLength - 1
		ot := model.Overtime{Number: i, StartRound: start, EndRound: start}
		played := false
		for _, rd := range rounds {
			if rd.Number < start || rd.Number > end {
				continue
			}
			played = true
			ot.EndRound = rd.Number
			switch rd.Winner {
			case model.Team1:
				ot.ScoreTeam1++
			case model.Team2:
				ot.ScoreTeam2++
			}
		}
		if !played {
			return
		}
		r.check(s.AddOvertime(ot))
	}
}
