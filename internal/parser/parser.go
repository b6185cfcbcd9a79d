// Package parser decodes a CS demo and feeds its rounds and events into a
// stats.Match.
package parser

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
	demoinfocs "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs"
	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
	"github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/events"

	"github.com/pable/go-cs-matchstats/internal/classify"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
)

// Options tunes a decode run.
type Options struct {
	HalfLength         int
	TradeWindowSeconds float64
	Logger             *slog.Logger
}

// Demo is a decoded demo: file metadata and the populated match.
type Demo struct {
	Hash      string
	MapName   string
	MatchDate string
	Tickrate  float64
	Match     *stats.Match
	// Rejected counts events the store refused, usually because they
	// referenced a bot.
	Rejected int
}

// ParseDemo parses the demo at path into a new match.
func ParseDemo(path string, opts Options) (*Demo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.TradeWindowSeconds
	if window <= 0 {
		window = classify.DefaultTradeWindowSeconds
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}
	defer f.Close()

	// Hash file for idempotency key.
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash demo: %w", err)
	}
	demoHash := fmt.Sprintf("%x", h.Sum(nil))

	// Seek back to start for the parser.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek demo: %w", err)
	}

	p := demoinfocs.NewParser(f)
	defer p.Close()

	matchOpts := []stats.Option{stats.WithLogger(logger)}
	if opts.HalfLength > 0 {
		matchOpts = append(matchOpts, stats.WithHalfLength(opts.HalfLength))
	}
	m := stats.NewMatch(matchOpts...)

	// Tick rate is only known once the header is read; the window is
	// resolved on the first round start.
	rec := newRecorder(m, 0, logger.With(slog.String("demo", demoHash[:12])))
	labels := make(map[int]model.TeamLabel)

	tick := func() int { return p.GameState().IngameTick() }

	labelOf := func(ts *common.TeamState) model.TeamLabel {
		if ts == nil {
			return model.TeamNone
		}
		return labels[ts.ID()]
	}
	playerID := func(pl *common.Player) model.PlayerID {
		if pl == nil || pl.SteamID64 == 0 {
			return model.PlayerID{}
		}
		return steamid.New(int64(pl.SteamID64))
	}
	see := func(pl *common.Player) model.PlayerID {
		id := playerID(pl)
		if id.Valid() {
			rec.see(id, pl.Name, labelOf(pl.TeamState))
		}
		return id
	}

	p.RegisterEventHandler(func(e events.MatchStart) {
		rec.restart()
	})

	// RoundStart: fix team labels on the first live round, snapshot the roster.
	p.RegisterEventHandler(func(e events.RoundStart) {
		gs := p.GameState()
		if gs.IsWarmupPeriod() {
			return
		}
		if len(labels) == 0 {
			labels[gs.TeamCounterTerrorists().ID()] = model.Team1
			labels[gs.TeamTerrorists().ID()] = model.Team2
		}
		if rec.tradeWindowTicks == 0 {
			rec.tradeWindowTicks = int(window * tickRate(p))
		}

		roster := make(map[model.PlayerID]model.TeamLabel)
		for _, pl := range gs.Participants().Playing() {
			if id := see(pl); id.Valid() {
				roster[id] = labelOf(pl.TeamState)
			}
		}
		rec.startRound(tick(), roster)
	})

	p.RegisterEventHandler(func(e events.RoundFreezetimeEnd) {
		rec.freezeEnd(tick())
	})

	p.RegisterEventHandler(func(e events.RoundEnd) {
		winner := labelOf(e.WinnerState)
		var surrender model.TeamLabel
		switch e.Reason {
		case events.RoundEndReasonTerroristsSurrender:
			surrender = labelOf(p.GameState().TeamTerrorists())
		case events.RoundEndReasonCTSurrender:
			surrender = labelOf(p.GameState().TeamCounterTerrorists())
		}
		for _, side := range []*common.TeamState{p.GameState().TeamCounterTerrorists(), p.GameState().TeamTerrorists()} {
			if l := labelOf(side); l.Valid() {
				rec.nameTeam(l, side.ClanName())
			}
		}
		rec.endRound(tick(), winner, sideFromCommon(e.Winner), reasonFromEvent(e.Reason), surrender)
	})

	p.RegisterEventHandler(func(e events.Kill) {
		if e.Victim == nil {
			return
		}
		k := model.Kill{
			Tick:          tick(),
			Killer:        see(e.Killer),
			Victim:        see(e.Victim),
			Assister:      see(e.Assister),
			VictimTeam:    labelOf(e.Victim.TeamState),
			IsHeadshot:    e.IsHeadshot,
			AssistedFlash: e.AssistedFlash,
		}
		if e.Weapon != nil {
			k.Weapon = e.Weapon.Type
		}
		if e.Killer != nil {
			k.KillerTeam = labelOf(e.Killer.TeamState)
			k.KillerCrouching = e.Killer.IsDucking()
			k.KillerVelocityZ = e.Killer.Velocity().Z
		}
		rec.kill(k)
	})

	p.RegisterEventHandler(func(e events.PlayerHurt) {
		if e.Player == nil {
			return
		}
		hurt := model.PlayerHurt{
			Tick:         tick(),
			Attacker:     see(e.Attacker),
			Victim:       see(e.Player),
			HealthDamage: e.HealthDamage,
			ArmorDamage:  e.ArmorDamage,
			HitGroup:     hitGroupFromEvent(e.HitGroup),
		}
		if e.Weapon != nil {
			hurt.Weapon = e.Weapon.Type
		}
		rec.hurt(hurt)
	})

	p.RegisterEventHandler(func(e events.BombPlanted) {
		rec.bombPlanted(model.BombPlanted{Tick: tick(), Planter: see(e.Player), Site: rune(e.Site)})
	})
	p.RegisterEventHandler(func(e events.BombDefused) {
		rec.bombDefused(model.BombDefused{Tick: tick(), Defuser: see(e.Player), Site: rune(e.Site)})
	})
	p.RegisterEventHandler(func(e events.BombExplode) {
		rec.bombExploded(model.BombExploded{Tick: tick(), Site: rune(e.Site)})
	})

	p.RegisterEventHandler(func(e events.WeaponFire) {
		if e.Weapon == nil {
			return
		}
		rec.weaponFire(model.WeaponFire{Tick: tick(), Shooter: see(e.Shooter), Weapon: e.Weapon.Type})
	})

	p.RegisterEventHandler(func(e events.PlayerFlashed) {
		if e.Attacker == nil || e.Player == nil {
			return
		}
		dur := e.FlashDuration()
		if dur <= 0 {
			return
		}
		rec.blinded(model.PlayerBlinded{
			Tick:         tick(),
			Attacker:     see(e.Attacker),
			Victim:       see(e.Player),
			AttackerTeam: labelOf(e.Attacker.TeamState),
			VictimTeam:   labelOf(e.Player.TeamState),
			Duration:     dur,
		})
	})

	p.RegisterEventHandler(func(e events.DecoyStart) {
		rec.decoy(model.DecoyStarted{Tick: tick(), Thrower: see(e.Thrower)})
	})
	p.RegisterEventHandler(func(e events.InfernoStart) {
		if e.Inferno == nil {
			return
		}
		rec.molotov(model.MolotovFireStarted{Tick: tick(), Thrower: see(e.Inferno.Thrower())})
	})

	p.RegisterEventHandler(func(e events.RoundMVPAnnouncement) {
		rec.roundMVP(see(e.Player))
	})

	if err := p.ParseToEnd(); err != nil {
		return nil, fmt.Errorf("parse demo: %w", err)
	}
	rec.finish()

	logger.Info("Demo parsed",
		slog.String("map", p.Header().MapName),
		slog.Int("rounds", len(m.Store().Rounds())),
		slog.Int("players", len(m.Store().Players())),
		slog.Int("rejected_events", rec.rejected))

	return &Demo{
		Hash:      demoHash,
		MapName:   p.Header().MapName,
		MatchDate: time.Now().Format("2006-01-02"), // demos rarely embed wall-clock time
		Tickrate:  tickRate(p),
		Match:     m,
		Rejected:  rec.rejected,
	}, nil
}

// tickRate falls back to 64 when the header does not carry it.
func tickRate(p demoinfocs.Parser) float64 {
	if r := p.TickRate(); r > 0 {
		return r
	}
	return 64
}

func sideFromCommon(t common.Team) model.Side {
	switch t {
	case common.TeamTerrorists:
		return model.SideT
	case common.TeamCounterTerrorists:
		return model.SideCT
	case common.TeamSpectators:
		return model.SideSpectators
	default:
		return model.SideUnknown
	}
}

func reasonFromEvent(r events.RoundEndReason) model.RoundEndReason {
	switch r {
	case events.RoundEndReasonTargetBombed:
		return model.EndReasonTargetBombed
	case events.RoundEndReasonBombDefused:
		return model.EndReasonBombDefused
	case events.RoundEndReasonCTWin, events.RoundEndReasonTerroristsWin:
		return model.EndReasonEliminated
	case events.RoundEndReasonTargetSaved:
		return model.EndReasonTargetSaved
	case events.RoundEndReasonTerroristsSurrender, events.RoundEndReasonCTSurrender:
		return model.EndReasonSurrender
	default:
		return model.EndReasonUnknown
	}
}

func hitGroupFromEvent(h events.HitGroup) model.HitGroup {
	switch h {
	case events.HitGroupHead:
		return model.HitGroupHead
	case events.HitGroupChest:
		return model.HitGroupChest
	case events.HitGroupStomach:
		return model.HitGroupStomach
	case events.HitGroupLeftArm:
		return model.HitGroupLeftArm
	case events.HitGroupRightArm:
		return model.HitGroupRightArm
	case events.HitGroupLeftLeg:
		return model.HitGroupLeftLeg
	case events.HitGroupRightLeg:
		return model.HitGroupRightLeg
	default:
		return model.HitGroupGeneric
	}
}
