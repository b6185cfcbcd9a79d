// Package store holds the mutable event timeline of one match: a typed
// append-only container per event kind, the ordered rounds, and the player and
// team rosters. Every mutation is published on the mutation bus.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pable/go-cs-matchstats/internal/bus"
	"github.com/pable/go-cs-matchstats/internal/model"
)

// Container kinds published on the bus.
const (
	Kills          bus.Kind = "kills"
	PlayersHurt    bus.Kind = "players_hurt"
	BombsPlanted   bus.Kind = "bombs_planted"
	BombsDefused   bus.Kind = "bombs_defused"
	BombsExploded  bus.Kind = "bombs_exploded"
	WeaponFires    bus.Kind = "weapon_fires"
	PlayersBlinded bus.Kind = "players_blinded"
	DecoysStarted  bus.Kind = "decoys_started"
	MolotovsFired  bus.Kind = "molotovs_fire_started"
	Rounds         bus.Kind = "rounds"
	Overtimes      bus.Kind = "overtimes"
	Players        bus.Kind = "players"
	Teams          bus.Kind = "teams"
	Outcome        bus.Kind = "outcome"
)

var (
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrInvalidPlayer     = errors.New("invalid player identity")
	ErrDuplicatePlayer   = errors.New("player already exists")
	ErrPlayerOnOtherTeam = errors.New("player already on the other team")
	ErrUnknownTeam       = errors.New("unknown team")
	ErrInvalidRound      = errors.New("invalid round")
	ErrOverlappingRound  = errors.New("round overlaps previous round")
)

// Store is the event store of a single match. It is not safe for concurrent
// mutation: all writes must come from one goroutine.
type Store struct {
	bus *bus.Bus
	log *slog.Logger

	kills          *Collection[model.Kill]
	playersHurt    *Collection[model.PlayerHurt]
	bombsPlanted   *Collection[model.BombPlanted]
	bombsDefused   *Collection[model.BombDefused]
	bombsExploded  *Collection[model.BombExploded]
	weaponFires    *Collection[model.WeaponFire]
	playersBlinded *Collection[model.PlayerBlinded]
	decoysStarted  *Collection[model.DecoyStarted]
	molotovsFired  *Collection[model.MolotovFireStarted]
	rounds         *Collection[model.Round]
	overtimes      *Collection[model.Overtime]

	players     []model.Player
	playerIndex map[model.PlayerID]int
	teams       map[model.TeamLabel]*model.Team
	surrender   model.TeamLabel
}

// New creates an empty store publishing on b.
func New(b *bus.Bus, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		bus:            b,
		log:            logger,
		kills:          newCollection[model.Kill](Kills, b),
		playersHurt:    newCollection[model.PlayerHurt](PlayersHurt, b),
		bombsPlanted:   newCollection[model.BombPlanted](BombsPlanted, b),
		bombsDefused:   newCollection[model.BombDefused](BombsDefused, b),
		bombsExploded:  newCollection[model.BombExploded](BombsExploded, b),
		weaponFires:    newCollection[model.WeaponFire](WeaponFires, b),
		playersBlinded: newCollection[model.PlayerBlinded](PlayersBlinded, b),
		decoysStarted:  newCollection[model.DecoyStarted](DecoysStarted, b),
		molotovsFired:  newCollection[model.MolotovFireStarted](MolotovsFired, b),
		rounds:         newCollection[model.Round](Rounds, b),
		overtimes:      newCollection[model.Overtime](Overtimes, b),
		playerIndex:    make(map[model.PlayerID]int),
		teams: map[model.TeamLabel]*model.Team{
			model.Team1: model.NewTeam(model.Team1),
			model.Team2: model.NewTeam(model.Team2),
		},
	}
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *bus.Bus { return s.bus }

// ---- Read access ----

func (s *Store) Kills() []model.Kill                       { return s.kills.All() }
func (s *Store) PlayersHurt() []model.PlayerHurt           { return s.playersHurt.All() }
func (s *Store) BombsPlanted() []model.BombPlanted         { return s.bombsPlanted.All() }
func (s *Store) BombsDefused() []model.BombDefused         { return s.bombsDefused.All() }
func (s *Store) BombsExploded() []model.BombExploded       { return s.bombsExploded.All() }
func (s *Store) WeaponFires() []model.WeaponFire           { return s.weaponFires.All() }
func (s *Store) PlayersBlinded() []model.PlayerBlinded     { return s.playersBlinded.All() }
func (s *Store) DecoysStarted() []model.DecoyStarted       { return s.decoysStarted.All() }
func (s *Store) MolotovsFired() []model.MolotovFireStarted { return s.molotovsFired.All() }
func (s *Store) Rounds() []model.Round                     { return s.rounds.All() }
func (s *Store) Overtimes() []model.Overtime               { return s.overtimes.All() }

// Players returns a copy of the roster in insertion order.
func (s *Store) Players() []model.Player {
	out := make([]model.Player, len(s.players))
	copy(out, s.players)
	return out
}

// Player looks a player up by identity.
func (s *Store) Player(id model.PlayerID) (model.Player, bool) {
	i, ok := s.playerIndex[id]
	if !ok {
		return model.Player{}, false
	}
	return s.players[i], true
}

// Team returns a copy of the team with the given label.
func (s *Store) Team(label model.TeamLabel) (model.Team, error) {
	t, ok := s.teams[label]
	if !ok {
		return model.Team{}, fmt.Errorf("%w: %d", ErrUnknownTeam, label)
	}
	return t.Clone(), nil
}

// TeamOf returns the label of the team id is currently on, or TeamNone.
func (s *Store) TeamOf(id model.PlayerID) model.TeamLabel {
	for _, label := range []model.TeamLabel{model.Team1, model.Team2} {
		if s.teams[label].Has(id) {
			return label
		}
	}
	return model.TeamNone
}

// Surrender returns the team that surrendered, or TeamNone.
func (s *Store) Surrender() model.TeamLabel { return s.surrender }

// ---- Roster mutations ----

// AddPlayer adds p to the roster and, unless team is TeamNone, to that team.
func (s *Store) AddPlayer(p model.Player, team model.TeamLabel) error {
	if !p.ID.Valid() {
		return fmt.Errorf("add player %q: %w", p.Name, ErrInvalidPlayer)
	}
	if _, ok := s.playerIndex[p.ID]; ok {
		return fmt.Errorf("add player %s: %w", p.ID.String(), ErrDuplicatePlayer)
	}
	if team != model.TeamNone && !team.Valid() {
		return fmt.Errorf("add player %s: %w: %d", p.ID.String(), ErrUnknownTeam, team)
	}

	s.bus.Batch(func() {
		s.playerIndex[p.ID] = len(s.players)
		s.players = append(s.players, p)
		s.bus.Publish(bus.Notification{Kind: Players, Op: bus.OpAdd, Size: len(s.players)})
		if team.Valid() {
			s.teams[team].Add(p.ID)
			s.publishTeams(bus.OpUpdate)
		}
	})
	return nil
}

// AssignTeam moves a known player to team, removing them from the other one.
// TeamNone leaves the player without a team.
func (s *Store) AssignTeam(id model.PlayerID, team model.TeamLabel) error {
	if _, ok := s.playerIndex[id]; !ok {
		return fmt.Errorf("assign team: %w: %s", ErrUnknownPlayer, id.String())
	}
	if team != model.TeamNone && !team.Valid() {
		return fmt.Errorf("assign team: %w: %d", ErrUnknownTeam, team)
	}
	if s.TeamOf(id) == team {
		return nil
	}
	for _, t := range s.teams {
		t.Remove(id)
	}
	if team.Valid() {
		s.teams[team].Add(id)
	}
	s.publishTeams(bus.OpUpdate)
	return nil
}

// JoinTeam adds a known player to team only if they are not already on the
// other one.
func (s *Store) JoinTeam(id model.PlayerID, team model.TeamLabel) error {
	current := s.TeamOf(id)
	if current.Valid() && current != team {
		return fmt.Errorf("join %s: %w: %s", team, ErrPlayerOnOtherTeam, id.String())
	}
	return s.AssignTeam(id, team)
}

// SetTeamName renames a team.
func (s *Store) SetTeamName(team model.TeamLabel, name string) error {
	t, ok := s.teams[team]
	if !ok {
		return fmt.Errorf("rename team: %w: %d", ErrUnknownTeam, team)
	}
	t.Name = name
	s.publishTeams(bus.OpUpdate)
	return nil
}

// UpdatePlayer applies fn to the stored player. Identity changes made by fn
// are ignored.
func (s *Store) UpdatePlayer(id model.PlayerID, fn func(p *model.Player)) error {
	i, ok := s.playerIndex[id]
	if !ok {
		return fmt.Errorf("update player: %w: %s", ErrUnknownPlayer, id.String())
	}
	p := s.players[i]
	fn(&p)
	p.ID = id
	s.players[i] = p
	s.bus.Publish(bus.Notification{Kind: Players, Op: bus.OpUpdate, Size: len(s.players)})
	return nil
}

// SetSurrender records that team conceded the match. TeamNone clears it.
func (s *Store) SetSurrender(team model.TeamLabel) error {
	if team != model.TeamNone && !team.Valid() {
		return fmt.Errorf("surrender: %w: %d", ErrUnknownTeam, team)
	}
	s.surrender = team
	size := 0
	if team.Valid() {
		size = 1
	}
	s.bus.Publish(bus.Notification{Kind: Outcome, Op: bus.OpUpdate, Size: size})
	return nil
}

func (s *Store) publishTeams(op bus.Op) {
	size := len(s.teams[model.Team1].Members()) + len(s.teams[model.Team2].Members())
	s.bus.Publish(bus.Notification{Kind: Teams, Op: op, Size: size})
}

// ---- Timeline mutations ----

// AddRound appends the next round. Rounds must be numbered increasingly and
// must not overlap the previous span.
func (s *Store) AddRound(r model.Round) error {
	if r.Number <= 0 || r.EndTick < r.StartTick {
		return fmt.Errorf("add round %d: %w", r.Number, ErrInvalidRound)
	}
	if r.Winner != model.TeamNone && !r.Winner.Valid() {
		return fmt.Errorf("add round %d: %w: %d", r.Number, ErrUnknownTeam, r.Winner)
	}
	if last, ok := s.rounds.Last(); ok {
		if r.Number <= last.Number || r.StartTick <= last.EndTick {
			return fmt.Errorf("add round %d after round %d: %w", r.Number, last.Number, ErrOverlappingRound)
		}
	}
	s.rounds.add(r)
	return nil
}

func (s *Store) AddOvertime(o model.Overtime) error {
	if o.Number <= 0 || o.EndRound < o.StartRound {
		return fmt.Errorf("add overtime %d: %w", o.Number, ErrInvalidRound)
	}
	s.overtimes.add(o)
	return nil
}

func (s *Store) AddKill(k model.Kill) error { return appendEvent(s, s.kills, k) }

func (s *Store) AddPlayerHurt(h model.PlayerHurt) error { return appendEvent(s, s.playersHurt, h) }

func (s *Store) AddBombPlanted(b model.BombPlanted) error { return appendEvent(s, s.bombsPlanted, b) }

func (s *Store) AddBombDefused(b model.BombDefused) error { return appendEvent(s, s.bombsDefused, b) }

func (s *Store) AddBombExploded(b model.BombExploded) error {
	return appendEvent(s, s.bombsExploded, b)
}

func (s *Store) AddWeaponFire(w model.WeaponFire) error { return appendEvent(s, s.weaponFires, w) }

func (s *Store) AddPlayerBlinded(b model.PlayerBlinded) error {
	return appendEvent(s, s.playersBlinded, b)
}

func (s *Store) AddDecoyStarted(d model.DecoyStarted) error {
	return appendEvent(s, s.decoysStarted, d)
}

func (s *Store) AddMolotovFireStarted(m model.MolotovFireStarted) error {
	return appendEvent(s, s.molotovsFired, m)
}

// appendEvent rejects events referencing identities missing from the roster;
// the event is not stored in that case.
func appendEvent[T model.Event](s *Store, c *Collection[T], ev T) error {
	for _, id := range ev.Participants() {
		if !id.Valid() {
			continue
		}
		if _, ok := s.playerIndex[id]; !ok {
			s.log.Warn("Rejected event", slog.String("kind", string(c.Kind())),
				slog.Int("tick", ev.EventTick()), slog.String("player", id.String()))
			return fmt.Errorf("append %s at tick %d: %w: %s", c.Kind(), ev.EventTick(), ErrUnknownPlayer, id.String())
		}
	}
	c.add(ev)
	return nil
}

// ---- Reset ----

// Reset clears every event, round and overtime container and the surrender
// record as a single change. With keepIdentity the roster and teams survive and
// each player's tallies are reset; otherwise players and teams are cleared too.
func (s *Store) Reset(keepIdentity bool) {
	s.bus.Batch(func() {
		s.kills.clear()
		s.playersHurt.clear()
		s.bombsPlanted.clear()
		s.bombsDefused.clear()
		s.bombsExploded.clear()
		s.weaponFires.clear()
		s.playersBlinded.clear()
		s.decoysStarted.clear()
		s.molotovsFired.clear()
		s.rounds.clear()
		s.overtimes.clear()
		s.surrender = model.TeamNone
		s.bus.Publish(bus.Notification{Kind: Outcome, Op: bus.OpReset})

		if keepIdentity {
			for i := range s.players {
				s.players[i].ResetStats()
			}
			s.bus.Publish(bus.Notification{Kind: Players, Op: bus.OpUpdate, Size: len(s.players)})
			return
		}

		s.players = nil
		s.playerIndex = make(map[model.PlayerID]int)
		for _, t := range s.teams {
			t.Clear()
			t.Name = t.Label.String()
		}
		s.bus.Publish(bus.Notification{Kind: Players, Op: bus.OpReset})
		s.publishTeams(bus.OpReset)
	})
}
