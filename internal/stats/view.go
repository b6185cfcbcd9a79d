package stats

import (
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/store"
)

// View is an event-store projection filtered by an actor predicate. Every
// formula is written against a View, so the same code serves whole-match
// statistics (every actor matches) and observer statistics (only the observer
// matches).
//
// The predicate is applied to the acting player of each event kind: killer,
// attacker, planter, defuser, shooter or thrower. Deaths match on the victim
// and assists on the assister. Rounds are never filtered.
type View struct {
	store *store.Store
	match func(model.PlayerID) bool
	all   bool
}

// Unscoped returns a view over the whole match.
func Unscoped(s *store.Store) View {
	return View{store: s, match: func(model.PlayerID) bool { return true }, all: true}
}

// Scoped returns a view restricted to events where observer is the actor. A
// zero observer matches nothing, not world events.
func Scoped(s *store.Store, observer model.PlayerID) View {
	return View{store: s, match: func(id model.PlayerID) bool { return id.Valid() && id == observer }}
}

// Matches reports whether id passes the view's predicate.
func (v View) Matches(id model.PlayerID) bool { return v.match(id) }

func (v View) Store() *store.Store { return v.store }

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (v View) Kills() []model.Kill {
	if v.all {
		return v.store.Kills()
	}
	return filter(v.store.Kills(), func(k model.Kill) bool { return v.match(k.Killer) })
}

func (v View) Deaths() []model.Kill {
	if v.all {
		return v.store.Kills()
	}
	return filter(v.store.Kills(), func(k model.Kill) bool { return v.match(k.Victim) })
}

// Assists returns kills that credit an assister matching the view.
func (v View) Assists() []model.Kill {
	return filter(v.store.Kills(), func(k model.Kill) bool {
		return k.Assister.Valid() && v.match(k.Assister)
	})
}

func (v View) Hurts() []model.PlayerHurt {
	if v.all {
		return v.store.PlayersHurt()
	}
	return filter(v.store.PlayersHurt(), func(h model.PlayerHurt) bool { return v.match(h.Attacker) })
}

func (v View) BombsPlanted() []model.BombPlanted {
	if v.all {
		return v.store.BombsPlanted()
	}
	return filter(v.store.BombsPlanted(), func(b model.BombPlanted) bool { return v.match(b.Planter) })
}

func (v View) BombsDefused() []model.BombDefused {
	if v.all {
		return v.store.BombsDefused()
	}
	return filter(v.store.BombsDefused(), func(b model.BombDefused) bool { return v.match(b.Defuser) })
}

func (v View) BombsExploded() []model.BombExploded {
	if v.all {
		return v.store.BombsExploded()
	}
	return filter(v.store.BombsExploded(), func(b model.BombExploded) bool { return v.match(b.Planter) })
}

func (v View) WeaponFires() []model.WeaponFire {
	if v.all {
		return v.store.WeaponFires()
	}
	return filter(v.store.WeaponFires(), func(w model.WeaponFire) bool { return v.match(w.Shooter) })
}

func (v View) Blinds() []model.PlayerBlinded {
	if v.all {
		return v.store.PlayersBlinded()
	}
	return filter(v.store.PlayersBlinded(), func(b model.PlayerBlinded) bool { return v.match(b.Attacker) })
}

func (v View) DecoysStarted() []model.DecoyStarted {
	if v.all {
		return v.store.DecoysStarted()
	}
	return filter(v.store.DecoysStarted(), func(d model.DecoyStarted) bool { return v.match(d.Thrower) })
}

func (v View) MolotovsFired() []model.MolotovFireStarted {
	if v.all {
		return v.store.MolotovsFired()
	}
	return filter(v.store.MolotovsFired(), func(m model.MolotovFireStarted) bool { return v.match(m.Thrower) })
}

func (v View) Rounds() []model.Round { return v.store.Rounds() }

func (v View) Overtimes() []model.Overtime { return v.store.Overtimes() }

// Players returns the roster players matching the view, in roster order.
func (v View) Players() []model.Player {
	if v.all {
		return v.store.Players()
	}
	return filter(v.store.Players(), func(p model.Player) bool { return v.match(p.ID) })
}
