package classify

import (
	"github.com/pable/go-cs-matchstats/internal/model"
)

// Tally is a player's running classification totals.
type Tally struct {
	Kills        int
	Deaths       int
	MultiKills   [5]int
	EntryKills   int
	Clutches     int
	ClutchesWon  int
	ClutchesLost int
	Mvps         int
	RWS          float64 // sum over rounds
}

// Tracker accumulates round results into per-player tallies.
type Tracker struct {
	rounds  int
	tallies map[model.PlayerID]*Tally
}

func NewTracker() *Tracker {
	return &Tracker{tallies: make(map[model.PlayerID]*Tally)}
}

func (t *Tracker) tally(id model.PlayerID) *Tally {
	tl, ok := t.tallies[id]
	if !ok {
		tl = &Tally{}
		t.tallies[id] = tl
	}
	return tl
}

// Observe folds one classified round into the totals.
func (t *Tracker) Observe(res Result) {
	t.rounds++

	roundKills := make(map[model.PlayerID]int)
	for _, k := range res.Kills {
		if k.Victim.Valid() {
			t.tally(k.Victim).Deaths++
		}
		if !k.Killer.Valid() || k.IsTeamKill() {
			continue
		}
		t.tally(k.Killer).Kills++
		roundKills[k.Killer]++
	}
	for id, n := range roundKills {
		t.tally(id).MultiKills[min(n, 5)-1]++
	}

	if res.EntryKiller.Valid() {
		t.tally(res.EntryKiller).EntryKills++
	}
	for _, c := range res.Clutches {
		tl := t.tally(c.Player)
		tl.Clutches++
		if c.Won {
			tl.ClutchesWon++
		} else {
			tl.ClutchesLost++
		}
	}
	if res.MVP.Valid() {
		t.tally(res.MVP).Mvps++
	}
	for id, rws := range res.RWS {
		t.tally(id).RWS += rws
	}
}

// Rounds is the number of observed rounds.
func (t *Tracker) Rounds() int { return t.rounds }

// Tally returns a copy of id's totals.
func (t *Tracker) Tally(id model.PlayerID) Tally {
	if tl, ok := t.tallies[id]; ok {
		return *tl
	}
	return Tally{}
}

// Apply writes id's classification tallies, rating and RWS onto p.
func (t *Tracker) Apply(p *model.Player) {
	tl := t.Tally(p.ID)
	p.EntryKillCount = tl.EntryKills
	p.ClutchCount = tl.Clutches
	p.ClutchWonCount = tl.ClutchesWon
	p.ClutchLostCount = tl.ClutchesLost
	p.RoundMvpCount = tl.Mvps
	p.RatingHltv = Rating1(tl.Kills, tl.Deaths, t.rounds, tl.MultiKills)
	p.EseaRws = 0
	if t.rounds > 0 {
		p.EseaRws = roundTo(tl.RWS/float64(t.rounds), 2)
	}
}

// Reset forgets every observed round.
func (t *Tracker) Reset() {
	t.rounds = 0
	t.tallies = make(map[model.PlayerID]*Tally)
}
