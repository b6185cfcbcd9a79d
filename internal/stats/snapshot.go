package stats

import (
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/rank"
)

// TeamLine is one team's identity, roster and score.
type TeamLine struct {
	Label   model.TeamLabel
	Name    string
	Score   int
	Members []model.PlayerID
}

// PlayerLine is the per-player scoreboard row, computed through a perspective.
type PlayerLine struct {
	ID   model.PlayerID
	Name string
	Team model.TeamLabel

	Kills      int
	Deaths     int
	Assists    int
	Headshots  int
	TradeKills int
	EntryKills int
	ClutchWon  int
	Mvps       int
	MultiKills [5]int

	KillPerRound  float64
	AverageDamage float64
	Rating        float64
	Rws           float64

	Verdict Verdict
}

// Snapshot is everything a persistence layer needs from a match. Fields holds
// every whole-match derived field keyed by name, with entity references
// rendered as plain values so it can be encoded as-is.
type Snapshot struct {
	Stats   Stats
	Fields  map[string]any
	Teams   []TeamLine
	Players []PlayerLine
}

// Snapshot captures the current state of the match.
func (m *Match) Snapshot() Snapshot {
	st := m.Stats()
	return Snapshot{
		Stats:   st,
		Fields:  flatten(m.engine.Values()),
		Teams:   m.teamLines(st),
		Players: m.PlayerLines(),
	}
}

func (m *Match) teamLines(st Stats) []TeamLine {
	out := make([]TeamLine, 0, 2)
	for _, label := range []model.TeamLabel{model.Team1, model.Team2} {
		t, err := m.store.Team(label)
		if err != nil {
			continue
		}
		s := st.ScoreTeam1
		if label == model.Team2 {
			s = st.ScoreTeam2
		}
		out = append(out, TeamLine{Label: label, Name: t.Name, Score: s, Members: t.Members()})
	}
	return out
}

// PlayerLines computes a scoreboard row for every roster player, in roster
// order.
func (m *Match) PlayerLines() []PlayerLine {
	players := m.store.Players()
	out := make([]PlayerLine, 0, len(players))
	for _, p := range players {
		persp := m.Perspective(p.ID)
		st := persp.Stats()
		out = append(out, PlayerLine{
			ID:            p.ID,
			Name:          p.Name,
			Team:          persp.Team(),
			Kills:         st.KillCount,
			Deaths:        st.DeathCount,
			Assists:       st.AssistCount,
			Headshots:     st.HeadshotCount,
			TradeKills:    st.TradeKillCount,
			EntryKills:    st.EntryKillCount,
			ClutchWon:     st.ClutchWonCount,
			Mvps:          st.MvpCount,
			MultiKills:    st.MultiKills,
			KillPerRound:  st.KillPerRound,
			AverageDamage: st.AverageDamage,
			Rating:        st.AverageHltvRating,
			Rws:           st.AverageEseaRws,
			Verdict:       persp.Verdict(),
		})
		persp.Close()
	}
	return out
}

func flatten(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch x := v.(type) {
		case rank.Result[model.PlayerID, int]:
			if x.OK {
				out[k] = x.Key.String()
			} else {
				out[k] = nil
			}
		case rank.Result[model.Weapon, int]:
			if x.OK {
				out[k] = x.Key.String()
			} else {
				out[k] = nil
			}
		case model.TeamLabel:
			out[k] = x.String()
		case Verdict:
			out[k] = x.String()
		case map[model.HitGroup]int:
			m := make(map[string]int, len(x))
			for g, d := range x {
				m[g.String()] = d
			}
			out[k] = m
		case map[model.HitGroup]float64:
			m := make(map[string]float64, len(x))
			for g, d := range x {
				m[g.String()] = d
			}
			out[k] = m
		default:
			out[k] = v
		}
	}
	return out
}
