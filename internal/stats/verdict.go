package stats

import "github.com/pable/go-cs-matchstats/internal/model"

// Verdict is the match outcome from one observer's point of view.
type Verdict int

const (
	VerdictUndetermined    Verdict = -3
	VerdictLossBySurrender Verdict = -2
	VerdictLoss            Verdict = -1
	VerdictDraw            Verdict = 0
	VerdictWin             Verdict = 1
	VerdictWinBySurrender  Verdict = 2
)

// String returns the short win-status label used in listings. Undetermined
// renders as an empty string.
func (v Verdict) String() string {
	switch v {
	case VerdictLossBySurrender:
		return "lost-s"
	case VerdictLoss:
		return "lost"
	case VerdictDraw:
		return "draw"
	case VerdictWin:
		return "won"
	case VerdictWinBySurrender:
		return "won-s"
	default:
		return ""
	}
}

// ParseVerdict is the inverse of Verdict.String.
func ParseVerdict(s string) Verdict {
	for _, v := range []Verdict{VerdictLossBySurrender, VerdictLoss, VerdictDraw, VerdictWin, VerdictWinBySurrender} {
		if v.String() == s {
			return v
		}
	}
	return VerdictUndetermined
}

// ResolveVerdict derives the observer's outcome. observerTeam is the team the
// observer is on at query time; TeamNone means neither.
//
// A surrender decides the outcome on its own and never yields a draw. Without
// one, the observer's team score is compared to the opponent's; a match with
// no score at all is undetermined.
func ResolveVerdict(scoreTeam1, scoreTeam2 int, surrender, observerTeam model.TeamLabel) Verdict {
	if !observerTeam.Valid() {
		return VerdictUndetermined
	}
	if surrender.Valid() {
		if surrender == observerTeam {
			return VerdictLossBySurrender
		}
		return VerdictWinBySurrender
	}
	if scoreTeam1 == 0 && scoreTeam2 == 0 {
		return VerdictUndetermined
	}

	own, other := scoreTeam1, scoreTeam2
	if observerTeam == model.Team2 {
		own, other = other, own
	}
	switch {
	case own > other:
		return VerdictWin
	case own < other:
		return VerdictLoss
	default:
		return VerdictDraw
	}
}
