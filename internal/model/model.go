package model

import (
	"slices"
	"sort"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
	common "github.com/markus-wa/demoinfocs-golang/v4/pkg/demoinfocs/common"
)

// PlayerID is the stable identity of a player. The zero value means "no player"
// (world damage, unassisted kill).
type PlayerID = steamid.SteamID

// Weapon is the equipment tag carried by kill, damage and fire events.
type Weapon = common.EquipmentType

// Side represents which in-game side a player is on for a round.
type Side int

const (
	SideUnknown    Side = 0
	SideSpectators Side = 1
	SideT          Side = 2
	SideCT         Side = 3
)

func (s Side) String() string {
	switch s {
	case SideT:
		return "T"
	case SideCT:
		return "CT"
	default:
		return "?"
	}
}

// TeamLabel names one of the two teams of a match. A label sticks to the same
// group of players across side switches; Team1 starts on CT by convention.
type TeamLabel int

const (
	TeamNone TeamLabel = 0
	Team1    TeamLabel = 1
	Team2    TeamLabel = 2
)

func (l TeamLabel) String() string {
	switch l {
	case Team1:
		return "Team 1"
	case Team2:
		return "Team 2"
	default:
		return ""
	}
}

// Valid reports whether l is one of the two match teams.
func (l TeamLabel) Valid() bool {
	return l == Team1 || l == Team2
}

// Opponent returns the other team label, or TeamNone for TeamNone.
func (l TeamLabel) Opponent() TeamLabel {
	switch l {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return TeamNone
	}
}

// ParseTeamLabel is the inverse of TeamLabel.String. Unknown input maps to TeamNone.
func ParseTeamLabel(s string) TeamLabel {
	switch s {
	case "Team 1", "1":
		return Team1
	case "Team 2", "2":
		return Team2
	default:
		return TeamNone
	}
}

// HitGroup is the body area hit by a damage event.
type HitGroup int

const (
	HitGroupGeneric HitGroup = iota
	HitGroupHead
	HitGroupChest
	HitGroupStomach
	HitGroupLeftArm
	HitGroupRightArm
	HitGroupLeftLeg
	HitGroupRightLeg
)

func (h HitGroup) String() string {
	switch h {
	case HitGroupHead:
		return "head"
	case HitGroupChest:
		return "chest"
	case HitGroupStomach:
		return "stomach"
	case HitGroupLeftArm:
		return "left_arm"
	case HitGroupRightArm:
		return "right_arm"
	case HitGroupLeftLeg:
		return "left_leg"
	case HitGroupRightLeg:
		return "right_leg"
	default:
		return "other"
	}
}

// RoundEndReason is the cause recorded for a round ending.
type RoundEndReason int

const (
	EndReasonUnknown RoundEndReason = iota
	EndReasonTargetBombed
	EndReasonBombDefused
	EndReasonEliminated
	EndReasonTargetSaved
	EndReasonSurrender
)

func (r RoundEndReason) String() string {
	switch r {
	case EndReasonTargetBombed:
		return "bomb exploded"
	case EndReasonBombDefused:
		return "bomb defused"
	case EndReasonEliminated:
		return "eliminated"
	case EndReasonTargetSaved:
		return "time ran out"
	case EndReasonSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// ---- Events ----

// Event is implemented by every timeline event kind. Events are immutable once
// appended to the store and reference players by identity only.
type Event interface {
	EventTick() int
	// Participants lists the player identities the event references. Zero
	// identities are allowed and mean "no player".
	Participants() []PlayerID
}

type Kill struct {
	Tick                     int
	Killer, Victim, Assister PlayerID
	KillerTeam, VictimTeam   TeamLabel
	Weapon                   Weapon
	IsHeadshot               bool
	AssistedFlash            bool
	IsTradeKill              bool // set by the classifier before the kill is appended
	KillerCrouching          bool
	KillerVelocityZ          float64
}

func (k Kill) EventTick() int            { return k.Tick }
func (k Kill) Participants() []PlayerID { return []PlayerID{k.Killer, k.Victim, k.Assister} }

// IsTeamKill reports whether the killer and victim were on the same team.
func (k Kill) IsTeamKill() bool {
	return k.KillerTeam.Valid() && k.KillerTeam == k.VictimTeam && k.Killer != k.Victim
}

// PlayerHurt is a single damage instance.
type PlayerHurt struct {
	Tick             int
	Attacker, Victim PlayerID
	Weapon           Weapon
	HealthDamage     int
	ArmorDamage      int
	HitGroup         HitGroup
}

func (h PlayerHurt) EventTick() int            { return h.Tick }
func (h PlayerHurt) Participants() []PlayerID { return []PlayerID{h.Attacker, h.Victim} }

type BombPlanted struct {
	Tick    int
	Planter PlayerID
	Site    rune
}

func (b BombPlanted) EventTick() int            { return b.Tick }
func (b BombPlanted) Participants() []PlayerID { return []PlayerID{b.Planter} }

type BombDefused struct {
	Tick    int
	Defuser PlayerID
	Site    rune
}

func (b BombDefused) EventTick() int            { return b.Tick }
func (b BombDefused) Participants() []PlayerID { return []PlayerID{b.Defuser} }

type BombExploded struct {
	Tick    int
	Planter PlayerID
	Site    rune
}

func (b BombExploded) EventTick() int            { return b.Tick }
func (b BombExploded) Participants() []PlayerID { return []PlayerID{b.Planter} }

// WeaponFire is one weapon discharge, grenade throws included.
type WeaponFire struct {
	Tick    int
	Shooter PlayerID
	Weapon  Weapon
}

func (w WeaponFire) EventTick() int            { return w.Tick }
func (w WeaponFire) Participants() []PlayerID { return []PlayerID{w.Shooter} }

type PlayerBlinded struct {
	Tick                     int
	Attacker, Victim         PlayerID
	AttackerTeam, VictimTeam TeamLabel
	Duration                 time.Duration
}

func (b PlayerBlinded) EventTick() int            { return b.Tick }
func (b PlayerBlinded) Participants() []PlayerID { return []PlayerID{b.Attacker, b.Victim} }

type DecoyStarted struct {
	Tick    int
	Thrower PlayerID
}

func (d DecoyStarted) EventTick() int            { return d.Tick }
func (d DecoyStarted) Participants() []PlayerID { return []PlayerID{d.Thrower} }

type MolotovFireStarted struct {
	Tick    int
	Thrower PlayerID
}

func (m MolotovFireStarted) EventTick() int            { return m.Tick }
func (m MolotovFireStarted) Participants() []PlayerID { return []PlayerID{m.Thrower} }

// ---- Rounds ----

// Round is one play segment spanning [StartTick, EndTick]. Events belong to the
// round whose span contains their tick.
type Round struct {
	Number        int
	StartTick     int
	FreezeEndTick int
	EndTick       int
	Winner        TeamLabel // TeamNone while unfinished or for a draw round
	WinnerSide    Side
	EndReason     RoundEndReason
}

// Contains reports whether tick falls within the round span.
func (r Round) Contains(tick int) bool {
	return tick >= r.StartTick && tick <= r.EndTick
}

// RoundIndex returns the index into rounds (ordered, non-overlapping) of the round
// containing tick, or -1 when the tick falls outside every round.
func RoundIndex(rounds []Round, tick int) int {
	i := sort.Search(len(rounds), func(i int) bool { return rounds[i].EndTick >= tick })
	if i < len(rounds) && rounds[i].Contains(tick) {
		return i
	}
	return -1
}

// Overtime is an overtime period: the rounds it spans and each team's score in it.
type Overtime struct {
	Number     int
	StartRound int
	EndRound   int
	ScoreTeam1 int
	ScoreTeam2 int
}

// ---- Players and teams ----

// Player carries identity plus the per-player tallies produced by the classifier.
type Player struct {
	ID   PlayerID
	Name string

	EntryKillCount  int
	ClutchCount     int // clutch situations entered (1vN)
	ClutchWonCount  int
	ClutchLostCount int
	RoundMvpCount   int
	RatingHltv      float64
	EseaRws         float64
}

// ResetStats zeroes every tally while keeping identity.
func (p *Player) ResetStats() {
	*p = Player{ID: p.ID, Name: p.Name}
}

// Team is one of the two persistent teams and its current roster.
type Team struct {
	Label   TeamLabel
	Name    string
	members []PlayerID
}

func NewTeam(label TeamLabel) *Team {
	return &Team{Label: label, Name: label.String()}
}

// Has reports whether id is currently on the roster.
func (t *Team) Has(id PlayerID) bool {
	for _, m := range t.members {
		if m == id {
			return true
		}
	}
	return false
}

// Members returns a copy of the roster in join order.
func (t *Team) Members() []PlayerID {
	out := make([]PlayerID, len(t.members))
	copy(out, t.members)
	return out
}

func (t *Team) Add(id PlayerID) {
	if !t.Has(id) {
		t.members = append(t.members, id)
	}
}

// Remove drops id from the roster without touching the old backing array.
func (t *Team) Remove(id PlayerID) {
	if !t.Has(id) {
		return
	}
	kept := make([]PlayerID, 0, len(t.members)-1)
	for _, m := range t.members {
		if m != id {
			kept = append(kept, m)
		}
	}
	t.members = kept
}

// Clone returns a copy of t that shares no roster storage with it.
func (t *Team) Clone() Team {
	c := *t
	c.members = slices.Clone(t.members)
	return c
}

// Clear empties the roster.
func (t *Team) Clear() {
	t.members = nil
}
