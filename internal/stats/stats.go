package stats

import (
	"github.com/pable/go-cs-matchstats/internal/engine"
	"github.com/pable/go-cs-matchstats/internal/model"
)

// Stats is a typed, consistent copy of the derived fields of one registry.
type Stats struct {
	RoundCount    int
	OvertimeCount int

	KillCount        int
	DeathCount       int
	AssistCount      int
	FlashAssistCount int
	HeadshotCount    int
	TradeKillCount   int
	KnifeKillCount   int
	JumpKillCount    int
	CrouchKillCount  int
	TeamKillCount    int

	EntryKillCount  int
	ClutchCount     int
	ClutchWonCount  int
	ClutchLostCount int
	MvpCount        int

	// MultiKills[n-1] is the number of rounds with n kills by one player; the
	// last slot holds 5 or more.
	MultiKills [5]int

	BombPlantedCount  int
	BombDefusedCount  int
	BombExplodedCount int

	WeaponFiredCount        int
	HitCount                int
	DamageHealthCount       int
	DamageArmorCount        int
	DamageByHitGroup        map[model.HitGroup]int
	HitGroupShare           map[model.HitGroup]float64
	FlashbangThrownCount    int
	SmokeThrownCount        int
	HeThrownCount           int
	DecoyThrownCount        int
	MolotovThrownCount      int
	IncendiaryThrownCount   int
	PlayerBlindedCount      int
	DecoyStartedCount       int
	MolotovFireStartedCount int

	KillPerRound        float64
	DeathPerRound       float64
	AssistPerRound      float64
	AverageHealthDamage float64
	AverageDamage       float64
	AverageHltvRating   float64
	AverageEseaRws      float64

	MostHeadshotPlayer    PlayerRanking
	MostBombPlantedPlayer PlayerRanking
	MostEntryKillPlayer   PlayerRanking
	MostDamageWeapon      WeaponRanking
	MostKillingWeapon     WeaponRanking

	ScoreTeam1           int
	ScoreTeam2           int
	ScoreFirstHalfTeam1  int
	ScoreFirstHalfTeam2  int
	ScoreSecondHalfTeam1 int
	ScoreSecondHalfTeam2 int
	Surrender            model.TeamLabel
	Winner               model.TeamLabel
}

func readStats(e *engine.Engine) Stats {
	return Stats{
		RoundCount:    engine.Get[int](e, FieldRoundCount),
		OvertimeCount: engine.Get[int](e, FieldOvertimeCount),

		KillCount:        engine.Get[int](e, FieldKillCount),
		DeathCount:       engine.Get[int](e, FieldDeathCount),
		AssistCount:      engine.Get[int](e, FieldAssistCount),
		FlashAssistCount: engine.Get[int](e, FieldFlashAssistCount),
		HeadshotCount:    engine.Get[int](e, FieldHeadshotCount),
		TradeKillCount:   engine.Get[int](e, FieldTradeKillCount),
		KnifeKillCount:   engine.Get[int](e, FieldKnifeKillCount),
		JumpKillCount:    engine.Get[int](e, FieldJumpKillCount),
		CrouchKillCount:  engine.Get[int](e, FieldCrouchKillCount),
		TeamKillCount:    engine.Get[int](e, FieldTeamKillCount),

		EntryKillCount:  engine.Get[int](e, FieldEntryKillCount),
		ClutchCount:     engine.Get[int](e, FieldClutchCount),
		ClutchWonCount:  engine.Get[int](e, FieldClutchWonCount),
		ClutchLostCount: engine.Get[int](e, FieldClutchLostCount),
		MvpCount:        engine.Get[int](e, FieldMvpCount),

		MultiKills: engine.Get[[5]int](e, FieldMultiKills),

		BombPlantedCount:  engine.Get[int](e, FieldBombPlantedCount),
		BombDefusedCount:  engine.Get[int](e, FieldBombDefusedCount),
		BombExplodedCount: engine.Get[int](e, FieldBombExplodedCount),

		WeaponFiredCount:        engine.Get[int](e, FieldWeaponFiredCount),
		HitCount:                engine.Get[int](e, FieldHitCount),
		DamageHealthCount:       engine.Get[int](e, FieldDamageHealthCount),
		DamageArmorCount:        engine.Get[int](e, FieldDamageArmorCount),
		DamageByHitGroup:        engine.Get[map[model.HitGroup]int](e, FieldDamageByHitGroup),
		HitGroupShare:           engine.Get[map[model.HitGroup]float64](e, FieldHitGroupShare),
		FlashbangThrownCount:    engine.Get[int](e, FieldFlashbangThrownCount),
		SmokeThrownCount:        engine.Get[int](e, FieldSmokeThrownCount),
		HeThrownCount:           engine.Get[int](e, FieldHeThrownCount),
		DecoyThrownCount:        engine.Get[int](e, FieldDecoyThrownCount),
		MolotovThrownCount:      engine.Get[int](e, FieldMolotovThrownCount),
		IncendiaryThrownCount:   engine.Get[int](e, FieldIncendiaryThrownCount),
		PlayerBlindedCount:      engine.Get[int](e, FieldPlayerBlindedCount),
		DecoyStartedCount:       engine.Get[int](e, FieldDecoyStartedCount),
		MolotovFireStartedCount: engine.Get[int](e, FieldMolotovFireStarted),

		KillPerRound:        engine.Get[float64](e, FieldKillPerRound),
		DeathPerRound:       engine.Get[float64](e, FieldDeathPerRound),
		AssistPerRound:      engine.Get[float64](e, FieldAssistPerRound),
		AverageHealthDamage: engine.Get[float64](e, FieldAverageHealthDamage),
		AverageDamage:       engine.Get[float64](e, FieldAverageDamage),
		AverageHltvRating:   engine.Get[float64](e, FieldAverageHltvRating),
		AverageEseaRws:      engine.Get[float64](e, FieldAverageEseaRws),

		MostHeadshotPlayer:    engine.Get[PlayerRanking](e, FieldMostHeadshotPlayer),
		MostBombPlantedPlayer: engine.Get[PlayerRanking](e, FieldMostBombPlantedPlayer),
		MostEntryKillPlayer:   engine.Get[PlayerRanking](e, FieldMostEntryKillPlayer),
		MostDamageWeapon:      engine.Get[WeaponRanking](e, FieldMostDamageWeapon),
		MostKillingWeapon:     engine.Get[WeaponRanking](e, FieldMostKillingWeapon),

		ScoreTeam1:           engine.Get[int](e, FieldScoreTeam1),
		ScoreTeam2:           engine.Get[int](e, FieldScoreTeam2),
		ScoreFirstHalfTeam1:  engine.Get[int](e, FieldScoreFirstHalfTeam1),
		ScoreFirstHalfTeam2:  engine.Get[int](e, FieldScoreFirstHalfTeam2),
		ScoreSecondHalfTeam1: engine.Get[int](e, FieldScoreSecondHalfTeam1),
		ScoreSecondHalfTeam2: engine.Get[int](e, FieldScoreSecondHalfTeam2),
		Surrender:            engine.Get[model.TeamLabel](e, FieldSurrender),
		Winner:               engine.Get[model.TeamLabel](e, FieldWinner),
	}
}
