package storage

import "database/sql"

// DBOverview is a high-level count of what the database holds.
type DBOverview struct {
	TotalMatches  int
	EarliestMatch string
	LatestMatch   string
	UniqueMaps    int
	UniquePlayers int
	TotalRounds   int
}

// MapStats aggregates stored matches on one map.
type MapStats struct {
	MapName    string
	Matches    int
	AvgRounds  float64
	Surrenders int
	Overtimes  int
}

// PlayerActivity is a player's record across stored matches.
type PlayerActivity struct {
	SteamID   string
	Name      string
	Matches   int
	Wins      int
	AvgKD     float64
	AvgADR    float64
	AvgRating float64
}

// GetDBOverview returns match, map, player and round totals.
func (db *DB) GetDBOverview() (DBOverview, error) {
	var (
		ov               DBOverview
		earliest, latest sql.NullString
	)
	err := db.conn.QueryRow(`
		SELECT COUNT(1), MIN(match_date), MAX(match_date),
		       COUNT(DISTINCT map_name), COALESCE(SUM(round_count), 0)
		FROM matches`).Scan(&ov.TotalMatches, &earliest, &latest, &ov.UniqueMaps, &ov.TotalRounds)
	if err != nil {
		return DBOverview{}, err
	}
	ov.EarliestMatch = earliest.String
	ov.LatestMatch = latest.String
	if err := db.conn.QueryRow(`SELECT COUNT(DISTINCT steam_id) FROM match_players`).Scan(&ov.UniquePlayers); err != nil {
		return DBOverview{}, err
	}
	return ov, nil
}

// GetMapStats returns per-map totals, most played first. A match counts as
// having gone to overtime when it lasted more than regulation rounds.
func (db *DB) GetMapStats(regulationRounds int) ([]MapStats, error) {
	rows, err := db.conn.Query(`
		SELECT map_name, COUNT(1), AVG(round_count),
		       SUM(CASE WHEN surrender != '' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN round_count > ? THEN 1 ELSE 0 END)
		FROM matches
		GROUP BY map_name
		ORDER BY COUNT(1) DESC, map_name`, regulationRounds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapStats
	for rows.Next() {
		var m MapStats
		if err := rows.Scan(&m.MapName, &m.Matches, &m.AvgRounds, &m.Surrenders, &m.Overtimes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTopPlayersByMatches returns the limit players with the most stored
// matches.
func (db *DB) GetTopPlayersByMatches(limit int) ([]PlayerActivity, error) {
	rows, err := db.conn.Query(`
		SELECT steam_id, MAX(name), COUNT(1),
		       SUM(CASE WHEN verdict IN ('won', 'won-s') THEN 1 ELSE 0 END),
		       CAST(SUM(kills) AS REAL) / MAX(SUM(deaths), 1),
		       AVG(average_damage), AVG(rating)
		FROM match_players
		GROUP BY steam_id
		ORDER BY COUNT(1) DESC, AVG(rating) DESC, steam_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerActivity
	for rows.Next() {
		var p PlayerActivity
		if err := rows.Scan(&p.SteamID, &p.Name, &p.Matches, &p.Wins, &p.AvgKD, &p.AvgADR, &p.AvgRating); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
