package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/stats"
)

// MatchRecord is the stored header of one match plus its flattened derived
// fields.
type MatchRecord struct {
	Hash       string
	MapName    string
	MatchDate  string
	Tickrate   float64
	Team1Name  string
	Team2Name  string
	ScoreTeam1 int
	ScoreTeam2 int
	Surrender  model.TeamLabel
	Winner     model.TeamLabel
	RoundCount int
	Fields     map[string]any
}

// NewMatchRecord builds the record for a snapshot.
func NewMatchRecord(hash, mapName, matchDate string, tickrate float64, snap stats.Snapshot) MatchRecord {
	rec := MatchRecord{
		Hash:       hash,
		MapName:    mapName,
		MatchDate:  matchDate,
		Tickrate:   tickrate,
		ScoreTeam1: snap.Stats.ScoreTeam1,
		ScoreTeam2: snap.Stats.ScoreTeam2,
		Surrender:  snap.Stats.Surrender,
		Winner:     snap.Stats.Winner,
		RoundCount: snap.Stats.RoundCount,
		Fields:     snap.Fields,
	}
	for _, t := range snap.Teams {
		switch t.Label {
		case model.Team1:
			rec.Team1Name = t.Name
		case model.Team2:
			rec.Team2Name = t.Name
		}
	}
	return rec
}

// MatchExists returns true if a match with the given hash is already stored.
func (db *DB) MatchExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(rec MatchRecord) error {
	return insertMatch(db.conn, rec)
}

// InsertPlayerLines bulk-inserts the scoreboard rows of a match in a transaction.
func (db *DB) InsertPlayerLines(hash string, lines []stats.PlayerLine) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertPlayerLines(tx, hash, lines); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMatch stores a match record and its scoreboard rows in one transaction.
// On error nothing is stored.
func (db *DB) SaveMatch(rec MatchRecord, lines []stats.PlayerLine) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMatch(tx, rec); err != nil {
		return fmt.Errorf("insert match %s: %w", rec.Hash, err)
	}
	if err := insertPlayerLines(tx, rec.Hash, lines); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMatch(ex execer, rec MatchRecord) error {
	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	snapshot, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", rec.Hash, err)
	}
	_, err = ex.Exec(`
		INSERT OR REPLACE INTO matches(hash, map_name, match_date, tickrate, team1_name, team2_name,
			score_team1, score_team2, surrender, winner, round_count, snapshot_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Hash, rec.MapName, rec.MatchDate, rec.Tickrate, rec.Team1Name, rec.Team2Name,
		rec.ScoreTeam1, rec.ScoreTeam2, rec.Surrender.String(), rec.Winner.String(),
		rec.RoundCount, string(snapshot),
	)
	return err
}

func insertPlayerLines(tx *sql.Tx, hash string, lines []stats.PlayerLine) error {
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_players(
			match_hash, steam_id, name, team,
			kills, deaths, assists, headshots, trade_kills, entry_kills, clutch_won, mvps,
			one_k, two_k, three_k, four_k, five_k,
			kill_per_round, average_damage, rating, rws, verdict
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		_, err = stmt.Exec(
			hash, l.ID.String(), l.Name, l.Team.String(),
			l.Kills, l.Deaths, l.Assists, l.Headshots, l.TradeKills, l.EntryKills, l.ClutchWon, l.Mvps,
			l.MultiKills[0], l.MultiKills[1], l.MultiKills[2], l.MultiKills[3], l.MultiKills[4],
			l.KillPerRound, l.AverageDamage, l.Rating, l.Rws, l.Verdict.String(),
		)
		if err != nil {
			return fmt.Errorf("insert match_players for %s: %w", l.ID.String(), err)
		}
	}
	return nil
}

const matchColumns = `hash, map_name, match_date, tickrate, team1_name, team2_name,
	score_team1, score_team2, surrender, winner, round_count, snapshot_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var (
		rec               MatchRecord
		surrender, winner string
		snapshot          string
	)
	if err := row.Scan(&rec.Hash, &rec.MapName, &rec.MatchDate, &rec.Tickrate,
		&rec.Team1Name, &rec.Team2Name, &rec.ScoreTeam1, &rec.ScoreTeam2,
		&surrender, &winner, &rec.RoundCount, &snapshot); err != nil {
		return MatchRecord{}, err
	}
	rec.Surrender = model.ParseTeamLabel(surrender)
	rec.Winner = model.ParseTeamLabel(winner)
	if err := json.Unmarshal([]byte(snapshot), &rec.Fields); err != nil {
		return MatchRecord{}, fmt.Errorf("decode snapshot %s: %w", rec.Hash, err)
	}
	return rec, nil
}

// ListMatches returns all stored matches ordered by match_date desc.
func (db *DB) ListMatches() ([]MatchRecord, error) {
	rows, err := db.conn.Query(`SELECT ` + matchColumns + ` FROM matches ORDER BY match_date DESC, hash`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose hash starts with the given
// prefix. It returns nil when none does.
func (db *DB) GetMatchByPrefix(prefix string) (*MatchRecord, error) {
	row := db.conn.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE hash LIKE ? ORDER BY hash LIMIT 1`, prefix+"%")
	rec, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetPlayerLines returns the scoreboard rows of a match, best rating first.
func (db *DB) GetPlayerLines(hash string) ([]stats.PlayerLine, error) {
	rows, err := db.conn.Query(`
		SELECT steam_id, name, team,
		       kills, deaths, assists, headshots, trade_kills, entry_kills, clutch_won, mvps,
		       one_k, two_k, three_k, four_k, five_k,
		       kill_per_round, average_damage, rating, rws, verdict
		FROM match_players WHERE match_hash = ?
		ORDER BY rating DESC, kills DESC, steam_id`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.PlayerLine
	for rows.Next() {
		var (
			l                  stats.PlayerLine
			sid, team, verdict string
		)
		if err := rows.Scan(
			&sid, &l.Name, &team,
			&l.Kills, &l.Deaths, &l.Assists, &l.Headshots, &l.TradeKills, &l.EntryKills, &l.ClutchWon, &l.Mvps,
			&l.MultiKills[0], &l.MultiKills[1], &l.MultiKills[2], &l.MultiKills[3], &l.MultiKills[4],
			&l.KillPerRound, &l.AverageDamage, &l.Rating, &l.Rws, &verdict,
		); err != nil {
			return nil, err
		}
		l.ID = steamid.New(sid)
		l.Team = model.ParseTeamLabel(team)
		l.Verdict = stats.ParseVerdict(verdict)
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteMatch removes a match and its player rows. It reports whether the
// match existed.
func (db *DB) DeleteMatch(hash string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM match_players WHERE match_hash = ?`, hash); err != nil {
		return false, fmt.Errorf("delete match_players %s: %w", hash, err)
	}
	res, err := tx.Exec(`DELETE FROM matches WHERE hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("delete match %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// QueryRaw runs an arbitrary query and returns the column names and every
// row rendered as strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// PlayerMatch is one player's scoreboard row together with the match it
// belongs to.
type PlayerMatch struct {
	Hash      string
	MapName   string
	MatchDate string
	Line      stats.PlayerLine
}

// GetPlayerHistory returns every stored scoreboard row of a player, oldest
// match first.
func (db *DB) GetPlayerHistory(id model.PlayerID) ([]PlayerMatch, error) {
	rows, err := db.conn.Query(`
		SELECT m.hash, m.map_name, m.match_date,
		       p.name, p.team, p.kills, p.deaths, p.assists, p.headshots,
		       p.kill_per_round, p.average_damage, p.rating, p.rws, p.verdict
		FROM match_players p
		JOIN matches m ON m.hash = p.match_hash
		WHERE p.steam_id = ?
		ORDER BY m.match_date, m.hash`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerMatch
	for rows.Next() {
		var (
			pm            PlayerMatch
			team, verdict string
		)
		if err := rows.Scan(&pm.Hash, &pm.MapName, &pm.MatchDate,
			&pm.Line.Name, &team, &pm.Line.Kills, &pm.Line.Deaths, &pm.Line.Assists, &pm.Line.Headshots,
			&pm.Line.KillPerRound, &pm.Line.AverageDamage, &pm.Line.Rating, &pm.Line.Rws, &verdict); err != nil {
			return nil, err
		}
		pm.Line.ID = id
		pm.Line.Team = model.ParseTeamLabel(team)
		pm.Line.Verdict = stats.ParseVerdict(verdict)
		out = append(out, pm)
	}
	return out, rows.Err()
}

// GetPlayerTeam returns the team a player ended a match on, or TeamNone when
// the player is not on its scoreboard.
func (db *DB) GetPlayerTeam(hash string, id model.PlayerID) (model.TeamLabel, error) {
	var team string
	err := db.conn.QueryRow(`SELECT team FROM match_players WHERE match_hash = ? AND steam_id = ?`,
		hash, id.String()).Scan(&team)
	if err == sql.ErrNoRows {
		return model.TeamNone, nil
	}
	if err != nil {
		return model.TeamNone, err
	}
	return model.ParseTeamLabel(team), nil
}
