package store

import (
	"database/sql"
	"fmt"
	"strings"

	"gtrack/internal/model"
)

// UpsertGame inserts a game or updates its display name when the executable
// is already known. The executable name is the natural key and is stored
// trimmed and lower-cased. A newly inserted game gets a default-false
// association row for every existing flag, keeping the every-game-has-every-
// flag invariant intact for games added after a flag was created.
func (s *Store) UpsertGame(displayName, executableName string) (id int64, created bool, err error) {
	exe := strings.ToLower(strings.TrimSpace(executableName))
	name := strings.TrimSpace(displayName)
	if name == "" || exe == "" {
		return 0, false, fmt.Errorf("display name and executable name are mandatory")
	}

	res, err := s.db.Exec("UPDATE game SET display_name = ? WHERE executable_name = ?", name, exe)
	if err != nil {
		return 0, false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		err = s.db.QueryRow("SELECT id FROM game WHERE executable_name = ?", exe).Scan(&id)
		return id, false, err
	}

	res, err = s.db.Exec("INSERT INTO game (display_name, executable_name) VALUES (?, ?)", name, exe)
	if err != nil {
		return 0, false, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}

	if err := s.backfillFlags(id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// backfillFlags inserts a default-false has_flag row for every flag that
// exists when a game is created.
func (s *Store) backfillFlags(gameID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO has_flag (game_id, flag_id, value)
		SELECT ?, id, 0 FROM flag`, gameID)
	return err
}

// Catalog returns the executable-name lookup table used by the normalizer.
// Keys are already lower-cased by the upsert path.
func (s *Store) Catalog() (map[string]int64, error) {
	rows, err := s.db.Query("SELECT id, executable_name FROM game")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	catalog := make(map[string]int64)
	for rows.Next() {
		var id int64
		var exe string
		if err := rows.Scan(&id, &exe); err != nil {
			return nil, err
		}
		catalog[exe] = id
	}
	return catalog, rows.Err()
}

// Games returns the full catalog ordered by id.
func (s *Store) Games() ([]model.Game, error) {
	rows, err := s.db.Query("SELECT id, display_name, executable_name FROM game ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.DisplayName, &g.ExecutableName); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GameCount returns the number of catalog entries.
func (s *Store) GameCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM game").Scan(&n)
	return n, err
}

// DeleteGame removes a game together with its activities and flag rows.
func (s *Store) DeleteGame(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM activity WHERE game_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM has_flag WHERE game_id = ?", id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM game WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
