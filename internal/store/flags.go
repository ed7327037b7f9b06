package store

import (
	"fmt"
	"strings"

	"gtrack/internal/model"
)

// ErrFlagExists reports an attempt to create a flag that is already defined.
type ErrFlagExists struct{ Name string }

func (e *ErrFlagExists) Error() string {
	return fmt.Sprintf("flag %q already exists", e.Name)
}

// AddFlag creates a flag and associates it, default false, with every game
// existing at this moment.
func (s *Store) AddFlag(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("flag name is mandatory")
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM flag WHERE name = ?", name).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, &ErrFlagExists{Name: name}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("INSERT INTO flag (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`INSERT INTO has_flag (game_id, flag_id, value)
		SELECT id, ?, 0 FROM game`, id); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// Flags returns all flags in ascending id order. CSV columns and verbose
// report columns both rely on this ordering.
func (s *Store) Flags() ([]model.Flag, error) {
	rows, err := s.db.Query("SELECT id, name FROM flag ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var flags []model.Flag
	for rows.Next() {
		var f model.Flag
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// DeleteFlag removes a flag and every association row referring to it.
func (s *Store) DeleteFlag(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM has_flag WHERE flag_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM flag WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// SetFlagValues overwrites the flag assignments of one game. Values are
// keyed by flag id; flags absent from the map are left untouched.
func (s *Store) SetFlagValues(gameID int64, values map[int64]bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for flagID, v := range values {
		val := 0
		if v {
			val = 1
		}
		if _, err := tx.Exec(`INSERT INTO has_flag (game_id, flag_id, value) VALUES (?, ?, ?)
			ON CONFLICT(game_id, flag_id) DO UPDATE SET value = excluded.value`,
			gameID, flagID, val); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FlagValues returns every association row ordered by (game, flag), the
// order the verbose report pivot expects.
func (s *Store) FlagValues() ([]model.FlagValue, error) {
	rows, err := s.db.Query("SELECT game_id, flag_id, value FROM has_flag ORDER BY game_id ASC, flag_id ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.FlagValue
	for rows.Next() {
		var fv model.FlagValue
		var v int
		if err := rows.Scan(&fv.GameID, &fv.FlagID, &v); err != nil {
			return nil, err
		}
		fv.Value = v != 0
		out = append(out, fv)
	}
	return out, rows.Err()
}
