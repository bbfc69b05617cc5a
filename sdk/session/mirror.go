package session

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"

	// Register the CGO-free sqlite driver
	_ "modernc.org/sqlite"
)

const (
	mirrorKeyActive  = "sessionActive"
	mirrorKeyUpdated = "sessionUpdated"

	defaultMirrorWindow = 24 * time.Hour
)

// Mirror is a small persistent key-value store recording whether a session
// was believed active, plus a timestamp. It is ADVISORY ONLY: the remote
// identity gateway is always the source of truth. The mirror exists to
// suppress redundant gateway round trips across process restarts and to
// detect the "we expected a session but the gateway disagrees" condition,
// which is surfaced as likely expiry. Readers must never grant access based
// on the mirror alone.
type Mirror struct {
	db     *sql.DB
	window time.Duration
}

// OpenMirror opens (creating if necessary) a session mirror at the specified
// path. Records older than the specified window are treated as absent; a
// non-positive window selects the default of 24 hours. The same window
// applies on both write and read.
func OpenMirror(path string, window time.Duration) (*Mirror, error) {
	if window <= 0 {
		window = defaultMirrorWindow
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening session mirror at %s", path)
	}
	if _, err = db.Exec(
		`CREATE TABLE IF NOT EXISTS session_mirror (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	); err != nil {
		return nil, errors.Wrap(err, "error initializing session mirror schema")
	}
	return &Mirror{
		db:     db,
		window: window,
	}, nil
}

// MarkActive records that a session was confirmed live just now.
func (m *Mirror) MarkActive() error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	for key, value := range map[string]string{
		mirrorKeyActive:  "true",
		mirrorKeyUpdated: now,
	} {
		if _, err := m.db.Exec(
			`INSERT INTO session_mirror (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key,
			value,
		); err != nil {
			return errors.Wrap(err, "error writing to session mirror")
		}
	}
	return nil
}

// Active returns true if the mirror recorded a live session within its
// window. A true result says only that a gateway check is worth making and a
// disagreement with the gateway is noteworthy-- nothing more.
func (m *Mirror) Active() (bool, error) {
	rows, err := m.db.Query(`SELECT key, value FROM session_mirror`)
	if err != nil {
		return false, errors.Wrap(err, "error reading session mirror")
	}
	defer rows.Close()
	var active bool
	var updated time.Time
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return false, errors.Wrap(err, "error scanning session mirror row")
		}
		switch key {
		case mirrorKeyActive:
			active = value == "true"
		case mirrorKeyUpdated:
			millis, parseErr := strconv.ParseInt(value, 10, 64)
			if parseErr != nil {
				// A mangled timestamp invalidates the whole record.
				return false, nil
			}
			updated = time.UnixMilli(millis)
		}
	}
	if err = rows.Err(); err != nil {
		return false, errors.Wrap(err, "error reading session mirror")
	}
	if !active || updated.IsZero() {
		return false, nil
	}
	if time.Since(updated) > m.window {
		return false, nil
	}
	return true, nil
}

// Clear removes all mirror records.
func (m *Mirror) Clear() error {
	if _, err := m.db.Exec(`DELETE FROM session_mirror`); err != nil {
		return errors.Wrap(err, "error clearing session mirror")
	}
	return nil
}

// Close closes the mirror's underlying store.
func (m *Mirror) Close() error {
	return m.db.Close()
}
