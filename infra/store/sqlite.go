package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/relaycoord/core/results"
)

// SQLiteStore persists studies to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS studies (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL,
        name TEXT,
        fault_type TEXT,
        ts INTEGER,
        failures INTEGER,
        overduty INTEGER,
        record TEXT
    );
    CREATE INDEX IF NOT EXISTS studies_id ON studies(id);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the study to the database.
func (s *SQLiteStore) Append(ctx context.Context, st results.Study) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal study %s: %w", st.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO studies (id, name, fault_type, ts, failures, overduty, record) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, string(st.FaultType), st.CreatedAt.UnixNano(),
		st.Summary.Failures, st.Summary.Overduty, string(b))
	return err
}

// List returns studies matching q in insertion order.
func (s *SQLiteStore) List(ctx context.Context, q results.Query) ([]results.Study, error) {
	var args []any
	query := `SELECT record FROM studies WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Name != "" {
		query += ` AND name = ?`
		args = append(args, q.Name)
	}
	if q.FaultType != "" {
		query += ` AND fault_type = ?`
		args = append(args, string(q.FaultType))
	}
	if q.FailuresOnly {
		query += ` AND (failures > 0 OR overduty > 0)`
	}
	query += ` ORDER BY seq`
	return s.scan(ctx, query, args...)
}

// Get returns every record stored under the run id.
func (s *SQLiteStore) Get(ctx context.Context, id string) ([]results.Study, error) {
	res, err := s.scan(ctx, `SELECT record FROM studies WHERE id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", results.ErrNotFound, id)
	}
	return res, nil
}

func (s *SQLiteStore) scan(ctx context.Context, query string, args ...any) ([]results.Study, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []results.Study
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var st results.Study
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return nil, fmt.Errorf("unmarshal study: %w", err)
		}
		res = append(res, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return errors.New("store already closed")
	}
	err := s.db.Close()
	s.db = nil
	return err
}
