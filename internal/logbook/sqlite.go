package logbook

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"botpanel/internal/errors"
)

// SQLite persists entries in a sqlite database.
type SQLite struct {
	db    *sql.DB
	limit int
}

// NewSQLite opens (and migrates) the database at dbPath. A positive limit
// prunes each stream to its newest limit entries.
func NewSQLite(dbPath string, limit int) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLogs, "failed to open log database "+dbPath, "")
	}

	s := &SQLite{db: db, limit: limit}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.WrapWithCode(err, errors.ErrLogs, "failed to migrate log database "+dbPath, "")
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS logs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			content TEXT NOT NULL,
			traceback TEXT,
			user_id TEXT,
			group_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_type_seq ON logs(type, seq)`,
		// Migration: plugin logs gained a plugin name
		`ALTER TABLE logs ADD COLUMN plugin_name TEXT`,
	}

	for _, m := range migrations {
		_, err := s.db.Exec(m)
		if err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

func (s *SQLite) Append(t Type, e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO logs (id, type, timestamp, content, traceback, user_id, group_id, plugin_name) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(t), e.Timestamp, e.Content, e.Traceback, e.UserID, e.GroupID, e.PluginName,
	)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLogs, "failed to store log entry", "")
	}
	if s.limit > 0 {
		_, err = s.db.Exec(
			`DELETE FROM logs WHERE type = ? AND seq <= (
				SELECT seq FROM logs WHERE type = ? ORDER BY seq DESC LIMIT 1 OFFSET ?
			)`,
			string(t), string(t), s.limit,
		)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrLogs, "failed to prune log entries", "")
		}
	}
	return nil
}

func (s *SQLite) Page(t Type, offset, limit int) ([]Entry, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM logs WHERE type = ?`, string(t)).Scan(&total); err != nil {
		return nil, 0, errors.WrapWithCode(err, errors.ErrLogs, "failed to count log entries", "")
	}
	if limit <= 0 {
		return []Entry{}, total, nil
	}

	rows, err := s.db.Query(
		`SELECT id, timestamp, content, traceback, user_id, group_id, plugin_name
		FROM logs WHERE type = ? ORDER BY seq DESC LIMIT ? OFFSET ?`,
		string(t), limit, offset,
	)
	if err != nil {
		return nil, 0, errors.WrapWithCode(err, errors.ErrLogs, "failed to query log entries", "")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var traceback, userID, groupID, pluginName sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Content, &traceback, &userID, &groupID, &pluginName); err != nil {
			return nil, 0, errors.WrapWithCode(err, errors.ErrLogs, "failed to read log entry", "")
		}
		e.Traceback = traceback.String
		e.UserID = userID.String
		e.GroupID = groupID.String
		e.PluginName = pluginName.String
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
