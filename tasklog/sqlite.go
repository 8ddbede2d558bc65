package tasklog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS task_logs (
	id              TEXT PRIMARY KEY,
	agent_id        TEXT NOT NULL,
	input_query     TEXT NOT NULL,
	thought_process TEXT NOT NULL,
	final_output    TEXT NOT NULL,
	artifact_path   TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_logs_agent ON task_logs (agent_id);
`

// SQLiteStore is a TaskLogStore backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the task log database at dataDir/tasklog.db,
// creating dataDir if needed. It enables WAL mode and applies the schema.
// Caller must call Close when done.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("task log store: data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("task log store: %w", err)
	}
	dbPath := filepath.Join(dataDir, "tasklog.db")
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("task log store: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("task log store: WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("task log store: schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append implements core.TaskLogStore.
func (s *SQLiteStore) Append(log core.TaskLog) error {
	created := log.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO task_logs (id, agent_id, input_query, thought_process, final_output, artifact_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.AgentID, log.InputQuery, log.ThoughtProcess, log.FinalOutput, log.ArtifactPath,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("task log store: insert: %w", err)
	}
	return nil
}

// List returns logs newest first, capped at limit (or all for limit <= 0).
func (s *SQLiteStore) List(limit int) ([]core.TaskLog, error) {
	query := `SELECT id, agent_id, input_query, thought_process, final_output, artifact_path, created_at
		 FROM task_logs ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("task log store: list: %w", err)
	}
	defer rows.Close()

	var logs []core.TaskLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task log store: list: %w", err)
	}
	return logs, nil
}

// Get returns the log with the given id.
func (s *SQLiteStore) Get(id string) (*core.TaskLog, error) {
	row := s.db.QueryRow(
		`SELECT id, agent_id, input_query, thought_process, final_output, artifact_path, created_at
		 FROM task_logs WHERE id = ?`, id)
	log, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task log %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (core.TaskLog, error) {
	var log core.TaskLog
	var created string
	if err := row.Scan(&log.ID, &log.AgentID, &log.InputQuery, &log.ThoughtProcess,
		&log.FinalOutput, &log.ArtifactPath, &created); err != nil {
		return core.TaskLog{}, err
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		log.CreatedAt = t
	}
	return log, nil
}
