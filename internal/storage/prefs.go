package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/asr-console/internal/types"
	_ "modernc.org/sqlite"
)

// LLMConfigKey is the preference key holding the doubao credentials
const LLMConfigKey = "doubao_config"

// PrefsDB handles the console's local SQLite state: operator preferences
// and a log of exported artifacts
type PrefsDB struct {
	db *sql.DB
}

// ExportRecord is one row of the export log
type ExportRecord struct {
	ID        int64     `json:"id"`
	TaskID    int       `json:"task_id"`
	Format    string    `json:"format"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	Locations []string  `json:"locations"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPrefsDB opens (or creates) the database at dbPath
func NewPrefsDB(dbPath string) (*PrefsDB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// A single connection keeps :memory: databases shared across calls
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		format TEXT NOT NULL,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		locations TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
	CREATE INDEX IF NOT EXISTS idx_exports_task_id ON exports(task_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	// Credentials live in this file
	if dbPath != ":memory:" {
		if err := os.Chmod(dbPath, 0600); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to restrict database permissions: %v", err)
		}
	}

	return &PrefsDB{db: db}, nil
}

// GetPreference returns the raw value stored under key; ok is false when unset
func (p *PrefsDB) GetPreference(ctx context.Context, key string) (value string, ok bool, err error) {
	row := p.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get preference %s: %v", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key, replacing any previous value
func (p *PrefsDB) SetPreference(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := p.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to save preference %s: %v", key, err)
	}
	return nil
}

// LoadLLMConfig returns the saved doubao credentials, or the defaults when
// nothing has been saved. Missing fields fall back to the defaults.
func (p *PrefsDB) LoadLLMConfig(ctx context.Context) (types.LLMConfig, error) {
	cfg := types.DefaultLLMConfig()
	raw, ok, err := p.GetPreference(ctx, LLMConfigKey)
	if err != nil || !ok {
		return cfg, err
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return types.DefaultLLMConfig(), fmt.Errorf("failed to decode %s: %v", LLMConfigKey, err)
	}
	if cfg.Model == "" {
		cfg.Model = types.DefaultDoubaoModel
	}
	if cfg.APIBase == "" {
		cfg.APIBase = types.DefaultDoubaoAPIBase
	}
	return cfg, nil
}

// SaveLLMConfig stores the doubao credentials
func (p *PrefsDB) SaveLLMConfig(ctx context.Context, cfg types.LLMConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %v", LLMConfigKey, err)
	}
	return p.SetPreference(ctx, LLMConfigKey, string(data))
}

// RecordExport appends an artifact to the export log
func (p *PrefsDB) RecordExport(ctx context.Context, a *types.Artifact) error {
	query := `
	INSERT INTO exports (task_id, format, name, size, locations, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := p.db.ExecContext(ctx, query, a.TaskID, a.Format, a.Name, len(a.Data),
		strings.Join(a.Locations, "\n"), createdAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %v", err)
	}
	return nil
}

// ListExports returns the most recent exports first
func (p *PrefsDB) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, task_id, format, name, size, locations, created_at
	FROM exports ORDER BY created_at DESC, id DESC LIMIT ?
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %v", err)
	}
	defer rows.Close()

	records := []ExportRecord{}
	for rows.Next() {
		var (
			r         ExportRecord
			locations sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Format, &r.Name, &r.Size, &locations, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %v", err)
		}
		r.Locations = []string{}
		if locations.String != "" {
			r.Locations = strings.Split(locations.String, "\n")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection
func (p *PrefsDB) Close() error {
	return p.db.Close()
}
