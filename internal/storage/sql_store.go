package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/migration"
	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/migrations"
)

const nextTemplateIDKey = "next_template_id"

// SQLStore persists snapshots in SQLite or PostgreSQL. Each write replaces
// every table inside one transaction.
type SQLStore struct {
	dialect migration.Dialect
	dsn     string
	db      *sql.DB
}

func NewSQLiteStore(path string) *SQLStore {
	return &SQLStore{dialect: migration.SQLite, dsn: path}
}

// NewPostgresStore expects a connection string without a password.
func NewPostgresStore(connStr string) *SQLStore {
	return &SQLStore{dialect: migration.Postgres, dsn: ensureSearchPath(connStr)}
}

func (s *SQLStore) driver() string {
	if s.dialect == migration.Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (s *SQLStore) open() error {
	db, err := sql.Open(s.driver(), s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if s.dialect == migration.Postgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// One writer at a time for SQLite.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		if s.dialect == migration.Postgres && strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.dsn) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

// Init creates the database if needed and applies pending migrations.
func (s *SQLStore) Init() error {
	if s.dialect == migration.SQLite {
		if err := os.MkdirAll(filepath.Dir(s.dsn), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if s.dialect == migration.Postgres {
		if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an initialized database and checks its schema version.
func (s *SQLStore) Load() error {
	if s.db != nil {
		return nil
	}
	if s.dialect == migration.SQLite {
		if _, err := os.Stat(s.dsn); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
	}
	if err := s.open(); err != nil {
		return err
	}
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLStore) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect, err)
	}
	return migration.NewRunner(s.db, subFS, s.dialect), nil
}

// Ping checks that the loaded database still answers queries.
func (s *SQLStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := s.db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

// SchemaVersions returns the applied schema version and the newest one
// this build knows about.
func (s *SQLStore) SchemaVersions() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("database connection is nil")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, nil
}

// IsSQLite reports whether the store is a local SQLite file, the only
// backend that supports file backups.
func (s *SQLStore) IsSQLite() bool {
	return s.dialect == migration.SQLite
}

func (s *SQLStore) GetConfigPath() string {
	if s.dialect == migration.Postgres {
		return "postgresql"
	}
	return s.dsn
}

func (s *SQLStore) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *SQLStore) ReadSnapshot() (Snapshot, error) {
	if s.db == nil {
		return Snapshot{}, fmt.Errorf("storage not loaded")
	}
	snap := emptySnapshot()

	var next string
	err := s.db.QueryRow(s.q("SELECT value FROM meta WHERE key = ?"), nextTemplateIDKey).Scan(&next)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Snapshot{}, fmt.Errorf("failed to read template counter: %w", err)
	default:
		if snap.NextTemplateID, err = strconv.Atoi(next); err != nil {
			return Snapshot{}, fmt.Errorf("invalid template counter %q: %w", next, err)
		}
	}

	if err := s.readTemplates(&snap); err != nil {
		return Snapshot{}, err
	}
	byID, err := s.readSchedules(&snap)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.readEvents(byID); err != nil {
		return Snapshot{}, err
	}
	if err := s.readBindings(&snap); err != nil {
		return Snapshot{}, err
	}
	if err := s.readShares(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLStore) readTemplates(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT id, type, min_gap_hours, min_event_hours, max_event_hours FROM templates ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Template
		var typ string
		if err := rows.Scan(&t.ID, &typ, &t.MinGapHours, &t.MinEventHours, &t.MaxEventHours); err != nil {
			return fmt.Errorf("failed to scan template: %w", err)
		}
		t.Type = models.ScheduleType(typ)
		snap.Templates = append(snap.Templates, t)
	}
	return rows.Err()
}

func (s *SQLStore) readSchedules(snap *Snapshot) (map[string]*models.Schedule, error) {
	rows, err := s.db.Query("SELECT id, owner, name, date_key, status, type FROM schedules ORDER BY owner, position")
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Schedule)
	for rows.Next() {
		var id, owner, name, dateKey, status, typ string
		if err := rows.Scan(&id, &owner, &name, &dateKey, &status, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		sched := models.NewSchedule(id, owner, name, dateKey, models.Status(status), models.ScheduleType(typ))
		snap.SchedulesByOwner[owner] = append(snap.SchedulesByOwner[owner], sched)
		byID[id] = sched
	}
	return byID, rows.Err()
}

func (s *SQLStore) readEvents(byID map[string]*models.Schedule) error {
	rows, err := s.db.Query("SELECT schedule_id, name, start_at, end_at FROM events ORDER BY schedule_id, name, position")
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scheduleID, name, startAt, endAt string
		if err := rows.Scan(&scheduleID, &name, &startAt, &endAt); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		sched, ok := byID[scheduleID]
		if !ok {
			logger.Warn("Skipping event of unknown schedule", "schedule", scheduleID, "event", name)
			continue
		}
		start, err := time.Parse(time.RFC3339, startAt)
		if err != nil {
			return fmt.Errorf("invalid start time for %s/%s: %w", scheduleID, name, err)
		}
		end, err := time.Parse(time.RFC3339, endAt)
		if err != nil {
			return fmt.Errorf("invalid end time for %s/%s: %w", scheduleID, name, err)
		}
		sched.Events[name] = append(sched.Events[name], models.Interval{Start: start.UTC(), End: end.UTC()})
	}
	return rows.Err()
}

func (s *SQLStore) readBindings(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT schedule_id, template_id FROM bindings")
	if err != nil {
		return fmt.Errorf("failed to query bindings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scheduleID string
		var templateID int
		if err := rows.Scan(&scheduleID, &templateID); err != nil {
			return fmt.Errorf("failed to scan binding: %w", err)
		}
		snap.Bindings[scheduleID] = templateID
	}
	return rows.Err()
}

func (s *SQLStore) readShares(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT friend_id, schedule_id FROM friend_shares ORDER BY friend_id, position")
	if err != nil {
		return fmt.Errorf("failed to query friend shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var friendID, scheduleID string
		if err := rows.Scan(&friendID, &scheduleID); err != nil {
			return fmt.Errorf("failed to scan friend share: %w", err)
		}
		snap.FriendVisible[friendID] = append(snap.FriendVisible[friendID], scheduleID)
	}
	return rows.Err()
}

// WriteSnapshot replaces the stored state with snap.
func (s *SQLStore) WriteSnapshot(snap Snapshot) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"events", "friend_shares", "bindings", "schedules", "templates", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(s.q("INSERT INTO meta (key, value) VALUES (?, ?)"), nextTemplateIDKey, strconv.Itoa(snap.NextTemplateID)); err != nil {
		return fmt.Errorf("failed to save template counter: %w", err)
	}
	for _, t := range snap.Templates {
		if _, err := tx.Exec(s.q("INSERT INTO templates (id, type, min_gap_hours, min_event_hours, max_event_hours) VALUES (?, ?, ?, ?, ?)"),
			t.ID, string(t.Type), t.MinGapHours, t.MinEventHours, t.MaxEventHours); err != nil {
			return fmt.Errorf("failed to save template %d: %w", t.ID, err)
		}
	}

	for owner, list := range snap.SchedulesByOwner {
		for pos, sched := range list {
			if _, err := tx.Exec(s.q("INSERT INTO schedules (id, owner, position, name, date_key, status, type) VALUES (?, ?, ?, ?, ?, ?, ?)"),
				sched.ID, owner, pos, sched.Name, sched.DateKey, string(sched.Status), string(sched.Type)); err != nil {
				return fmt.Errorf("failed to save schedule %s: %w", sched.ID, err)
			}
			for name, intervals := range sched.Events {
				for i, iv := range intervals {
					if _, err := tx.Exec(s.q("INSERT INTO events (schedule_id, name, position, start_at, end_at) VALUES (?, ?, ?, ?, ?)"),
						sched.ID, name, i, iv.Start.UTC().Format(time.RFC3339), iv.End.UTC().Format(time.RFC3339)); err != nil {
						return fmt.Errorf("failed to save event %s of schedule %s: %w", name, sched.ID, err)
					}
				}
			}
		}
	}

	for scheduleID, templateID := range snap.Bindings {
		if _, err := tx.Exec(s.q("INSERT INTO bindings (schedule_id, template_id) VALUES (?, ?)"), scheduleID, templateID); err != nil {
			return fmt.Errorf("failed to save binding for %s: %w", scheduleID, err)
		}
	}

	for friendID, ids := range snap.FriendVisible {
		for pos, scheduleID := range ids {
			if _, err := tx.Exec(s.q("INSERT INTO friend_shares (friend_id, position, schedule_id) VALUES (?, ?, ?)"), friendID, pos, scheduleID); err != nil {
				return fmt.Errorf("failed to save share for %s: %w", friendID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	logger.Debug("Snapshot written", "store", s.GetConfigPath(), "templates", len(snap.Templates), "owners", len(snap.SchedulesByOwner))
	return nil
}
