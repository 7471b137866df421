// Package migration provides a versioned database migration runner.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260101000001_create_restaurants_table", &CreateRestaurantsTable{})
//	}
//
// and are driven from the CLI:
//
//	qrmenu migrate             // run all pending in one batch
//	qrmenu migrate:rollback    // roll back the last batch
//	qrmenu migrate:status
package migration

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is the GORM model stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "qrmenu_migrations" }

// ------------------- Registry -------------------

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration to the global registry. name should be
// timestamp-prefixed so lexical order is chronological.
func Register(name string, m Migration) {
	for _, reg := range registry {
		if reg.name == name {
			panic(fmt.Sprintf("migration: %q registered twice", name))
		}
	}
	registry = append(registry, registeredMigration{name: name, m: m})
	sort.Slice(registry, func(i, j int) bool { return registry[i].name < registry[j].name })
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New creates a Runner. Progress lines go to out (io.Discard to silence).
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) ran() (map[string]migrationRecord, error) {
	var recs []migrationRecord
	if err := r.db.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make(map[string]migrationRecord, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns registered migrations that have not run yet, oldest first.
func (r *Runner) Pending() ([]string, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, reg := range registry {
		if _, ok := ran[reg.name]; !ok {
			pending = append(pending, reg.name)
		}
	}
	return pending, nil
}

// Run executes all pending migrations as one batch and returns how many ran.
func (r *Runner) Run() (int, error) {
	pending, err := r.Pending()
	if err != nil {
		return 0, fmt.Errorf("migration: fetch pending: %w", err)
	}

	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return 0, nil
	}

	batch, err := r.lastBatch()
	if err != nil {
		return 0, err
	}
	batch++

	byName := lookup()
	for _, name := range pending {
		logger.Info("migration: running", "name", name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", name)

		if err := byName[name].Up(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", name, err)
		}

		if err := r.db.Create(&migrationRecord{Name: name, Batch: batch}).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", name, err)
		}

		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return len(pending), nil
}

// Rollback reverses every migration of the most recent batch, newest first,
// and returns how many were rolled back.
func (r *Runner) Rollback() (int, error) {
	if err := r.EnsureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	batch, err := r.lastBatch()
	if err != nil {
		return 0, err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", batch).Order("name desc").Find(&records).Error; err != nil {
		return 0, err
	}

	byName := lookup()
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return 0, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		logger.Info("migration: rolling back", "name", rec.Name)

		if err := m.Down(r.db); err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&migrationRecord{}, rec.ID).Error; err != nil {
			return 0, err
		}

		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}

	return len(records), nil
}

// StatusRow is one line of the status report. Batch is 0 for pending.
type StatusRow struct {
	Name  string
	Ran   bool
	Batch int
}

// Status reports every registered migration and writes the table to out.
func (r *Runner) Status() ([]StatusRow, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, err
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}

	rows := make([]StatusRow, 0, len(registry))
	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("─", 80))
	for _, reg := range registry {
		row := StatusRow{Name: reg.name}
		if rec, ok := ran[reg.name]; ok {
			row.Ran, row.Batch = true, rec.Batch
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", reg.name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", reg.name, "Pending")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Runner) lastBatch() (int, error) {
	var maxBatch struct{ Max int }
	err := r.db.Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&maxBatch).Error
	return maxBatch.Max, err
}

func lookup() map[string]Migration {
	out := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		out[reg.name] = reg.m
	}
	return out
}
