// Package ledger persists matrix run history. Each run row records one
// RunConfig execution; validation rows record the per-assertion outcomes that
// the harness observed while the run was active.
package ledger

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/utils"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// Run statuses
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Run represents one matrix configuration execution
type Run struct {
	bun.BaseModel `bun:"table:runs"`

	ID           string     `bun:"id,pk"`
	CatalogName  string     `bun:"catalog_name,notnull"`
	CatalogImpl  string     `bun:"catalog_impl,notnull"`
	Format       string     `bun:"format,notnull"`
	Vectorized   bool       `bun:"vectorized,notnull"`
	Distribution string     `bun:"distribution,notnull"`
	Status       string     `bun:"status,notnull"`
	Failure      string     `bun:"failure"`
	StartedAt    time.Time  `bun:"started_at,notnull"`
	FinishedAt   *time.Time `bun:"finished_at"`
}

// Validation represents one snapshot assertion outcome within a run
type Validation struct {
	bun.BaseModel `bun:"table:validations"`

	ID        int64     `bun:"id,pk,autoincrement"`
	RunID     string    `bun:"run_id,notnull"`
	TableName string    `bun:"table_name,notnull"`
	Operation string    `bun:"operation,notnull"`
	Property  string    `bun:"property"`
	Expected  string    `bun:"expected"`
	Actual    string    `bun:"actual"`
	Passed    bool      `bun:"passed,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Ledger stores runs and validations in a sqlite database through bun
type Ledger struct {
	db     *bun.DB
	logger zerolog.Logger
}

// Open opens or creates the ledger database at path and migrates its schema
func Open(path string, logger zerolog.Logger) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.New(ErrDirectoryCreateFailed, "failed to create ledger directory", err).
			AddContext("path", path)
	}

	sqldb, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.New(ErrOpenFailed, "failed to open ledger database", err).
			AddContext("path", path)
	}

	l, err := NewWithDB(sqldb, logger)
	if err != nil {
		sqldb.Close()
		return nil, err
	}

	l.logger.Debug().Str("path", path).Msg("ledger opened")
	return l, nil
}

// NewWithDB builds a ledger over an already-open database handle and
// migrates the schema
func NewWithDB(sqldb *sql.DB, logger zerolog.Logger) (*Ledger, error) {
	l := &Ledger{
		db:     bun.NewDB(sqldb, sqlitedialect.New()),
		logger: logger.With().Str("component", "ledger").Logger(),
	}

	if err := l.migrate(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) migrate(ctx context.Context) error {
	for _, model := range []interface{}{(*Run)(nil), (*Validation)(nil)} {
		if _, err := l.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.New(ErrMigrationFailed, "failed to create ledger table", err)
		}
	}
	return nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return errors.New(ErrCloseFailed, "failed to close ledger database", err)
	}
	return nil
}

// StartRun records the start of a matrix run and returns it with a fresh
// ulid identifier and status running
func (l *Ledger) StartRun(ctx context.Context, catalogName, catalogImpl, format string, vectorized bool, distribution string) (*Run, error) {
	run := &Run{
		ID:           utils.GenerateULIDString(),
		CatalogName:  catalogName,
		CatalogImpl:  catalogImpl,
		Format:       format,
		Vectorized:   vectorized,
		Distribution: distribution,
		Status:       StatusRunning,
		StartedAt:    time.Now().UTC(),
	}

	if _, err := l.db.NewInsert().Model(run).Exec(ctx); err != nil {
		return nil, errors.New(ErrRunInsertFailed, "failed to insert run", err).
			AddContext("run_id", run.ID)
	}

	l.logger.Debug().Str("run_id", run.ID).Str("catalog", catalogName).Msg("run started")
	return run, nil
}

// FinishRun marks a run passed or failed. A non-nil runErr marks it failed
// and stores the error text.
func (l *Ledger) FinishRun(ctx context.Context, runID string, runErr error) error {
	now := time.Now().UTC()
	status := StatusPassed
	failure := ""
	if runErr != nil {
		status = StatusFailed
		failure = runErr.Error()
	}

	res, err := l.db.NewUpdate().
		Model((*Run)(nil)).
		Set("status = ?", status).
		Set("failure = ?", failure).
		Set("finished_at = ?", now).
		Where("id = ?", runID).
		Exec(ctx)
	if err != nil {
		return errors.New(ErrRunUpdateFailed, "failed to finish run", err).
			AddContext("run_id", runID)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.New(ErrRunUpdateFailed, "failed to read rows affected", err).
			AddContext("run_id", runID)
	}
	if affected == 0 {
		return errors.New(ErrRunNotFound, "run does not exist", nil).
			AddContext("run_id", runID)
	}

	l.logger.Debug().Str("run_id", runID).Str("status", status).Msg("run finished")
	return nil
}

// RecordValidation appends one assertion outcome to a run's history
func (l *Ledger) RecordValidation(ctx context.Context, v *Validation) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	if _, err := l.db.NewInsert().Model(v).Exec(ctx); err != nil {
		return errors.New(ErrValidationInsertFailed, "failed to insert validation", err).
			AddContext("run_id", v.RunID).
			AddContext("table", v.TableName)
	}
	return nil
}

// Runs lists all recorded runs, most recent first
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := l.db.NewSelect().
		Model(&runs).
		Order("started_at DESC").
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.New(ErrRunQueryFailed, "failed to query runs", err)
	}
	return runs, nil
}

// Validations lists the assertion outcomes of one run in recording order
func (l *Ledger) Validations(ctx context.Context, runID string) ([]Validation, error) {
	var validations []Validation
	err := l.db.NewSelect().
		Model(&validations).
		Where("run_id = ?", runID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.New(ErrValidationQueryFailed, "failed to query validations", err).
			AddContext("run_id", runID)
	}
	return validations, nil
}
