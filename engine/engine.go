// Package engine runs SQL against an embedded DuckDB instance. Scenarios use
// it to mutate and inspect Iceberg tables from the engine side, including
// writes that go around the catalog entirely.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Engine wraps a DuckDB connection for scenario SQL
type Engine struct {
	db              *sql.DB
	queryTimeout    time.Duration
	icebergScanable bool
	logger          zerolog.Logger

	mu      sync.RWMutex
	metrics Metrics
}

// Metrics counts engine activity since construction
type Metrics struct {
	QueriesExecuted  int64
	StatementsRun    int64
	ViewsRegistered  int64
	TablesRegistered int64
	Failures         int64
}

// QueryResult represents the result of a SQL query
type QueryResult struct {
	Columns  []string
	Rows     [][]interface{}
	RowCount int64
	Duration time.Duration
}

// New creates an in-memory DuckDB engine. Extension loading is gated on
// cfg.LoadExtensions; the iceberg extension is optional and its absence only
// disables RegisterTable.
func New(cfg config.EngineConfig, logger zerolog.Logger) (*Engine, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.New(ErrOpenFailed, "failed to open DuckDB connection", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.New(ErrPingFailed, "failed to ping DuckDB", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	e := &Engine{
		db:     db,
		logger: logger.With().Str("component", "engine").Logger(),
	}
	if cfg.QueryTimeoutSec > 0 {
		e.queryTimeout = time.Duration(cfg.QueryTimeoutSec) * time.Second
	}

	if cfg.MaxMemoryMB > 0 {
		if _, err := db.Exec(fmt.Sprintf("SET memory_limit = '%dMB'", cfg.MaxMemoryMB)); err != nil {
			e.logger.Warn().Err(err).Int("max_memory_mb", cfg.MaxMemoryMB).Msg("failed to set memory limit")
		}
	}
	if _, err := db.Exec("SET enable_progress_bar = false"); err != nil {
		e.logger.Warn().Err(err).Msg("failed to disable progress bar")
	}

	if cfg.LoadExtensions {
		e.loadExtensions()
	}

	return e, nil
}

// loadExtensions installs and loads the httpfs and iceberg extensions. Both
// need network access at install time and the iceberg extension is not
// shipped for every platform, so failures only log.
func (e *Engine) loadExtensions() {
	for _, ext := range []string{"httpfs", "iceberg"} {
		if _, err := e.db.Exec("INSTALL " + ext); err != nil {
			e.logger.Debug().Err(err).Str("extension", ext).Msg("extension install failed or already installed")
		}
		if _, err := e.db.Exec("LOAD " + ext); err != nil {
			e.logger.Warn().Err(err).Str("extension", ext).Msg("extension not available")
			continue
		}

		e.logger.Debug().Str("extension", ext).Msg("extension loaded")
		if ext == "iceberg" {
			e.icebergScanable = true
		}
	}
}

// Close closes the DuckDB connection
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}
	if err := e.db.Close(); err != nil {
		return errors.New(ErrCloseFailed, "failed to close DuckDB connection", err)
	}
	e.db = nil
	return nil
}

// Metrics returns a copy of the engine counters
func (e *Engine) Metrics() Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.queryTimeout > 0 {
		return context.WithTimeout(ctx, e.queryTimeout)
	}
	return ctx, func() {}
}

// Exec runs a statement that returns no rows
func (e *Engine) Exec(ctx context.Context, statement string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	_, err := e.db.ExecContext(ctx, statement)

	e.mu.Lock()
	e.metrics.StatementsRun++
	if err != nil {
		e.metrics.Failures++
	}
	e.mu.Unlock()

	if err != nil {
		return errors.New(ErrExecFailed, "failed to execute statement", err).
			AddContext("statement", statement)
	}

	e.logger.Debug().Str("statement", statement).Dur("duration", time.Since(start)).Msg("statement executed")
	return nil
}

// Query runs a SQL query and returns all rows
func (e *Engine) Query(ctx context.Context, query string) (*QueryResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query)

	e.mu.Lock()
	e.metrics.QueriesExecuted++
	if err != nil {
		e.metrics.Failures++
	}
	e.mu.Unlock()

	if err != nil {
		return nil, errors.New(ErrQueryFailed, "failed to execute query", err).
			AddContext("query", query)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.New(ErrQueryFailed, "failed to read result columns", err).
			AddContext("query", query)
	}

	var resultRows [][]interface{}
	var rowCount int64
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Newf(ErrScanFailed, "failed to scan row %d", rowCount).
				AddContext("query", query)
		}

		resultRows = append(resultRows, values)
		rowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(ErrQueryFailed, "error iterating rows", err).
			AddContext("query", query)
	}

	duration := time.Since(start)
	e.logger.Debug().Str("query", query).Int64("rows", rowCount).Dur("duration", duration).Msg("query executed")

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: rowCount,
		Duration: duration,
	}, nil
}

// RegisterTable exposes an Iceberg table to SQL through iceberg_scan. It
// requires the iceberg extension, so the engine must have been built with
// extension loading on.
func (e *Engine) RegisterTable(ctx context.Context, identifier table.Identifier, tbl *table.Table) error {
	if tbl == nil {
		return errors.New(ErrTableRegisterFailed, "iceberg table is nil", nil)
	}
	if !e.icebergScanable {
		return errors.New(ErrTableRegisterFailed, "iceberg extension is not loaded", nil).
			AddContext("table", strings.Join(identifier, "."))
	}

	metadataLocation := tbl.MetadataLocation()
	if strings.ContainsAny(metadataLocation, `'";`) {
		return errors.New(ErrTableRegisterFailed, "metadata location contains unsafe characters", nil).
			AddContext("metadata_location", metadataLocation)
	}

	viewName := identifierToViewName(identifier)
	createViewSQL := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM iceberg_scan('%s')",
		quoteName(viewName), metadataLocation)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.db.ExecContext(ctx, createViewSQL); err != nil {
		e.metrics.Failures++
		return errors.New(ErrTableRegisterFailed, "failed to register table", err).
			AddContext("table", viewName)
	}
	e.metrics.TablesRegistered++

	e.logger.Debug().Str("table", viewName).Str("metadata_location", metadataLocation).Msg("table registered")
	return nil
}

// identifierToViewName converts a table identifier to a SQL-safe view name
func identifierToViewName(identifier table.Identifier) string {
	return strings.Join(identifier, "_")
}

// quoteName quotes a SQL identifier, doubling embedded quotes
func quoteName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
