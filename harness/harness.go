// Package harness drives one validation-matrix entry end to end: it creates
// and configures Iceberg tables per the entry, ingests rows, and asserts the
// snapshot summaries the mutations leave behind.
package harness

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog"
	"github.com/gear6io/floe/engine"
	"github.com/gear6io/floe/ingest"
	"github.com/gear6io/floe/ledger"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"
)

// Harness executes table scenarios for one RunConfig
type Harness struct {
	cfg        RunConfig
	cat        catalog.Interface
	eng        *engine.Engine
	loader     *ingest.Loader
	ledger     *ledger.Ledger
	run        *ledger.Run
	namespace  string
	extraProps iceberg.Properties
	logger     zerolog.Logger
}

// Option configures a Harness
type Option func(*Harness)

// WithEngine attaches a SQL engine for view registration and scenario SQL
func WithEngine(e *engine.Engine) Option {
	return func(h *Harness) { h.eng = e }
}

// WithLoader replaces the default row loader
func WithLoader(l *ingest.Loader) Option {
	return func(h *Harness) { h.loader = l }
}

// WithLogger sets the harness logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// WithNamespace sets the namespace tables are created under
func WithNamespace(ns string) Option {
	return func(h *Harness) { h.namespace = ns }
}

// WithTableProperties adds table properties applied by InitTable after the
// format and distribution properties
func WithTableProperties(props iceberg.Properties) Option {
	return func(h *Harness) { h.extraProps = props }
}

// WithLedger attaches a run ledger; validations are recorded automatically
// once StartRun has been called
func WithLedger(l *ledger.Ledger) Option {
	return func(h *Harness) { h.ledger = l }
}

// New creates a harness for one matrix entry
func New(cfg RunConfig, cat catalog.Interface, opts ...Option) (*Harness, error) {
	if cat == nil {
		return nil, errors.New(ErrInvalidConfig, "catalog is required", nil)
	}

	h := &Harness{
		cfg:       cfg,
		cat:       cat,
		namespace: "default",
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.loader == nil {
		h.loader = ingest.NewLoader(h.logger)
	}

	return h, nil
}

// Config returns the matrix entry this harness runs
func (h *Harness) Config() RunConfig {
	return h.cfg
}

// Catalog returns the catalog backing this harness
func (h *Harness) Catalog() catalog.Interface {
	return h.cat
}

// Engine returns the attached SQL engine, nil when none was attached
func (h *Harness) Engine() *engine.Engine {
	return h.eng
}

// RunID returns the active ledger run identifier, empty before StartRun
func (h *Harness) RunID() string {
	if h.run == nil {
		return ""
	}
	return h.run.ID
}

// TableIdent resolves a table name against the configured namespace. Names
// already qualified with dots are split instead.
func (h *Harness) TableIdent(name string) table.Identifier {
	if strings.Contains(name, ".") {
		return table.Identifier(strings.Split(name, "."))
	}
	return table.Identifier{h.namespace, name}
}

// InitTable applies the matrix entry's table properties to an existing
// table: write.format.default and write.distribution-mode in one commit,
// plus read.parquet.vectorization.enabled for parquet. Extra properties
// given at construction go in a second commit.
func (h *Harness) InitTable(ctx context.Context, ident table.Identifier) error {
	switch h.cfg.Format {
	case FormatParquet, FormatORC, FormatAvro:
	default:
		return errors.Newf(ErrUnsupportedFormat, "unsupported file format %q", string(h.cfg.Format))
	}

	tbl, err := h.cat.LoadTable(ctx, ident, nil)
	if err != nil {
		return errors.New(ErrTableInitFailed, "failed to load table", err).
			AddContext("table", strings.Join(ident, "."))
	}

	props := iceberg.Properties{
		PropWriteFormatDefault:    string(h.cfg.Format),
		PropWriteDistributionMode: string(h.cfg.Distribution),
	}
	if h.cfg.Format == FormatParquet {
		props[PropParquetVectorizationEnabled] = strconv.FormatBool(h.cfg.Vectorized)
	}

	tx := tbl.NewTransaction()
	if err := tx.SetProperties(props); err != nil {
		return errors.New(ErrTableInitFailed, "failed to stage table properties", err).
			AddContext("table", strings.Join(ident, "."))
	}
	committed, err := tx.Commit(ctx)
	if err != nil {
		return errors.New(ErrTableInitFailed, "failed to commit table properties", err).
			AddContext("table", strings.Join(ident, "."))
	}

	switch PolicyFor(h.cfg.Format) {
	case PolicyForcedOn:
		if !h.cfg.Vectorized {
			return errors.Newf(ErrPolicyViolation, "%s reads are always vectorized, config says vectorized=false", h.cfg.Format)
		}
	case PolicyForcedOff:
		if h.cfg.Vectorized {
			return errors.Newf(ErrPolicyViolation, "%s reads are never vectorized, config says vectorized=true", h.cfg.Format)
		}
	}

	if len(h.extraProps) > 0 {
		tx := committed.NewTransaction()
		if err := tx.SetProperties(h.extraProps); err != nil {
			return errors.New(ErrTableInitFailed, "failed to stage extra table properties", err).
				AddContext("table", strings.Join(ident, "."))
		}
		if _, err := tx.Commit(ctx); err != nil {
			return errors.New(ErrTableInitFailed, "failed to commit extra table properties", err).
				AddContext("table", strings.Join(ident, "."))
		}
	}

	h.logger.Debug().Str("table", strings.Join(ident, ".")).
		Str("format", string(h.cfg.Format)).
		Str("distribution", string(h.cfg.Distribution)).
		Msg("table initialized")
	return nil
}

// CreateAndInitTable creates a table from a schema text, initializes it for
// the matrix entry, and appends the given rows when jsonData is non-empty.
func (h *Harness) CreateAndInitTable(ctx context.Context, name, schemaText, jsonData string) (*table.Table, error) {
	schema, _, err := ingest.ParseSchema(schemaText)
	if err != nil {
		return nil, err
	}

	ident := h.TableIdent(name)
	if _, err := h.cat.CreateTable(ctx, ident, schema); err != nil {
		return nil, errors.New(ErrTableInitFailed, "failed to create table", err).
			AddContext("table", strings.Join(ident, "."))
	}

	if err := h.InitTable(ctx, ident); err != nil {
		return nil, err
	}

	if jsonData != "" {
		return h.Append(ctx, name, schemaText, jsonData)
	}

	tbl, err := h.cat.LoadTable(ctx, ident, nil)
	if err != nil {
		return nil, errors.New(ErrTableInitFailed, "failed to reload table", err).
			AddContext("table", strings.Join(ident, "."))
	}
	return tbl, nil
}

// Append parses NDJSON rows and appends them to the table as one arrow
// table in a single commit, so file-count assertions on the resulting
// snapshot stay deterministic. Returns the committed table.
func (h *Harness) Append(ctx context.Context, tableName, schemaText, jsonData string) (*table.Table, error) {
	ident := h.TableIdent(tableName)
	tbl, err := h.cat.LoadTable(ctx, ident, nil)
	if err != nil {
		return nil, errors.New(ErrIngestionFailed, "failed to load table for append", err).
			AddContext("table", strings.Join(ident, "."))
	}

	rows, err := h.loader.LoadTable(schemaText, jsonData)
	if err != nil {
		return nil, err
	}
	defer rows.Release()

	batchSize := rows.NumRows()
	if batchSize == 0 {
		batchSize = 1
	}

	tx := tbl.NewTransaction()
	if err := tx.AppendTable(ctx, rows, batchSize, nil); err != nil {
		return nil, errors.New(ErrIngestionFailed, "failed to stage appended rows", err).
			AddContext("table", strings.Join(ident, ".")).
			AddContext("rows", strconv.FormatInt(rows.NumRows(), 10))
	}
	committed, err := tx.Commit(ctx)
	if err != nil {
		return nil, errors.New(ErrIngestionFailed, "failed to commit appended rows", err).
			AddContext("table", strings.Join(ident, "."))
	}

	h.logger.Debug().Str("table", strings.Join(ident, ".")).Int64("rows", rows.NumRows()).Msg("rows appended")
	return committed, nil
}

// RegisterView parses NDJSON rows and installs them as a replaceable
// temporary view on the attached engine
func (h *Harness) RegisterView(ctx context.Context, name, schemaText, jsonData string) error {
	if h.eng == nil {
		return errors.New(ErrEngineRequired, "no engine attached", nil).AddContext("view", name)
	}

	rec, err := h.loader.LoadRows(schemaText, jsonData)
	if err != nil {
		return err
	}
	defer rec.Release()

	return h.eng.RegisterViewRecord(ctx, name, rec)
}

// RegisterViewRecord installs an already-built record as a temporary view
func (h *Harness) RegisterViewRecord(ctx context.Context, name string, rec arrow.Record) error {
	if h.eng == nil {
		return errors.New(ErrEngineRequired, "no engine attached", nil).AddContext("view", name)
	}
	return h.eng.RegisterViewRecord(ctx, name, rec)
}

// Sleep blocks the calling goroutine, waiting out eventual-consistency
// windows in layers outside the harness
func (h *Harness) Sleep(d time.Duration) {
	h.logger.Debug().Dur("duration", d).Msg("sleeping")
	time.Sleep(d)
}

// StartRun opens a ledger run for this matrix entry. Without a ledger it is
// a no-op.
func (h *Harness) StartRun(ctx context.Context) error {
	if h.ledger == nil {
		return nil
	}

	run, err := h.ledger.StartRun(ctx, h.cfg.CatalogName, h.cfg.CatalogImpl,
		string(h.cfg.Format), h.cfg.Vectorized, string(h.cfg.Distribution))
	if err != nil {
		return err
	}
	h.run = run
	return nil
}

// FinishRun closes the active ledger run, marking it failed when runErr is
// non-nil
func (h *Harness) FinishRun(ctx context.Context, runErr error) error {
	if h.ledger == nil || h.run == nil {
		return nil
	}
	return h.ledger.FinishRun(ctx, h.run.ID, runErr)
}

// Validate asserts a snapshot like ValidateSnapshot and records the outcome
// on the active ledger run
func (h *Harness) Validate(ctx context.Context, tableName string, s *table.Snapshot, op table.Operation,
	changedPartitions, deletedDataFiles, addedDeleteFiles, addedDataFiles Expect) error {
	err := ValidateSnapshot(s, op, changedPartitions, deletedDataFiles, addedDeleteFiles, addedDataFiles)
	h.recordValidation(ctx, tableName, string(op), err)
	return err
}

func (h *Harness) recordValidation(ctx context.Context, tableName, operation string, verr error) {
	if h.ledger == nil || h.run == nil {
		return
	}

	v := &ledger.Validation{
		RunID:     h.run.ID,
		TableName: tableName,
		Operation: operation,
		Passed:    verr == nil,
	}
	if verr != nil {
		e := errors.AsError(verr)
		v.Property = e.Context["property"]
		v.Expected = e.Context["expected"]
		v.Actual = e.Context["actual"]
	}

	if err := h.ledger.RecordValidation(ctx, v); err != nil {
		h.logger.Warn().Err(err).Str("table", tableName).Msg("failed to record validation")
	}
}
