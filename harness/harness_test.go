package harness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog"
	"github.com/gear6io/floe/catalog/session"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/engine"
	"github.com/gear6io/floe/ingest"
	"github.com/gear6io/floe/ledger"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/warehouse"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSchema = "id long, dep string"
	testRows   = `{"id": 1, "dep": "engineering"}
{"id": 2, "dep": "hr"}`
)

func parquetConfig() RunConfig {
	return RunConfig{
		CatalogName:  "session_catalog",
		CatalogImpl:  catalog.ImplSession,
		Format:       FormatParquet,
		Vectorized:   true,
		Distribution: DistributionHash,
	}
}

func newTestHarness(t *testing.T, cfg RunConfig, opts ...Option) *Harness {
	t.Helper()

	cat, err := session.NewCatalog("session_catalog", t.TempDir(), warehouse.LocalIO{},
		iceberg.Properties{"default-namespace": "default"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	h, err := New(cfg, cat, opts...)
	require.NoError(t, err)
	return h
}

func TestNewRequiresCatalog(t *testing.T) {
	_, err := New(parquetConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))
}

func TestTableIdent(t *testing.T) {
	h := newTestHarness(t, parquetConfig())
	assert.Equal(t, table.Identifier{"default", "emp"}, h.TableIdent("emp"))
	assert.Equal(t, table.Identifier{"sales", "emp"}, h.TableIdent("sales.emp"))

	scoped := newTestHarness(t, parquetConfig(), WithNamespace("fixtures"))
	assert.Equal(t, table.Identifier{"fixtures", "emp"}, scoped.TableIdent("emp"))
}

func TestCreateAndInitTableParquet(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	tbl, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.NoError(t, err)

	props := tbl.Properties()
	assert.Equal(t, "parquet", props[PropWriteFormatDefault])
	assert.Equal(t, "hash", props[PropWriteDistributionMode])
	assert.Equal(t, "true", props[PropParquetVectorizationEnabled])
}

func TestInitTableOrcOmitsVectorizationProperty(t *testing.T) {
	cfg := parquetConfig()
	cfg.Format = FormatORC
	cfg.Vectorized = true
	h := newTestHarness(t, cfg)

	tbl, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.NoError(t, err)

	props := tbl.Properties()
	assert.Equal(t, "orc", props[PropWriteFormatDefault])
	_, ok := props[PropParquetVectorizationEnabled]
	assert.False(t, ok, "vectorization property is parquet only")
}

func TestInitTableUnsupportedFormat(t *testing.T) {
	cfg := parquetConfig()
	cfg.Format = FileFormat("csv")
	h := newTestHarness(t, cfg)

	err := h.InitTable(context.Background(), h.TableIdent("emp"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrUnsupportedFormat))
}

func TestInitTablePolicyViolation(t *testing.T) {
	cfg := parquetConfig()
	cfg.Format = FormatAvro
	cfg.Vectorized = true
	h := newTestHarness(t, cfg)

	_, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrPolicyViolation))

	cfg = parquetConfig()
	cfg.Format = FormatORC
	cfg.Vectorized = false
	h = newTestHarness(t, cfg)

	_, err = h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrPolicyViolation))
}

func TestInitTableMissingTable(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	err := h.InitTable(context.Background(), h.TableIdent("missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrTableInitFailed))
}

func TestCreateAndInitTableExtraProperties(t *testing.T) {
	h := newTestHarness(t, parquetConfig(),
		WithTableProperties(iceberg.Properties{"comment": "fixture table"}))

	tbl, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.NoError(t, err)

	props := tbl.Properties()
	assert.Equal(t, "fixture table", props["comment"])
	assert.Equal(t, "parquet", props[PropWriteFormatDefault])
}

func TestAppendProducesAppendSnapshot(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	tbl, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, testRows)
	require.NoError(t, err)

	snap := tbl.CurrentSnapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, table.OpAppend, snap.Summary.Operation)
	assert.Equal(t, "2", snap.Summary.Properties["added-records"])

	err = ValidateSnapshot(snap, table.OpAppend,
		Unconstrained(), Unconstrained(), Unconstrained(), Exact("1"))
	assert.NoError(t, err)
}

func TestAppendMissingTable(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	_, err := h.Append(context.Background(), "missing", testSchema, testRows)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrIngestionFailed))
}

func TestAppendBadRows(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	_, err := h.CreateAndInitTable(context.Background(), "emp", testSchema, "")
	require.NoError(t, err)

	_, err = h.Append(context.Background(), "emp", testSchema, `{"id": "not a number", "dep": 3}`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ingest.ErrRowParseFailed))
}

func TestRegisterViewRequiresEngine(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	err := h.RegisterView(context.Background(), "emp", testSchema, testRows)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrEngineRequired))

	err = h.RegisterViewRecord(context.Background(), "emp", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrEngineRequired))
}

func TestRegisterViewQueriesBack(t *testing.T) {
	eng, err := engine.New(config.EngineConfig{MaxMemoryMB: 256, QueryTimeoutSec: 30}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	h := newTestHarness(t, parquetConfig(), WithEngine(eng))
	require.NoError(t, h.RegisterView(context.Background(), "emp", testSchema, testRows))

	res, err := eng.Query(context.Background(), `SELECT count(*) FROM "emp"`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, int64(2), res.Rows[0][0])
}

func TestLedgerLifecycle(t *testing.T) {
	led, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	h := newTestHarness(t, parquetConfig(), WithLedger(led))
	ctx := context.Background()

	assert.Empty(t, h.RunID())
	require.NoError(t, h.StartRun(ctx))
	require.NotEmpty(t, h.RunID())

	passing := snapshotFixture(table.OpAppend, map[string]string{SummaryAddedDataFiles: "1"})
	require.NoError(t, h.Validate(ctx, "emp", passing, table.OpAppend,
		Unconstrained(), Unconstrained(), Unconstrained(), Exact("1")))

	failing := snapshotFixture(table.OpAppend, map[string]string{SummaryAddedDataFiles: "3"})
	err = h.Validate(ctx, "emp", failing, table.OpAppend,
		Unconstrained(), Unconstrained(), Unconstrained(), Exact("1"))
	require.Error(t, err)

	validations, err := led.Validations(ctx, h.RunID())
	require.NoError(t, err)
	require.Len(t, validations, 2)
	assert.True(t, validations[0].Passed)
	assert.False(t, validations[1].Passed)
	assert.Equal(t, SummaryAddedDataFiles, validations[1].Property)
	assert.Equal(t, "1", validations[1].Expected)
	assert.Equal(t, "3", validations[1].Actual)

	require.NoError(t, h.FinishRun(ctx, nil))
	runs, err := led.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.StatusPassed, runs[0].Status)
	assert.Equal(t, "session_catalog", runs[0].CatalogName)
	assert.Equal(t, "parquet", runs[0].Format)
}

func TestLedgerAbsentIsNoOp(t *testing.T) {
	h := newTestHarness(t, parquetConfig())
	ctx := context.Background()

	require.NoError(t, h.StartRun(ctx))
	assert.Empty(t, h.RunID())
	require.NoError(t, h.FinishRun(ctx, nil))

	s := snapshotFixture(table.OpAppend, map[string]string{SummaryAddedDataFiles: "1"})
	assert.NoError(t, h.Validate(ctx, "emp", s, table.OpAppend,
		Unconstrained(), Unconstrained(), Unconstrained(), Exact("1")))
}

func TestSleep(t *testing.T) {
	h := newTestHarness(t, parquetConfig())

	start := time.Now()
	h.Sleep(10 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
