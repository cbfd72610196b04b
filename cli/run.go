package cli

import (
	"context"
	"strconv"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/harness"
	"github.com/gear6io/floe/ledger"
	"github.com/gear6io/floe/paths"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the validation matrix",
	Long: `Run a smoke scenario for each matrix entry: build the catalog, create a
table configured for the entry, append rows, and validate the append
snapshot's operation and file counts.

Outcomes are recorded in the run ledger when it is enabled.

Examples:
  floe run
  floe run --seed 42
  floe run --entry 1
  floe run --config floe.yml`,
	RunE: runRun,
}

type runOptions struct {
	entry int
}

var runOpts = &runOptions{}

// Smoke scenario fixture appended to every entry's table.
const (
	smokeSchema = "id long, dep string, salary double"
	smokeRows   = `{"id": 1, "dep": "engineering", "salary": 98000.5}
{"id": 2, "dep": "hr", "salary": 76500.0}
{"id": 3, "dep": "engineering", "salary": 110250.75}`
)

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	seed, seeded := applySeed(cmd, cfg)
	if seeded {
		logger.Info().Str("cmd", "run").Int64("seed", seed).Msg("matrix draw seeded")
	}

	pm := paths.NewManager(cfg.GetDataPath())
	if err := pm.EnsureDirectoryStructure(); err != nil {
		return err
	}

	var led *ledger.Ledger
	if cfg.Ledger.Enabled {
		path := cfg.Ledger.Path
		if path == "" {
			path = pm.GetLedgerPath()
		}
		led, err = ledger.Open(path, logger)
		if err != nil {
			return err
		}
		defer led.Close()
	}

	params := harness.Parameters()
	if runOpts.entry >= len(params) {
		return errors.Newf(ErrBadEntry, "entry %d out of range, matrix has %d entries", runOpts.entry, len(params))
	}

	data := pterm.TableData{{"#", "CATALOG", "IMPL", "FORMAT", "RUN", "RESULT"}}
	failed := 0
	total := 0

	for i, entry := range params {
		if runOpts.entry >= 0 && runOpts.entry != i {
			continue
		}
		total++

		runID, runErr := runEntry(ctx, cfg, pm, led, entry, logger)

		result := "pass"
		if runErr != nil {
			failed++
			result = "fail: " + runErr.Error()
			logger.Error().Str("cmd", "run").Str("config", entry.String()).Err(runErr).Msg("matrix entry failed")
		} else {
			logger.Info().Str("cmd", "run").Str("config", entry.String()).Msg("matrix entry passed")
		}

		data = append(data, []string{
			strconv.Itoa(i),
			entry.CatalogName,
			entry.CatalogImpl,
			string(entry.Format),
			runID,
			result,
		})
	}

	if err := pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render(); err != nil {
		return err
	}

	if failed > 0 {
		return errors.Newf(ErrRunFailed, "%d of %d matrix entries failed", failed, total)
	}
	pterm.Println("all entries passed")
	return nil
}

// runEntry drives one matrix entry end to end and returns its ledger run id,
// empty when the ledger is disabled.
func runEntry(ctx context.Context, cfg *config.Config, pm *paths.Manager, led *ledger.Ledger, entry harness.RunConfig, logger zerolog.Logger) (string, error) {
	cat, err := catalog.New(cfg, pm, entry.CatalogName, entry.CatalogImpl, iceberg.Properties(entry.CatalogProps), logger)
	if err != nil {
		return "", err
	}
	defer cat.Close()

	opts := []harness.Option{harness.WithLogger(logger)}
	if led != nil {
		opts = append(opts, harness.WithLedger(led))
	}
	h, err := harness.New(entry, cat, opts...)
	if err != nil {
		return "", err
	}

	if err := h.StartRun(ctx); err != nil {
		return "", err
	}

	// reruns reuse the same catalog stores
	name := "smoke_" + entry.CatalogImpl
	_ = cat.DropTable(ctx, h.TableIdent(name))

	tbl, err := h.CreateAndInitTable(ctx, name, smokeSchema, smokeRows)
	if err != nil {
		finishRun(ctx, h, err, logger)
		return h.RunID(), err
	}

	verr := h.Validate(ctx, name, tbl.CurrentSnapshot(), table.OpAppend,
		harness.Unconstrained(), harness.Unconstrained(), harness.Unconstrained(), harness.Exact("1"))

	finishRun(ctx, h, verr, logger)
	return h.RunID(), verr
}

func finishRun(ctx context.Context, h *harness.Harness, runErr error, logger zerolog.Logger) {
	if err := h.FinishRun(ctx, runErr); err != nil {
		logger.Warn().Err(err).Msg("failed to close ledger run")
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runOpts.entry, "entry", -1, "run a single matrix entry by index")
}
