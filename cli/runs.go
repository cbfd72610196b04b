package cli

import (
	"strconv"
	"time"

	"github.com/gear6io/floe/ledger"
	"github.com/gear6io/floe/paths"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long: `List the runs recorded in the ledger, most recent first.

With --run, show the individual validations of one run instead.

Examples:
  floe runs
  floe runs --limit 5
  floe runs --run 01JD2XW9K8Q3N5T7VBMRZ0FCAG`,
	RunE: runRuns,
}

type runsOptions struct {
	limit int
	runID string
}

var runsOpts = &runsOptions{}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Ledger.Enabled {
		return errors.New(ErrLedgerUnavailable, "ledger is disabled in the configuration", nil)
	}

	path := cfg.Ledger.Path
	if path == "" {
		path = paths.NewManager(cfg.GetDataPath()).GetLedgerPath()
	}

	led, err := ledger.Open(path, logger)
	if err != nil {
		return err
	}
	defer led.Close()

	if runsOpts.runID != "" {
		return renderValidations(cmd, led)
	}
	return renderRuns(cmd, led)
}

func renderRuns(cmd *cobra.Command, led *ledger.Ledger) error {
	runs, err := led.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		pterm.Println("no runs recorded")
		return nil
	}
	if runsOpts.limit > 0 && len(runs) > runsOpts.limit {
		runs = runs[:runsOpts.limit]
	}

	data := pterm.TableData{{"RUN", "CATALOG", "IMPL", "FORMAT", "VECTORIZED", "DISTRIBUTION", "STATUS", "STARTED", "FAILURE"}}
	for _, r := range runs {
		data = append(data, []string{
			r.ID,
			r.CatalogName,
			r.CatalogImpl,
			r.Format,
			strconv.FormatBool(r.Vectorized),
			r.Distribution,
			r.Status,
			r.StartedAt.Format(time.RFC3339),
			r.Failure,
		})
	}

	return pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func renderValidations(cmd *cobra.Command, led *ledger.Ledger) error {
	validations, err := led.Validations(cmd.Context(), runsOpts.runID)
	if err != nil {
		return err
	}
	if len(validations) == 0 {
		pterm.Println("no validations recorded for run " + runsOpts.runID)
		return nil
	}

	data := pterm.TableData{{"TABLE", "OPERATION", "PROPERTY", "EXPECTED", "ACTUAL", "PASSED"}}
	for _, v := range validations {
		data = append(data, []string{
			v.TableName,
			v.Operation,
			v.Property,
			v.Expected,
			v.Actual,
			strconv.FormatBool(v.Passed),
		})
	}

	return pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsOpts.limit, "limit", 20, "maximum number of runs to list")
	runsCmd.Flags().StringVar(&runsOpts.runID, "run", "", "show the validations of one run")
}
