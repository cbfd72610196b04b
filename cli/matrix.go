package cli

import (
	"strconv"

	"github.com/gear6io/floe/harness"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the validation matrix",
	Long: `Print the validation matrix: one entry per catalog implementation, each
pinning a file format, a vectorization flag and a write distribution mode.

The parquet entry's vectorization flag is drawn at random; pass --seed (or
set matrix.seed in the configuration) to fix the draw.

Examples:
  floe matrix
  floe matrix --seed 42`,
	RunE: runMatrix,
}

func runMatrix(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	seed, seeded := applySeed(cmd, cfg)
	if seeded {
		logger.Info().Str("cmd", "matrix").Int64("seed", seed).Msg("matrix draw seeded")
	}

	data := pterm.TableData{{"#", "CATALOG", "IMPL", "FORMAT", "VECTORIZED", "DISTRIBUTION", "POLICY"}}
	for i, entry := range harness.Parameters() {
		data = append(data, []string{
			strconv.Itoa(i),
			entry.CatalogName,
			entry.CatalogImpl,
			string(entry.Format),
			strconv.FormatBool(entry.Vectorized),
			string(entry.Distribution),
			harness.PolicyFor(entry.Format).String(),
		})
	}

	if err := pterm.DefaultTable.
		WithBoxed(true).
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render(); err != nil {
		return err
	}

	if seeded {
		pterm.Println("seed: " + strconv.FormatInt(seed, 10))
	} else {
		pterm.Println("seed: none (parquet vectorization drawn from the clock)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}
