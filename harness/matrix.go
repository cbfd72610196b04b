package harness

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gear6io/floe/catalog"
	"github.com/gear6io/floe/pkg/errors"
)

// FileFormat is an Iceberg data file format, as used for the
// write.format.default table property.
type FileFormat string

const (
	FormatParquet FileFormat = "parquet"
	FormatORC     FileFormat = "orc"
	FormatAvro    FileFormat = "avro"
)

// DistributionMode is an Iceberg write distribution mode, as used for the
// write.distribution-mode table property.
type DistributionMode string

const (
	DistributionNone  DistributionMode = "none"
	DistributionHash  DistributionMode = "hash"
	DistributionRange DistributionMode = "range"
)

// Iceberg table property keys applied by InitTable.
const (
	PropWriteFormatDefault          = "write.format.default"
	PropWriteDistributionMode       = "write.distribution-mode"
	PropParquetVectorizationEnabled = "read.parquet.vectorization.enabled"
)

// VectorizationPolicy states whether a file format admits a choice of
// vectorized reads. It is total over the supported formats and is consulted
// both when building configurations and when asserting them after property
// application.
type VectorizationPolicy int

const (
	// PolicyFree leaves the vectorized flag to the configuration.
	PolicyFree VectorizationPolicy = iota
	// PolicyForcedOn requires vectorized reads.
	PolicyForcedOn
	// PolicyForcedOff forbids vectorized reads.
	PolicyForcedOff
)

func (p VectorizationPolicy) String() string {
	switch p {
	case PolicyForcedOn:
		return "forced-on"
	case PolicyForcedOff:
		return "forced-off"
	default:
		return "free"
	}
}

// PolicyFor returns the vectorization policy for a file format. ORC reads are
// always vectorized, Avro reads never are, Parquet admits both.
func PolicyFor(f FileFormat) VectorizationPolicy {
	switch f {
	case FormatORC:
		return PolicyForcedOn
	case FormatAvro:
		return PolicyForcedOff
	default:
		return PolicyFree
	}
}

// RunConfig is one environment permutation of the validation matrix.
type RunConfig struct {
	CatalogName  string
	CatalogImpl  string
	CatalogProps map[string]string
	Format       FileFormat
	Vectorized   bool
	Distribution DistributionMode
}

// Validate checks the configuration against the supported formats, the
// distribution modes and the vectorization policy.
func (c RunConfig) Validate() error {
	switch c.Format {
	case FormatParquet, FormatORC, FormatAvro:
	default:
		return errors.Newf(ErrUnsupportedFormat, "unsupported file format %q", string(c.Format))
	}

	switch c.Distribution {
	case DistributionNone, DistributionHash, DistributionRange:
	default:
		return errors.Newf(ErrInvalidConfig, "unknown distribution mode %q", string(c.Distribution))
	}

	switch PolicyFor(c.Format) {
	case PolicyForcedOn:
		if !c.Vectorized {
			return errors.Newf(ErrPolicyViolation, "%s reads are always vectorized, config says vectorized=false", c.Format)
		}
	case PolicyForcedOff:
		if c.Vectorized {
			return errors.Newf(ErrPolicyViolation, "%s reads are never vectorized, config says vectorized=true", c.Format)
		}
	}

	return nil
}

// String labels the configuration for logs and reports
func (c RunConfig) String() string {
	return fmt.Sprintf("catalog=%s impl=%s format=%s vectorized=%t distribution=%s",
		c.CatalogName, c.CatalogImpl, c.Format, c.Vectorized, c.Distribution)
}

// The parquet vectorization draw is made once per process so every
// Parameters() call sees the same matrix. SetSeed swaps the source and forces
// a redraw, which keeps CI runs reproducible.
var (
	drawMu    sync.Mutex
	drawRng   *rand.Rand
	drawDone  bool
	drawValue bool
)

// SetSeed fixes the source behind the parquet vectorization draw. Calling it
// discards a draw already made, so it takes effect even after Parameters()
// has run.
func SetSeed(seed int64) {
	drawMu.Lock()
	defer drawMu.Unlock()

	drawRng = rand.New(rand.NewSource(seed))
	drawDone = false
}

func drawVectorized() bool {
	drawMu.Lock()
	defer drawMu.Unlock()

	if !drawDone {
		if drawRng == nil {
			drawRng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		drawValue = drawRng.Intn(2) == 1
		drawDone = true
	}

	return drawValue
}

// Parameters returns the validation matrix: one entry per catalog
// implementation, each pinning a file format, a vectorization flag and a
// write distribution mode.
func Parameters() []RunConfig {
	return []RunConfig{
		{
			CatalogName: "testsql",
			CatalogImpl: catalog.ImplSQLite,
			CatalogProps: map[string]string{
				"default-namespace": "default",
			},
			Format:       FormatORC,
			Vectorized:   true,
			Distribution: DistributionNone,
		},
		{
			CatalogName: "testfs",
			CatalogImpl: catalog.ImplFS,
			CatalogProps: map[string]string{
				"default-namespace": "default",
			},
			Format:       FormatParquet,
			Vectorized:   drawVectorized(),
			Distribution: DistributionHash,
		},
		{
			CatalogName: "session_catalog",
			CatalogImpl: catalog.ImplSession,
			CatalogProps: map[string]string{
				"default-namespace": "default",
				// raw engine deletes bypass catalog invalidation and leave
				// the handle cache out of sync
				"cache-enabled": "false",
			},
			Format:       FormatAvro,
			Vectorized:   false,
			Distribution: DistributionRange,
		},
	}
}
