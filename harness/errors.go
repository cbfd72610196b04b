package harness

import "github.com/gear6io/floe/pkg/errors"

// Harness-specific error codes
var (
	ErrUnsupportedFormat = errors.MustNewCode("harness.unsupported_format")
	ErrPolicyViolation   = errors.MustNewCode("harness.policy_violation")
	ErrIngestionFailed   = errors.MustNewCode("harness.ingestion_failed")
	ErrOperationMismatch = errors.MustNewCode("harness.operation_mismatch")
	ErrMetricMismatch    = errors.MustNewCode("harness.metric_mismatch")
	ErrInvalidConfig     = errors.MustNewCode("harness.invalid_config")
	ErrTableInitFailed   = errors.MustNewCode("harness.table_init_failed")
	ErrEngineRequired    = errors.MustNewCode("harness.engine_required")
)
