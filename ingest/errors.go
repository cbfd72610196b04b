package ingest

import "github.com/gear6io/floe/pkg/errors"

// Ingest-specific error codes
var (
	ErrSchemaParseFailed = errors.MustNewCode("ingest.schema_parse_failed")
	ErrUnknownType       = errors.MustNewCode("ingest.unknown_type")
	ErrRowParseFailed    = errors.MustNewCode("ingest.row_parse_failed")
)
