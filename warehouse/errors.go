package warehouse

import "github.com/gear6io/floe/pkg/errors"

// Warehouse-specific error codes
var (
	ErrUnsupportedScheme = errors.MustNewCode("warehouse.unsupported_scheme")
	ErrInvalidLocation   = errors.MustNewCode("warehouse.invalid_location")
	ErrClientInitFailed  = errors.MustNewCode("warehouse.client_init_failed")
	ErrWrongBucket       = errors.MustNewCode("warehouse.wrong_bucket")
	ErrWriteUnsupported  = errors.MustNewCode("warehouse.write_unsupported")
	ErrWriteFailed       = errors.MustNewCode("warehouse.write_failed")
	ErrBucketCheckFailed = errors.MustNewCode("warehouse.bucket_check_failed")
)
