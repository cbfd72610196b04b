package ledger

import "github.com/gear6io/floe/pkg/errors"

// Ledger-specific error codes
var (
	ErrDirectoryCreateFailed  = errors.MustNewCode("ledger.directory_create_failed")
	ErrOpenFailed             = errors.MustNewCode("ledger.open_failed")
	ErrMigrationFailed        = errors.MustNewCode("ledger.migration_failed")
	ErrRunInsertFailed        = errors.MustNewCode("ledger.run_insert_failed")
	ErrRunUpdateFailed        = errors.MustNewCode("ledger.run_update_failed")
	ErrRunNotFound            = errors.MustNewCode("ledger.run_not_found")
	ErrRunQueryFailed         = errors.MustNewCode("ledger.run_query_failed")
	ErrValidationInsertFailed = errors.MustNewCode("ledger.validation_insert_failed")
	ErrValidationQueryFailed  = errors.MustNewCode("ledger.validation_query_failed")
	ErrCloseFailed            = errors.MustNewCode("ledger.close_failed")
)
