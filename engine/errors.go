package engine

import "github.com/gear6io/floe/pkg/errors"

// Engine-specific error codes
var (
	ErrOpenFailed            = errors.MustNewCode("engine.open_failed")
	ErrPingFailed            = errors.MustNewCode("engine.ping_failed")
	ErrExtensionLoadFailed   = errors.MustNewCode("engine.extension_load_failed")
	ErrExecFailed            = errors.MustNewCode("engine.exec_failed")
	ErrQueryFailed           = errors.MustNewCode("engine.query_failed")
	ErrScanFailed            = errors.MustNewCode("engine.scan_failed")
	ErrViewCreateFailed      = errors.MustNewCode("engine.view_create_failed")
	ErrTableRegisterFailed   = errors.MustNewCode("engine.table_register_failed")
	ErrUnsupportedColumnType = errors.MustNewCode("engine.unsupported_column_type")
	ErrInvalidIdentifier     = errors.MustNewCode("engine.invalid_identifier")
	ErrCloseFailed           = errors.MustNewCode("engine.close_failed")
)
