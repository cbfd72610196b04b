package catalog

import "github.com/gear6io/floe/pkg/errors"

// Catalog factory error codes
var (
	ErrUnsupportedImpl     = errors.MustNewCode("catalog.unsupported_impl")
	ErrWarehouseOpenFailed = errors.MustNewCode("catalog.warehouse_open_failed")
)
