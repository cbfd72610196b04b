// Package catalog constructs Iceberg catalogs by implementation name. The
// sqlite, fs and session implementations share one constructor shape so the
// validation matrix can spin each of them up from a RunConfig entry.
package catalog

import (
	"github.com/apache/iceberg-go"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	"github.com/gear6io/floe/catalog/fs"
	"github.com/gear6io/floe/catalog/session"
	"github.com/gear6io/floe/catalog/sqlite"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/paths"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/warehouse"
	"github.com/rs/zerolog"
)

// Supported catalog implementation names
const (
	ImplSQLite  = "sqlite"
	ImplFS      = "fs"
	ImplSession = "session"
)

// Interface defines the common interface for all catalog implementations
type Interface interface {
	icebergcatalog.Catalog
	Name() string
	Close() error
}

// New creates a catalog of the named implementation. Catalog state lives
// under the path manager's catalog directory; table data and metadata go to
// the configured warehouse, which defaults to the path manager's warehouse
// directory when cfg leaves it empty.
func New(cfg *config.Config, pm *paths.Manager, name, impl string, props iceberg.Properties, logger zerolog.Logger) (Interface, error) {
	warehouseLocation := cfg.Warehouse.URI
	if warehouseLocation == "" {
		warehouseLocation = pm.GetWarehousePath()
	}

	fileIO, err := warehouse.Open(warehouseLocation, cfg.Warehouse.S3)
	if err != nil {
		return nil, errors.New(ErrWarehouseOpenFailed, "failed to open warehouse file IO", err).
			AddContext("warehouse_location", warehouseLocation)
	}

	switch impl {
	case ImplSQLite:
		return sqlite.NewCatalog(name, pm.GetCatalogURI(ImplSQLite), warehouseLocation, fileIO, props, logger)
	case ImplFS:
		return fs.NewCatalog(name, pm.GetCatalogURI(ImplFS), warehouseLocation, fileIO, props, logger)
	case ImplSession:
		return session.NewCatalog(name, warehouseLocation, fileIO, props, logger)
	default:
		return nil, errors.New(ErrUnsupportedImpl, "unsupported catalog implementation", nil).
			AddContext("impl", impl)
	}
}
