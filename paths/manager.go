package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gear6io/floe/pkg/errors"
)

// Manager resolves the on-disk layout under a single base data directory.
// Catalog state, warehouse files and the run ledger all live below it so a
// matrix run can be wiped by removing one directory.
type Manager struct {
	basePath string
}

// NewManager creates a new path manager
func NewManager(basePath string) *Manager {
	return &Manager{
		basePath: basePath,
	}
}

// GetBasePath returns the base data path
func (pm *Manager) GetBasePath() string {
	return pm.basePath
}

// GetCatalogPath returns the catalog directory path
func (pm *Manager) GetCatalogPath() string {
	return filepath.Join(pm.basePath, "catalog")
}

// GetWarehousePath returns the warehouse directory holding table data and
// metadata files
func (pm *Manager) GetWarehousePath() string {
	return filepath.Join(pm.basePath, "warehouse")
}

// GetLedgerPath returns the run ledger database path
func (pm *Manager) GetLedgerPath() string {
	return filepath.Join(pm.basePath, "ledger.db")
}

// GetCatalogURI returns the catalog URI for a catalog implementation
func (pm *Manager) GetCatalogURI(impl string) string {
	if pm.basePath == "" {
		return ""
	}

	switch impl {
	case "fs":
		return filepath.Join(pm.GetCatalogPath(), "catalog.json")
	case "sqlite":
		return filepath.Join(pm.GetCatalogPath(), "catalog.db")
	case "session":
		return ":memory:"
	default:
		return ""
	}
}

// GetTablePath returns the warehouse directory for a table
func (pm *Manager) GetTablePath(namespace []string, tableName string) string {
	nsPath := strings.Join(namespace, "/")
	return filepath.Join(pm.GetWarehousePath(), nsPath, tableName)
}

// GetTableDataPath returns the data directory for a table
func (pm *Manager) GetTableDataPath(namespace []string, tableName string) string {
	return filepath.Join(pm.GetTablePath(namespace, tableName), "data")
}

// GetTableMetadataPath returns the metadata directory for a table
func (pm *Manager) GetTableMetadataPath(namespace []string, tableName string) string {
	return filepath.Join(pm.GetTablePath(namespace, tableName), "metadata")
}

// GetTableMetadataFile returns the metadata file path for a specific version
func (pm *Manager) GetTableMetadataFile(namespace []string, tableName string, version int) string {
	return filepath.Join(pm.GetTableMetadataPath(namespace, tableName), fmt.Sprintf("v%d.metadata.json", version))
}

// GetNamespacePath returns the warehouse path for a namespace
func (pm *Manager) GetNamespacePath(namespace []string) string {
	if len(namespace) == 0 {
		return pm.GetWarehousePath()
	}
	return filepath.Join(pm.GetWarehousePath(), filepath.Join(namespace...))
}

// EnsureDirectoryStructure creates all necessary directories
func (pm *Manager) EnsureDirectoryStructure() error {
	dirs := []string{
		pm.basePath,
		pm.GetCatalogPath(),
		pm.GetWarehousePath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.New(ErrDirectoryCreationFailed, "failed to create directory", err).AddContext("directory", dir)
		}
	}

	return nil
}
