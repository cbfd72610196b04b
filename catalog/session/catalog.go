package session

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	icebergio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog/shared"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"
)

// Type identifies session catalogs to iceberg-go.
const Type catalog.Type = "in-memory"

// tableState is the catalog's record of one table. Metadata objects are held
// directly, the metadata location strings are synthetic memory:// URIs that
// are never read back from storage.
type tableState struct {
	metadata table.Metadata
	location string
	version  int
}

// Catalog implements the iceberg-go catalog.Catalog interface entirely in
// process memory. Table metadata never touches storage, but table locations
// point at the real warehouse, so transaction commits still write real data
// files and produce real snapshots. Everything is gone when the process
// exits.
type Catalog struct {
	name              string
	warehouseLocation string
	fileIO            icebergio.IO
	logger            zerolog.Logger

	mu         sync.RWMutex
	namespaces map[string]iceberg.Properties
	tables     map[string]*tableState

	// handles caches loaded table handles per key. Commits through the
	// catalog refresh it, writes that bypass the catalog do not, which is
	// why callers can turn it off with cache-enabled=false.
	cacheEnabled bool
	handles      map[string]*table.Table
}

// NewCatalog creates an in-memory catalog writing data files under
// warehouseLocation. props["cache-enabled"]="false" disables table handle
// caching, props["default-namespace"] names a namespace to create eagerly.
func NewCatalog(name, warehouseLocation string, fileIO icebergio.IO, props iceberg.Properties, logger zerolog.Logger) (*Catalog, error) {
	if warehouseLocation == "" {
		return nil, shared.NewCatalogValidation("warehouse_location", "warehouse location is required for session catalog")
	}

	cat := &Catalog{
		name:              name,
		warehouseLocation: warehouseLocation,
		fileIO:            fileIO,
		logger:            logger.With().Str("catalog", name).Logger(),
		namespaces:        make(map[string]iceberg.Properties),
		tables:            make(map[string]*tableState),
		cacheEnabled:      props["cache-enabled"] != "false",
		handles:           make(map[string]*table.Table),
	}

	if ns := props["default-namespace"]; ns != "" {
		if err := cat.CreateNamespace(context.Background(), shared.StringToNamespace(ns), nil); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// Name returns the catalog name
func (c *Catalog) Name() string {
	return c.name
}

// CatalogType returns the catalog type
func (c *Catalog) CatalogType() catalog.Type {
	return Type
}

// Close drops all in-memory state.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.namespaces = make(map[string]iceberg.Properties)
	c.tables = make(map[string]*tableState)
	c.handles = make(map[string]*table.Table)
	return nil
}

func (c *Catalog) tableKey(namespace table.Identifier, tableName string) string {
	return fmt.Sprintf("%s.%s", shared.NamespaceToString(namespace), tableName)
}

func (c *Catalog) metadataLocation(identifier table.Identifier, version int) string {
	return fmt.Sprintf("memory://%s/%s/v%d.metadata.json", c.name, strings.Join(identifier, "/"), version)
}

// CreateTable creates a new table in the catalog
func (c *Catalog) CreateTable(ctx context.Context, identifier table.Identifier, schema *iceberg.Schema, opts ...catalog.CreateTableOpt) (*table.Table, error) {
	if len(identifier) < 2 {
		return nil, shared.NewCatalogValidation("table_identifier", "table identifier must have at least namespace and table name")
	}

	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	// Data files land at a real warehouse location even though the
	// metadata stays in memory.
	location := shared.TableLocation(c.warehouseLocation, identifier)
	properties := iceberg.Properties{
		"format-version": "2",
		"created-by":     "floe",
	}

	// CreateTableOpt closes over unexported config in this iceberg-go
	// release, so options cannot be applied here.
	_ = opts

	metadata, err := table.NewMetadata(schema, iceberg.UnpartitionedSpec, table.UnsortedSortOrder, location, properties)
	if err != nil {
		return nil, errors.New(ErrMetadataBuilderFailed, "failed to create table metadata", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.namespaces[shared.NamespaceToString(namespace)]; !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	key := c.tableKey(namespace, tableName)
	if _, exists := c.tables[key]; exists {
		return nil, catalog.ErrTableAlreadyExists
	}

	state := &tableState{
		metadata: metadata,
		location: c.metadataLocation(identifier, 1),
		version:  1,
	}
	c.tables[key] = state

	tbl := table.New(identifier, state.metadata, state.location, c.fileIO, c)
	if c.cacheEnabled {
		c.handles[key] = tbl
	}

	c.logger.Debug().Str("table", key).Msg("created table")
	return tbl, nil
}

// CommitTable commits table changes to the catalog
func (c *Catalog) CommitTable(ctx context.Context, tbl *table.Table, reqs []table.Requirement, updates []table.Update) (table.Metadata, string, error) {
	identifier := tbl.Identifier()
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	key := c.tableKey(namespace, tableName)

	c.mu.Lock()
	defer c.mu.Unlock()

	state, exists := c.tables[key]
	if !exists {
		return nil, "", catalog.ErrNoSuchTable
	}

	if tbl.MetadataLocation() != "" && tbl.MetadataLocation() != state.location {
		return nil, "", shared.NewCatalogConcurrentModification(
			fmt.Sprintf("table %s was updated concurrently, expected metadata at %s", tableName, tbl.MetadataLocation()))
	}

	currentMetadata := tbl.Metadata()
	for _, req := range reqs {
		if err := req.Validate(currentMetadata); err != nil {
			return nil, "", errors.New(ErrMetadataValidationFailed, "requirement validation failed", err)
		}
	}

	metadataBuilder, err := table.MetadataBuilderFromBase(currentMetadata)
	if err != nil {
		return nil, "", errors.New(ErrMetadataBuilderFailed, "failed to create metadata builder", err)
	}

	for _, update := range updates {
		if err := update.Apply(metadataBuilder); err != nil {
			return nil, "", errors.New(ErrMetadataUpdateFailed, fmt.Sprintf("failed to apply update %s", update.Action()), err)
		}
	}

	newMetadata, err := metadataBuilder.Build()
	if err != nil {
		return nil, "", errors.New(ErrMetadataBuildFailed, "failed to build new metadata", err)
	}

	state.version++
	state.metadata = newMetadata
	state.location = c.metadataLocation(identifier, state.version)

	if c.cacheEnabled {
		c.handles[key] = table.New(identifier, state.metadata, state.location, c.fileIO, c)
	}

	c.logger.Debug().Str("table", key).Int("version", state.version).Msg("committed table")

	return newMetadata, state.location, nil
}

// LoadTable loads a table from the catalog
func (c *Catalog) LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error) {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	key := c.tableKey(namespace, tableName)

	c.mu.Lock()
	defer c.mu.Unlock()

	state, exists := c.tables[key]
	if !exists {
		return nil, catalog.ErrNoSuchTable
	}

	if c.cacheEnabled {
		if tbl, ok := c.handles[key]; ok {
			return tbl, nil
		}
	}

	tbl := table.New(identifier, state.metadata, state.location, c.fileIO, c)
	if c.cacheEnabled {
		c.handles[key] = tbl
	}
	return tbl, nil
}

// DropTable drops a table from the catalog
func (c *Catalog) DropTable(ctx context.Context, identifier table.Identifier) error {
	key := c.tableKey(catalog.NamespaceFromIdent(identifier), catalog.TableNameFromIdent(identifier))

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[key]; !exists {
		return catalog.ErrNoSuchTable
	}

	delete(c.tables, key)
	delete(c.handles, key)

	c.logger.Debug().Str("table", key).Msg("dropped table")
	return nil
}

// RenameTable renames a table in the catalog
func (c *Catalog) RenameTable(ctx context.Context, from, to table.Identifier) (*table.Table, error) {
	fromKey := c.tableKey(catalog.NamespaceFromIdent(from), catalog.TableNameFromIdent(from))
	toNamespace := catalog.NamespaceFromIdent(to)
	toKey := c.tableKey(toNamespace, catalog.TableNameFromIdent(to))

	c.mu.Lock()
	defer c.mu.Unlock()

	state, exists := c.tables[fromKey]
	if !exists {
		return nil, catalog.ErrNoSuchTable
	}
	if _, exists := c.namespaces[shared.NamespaceToString(toNamespace)]; !exists {
		return nil, catalog.ErrNoSuchNamespace
	}
	if _, exists := c.tables[toKey]; exists {
		return nil, catalog.ErrTableAlreadyExists
	}

	delete(c.tables, fromKey)
	delete(c.handles, fromKey)

	state.location = c.metadataLocation(to, state.version)
	c.tables[toKey] = state

	tbl := table.New(to, state.metadata, state.location, c.fileIO, c)
	if c.cacheEnabled {
		c.handles[toKey] = tbl
	}
	return tbl, nil
}

// CheckTableExists checks if a table exists in the catalog
func (c *Catalog) CheckTableExists(ctx context.Context, identifier table.Identifier) (bool, error) {
	key := c.tableKey(catalog.NamespaceFromIdent(identifier), catalog.TableNameFromIdent(identifier))

	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.tables[key]
	return exists, nil
}

// ListTables lists all tables in a namespace in name order
func (c *Catalog) ListTables(ctx context.Context, namespace table.Identifier) iter.Seq2[table.Identifier, error] {
	return func(yield func(table.Identifier, error) bool) {
		namespaceStr := shared.NamespaceToString(namespace)

		c.mu.RLock()
		if _, exists := c.namespaces[namespaceStr]; !exists {
			c.mu.RUnlock()
			yield(nil, catalog.ErrNoSuchNamespace)
			return
		}

		prefix := namespaceStr + "."
		var names []string
		for key := range c.tables {
			if strings.HasPrefix(key, prefix) {
				names = append(names, strings.TrimPrefix(key, prefix))
			}
		}
		c.mu.RUnlock()

		sort.Strings(names)
		for _, name := range names {
			identifier := append(append(table.Identifier{}, namespace...), name)
			if !yield(identifier, nil) {
				return
			}
		}
	}
}

// CreateNamespace creates a new namespace in the catalog
func (c *Catalog) CreateNamespace(ctx context.Context, namespace table.Identifier, props iceberg.Properties) error {
	namespaceStr := shared.NamespaceToString(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.namespaces[namespaceStr]; exists {
		return catalog.ErrNamespaceAlreadyExists
	}

	propsCopy := make(iceberg.Properties, len(props)+1)
	for k, v := range props {
		propsCopy[k] = v
	}
	propsCopy["exists"] = "true"
	c.namespaces[namespaceStr] = propsCopy

	return nil
}

// DropNamespace removes a namespace from the catalog
func (c *Catalog) DropNamespace(ctx context.Context, namespace table.Identifier) error {
	namespaceStr := shared.NamespaceToString(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.namespaces[namespaceStr]; !exists {
		return catalog.ErrNoSuchNamespace
	}

	prefix := namespaceStr + "."
	for key := range c.tables {
		if strings.HasPrefix(key, prefix) {
			return catalog.ErrNamespaceNotEmpty
		}
	}

	delete(c.namespaces, namespaceStr)
	return nil
}

// CheckNamespaceExists checks if a namespace exists
func (c *Catalog) CheckNamespaceExists(ctx context.Context, namespace table.Identifier) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.namespaces[shared.NamespaceToString(namespace)]
	return exists, nil
}

// LoadNamespaceProperties loads properties for a namespace
func (c *Catalog) LoadNamespaceProperties(ctx context.Context, namespace table.Identifier) (iceberg.Properties, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	props, exists := c.namespaces[shared.NamespaceToString(namespace)]
	if !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	result := make(iceberg.Properties, len(props))
	for k, v := range props {
		result[k] = v
	}
	return result, nil
}

// UpdateNamespaceProperties updates properties for a namespace
func (c *Catalog) UpdateNamespaceProperties(ctx context.Context, namespace table.Identifier, removals []string, updates iceberg.Properties) (catalog.PropertiesUpdateSummary, error) {
	namespaceStr := shared.NamespaceToString(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	props, exists := c.namespaces[namespaceStr]
	if !exists {
		return catalog.PropertiesUpdateSummary{}, catalog.ErrNoSuchNamespace
	}

	var removed, updated, missing []string

	for _, key := range removals {
		// The 'exists' marker is not removable.
		if key == "exists" {
			missing = append(missing, key)
			continue
		}
		if _, ok := props[key]; ok {
			delete(props, key)
			removed = append(removed, key)
		} else {
			missing = append(missing, key)
		}
	}

	for key, value := range updates {
		props[key] = value
		updated = append(updated, key)
	}

	return catalog.PropertiesUpdateSummary{
		Removed: removed,
		Updated: updated,
		Missing: missing,
	}, nil
}

// ListNamespaces lists all namespaces, optionally filtered by parent
func (c *Catalog) ListNamespaces(ctx context.Context, parent table.Identifier) ([]table.Identifier, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []table.Identifier

	if len(parent) == 0 {
		for namespaceStr := range c.namespaces {
			if !strings.Contains(namespaceStr, ".") {
				result = append(result, shared.StringToNamespace(namespaceStr))
			}
		}
		return result, nil
	}

	parentPrefix := shared.NamespaceToString(parent) + "."
	for namespaceStr := range c.namespaces {
		if strings.HasPrefix(namespaceStr, parentPrefix) {
			remaining := strings.TrimPrefix(namespaceStr, parentPrefix)
			if !strings.Contains(remaining, ".") {
				result = append(result, shared.StringToNamespace(namespaceStr))
			}
		}
	}

	return result, nil
}
