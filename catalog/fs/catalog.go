package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	icebergio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog/shared"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/warehouse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	indexFilePermissions = 0644
	maxWriteAttempts     = 5
	writeRetryDelay      = 100 * time.Millisecond
	defaultCacheTTL      = 5 * time.Minute
)

// CatalogData is the JSON structure stored in catalog.json.
type CatalogData struct {
	CatalogName string                    `json:"catalog_name"`
	Namespaces  map[string]NamespaceEntry `json:"namespaces"`
	Tables      map[string]TableEntry     `json:"tables"`
	Version     int                       `json:"version"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// NamespaceEntry represents a namespace in the catalog
type NamespaceEntry struct {
	Properties iceberg.Properties `json:"properties"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// TableEntry represents a table in the catalog
type TableEntry struct {
	Namespace                string    `json:"namespace"`
	Name                     string    `json:"name"`
	MetadataLocation         string    `json:"metadata_location"`
	PreviousMetadataLocation *string   `json:"previous_metadata_location,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// clone deep-copies the catalog data so writers never mutate a snapshot a
// concurrent reader may still be holding.
func (d *CatalogData) clone() *CatalogData {
	c := &CatalogData{
		CatalogName: d.CatalogName,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Namespaces:  make(map[string]NamespaceEntry, len(d.Namespaces)),
		Tables:      make(map[string]TableEntry, len(d.Tables)),
	}
	for k, v := range d.Namespaces {
		c.Namespaces[k] = v
	}
	for k, v := range d.Tables {
		c.Tables[k] = v
	}
	return c
}

// indexCache holds the most recently read catalog.json. Writes invalidate it.
type indexCache struct {
	data      *CatalogData
	etag      string
	timestamp time.Time
	ttl       time.Duration
	mutex     sync.RWMutex
}

func (c *indexCache) get() (*CatalogData, string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.data == nil || time.Since(c.timestamp) > c.ttl {
		return nil, "", false
	}
	return c.data, c.etag, true
}

func (c *indexCache) set(data *CatalogData, etag string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = data
	c.etag = etag
	c.timestamp = time.Now()
}

func (c *indexCache) invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = nil
	c.etag = ""
}

// Catalog implements the iceberg-go catalog.Catalog interface on a single
// catalog.json index file. The index is rewritten atomically (temp file plus
// rename) and guarded by an ETag check, so concurrent writers fail loudly
// instead of clobbering each other. Metadata files go through the warehouse
// FileIO.
type Catalog struct {
	name              string
	uri               string
	warehouseLocation string
	fileIO            icebergio.IO
	mutex             sync.RWMutex
	logger            zerolog.Logger
	cache             *indexCache
}

// NewCatalog creates a file-backed catalog whose index lives at uri.
// props["cache-enabled"]="false" disables index caching,
// props["default-namespace"] names a namespace to create eagerly.
func NewCatalog(name, uri, warehouseLocation string, fileIO icebergio.IO, props iceberg.Properties, logger zerolog.Logger) (*Catalog, error) {
	if uri == "" {
		return nil, shared.NewCatalogValidation("catalog_uri", "catalog URI is required for file catalog")
	}
	if warehouseLocation == "" {
		return nil, shared.NewCatalogValidation("warehouse_location", "warehouse location is required for file catalog")
	}

	cat := &Catalog{
		name:              name,
		uri:               uri,
		warehouseLocation: warehouseLocation,
		fileIO:            fileIO,
		logger:            logger.With().Str("catalog", name).Logger(),
	}
	if props["cache-enabled"] != "false" {
		cat.cache = &indexCache{ttl: defaultCacheTTL}
	}

	if err := cat.ensureIndexExists(); err != nil {
		return nil, err
	}

	if ns := props["default-namespace"]; ns != "" {
		if err := cat.ensureNamespace(context.Background(), shared.StringToNamespace(ns)); err != nil {
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
	return catalog.Hive
}

// Close invalidates the index cache. The index file needs no teardown.
func (c *Catalog) Close() error {
	if c.cache != nil {
		c.cache.invalidate()
	}
	return nil
}

func (c *Catalog) ensureNamespace(ctx context.Context, namespace table.Identifier) error {
	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.CreateNamespace(ctx, namespace, nil)
}

// ensureIndexExists creates an empty catalog.json if none is present.
func (c *Catalog) ensureIndexExists() error {
	if _, err := os.Stat(c.uri); os.IsNotExist(err) {
		now := time.Now()
		initial := &CatalogData{
			CatalogName: c.name,
			Namespaces:  make(map[string]NamespaceEntry),
			Tables:      make(map[string]TableEntry),
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		c.logger.Debug().Str("uri", c.uri).Msg("creating catalog index")
		return c.writeIndexAtomic(initial, "")
	}
	return nil
}

// readIndex reads catalog.json, consulting the cache first. The returned
// ETag feeds the compare-and-swap in writeIndexAtomic.
func (c *Catalog) readIndex() (*CatalogData, string, error) {
	if c.cache != nil {
		if data, etag, found := c.cache.get(); found {
			return data, etag, nil
		}
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	file, err := os.Open(c.uri)
	if err != nil {
		if os.IsNotExist(err) {
			now := time.Now()
			return &CatalogData{
				CatalogName: c.name,
				Namespaces:  make(map[string]NamespaceEntry),
				Tables:      make(map[string]TableEntry),
				Version:     1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}, "", nil
		}
		return nil, "", errors.New(ErrIndexOpenFailed, "failed to open catalog index", err)
	}
	defer file.Close()

	var data CatalogData
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, "", errors.New(ErrIndexDecodeFailed, "failed to decode catalog index", err)
	}

	if err := c.validateIndex(&data); err != nil {
		return nil, "", errors.New(ErrIndexValidationFailed, "catalog index validation failed", err)
	}

	info, err := file.Stat()
	if err != nil {
		return &data, "", nil
	}
	etag := fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())

	if c.cache != nil {
		c.cache.set(&data, etag)
	}

	return &data, etag, nil
}

func (c *Catalog) validateIndex(data *CatalogData) error {
	if data.CatalogName == "" {
		return shared.NewCatalogValidation("catalog_name", "catalog name cannot be empty")
	}
	if data.Version <= 0 {
		return shared.NewCatalogValidation("version", "catalog version must be positive")
	}

	for key, entry := range data.Tables {
		if entry.MetadataLocation == "" {
			return shared.NewCatalogValidation("table.metadata_location", "table metadata location cannot be empty")
		}
		expectedKey := fmt.Sprintf("%s.%s", entry.Namespace, entry.Name)
		if key != expectedKey {
			return shared.NewCatalogValidation("table_key", fmt.Sprintf("table key '%s' does not match '%s'", key, expectedKey))
		}
		if _, exists := data.Namespaces[entry.Namespace]; !exists {
			return shared.NewCatalogValidation("table.namespace", fmt.Sprintf("table references unknown namespace '%s'", entry.Namespace))
		}
	}

	return nil
}

// writeIndexAtomic writes catalog.json with retries. expectedETag guards
// against lost updates: writes against a changed file return a
// catalog.concurrent_modification error.
func (c *Catalog) writeIndexAtomic(data *CatalogData, expectedETag string) error {
	var lastErr error

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * writeRetryDelay)
			c.logger.Debug().Int("attempt", attempt+1).Msg("retrying catalog index write")
		}

		if err := c.writeIndexOnce(data, expectedETag); err != nil {
			lastErr = err
			if floeErr, ok := err.(*errors.Error); ok && floeErr.Code.Equals(shared.CatalogConcurrentMod) {
				return err
			}
			continue
		}

		if c.cache != nil {
			c.cache.invalidate()
		}
		return nil
	}

	return errors.New(ErrIndexWriteRetriesFailed, fmt.Sprintf("failed to write catalog index after %d attempts", maxWriteAttempts), lastErr)
}

func (c *Catalog) writeIndexOnce(data *CatalogData, expectedETag string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if expectedETag != "" {
		if info, err := os.Stat(c.uri); err == nil {
			currentETag := fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())
			if currentETag != expectedETag {
				return shared.NewCatalogConcurrentModification(
					fmt.Sprintf("catalog index was modified concurrently (expected ETag %s, current %s)", expectedETag, currentETag))
			}
		}
	}

	data.UpdatedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(c.uri), 0755); err != nil {
		return errors.New(ErrIndexDirectoryFailed, "failed to create catalog directory", err)
	}

	tempFile := c.uri + ".tmp"
	defer func() {
		if _, err := os.Stat(tempFile); err == nil {
			os.Remove(tempFile)
		}
	}()

	file, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, indexFilePermissions)
	if err != nil {
		return errors.New(ErrIndexFileCreateFailed, "failed to create temporary index file", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(data); err != nil {
		file.Close()
		return errors.New(ErrIndexFileEncodeFailed, "failed to encode catalog index", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return errors.New(ErrIndexFileSyncFailed, "failed to sync catalog index", err)
	}

	if err := file.Close(); err != nil {
		return errors.New(ErrIndexFileCloseFailed, "failed to close catalog index", err)
	}

	if err := os.Rename(tempFile, c.uri); err != nil {
		return errors.New(ErrIndexFileReplaceFailed, "failed to atomically replace catalog index", err)
	}

	return nil
}

func (c *Catalog) tableKey(namespace table.Identifier, tableName string) string {
	return fmt.Sprintf("%s.%s", shared.NamespaceToString(namespace), tableName)
}

// newMetadataLocation builds metadata file locations following the Iceberg
// convention of a zero-padded version plus a random UUID, so a failed commit
// can never collide with a retry.
func (c *Catalog) newMetadataLocation(identifier table.Identifier, version int) string {
	filename := fmt.Sprintf("%05d-%s.metadata.json", version, uuid.New().String())
	return warehouse.JoinLocation(shared.TableLocation(c.warehouseLocation, identifier), "metadata", filename)
}

// nextMetadataVersion parses the zero-padded version prefix of the current
// metadata file name.
func nextMetadataVersion(currentLocation string) int {
	if currentLocation == "" {
		return 1
	}

	base := path.Base(currentLocation)
	if idx := strings.Index(base, "-"); idx > 0 {
		if version, err := strconv.Atoi(base[:idx]); err == nil {
			return version + 1
		}
	}
	return 2
}

func (c *Catalog) validateTableIdentifier(identifier table.Identifier) error {
	if len(identifier) < 2 {
		return shared.NewCatalogValidation("table_identifier", "table identifier must have at least namespace and table name")
	}

	for i, part := range identifier[:len(identifier)-1] {
		if part == "" {
			return shared.NewCatalogValidation("namespace", fmt.Sprintf("namespace part %d cannot be empty", i))
		}
	}

	tableName := identifier[len(identifier)-1]
	if tableName == "" {
		return shared.NewCatalogValidation("table_name", "table name cannot be empty")
	}
	if strings.ContainsAny(tableName, "/\\:*?\"<>|") {
		return shared.NewCatalogValidation("table_name", "invalid characters in table name")
	}

	return nil
}

// CreateTable creates a new table in the catalog
func (c *Catalog) CreateTable(ctx context.Context, identifier table.Identifier, schema *iceberg.Schema, opts ...catalog.CreateTableOpt) (*table.Table, error) {
	if err := c.validateTableIdentifier(identifier); err != nil {
		return nil, err
	}

	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	data, etag, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	namespaceStr := shared.NamespaceToString(namespace)
	if _, exists := data.Namespaces[namespaceStr]; !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	tableKey := c.tableKey(namespace, tableName)
	if _, exists := data.Tables[tableKey]; exists {
		return nil, catalog.ErrTableAlreadyExists
	}

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

	metadataLocation := c.newMetadataLocation(identifier, 1)
	if err := shared.WriteMetadata(c.fileIO, metadataLocation, metadata); err != nil {
		return nil, errors.New(ErrTableMetadataWriteFailed, "failed to write table metadata", err)
	}

	now := time.Now()
	dataCopy := data.clone()
	dataCopy.Tables[tableKey] = TableEntry{
		Namespace:        namespaceStr,
		Name:             tableName,
		MetadataLocation: metadataLocation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("table", tableName).Str("namespace", namespaceStr).Msg("created table")

	return c.LoadTable(ctx, identifier, properties)
}

// CommitTable commits table changes to the catalog. Staleness is caught
// twice: against the index entry before building metadata, and by the index
// ETag during the final swap.
func (c *Catalog) CommitTable(ctx context.Context, tbl *table.Table, reqs []table.Requirement, updates []table.Update) (table.Metadata, string, error) {
	identifier := tbl.Identifier()
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	data, etag, err := c.readIndex()
	if err != nil {
		return nil, "", err
	}

	tableKey := c.tableKey(namespace, tableName)
	entry, exists := data.Tables[tableKey]
	if !exists {
		return nil, "", catalog.ErrNoSuchTable
	}

	if tbl.MetadataLocation() != "" && tbl.MetadataLocation() != entry.MetadataLocation {
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

	newVersion := nextMetadataVersion(entry.MetadataLocation)
	newMetadataLocation := c.newMetadataLocation(identifier, newVersion)

	if err := shared.WriteMetadata(c.fileIO, newMetadataLocation, newMetadata); err != nil {
		return nil, "", errors.New(ErrMetadataWriteFailed, "failed to write metadata file", err)
	}

	previous := entry.MetadataLocation
	entry.PreviousMetadataLocation = &previous
	entry.MetadataLocation = newMetadataLocation
	entry.UpdatedAt = time.Now()

	dataCopy := data.clone()
	dataCopy.Tables[tableKey] = entry

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return nil, "", err
	}

	c.logger.Debug().Str("table", tableName).Str("metadata_location", newMetadataLocation).Msg("committed table")

	return newMetadata, newMetadataLocation, nil
}

// LoadTable loads a table from the catalog
func (c *Catalog) LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error) {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	data, _, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	entry, exists := data.Tables[c.tableKey(namespace, tableName)]
	if !exists {
		return nil, catalog.ErrNoSuchTable
	}

	tbl, err := table.NewFromLocation(identifier, entry.MetadataLocation, c.fileIO, c)
	if err != nil {
		return nil, errors.New(ErrTableLoadFailed, "failed to load table", err)
	}

	return tbl, nil
}

// DropTable drops a table from the catalog
func (c *Catalog) DropTable(ctx context.Context, identifier table.Identifier) error {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	data, etag, err := c.readIndex()
	if err != nil {
		return err
	}

	tableKey := c.tableKey(namespace, tableName)
	if _, exists := data.Tables[tableKey]; !exists {
		return catalog.ErrNoSuchTable
	}

	dataCopy := data.clone()
	delete(dataCopy.Tables, tableKey)

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return err
	}

	c.logger.Debug().Str("table", tableKey).Msg("dropped table")
	return nil
}

// RenameTable renames a table in the catalog
func (c *Catalog) RenameTable(ctx context.Context, from, to table.Identifier) (*table.Table, error) {
	if err := c.validateTableIdentifier(from); err != nil {
		return nil, err
	}
	if err := c.validateTableIdentifier(to); err != nil {
		return nil, err
	}

	data, etag, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	fromKey := c.tableKey(catalog.NamespaceFromIdent(from), catalog.TableNameFromIdent(from))
	toNamespace := catalog.NamespaceFromIdent(to)
	toKey := c.tableKey(toNamespace, catalog.TableNameFromIdent(to))

	entry, exists := data.Tables[fromKey]
	if !exists {
		return nil, catalog.ErrNoSuchTable
	}
	if _, exists := data.Namespaces[shared.NamespaceToString(toNamespace)]; !exists {
		return nil, catalog.ErrNoSuchNamespace
	}
	if _, exists := data.Tables[toKey]; exists {
		return nil, catalog.ErrTableAlreadyExists
	}

	entry.Namespace = shared.NamespaceToString(toNamespace)
	entry.Name = catalog.TableNameFromIdent(to)
	entry.UpdatedAt = time.Now()

	dataCopy := data.clone()
	delete(dataCopy.Tables, fromKey)
	dataCopy.Tables[toKey] = entry

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return nil, err
	}

	return c.LoadTable(ctx, to, nil)
}

// CheckTableExists checks if a table exists in the catalog
func (c *Catalog) CheckTableExists(ctx context.Context, identifier table.Identifier) (bool, error) {
	data, _, err := c.readIndex()
	if err != nil {
		return false, err
	}

	_, exists := data.Tables[c.tableKey(catalog.NamespaceFromIdent(identifier), catalog.TableNameFromIdent(identifier))]
	return exists, nil
}

// ListTables lists all tables in a namespace
func (c *Catalog) ListTables(ctx context.Context, namespace table.Identifier) iter.Seq2[table.Identifier, error] {
	return func(yield func(table.Identifier, error) bool) {
		data, _, err := c.readIndex()
		if err != nil {
			yield(nil, err)
			return
		}

		namespaceStr := shared.NamespaceToString(namespace)
		if _, exists := data.Namespaces[namespaceStr]; !exists {
			yield(nil, catalog.ErrNoSuchNamespace)
			return
		}

		for _, entry := range data.Tables {
			if entry.Namespace == namespaceStr {
				identifier := append(append(table.Identifier{}, namespace...), entry.Name)
				if !yield(identifier, nil) {
					return
				}
			}
		}
	}
}

// CreateNamespace creates a new namespace in the catalog
func (c *Catalog) CreateNamespace(ctx context.Context, namespace table.Identifier, props iceberg.Properties) error {
	data, etag, err := c.readIndex()
	if err != nil {
		return err
	}

	namespaceStr := shared.NamespaceToString(namespace)
	if _, exists := data.Namespaces[namespaceStr]; exists {
		return catalog.ErrNamespaceAlreadyExists
	}

	propsCopy := make(iceberg.Properties, len(props)+1)
	for k, v := range props {
		if err := c.validateProperty(k, v); err != nil {
			return err
		}
		propsCopy[k] = v
	}
	propsCopy["exists"] = "true"

	now := time.Now()
	dataCopy := data.clone()
	dataCopy.Namespaces[namespaceStr] = NamespaceEntry{
		Properties: propsCopy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return err
	}

	c.logger.Debug().Str("namespace", namespaceStr).Msg("created namespace")
	return nil
}

// DropNamespace removes a namespace from the catalog
func (c *Catalog) DropNamespace(ctx context.Context, namespace table.Identifier) error {
	data, etag, err := c.readIndex()
	if err != nil {
		return err
	}

	namespaceStr := shared.NamespaceToString(namespace)
	if _, exists := data.Namespaces[namespaceStr]; !exists {
		return catalog.ErrNoSuchNamespace
	}

	for _, entry := range data.Tables {
		if entry.Namespace == namespaceStr {
			return catalog.ErrNamespaceNotEmpty
		}
	}

	dataCopy := data.clone()
	delete(dataCopy.Namespaces, namespaceStr)

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return err
	}

	c.logger.Debug().Str("namespace", namespaceStr).Msg("dropped namespace")
	return nil
}

// CheckNamespaceExists checks if a namespace exists
func (c *Catalog) CheckNamespaceExists(ctx context.Context, namespace table.Identifier) (bool, error) {
	data, _, err := c.readIndex()
	if err != nil {
		return false, err
	}

	_, exists := data.Namespaces[shared.NamespaceToString(namespace)]
	return exists, nil
}

// LoadNamespaceProperties loads properties for a namespace
func (c *Catalog) LoadNamespaceProperties(ctx context.Context, namespace table.Identifier) (iceberg.Properties, error) {
	data, _, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	entry, exists := data.Namespaces[shared.NamespaceToString(namespace)]
	if !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	return entry.Properties, nil
}

// UpdateNamespaceProperties updates properties for a namespace
func (c *Catalog) UpdateNamespaceProperties(ctx context.Context, namespace table.Identifier, removals []string, updates iceberg.Properties) (catalog.PropertiesUpdateSummary, error) {
	data, etag, err := c.readIndex()
	if err != nil {
		return catalog.PropertiesUpdateSummary{}, err
	}

	namespaceStr := shared.NamespaceToString(namespace)
	entry, exists := data.Namespaces[namespaceStr]
	if !exists {
		return catalog.PropertiesUpdateSummary{}, catalog.ErrNoSuchNamespace
	}

	currentProperties := make(iceberg.Properties, len(entry.Properties))
	for k, v := range entry.Properties {
		currentProperties[k] = v
	}

	var removed, updated, missing []string

	for _, key := range removals {
		// The 'exists' marker is not removable.
		if key == "exists" {
			missing = append(missing, key)
			continue
		}
		if _, ok := currentProperties[key]; ok {
			delete(currentProperties, key)
			removed = append(removed, key)
		} else {
			missing = append(missing, key)
		}
	}

	for key, value := range updates {
		if err := c.validateProperty(key, value); err != nil {
			return catalog.PropertiesUpdateSummary{}, err
		}
		currentProperties[key] = value
		updated = append(updated, key)
	}

	entry.Properties = currentProperties
	entry.UpdatedAt = time.Now()

	dataCopy := data.clone()
	dataCopy.Namespaces[namespaceStr] = entry

	if err := c.writeIndexAtomic(dataCopy, etag); err != nil {
		return catalog.PropertiesUpdateSummary{}, err
	}

	return catalog.PropertiesUpdateSummary{
		Removed: removed,
		Updated: updated,
		Missing: missing,
	}, nil
}

func (c *Catalog) validateProperty(key, value string) error {
	if key == "" {
		return shared.NewCatalogValidation("property_key", "property key cannot be empty")
	}
	if key == "exists" {
		return shared.NewCatalogValidation("property_key", "property key 'exists' is reserved")
	}
	if len(key) > 255 {
		return shared.NewCatalogValidation("property_key", "property key too long (max 255 characters)")
	}
	if len(value) > 4096 {
		return shared.NewCatalogValidation("property_value", "property value too long (max 4096 characters)")
	}
	if strings.ContainsAny(key, "\n\r\t\000") {
		return shared.NewCatalogValidation("property_key", "property key contains invalid characters")
	}
	if strings.ContainsAny(value, "\000") {
		return shared.NewCatalogValidation("property_value", "property value contains null characters")
	}
	return nil
}

// ListNamespaces lists all top-level namespaces, or the direct children of
// parent.
func (c *Catalog) ListNamespaces(ctx context.Context, parent table.Identifier) ([]table.Identifier, error) {
	data, _, err := c.readIndex()
	if err != nil {
		return nil, err
	}

	var result []table.Identifier

	if len(parent) == 0 {
		for namespaceStr := range data.Namespaces {
			if !strings.Contains(namespaceStr, ".") {
				result = append(result, shared.StringToNamespace(namespaceStr))
			}
		}
		return result, nil
	}

	parentPrefix := shared.NamespaceToString(parent) + "."
	for namespaceStr := range data.Namespaces {
		if strings.HasPrefix(namespaceStr, parentPrefix) {
			remaining := strings.TrimPrefix(namespaceStr, parentPrefix)
			if !strings.Contains(remaining, ".") {
				result = append(result, shared.StringToNamespace(namespaceStr))
			}
		}
	}

	return result, nil
}
