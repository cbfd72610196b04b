package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	icebergio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog/shared"
	"github.com/gear6io/floe/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Catalog implements the iceberg-go catalog.Catalog interface on a SQLite
// database. Table pointers live in SQLite, metadata files go through the
// warehouse FileIO so the same catalog works against local disk or S3.
type Catalog struct {
	name              string
	dbPath            string
	warehouseLocation string
	db                *sql.DB
	fileIO            icebergio.IO
	logger            zerolog.Logger
}

// NewCatalog opens (or creates) a SQLite-backed catalog at dbPath.
// props["default-namespace"] names a namespace to create eagerly so callers
// can write tables without a separate bootstrap step.
func NewCatalog(name, dbPath, warehouseLocation string, fileIO icebergio.IO, props iceberg.Properties, logger zerolog.Logger) (*Catalog, error) {
	if dbPath == "" {
		return nil, shared.NewCatalogValidation("db_path", "database path is required for SQLite catalog")
	}
	if warehouseLocation == "" {
		return nil, shared.NewCatalogValidation("warehouse_location", "warehouse location is required for SQLite catalog")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.New(ErrCatalogDirectoryCreateFailed, "failed to create catalog directory", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.New(ErrDatabaseOpenFailed, "failed to open SQLite database", err)
	}

	return NewCatalogWithDB(name, dbPath, warehouseLocation, db, fileIO, props, logger)
}

// NewCatalogWithDB wraps an already-open database handle. Used by tests that
// want an in-memory database.
func NewCatalogWithDB(name, dbPath, warehouseLocation string, db *sql.DB, fileIO icebergio.IO, props iceberg.Properties, logger zerolog.Logger) (*Catalog, error) {
	cat := &Catalog{
		name:              name,
		dbPath:            dbPath,
		warehouseLocation: warehouseLocation,
		db:                db,
		fileIO:            fileIO,
		logger:            logger.With().Str("catalog", name).Logger(),
	}

	if err := cat.initializeDatabase(); err != nil {
		db.Close()
		return nil, errors.New(ErrDatabaseInitFailed, "failed to initialize database", err)
	}

	if ns := props["default-namespace"]; ns != "" {
		if err := cat.ensureNamespace(context.Background(), shared.StringToNamespace(ns)); err != nil {
			db.Close()
			return nil, err
		}
	}

	return cat, nil
}

// CatalogType returns the catalog type
func (c *Catalog) CatalogType() catalog.Type {
	return catalog.SQL
}

// Name returns the catalog name
func (c *Catalog) Name() string {
	return c.name
}

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return errors.New(ErrDatabaseCloseFailed, "failed to close SQLite catalog", err)
		}
	}
	return nil
}

// initializeDatabase creates the pointer tables if they don't exist. The
// layout matches the Iceberg JDBC catalog so existing tooling can read it.
func (c *Catalog) initializeDatabase() error {
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS iceberg_tables (
		catalog_name TEXT NOT NULL,
		table_namespace TEXT NOT NULL,
		table_name TEXT NOT NULL,
		metadata_location TEXT,
		previous_metadata_location TEXT,
		PRIMARY KEY (catalog_name, table_namespace, table_name)
	)`

	if _, err := c.db.Exec(createTablesSQL); err != nil {
		return errors.New(ErrTableCreateFailed, "failed to create iceberg_tables table", err)
	}

	createNamespacePropsSQL := `
	CREATE TABLE IF NOT EXISTS iceberg_namespace_properties (
		catalog_name TEXT NOT NULL,
		namespace TEXT NOT NULL,
		property_key TEXT NOT NULL,
		property_value TEXT,
		PRIMARY KEY (catalog_name, namespace, property_key)
	)`

	if _, err := c.db.Exec(createNamespacePropsSQL); err != nil {
		return errors.New(ErrTableCreateFailed, "failed to create iceberg_namespace_properties table", err)
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

// CreateTable creates a new table in the catalog
func (c *Catalog) CreateTable(ctx context.Context, identifier table.Identifier, schema *iceberg.Schema, opts ...catalog.CreateTableOpt) (*table.Table, error) {
	if len(identifier) == 0 {
		return nil, shared.NewCatalogValidation("table_identifier", "table identifier cannot be empty")
	}

	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)

	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return nil, errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}
	if !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	tableExists, err := c.CheckTableExists(ctx, identifier)
	if err != nil {
		return nil, errors.New(ErrTableCheckFailed, "failed to check table existence", err)
	}
	if tableExists {
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

	metadataLocation := shared.MetadataLocation(c.warehouseLocation, identifier, 1)
	if err := shared.WriteMetadata(c.fileIO, metadataLocation, metadata); err != nil {
		return nil, errors.New(ErrTableMetadataWriteFailed, "failed to write table metadata", err)
	}

	insertSQL := `
	INSERT INTO iceberg_tables (catalog_name, table_namespace, table_name, metadata_location, previous_metadata_location)
	VALUES (?, ?, ?, ?, ?)`

	namespaceStr := shared.NamespaceToString(namespace)
	_, err = c.db.ExecContext(ctx, insertSQL, c.name, namespaceStr, tableName, metadataLocation, nil)
	if err != nil {
		return nil, errors.New(ErrTableInsertFailed, "failed to insert table record", err)
	}

	c.logger.Debug().Str("table", identifier[len(identifier)-1]).Str("namespace", namespaceStr).Msg("created table")

	return c.LoadTable(ctx, identifier, properties)
}

// CommitTable commits table changes to the catalog. The metadata pointer is
// swapped with a compare-and-set on the previous location, a concurrent
// commit loses and gets a catalog.concurrent_modification error.
func (c *Catalog) CommitTable(ctx context.Context, tbl *table.Table, reqs []table.Requirement, updates []table.Update) (table.Metadata, string, error) {
	identifier := tbl.Identifier()
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	namespaceStr := shared.NamespaceToString(namespace)

	var currentMetadataLocation sql.NullString
	query := `SELECT metadata_location FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ? AND table_name = ?`
	err := c.db.QueryRowContext(ctx, query, c.name, namespaceStr, tableName).Scan(&currentMetadataLocation)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", catalog.ErrNoSuchTable
		}
		return nil, "", errors.New(ErrMetadataQueryFailed, "failed to query current metadata", err)
	}

	if tbl.MetadataLocation() != "" && tbl.MetadataLocation() != currentMetadataLocation.String {
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

	newVersion := shared.NextMetadataVersion(currentMetadataLocation.String)
	newMetadataLocation := shared.MetadataLocation(c.warehouseLocation, identifier, newVersion)

	if err := shared.WriteMetadata(c.fileIO, newMetadataLocation, newMetadata); err != nil {
		return nil, "", errors.New(ErrMetadataWriteFailed, "failed to write metadata file", err)
	}

	updateSQL := `
	UPDATE iceberg_tables SET metadata_location = ?, previous_metadata_location = ?
	WHERE catalog_name = ? AND table_namespace = ? AND table_name = ? AND metadata_location = ?`
	result, err := c.db.ExecContext(ctx, updateSQL, newMetadataLocation, currentMetadataLocation.String,
		c.name, namespaceStr, tableName, currentMetadataLocation.String)
	if err != nil {
		return nil, "", errors.New(ErrMetadataLocationUpdateFailed, "failed to update table metadata location", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, "", errors.New(ErrMetadataLocationUpdateFailed, "failed to read update result", err)
	}
	if rowsAffected == 0 {
		return nil, "", shared.NewCatalogConcurrentModification(
			fmt.Sprintf("table %s was updated concurrently during commit", tableName))
	}

	c.logger.Debug().Str("table", tableName).Str("metadata_location", newMetadataLocation).Msg("committed table")

	return newMetadata, newMetadataLocation, nil
}

// LoadTable loads a table from the catalog
func (c *Catalog) LoadTable(ctx context.Context, identifier table.Identifier, props iceberg.Properties) (*table.Table, error) {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	namespaceStr := shared.NamespaceToString(namespace)

	var metadataLocation sql.NullString
	query := `SELECT metadata_location FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ? AND table_name = ?`

	err := c.db.QueryRowContext(ctx, query, c.name, namespaceStr, tableName).Scan(&metadataLocation)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNoSuchTable
		}
		return nil, errors.New(ErrTableQueryFailed, "failed to query table", err)
	}

	if !metadataLocation.Valid || metadataLocation.String == "" {
		return nil, errors.New(ErrTableLoadFailed, fmt.Sprintf("table %s has no metadata location", tableName), nil)
	}

	tbl, err := table.NewFromLocation(identifier, metadataLocation.String, c.fileIO, c)
	if err != nil {
		return nil, errors.New(ErrTableLoadFailed, "failed to load table", err)
	}

	return tbl, nil
}

// DropTable drops a table from the catalog
func (c *Catalog) DropTable(ctx context.Context, identifier table.Identifier) error {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	namespaceStr := shared.NamespaceToString(namespace)

	deleteSQL := `DELETE FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ? AND table_name = ?`
	result, err := c.db.ExecContext(ctx, deleteSQL, c.name, namespaceStr, tableName)
	if err != nil {
		return errors.New(ErrTableDeleteFailed, "failed to delete table", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.New(ErrTableDeleteFailed, "failed to read delete result", err)
	}
	if rowsAffected == 0 {
		return catalog.ErrNoSuchTable
	}

	c.logger.Debug().Str("table", tableName).Str("namespace", namespaceStr).Msg("dropped table")
	return nil
}

// RenameTable renames a table in the catalog
func (c *Catalog) RenameTable(ctx context.Context, from, to table.Identifier) (*table.Table, error) {
	sourceTable, err := c.LoadTable(ctx, from, nil)
	if err != nil {
		return nil, err
	}

	toNamespace := catalog.NamespaceFromIdent(to)
	exists, err := c.CheckNamespaceExists(ctx, toNamespace)
	if err != nil {
		return nil, errors.New(ErrNamespaceCheckFailed, "failed to check destination namespace", err)
	}
	if !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	destExists, err := c.CheckTableExists(ctx, to)
	if err != nil {
		return nil, errors.New(ErrTableCheckFailed, "failed to check destination table", err)
	}
	if destExists {
		return nil, catalog.ErrTableAlreadyExists
	}

	updateSQL := `
	UPDATE iceberg_tables SET table_namespace = ?, table_name = ?
	WHERE catalog_name = ? AND table_namespace = ? AND table_name = ?`
	_, err = c.db.ExecContext(ctx, updateSQL,
		shared.NamespaceToString(toNamespace), catalog.TableNameFromIdent(to),
		c.name, shared.NamespaceToString(catalog.NamespaceFromIdent(from)), catalog.TableNameFromIdent(from))
	if err != nil {
		return nil, errors.New(ErrTableRenameFailed, "failed to rename table", err)
	}

	return table.New(to, sourceTable.Metadata(), sourceTable.MetadataLocation(), c.fileIO, c), nil
}

// CheckTableExists checks if a table exists in the catalog
func (c *Catalog) CheckTableExists(ctx context.Context, identifier table.Identifier) (bool, error) {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	namespaceStr := shared.NamespaceToString(namespace)

	var count int
	query := `SELECT COUNT(*) FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ? AND table_name = ?`
	err := c.db.QueryRowContext(ctx, query, c.name, namespaceStr, tableName).Scan(&count)
	if err != nil {
		return false, errors.New(ErrTableCheckFailed, "failed to check table existence", err)
	}

	return count > 0, nil
}

// ListTables lists all tables in a namespace
func (c *Catalog) ListTables(ctx context.Context, namespace table.Identifier) iter.Seq2[table.Identifier, error] {
	return func(yield func(table.Identifier, error) bool) {
		namespaceStr := shared.NamespaceToString(namespace)

		query := `SELECT table_name FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ? ORDER BY table_name`
		rows, err := c.db.QueryContext(ctx, query, c.name, namespaceStr)
		if err != nil {
			yield(nil, errors.New(ErrTableListFailed, "failed to list tables", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var tableName string
			if err := rows.Scan(&tableName); err != nil {
				yield(nil, errors.New(ErrTableScanFailed, "failed to scan table row", err))
				return
			}

			identifier := append(append(table.Identifier{}, namespace...), tableName)
			if !yield(identifier, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, errors.New(ErrTableIterationFailed, "error iterating table rows", err))
		}
	}
}

// CreateNamespace creates a new namespace
func (c *Catalog) CreateNamespace(ctx context.Context, namespace table.Identifier, props iceberg.Properties) error {
	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}
	if exists {
		return catalog.ErrNamespaceAlreadyExists
	}

	namespaceStr := shared.NamespaceToString(namespace)

	// The 'exists' marker row keeps properties-free namespaces visible.
	insertSQL := `INSERT INTO iceberg_namespace_properties (catalog_name, namespace, property_key, property_value) VALUES (?, ?, ?, ?)`
	if _, err := c.db.ExecContext(ctx, insertSQL, c.name, namespaceStr, "exists", "true"); err != nil {
		return errors.New(ErrNamespaceInsertFailed, "failed to create namespace", err)
	}

	for key, value := range props {
		if key == "exists" {
			continue
		}
		if _, err := c.db.ExecContext(ctx, insertSQL, c.name, namespaceStr, key, value); err != nil {
			return errors.New(ErrNamespaceInsertFailed, fmt.Sprintf("failed to set namespace property %s", key), err)
		}
	}

	c.logger.Debug().Str("namespace", namespaceStr).Msg("created namespace")
	return nil
}

// DropNamespace drops a namespace from the catalog
func (c *Catalog) DropNamespace(ctx context.Context, namespace table.Identifier) error {
	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}
	if !exists {
		return catalog.ErrNoSuchNamespace
	}

	namespaceStr := shared.NamespaceToString(namespace)

	var tableCount int
	countSQL := `SELECT COUNT(*) FROM iceberg_tables WHERE catalog_name = ? AND table_namespace = ?`
	if err := c.db.QueryRowContext(ctx, countSQL, c.name, namespaceStr).Scan(&tableCount); err != nil {
		return errors.New(ErrNamespaceCountFailed, "failed to count tables in namespace", err)
	}
	if tableCount > 0 {
		return catalog.ErrNamespaceNotEmpty
	}

	deleteSQL := `DELETE FROM iceberg_namespace_properties WHERE catalog_name = ? AND namespace = ?`
	if _, err := c.db.ExecContext(ctx, deleteSQL, c.name, namespaceStr); err != nil {
		return errors.New(ErrNamespaceDeleteFailed, "failed to delete namespace", err)
	}

	return nil
}

// CheckNamespaceExists checks if a namespace exists
func (c *Catalog) CheckNamespaceExists(ctx context.Context, namespace table.Identifier) (bool, error) {
	namespaceStr := shared.NamespaceToString(namespace)

	var count int
	query := `SELECT COUNT(*) FROM iceberg_namespace_properties WHERE catalog_name = ? AND namespace = ? AND property_key = 'exists'`
	err := c.db.QueryRowContext(ctx, query, c.name, namespaceStr).Scan(&count)
	if err != nil {
		return false, errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}

	return count > 0, nil
}

// LoadNamespaceProperties loads properties for a namespace
func (c *Catalog) LoadNamespaceProperties(ctx context.Context, namespace table.Identifier) (iceberg.Properties, error) {
	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return nil, errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}
	if !exists {
		return nil, catalog.ErrNoSuchNamespace
	}

	namespaceStr := shared.NamespaceToString(namespace)
	props := make(iceberg.Properties)

	query := `SELECT property_key, property_value FROM iceberg_namespace_properties WHERE catalog_name = ? AND namespace = ?`
	rows, err := c.db.QueryContext(ctx, query, c.name, namespaceStr)
	if err != nil {
		return nil, errors.New(ErrPropertiesLoadFailed, "failed to load namespace properties", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.New(ErrPropertiesScanFailed, "failed to scan property row", err)
		}
		props[key] = value.String
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New(ErrPropertiesIterationFailed, "error iterating property rows", err)
	}

	return props, nil
}

// UpdateNamespaceProperties updates properties for a namespace
func (c *Catalog) UpdateNamespaceProperties(ctx context.Context, namespace table.Identifier, removals []string, updates iceberg.Properties) (catalog.PropertiesUpdateSummary, error) {
	exists, err := c.CheckNamespaceExists(ctx, namespace)
	if err != nil {
		return catalog.PropertiesUpdateSummary{}, errors.New(ErrNamespaceCheckFailed, "failed to check namespace existence", err)
	}
	if !exists {
		return catalog.PropertiesUpdateSummary{}, catalog.ErrNoSuchNamespace
	}

	namespaceStr := shared.NamespaceToString(namespace)
	var removed, updated, missing []string

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.PropertiesUpdateSummary{}, errors.New(ErrPropertiesTransactionFailed, "failed to begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			c.logger.Warn().Err(err).Msg("failed to rollback properties transaction")
		}
	}()

	for _, key := range removals {
		// The 'exists' marker is not removable.
		if key == "exists" {
			missing = append(missing, key)
			continue
		}

		deleteSQL := `DELETE FROM iceberg_namespace_properties WHERE catalog_name = ? AND namespace = ? AND property_key = ?`
		result, err := tx.ExecContext(ctx, deleteSQL, c.name, namespaceStr, key)
		if err != nil {
			return catalog.PropertiesUpdateSummary{}, errors.New(ErrPropertiesRemoveFailed, fmt.Sprintf("failed to remove property %s", key), err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			removed = append(removed, key)
		} else {
			missing = append(missing, key)
		}
	}

	for key, value := range updates {
		var count int
		checkSQL := `SELECT COUNT(*) FROM iceberg_namespace_properties WHERE catalog_name = ? AND namespace = ? AND property_key = ?`
		err := tx.QueryRowContext(ctx, checkSQL, c.name, namespaceStr, key).Scan(&count)
		if err != nil {
			return catalog.PropertiesUpdateSummary{}, errors.New(ErrPropertiesCheckFailed, "failed to check property existence", err)
		}

		if count > 0 {
			updateSQL := `UPDATE iceberg_namespace_properties SET property_value = ? WHERE catalog_name = ? AND namespace = ? AND property_key = ?`
			_, err = tx.ExecContext(ctx, updateSQL, value, c.name, namespaceStr, key)
		} else {
			insertSQL := `INSERT INTO iceberg_namespace_properties (catalog_name, namespace, property_key, property_value) VALUES (?, ?, ?, ?)`
			_, err = tx.ExecContext(ctx, insertSQL, c.name, namespaceStr, key, value)
		}

		if err != nil {
			return catalog.PropertiesUpdateSummary{}, errors.New(ErrPropertiesUpdateFailed, fmt.Sprintf("failed to update property %s", key), err)
		}

		updated = append(updated, key)
	}

	if err := tx.Commit(); err != nil {
		return catalog.PropertiesUpdateSummary{}, errors.New(ErrPropertiesCommitFailed, "failed to commit transaction", err)
	}

	return catalog.PropertiesUpdateSummary{
		Removed: removed,
		Updated: updated,
		Missing: missing,
	}, nil
}

// ListNamespaces lists all namespaces, optionally filtered by parent
func (c *Catalog) ListNamespaces(ctx context.Context, parent table.Identifier) ([]table.Identifier, error) {
	query := `SELECT DISTINCT namespace FROM iceberg_namespace_properties WHERE catalog_name = ?`
	rows, err := c.db.QueryContext(ctx, query, c.name)
	if err != nil {
		return nil, errors.New(ErrNamespaceListFailed, "failed to list namespaces", err)
	}
	defer rows.Close()

	var namespaces []table.Identifier
	for rows.Next() {
		var namespaceStr string
		if err := rows.Scan(&namespaceStr); err != nil {
			return nil, errors.New(ErrNamespaceScanFailed, "failed to scan namespace row", err)
		}

		namespace := shared.StringToNamespace(namespaceStr)

		if len(parent) > 0 {
			if len(namespace) <= len(parent) {
				continue
			}
			match := true
			for i, part := range parent {
				if namespace[i] != part {
					match = false
					break
				}
			}
			if !match {
				continue
			}
		}

		namespaces = append(namespaces, namespace)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New(ErrNamespaceIterationFailed, "error iterating namespace rows", err)
	}

	return namespaces, nil
}
