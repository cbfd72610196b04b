package session

import (
	"context"
	"strings"
	"testing"

	"github.com/apache/iceberg-go"
	icebergcatalog "github.com/apache/iceberg-go/catalog"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/catalog/shared"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/warehouse"
	"github.com/rs/zerolog"
)

func newTestCatalog(t *testing.T, props iceberg.Properties) *Catalog {
	t.Helper()

	cat, err := NewCatalog("floe-session-catalog", t.TempDir(), warehouse.LocalIO{}, props, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	return cat
}

func testSchema() *iceberg.Schema {
	return iceberg.NewSchema(0, iceberg.NestedField{
		ID:       1,
		Name:     "id",
		Type:     iceberg.PrimitiveTypes.Int64,
		Required: true,
	})
}

func createTestTable(t *testing.T, cat *Catalog, ident table.Identifier) *table.Table {
	t.Helper()

	ctx := context.Background()
	ns := icebergcatalog.NamespaceFromIdent(ident)
	if exists, _ := cat.CheckNamespaceExists(ctx, ns); !exists {
		if err := cat.CreateNamespace(ctx, ns, nil); err != nil {
			t.Fatalf("Failed to create namespace: %v", err)
		}
	}

	tbl, err := cat.CreateTable(ctx, ident, testSchema())
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return tbl
}

func TestNewCatalog(t *testing.T) {
	cat := newTestCatalog(t, nil)

	if cat.Name() != "floe-session-catalog" {
		t.Errorf("Expected catalog name 'floe-session-catalog', got '%s'", cat.Name())
	}
	if cat.CatalogType() != Type {
		t.Errorf("Expected catalog type '%s', got '%s'", Type, cat.CatalogType())
	}
	if !cat.cacheEnabled {
		t.Error("Handle cache should be enabled by default")
	}
}

func TestNewCatalogRequiresWarehouse(t *testing.T) {
	_, err := NewCatalog("floe", "", warehouse.LocalIO{}, nil, zerolog.Nop())
	if err == nil {
		t.Error("Expected error for empty warehouse location")
	}
}

func TestDefaultNamespaceBootstrap(t *testing.T) {
	cat := newTestCatalog(t, iceberg.Properties{"default-namespace": "floe"})

	exists, err := cat.CheckNamespaceExists(context.Background(), table.Identifier{"floe"})
	if err != nil {
		t.Fatalf("Failed to check namespace existence: %v", err)
	}
	if !exists {
		t.Error("Default namespace should exist after catalog construction")
	}
}

func TestCreateTableUsesSyntheticMetadataLocation(t *testing.T) {
	cat := newTestCatalog(t, nil)
	tbl := createTestTable(t, cat, table.Identifier{"ns", "events"})

	if !strings.HasPrefix(tbl.MetadataLocation(), "memory://") {
		t.Errorf("Expected memory:// metadata location, got %s", tbl.MetadataLocation())
	}
	if !strings.HasSuffix(tbl.MetadataLocation(), "v1.metadata.json") {
		t.Errorf("Expected v1 metadata location, got %s", tbl.MetadataLocation())
	}
	if strings.HasPrefix(tbl.Metadata().Location(), "memory://") {
		t.Errorf("Table data location must be a real warehouse path, got %s", tbl.Metadata().Location())
	}
}

func TestCreateTableInNonExistentNamespace(t *testing.T) {
	cat := newTestCatalog(t, nil)

	_, err := cat.CreateTable(context.Background(), table.Identifier{"missing", "tbl"}, testSchema())
	if err != icebergcatalog.ErrNoSuchNamespace {
		t.Errorf("Expected ErrNoSuchNamespace, got: %v", err)
	}
}

func TestHandleCacheEnabled(t *testing.T) {
	cat := newTestCatalog(t, nil)
	ident := table.Identifier{"ns", "events"}
	createTestTable(t, cat, ident)

	ctx := context.Background()
	tbl1, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}
	tbl2, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}

	if tbl1 != tbl2 {
		t.Error("Cached loads should return the same table handle")
	}
}

func TestHandleCacheDisabled(t *testing.T) {
	cat := newTestCatalog(t, iceberg.Properties{"cache-enabled": "false"})
	ident := table.Identifier{"ns", "events"}
	createTestTable(t, cat, ident)

	ctx := context.Background()
	tbl1, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}
	tbl2, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}

	if tbl1 == tbl2 {
		t.Error("Uncached loads should return fresh table handles")
	}
}

func TestCommitTableAdvancesVersion(t *testing.T) {
	cat := newTestCatalog(t, nil)
	ident := table.Identifier{"ns", "events"}
	tbl := createTestTable(t, cat, ident)

	updates := []table.Update{
		table.NewSetPropertiesUpdate(iceberg.Properties{"write.format.default": "avro"}),
	}
	newMetadata, newLocation, err := cat.CommitTable(context.Background(), tbl, nil, updates)
	if err != nil {
		t.Fatalf("Failed to commit table: %v", err)
	}

	if !strings.HasSuffix(newLocation, "v2.metadata.json") {
		t.Errorf("Expected v2 metadata location, got %s", newLocation)
	}
	if newMetadata.Properties()["write.format.default"] != "avro" {
		t.Error("Committed property missing from new metadata")
	}

	reloaded, err := cat.LoadTable(context.Background(), ident, nil)
	if err != nil {
		t.Fatalf("Failed to reload table: %v", err)
	}
	if reloaded.MetadataLocation() != newLocation {
		t.Error("Cached handle should be refreshed after a commit")
	}
	if reloaded.Metadata().Properties()["write.format.default"] != "avro" {
		t.Error("Committed property should be visible on reload")
	}
}

func TestCommitTableRejectsStaleHandle(t *testing.T) {
	cat := newTestCatalog(t, iceberg.Properties{"cache-enabled": "false"})
	ident := table.Identifier{"ns", "events"}
	createTestTable(t, cat, ident)

	ctx := context.Background()
	tbl1, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}
	tbl2, err := cat.LoadTable(ctx, ident, nil)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}

	updates := []table.Update{
		table.NewSetPropertiesUpdate(iceberg.Properties{"owner": "first"}),
	}
	if _, _, err := cat.CommitTable(ctx, tbl1, nil, updates); err != nil {
		t.Fatalf("First commit should succeed: %v", err)
	}

	_, _, err = cat.CommitTable(ctx, tbl2, nil, updates)
	if err == nil {
		t.Fatal("Second commit from a stale handle should fail")
	}
	if !errors.HasCode(err, shared.CatalogConcurrentMod) {
		t.Errorf("Expected concurrent modification error, got: %v", err)
	}
}

func TestDropTable(t *testing.T) {
	cat := newTestCatalog(t, nil)
	ident := table.Identifier{"ns", "events"}
	createTestTable(t, cat, ident)

	ctx := context.Background()
	if err := cat.DropTable(ctx, ident); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	err := cat.DropTable(ctx, ident)
	if err != icebergcatalog.ErrNoSuchTable {
		t.Errorf("Expected ErrNoSuchTable, got: %v", err)
	}

	_, err = cat.LoadTable(ctx, ident, nil)
	if err != icebergcatalog.ErrNoSuchTable {
		t.Errorf("Expected ErrNoSuchTable after drop, got: %v", err)
	}
}

func TestRenameTable(t *testing.T) {
	cat := newTestCatalog(t, nil)
	from := table.Identifier{"ns", "old_name"}
	to := table.Identifier{"ns", "new_name"}
	createTestTable(t, cat, from)

	ctx := context.Background()
	renamed, err := cat.RenameTable(ctx, from, to)
	if err != nil {
		t.Fatalf("Failed to rename table: %v", err)
	}
	if !strings.Contains(renamed.MetadataLocation(), "new_name") {
		t.Errorf("Renamed metadata location should reference the new name, got %s", renamed.MetadataLocation())
	}

	exists, err := cat.CheckTableExists(ctx, from)
	if err != nil {
		t.Fatalf("Failed to check source table: %v", err)
	}
	if exists {
		t.Error("Source table should not exist after rename")
	}
}

func TestListTablesSorted(t *testing.T) {
	cat := newTestCatalog(t, nil)
	createTestTable(t, cat, table.Identifier{"ns", "zebra"})
	createTestTable(t, cat, table.Identifier{"ns", "alpha"})

	var names []string
	for ident, err := range cat.ListTables(context.Background(), table.Identifier{"ns"}) {
		if err != nil {
			t.Fatalf("Error listing tables: %v", err)
		}
		names = append(names, ident[len(ident)-1])
	}

	if len(names) != 2 || names[0] != "alpha" || names[1] != "zebra" {
		t.Errorf("Expected sorted [alpha zebra], got %v", names)
	}
}

func TestDropNamespaceWithTables(t *testing.T) {
	cat := newTestCatalog(t, nil)
	createTestTable(t, cat, table.Identifier{"ns", "events"})

	err := cat.DropNamespace(context.Background(), table.Identifier{"ns"})
	if err != icebergcatalog.ErrNamespaceNotEmpty {
		t.Errorf("Expected ErrNamespaceNotEmpty, got: %v", err)
	}
}

func TestCloseClearsState(t *testing.T) {
	cat := newTestCatalog(t, nil)
	ident := table.Identifier{"ns", "events"}
	createTestTable(t, cat, ident)

	if err := cat.Close(); err != nil {
		t.Fatalf("Failed to close catalog: %v", err)
	}

	exists, err := cat.CheckTableExists(context.Background(), ident)
	if err != nil {
		t.Fatalf("Failed to check table existence: %v", err)
	}
	if exists {
		t.Error("Tables should be gone after Close")
	}
}
