package shared

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/apache/iceberg-go/catalog"
	icebergio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/gear6io/floe/warehouse"
)

// Metadata helper error codes
var (
	ErrMetadataSerializeFailed = errors.MustNewCode("catalog.metadata_serialize_failed")
	ErrMetadataWriteFailed     = errors.MustNewCode("catalog.metadata_write_failed")
)

// NamespaceToString flattens a namespace identifier with dots
func NamespaceToString(namespace table.Identifier) string {
	return strings.Join(namespace, ".")
}

// StringToNamespace parses a dotted namespace string
func StringToNamespace(namespaceStr string) table.Identifier {
	if namespaceStr == "" {
		return table.Identifier{}
	}
	return catalog.ToIdentifier(namespaceStr)
}

// TableLocation returns the warehouse location of a table
func TableLocation(warehouseLocation string, identifier table.Identifier) string {
	namespace := catalog.NamespaceFromIdent(identifier)
	tableName := catalog.TableNameFromIdent(identifier)
	parts := append(append([]string{}, namespace...), tableName)
	return warehouse.JoinLocation(warehouseLocation, parts...)
}

// MetadataLocation returns the versioned metadata file location of a table
func MetadataLocation(warehouseLocation string, identifier table.Identifier, version int) string {
	return warehouse.JoinLocation(TableLocation(warehouseLocation, identifier),
		"metadata", fmt.Sprintf("v%d.metadata.json", version))
}

// NextMetadataVersion parses the version out of a v<N>.metadata.json
// location and returns N+1. An empty location starts at 1; an unparseable
// one falls back to 2.
func NextMetadataVersion(currentMetadataLocation string) int {
	if currentMetadataLocation == "" {
		return 1
	}

	filename := path.Base(currentMetadataLocation)
	if strings.HasPrefix(filename, "v") && strings.HasSuffix(filename, ".metadata.json") {
		versionStr := filename[1:strings.Index(filename, ".")]
		if version, err := strconv.Atoi(versionStr); err == nil {
			return version + 1
		}
	}

	return 2
}

// WriteMetadata serializes table metadata and writes it through the
// warehouse IO
func WriteMetadata(fileIO icebergio.IO, location string, metadata table.Metadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return errors.New(ErrMetadataSerializeFailed, "failed to serialize metadata", err)
	}

	if err := warehouse.WriteFile(fileIO, location, metadataJSON); err != nil {
		return errors.New(ErrMetadataWriteFailed, "failed to write metadata file", err).AddContext("location", location)
	}

	return nil
}
