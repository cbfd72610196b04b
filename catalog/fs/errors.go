package fs

import "github.com/gear6io/floe/pkg/errors"

// File catalog-specific error codes
var (
	// Index file operations
	ErrIndexOpenFailed          = errors.MustNewCode("catalog.fs.index_open_failed")
	ErrIndexDecodeFailed        = errors.MustNewCode("catalog.fs.index_decode_failed")
	ErrIndexValidationFailed    = errors.MustNewCode("catalog.fs.index_validation_failed")
	ErrIndexDirectoryFailed     = errors.MustNewCode("catalog.fs.index_directory_failed")
	ErrIndexFileCreateFailed    = errors.MustNewCode("catalog.fs.index_file_create_failed")
	ErrIndexFileEncodeFailed    = errors.MustNewCode("catalog.fs.index_file_encode_failed")
	ErrIndexFileSyncFailed      = errors.MustNewCode("catalog.fs.index_file_sync_failed")
	ErrIndexFileCloseFailed     = errors.MustNewCode("catalog.fs.index_file_close_failed")
	ErrIndexFileReplaceFailed   = errors.MustNewCode("catalog.fs.index_file_replace_failed")
	ErrIndexWriteRetriesFailed  = errors.MustNewCode("catalog.fs.index_write_retries_failed")

	// Table operations
	ErrTableMetadataWriteFailed = errors.MustNewCode("catalog.fs.table_metadata_write_failed")
	ErrTableLoadFailed          = errors.MustNewCode("catalog.fs.table_load_failed")

	// Metadata operations
	ErrMetadataValidationFailed = errors.MustNewCode("catalog.fs.metadata_validation_failed")
	ErrMetadataBuilderFailed    = errors.MustNewCode("catalog.fs.metadata_builder_failed")
	ErrMetadataUpdateFailed     = errors.MustNewCode("catalog.fs.metadata_update_failed")
	ErrMetadataBuildFailed      = errors.MustNewCode("catalog.fs.metadata_build_failed")
	ErrMetadataWriteFailed      = errors.MustNewCode("catalog.fs.metadata_write_failed")
)
