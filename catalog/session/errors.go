package session

import "github.com/gear6io/floe/pkg/errors"

// Session catalog-specific error codes
var (
	ErrMetadataBuilderFailed    = errors.MustNewCode("catalog.session.metadata_builder_failed")
	ErrMetadataUpdateFailed     = errors.MustNewCode("catalog.session.metadata_update_failed")
	ErrMetadataBuildFailed      = errors.MustNewCode("catalog.session.metadata_build_failed")
	ErrMetadataValidationFailed = errors.MustNewCode("catalog.session.metadata_validation_failed")
)
