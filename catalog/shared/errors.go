package shared

import (
	"github.com/gear6io/floe/pkg/errors"
)

// Catalog-specific error codes shared by the adapters
var (
	CatalogNotFound      = errors.MustNewCode("catalog.not_found")
	CatalogAlreadyExists = errors.MustNewCode("catalog.already_exists")
	CatalogValidation    = errors.MustNewCode("catalog.validation")
	CatalogConcurrentMod = errors.MustNewCode("catalog.concurrent_modification")
	CatalogUnsupported   = errors.MustNewCode("catalog.unsupported")
	CatalogInternal      = errors.MustNewCode("catalog.internal")
)

// Helper functions for common catalog errors
func NewCatalogNotFound(message string) *errors.Error {
	return errors.New(CatalogNotFound, message, nil)
}

func NewCatalogConcurrentModification(message string) *errors.Error {
	return errors.New(CatalogConcurrentMod, message, nil)
}

func NewCatalogAlreadyExists(message string) *errors.Error {
	return errors.New(CatalogAlreadyExists, message, nil)
}

func NewCatalogValidation(field, message string) *errors.Error {
	err := errors.New(CatalogValidation, message, nil)
	err.AddContext("field", field)
	return err
}

func NewCatalogUnsupported(message string) *errors.Error {
	return errors.New(CatalogUnsupported, message, nil)
}

func NewCatalogInternal(message string) *errors.Error {
	return errors.New(CatalogInternal, message, nil)
}
