// Package warehouse selects the file IO behind a warehouse location. Table
// data and metadata are written through iceberg-go's io interfaces so the
// same catalog code serves local directories and object stores.
package warehouse

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	icebergio "github.com/apache/iceberg-go/io"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/pkg/errors"
)

// Open returns the file IO serving a warehouse location. Plain paths and
// file:// URIs map to the local filesystem, s3:// locations to an S3 client
// built from cfg.
func Open(location string, cfg config.S3Config) (icebergio.IO, error) {
	if location == "" {
		return nil, errors.New(ErrInvalidLocation, "warehouse location is empty", nil)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, errors.New(ErrInvalidLocation, "failed to parse warehouse location", err).AddContext("location", location)
	}

	switch u.Scheme {
	case "", "file":
		return LocalIO{}, nil
	case "s3":
		prefix := strings.Trim(u.Path, "/")
		return NewS3IO(u.Host, prefix, cfg)
	default:
		return nil, errors.Newf(ErrUnsupportedScheme, "unsupported warehouse scheme %q", u.Scheme).
			AddContext("location", location)
	}
}

// LocalIO is the local-filesystem warehouse IO. Reads and removes delegate
// to iceberg-go's LocalFS; Create additionally makes parent directories so
// fresh table trees can be written without preparation.
type LocalIO struct {
	icebergio.LocalFS
}

// Create creates name for writing, making parent directories as needed
func (LocalIO) Create(name string) (icebergio.FileWriter, error) {
	p := strings.TrimPrefix(name, "file://")
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, errors.New(ErrWriteFailed, "failed to create parent directories", err).AddContext("path", p)
	}
	return os.Create(p)
}

// WriteFile writes data to location through fileIO in one shot
func WriteFile(fileIO icebergio.IO, location string, data []byte) error {
	wf, ok := fileIO.(icebergio.WriteFileIO)
	if !ok {
		return errors.Newf(ErrWriteUnsupported, "file IO %T does not support writes", fileIO)
	}

	out, err := wf.Create(location)
	if err != nil {
		return errors.New(ErrWriteFailed, "failed to create file", err).AddContext("location", location)
	}

	if _, err := out.Write(data); err != nil {
		out.Close()
		return errors.New(ErrWriteFailed, "failed to write file", err).AddContext("location", location)
	}

	if err := out.Close(); err != nil {
		return errors.New(ErrWriteFailed, "failed to finish file write", err).AddContext("location", location)
	}

	return nil
}

// JoinLocation joins path segments onto a warehouse location without
// mangling URI schemes.
func JoinLocation(base string, parts ...string) string {
	joined := strings.TrimRight(base, "/")
	for _, part := range parts {
		joined += "/" + strings.Trim(part, "/")
	}
	return joined
}
