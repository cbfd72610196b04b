package warehouse

import (
	"bytes"
	"context"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	icebergio "github.com/apache/iceberg-go/io"
	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3IO implements iceberg-go's file IO against an S3-compatible object
// store. Locations are full s3:// URIs; keys outside the configured bucket
// are rejected.
type S3IO struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3IO builds an S3 warehouse IO for one bucket
func NewS3IO(bucket, prefix string, cfg config.S3Config) (*S3IO, error) {
	if bucket == "" {
		return nil, errors.New(ErrInvalidLocation, "s3 warehouse location has no bucket", nil)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.New(ErrClientInitFailed, "failed to create s3 client", err).AddContext("endpoint", cfg.Endpoint)
	}

	return &S3IO{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// EnsureBucket creates the warehouse bucket when it does not exist yet
func (s *S3IO) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.New(ErrBucketCheckFailed, "failed to check bucket", err).AddContext("bucket", s.bucket)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.New(ErrBucketCheckFailed, "failed to create bucket", err).AddContext("bucket", s.bucket)
	}
	return nil
}

// key resolves a location to an object key within the configured bucket
func (s *S3IO) key(name string) (string, error) {
	if !strings.Contains(name, "://") {
		if s.prefix != "" && !strings.HasPrefix(name, s.prefix+"/") {
			return path.Join(s.prefix, strings.TrimPrefix(name, "/")), nil
		}
		return strings.TrimPrefix(name, "/"), nil
	}

	u, err := url.Parse(name)
	if err != nil {
		return "", errors.New(ErrInvalidLocation, "failed to parse object location", err).AddContext("location", name)
	}
	if u.Scheme != "s3" {
		return "", errors.Newf(ErrUnsupportedScheme, "expected s3 location, got %q", name)
	}
	if u.Host != s.bucket {
		return "", errors.Newf(ErrWrongBucket, "location bucket %q does not match warehouse bucket %q", u.Host, s.bucket).
			AddContext("location", name)
	}

	return strings.TrimPrefix(u.Path, "/"), nil
}

// Open opens an object for reading
func (s *S3IO) Open(name string) (icebergio.File, error) {
	k, err := s.key(name)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(context.Background(), s.bucket, k, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	return &s3File{obj: obj, name: k}, nil
}

// Create opens an object for writing. Content is buffered and uploaded when
// the writer is closed.
func (s *S3IO) Create(name string) (icebergio.FileWriter, error) {
	k, err := s.key(name)
	if err != nil {
		return nil, err
	}

	return &s3FileWriter{
		client: s.client,
		bucket: s.bucket,
		key:    k,
	}, nil
}

// Remove deletes an object
func (s *S3IO) Remove(name string) error {
	k, err := s.key(name)
	if err != nil {
		return err
	}

	return s.client.RemoveObject(context.Background(), s.bucket, k, minio.RemoveObjectOptions{})
}

type s3File struct {
	obj  *minio.Object
	name string
}

func (f *s3File) Read(p []byte) (int, error) {
	return f.obj.Read(p)
}

func (f *s3File) ReadAt(p []byte, off int64) (int, error) {
	return f.obj.ReadAt(p, off)
}

func (f *s3File) Seek(offset int64, whence int) (int64, error) {
	return f.obj.Seek(offset, whence)
}

func (f *s3File) Close() error {
	return f.obj.Close()
}

func (f *s3File) Stat() (fs.FileInfo, error) {
	info, err := f.obj.Stat()
	if err != nil {
		return nil, err
	}

	return &s3FileInfo{
		name:    path.Base(f.name),
		size:    info.Size,
		modTime: info.LastModified,
	}, nil
}

type s3FileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (i *s3FileInfo) Name() string       { return i.name }
func (i *s3FileInfo) Size() int64        { return i.size }
func (i *s3FileInfo) Mode() fs.FileMode  { return 0 }
func (i *s3FileInfo) ModTime() time.Time { return i.modTime }
func (i *s3FileInfo) IsDir() bool        { return false }
func (i *s3FileInfo) Sys() any           { return nil }

type s3FileWriter struct {
	client *minio.Client
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *s3FileWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3FileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(context.Background(), w.bucket, w.key,
		bytes.NewReader(w.buf.Bytes()), int64(w.buf.Len()), minio.PutObjectOptions{})
	if err != nil {
		return errors.New(ErrWriteFailed, "failed to upload object", err).AddContext("key", w.key)
	}
	return nil
}
