package warehouse

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gear6io/floe/config"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeS3Endpoint(t *testing.T) string {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return u.Host
}

func fakeS3Config(t *testing.T) config.S3Config {
	return config.S3Config{
		Endpoint:  fakeS3Endpoint(t),
		AccessKey: "floe-access",
		SecretKey: "floe-secret",
		UseSSL:    false,
	}
}

func TestOpenDispatch(t *testing.T) {
	fileIO, err := Open("/tmp/warehouse", config.S3Config{})
	require.NoError(t, err)
	assert.IsType(t, LocalIO{}, fileIO)

	fileIO, err = Open("file:///tmp/warehouse", config.S3Config{})
	require.NoError(t, err)
	assert.IsType(t, LocalIO{}, fileIO)

	fileIO, err = Open("s3://warehouse/floe", fakeS3Config(t))
	require.NoError(t, err)
	assert.IsType(t, &S3IO{}, fileIO)

	_, err = Open("", config.S3Config{})
	assert.Error(t, err)

	_, err = Open("gs://warehouse", config.S3Config{})
	assert.Error(t, err)
}

func TestLocalIORoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "ns", "tbl", "metadata", "v1.metadata.json")

	require.NoError(t, WriteFile(LocalIO{}, target, []byte(`{"ok":true}`)))

	f, err := LocalIO{}.Open(target)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	require.NoError(t, LocalIO{}.Remove(target))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestS3IORoundTrip(t *testing.T) {
	ctx := context.Background()
	s3io, err := NewS3IO("warehouse", "floe", fakeS3Config(t))
	require.NoError(t, err)
	require.NoError(t, s3io.EnsureBucket(ctx))

	location := "s3://warehouse/floe/default/tbl/data/part-0.parquet"
	payload := []byte("parquet bytes go here")
	require.NoError(t, WriteFile(s3io, location, payload))

	f, err := s3io.Open(location)
	require.NoError(t, err)

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// random access
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	chunk := make([]byte, 7)
	_, err = f.ReadAt(chunk, 8)
	require.NoError(t, err)
	assert.Equal(t, "bytes g", string(chunk))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), info.Size())
	assert.Equal(t, "part-0.parquet", info.Name())

	require.NoError(t, f.Close())
	require.NoError(t, s3io.Remove(location))

	missing, err := s3io.Open(location)
	require.NoError(t, err)
	_, err = io.ReadAll(missing)
	assert.Error(t, err)
}

func TestS3IOEnsureBucketIdempotent(t *testing.T) {
	ctx := context.Background()
	s3io, err := NewS3IO("warehouse", "", fakeS3Config(t))
	require.NoError(t, err)

	require.NoError(t, s3io.EnsureBucket(ctx))
	require.NoError(t, s3io.EnsureBucket(ctx))
}

func TestS3IORejectsWrongBucket(t *testing.T) {
	s3io, err := NewS3IO("warehouse", "", fakeS3Config(t))
	require.NoError(t, err)

	_, err = s3io.Open("s3://other-bucket/key")
	require.Error(t, err)

	err = s3io.Remove("s3://other-bucket/key")
	require.Error(t, err)
}

func TestJoinLocation(t *testing.T) {
	assert.Equal(t, "s3://warehouse/floe/ns/tbl", JoinLocation("s3://warehouse/floe", "ns", "tbl"))
	assert.Equal(t, "/data/warehouse/ns/tbl", JoinLocation("/data/warehouse/", "ns/", "/tbl"))
	assert.Equal(t, "/base/x", JoinLocation("/base", "x"))
}
