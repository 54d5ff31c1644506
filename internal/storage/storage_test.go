package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	cmstorage "github.com/chartmuseum/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/merchplan/internal/config"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 23, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "reports/clearance/2026/03/01/run-1.csv", ReportKey("/reports/", "clearance", "run-1", at))
	assert.Equal(t, "forecast/2026/03/01/abc.csv", ReportKey("", "forecast", "abc", at))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/csv", contentTypeFor("a/b.CSV"))
	assert.Equal(t, "application/json", contentTypeFor("x.json"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("noext"))
}

func TestNew(t *testing.T) {
	s, err := New(config.StorageConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = New(config.StorageConfig{Enabled: true, Driver: "ftp"})
	assert.Error(t, err)

	base := config.StorageConfig{
		Enabled:   true,
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "reports",
		Region:    "us-east-1",
	}

	base.Driver = "minio"
	s, err = New(base)
	require.NoError(t, err)
	assert.IsType(t, &MinioClient{}, s)

	base.Driver = "S3"
	s, err = New(base)
	require.NoError(t, err)
	assert.IsType(t, &BackendClient{}, s)
}

func TestValidateStorageConfig(t *testing.T) {
	ok := config.StorageConfig{Endpoint: "e", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	assert.NoError(t, validateStorageConfig(ok))

	missing := []config.StorageConfig{
		{AccessKey: "a", SecretKey: "s", Bucket: "b"},
		{Endpoint: "e", SecretKey: "s", Bucket: "b"},
		{Endpoint: "e", AccessKey: "a", Bucket: "b"},
		{Endpoint: "e", AccessKey: "a", SecretKey: "s"},
	}
	for _, cfg := range missing {
		assert.Error(t, validateStorageConfig(cfg))
	}
}

func TestBackendClient_LocalRoundTrip(t *testing.T) {
	root := t.TempDir()
	client := NewBackendClientWith(cmstorage.NewLocalFilesystemBackend(root))
	ctx := context.Background()

	key := "reports/forecast/2026/03/01/run-1.csv"
	data := []byte("sku_code,period_index,point_forecast\nJKT-001,9,58185.7\n")
	require.NoError(t, client.UploadObject(ctx, key, data))

	objects, err := client.ListObjects(ctx, "reports/forecast/2026/03/01")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, key, objects[0].Key)

	dest := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, client.DownloadObject(ctx, key, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBackendClient_CancelledContext(t *testing.T) {
	client := NewBackendClientWith(cmstorage.NewLocalFilesystemBackend(t.TempDir()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, client.UploadObject(ctx, "k", []byte("x")), context.Canceled)
	_, err := client.ListObjects(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
