package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	cmstorage "github.com/chartmuseum/storage"

	"github.com/andresuchdata/merchplan/internal/config"
)

// BackendClient implements ObjectStorage on top of a chartmuseum storage backend.
type BackendClient struct {
	backend cmstorage.Backend
}

// NewBackendClient builds a BackendClient backed by chartmuseum's Amazon S3 backend,
// using path-style addressing so it works against S3-compatible providers.
func NewBackendClient(cfg config.StorageConfig) (*BackendClient, error) {
	if err := validateStorageConfig(cfg); err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	// the AWS SDK under chartmuseum only reads credentials from the environment
	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := cmstorage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"",
		region,
		endpoint,
		"",
		&cmstorage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return NewBackendClientWith(backend), nil
}

// NewBackendClientWith wraps any chartmuseum backend, e.g. a local filesystem one.
func NewBackendClientWith(backend cmstorage.Backend) *BackendClient {
	return &BackendClient{backend: backend}
}

// ListObjects lists the objects directly under prefix. chartmuseum backends do not descend
// into nested folders and report paths relative to prefix, so keys are re-joined here.
func (c *BackendClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("storage list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(files))
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  path.Join(strings.Trim(prefix, "/"), object.Path),
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *BackendClient) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	object, err := c.backend.GetObject(key)
	if err != nil {
		return fmt.Errorf("storage get %s failed: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, object.Content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

// UploadObject stores data under key.
func (c *BackendClient) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("storage put %s failed: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*BackendClient)(nil)

func awsBool(v bool) *bool {
	return &v
}
