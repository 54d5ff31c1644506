package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/andresuchdata/merchplan/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations report export needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// New builds the configured object storage client. It returns nil when storage is disabled.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "minio":
		return NewMinioClient(cfg)
	case "s3":
		return NewBackendClient(cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// ReportKey builds a dated object key such as reports/clearance/2026/03/01/<runID>.csv.
func ReportKey(prefix, kind, runID string, at time.Time) string {
	return path.Join(
		strings.Trim(prefix, "/"),
		kind,
		at.UTC().Format("2006/01/02"),
		runID+".csv",
	)
}

func contentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
