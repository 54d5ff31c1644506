package ingest

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchplan/internal/storage"
)

// Kind names the extract a file holds. It is also the inbox folder the file is dropped in.
type Kind string

const (
	KindHistory   Kind = "history"
	KindSnapshots Kind = "snapshots"
	KindItems     Kind = "items"
)

var inboxKinds = []Kind{KindHistory, KindSnapshots, KindItems}

// InboxFile is an extract downloaded from the object storage inbox.
type InboxFile struct {
	Key  string
	Path string
	Kind Kind
}

// SKUCode returns the SKU a history extract belongs to, taken from its file name.
func (f InboxFile) SKUCode() string {
	return strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
}

// DownloadInbox pulls every CSV and XLSX file under prefix/history, prefix/snapshots and
// prefix/items into dir, keeping the kind folder.
func DownloadInbox(ctx context.Context, store storage.ObjectStorage, prefix, dir string) ([]InboxFile, error) {
	if dir == "" {
		return nil, fmt.Errorf("download dir is required")
	}

	var files []InboxFile
	for _, kind := range inboxKinds {
		listPrefix := path.Join(strings.Trim(prefix, "/"), string(kind))
		objects, err := store.ListObjects(ctx, listPrefix)
		if err != nil {
			return nil, fmt.Errorf("list inbox %s: %w", listPrefix, err)
		}

		for _, obj := range objects {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			ext := strings.ToLower(path.Ext(obj.Key))
			if ext != ".csv" && ext != ".xlsx" && ext != ".xlsm" {
				log.Debug().Str("key", obj.Key).Msg("inbox: skipping unsupported file")
				continue
			}

			localPath := filepath.Join(dir, string(kind), path.Base(obj.Key))
			if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create download dir: %w", err)
			}
			if err := store.DownloadObject(ctx, obj.Key, localPath); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", obj.Key, err)
			}
			files = append(files, InboxFile{Key: obj.Key, Path: localPath, Kind: kind})
		}
	}

	return files, nil
}
