package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DownloadWorkbooks pulls every .xlsx object under prefix into dir and
// returns the local paths.
func DownloadWorkbooks(ctx context.Context, store ObjectStorage, prefix, dir string) ([]string, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, obj := range objects {
		if !strings.EqualFold(path.Ext(obj.Key), ".xlsx") {
			continue
		}
		dest := filepath.Join(dir, path.Base(obj.Key))
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		log.Info().Str("key", obj.Key).Int64("size", obj.Size).Str("path", dest).Msg("downloaded workbook")
		paths = append(paths, dest)
	}
	return paths, nil
}

// ObjectKey joins a prefix and a file name into an object key.
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
