package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileStore is the part of Service used by Downloader.
type FileStore interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportFile(ctx context.Context, fileID, mimeType string, w io.Writer) error
}

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader pulls order workbooks out of a Drive folder.
type Downloader struct {
	files FileStore
}

func NewDownloader(files FileStore) *Downloader {
	return &Downloader{files: files}
}

// DownloadWorkbooks saves every .xlsx file and every Google Sheet of the
// folder into DownloadDir and returns the local paths. Sheets are exported as
// xlsx. Other files are ignored.
func (d *Downloader) DownloadWorkbooks(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.files.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var fetch func(io.Writer) error
		name := f.Name
		switch {
		case f.MimeType == spreadsheetMimeType:
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
			fetch = func(w io.Writer) error { return d.files.ExportFile(ctx, f.ID, xlsxMimeType, w) }
		case strings.EqualFold(filepath.Ext(name), ".xlsx"):
			fetch = func(w io.Writer) error { return d.files.DownloadFile(ctx, f.ID, w) }
		default:
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, filepath.Base(name))
		if err := writeFile(localPath, fetch); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		log.Info().Str("file", f.Name).Str("path", localPath).Msg("downloaded workbook from drive")
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

func writeFile(path string, fetch func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	if err := fetch(out); err != nil {
		out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}
