package port

import (
	"context"
	"io"
)

// DownloadResult carries file content plus the canonical path the provider
// reports for it, which may differ from the requested path.
type DownloadResult struct {
	Content      []byte
	ResolvedPath string
}

// UploadResult contains the result of a successful upload.
type UploadResult struct {
	Path string
	Size int64
}

// FileStorage abstracts the remote file store holding case documents. Download
// failures for missing or conflicting paths unwrap to domain.ErrPathNotFound /
// domain.ErrPathConflict.
type FileStorage interface {
	Download(ctx context.Context, path string) (*DownloadResult, error)
	Upload(ctx context.Context, path string, content io.Reader, contentType string) (*UploadResult, error)
}
