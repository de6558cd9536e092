package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PublicPath is the route the disk directory is served under.
const PublicPath = "/uploads"

type DiskUploader struct {
	dir string
}

func NewDiskUploader(dir string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskUploader{dir: dir}, nil
}

func (d *DiskUploader) Dir() string {
	return d.dir
}

func (d *DiskUploader) Save(ctx context.Context, file *multipart.FileHeader, baseURL string) (*Asset, error) {
	src, ext, err := openImage(file)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := uniqueName(file.Filename, ext)
	dst, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &Asset{
		Name: name,
		URL:  strings.TrimRight(baseURL, "/") + PublicPath + "/" + url.PathEscape(name),
	}, nil
}

func (d *DiskUploader) Remove(ctx context.Context, name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	err := os.Remove(filepath.Join(d.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}
