package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Asset is a stored upload. Name is what gets persisted on the user, URL is
// the absolute address clients fetch it from.
type Asset struct {
	Name string
	URL  string
}

type Uploader interface {
	Save(ctx context.Context, file *multipart.FileHeader, baseURL string) (*Asset, error)
	Remove(ctx context.Context, name string) error
}

// ErrNotImage rejects uploads whose content is not a supported image.
var ErrNotImage = errors.New("upload is not a supported image")

// imageExtensions maps the sniffed content type to the extension the stored
// file gets, so static serving never picks a type from the client's name.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// openImage sniffs the first 512 bytes of the upload and returns it rewound,
// along with the extension for the detected type.
func openImage(file *multipart.FileHeader) (multipart.File, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		src.Close()
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}

	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		src.Close()
		return nil, "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, "", fmt.Errorf("failed to rewind upload: %w", err)
	}
	return src, ext, nil
}

// uniqueName prefixes the client file name with a random uuid so concurrent
// uploads never share a name, and swaps its extension for ext.
func uniqueName(original, ext string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == '/', r == '\\', r == '?', r == '#', r == '%':
			return -1
		}
		return r
	}, base)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return uuid.NewString() + "-" + base + ext
}
