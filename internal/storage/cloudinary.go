package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadTag = "servicehub"

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, folder string) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld, folder: folder}
}

// Save streams the file to Cloudinary. The stored name is the public id,
// which is what Remove needs later.
func (cu *CloudinaryUploader) Save(ctx context.Context, file *multipart.FileHeader, baseURL string) (*Asset, error) {
	src, ext, err := openImage(file)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := uniqueName(file.Filename, ext)
	publicID := strings.TrimSuffix(name, ext)

	res, err := cu.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:   cu.folder,
		PublicID: publicID,
		Tags:     []string{uploadTag},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image %s: %w", file.Filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image %s: %s", file.Filename, res.Error.Message)
	}

	return &Asset{Name: res.PublicID, URL: res.SecureURL}, nil
}

func (cu *CloudinaryUploader) Remove(ctx context.Context, name string) error {
	res, err := cu.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: name})
	if err != nil {
		return fmt.Errorf("failed to remove image %s: %w", name, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to remove image %s: %s", name, res.Error.Message)
	}
	return nil
}
