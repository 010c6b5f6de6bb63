package storage

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	PetPhotoFolder = "wuauser/pets"
	// PetPhotoTransformation caps photos at 1024px and lets Cloudinary pick quality and format.
	PetPhotoTransformation = "c_limit,w_1024,h_1024,q_auto,f_auto"
	// MaxPhotoBytes bounds an uploaded photo.
	MaxPhotoBytes = 10 << 20
)

// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG, WebP or GIF images.
var ErrUnsupportedImage = errors.New("unsupported image type")

// StorageService stores pet photos.
type StorageService interface {
	// UploadPetPhoto stores the image read from r and returns its public HTTPS URL.
	UploadPetPhoto(ctx context.Context, petID string, r io.Reader) (string, error)
	DeleteFile(ctx context.Context, publicID string) error
}

// Uploader is the part of the Cloudinary upload API used here.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}
