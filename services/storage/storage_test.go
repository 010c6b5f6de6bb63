package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	params  []uploader.UploadParams
	body    []byte
	result  *uploader.UploadResult
	destroy []string
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = append(f.params, params)
	b, err := io.ReadAll(file.(io.Reader))
	if err != nil {
		return nil, err
	}
	f.body = b
	return f.result, nil
}

func (f *fakeUploader) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroy = append(f.destroy, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPetPhoto(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{
		PublicID:  "wuauser/pets/pet-1",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/wuauser/pets/pet-1.png",
	}}
	svc := NewStorageService(up, zap.NewNop())

	url, err := svc.UploadPetPhoto(context.Background(), "pet-1", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/wuauser/pets/pet-1.png", url)

	require.Len(t, up.params, 1)
	p := up.params[0]
	assert.Equal(t, PetPhotoFolder, p.Folder)
	assert.Equal(t, "pet-1", p.PublicID)
	assert.Equal(t, PetPhotoTransformation, string(p.Transformation))
	assert.Equal(t, pngHeader, up.body, "sniffed bytes must still be uploaded")
}

func TestUploadPetPhoto_RejectsNonImages(t *testing.T) {
	up := &fakeUploader{}
	svc := NewStorageService(up, zap.NewNop())

	_, err := svc.UploadPetPhoto(context.Background(), "pet-1", strings.NewReader("%PDF-1.4 not a photo"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Empty(t, up.params)
}

func TestUploadPetPhoto_CloudinaryError(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	svc := NewStorageService(up, zap.NewNop())

	_, err := svc.UploadPetPhoto(context.Background(), "pet-1", bytes.NewReader(pngHeader))
	assert.ErrorContains(t, err, "Invalid image file")
}

func TestDeleteFile(t *testing.T) {
	up := &fakeUploader{}
	svc := NewStorageService(up, zap.NewNop())

	require.NoError(t, svc.DeleteFile(context.Background(), "wuauser/pets/pet-1"))
	assert.Equal(t, []string{"wuauser/pets/pet-1"}, up.destroy)
}
