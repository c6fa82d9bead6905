package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjects struct {
	mock.Mock
	body []byte
}

const testFileID = "01HZY7Q3G5N8J2K4M6P8R0T2VW"

func (m *mockObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	m.body, _ = io.ReadAll(r)
	args := m.Called(ctx, key, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockObjects) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjects) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockFiles struct{ mock.Mock }

func (m *mockFiles) Put(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFiles) Get(ctx context.Context, fileID string) (*domain.File, error) {
	args := m.Called(ctx, fileID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFiles) ListByUploader(ctx context.Context, userID string) ([]domain.File, error) {
	args := m.Called(ctx, userID)
	files, _ := args.Get(0).([]domain.File)
	return files, args.Error(1)
}

func (m *mockFiles) SoftDelete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestUpload_StoresObjectAndMetadata(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 1000)...)
	objects := new(mockObjects)
	objects.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/u1/") && strings.HasSuffix(key, "-my_id.png")
	}), int64(len(data)), "image/png").Return("s3://bucket/key", nil)
	files := new(mockFiles)
	files.On("Put", mock.Anything, mock.AnythingOfType("*domain.File")).Return(nil)

	svc := NewService(objects, files)
	f, err := svc.Upload(context.Background(), Input{
		Reader:   bytes.NewReader(data),
		Filename: "../../my id.png",
		Size:     int64(len(data)),
		UserID:   "u1",
	})
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), f.Hash)
	assert.Equal(t, data, objects.body, "object body must include the sniffed prefix")
	assert.Equal(t, "s3://bucket/key", f.URL)
	assert.Equal(t, "my_id.png", f.Name)
	assert.Equal(t, "image/png", f.Type)
	assert.True(t, f.Enable)
	objects.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	objects := new(mockObjects)
	svc := NewService(objects, new(mockFiles))

	data := []byte("#!/bin/sh\necho hi\n")
	_, err := svc.Upload(context.Background(), Input{Reader: bytes.NewReader(data), Filename: "x.png", Size: int64(len(data)), UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_RejectsSize(t *testing.T) {
	svc := NewService(new(mockObjects), new(mockFiles))

	_, err := svc.Upload(context.Background(), Input{Reader: bytes.NewReader(nil), Size: 0})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Upload(context.Background(), Input{Reader: bytes.NewReader(pngHeader), Size: MaxFileSize + 1})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestLink_OnlyOwner(t *testing.T) {
	files := new(mockFiles)
	files.On("Get", mock.Anything, testFileID).Return(&domain.File{FileID: testFileID, Object: "uploads/u1/f1-a.pdf", UploadedByUserID: "u1", Enable: true}, nil)
	objects := new(mockObjects)
	objects.On("PresignedURL", mock.Anything, "uploads/u1/f1-a.pdf", linkTTL).Return("https://signed", nil)
	svc := NewService(objects, files)

	url, err := svc.Link(context.Background(), testFileID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)

	_, err = svc.Link(context.Background(), testFileID, "u2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDelete(t *testing.T) {
	files := new(mockFiles)
	files.On("Get", mock.Anything, testFileID).Return(&domain.File{FileID: testFileID, Object: "k", UploadedByUserID: "u1", Enable: true}, nil)
	files.On("SoftDelete", mock.Anything, testFileID).Return(nil)
	objects := new(mockObjects)
	objects.On("Delete", mock.Anything, "k").Return(nil)

	require.NoError(t, NewService(objects, files).Delete(context.Background(), testFileID, "u1"))
	files.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestDelete_AlreadyDisabled(t *testing.T) {
	files := new(mockFiles)
	files.On("Get", mock.Anything, testFileID).Return(&domain.File{FileID: testFileID, UploadedByUserID: "u1", Enable: false}, nil)

	err := NewService(new(mockObjects), files).Delete(context.Background(), testFileID, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLink_MalformedIDSkipsStore(t *testing.T) {
	files := new(mockFiles)

	_, err := NewService(new(mockObjects), files).Link(context.Background(), "../other", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	files.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":          "photo.jpg",
		"../../etc/passwd":   "passwd",
		`C:\docs\aadhar.pdf`: "aadhar.pdf",
		"my file (1).png":    "my_file__1_.png",
		"..":                 "_",
		"":                   "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
