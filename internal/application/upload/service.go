package upload

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/pkg/id"
)

// MaxFileSize caps a single upload at 10 MiB.
const MaxFileSize = 10 << 20

const linkTTL = 15 * time.Minute

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ObjectStore is the blob backend (S3).
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// FileStore records upload metadata.
type FileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	ListByUploader(ctx context.Context, userID string) ([]domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type Input struct {
	Reader   io.Reader
	Filename string
	Size     int64
	UserID   string
}

type Service interface {
	Upload(ctx context.Context, in Input) (*domain.File, error)
	List(ctx context.Context, userID string) ([]domain.File, error)
	Link(ctx context.Context, fileID, userID string) (string, error)
	Delete(ctx context.Context, fileID, userID string) error
}

type service struct {
	objects ObjectStore
	files   FileStore
	now     func() time.Time
}

func NewService(objects ObjectStore, files FileStore) Service {
	return &service{objects: objects, files: files, now: time.Now}
}

func (s *service) Upload(ctx context.Context, in Input) (*domain.File, error) {
	if in.Size <= 0 {
		return nil, fmt.Errorf("empty file: %w", domain.ErrBadRequest)
	}
	if in.Size > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes: %w", MaxFileSize, domain.ErrBadRequest)
	}

	// Sniff the type from content; the client-supplied header is not trusted.
	br := bufio.NewReaderSize(in.Reader, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("unsupported file type %s: %w", contentType, domain.ErrBadRequest)
	}

	fileID := id.New()
	safeName := sanitizeFilename(in.Filename)
	key := fmt.Sprintf("uploads/%s/%s-%s", in.UserID, fileID, safeName)

	hasher := sha256.New()
	url, err := s.objects.Upload(ctx, key, io.TeeReader(br, hasher), in.Size, contentType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	f := &domain.File{
		FileID:           fileID,
		Object:           key,
		URL:              url,
		Size:             in.Size,
		Type:             contentType,
		Name:             safeName,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		UploadedByUserID: in.UserID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.files.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.File, error) {
	return s.files.ListByUploader(ctx, userID)
}

// Link returns a short-lived download URL for one of the user's files.
func (s *service) Link(ctx context.Context, fileID, userID string) (string, error) {
	f, err := s.owned(ctx, fileID, userID)
	if err != nil {
		return "", err
	}
	return s.objects.PresignedURL(ctx, f.Object, linkTTL)
}

func (s *service) Delete(ctx context.Context, fileID, userID string) error {
	f, err := s.owned(ctx, fileID, userID)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.files.SoftDelete(ctx, fileID)
}

func (s *service) owned(ctx context.Context, fileID, userID string) (*domain.File, error) {
	if !id.Valid(fileID) {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	f, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.Enable {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.UploadedByUserID != userID {
		return nil, fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	return f, nil
}

// sanitizeFilename strips directory components and keeps only alphanumerics and . - _
// so the name is safe inside an S3 key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
