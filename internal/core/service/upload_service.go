package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
	"github.com/sal22/qanda-api/internal/pkg/metrics"
)

// sniffLen is how much of a file is inspected to identify its real type.
const sniffLen = 512

// UploadOptions restricts what may be stored.
type UploadOptions struct {
	AllowedExt []string
	MaxBytes   int64
}

type uploadService struct {
	blobs   ports.BlobStore
	allowed map[string]bool
	max     int64
	log     zerolog.Logger
}

// NewUploadService returns an UploadService writing to blobs.
func NewUploadService(blobs ports.BlobStore, opts UploadOptions, log zerolog.Logger) ports.UploadService {
	allowed := make(map[string]bool, len(opts.AllowedExt))
	for _, ext := range opts.AllowedExt {
		allowed[normalizeExt(ext)] = true
	}
	return &uploadService{
		blobs:   blobs,
		allowed: allowed,
		max:     opts.MaxBytes,
		log:     log.With().Str("component", "uploads").Logger(),
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// Upload stores an image under a fresh name after checking that its leading
// bytes agree with the declared extension.
func (s *uploadService) Upload(ctx context.Context, p *domain.Principal, in ports.UploadInput) (string, error) {
	if p == nil {
		return "", domain.ErrUnauthenticated
	}
	name, err := s.store(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.UploadsTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	s.log.Info().Str("user_id", p.UserID).Str("file", name).Int64("size", in.Size).Msg("file uploaded")
	return name, nil
}

func (s *uploadService) store(ctx context.Context, in ports.UploadInput) (string, error) {
	ext := normalizeExt(filepath.Ext(in.Filename))
	if ext == "" || !s.allowed[ext] {
		return "", domain.NewValidationError("file", "file type is not allowed")
	}
	if s.max > 0 && in.Size > s.max {
		return "", domain.NewValidationError("file", fmt.Sprintf("file exceeds %d bytes", s.max))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return "", domain.NewValidationError("file", "file is empty")
	}
	head = head[:n]

	mime := mimetype.Detect(head)
	if normalizeExt(mime.Extension()) != ext {
		return "", domain.NewValidationError("file", "file content does not match its extension")
	}

	name := uuid.NewString() + "." + ext
	body := io.MultiReader(bytes.NewReader(head), in.Body)
	if err := s.blobs.Put(ctx, name, body, in.Size, mime.String()); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}

// Open streams a stored file. Names that could not have been issued are not found.
func (s *uploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !validObjectName(name) {
		return nil, "", domain.ErrFileNotFound
	}
	return s.blobs.Get(ctx, name)
}

func (s *uploadService) Exists(ctx context.Context, name string) (bool, error) {
	if !validObjectName(name) {
		return false, nil
	}
	return s.blobs.Exists(ctx, name)
}

func validObjectName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
