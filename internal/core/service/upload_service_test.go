package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), make([]byte, 64)...)
	gifBytes  = append([]byte("GIF89a"), make([]byte, 64)...)
)

func newTestUploadService(blobs *stubBlobStore) ports.UploadService {
	return NewUploadService(blobs, UploadOptions{AllowedExt: []string{"png", "jpg"}, MaxBytes: 1024}, zerolog.Nop())
}

func upload(name string, data []byte) ports.UploadInput {
	return ports.UploadInput{Filename: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func TestUploadService_StoresMatchingImages(t *testing.T) {
	tests := []struct {
		file, ext, mime string
		data            []byte
	}{
		{"avatar.png", "png", "image/png", pngBytes},
		{"photo.JPG", "jpg", "image/jpeg", jpegBytes},
		{"photo.jpeg", "jpg", "image/jpeg", jpegBytes},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			blobs := newStubBlobStore()
			svc := newTestUploadService(blobs)

			name, err := svc.Upload(context.Background(), alice, upload(tc.file, tc.data))
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(name, "."+tc.ext), "name %q", name)
			assert.Equal(t, tc.data, blobs.objects[name], "whole body must be stored, not just the sniffed head")
			assert.Equal(t, tc.mime, blobs.types[name])

			ok, err := svc.Exists(context.Background(), name)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestUploadService_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   ports.UploadInput
	}{
		{"extension not allowed", upload("anim.gif", gifBytes)},
		{"no extension", upload("avatar", pngBytes)},
		{"content does not match", upload("fake.png", jpegBytes)},
		{"text disguised as image", upload("notes.jpg", []byte("just some text"))},
		{"empty", upload("empty.png", nil)},
		{"too large", ports.UploadInput{Filename: "big.png", Size: 4096, Body: bytes.NewReader(pngBytes)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blobs := newStubBlobStore()
			_, err := newTestUploadService(blobs).Upload(context.Background(), alice, tc.in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "file", verr.Field)
			assert.Empty(t, blobs.objects)
		})
	}
}

func TestUploadService_RequiresPrincipal(t *testing.T) {
	_, err := newTestUploadService(newStubBlobStore()).Upload(context.Background(), nil, upload("a.png", pngBytes))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUploadService_StoreFailure(t *testing.T) {
	blobs := newStubBlobStore()
	blobs.putErr = errors.New("bucket unreachable")

	_, err := newTestUploadService(blobs).Upload(context.Background(), alice, upload("a.png", pngBytes))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestUploadService_OpenRejectsPaths(t *testing.T) {
	svc := newTestUploadService(newStubBlobStore())
	for _, name := range []string{"", "../etc/passwd", "a/b.png", ".hidden"} {
		_, _, err := svc.Open(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrNotFound, "name %q", name)
	}
}
