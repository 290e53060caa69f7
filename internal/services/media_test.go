package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMedia_PlaceholderWhenNotConfigured(t *testing.T) {
	svc, err := NewMediaService(context.Background(), config.AWSConfig{MaxImageDimension: 100})
	require.NoError(t, err)
	assert.False(t, svc.Configured())

	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	res, err := svc.Upload(context.Background(), "photos/ramp.png", encodePNG(t, 10, 10))
	require.NoError(t, err)
	assert.True(t, res.Placeholder)
	assert.Equal(t, "https://placeholder.com/1700000000000-ramp.png", res.URL)

	_, err = svc.PresignUpload(context.Background(), PresignRequest{Filename: "a.jpg", ContentType: "image/jpeg"})
	assert.Equal(t, apperrors.CodeUpstream, apperrors.CodeOf(err))
}

func TestMedia_UploadLimits(t *testing.T) {
	svc, err := NewMediaService(context.Background(), config.AWSConfig{})
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "a.png", nil)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.Upload(context.Background(), "a.bin", make([]byte, MaxUploadSize+1))
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = ReadUpload(bytes.NewReader(make([]byte, MaxUploadSize+1)))
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestMedia_PrepareDownscales(t *testing.T) {
	svc := &MediaService{maxDimension: 64, now: time.Now}

	small := encodePNG(t, 32, 16)
	body, ct, ext := svc.prepare("small.png", small)
	assert.Equal(t, small, body)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, ".png", ext)

	body, ct, ext = svc.prepare("big.png", encodePNG(t, 256, 128))
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, ".jpg", ext)

	img, _, err := image.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 64)
	assert.LessOrEqual(t, img.Bounds().Dy(), 64)

	text := []byte("not an image")
	body, ct, _ = svc.prepare("notes.txt", text)
	assert.Equal(t, text, body)
	assert.True(t, strings.HasPrefix(ct, "text/plain"))
}

func TestMedia_ObjectKey(t *testing.T) {
	svc := &MediaService{now: func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) }}

	key := svc.objectKey("Ramp Photo!.JPG", ".jpg")
	assert.True(t, strings.HasPrefix(key, "reports/2025/03/"), key)
	assert.True(t, strings.HasSuffix(key, "-ramp-photo.jpg"), key)
}
