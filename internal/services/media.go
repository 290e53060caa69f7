package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"barrierfree-backend/internal/apperrors"
	appconfig "barrierfree-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
)

const (
	// MaxUploadSize is the largest accepted upload in bytes
	MaxUploadSize     = 10 << 20
	presignExpiry     = 5 * time.Minute
	jpegQuality       = 85
	placeholderPrefix = "https://placeholder.com/"
)

// UploadResult describes a stored media object
type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key,omitempty"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// PresignRequest represents a request to get a pre-signed upload URL
type PresignRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// PresignResponse represents the response with a pre-signed URL
type PresignResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// MediaService stores report photos in S3 compatible object storage. Without
// storage credentials it degrades to placeholder URLs.
type MediaService struct {
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
	maxDimension  uint
	now           func() time.Time
}

// NewMediaService creates a new media service
func NewMediaService(ctx context.Context, cfg appconfig.AWSConfig) (*MediaService, error) {
	s := &MediaService{
		bucket:       cfg.S3Bucket,
		maxDimension: uint(max(cfg.MaxImageDimension, 0)),
		now:          time.Now,
	}

	if !cfg.StorageConfigured() {
		log.Warn().Msg("Object storage is not configured, uploads return placeholder URLs")
		return s, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	s.publicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if s.publicBaseURL == "" {
		if cfg.Endpoint != "" {
			s.publicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			s.publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
		}
	}

	return s, nil
}

// Configured reports whether uploads reach object storage
func (s *MediaService) Configured() bool {
	return s.s3Client != nil
}

// objectKey builds reports/YYYY/MM/<uuid>-<slug>.<ext>
func (s *MediaService) objectKey(filename, ext string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	name := slug.Make(base)
	if name == "" {
		name = "upload"
	}
	now := s.now().UTC()
	return fmt.Sprintf("reports/%04d/%02d/%s-%s%s", now.Year(), int(now.Month()), uuid.New().String(), name, ext)
}

// Upload stores a file and returns its public URL. Images larger than the
// configured dimension are downscaled and re-encoded as JPEG.
func (s *MediaService) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, apperrors.Invalid("file is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, apperrors.Invalid(fmt.Sprintf("file exceeds %d bytes", MaxUploadSize))
	}
	if filename == "" {
		filename = "upload"
	}

	if !s.Configured() {
		return &UploadResult{
			URL:         fmt.Sprintf("%s%d-%s", placeholderPrefix, s.now().UnixMilli(), path.Base(filename)),
			ContentType: http.DetectContentType(data),
			Size:        len(data),
			Placeholder: true,
		}, nil
	}

	body, contentType, ext := s.prepare(filename, data)
	key := s.objectKey(filename, ext)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, apperrors.Upstream("failed to upload file", err)
	}

	log.Info().
		Str("key", key).
		Int("size", len(body)).
		Msg("Media uploaded")

	return &UploadResult{
		URL:         s.publicBaseURL + "/" + key,
		Key:         key,
		ContentType: contentType,
		Size:        len(body),
	}, nil
}

// prepare downscales oversized images; anything it cannot decode is stored as is
func (s *MediaService) prepare(filename string, data []byte) ([]byte, string, string) {
	contentType := http.DetectContentType(data)
	ext := strings.ToLower(path.Ext(filename))

	if !strings.HasPrefix(contentType, "image/") || s.maxDimension == 0 {
		return data, contentType, ext
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, contentType, ext
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= s.maxDimension && uint(bounds.Dy()) <= s.maxDimension {
		return data, contentType, ext
	}

	resized := resize.Thumbnail(s.maxDimension, s.maxDimension, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		log.Warn().Err(err).Msg("Failed to re-encode image, storing original")
		return data, contentType, ext
	}

	return buf.Bytes(), "image/jpeg", ".jpg"
}

// PresignUpload generates a pre-signed URL for uploading directly to storage
func (s *MediaService) PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return nil, apperrors.Upstream("object storage is not configured", nil)
	}

	key := s.objectKey(req.Filename, strings.ToLower(path.Ext(req.Filename)))

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, apperrors.Upstream("failed to generate pre-signed URL", err)
	}

	return &PresignResponse{
		UploadURL: request.URL,
		PublicURL: s.publicBaseURL + "/" + key,
		Key:       key,
		ExpiresIn: int(presignExpiry.Seconds()),
	}, nil
}

// ReadUpload reads at most MaxUploadSize bytes from r
func ReadUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, apperrors.Invalid("failed to read upload")
	}
	if len(data) > MaxUploadSize {
		return nil, apperrors.Invalid(fmt.Sprintf("file exceeds %d bytes", MaxUploadSize))
	}
	return data, nil
}
