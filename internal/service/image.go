package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/model"
)

// ImageService decodes inline base64 image payloads and stores them, either
// in S3 (when a bucket is configured) or under the local media root.
type ImageService struct {
	mediaRoot string
	s3Config  *config.S3Config
}

// NewImageService creates a new ImageService instance. s3Config may be nil,
// in which case images are written under mediaRoot and served from /media.
func NewImageService(mediaRoot string, s3Config *config.S3Config) *ImageService {
	return &ImageService{
		mediaRoot: mediaRoot,
		s3Config:  s3Config,
	}
}

// SaveBase64 decodes a payload like "data:image/png;base64,...." (the data
// URL prefix is optional) and stores the bytes under the given directory,
// returning the public URL of the stored file.
func (s *ImageService) SaveBase64(ctx context.Context, payload, dir string) (string, error) {
	data, ext, err := decodeBase64Image(payload)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s/%s%s", dir, uuid.New().String(), ext)

	if s.s3Config != nil {
		return s.uploadToS3(ctx, data, fileName, ext)
	}

	fullPath := filepath.Join(s.mediaRoot, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/media/" + fileName, nil
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, fileName, ext string) (string, error) {
	contentType := "image/png"
	if ext == ".jpg" {
		contentType = "image/jpeg"
	}

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded image to S3: %s", publicURL)
	return publicURL, nil
}

func decodeBase64Image(payload string) ([]byte, string, error) {
	ext := ".png"
	raw := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("%w: malformed image data URL", model.ErrInvalidInput)
		}
		switch {
		case strings.Contains(parts[0], "image/jpeg"):
			ext = ".jpg"
		case strings.Contains(parts[0], "image/png"):
			ext = ".png"
		default:
			return nil, "", fmt.Errorf("%w: unsupported image type", model.ErrInvalidInput)
		}
		raw = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 image data", model.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image payload", model.ErrInvalidInput)
	}
	return data, ext, nil
}
