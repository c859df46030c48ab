package services

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"taskify/internal/config"
)

// AvatarStore persists profile pictures and returns their public URL.
type AvatarStore interface {
	PutAvatar(ctx context.Context, userID, ext, contentType string, body io.Reader) (string, error)
}

type S3AvatarStore struct {
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

func NewS3AvatarStore(cfg *config.S3Config) *S3AvatarStore {
	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://" + cfg.Bucket + ".s3.amazonaws.com"
	}
	return &S3AvatarStore{
		uploader:      manager.NewUploader(cfg.Client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}
}

// PutAvatar overwrites avatars/<userID><ext>.
func (s *S3AvatarStore) PutAvatar(ctx context.Context, userID, ext, contentType string, body io.Reader) (string, error) {
	key := path.Join("avatars", userID+ext)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return s.publicBaseURL + "/" + key, nil
}
