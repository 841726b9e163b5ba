package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Config struct {
	Region    string
	Bucket    string
	PublicURL string
}

// Uploader stores a blob and returns where it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type S3Uploader struct {
	uploader  *manager.Uploader
	bucket    string
	publicURL string
}

func NewS3Uploader(ctx context.Context, cfg *Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Uploader{
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	result, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if u.publicURL != "" {
		return u.publicURL + "/" + key, nil
	}
	return result.Location, nil
}

// ImageKey spreads uploads over two directory levels taken from a fresh
// uuid: "ab/cd/<rest><ext>".
func ImageKey(filename string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return path.Join(id[:2], id[2:4], id[4:]+strings.ToLower(path.Ext(filename)))
}
