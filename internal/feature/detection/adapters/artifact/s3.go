package artifact

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipe_backend/internal/feature/detection/usecase"
)

// objectPutter はs3.Clientのうち保存に使うメソッドです。
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store はS3バケットに成果物を保存します。
type S3Store struct {
	client objectPutter
	bucket string
	prefix string
}

// S3StoreがImageArchiverを実装していることをコンパイル時に検証します。
var _ usecase.ImageArchiver = (*S3Store)(nil)

// NewS3Store は環境またはshared configの認証情報でS3Storeを生成します。
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put はオブジェクトをアップロードします。
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) error {
	fullKey := path.Join(s.prefix, key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	slog.Info("artifact uploaded", "bucket", s.bucket, "key", fullKey, "bytes", len(data))
	return nil
}
