// Package archive stores rendered report bundles in S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/domain"
)

// Uploader is the subset of the S3 upload manager used here
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Config holds bucket location and credentials
type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Archiver uploads every attachment of a bundle under a per-cycle key prefix
type Archiver struct {
	uploader Uploader
	bucket   string
	prefix   string
	now      func() time.Time
	log      zerolog.Logger
}

// New builds an archiver backed by the AWS SDK. A custom endpoint switches
// to path-style addressing for R2 and MinIO.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Archiver, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithUploader(manager.NewUploader(client), cfg.Bucket, cfg.Prefix, log), nil
}

// NewWithUploader creates an archiver over an existing uploader
func NewWithUploader(u Uploader, bucket, prefix string, log zerolog.Logger) *Archiver {
	return &Archiver{
		uploader: u,
		bucket:   bucket,
		prefix:   prefix,
		now:      time.Now,
		log:      log.With().Str("component", "archive").Str("bucket", bucket).Logger(),
	}
}

// Key returns the object key of one attachment.
func (a *Archiver) Key(at time.Time, cycleID uuid.UUID, filename string) string {
	return path.Join(a.prefix, at.Format("2006/01"), at.Format("20060102")+"-"+cycleID.String(), filename)
}

// Archive uploads the bundle. It stops at the first failed upload.
func (a *Archiver) Archive(ctx context.Context, cycleID uuid.UUID, bundle domain.ReportBundle) error {
	at := a.now().UTC()
	for _, att := range bundle {
		key := a.Key(at, cycleID, att.Filename)
		_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(att.Content),
			ContentType: aws.String(att.ContentType),
			Metadata: map[string]string{
				"cycle-id": cycleID.String(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", att.Filename, err)
		}
		a.log.Debug().Str("key", key).Int("bytes", len(att.Content)).Msg("Report archived")
	}

	a.log.Info().
		Str("cycle_id", cycleID.String()).
		Int("files", len(bundle)).
		Int("bytes", bundle.TotalSize()).
		Msg("Report bundle archived")
	return nil
}
