package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "sanaflow/config"
	"sanaflow/logger"
	"sanaflow/models"
)

// Uploader copies produced export artifacts to S3 under a date-partitioned
// prefix. It is optional; when S3 storage is disabled the caller simply
// never constructs one.
type Uploader struct {
	config   *appconfig.Config
	s3Client *s3.Client
	log      *logger.Log
}

// NewUploader configures the AWS SDK and validates credentials the same way
// the rest of the storage config is validated: eagerly, so a misconfigured
// deployment fails at startup rather than after a fetch cycle.
func NewUploader(cfg *appconfig.Config) (*Uploader, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_uploader").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("s3 uploader initialized")

	return &Uploader{
		config:   cfg,
		s3Client: s3Client,
		log:      log,
	}, nil
}

// Upload copies each local artifact to the bucket and returns the batch
// descriptor for the cycle. Individual upload failures are logged and the
// remaining files still go up; the first error is returned at the end.
func (u *Uploader) Upload(ctx context.Context, paths []string, recordCount int) (models.ExportBatch, error) {
	batch := models.ExportBatch{
		BatchID:     uuid.New().String(),
		SourceAPI:   u.config.Source.URL,
		RecordCount: recordCount,
		Timestamp:   time.Now().UTC(),
	}

	log := u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"batch_id": batch.BatchID,
		"bucket":   u.config.Storage.S3.Bucket,
	})

	var firstErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		key := u.objectKey(batch, filepath.Base(path))
		if err := u.uploadFile(ctx, path, key); err != nil {
			log.WithError(err).
				WithEnv("S3_BUCKET").
				WithFields(logger.Fields{"s3_key": key}).
				Error("failed to upload artifact")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		batch.Files = append(batch.Files, key)
		log.WithFields(logger.Fields{"s3_key": key}).Info("artifact uploaded")
	}

	logger.LogDataFlowEntry(log, "local_exports", "s3", len(batch.Files), "export_artifacts")
	return batch, firstErr
}

func (u *Uploader) objectKey(batch models.ExportBatch, filename string) string {
	ts := batch.Timestamp
	parts := []string{}
	if p := strings.Trim(u.config.Storage.S3.Prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts,
		fmt.Sprintf("year=%04d", ts.Year()),
		fmt.Sprintf("month=%02d", ts.Month()),
		fmt.Sprintf("day=%02d", ts.Day()),
		fmt.Sprintf("%s_%s", ts.Format("20060102150405"), filename),
	)
	return strings.Join(parts, "/")
}

func (u *Uploader) uploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	_, err = u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Storage.S3.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(path)),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/octet-stream"
	default:
		return "application/octet-stream"
	}
}
