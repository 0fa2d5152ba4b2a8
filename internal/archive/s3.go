package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"LowesMerge/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultBucket = "lowes-merge-reports"
	defaultRegion = "us-east-1"
	defaultPrefix = "reports/"
)

// Settings controls where generated reports are archived.
type Settings struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string
}

// SettingsFromEnv reads REPORT_S3_*. Archiving is off unless
// REPORT_S3_ENABLED is 1, true or yes.
func SettingsFromEnv() Settings {
	s := Settings{
		Enabled: envEnabled("REPORT_S3_ENABLED"),
		Bucket:  envOr("REPORT_S3_BUCKET", defaultBucket),
		Region:  envOr("REPORT_S3_REGION", defaultRegion),
		Prefix:  envOr("REPORT_S3_PREFIX", defaultPrefix),
	}
	if !strings.HasSuffix(s.Prefix, "/") {
		s.Prefix += "/"
	}
	return s
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envEnabled(key string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads report workbooks to a bucket.
type S3Archiver struct {
	settings Settings
	client   putObjectAPI
}

// NewS3Archiver loads the default AWS credential chain for the configured region.
func NewS3Archiver(ctx context.Context, settings Settings) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(settings.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Archiver{settings: settings, client: s3.NewFromConfig(cfg)}, nil
}

// Key is <prefix><runID>/<filename>.
func (a *S3Archiver) Key(runID, filename string) string {
	return a.settings.Prefix + sanitizePathSegment(runID) + "/" + sanitizePathSegment(filename)
}

// Upload stores data and returns its s3:// location.
func (a *S3Archiver) Upload(ctx context.Context, runID, filename string, data []byte) (string, error) {
	key := a.Key(runID, filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.settings.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(config.SpreadsheetMIME),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3 (bucket %s, key %s): %w", a.settings.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.settings.Bucket, key), nil
}

func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(s)
}
