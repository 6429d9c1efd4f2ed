package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"easyapply/config"
)

// ArtifactUploader copies run artifacts (the log file and failure
// screenshots) to S3 under runs/<run id>/.
type ArtifactUploader struct {
	s3Client s3iface.S3API
	bucket   string
	region   string
	runID    string
	log      *zap.SugaredLogger
}

func NewArtifactUploader(cfg config.S3Config, runID string, log *zap.SugaredLogger) (*ArtifactUploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("AWS credentials not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}

	return NewArtifactUploaderWithClient(s3.New(sess), cfg.Bucket, cfg.Region, runID, log)
}

// NewArtifactUploaderWithClient uses an existing S3 client.
func NewArtifactUploaderWithClient(client s3iface.S3API, bucket, region, runID string, log *zap.SugaredLogger) (*ArtifactUploader, error) {
	u := &ArtifactUploader{s3Client: client, bucket: bucket, region: region, runID: runID, log: log}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Key is the object key an artifact is stored under.
func (u *ArtifactUploader) Key(filePath string) string {
	return path.Join("runs", u.runID, filepath.Base(filePath))
}

// UploadFile uploads one artifact and returns its object URL.
func (u *ArtifactUploader) UploadFile(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to read file")
	}
	defer f.Close()

	key := u.Key(filePath)
	_, err = u.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(filePath)),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s to S3", key)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
	u.log.Infof("Artifact uploaded to S3: %s", url)
	return url, nil
}

// UploadAll uploads every artifact, logging failures, and returns how many
// made it.
func (u *ArtifactUploader) UploadAll(ctx context.Context, paths []string) int {
	uploaded := 0
	for _, p := range paths {
		if _, err := u.UploadFile(ctx, p); err != nil {
			u.log.Warnf("Artifact upload failed: %v", err)
			continue
		}
		uploaded++
	}
	return uploaded
}

func contentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".log", ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (u *ArtifactUploader) validate() error {
	if u.bucket == "" {
		return errors.New("bucket name is required")
	}
	if u.region == "" {
		return errors.New("region is required")
	}
	if u.runID == "" {
		return errors.New("run id is required")
	}
	return nil
}
