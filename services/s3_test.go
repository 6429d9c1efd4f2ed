package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"easyapply/config"
)

type fakeS3 struct {
	s3iface.S3API
	puts map[string]string
	err  error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType) + ":" + string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestNewArtifactUploader(t *testing.T) {
	// Should fail without AWS settings
	u, err := NewArtifactUploader(config.S3Config{}, "run-1", zap.NewNop().Sugar())

	assert.Error(t, err)
	assert.Nil(t, u)
}

func TestArtifactUploaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		runID   string
		isValid bool
	}{
		{name: "valid configuration", bucket: "my-bucket", region: "us-east-1", runID: "run-1", isValid: true},
		{name: "empty bucket", bucket: "", region: "us-east-1", runID: "run-1", isValid: false},
		{name: "empty region", bucket: "my-bucket", region: "", runID: "run-1", isValid: false},
		{name: "empty run id", bucket: "my-bucket", region: "us-east-1", runID: "", isValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArtifactUploaderWithClient(&fakeS3{}, tt.bucket, tt.region, tt.runID, zap.NewNop().Sugar())
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestArtifactUploader_UploadAll(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "easyapply_20260101_120000.log")
	shot := filepath.Join(dir, "job_001_failed_120500.png")
	require.NoError(t, os.WriteFile(logFile, []byte("log"), 0o644))
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0o644))

	client := &fakeS3{}
	u, err := NewArtifactUploaderWithClient(client, "bucket", "us-east-1", "run-1", zap.NewNop().Sugar())
	require.NoError(t, err)

	n := u.UploadAll(context.Background(), []string{logFile, shot, filepath.Join(dir, "missing.png")})

	assert.Equal(t, 2, n)
	assert.Equal(t, map[string]string{
		"runs/run-1/easyapply_20260101_120000.log": "text/plain; charset=utf-8:log",
		"runs/run-1/job_001_failed_120500.png":     "image/png:png",
	}, client.puts)
}

func TestArtifactUploader_UploadFileURL(t *testing.T) {
	f := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(f, []byte("png"), 0o644))
	u, err := NewArtifactUploaderWithClient(&fakeS3{}, "bucket", "eu-west-1", "run-9", zap.NewNop().Sugar())
	require.NoError(t, err)

	url, err := u.UploadFile(context.Background(), f)

	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/runs/run-9/a.png", url)
}

func TestArtifactUploader_UploadError(t *testing.T) {
	f := filepath.Join(t.TempDir(), "a.log")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	u, err := NewArtifactUploaderWithClient(&fakeS3{err: errors.New("access denied")}, "b", "r", "run", zap.NewNop().Sugar())
	require.NoError(t, err)

	_, err = u.UploadFile(context.Background(), f)

	assert.ErrorContains(t, err, "access denied")
	assert.Zero(t, u.UploadAll(context.Background(), []string{f}))
}
