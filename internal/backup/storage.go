// Package backup snapshots the KV store's full contents to durable
// external storage, adapting the teacher's index-segment upload
// abstraction from "upload a Bleve segment directory" to "upload a
// directory of NDJSON key/value dump shards."
package backup

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const (
	maxS3UploadRetries = 3
	initialS3Backoff   = 1 * time.Second
	maxS3Backoff       = 8 * time.Second
)

// SnapshotStorage persists the contents of a snapshot directory
// somewhere durable, outside the process.
type SnapshotStorage interface {
	UploadSnapshot(snapshotPath string) error
}

// S3Storage implements SnapshotStorage against an S3 bucket.
type S3Storage struct {
	uploader *s3manager.Uploader
	bucket   string
}

// NewS3Storage builds an S3Storage for bucketName. AWS credentials and
// region come from the environment or the instance's IAM role, per the
// AWS SDK's default credential chain.
func NewS3Storage(bucketName string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	})
	if err != nil {
		return nil, fmt.Errorf("backup: create AWS session: %w", err)
	}
	return &S3Storage{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucketName,
	}, nil
}

// UploadSnapshot uploads every file under snapshotPath to S3, keyed by
// a timestamped prefix so successive snapshots don't collide.
func (s *S3Storage) UploadSnapshot(snapshotPath string) error {
	info, err := os.Stat(snapshotPath)
	if err != nil {
		return fmt.Errorf("backup: stat snapshot path %s: %w", snapshotPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("backup: snapshot path %s is not a directory", snapshotPath)
	}

	prefix := fmt.Sprintf("%s_%s/", filepath.Base(snapshotPath), time.Now().UTC().Format("20060102T150405Z"))
	log.Printf("backup: uploading snapshot %s to s3://%s/%s", snapshotPath, s.bucket, prefix)

	return filepath.WalkDir(snapshotPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(snapshotPath, path)
		if err != nil {
			return fmt.Errorf("backup: relative path for %s: %w", path, err)
		}
		key := filepath.ToSlash(filepath.Join(prefix, relPath))
		return s.uploadWithRetry(path, key)
	})
}

func (s *S3Storage) uploadWithRetry(path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backup: open %s: %w", path, err)
	}
	defer file.Close()

	var uploadErr error
	for attempt := 0; attempt < maxS3UploadRetries; attempt++ {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("backup: seek %s for retry: %w", path, err)
		}
		_, uploadErr = s.uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   file,
		})
		if uploadErr == nil {
			return nil
		}
		log.Printf("backup: attempt %d/%d failed uploading %s: %v", attempt+1, maxS3UploadRetries, path, uploadErr)
		if attempt < maxS3UploadRetries-1 {
			backoff := initialS3Backoff * time.Duration(1<<attempt)
			if backoff > maxS3Backoff {
				backoff = maxS3Backoff
			}
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("backup: upload %s after %d attempts: %w", path, maxS3UploadRetries, uploadErr)
}
