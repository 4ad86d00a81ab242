package deposit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iotmesh/datasink/cmn/nlog"
)

// S3Uploader is a reference implementation of the upload worker spec.md
// treats as an external collaborator (§1, §4.D): it drains a deposit
// Chan, uploads each path to S3, and deletes the local file on success.
// The core filesink package never imports this file; it exists only to
// exercise the handoff contract end to end.
type S3Uploader struct {
	client *manager.Uploader
	bucket string
}

func NewS3Uploader(s3Client *s3.Client, bucket string) *S3Uploader {
	return &S3Uploader{client: manager.NewUploader(s3Client), bucket: bucket}
}

// Run drains recv until its channel closes, uploading and deleting each
// announced path. Errors are logged and the file is left in place for a
// future retry; this mirrors the sink's own resilient (not fail-fast)
// error policy since losing the uploader's forward progress on one file
// shouldn't halt the others.
func (u *S3Uploader) Run(ctx context.Context, recv <-chan string) {
	for path := range recv {
		if err := u.uploadAndRemove(ctx, path); err != nil {
			nlog.Errorf("s3uploader: %s: %v", path, err)
		}
	}
}

func (u *S3Uploader) uploadAndRemove(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	key := filepath.Base(path)
	_, err = u.client.Upload(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		return err
	}
	nlog.Infof("s3uploader: uploaded %s to s3://%s/%s", path, u.bucket, key)
	return os.Remove(path)
}
