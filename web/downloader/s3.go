package downloader

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

type s3Impl struct {
	s3manager *s3manager.Downloader
	maxBytes  int64
}

// NewS3 returns downloader implementation for s3://bucket/key URLs using s3 manager.
func NewS3(s3manager *s3manager.Downloader, maxBytes int64) Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &s3Impl{s3manager: s3manager, maxBytes: maxBytes}
}

// Download fetches the object into memory.
func (s *s3Impl) Download(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	head, err := s.s3manager.S3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "can't stat %s", rawURL)
	}
	if size := aws.Int64Value(head.ContentLength); size > s.maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "%s has %d bytes, limit is %d", rawURL, size, s.maxBytes)
	}

	buf := aws.NewWriteAtBuffer(make([]byte, 0, aws.Int64Value(head.ContentLength)))
	if _, err := s.s3manager.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, errors.Wrapf(err, "can't download %s", rawURL)
	}

	return buf.Bytes(), nil
}

func parseS3URL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing %s", rawURL)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", errors.Errorf("invalid s3 url %q, want s3://bucket/key", rawURL)
	}
	return u.Host, key, nil
}
