package split

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

// s3API is the subset of the S3 client the split uses; narrowed for tests.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Split opens a partition of an S3 object as a chunk source. Chunks
// are fetched with ranged GETs, so a partitioned read never downloads
// bytes outside its partition (beyond boundary-alignment probes).
func newS3Split(ctx context.Context, uri string, partIndex, numParts int, opts Options) (InputSplit, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to load AWS config")
	}
	client := s3.NewFromConfig(cfg)

	sec, err := newS3Section(ctx, client, bucket, key)
	if err != nil {
		return nil, err
	}
	return newRangeSplit(sec, partIndex, numParts, opts)
}

func parseS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.Newf(errors.ErrorTypeConfig,
			"invalid S3 uri %q, want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

type s3Section struct {
	ctx    context.Context
	client s3API
	bucket string
	key    string
	size   int64
}

func newS3Section(ctx context.Context, client s3API, bucket, key string) (*s3Section, error) {
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO,
			fmt.Sprintf("failed to head s3://%s/%s", bucket, key))
	}
	if head.ContentLength == nil {
		return nil, errors.Newf(errors.ErrorTypeIO,
			"s3://%s/%s reported no content length", bucket, key)
	}
	return &s3Section{
		ctx:    ctx,
		client: client,
		bucket: bucket,
		key:    key,
		size:   *head.ContentLength,
	}, nil
}

func (s *s3Section) ReadAt(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	want := int64(len(p))
	short := false
	if off+want > s.size {
		want = s.size - off
		short = true
	}
	if want == 0 {
		return 0, nil
	}

	rng := fmt.Sprintf("bytes=%d-%d", off, off+want-1)
	out, err := s.client.GetObject(s.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(rng),
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeIO,
			fmt.Sprintf("failed ranged get s3://%s/%s %s", s.bucket, s.key, rng))
	}
	defer out.Body.Close() //nolint:errcheck

	n, err := io.ReadFull(out.Body, p[:want])
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeIO,
			fmt.Sprintf("short ranged get s3://%s/%s %s", s.bucket, s.key, rng))
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

func (s *s3Section) Size() int64 { return s.size }

func (s *s3Section) Close() error { return nil }
