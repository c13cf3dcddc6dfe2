package split

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves one in-memory object and honors ranged GETs.
type fakeS3 struct {
	data []byte
	gets int
}

func (f *fakeS3) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(f.data)))}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets++
	var lo, hi int64
	if _, err := fmt.Sscanf(aws.ToString(in.Range), "bytes=%d-%d", &lo, &hi); err != nil {
		return nil, fmt.Errorf("bad range %q: %w", aws.ToString(in.Range), err)
	}
	if hi >= int64(len(f.data)) {
		hi = int64(len(f.data)) - 1
	}
	body := f.data[lo : hi+1]
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3SectionReadAt(t *testing.T) {
	api := &fakeS3{data: []byte("hello world")}
	sec, err := newS3Section(context.Background(), api, "bucket", "key")
	require.NoError(t, err)
	require.Equal(t, int64(11), sec.Size())

	buf := make([]byte, 5)
	n, err := sec.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	// reads past the object end are clamped and report EOF
	n, err = sec.ReadAt(make([]byte, 8), 6)
	assert.Equal(t, 5, n)
	assert.Equal(t, io.EOF, err)

	_, err = sec.ReadAt(buf, 11)
	assert.Equal(t, io.EOF, err)
}

func TestS3SplitPartitionsCoverObject(t *testing.T) {
	content := sampleLines(83)
	api := &fakeS3{data: []byte(content)}

	var joined strings.Builder
	for part := 0; part < 4; part++ {
		sec, err := newS3Section(context.Background(), api, "bucket", "key")
		require.NoError(t, err)
		s, err := newRangeSplit(sec, part, 4, Options{ChunkSize: 128})
		require.NoError(t, err)
		joined.WriteString(drain(t, s))
		require.NoError(t, s.Close())
	}
	assert.Equal(t, content, joined.String())
	assert.Greater(t, api.gets, 0)
}
