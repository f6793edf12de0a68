package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
)

type fakeS3 struct {
	objects map[string]string
	gotKey  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	body, ok := f.objects[f.gotKey]
	if !ok {
		return nil, assert.AnError
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader(body)),
		ContentType: aws.String("text/plain"),
	}, nil
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://resumes/2024/jane.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes", bucket)
	assert.Equal(t, "2024/jane.pdf", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "/local/file.pdf"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}

func TestFetchLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.md")
	require.NoError(t, os.WriteFile(path, []byte("# Role"), 0600))

	f := NewFetcher(config.S3Config{}, 1024, errors.NewNopLogger())
	doc, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "jd.md", doc.Name)
	assert.Equal(t, "text/markdown", doc.ContentType)
	assert.Equal(t, "# Role", string(doc.Data))

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestFetchLocalTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0600))

	f := NewFetcher(config.S3Config{}, 16, errors.NewNopLogger())
	_, err := f.Fetch(context.Background(), path)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))
}

func TestFetchS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"resumes/jane/resume.txt": "Jane Doe"}}
	f := NewFetcher(config.S3Config{Region: "us-east-1"}, 1024, errors.NewNopLogger()).WithObjectGetter(client)

	doc, err := f.Fetch(context.Background(), "s3://resumes/jane/resume.txt")
	require.NoError(t, err)
	assert.Equal(t, "resumes/jane/resume.txt", client.gotKey)
	assert.Equal(t, "resume.txt", doc.Name)
	assert.Equal(t, "text/plain", doc.ContentType)
	assert.Equal(t, "Jane Doe", string(doc.Data))

	_, err = f.Fetch(context.Background(), "s3://resumes/other.txt")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNetwork, appErr.Type)

	_, err = f.Fetch(context.Background(), "s3://resumes")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}
