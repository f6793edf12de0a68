package extract

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/utils"
)

const s3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used to download documents.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher loads documents from local paths or s3://bucket/key references.
type Fetcher struct {
	cfg      config.S3Config
	maxBytes int64
	logger   *errors.Logger

	mu     sync.Mutex
	client ObjectGetter
}

// NewFetcher creates a Fetcher. The S3 client is built on first use.
func NewFetcher(cfg config.S3Config, maxBytes int64, logger *errors.Logger) *Fetcher {
	return &Fetcher{cfg: cfg, maxBytes: maxBytes, logger: logger}
}

// WithObjectGetter replaces the S3 client, mainly for tests.
func (f *Fetcher) WithObjectGetter(client ObjectGetter) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.client = client
	return f
}

// IsS3URI reports whether ref names an S3 object.
func IsS3URI(ref string) bool {
	return strings.HasPrefix(ref, s3Scheme)
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(ref string) (bucket, key string, err error) {
	if !IsS3URI(ref) {
		return "", "", fmt.Errorf("not an s3 uri: %s", ref)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(ref, s3Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must be s3://bucket/key: %s", ref)
	}
	return bucket, key, nil
}

// Fetch reads the document behind ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (Document, error) {
	if IsS3URI(ref) {
		return f.fetchS3(ctx, ref)
	}
	return f.fetchLocal(ref)
}

func (f *Fetcher) fetchLocal(path string) (Document, error) {
	if err := utils.ValidateInputFile(path); err != nil {
		code := errors.ErrCodeFileNotReadable
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrCodeFileNotFound
		}
		return Document{}, errors.NewIOError(code, fmt.Sprintf("Cannot read file: %s", path), err)
	}

	file, err := os.Open(path)
	if err != nil {
		return Document{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			f.logger.Warn("Failed to close file", "filename", path, "error", err)
		}
	}()

	data, err := f.readLimited(file, path)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:        filepath.Base(path),
		ContentType: utils.ContentTypeForExtension(path),
		Data:        data,
	}, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, ref string) (Document, error) {
	bucket, key, err := ParseS3URI(ref)
	if err != nil {
		return Document{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid S3 reference", err)
	}

	client, err := f.s3Client(ctx)
	if err != nil {
		return Document{}, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Cannot configure S3 client", err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Document{}, errors.NewNetworkError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to get object %s", ref), err).
			WithContext("bucket", bucket)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := f.readLimited(out.Body, ref)
	if err != nil {
		return Document{}, err
	}

	f.logger.Debug("Fetched S3 object", "bucket", bucket, "key", key, "bytes", len(data))
	return Document{
		Name:        filepath.Base(key),
		ContentType: aws.ToString(out.ContentType),
		Data:        data,
	}, nil
}

// readLimited reads at most maxBytes+1 so oversized inputs fail without
// being buffered whole.
func (f *Fetcher) readLimited(r io.Reader, name string) ([]byte, error) {
	if f.maxBytes > 0 {
		r = io.LimitReader(r, f.maxBytes+1)
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read content: %s", name), err)
	}
	if f.maxBytes > 0 && int64(buf.Len()) > f.maxBytes {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %s limit", name, utils.FormatFileSize(f.maxBytes)), nil)
	}
	return buf.Bytes(), nil
}

func (f *Fetcher) s3Client(ctx context.Context) (ObjectGetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(f.cfg.Region)}
	if f.cfg.AccessKeyID != "" && f.cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKeyID, f.cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	f.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if f.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(f.cfg.Endpoint)
		}
		o.UsePathStyle = f.cfg.UsePathStyle
	})
	return f.client, nil
}
