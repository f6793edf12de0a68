package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/extract"
	"atsmatch/internal/observability"
	"atsmatch/internal/utils"
)

// FileProcessor reads resume and job-description documents (local paths or
// s3://bucket/key) as plain text and writes command output.
type FileProcessor struct {
	fetcher   *extract.Fetcher
	extractor *extract.Extractor
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// NewFileProcessor creates a file processor from the extraction and storage
// settings of cfg. metrics may be nil.
func NewFileProcessor(cfg *config.Config, metrics *observability.Metrics, logger *errors.Logger) *FileProcessor {
	return &FileProcessor{
		fetcher:   extract.NewFetcher(cfg.Storage.S3, cfg.App.MaxFileSize, logger),
		extractor: extract.New(cfg.Extraction, logger),
		metrics:   metrics,
		logger:    logger,
	}
}

// WithFetcher replaces the document fetcher.
func (fp *FileProcessor) WithFetcher(f *extract.Fetcher) *FileProcessor {
	fp.fetcher = f
	return fp
}

// ReadDocument fetches ref and returns its extracted text.
func (fp *FileProcessor) ReadDocument(ctx context.Context, ref string) (string, error) {
	if !extract.IsS3URI(ref) && !utils.IsDocumentFile(ref) {
		fp.logger.Warn("File extension is not a known document type, sniffing content", "filename", ref)
	}

	doc, err := fp.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	extracted, err := fp.extractor.Extract(ctx, doc)
	if err != nil {
		fp.metrics.RecordExtraction(ctx, doc.ContentType, len(doc.Data), err)
		return "", err
	}
	fp.metrics.RecordExtraction(ctx, extracted.ContentType, len(doc.Data), nil)

	fp.logger.Debug("Read document", "ref", ref, "content_type", extracted.ContentType, "chars", len(extracted.Text))
	return extracted.Text, nil
}

// ReadDocuments reads every ref in order.
func (fp *FileProcessor) ReadDocuments(ctx context.Context, refs ...string) ([]string, error) {
	contents := make([]string, len(refs))
	for i, ref := range refs {
		text, err := fp.ReadDocument(ctx, ref)
		if err != nil {
			return nil, err
		}
		contents[i] = text
	}
	return contents, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
