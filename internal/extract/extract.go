// Package extract turns uploaded documents into plain text for the analysis
// core. Plain text, PDF and DOCX are supported.
package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

// Supported content types.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// NoReadableText replaces an empty extraction result so downstream
// consumers always receive a non-empty resume body.
const NoReadableText = "No readable text found."

var (
	ErrUnsupportedType  = stderrors.New("unsupported document type")
	ErrExtractionFailed = stderrors.New("document text extraction failed")
)

// Document is an uploaded file. ContentType may be empty, in which case it
// is sniffed from Data and Name.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

type parser func(data []byte) (text string, pages int, err error)

// Extractor converts documents of the configured types into text.
type Extractor struct {
	allowed  []string
	maxBytes int64
	parsers  map[string]parser
	logger   *errors.Logger
}

// New creates an Extractor limited to cfg.AllowedTypes and cfg.MaxBytes.
// A non-positive MaxBytes disables the size check.
func New(cfg config.ExtractionConfig, logger *errors.Logger) *Extractor {
	allowed := make([]string, 0, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed = append(allowed, canonicalType(t))
	}
	return &Extractor{
		allowed:  allowed,
		maxBytes: cfg.MaxBytes,
		parsers: map[string]parser{
			MIMEText: extractPlainText,
			MIMEPDF:  extractPDFText,
			MIMEDocx: extractDocxText,
		},
		logger: logger,
	}
}

// Allows reports whether contentType is accepted by this extractor.
func (e *Extractor) Allows(contentType string) bool {
	return slices.Contains(e.allowed, canonicalType(contentType))
}

// Extract returns the text of doc. Errors carry ErrUnsupportedType or
// ErrExtractionFailed in their chain.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*types.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.maxBytes > 0 && int64(len(doc.Data)) > e.maxBytes {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("Document %s is %d bytes, limit is %d", doc.Name, len(doc.Data), e.maxBytes), nil).
			WithContext("document", doc.Name)
	}

	contentType := DetectContentType(doc.Name, doc.ContentType, doc.Data)
	if !e.Allows(contentType) {
		return nil, errors.NewExtractionError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("Unsupported type: %s", displayType(contentType)),
			fmt.Errorf("%w: %s", ErrUnsupportedType, displayType(contentType))).
			WithContext("document", doc.Name)
	}

	parse, ok := e.parsers[contentType]
	if !ok {
		return nil, errors.NewExtractionError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("No text extractor for %s", contentType),
			fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)).
			WithContext("document", doc.Name)
	}

	text, pages, err := parse(doc.Data)
	if err != nil {
		e.logger.LogError(err, "Document extraction failed", "document", doc.Name, "content_type", contentType)
		return nil, errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Failed to extract %s text from %s", contentType, doc.Name),
			fmt.Errorf("%w: %w", ErrExtractionFailed, err)).
			WithContext("document", doc.Name)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Warn("Document contains no readable text", "document", doc.Name, "content_type", contentType)
		text = NoReadableText
	}

	e.logger.Debug("Document extracted",
		"document", doc.Name,
		"content_type", contentType,
		"bytes", len(doc.Data),
		"pages", pages,
		"chars", len(text))

	return &types.ExtractedDocument{
		Name:        doc.Name,
		ContentType: contentType,
		Text:        text,
		Pages:       pages,
	}, nil
}

func displayType(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	return contentType
}
