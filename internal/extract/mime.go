package extract

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"atsmatch/internal/utils"
)

const (
	mimeOctetStream = "application/octet-stream"
	mimeZip         = "application/zip"
)

// DetectContentType picks the content type for a document: a declared type
// wins unless it is generic, then content sniffing, then the file extension.
func DetectContentType(name, declared string, data []byte) string {
	if ct := canonicalType(declared); ct != "" && !isGeneric(ct) {
		return ct
	}
	if ct := sniff(data); ct != "" && !isGeneric(ct) {
		return ct
	}
	return canonicalType(utils.ContentTypeForExtension(name))
}

// sniff uses the stdlib detector and falls back to mimetype for the
// container formats it cannot see into.
func sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	ct := canonicalType(http.DetectContentType(data))
	if !isGeneric(ct) {
		return ct
	}
	return canonicalType(mimetype.Detect(data).String())
}

// canonicalType lowercases, strips parameters and folds every text/* subtype
// into text/plain.
func canonicalType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(strings.ToLower(contentType), ";")
		mediaType = strings.TrimSpace(mediaType)
	}
	if strings.HasPrefix(mediaType, "text/") {
		return MIMEText
	}
	return mediaType
}

func isGeneric(contentType string) bool {
	return contentType == mimeOctetStream || contentType == mimeZip
}
