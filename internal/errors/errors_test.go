package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestAppErrorUnwrapThroughWrapping(t *testing.T) {
	sentinel := stderrors.New("unsupported")
	appErr := NewExtractionError(ErrCodeUnsupportedFileType, "type image/png is not accepted", sentinel)
	wrapped := fmt.Errorf("upload: %w", appErr)

	if !stderrors.Is(wrapped, sentinel) {
		t.Error("expected sentinel to be reachable through the AppError")
	}
	if !HasCode(wrapped, ErrCodeUnsupportedFileType) {
		t.Error("expected HasCode to find the extraction code")
	}
	if HasCode(wrapped, ErrCodeExtractionFailed) {
		t.Error("unexpected code match")
	}

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if got.Type != ErrorTypeExtraction {
		t.Errorf("Type = %s, want %s", got.Type, ErrorTypeExtraction)
	}
}

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewSessionError(ErrCodeSessionNotFound, "no saved session", nil),
			want: "SESSION_NOT_FOUND: no saved session",
		},
		{
			name: "with cause",
			err:  NewIOError(ErrCodeFileNotFound, "File not found: a.txt", stderrors.New("enoent")),
			want: "FILE_NOT_FOUND: File not found: a.txt (caused by: enoent)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogErrorFlattensContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewValidationError(ErrCodeInvalidRequest, "resume text is required", nil).
		WithContext("field", "resumeText")
	logger.LogError(err, "request rejected", "path", "/score")

	var record map[string]any
	if jsonErr := json.Unmarshal(buf.Bytes(), &record); jsonErr != nil {
		t.Fatalf("log output is not JSON: %v", jsonErr)
	}

	expect := map[string]string{
		"msg":        "request rejected",
		"error_type": "validation",
		"error_code": ErrCodeInvalidRequest,
		"field":      "resumeText",
		"path":       "/score",
	}
	for key, want := range expect {
		if got, _ := record[key].(string); got != want {
			t.Errorf("record[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := ParseLevel(level); err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", level, err)
		}
	}
	if _, err := New("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
