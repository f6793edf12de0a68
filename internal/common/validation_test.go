package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	configured := []string{"json", "text", "markdown"}

	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectedError    string
	}{
		{name: "json", format: "json", supportedFormats: configured},
		{name: "text", format: "text", supportedFormats: configured},
		{name: "markdown", format: "markdown", supportedFormats: configured},
		{
			name:             "not configured",
			format:           "xml",
			supportedFormats: configured,
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive",
			format:           "JSON",
			supportedFormats: configured,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "configured but no formatter",
			format:           "yaml",
			supportedFormats: []string{"json", "yaml"},
			expectedError:    "no formatter registered for 'yaml'. Available: [json markdown text]",
		},
		{name: "no restriction configured", format: "markdown", supportedFormats: nil},
		{
			name:          "no restriction still needs a formatter",
			format:        "csv",
			expectedError: "no formatter registered for 'csv'. Available: [json markdown text]",
		},
		{
			name:             "restricted subset",
			format:           "text",
			supportedFormats: []string{"json"},
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if tt.expectedError == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error %q but got none", tt.expectedError)
			}
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
			}
		})
	}
}

func TestResolveOutputFormat(t *testing.T) {
	if got := ResolveOutputFormat("", "json"); got != "json" {
		t.Errorf("ResolveOutputFormat(\"\", json) = %q, want json", got)
	}
	if got := ResolveOutputFormat("markdown", "json"); got != "markdown" {
		t.Errorf("ResolveOutputFormat(markdown, json) = %q, want markdown", got)
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}
