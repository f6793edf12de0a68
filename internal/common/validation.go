package common

import (
	"fmt"
	"slices"

	"atsmatch/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats and the
// formatter registry. An empty supportedFormats allows every registered format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) > 0 && !slices.Contains(supportedFormats, format) {
		return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
			format, supportedFormats)
	}

	if !formatters.IsKnownFormat(format) {
		return fmt.Errorf("no formatter registered for '%s'. Available: %v",
			format, formatters.GlobalRegistry.GetSupportedFormats())
	}

	return nil
}

// ResolveOutputFormat returns the flag value, or the configured default when
// the flag was not set.
func ResolveOutputFormat(flagValue, defaultFormat string) string {
	if flagValue != "" {
		return flagValue
	}
	return defaultFormat
}
