package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat checks a requested output format against the
// configured allowlist. An empty allowlist accepts any format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
