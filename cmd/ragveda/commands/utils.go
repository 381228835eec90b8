// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output helpers and flag validation
package commands

import (
	"fmt"
	"strings"
)

// singleLine collapses runs of whitespace, including newlines, to one space
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
