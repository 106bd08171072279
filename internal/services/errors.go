package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks a bad or missing query source. Fatal before a ledger exists.
	ErrInput = errors.New("input error")
	// ErrSchema marks a ledger whose header does not match the expected columns.
	ErrSchema = errors.New("schema error")
	// ErrCorruption marks a ledger whose row indices have gaps or duplicates.
	ErrCorruption = errors.New("corruption error")
	// ErrEngine marks an external engine invocation that could not be launched
	// or produced unparseable output.
	ErrEngine = errors.New("engine error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrEngine
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRunFatal reports whether an error must abort the run instead of being
// downgraded to a row status. Input, schema, corruption, and configuration
// failures leave the run undefined; engine failures are absorbed at the row
// boundary by the workflow manager.
func IsRunFatal(err error) bool {
	return errors.Is(err, ErrInput) ||
		errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrCorruption) ||
		errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
