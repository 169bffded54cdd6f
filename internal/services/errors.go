package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUsage         = errors.New("usage error")
	ErrSourceFormat  = errors.New("source format error")
	ErrSizeLimit     = errors.New("size limit exceeded")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Exit codes surfaced by the CLI.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// SourceFormat reports a missing or malformed structural element of an input.
func SourceFormat(component, message string) error {
	return Wrap(ErrSourceFormat, component, "read", message, nil)
}

// ExitCode maps a fatal error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFatal
	}
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
