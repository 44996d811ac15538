package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEnrichmentUnavailable marks a per-movie metadata fetch failure.
	// It is non-fatal: the movie is evaluated fail-closed instead.
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
	// ErrCollaboratorWrite marks a failed membership or description write
	// against the media server. The affected collection's pass fails;
	// other collections are unaffected.
	ErrCollaboratorWrite = errors.New("collaborator write error")
	ErrNotFound          = errors.New("not found")
	ErrConfiguration     = errors.New("configuration error")
	ErrTransient         = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
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
