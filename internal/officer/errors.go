package officer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for store-level facts. Stores return these (optionally
// wrapped) so the service and transport layers can translate them without
// inspecting driver errors.
var (
	// ErrNotFound means the referenced officer (or its credential) does not exist.
	ErrNotFound = errors.New("officer not found")

	// ErrUnavailable means a pooled connection could not be acquired in time.
	ErrUnavailable = errors.New("database unavailable")
)

// ValidationError reports a single malformed field (CURP, age, date, phone).
type ValidationError struct {
	Field   string // field name
	Value   string // the offending value
	Message string // human-readable rule that failed
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// MissingFieldsError aggregates every required field that was blank,
// so the caller can fix the whole submission in one round trip.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidAttachmentError reports a credential upload that is not a PDF.
type InvalidAttachmentError struct {
	ContentType string
}

func (e *InvalidAttachmentError) Error() string {
	return fmt.Sprintf("attachment must be application/pdf, got %q", e.ContentType)
}

// FieldConflict names one unique identifier that collides with an existing row.
type FieldConflict struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DuplicateError reports which of CURP/CUIP/CUP already exist, with the
// colliding values, so the response can name every conflict precisely.
type DuplicateError struct {
	Conflicts []FieldConflict
}

func (e *DuplicateError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%s: %s", c.Field, c.Value)
	}
	return "a record already exists with " + strings.Join(parts, ", ")
}
