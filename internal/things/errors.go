package things

import "fmt"

// ErrorCode classifies a rejected property access.
type ErrorCode string

// Property error codes.
const (
	CodeNotFound     ErrorCode = "not_found"
	CodeTypeMismatch ErrorCode = "type_mismatch"
	CodeReadOnly     ErrorCode = "read_only"
)

// PropertyError reports why a property could not be read or written.
type PropertyError struct {
	Code     ErrorCode
	Property string
	Detail   string
}

func (e *PropertyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("property %q: %s", e.Property, e.Code)
	}
	return fmt.Sprintf("property %q: %s: %s", e.Property, e.Code, e.Detail)
}

func notFound(name string) error {
	return &PropertyError{Code: CodeNotFound, Property: name}
}
