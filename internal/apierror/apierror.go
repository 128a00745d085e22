// Package apierror provides the error envelopes returned to API clients.
// Internal details (DB errors, stack traces) never go through here.
package apierror

// Kind classifies why a request was rejected.
type Kind string

const (
	KindInvalid           Kind = "invalid"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindDuplicate         Kind = "duplicate"
)

// APIError is the envelope for plain 4xx/5xx responses.
type APIError struct {
	Error string `json:"error"`
}

func New(msg string) *APIError {
	return &APIError{Error: msg}
}

// FieldError points at one rejected field. Item is the zero-based line index
// for per-item problems and nil for header problems.
type FieldError struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Item    *int   `json:"item,omitempty"`
	Message string `json:"message"`
}

// ValidationError is the envelope for rejected writes.
type ValidationError struct {
	Success bool         `json:"success"`
	Errors  []FieldError `json:"errors"`
}

func NewValidation(errs []FieldError) *ValidationError {
	return &ValidationError{Success: false, Errors: errs}
}

// ItemIndex is a helper for building per-item FieldErrors.
func ItemIndex(i int) *int {
	return &i
}
