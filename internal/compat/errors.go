package compat

// CompletionError represents a legacy-formatted error for completion
// endpoints. This is the error structure legacy clients expect.
type CompletionError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface, returning the error message.
func (e *CompletionError) Error() string {
	return e.Message
}

// ErrorResponse wraps CompletionError in the envelope legacy clients expect:
// {"error": {...}}
type ErrorResponse struct {
	// Err is the underlying error detail. JSON tag ensures it serializes as "error".
	Err *CompletionError `json:"error"`
}

// Error implements the error interface, returning the underlying error message.
// This allows ErrorResponse to be used directly in error returns while keeping
// the full legacy error structure for marshaling.
func (e *ErrorResponse) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Message
}
