package services

// ProviderError represents a failure talking to the embedding or completion
// provider: unreachable, rate-limited, or a malformed payload. Provider
// failures are never retried and never substituted with default output.
type ProviderError struct {
	Provider  string // "embedding" or "completion"
	Operation string
	Err       error
	Message   string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Provider + " " + e.Operation + ": " + e.Err.Error()
	}
	return e.Provider + " " + e.Operation + ": unknown error"
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(provider, operation string, err error, message string) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
