package models

import "fmt"

// ConfigurationError is a fatal startup problem: a required credential or
// input is missing. It is raised before any claim is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError builds a ConfigurationError for a missing or invalid field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// UpstreamServiceError is a network failure or non-success response from the
// retrieval or classification service. Recoverable per claim.
type UpstreamServiceError struct {
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error {
	return e.Err
}
