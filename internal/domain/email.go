package domain

import "fmt"

// Email is a provider-neutral transactional message.
type Email struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// ProviderStatusError is returned by mail providers that answered with a non-success status.
// The request reached the provider; transport failures are reported as plain errors.
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}
