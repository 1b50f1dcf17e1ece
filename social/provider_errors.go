package social

import "fmt"

// ProviderError carries the normalized detail of a failed provider HTTP call
// so callers can log status and operation without parsing error strings.
type ProviderError struct {
	Provider  string
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}

	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}

	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed (%d): %s", e.Provider, e.Operation, e.Status, msg)
	}

	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, msg)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Metadata exposes the call detail for structured error wrapping.
func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{
		"provider":  e.Provider,
		"operation": e.Operation,
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Message != "" {
		meta["message"] = e.Message
	}

	return meta
}
