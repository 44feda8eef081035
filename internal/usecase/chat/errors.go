package chat

import "fmt"

// TransportError reports a failed round trip or a non-success status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("transport: status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport: %v", e.Err)
	default:
		return fmt.Sprintf("transport: status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseShapeError reports a reply without choices[0].message.content.
type ResponseShapeError struct {
	Reason string
	Err    error
}

func (e *ResponseShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response shape: %s: %v", e.Reason, e.Err)
	}
	return "unexpected response shape: " + e.Reason
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Err
}
