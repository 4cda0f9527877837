package domain

import "fmt"

// InvocationError is a failed external invocation: a numeric failure code
// plus a message from the invoker or the target. It becomes the failure
// reason of the proposal that carried the call.
type InvocationError struct {
	Code    int
	Message string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// ExecutionFailureReason renders the human-readable cause recorded on a
// proposal whose invocation failed.
func ExecutionFailureReason(target Principal, method string, code int, message string) string {
	return fmt.Sprintf(
		"proposal execution failed: target: %s, method: %s, code: %d, message: %s",
		target, method, code, message,
	)
}
