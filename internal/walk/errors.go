// Package walk traverses paginated search results and collects the detail
// link for every result row across all pages.
package walk

import "fmt"

// WalkError represents a pagination traversal failure
type WalkError struct {
	Message string
	Cause   error
}

func (e *WalkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("walk error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("walk error: %s", e.Message)
}

func (e *WalkError) Unwrap() error {
	return e.Cause
}
