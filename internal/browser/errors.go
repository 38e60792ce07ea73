package browser

import (
	"context"
	"errors"
	"strings"
)

// closedMarkers are substrings of errors chromedp surfaces once the browser
// process or a target has gone away.
var closedMarkers = []string{
	"browser closed",
	"target closed",
	"context canceled",
	"websocket: close",
	"connection reset",
	"No target with given id",
}

// IsClosedErr reports whether an error indicates the browser session itself
// is gone, as opposed to a per-operation failure like an element wait
// timing out. Deadline expiry is never a closed-browser signal.
func IsClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	for _, marker := range closedMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
