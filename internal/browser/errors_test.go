package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClosedErr(t *testing.T) {
	assert.False(t, IsClosedErr(nil))
	assert.False(t, IsClosedErr(errors.New("failed waiting for \"#viewDocumentImage\"")))
	assert.False(t, IsClosedErr(context.DeadlineExceeded))
	assert.False(t, IsClosedErr(fmt.Errorf("failed to navigate: %w", context.DeadlineExceeded)))

	assert.True(t, IsClosedErr(context.Canceled))
	assert.True(t, IsClosedErr(fmt.Errorf("failed to click: %w", context.Canceled)))
	assert.True(t, IsClosedErr(errors.New("websocket: close 1006 (abnormal closure)")))
	assert.True(t, IsClosedErr(errors.New("chrome error: target closed")))
	assert.True(t, IsClosedErr(errors.New("No target with given id found")))
}
