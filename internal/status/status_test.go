package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PostsProgressAndTerminalEvents(t *testing.T) {
	var mu sync.Mutex
	var got []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	require.NotNil(t, n)

	ctx := context.Background()
	n.Progress(ctx, "Processing document 1/2")
	n.Done(ctx, "Run complete: 2 documents")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, "Processing document 1/2", got[0].Message)
	assert.False(t, got[0].Terminal)
	assert.Equal(t, "Run complete: 2 documents", got[1].Message)
	assert.True(t, got[1].Terminal)
	assert.False(t, got[1].SentAt.IsZero())
}

func TestNotifier_PostCarriesRunID(t *testing.T) {
	var mu sync.Mutex
	var got []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	n.Post(context.Background(), Event{
		RunID:   "0d7a3f6e-4b0a-4a5e-9c1e-2f8b6d1c9a42",
		Message: "Processing document 5 of 12",
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "0d7a3f6e-4b0a-4a5e-9c1e-2f8b6d1c9a42", got[0].RunID)
	assert.Equal(t, "Processing document 5 of 12", got[0].Message)
	assert.False(t, got[0].SentAt.IsZero())
}

func TestNotifier_UnconfiguredIsNilAndSafe(t *testing.T) {
	n := NewNotifier("")
	assert.Nil(t, n)

	// Must not panic.
	n.Progress(context.Background(), "ignored")
	n.Done(context.Background(), "ignored")
}

func TestNotifier_ServerErrorIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	// Must not panic or block.
	n.Progress(context.Background(), "still fine")
}
