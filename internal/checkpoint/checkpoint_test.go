package checkpoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanj/recorder-agent/internal/storage"
)

// memStore is an in-memory storage.Store for checkpoint tests.
type memStore struct {
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[storage.SanitizeKey(key)] = append([]byte(nil), data...)
	return key, nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[storage.SanitizeKey(key)]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func TestResumeStart_DayAfterStoredDate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.objects[StateKey] = []byte(`{"lastProcessedDate":"2024-03-10"}`)

	start, ok := NewManager(store).ResumeStart(ctx)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestResumeStart_NoStateFallsBack(t *testing.T) {
	_, ok := NewManager(newMemStore()).ResumeStart(context.Background())
	assert.False(t, ok)
}

func TestResumeStart_BadStateFallsBack(t *testing.T) {
	store := newMemStore()
	store.objects[StateKey] = []byte(`{"lastProcessedDate":"tenth of march"}`)
	_, ok := NewManager(store).ResumeStart(context.Background())
	assert.False(t, ok)

	store.objects[StateKey] = []byte(`{not json`)
	_, ok = NewManager(store).ResumeStart(context.Background())
	assert.False(t, ok)
}

func TestResumeStart_ReadErrorIsNonFatal(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("bucket unreachable")
	_, ok := NewManager(store).ResumeStart(context.Background())
	assert.False(t, ok)
}

func TestRecord_WritesISODate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	NewManager(store).Record(ctx, "03/10/2024")

	assert.JSONEq(t, `{"lastProcessedDate":"2024-03-10"}`, string(store.objects[StateKey]))
}

func TestRecord_NeverRegresses(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := NewManager(store)

	m.Record(ctx, "03/10/2024")
	m.Record(ctx, "03/08/2024") // out-of-order completion must not move the marker back
	assert.JSONEq(t, `{"lastProcessedDate":"2024-03-10"}`, string(store.objects[StateKey]))

	m.Record(ctx, "03/10/2024") // same date is allowed
	m.Record(ctx, "03/12/2024")
	assert.JSONEq(t, `{"lastProcessedDate":"2024-03-12"}`, string(store.objects[StateKey]))
}

func TestRecord_RegressionGuardSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.objects[StateKey] = []byte(`{"lastProcessedDate":"2024-03-10"}`)

	m := NewManager(store)
	_, ok := m.ResumeStart(ctx)
	require.True(t, ok)

	m.Record(ctx, "03/09/2024")
	assert.JSONEq(t, `{"lastProcessedDate":"2024-03-10"}`, string(store.objects[StateKey]))
}

func TestRecord_WriteErrorIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.putErr = errors.New("bucket unreachable")

	m := NewManager(store)
	m.Record(ctx, "03/10/2024") // must not panic or abort

	store.putErr = nil
	m.Record(ctx, "03/11/2024")
	assert.JSONEq(t, `{"lastProcessedDate":"2024-03-11"}`, string(store.objects[StateKey]))
}

func TestRecord_IgnoresUnparseableDates(t *testing.T) {
	store := newMemStore()
	NewManager(store).Record(context.Background(), "sometime in march")
	assert.NotContains(t, store.objects, StateKey)
}
