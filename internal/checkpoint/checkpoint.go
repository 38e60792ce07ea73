// Package checkpoint persists the last successfully processed recording date
// so an interrupted run can resume from the following day.
package checkpoint

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nathanj/recorder-agent/internal/records"
	"github.com/nathanj/recorder-agent/internal/storage"
)

// StateKey is the single storage record that holds checkpoint state.
const StateKey = "STATE"

type state struct {
	LastProcessedDate string `json:"lastProcessedDate"`
}

// Manager reads the checkpoint once at startup and advances it as documents
// are durably emitted. Every operation is best-effort: checkpoint failures
// are logged and never affect pipeline control flow.
type Manager struct {
	store storage.Store

	last    time.Time
	hasLast bool
}

// NewManager wraps the given store. The store is also the PDF blob store;
// checkpoint state shares it under StateKey.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// ResumeStart returns the day after the stored checkpoint date. The second
// return is false when no usable checkpoint exists (absent, unreadable or
// unparseable), in which case the configured range applies unchanged.
func (m *Manager) ResumeStart(ctx context.Context) (time.Time, bool) {
	data, err := m.store.Get(ctx, StateKey)
	if err != nil {
		log.Printf("[CHECKPOINT] read failed, starting from configured range: %v", err)
		return time.Time{}, false
	}
	if data == nil {
		return time.Time{}, false
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("[CHECKPOINT] unparseable state record, starting from configured range: %v", err)
		return time.Time{}, false
	}
	last, err := time.Parse(records.ISODateLayout, st.LastProcessedDate)
	if err != nil {
		log.Printf("[CHECKPOINT] unparseable date %q, starting from configured range: %v", st.LastProcessedDate, err)
		return time.Time{}, false
	}

	m.last = last
	m.hasLast = true
	return last.AddDate(0, 0, 1), true
}

// Last returns the most recently recorded or resumed-from date, if any.
func (m *Manager) Last() (time.Time, bool) {
	return m.last, m.hasLast
}

// Record advances the checkpoint to the given recording date (site or ISO
// form). Writes never regress: a date earlier than the last recorded one is
// ignored, guarding against out-of-order completion under retries. Failures
// are logged only.
func (m *Manager) Record(ctx context.Context, date string) {
	t, err := records.ParseSiteDate(date)
	if err != nil {
		log.Printf("[CHECKPOINT] skipping unparseable date %q: %v", date, err)
		return
	}
	if m.hasLast && t.Before(m.last) {
		return
	}

	data, err := json.Marshal(state{LastProcessedDate: t.Format(records.ISODateLayout)})
	if err != nil {
		log.Printf("[CHECKPOINT] marshal failed: %v", err)
		return
	}
	if _, err := m.store.Put(ctx, StateKey, data, "application/json"); err != nil {
		log.Printf("[CHECKPOINT] write failed: %v", err)
		return
	}
	m.last = t
	m.hasLast = true
}
