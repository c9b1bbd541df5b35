package inventory

import (
	"context"
	"log/slog"
	"sync"
)

// EditSession is the transient inline quantity editor of one row.
type EditSession struct {
	view      *ListView
	productID int64

	mu      sync.Mutex
	pending int
	editing bool
}

// BeginEdit opens an editor for p seeded with its current quantity. An editor
// already open on the same row is replaced.
func (v *ListView) BeginEdit(p Product) *EditSession {
	s := &EditSession{view: v, productID: p.ID, pending: p.Quantity, editing: true}
	v.mu.Lock()
	if prev, ok := v.edits[p.ID]; ok {
		prev.close()
	}
	v.edits[p.ID] = s
	v.mu.Unlock()
	return s
}

// EditSession returns the open editor of the row, or nil.
func (v *ListView) EditSession(id int64) *EditSession {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edits[id]
}

// ProductID returns the edited row id.
func (s *EditSession) ProductID() int64 {
	return s.productID
}

// Pending returns the value that Save would send.
func (s *EditSession) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Editing reports whether the session is still open.
func (s *EditSession) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// SetPendingQuantity stores the raw input using parse-or-default coercion.
func (s *EditSession) SetPendingQuantity(raw string) {
	value := ParseQuantity(raw)
	s.mu.Lock()
	s.pending = value
	s.mu.Unlock()
}

// Save sends the pending quantity. The editor closes whatever the outcome.
// On success the list is refetched; the displayed quantity only changes
// through that refetch.
func (s *EditSession) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.editing {
		s.mu.Unlock()
		return ErrEditClosed
	}
	qty := s.pending
	s.mu.Unlock()

	err := s.view.gw.UpdateQuantity(ctx, s.productID, qty)
	s.end()
	if err != nil {
		if s.view.logger != nil {
			s.view.logger.Error("update quantity", slog.Int64("product_id", s.productID), slog.Int("quantity", qty), slog.Any("error", err))
		}
		s.view.notifier.Notify(LevelError, MsgUpdateQuantityFail)
		return err
	}
	s.view.notifier.Notify(LevelSuccess, MsgQuantityUpdated)
	return s.view.Refresh(ctx)
}

// Cancel closes the editor without calling the API.
func (s *EditSession) Cancel() {
	s.end()
}

func (s *EditSession) end() {
	s.close()
	s.view.mu.Lock()
	if s.view.edits[s.productID] == s {
		delete(s.view.edits, s.productID)
	}
	s.view.mu.Unlock()
}

func (s *EditSession) close() {
	s.mu.Lock()
	s.editing = false
	s.mu.Unlock()
}
