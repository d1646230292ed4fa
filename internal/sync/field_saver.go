package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FieldPatcher persists a single field of a note. Implementations go
// through the authorization gate before touching the store.
type FieldPatcher interface {
	Patch(ctx context.Context, noteID uuid.UUID, field, value string) error
}

// FieldSaver is the debounced persistence controller for one editable field
// of one note. It holds the user's literal keystrokes in a buffer and writes
// them back after a quiescence window, subject to the guards below. Name and
// content get independent savers so a slow content save never blocks a name
// save.
//
// State machine: idle -> dirty -> saving -> {saved | error}, returning to
// dirty as edits continue. Transitions:
//
//   - Edit moves idle/saved to dirty and (re)arms the debounce timer; an
//     edit equal to the baseline settles back without a write (echo
//     suppression, so the subscription's push of a just-written value never
//     retriggers a save).
//   - The timer firing starts a write only when the view is not mid
//     navigation, the buffer differs from the baseline, the subscribed
//     server copy still matches this note, and no write is in flight.
//   - A successful write moves to saved and promotes the written value to
//     the new baseline; a rejected write moves to error, keeps the buffer so
//     the user loses nothing, and is not retried.
//
// At most one write per field is in flight at a time: edits arriving while
// saving leave the saver dirty and the write's completion re-arms the timer
// instead of racing a second write.
type FieldSaver struct {
	field    string
	noteID   uuid.UUID
	store    FieldPatcher
	clock    Clock
	debounce time.Duration

	mu         sync.Mutex
	baseline   string    // last value written to or observed from the server
	buffer     string    // the user's literal keystrokes
	observedID uuid.UUID // id of the server copy last seen by the subscription
	navigating bool
	status     Status
	inFlight   bool
	timer      Timer

	// onStatus, when set, is invoked (outside the lock) on every status
	// change so the UI can render Saving/Saved labels.
	onStatus func(field string, status Status)
}

type FieldSaverOption func(*FieldSaver)

func WithClock(c Clock) FieldSaverOption {
	return func(s *FieldSaver) { s.clock = c }
}

func WithDebounce(d time.Duration) FieldSaverOption {
	return func(s *FieldSaver) { s.debounce = d }
}

func WithStatusListener(fn func(field string, status Status)) FieldSaverOption {
	return func(s *FieldSaver) { s.onStatus = fn }
}

const DefaultDebounce = 500 * time.Millisecond

func NewFieldSaver(field string, noteID uuid.UUID, baseline string, store FieldPatcher, opts ...FieldSaverOption) *FieldSaver {
	s := &FieldSaver{
		field:      field,
		noteID:     noteID,
		store:      store,
		clock:      NewRealClock(),
		debounce:   DefaultDebounce,
		baseline:   baseline,
		buffer:     baseline,
		observedID: noteID,
		status:     StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit records a keystroke-level change to the field.
func (s *FieldSaver) Edit(value string) {
	s.mu.Lock()

	s.buffer = value

	if value == s.baseline {
		// Nothing to persist. This also swallows the subscription echo of
		// a value we just wrote.
		s.stopTimerLocked()
		if s.status == StatusDirty {
			s.setStatusLocked(StatusIdle)
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	s.setStatusLocked(StatusDirty)

	if !s.inFlight {
		s.armTimerLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// Observe feeds the saver the latest server copy pushed by the
// subscription. While a write is in flight the push is not applied to the
// baseline, so the comparison the next flush makes is against what this
// saver last wrote, not a transient overlap.
func (s *FieldSaver) Observe(noteID uuid.UUID, value string) {
	s.mu.Lock()
	s.observedID = noteID

	if s.inFlight {
		s.mu.Unlock()
		return
	}

	s.baseline = value
	if s.buffer == value && s.status == StatusDirty {
		s.stopTimerLocked()
		s.setStatusLocked(StatusSaved)
	}
	s.mu.Unlock()
	s.notify()
}

// SetNavigating marks the view as mid-navigation. Pending debounce timers
// keep running but their guard fails, so the abandoned buffer is never
// written.
func (s *FieldSaver) SetNavigating(navigating bool) {
	s.mu.Lock()
	s.navigating = navigating
	if navigating {
		s.stopTimerLocked()
	}
	s.mu.Unlock()
}

// Cancel discards the pending edit session. In-flight writes are not
// cancelled, only their local effects are suppressed.
func (s *FieldSaver) Cancel() {
	s.SetNavigating(true)
}

func (s *FieldSaver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *FieldSaver) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

func (s *FieldSaver) armTimerLocked() {
	if s.timer != nil {
		s.timer.Reset(s.debounce)
		return
	}
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.flush(context.Background())
	})
}

func (s *FieldSaver) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *FieldSaver) setStatusLocked(status Status) {
	s.status = status
}

func (s *FieldSaver) notify() {
	if s.onStatus == nil {
		return
	}
	s.mu.Lock()
	field, status := s.field, s.status
	s.mu.Unlock()
	s.onStatus(field, status)
}

// flush runs when the quiescence window elapses.
func (s *FieldSaver) flush(ctx context.Context) {
	s.mu.Lock()

	stale := s.observedID != s.noteID
	if s.navigating || s.inFlight || stale || s.buffer == s.baseline {
		if s.buffer == s.baseline && s.status == StatusDirty {
			s.setStatusLocked(StatusIdle)
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	value := s.buffer
	s.inFlight = true
	s.setStatusLocked(StatusSaving)
	s.mu.Unlock()
	s.notify()

	err := s.store.Patch(ctx, s.noteID, s.field, value)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		// Buffer is kept so the user does not lose input; no retry.
		s.setStatusLocked(StatusError)
		s.mu.Unlock()
		s.notify()
		return
	}

	s.baseline = value
	if s.buffer != s.baseline {
		// Edits landed while the write was in flight; go around again.
		s.setStatusLocked(StatusDirty)
		s.armTimerLocked()
	} else {
		s.setStatusLocked(StatusSaved)
	}
	s.mu.Unlock()
	s.notify()
}
