package sync

import (
	"context"
	"sort"
	stdsync "sync"

	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"

	"github.com/google/uuid"
)

// Change is one push update delivered by a Source: a whole entity snapshot,
// never a field-level diff.
type Change struct {
	Kind string // dto.NoteChangeCreated | Updated | Deleted
	Note entity.Note
}

// Source delivers note change pushes for one scope. A Source is owned by
// exactly one reconciler; Close releases it.
type Source interface {
	Updates() <-chan Change
	Close()
}

// NoteView mirrors a single note. Pushes replace the local copy wholesale,
// but only when the pushed id matches the bound note: after the user
// navigates away the subscription may still briefly deliver the old scope,
// and those stale snapshots are dropped.
type NoteView struct {
	mu      stdsync.RWMutex
	noteID  uuid.UUID
	note    entity.Note
	deleted bool
	cancel  context.CancelFunc

	// OnChange, when set, receives every applied snapshot (e.g. to feed the
	// autosave engine's Observe).
	OnChange func(entity.Note)
}

func NewNoteView(initial entity.Note) *NoteView {
	return &NoteView{
		noteID: initial.Id,
		note:   initial,
	}
}

// Apply overlays a pushed snapshot. Returns false when the snapshot was
// stale and ignored.
func (v *NoteView) Apply(note entity.Note) bool {
	v.mu.Lock()
	if note.Id != v.noteID {
		v.mu.Unlock()
		return false
	}
	v.note = note
	onChange := v.OnChange
	v.mu.Unlock()

	if onChange != nil {
		onChange(note)
	}
	return true
}

func (v *NoteView) Note() entity.Note {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.note
}

func (v *NoteView) Deleted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.deleted
}

// Open starts consuming pushes from src until ctx ends or Close is called.
// Opening again closes the previous subscription first, so a view never has
// two live subscriptions. A nil source leaves the initial snapshot in
// place, which is the documented offline behavior.
func (v *NoteView) Open(ctx context.Context, src Source) {
	v.Close()
	if src == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	v.cancel = cancel
	v.mu.Unlock()

	go func() {
		defer src.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-src.Updates():
				if !ok {
					return
				}
				if change.Note.Id != v.noteID {
					continue
				}
				if change.Kind == dto.NoteChangeDeleted {
					v.mu.Lock()
					v.deleted = true
					v.mu.Unlock()
					continue
				}
				v.Apply(change.Note)
			}
		}
	}()
}

func (v *NoteView) Close() {
	v.mu.Lock()
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// NoteList mirrors an owner-scoped (optionally notebook-scoped) note list.
// Entities are replaced wholesale and the list is kept sorted by creation
// time ascending, matching the store's server-side ordering, so the order
// is stable across every push.
type NoteList struct {
	mu         stdsync.RWMutex
	ownerID    uuid.UUID
	notebookID *uuid.UUID
	notes      []*entity.Note
	cancel     context.CancelFunc
}

func NewNoteList(ownerID uuid.UUID, initial []*entity.Note) *NoteList {
	l := &NoteList{
		ownerID: ownerID,
		notes:   append([]*entity.Note(nil), initial...),
	}
	l.sortLocked()
	return l
}

// NewNotebookNoteList narrows the scope to a single notebook.
func NewNotebookNoteList(ownerID, notebookID uuid.UUID, initial []*entity.Note) *NoteList {
	l := NewNoteList(ownerID, initial)
	l.notebookID = &notebookID
	return l
}

func (l *NoteList) sortLocked() {
	sort.SliceStable(l.notes, func(i, j int) bool {
		return l.notes[i].CreatedAt.Before(l.notes[j].CreatedAt)
	})
}

func (l *NoteList) inScope(note entity.Note) bool {
	if note.OwnerId != l.ownerID {
		return false
	}
	if l.notebookID != nil && note.NotebookId != *l.notebookID {
		return false
	}
	return true
}

// Replace overlays a full snapshot.
func (l *NoteList) Replace(notes []*entity.Note) {
	l.mu.Lock()
	l.notes = append([]*entity.Note(nil), notes...)
	l.sortLocked()
	l.mu.Unlock()
}

func (l *NoteList) apply(change Change) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch change.Kind {
	case dto.NoteChangeDeleted:
		for i, n := range l.notes {
			if n.Id == change.Note.Id {
				l.notes = append(l.notes[:i], l.notes[i+1:]...)
				break
			}
		}
	default:
		note := change.Note
		for i, n := range l.notes {
			if n.Id == note.Id {
				l.notes[i] = &note
				l.sortLocked()
				return
			}
		}
		l.notes = append(l.notes, &note)
		l.sortLocked()
	}
}

// Notes returns a copy of the reconciled list.
func (l *NoteList) Notes() []*entity.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*entity.Note(nil), l.notes...)
}

// Open starts consuming pushes. Same lifecycle rules as NoteView.Open.
func (l *NoteList) Open(ctx context.Context, src Source) {
	l.Close()
	if src == nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		defer src.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-src.Updates():
				if !ok {
					return
				}
				if !l.inScope(change.Note) {
					continue
				}
				l.apply(change)
			}
		}
	}()
}

func (l *NoteList) Close() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
