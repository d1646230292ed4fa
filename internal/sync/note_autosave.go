package sync

import (
	"golden-notes-be/internal/entity"
)

// NoteAutosave bundles the two independently debounced field savers of a
// note under edit and exposes the save status the editor header renders.
type NoteAutosave struct {
	name    *FieldSaver
	content *FieldSaver
}

func NewNoteAutosave(note *entity.Note, store FieldPatcher, opts ...FieldSaverOption) *NoteAutosave {
	return &NoteAutosave{
		name:    NewFieldSaver(FieldName, note.Id, note.Name, store, opts...),
		content: NewFieldSaver(FieldContent, note.Id, note.Content, store, opts...),
	}
}

func (a *NoteAutosave) EditName(value string) {
	a.name.Edit(value)
}

func (a *NoteAutosave) EditContent(value string) {
	a.content.Edit(value)
}

// Observe forwards the subscribed server copy to both field channels.
func (a *NoteAutosave) Observe(note *entity.Note) {
	a.name.Observe(note.Id, note.Name)
	a.content.Observe(note.Id, note.Content)
}

func (a *NoteAutosave) SetNavigating(navigating bool) {
	a.name.SetNavigating(navigating)
	a.content.SetNavigating(navigating)
}

// Cancel abandons the edit session, e.g. when the user navigates to another
// note before the quiescence window elapses.
func (a *NoteAutosave) Cancel() {
	a.name.Cancel()
	a.content.Cancel()
}

func (a *NoteAutosave) NameStatus() Status {
	return a.name.Status()
}

func (a *NoteAutosave) ContentStatus() Status {
	return a.content.Status()
}

// Label collapses the two channels into the single Saving/Saved caption the
// editor shows next to the cloud icon.
func (a *NoteAutosave) Label() string {
	if a.name.Status() == StatusSaving || a.content.Status() == StatusSaving {
		return "Saving"
	}
	return "Saved"
}
