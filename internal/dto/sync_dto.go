package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	NoteChangeCreated = "created"
	NoteChangeUpdated = "updated"
	NoteChangeDeleted = "deleted"
)

// NoteChangedMessage is published on the in-process bus after every
// successful note mutation and fanned out to the owner's live sessions.
type NoteChangedMessage struct {
	Kind       string     `json:"kind"` // created | updated | deleted
	NoteId     uuid.UUID  `json:"note_id"`
	NotebookId uuid.UUID  `json:"notebook_id"`
	OwnerId    uuid.UUID  `json:"owner_id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
