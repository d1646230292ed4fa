package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	NotebookId uuid.UUID `json:"notebook_id" validate:"required"`
}

type CreateNoteResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ShowNoteResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	NotebookId uuid.UUID  `json:"notebook_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// PatchNoteRequest carries a partial update: only non-nil fields are written.
// Name and content patch independently so the two autosave channels never
// clobber each other.
type PatchNoteRequest struct {
	Id      uuid.UUID `json:"-"`
	Name    *string   `json:"name"`
	Content *string   `json:"content"`
}

type PatchNoteResponse struct {
	Id uuid.UUID `json:"id"`
}
