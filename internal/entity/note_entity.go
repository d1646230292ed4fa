package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is a Markdown document owned by one user and contained in exactly
// one notebook. OwnerId is stamped at creation and never changes.
type Note struct {
	Id         uuid.UUID
	Name       string
	Content    string
	NotebookId uuid.UUID
	OwnerId    uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
