package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notebook is a named container of notes, owned exclusively by one user.
type Notebook struct {
	Id        uuid.UUID
	Name      string
	OwnerId   uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}
