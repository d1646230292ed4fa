package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNotebookRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateNotebookResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllNotebookResponseNote struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetAllNotebookResponse struct {
	Id        uuid.UUID                     `json:"id"`
	Name      string                        `json:"name"`
	CreatedAt time.Time                     `json:"created_at"`
	UpdatedAt *time.Time                    `json:"updated_at"`
	Notes     []*GetAllNotebookResponseNote `json:"notes"`
}

type ShowNotebookResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
