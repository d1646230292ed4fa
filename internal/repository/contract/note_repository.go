package contract

import (
	"context"

	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error

	// PatchFields applies a partial patch (name and/or content) to a single
	// note row. Fields not present in the patch are left untouched, so two
	// concurrent patches to different fields do not clobber each other.
	PatchFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNotebookID(ctx context.Context, notebookID uuid.UUID) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
