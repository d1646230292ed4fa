package mapper

import (
	"time"

	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/model"
)

// NoteMapper is the strict boundary between the store's row shape and the
// domain entity. Every read passes through ToEntity.
type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:         n.Id,
		Name:       n.Name,
		Content:    n.Content,
		NotebookId: n.NotebookId,
		OwnerId:    n.OwnerId,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:         n.Id,
		Name:       n.Name,
		Content:    n.Content,
		NotebookId: n.NotebookId,
		OwnerId:    n.OwnerId,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
