package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByNotebookID struct {
	NotebookID uuid.UUID
}

func (s ByNotebookID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id = ?", s.NotebookID)
}

type ByNotebookIDs struct {
	NotebookIDs []uuid.UUID
}

func (s ByNotebookIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id IN ?", s.NotebookIDs)
}

// OrderByCreation is the canonical ordering for owner-scoped note queries:
// created_at ascending, stable across live pushes.
type OrderByCreation struct{}

func (s OrderByCreation) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
