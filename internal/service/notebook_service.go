package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golden-notes-be/internal/apperr"
	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/repository/specification"
	"golden-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INotebookService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllNotebookResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type notebookService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewNotebookService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) INotebookService {
	return &notebookService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *notebookService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllNotebookResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	notebooks, err := uow.NotebookRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: userId},
		specification.OrderByCreation{},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	result := make([]*dto.GetAllNotebookResponse, 0)
	for _, notebook := range notebooks {
		res := dto.GetAllNotebookResponse{
			Id:        notebook.Id,
			Name:      notebook.Name,
			CreatedAt: notebook.CreatedAt,
			UpdatedAt: notebook.UpdatedAt,
			Notes:     make([]*dto.GetAllNotebookResponseNote, 0),
		}
		result = append(result, &res)
		ids = append(ids, notebook.Id)
	}

	if len(ids) == 0 {
		return result, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByNotebookIDs{NotebookIDs: ids},
		specification.OwnedBy{OwnerID: userId},
		specification.OrderByCreation{},
	)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(result); i++ {
		for j := 0; j < len(notes); j++ {
			if notes[j].NotebookId == result[i].Id {
				result[i].Notes = append(result[i].Notes, &dto.GetAllNotebookResponseNote{
					Id:        notes[j].Id,
					Name:      notes[j].Name,
					CreatedAt: notes[j].CreatedAt,
					UpdatedAt: notes[j].UpdatedAt,
				})
			}
		}
	}

	return result, nil
}

func (c *notebookService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.CreateNotebookResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notebook := entity.Notebook{
		Id:        uuid.New(),
		Name:      req.Name,
		OwnerId:   userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NotebookRepository().Create(ctx, &notebook); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	return &dto.CreateNotebookResponse{
		Id: notebook.Id,
	}, nil
}

func (c *notebookService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNotebookResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	notebook, err := c.authorizedNotebook(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNotebookResponse{
		Id:        notebook.Id,
		Name:      notebook.Name,
		CreatedAt: notebook.CreatedAt,
		UpdatedAt: notebook.UpdatedAt,
	}, nil
}

// Delete removes the notebook and every note inside it in one transaction,
// so a failure partway leaves both tables untouched. Deleted notes are
// announced on the bus afterwards so open sessions drop them.
func (c *notebookService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if _, err := c.authorizedNotebook(ctx, uow, userId, id); err != nil {
		return err
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByNotebookID{NotebookID: id})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().DeleteByNotebookID(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if err := uow.NotebookRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	for _, note := range notes {
		msg := dto.NoteChangedMessage{
			Kind:       dto.NoteChangeDeleted,
			NoteId:     note.Id,
			NotebookId: note.NotebookId,
			OwnerId:    note.OwnerId,
			Name:       note.Name,
			Content:    note.Content,
			CreatedAt:  note.CreatedAt,
			UpdatedAt:  note.UpdatedAt,
		}
		msgJson, _ := json.Marshal(msg)
		if err := c.publisherService.Publish(ctx, msgJson); err != nil {
			return err
		}
	}

	return nil
}

// authorizedNotebook fetches by id alone so someone else's notebook is
// reported as forbidden, not as missing.
func (c *notebookService) authorizedNotebook(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Notebook, error) {
	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, apperr.ErrNotFound
	}
	if notebook.OwnerId != userId {
		return nil, apperr.ErrForbidden
	}
	return notebook, nil
}
