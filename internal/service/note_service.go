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
	"golden-notes-be/internal/sync"
	"golden-notes-be/pkg/events"
	pktNats "golden-notes-be/pkg/nats"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	GetUserNotes(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error)
	Patch(ctx context.Context, userId uuid.UUID, req *dto.PatchNoteRequest) (*dto.PatchNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

// New notes start life with a placeholder name and no content; the editor
// renames and fills them through Patch.
const defaultNoteName = "Untitled"

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByID{ID: req.NotebookId})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, apperr.ErrNotFound
	}
	if notebook.OwnerId != userId {
		return nil, apperr.ErrForbidden
	}

	note := entity.Note{
		Id:         uuid.New(),
		Name:       defaultNoteName,
		Content:    "",
		NotebookId: req.NotebookId,
		OwnerId:    userId,
		CreatedAt:  time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if err := c.publishChange(ctx, dto.NoteChangeCreated, &note); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "NOTE_CREATED",
			Data: map[string]interface{}{
				"note_id":     note.Id,
				"notebook_id": note.NotebookId,
				"user_id":     userId,
			},
			OccurredAt: time.Now(),
		}
		// Audit is auxiliary; the request succeeds either way.
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish NOTE_CREATED event: %v\n", err)
		}
	}

	return &dto.CreateNoteResponse{
		Id:   note.Id,
		Name: note.Name,
	}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.authorizedNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:         note.Id,
		Name:       note.Name,
		Content:    note.Content,
		NotebookId: note.NotebookId,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}, nil
}

// GetUserNotes returns every note the user owns across all notebooks,
// oldest first.
func (c *noteService) GetUserNotes(ctx context.Context, userId uuid.UUID) ([]*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: userId},
		specification.OrderByCreation{},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ShowNoteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, &dto.ShowNoteResponse{
			Id:         note.Id,
			Name:       note.Name,
			Content:    note.Content,
			NotebookId: note.NotebookId,
			CreatedAt:  note.CreatedAt,
			UpdatedAt:  note.UpdatedAt,
		})
	}

	return response, nil
}

func (c *noteService) Patch(ctx context.Context, userId uuid.UUID, req *dto.PatchNoteRequest) (*dto.PatchNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.authorizedNote(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	patch := map[string]interface{}{"updated_at": now}
	if req.Name != nil {
		patch[sync.FieldName] = *req.Name
		note.Name = *req.Name
	}
	if req.Content != nil {
		patch[sync.FieldContent] = *req.Content
		note.Content = *req.Content
	}
	note.UpdatedAt = &now

	if len(patch) > 1 {
		if err := uow.NoteRepository().PatchFields(ctx, note.Id, patch); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
		}

		if err := c.publishChange(ctx, dto.NoteChangeUpdated, note); err != nil {
			return nil, err
		}
	}

	return &dto.PatchNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.authorizedNote(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	return c.publishChange(ctx, dto.NoteChangeDeleted, note)
}

// authorizedNote fetches by id alone so a note owned by someone else is
// reported as forbidden, not as missing.
func (c *noteService) authorizedNote(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperr.ErrNotFound
	}
	if note.OwnerId != userId {
		return nil, apperr.ErrForbidden
	}
	return note, nil
}

func (c *noteService) publishChange(ctx context.Context, kind string, note *entity.Note) error {
	msgPayload := dto.NoteChangedMessage{
		Kind:       kind,
		NoteId:     note.Id,
		NotebookId: note.NotebookId,
		OwnerId:    note.OwnerId,
		Name:       note.Name,
		Content:    note.Content,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}

	return c.publisherService.Publish(ctx, msgJson)
}
