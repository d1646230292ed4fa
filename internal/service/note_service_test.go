package service

import (
	"context"
	"testing"
	"time"

	"golden-notes-be/internal/apperr"
	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func seedNotebook(f *fakeUowFactory, owner uuid.UUID) *entity.Notebook {
	nb := &entity.Notebook{
		Id:        uuid.New(),
		Name:      "General notes",
		OwnerId:   owner,
		CreatedAt: time.Now(),
	}
	f.uow.notebookRepo.notebooks[nb.Id] = nb
	return nb
}

func seedNote(f *fakeUowFactory, owner, notebookID uuid.UUID, name, content string, createdAt time.Time) *entity.Note {
	n := &entity.Note{
		Id:         uuid.New(),
		Name:       name,
		Content:    content,
		NotebookId: notebookID,
		OwnerId:    owner,
		CreatedAt:  createdAt,
	}
	f.uow.noteRepo.notes[n.Id] = n
	return n
}

func TestNoteCreateDefaults(t *testing.T) {
	factory := newFakeUowFactory()
	publisher := &fakeBusPublisher{}
	owner := uuid.New()
	nb := seedNotebook(factory, owner)

	svc := NewNoteService(factory, publisher, nil)

	res, err := svc.Create(context.Background(), owner, &dto.CreateNoteRequest{NotebookId: nb.Id})
	assert.NoError(t, err)
	assert.Equal(t, "Untitled", res.Name)

	stored := factory.uow.noteRepo.notes[res.Id]
	assert.NotNil(t, stored)
	assert.Equal(t, "Untitled", stored.Name)
	assert.Empty(t, stored.Content)
	assert.Equal(t, owner, stored.OwnerId)

	msgs := publisher.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, dto.NoteChangeCreated, msgs[0].Kind)
	assert.Equal(t, res.Id, msgs[0].NoteId)
}

func TestNoteCreateAuthorization(t *testing.T) {
	factory := newFakeUowFactory()
	owner := uuid.New()
	nb := seedNotebook(factory, owner)

	svc := NewNoteService(factory, &fakeBusPublisher{}, nil)

	_, err := svc.Create(context.Background(), owner, &dto.CreateNoteRequest{NotebookId: uuid.New()})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "missing notebook")

	_, err = svc.Create(context.Background(), uuid.New(), &dto.CreateNoteRequest{NotebookId: nb.Id})
	assert.ErrorIs(t, err, apperr.ErrForbidden, "someone else's notebook")
}

func TestNoteShowDistinguishesForbiddenFromMissing(t *testing.T) {
	factory := newFakeUowFactory()
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	note := seedNote(factory, owner, nb.Id, "Groceries", "- milk", time.Now())

	svc := NewNoteService(factory, &fakeBusPublisher{}, nil)

	res, err := svc.Show(context.Background(), owner, note.Id)
	assert.NoError(t, err)
	assert.Equal(t, "Groceries", res.Name)
	assert.Equal(t, "- milk", res.Content)

	_, err = svc.Show(context.Background(), uuid.New(), note.Id)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Show(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetUserNotesOrderedOldestFirst(t *testing.T) {
	factory := newFakeUowFactory()
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	base := time.Now()

	seedNote(factory, owner, nb.Id, "second", "", base.Add(time.Hour))
	seedNote(factory, owner, nb.Id, "first", "", base)
	seedNote(factory, uuid.New(), nb.Id, "not mine", "", base)

	svc := NewNoteService(factory, &fakeBusPublisher{}, nil)

	res, err := svc.GetUserNotes(context.Background(), owner)
	assert.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, "first", res[0].Name)
	assert.Equal(t, "second", res[1].Name)
}

func TestNotePatchIsFieldScoped(t *testing.T) {
	factory := newFakeUowFactory()
	publisher := &fakeBusPublisher{}
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	note := seedNote(factory, owner, nb.Id, "Untitled", "existing content", time.Now())

	svc := NewNoteService(factory, publisher, nil)

	name := "Groceries"
	_, err := svc.Patch(context.Background(), owner, &dto.PatchNoteRequest{Id: note.Id, Name: &name})
	assert.NoError(t, err)

	patches := factory.uow.noteRepo.patches
	assert.Len(t, patches, 1)
	assert.Equal(t, "Groceries", patches[0]["name"])
	_, hasContent := patches[0]["content"]
	assert.False(t, hasContent, "a name-only patch must not carry content")

	stored := factory.uow.noteRepo.notes[note.Id]
	assert.Equal(t, "existing content", stored.Content, "content untouched by name patch")

	msgs := publisher.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, dto.NoteChangeUpdated, msgs[0].Kind)
	assert.Equal(t, "Groceries", msgs[0].Name)
	assert.Equal(t, "existing content", msgs[0].Content)
}

func TestNotePatchWithNoFieldsIsNoop(t *testing.T) {
	factory := newFakeUowFactory()
	publisher := &fakeBusPublisher{}
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	note := seedNote(factory, owner, nb.Id, "Untitled", "", time.Now())

	svc := NewNoteService(factory, publisher, nil)

	_, err := svc.Patch(context.Background(), owner, &dto.PatchNoteRequest{Id: note.Id})
	assert.NoError(t, err)
	assert.Empty(t, factory.uow.noteRepo.patches)
	assert.Empty(t, publisher.Messages())
}

func TestNotePatchPersistenceFailure(t *testing.T) {
	factory := newFakeUowFactory()
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	note := seedNote(factory, owner, nb.Id, "Untitled", "", time.Now())

	factory.uow.noteRepo.writeErr = assert.AnError

	svc := NewNoteService(factory, &fakeBusPublisher{}, nil)

	content := "unsaved"
	_, err := svc.Patch(context.Background(), owner, &dto.PatchNoteRequest{Id: note.Id, Content: &content})
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

func TestNoteDeleteAnnouncesDeletion(t *testing.T) {
	factory := newFakeUowFactory()
	publisher := &fakeBusPublisher{}
	owner := uuid.New()
	nb := seedNotebook(factory, owner)
	note := seedNote(factory, owner, nb.Id, "Doomed", "", time.Now())

	svc := NewNoteService(factory, publisher, nil)

	err := svc.Delete(context.Background(), owner, note.Id)
	assert.NoError(t, err)
	assert.NotContains(t, factory.uow.noteRepo.notes, note.Id)

	msgs := publisher.Messages()
	assert.Len(t, msgs, 1)
	assert.Equal(t, dto.NoteChangeDeleted, msgs[0].Kind)
	assert.Equal(t, note.Id, msgs[0].NoteId)

	err = svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
