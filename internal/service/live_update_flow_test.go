package service

import (
	"context"
	"testing"
	"time"

	"golden-notes-be/internal/config"
	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopSyncLogger struct{}

func (nopSyncLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopSyncLogger) Info(module, message string, details map[string]interface{})  {}
func (nopSyncLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopSyncLogger) Error(module, message string, details map[string]interface{}) {}
func (nopSyncLogger) Sync() error                                                  { return nil }

// autosavePatcher persists field writes through the note service, the same
// path the PATCH route takes.
type autosavePatcher struct {
	svc    INoteService
	userID uuid.UUID
}

func (p *autosavePatcher) Patch(ctx context.Context, noteID uuid.UUID, field, value string) error {
	req := &dto.PatchNoteRequest{Id: noteID}
	switch field {
	case sync.FieldName:
		req.Name = &value
	case sync.FieldContent:
		req.Content = &value
	}
	_, err := p.svc.Patch(ctx, p.userID, req)
	return err
}

// Covers the full loop one editing session drives for another: session A's
// debounced save goes through the note service, out over the bus, and a
// second session's subscribed view and list pick it up.
func TestAutosaveChangesReachOpenSessions(t *testing.T) {
	t.Setenv("SYNC_DEBOUNCE_INTERVAL", "20ms")
	cfg := config.Load()
	assert.Equal(t, 20*time.Millisecond, cfg.Sync.DebounceInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	f := newFakeUowFactory()
	owner := uuid.New()
	notebook := seedNotebook(f, owner)
	note := seedNote(f, owner, notebook.Id, "Untitled", "", time.Now())

	svc := NewNoteService(f, NewPublisherService(sync.NoteChangesTopic, pubSub), nil)

	viewSrc, err := sync.NewBusSource(ctx, pubSub, nopSyncLogger{})
	assert.NoError(t, err)
	listSrc, err := sync.NewBusSource(ctx, pubSub, nopSyncLogger{})
	assert.NoError(t, err)

	// Session B mirrors the note and the owner's note list from its own
	// snapshots, so any change it shows had to cross the bus.
	viewSnapshot := *note
	view := sync.NewNoteView(viewSnapshot)
	view.Open(ctx, viewSrc)
	defer view.Close()

	listSnapshot := *note
	list := sync.NewNoteList(owner, []*entity.Note{&listSnapshot})
	list.Open(ctx, listSrc)
	defer list.Close()

	// Session A renames the note through the debounced autosave engine.
	saver := sync.NewFieldSaver(sync.FieldName, note.Id, note.Name, &autosavePatcher{svc: svc, userID: owner},
		sync.WithDebounce(cfg.Sync.DebounceInterval))
	saver.Edit("Meeting notes")

	assert.Eventually(t, func() bool {
		return saver.Status() == sync.StatusSaved
	}, 2*time.Second, 10*time.Millisecond, "debounced save never completed")

	assert.Eventually(t, func() bool {
		return view.Note().Name == "Meeting notes"
	}, 2*time.Second, 10*time.Millisecond, "note view never saw the rename")

	assert.Eventually(t, func() bool {
		notes := list.Notes()
		return len(notes) == 1 && notes[0].Name == "Meeting notes"
	}, 2*time.Second, 10*time.Millisecond, "note list never saw the rename")

	// Deleting the note tells session B to drop it.
	assert.NoError(t, svc.Delete(ctx, owner, note.Id))

	assert.Eventually(t, func() bool {
		return view.Deleted() && len(list.Notes()) == 0
	}, 2*time.Second, 10*time.Millisecond, "delete never reached the open session")
}
