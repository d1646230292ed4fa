package service

import (
	"context"
	"encoding/json"
	"sort"
	stdsync "sync"

	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/entity"
	"golden-notes-be/internal/repository/contract"
	"golden-notes-be/internal/repository/specification"
	"golden-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// The fakes interpret the handful of specifications the services actually
// use, so service tests run against in-memory state instead of a database.

func matchNote(n *entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if n.OwnerId != s.OwnerID {
				return false
			}
		case specification.ByNotebookID:
			if n.NotebookId != s.NotebookID {
				return false
			}
		case specification.ByNotebookIDs:
			found := false
			for _, id := range s.NotebookIDs {
				if n.NotebookId == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

type fakeNoteRepo struct {
	notes    map[uuid.UUID]*entity.Note
	patches  []map[string]interface{}
	writeErr error
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*entity.Note)}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepo) PatchFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.patches = append(r.patches, patch)
	if n, ok := r.notes[id]; ok {
		if v, ok := patch["name"].(string); ok {
			n.Name = v
		}
		if v, ok := patch["content"].(string); ok {
			n.Content = v
		}
	}
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) DeleteByNotebookID(ctx context.Context, notebookID uuid.UUID) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	for id, n := range r.notes {
		if n.NotebookId == notebookID {
			delete(r.notes, id)
		}
	}
	return nil
}

func (r *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	for _, n := range r.notes {
		if matchNote(n, specs) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var out []*entity.Note
	for _, n := range r.notes {
		if matchNote(n, specs) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeNotebookRepo struct {
	notebooks map[uuid.UUID]*entity.Notebook
	writeErr  error
}

func newFakeNotebookRepo() *fakeNotebookRepo {
	return &fakeNotebookRepo{notebooks: make(map[uuid.UUID]*entity.Notebook)}
}

func matchNotebook(n *entity.Notebook, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if n.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if n.OwnerId != s.OwnerID {
				return false
			}
		}
	}
	return true
}

func (r *fakeNotebookRepo) Create(ctx context.Context, notebook *entity.Notebook) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	cp := *notebook
	r.notebooks[notebook.Id] = &cp
	return nil
}

func (r *fakeNotebookRepo) Update(ctx context.Context, notebook *entity.Notebook) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	cp := *notebook
	r.notebooks[notebook.Id] = &cp
	return nil
}

func (r *fakeNotebookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	delete(r.notebooks, id)
	return nil
}

func (r *fakeNotebookRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error) {
	for _, n := range r.notebooks {
		if matchNotebook(n, specs) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNotebookRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error) {
	var out []*entity.Notebook
	for _, n := range r.notebooks {
		if matchNotebook(n, specs) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotebookRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeUserRepo struct {
	users         map[uuid.UUID]*entity.User
	refreshTokens map[uuid.UUID]*entity.UserRefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[uuid.UUID]*entity.User),
		refreshTokens: make(map[uuid.UUID]*entity.UserRefreshToken),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		matched := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if u.Id != s.ID {
					matched = false
				}
			case specification.ByEmail:
				if u.Email != s.Email {
					matched = false
				}
			}
		}
		if matched {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	cp := *token
	r.refreshTokens[token.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error) {
	for _, t := range r.refreshTokens {
		matched := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByTokenHash); ok && t.TokenHash != s.TokenHash {
				matched = false
			}
		}
		if matched {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	for _, t := range r.refreshTokens {
		if t.TokenHash == tokenHash {
			t.Revoked = true
		}
	}
	return nil
}

// fakeUow hands out the in-memory repositories and records transaction
// boundaries.
type fakeUow struct {
	noteRepo     *fakeNoteRepo
	notebookRepo *fakeNotebookRepo
	userRepo     *fakeUserRepo

	begun      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.begun = true
	return nil
}

func (u *fakeUow) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUow) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository         { return u.userRepo }
func (u *fakeUow) NotebookRepository() contract.NotebookRepository { return u.notebookRepo }
func (u *fakeUow) NoteRepository() contract.NoteRepository         { return u.noteRepo }

type fakeUowFactory struct {
	uow *fakeUow
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{
		uow: &fakeUow{
			noteRepo:     newFakeNoteRepo(),
			notebookRepo: newFakeNotebookRepo(),
			userRepo:     newFakeUserRepo(),
		},
	}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakeBusPublisher captures note change payloads instead of hitting the bus.
type fakeBusPublisher struct {
	mu       stdsync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakeBusPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakeBusPublisher) Messages() []dto.NoteChangedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]dto.NoteChangedMessage, 0, len(p.payloads))
	for _, raw := range p.payloads {
		var msg dto.NoteChangedMessage
		if err := json.Unmarshal(raw, &msg); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

type fakeMailer struct {
	mu   stdsync.Mutex
	sent []string
}

func (m *fakeMailer) SendWelcome(toEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *fakeMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}
