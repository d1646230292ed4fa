package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// EditSession records which note a client session is currently editing.
// The websocket layer consults it to answer staleness questions: a save
// arriving for a note the session has already left is dropped upstream.
type EditSession struct {
	SessionID string
	OwnerID   uuid.UUID
	NoteID    uuid.UUID
	StartedAt time.Time
}

type EditSessionRepository struct {
	cache *cache.Cache
}

func NewEditSessionRepository() *EditSessionRepository {
	// Sessions expire after an hour of silence; expired entries are purged
	// every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &EditSessionRepository{
		cache: c,
	}
}

func (r *EditSessionRepository) Save(session *EditSession) {
	r.cache.Set(session.SessionID, session, cache.DefaultExpiration)
}

func (r *EditSessionRepository) Get(sessionID string) (*EditSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*EditSession), true
	}
	return nil, false
}

// Touch refreshes the TTL without changing the bound note.
func (r *EditSessionRepository) Touch(sessionID string) {
	if s, ok := r.Get(sessionID); ok {
		r.Save(s)
	}
}

func (r *EditSessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// IsEditing reports whether the session is still bound to the given note.
func (r *EditSessionRepository) IsEditing(sessionID string, noteID uuid.UUID) bool {
	s, ok := r.Get(sessionID)
	return ok && s.NoteID == noteID
}
