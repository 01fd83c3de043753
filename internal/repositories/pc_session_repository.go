package repositories

import (
	"time"

	"logingate/internal/models"
)

type PCSessionRepository interface {
	Get(token string) (models.PCSession, bool)
	// Put stores s, replacing any session under the same token.
	Put(s models.PCSession)
	// Update applies fn to the stored session under the store lock and saves
	// the result. It returns ErrNotFound when the token is unknown; an error
	// from fn leaves the session untouched.
	Update(token string, fn func(s *models.PCSession) error) (models.PCSession, error)
	Expirer
	Len() int
}

type pcSessionRepository struct {
	store *memoryStore[models.PCSession]
}

func NewPCSessionRepository(maxAge time.Duration) PCSessionRepository {
	return &pcSessionRepository{
		store: newMemoryStore[models.PCSession](maxAge),
	}
}

func (r *pcSessionRepository) Get(token string) (models.PCSession, bool) {
	return r.store.get(token)
}

func (r *pcSessionRepository) Put(s models.PCSession) {
	r.store.put(s.Token, s)
}

func (r *pcSessionRepository) Update(token string, fn func(s *models.PCSession) error) (models.PCSession, error) {
	return r.store.update(token, func(cur models.PCSession, ok bool) (models.PCSession, bool, error) {
		if !ok {
			return cur, false, ErrNotFound
		}
		next := cur
		if err := fn(&next); err != nil {
			return cur, false, err
		}
		return next, true, nil
	})
}

func (r *pcSessionRepository) StartExpiry() { r.store.start() }
func (r *pcSessionRepository) StopExpiry()  { r.store.stop() }

func (r *pcSessionRepository) Len() int { return r.store.len() }
