package repositories

import (
	"time"

	"logingate/internal/models"
)

// QuotaUpdateFunc receives the current counter (ok is false if there is
// none) and returns the counter to store and whether to store it.
type QuotaUpdateFunc func(cur models.QuotaCounter, ok bool) (next models.QuotaCounter, keep bool)

type QuotaRepository interface {
	Get(mobile string) (models.QuotaCounter, bool)
	// Update applies fn atomically for mobile and returns the stored counter.
	Update(mobile string, fn QuotaUpdateFunc) models.QuotaCounter
	Expirer
	Len() int
}

type quotaRepository struct {
	store *memoryStore[models.QuotaCounter]
}

func NewQuotaRepository(maxAge time.Duration) QuotaRepository {
	return &quotaRepository{
		store: newMemoryStore[models.QuotaCounter](maxAge),
	}
}

func (r *quotaRepository) Get(mobile string) (models.QuotaCounter, bool) {
	return r.store.get(mobile)
}

func (r *quotaRepository) Update(mobile string, fn QuotaUpdateFunc) models.QuotaCounter {
	c, _ := r.store.update(mobile, func(cur models.QuotaCounter, ok bool) (models.QuotaCounter, bool, error) {
		next, keep := fn(cur, ok)
		if !keep {
			return cur, false, nil
		}
		return next, true, nil
	})
	return c
}

func (r *quotaRepository) StartExpiry() { r.store.start() }
func (r *quotaRepository) StopExpiry()  { r.store.stop() }

func (r *quotaRepository) Len() int { return r.store.len() }
