package repositories

import (
	"time"

	"logingate/internal/models"
)

// CodeRecordRepository keeps the latest code issued per mobile.
type CodeRecordRepository interface {
	Get(mobile string) (models.CodeRecord, bool)
	Put(rec models.CodeRecord)
	Expirer
	Len() int
}

type codeRecordRepository struct {
	store *memoryStore[models.CodeRecord]
}

func NewCodeRecordRepository(maxAge time.Duration) CodeRecordRepository {
	return &codeRecordRepository{
		store: newMemoryStore[models.CodeRecord](maxAge),
	}
}

func (r *codeRecordRepository) Get(mobile string) (models.CodeRecord, bool) {
	return r.store.get(mobile)
}

func (r *codeRecordRepository) Put(rec models.CodeRecord) {
	r.store.put(rec.Mobile, rec)
}

func (r *codeRecordRepository) StartExpiry() { r.store.start() }
func (r *codeRecordRepository) StopExpiry()  { r.store.stop() }

func (r *codeRecordRepository) Len() int { return r.store.len() }
