package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logingate/internal/logging"
	"logingate/internal/models"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestCodeRecordRepository_PutOverwrites(t *testing.T) {
	r := NewCodeRecordRepository(0)
	_, ok := r.Get("+15551234567")
	assert.False(t, ok)

	r.Put(models.CodeRecord{Mobile: "+15551234567", Code: "1111", IssuedAt: t0})
	r.Put(models.CodeRecord{Mobile: "+15551234567", Code: "2222", IssuedAt: t0.Add(time.Minute)})

	rec, ok := r.Get("+15551234567")
	require.True(t, ok)
	assert.Equal(t, "2222", rec.Code)
	assert.Equal(t, 1, r.Len())
}

func TestQuotaRepository_UpdateKeepAndDiscard(t *testing.T) {
	r := NewQuotaRepository(0)

	c := r.Update("m", func(cur models.QuotaCounter, ok bool) (models.QuotaCounter, bool) {
		assert.False(t, ok)
		return models.QuotaCounter{Mobile: "m", Count: 1, WindowStart: t0}, true
	})
	assert.Equal(t, 1, c.Count)

	c = r.Update("m", func(cur models.QuotaCounter, ok bool) (models.QuotaCounter, bool) {
		assert.True(t, ok)
		cur.Count = 99
		return cur, false
	})
	assert.Equal(t, 1, c.Count)

	got, ok := r.Get("m")
	require.True(t, ok)
	assert.Equal(t, 1, got.Count)
}

func TestQuotaRepository_ConcurrentIncrements(t *testing.T) {
	r := NewQuotaRepository(0)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Update("m", func(cur models.QuotaCounter, ok bool) (models.QuotaCounter, bool) {
				cur.Count++
				return cur, true
			})
		}()
	}
	wg.Wait()
	got, _ := r.Get("m")
	assert.Equal(t, 200, got.Count)
}

func TestPCSessionRepository_Update(t *testing.T) {
	r := NewPCSessionRepository(0)

	_, err := r.Update("missing", func(s *models.PCSession) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	r.Put(models.PCSession{Token: "t", ClientID: "c", CreatedAt: t0, Duration: 5 * time.Minute})

	boom := errors.New("boom")
	_, err = r.Update("t", func(s *models.PCSession) error {
		s.Status = models.SessionConfirmed
		return boom
	})
	assert.ErrorIs(t, err, boom)
	s, _ := r.Get("t")
	assert.Equal(t, models.SessionCreated, s.Status)

	s, err = r.Update("t", func(s *models.PCSession) error {
		s.Status = models.SessionScanned
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionScanned, s.Status)
	stored, _ := r.Get("t")
	assert.Equal(t, models.SessionScanned, stored.Status)
}

func TestMemoryStore_KeepForeverWithoutMaxAge(t *testing.T) {
	codes := NewCodeRecordRepository(0)
	codes.Put(models.CodeRecord{Mobile: "15551234567", IssuedAt: t0})
	time.Sleep(20 * time.Millisecond)
	_, ok := codes.Get("15551234567")
	assert.True(t, ok)
	assert.Equal(t, 1, codes.Len())
}

func TestMemoryStore_MaxAgeExpires(t *testing.T) {
	codes := NewCodeRecordRepository(30 * time.Millisecond)
	sessions := NewPCSessionRepository(30 * time.Millisecond)

	codes.Put(models.CodeRecord{Mobile: "old", IssuedAt: t0})
	sessions.Put(models.PCSession{Token: "old", CreatedAt: t0})
	time.Sleep(60 * time.Millisecond)
	codes.Put(models.CodeRecord{Mobile: "new", IssuedAt: t0})

	_, ok := codes.Get("old")
	assert.False(t, ok)
	_, ok = codes.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 1, codes.Len())
	assert.Equal(t, 0, sessions.Len())
}

func TestMemoryStore_ReadsDoNotExtendLifetime(t *testing.T) {
	codes := NewCodeRecordRepository(60 * time.Millisecond)
	codes.Put(models.CodeRecord{Mobile: "m", IssuedAt: t0})
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		codes.Get("m")
	}
	_, ok := codes.Get("m")
	assert.False(t, ok)
}

func TestRunExpiry_StopsWithContext(t *testing.T) {
	codes := NewCodeRecordRepository(20 * time.Millisecond)
	quotas := NewQuotaRepository(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunExpiry(ctx, logging.Discard(), map[string]Expirer{"codes": codes, "quotas": quotas})
		close(done)
	}()

	codes.Put(models.CodeRecord{Mobile: "m", IssuedAt: t0})
	require.Eventually(t, func() bool {
		_, ok := codes.Get("m")
		return !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunExpiry should return once the context is done")
	}
}
