package repositories

import (
	"context"
	"sync"

	"logingate/internal/logging"
)

// Expirer is a store whose entries age out in the background.
type Expirer interface {
	StartExpiry()
	StopExpiry()
}

// RunExpiry runs the expiry loop of every store until ctx is done, then stops
// them and returns.
func RunExpiry(ctx context.Context, logger logging.Logger, stores map[string]Expirer) {
	var wg sync.WaitGroup
	for name, s := range stores {
		wg.Add(1)
		go func(s Expirer) {
			defer wg.Done()
			s.StartExpiry()
		}(s)
		logger.Info(ctx, "[expiry][run] started", "store", name)
	}
	<-ctx.Done()
	for _, s := range stores {
		s.StopExpiry()
	}
	wg.Wait()
}
