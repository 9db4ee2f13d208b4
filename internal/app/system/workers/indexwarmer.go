// internal/app/system/workers/indexwarmer.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"go.uber.org/zap"
)

// IndexSource is the district index cache the warmer refreshes.
type IndexSource interface {
	Get(ctx context.Context) (*districtindex.Index, error)
	Invalidate()
}

// IndexWarmer periodically rebuilds the neighborhood -> district index and
// reports neighborhoods recorded under more than one district.
type IndexWarmer struct {
	src      IndexSource
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	mu        sync.Mutex
	conflicts int
}

// NewIndexWarmer refreshes src every interval. interval <= 0 uses
// districtindex.DefaultTTL.
func NewIndexWarmer(src IndexSource, logger *zap.Logger, interval, timeout time.Duration) *IndexWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = districtindex.DefaultTTL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &IndexWarmer{
		src:      src,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start builds the index once and then begins the refresh loop.
func (w *IndexWarmer) Start() {
	w.refresh()
	w.wg.Add(1)
	go w.run()
	w.log.Info("district index warmer started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *IndexWarmer) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("district index warmer stopped")
	})
}

// Conflicts returns the number of conflicting neighborhoods seen by the last
// successful refresh.
func (w *IndexWarmer) Conflicts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conflicts
}

func (w *IndexWarmer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *IndexWarmer) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	w.src.Invalidate()
	ix, err := w.src.Get(ctx)
	if err != nil {
		w.log.Error("district index refresh failed", zap.Error(err))
		return
	}

	n := len(ix.Conflicts())
	w.mu.Lock()
	w.conflicts = n
	w.mu.Unlock()
	if n > 0 {
		w.log.Warn("district index has conflicting neighborhoods", zap.Int("count", n))
	}
}
