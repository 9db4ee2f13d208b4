// internal/app/bootstrap/workers.go
package bootstrap

import (
	"sync"

	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/mahallehub/internal/app/system/workers"
	"go.uber.org/zap"
)

var (
	workersMu sync.Mutex
	running   []interface{ Stop() }
)

// startWorkers launches the background workers that Shutdown stops.
func startWorkers(svc *Services, appCfg AppConfig, logger *zap.Logger) *workers.IndexWarmer {
	warmer := workers.NewIndexWarmer(svc.DistrictIndex, logger, appCfg.DistrictIndexTTL, timeouts.Long())
	warmer.Start()

	workersMu.Lock()
	running = append(running, warmer)
	workersMu.Unlock()
	return warmer
}

func stopWorkers() {
	workersMu.Lock()
	defer workersMu.Unlock()
	for _, w := range running {
		w.Stop()
	}
	running = nil
}
