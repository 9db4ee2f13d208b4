// Package invalidate carries the "citizen data changed" signal to whatever
// derived state depends on citizen rows.
package invalidate

import (
	"context"

	"go.uber.org/zap"
)

// Notifier receives change signals. Calls are fire-and-forget.
type Notifier interface {
	CitizensChanged(ctx context.Context, reason string)
}

// Dropper is anything holding derived state that can be discarded.
type Dropper interface {
	Invalidate()
}

// Local drops in-process caches and logs the signal.
type Local struct {
	targets []Dropper
	log     *zap.Logger
}

// NewLocal returns a Notifier that invalidates each target.
func NewLocal(log *zap.Logger, targets ...Dropper) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{targets: targets, log: log}
}

func (l *Local) CitizensChanged(_ context.Context, reason string) {
	if l == nil {
		return
	}
	for _, t := range l.targets {
		t.Invalidate()
	}
	l.log.Debug("citizen data changed; derived caches dropped", zap.String("reason", reason))
}

// Nop ignores every signal.
type Nop struct{}

func (Nop) CitizensChanged(context.Context, string) {}
