package mapping

import (
	"context"
	"errors"

	"github.com/xtablet/tabmap/internal/logger"
)

// ErrChangeFeedClosed means the notification channel closed underneath the
// watcher, which happens when the display connection is lost.
var ErrChangeFeedClosed = errors.New("change notification feed closed")

// Change is one "something moved" signal. Reason is only for logging; every
// change triggers the same full recompute.
type Change struct {
	Reason string
}

// Watcher drives the engine from a channel of change notifications. It is
// strictly serial: one cycle runs to completion before the next notification
// is consumed, so cycles never overlap and snapshots need no locking.
type Watcher struct {
	engine  *Engine
	changes <-chan Change
}

// NewWatcher creates a watcher consuming changes and remapping via engine.
func NewWatcher(engine *Engine, changes <-chan Change) *Watcher {
	return &Watcher{
		engine:  engine,
		changes: changes,
	}
}

// Run performs one unconditional initial cycle, then remaps on every change
// notification until ctx is cancelled (returns nil) or the feed closes
// (returns ErrChangeFeedClosed). Recoverable cycle errors are logged and the
// loop keeps waiting; the display server is expected to self-correct.
func (w *Watcher) Run(ctx context.Context) error {
	w.cycle("startup")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.changes:
			if !ok {
				return ErrChangeFeedClosed
			}
			// One physical reconfiguration fans out into a burst of
			// notifications; drain the backlog and remap once. A closed
			// channel surfaces on the next receive above.
			w.drain()
			w.cycle(change.Reason)
		}
	}
}

// drain consumes pending notifications without blocking.
func (w *Watcher) drain() {
	for {
		select {
		case _, ok := <-w.changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (w *Watcher) cycle(reason string) {
	logger.Debugf("Remapping (%s)", reason)
	res, err := w.engine.RunCycle()
	if err != nil {
		logger.Warnf("Remap skipped: %v", err)
		return
	}
	for _, f := range res.Failures {
		logger.Warnf("Device %s rejected transform: %v", f.Device, f.Err)
	}
	if res.Applied > 0 {
		logger.Infof("Mapped %d device(s) to %s with %s", res.Applied, w.engine.Target(), res.Matrix)
	}
}
