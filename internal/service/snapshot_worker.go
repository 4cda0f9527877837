package service

import (
	"context"
	"sync"
	"time"

	"dao-governance/internal/core/ports"
	"dao-governance/internal/core/state"

	"github.com/rs/zerolog"
)

// SnapshotWorker periodically persists the in-memory governance state
// through a ports.SnapshotStore. Memory stays authoritative: a failed save
// is logged and retried on the next interval, never blocking governance
// traffic.
type SnapshotWorker struct {
	st       *state.State
	store    ports.SnapshotStore
	interval time.Duration
	log      zerolog.Logger

	lastRev  uint64
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSnapshotWorker creates a worker that saves every interval while the
// state keeps changing.
func NewSnapshotWorker(st *state.State, store ports.SnapshotStore, interval time.Duration, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		st:       st,
		store:    store,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background save loop.
func (w *SnapshotWorker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop halts the loop and writes one final snapshot so a clean shutdown
// never loses tail mutations.
func (w *SnapshotWorker) Stop(ctx context.Context) {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.save(ctx)
}

func (w *SnapshotWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.save(context.Background())
		case <-w.stopCh:
			return
		}
	}
}

// save persists the state when it changed since the last successful save.
func (w *SnapshotWorker) save(ctx context.Context) {
	rev := w.st.Rev()
	if rev == w.lastRev {
		return
	}

	if err := w.store.Save(ctx, w.st.Snapshot()); err != nil {
		w.log.Error().Err(err).Uint64("rev", rev).Msg("snapshot save failed")
		return
	}

	w.lastRev = rev
	w.log.Debug().Uint64("rev", rev).Msg("snapshot saved")
}
