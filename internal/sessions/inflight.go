package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// inflight tracks the running upload for each session in this process.
// Starting a newer upload cancels the older one with ErrSuperseded as the
// cause. Uploads racing across processes are caught by the upload sequence
// check at commit.
type inflight struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*run
}

type run struct {
	seq    int64
	cancel context.CancelCauseFunc
}

func newInflight() *inflight {
	return &inflight{runs: make(map[uuid.UUID]*run)}
}

// begin registers upload seq for session id and returns its context and a
// release func that must be called when the upload finishes.
func (f *inflight) begin(ctx context.Context, id uuid.UUID, seq int64) (context.Context, func()) {
	runCtx, cancel := context.WithCancelCause(ctx)
	current := &run{seq: seq, cancel: cancel}

	f.mu.Lock()
	if prev, ok := f.runs[id]; ok {
		if prev.seq > seq {
			f.mu.Unlock()
			cancel(ErrSuperseded)
			return runCtx, func() {}
		}
		prev.cancel(ErrSuperseded)
	}
	f.runs[id] = current
	f.mu.Unlock()

	return runCtx, func() {
		f.mu.Lock()
		if f.runs[id] == current {
			delete(f.runs, id)
		}
		f.mu.Unlock()
		cancel(nil)
	}
}

// abort cancels any running upload for session id.
func (f *inflight) abort(id uuid.UUID, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.runs[id]; ok {
		r.cancel(cause)
		delete(f.runs, id)
	}
}
