package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ItzJonatan/Set-List-Pro/audio"
	"github.com/ItzJonatan/Set-List-Pro/internal/logging"
)

// Tracker runs at most one live pass per track. Every Start or Fail bumps
// the generation; a finishing pass publishes only while its generation is
// current, so stale passes never overwrite the live result.
type Tracker struct {
	opts Options
	log  logging.Logger

	gen atomic.Uint64
	wg  sync.WaitGroup

	mu        sync.Mutex
	cancel    context.CancelFunc
	result    Result
	resultGen uint64
	lastErr   error
}

// NewTracker returns a tracker that runs passes with opts. opts.OnProgress
// only receives reports from the current generation.
func NewTracker(opts Options) *Tracker {
	return &Tracker{
		opts:   opts,
		log:    logging.OrNoOp(opts.Logger),
		result: unknownResult(),
	}
}

// Start cancels any in-flight pass and analyses buf in a new goroutine.
// It returns the generation of the new pass.
func (t *Tracker) Start(ctx context.Context, buf audio.Buffer) uint64 {
	passCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	gen := t.gen.Add(1)
	t.mu.Unlock()

	opts := t.opts
	if fn := t.opts.OnProgress; fn != nil {
		opts.OnProgress = func(p int) {
			if t.gen.Load() == gen {
				fn(p)
			}
		}
	}
	opts.Logger = t.log.WithFields(logging.Fields{"generation": gen})

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()

		res, err := Run(passCtx, buf, opts)
		t.publish(gen, res, err)
	}()
	return gen
}

// Fail records a failure that prevented a pass (for example a decode
// error) as the current, soft-failed result.
func (t *Tracker) Fail(err error) uint64 {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	gen := t.gen.Add(1)
	t.mu.Unlock()

	t.publish(gen, unknownResult(), err)
	return gen
}

// Cancel stops the in-flight pass, if any. Its result is discarded.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen.Add(1)
}

func (t *Tracker) publish(gen uint64, res Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gen.Load() != gen {
		t.log.Debug("discarding stale analysis", logging.Fields{"generation": gen})
		return
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.log.Error(err, "analysis failed", logging.Fields{"generation": gen})
		}
		res = unknownResult()
	}
	t.result = res
	t.resultGen = gen
	t.lastErr = err
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Generation returns the current generation.
func (t *Tracker) Generation() uint64 {
	return t.gen.Load()
}

// Result returns the latest published result and whether it belongs to
// the current generation.
func (t *Tracker) Result() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.resultGen == t.gen.Load()
}

// Err returns the error of the latest published pass, or nil.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Wait blocks until every started pass has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
