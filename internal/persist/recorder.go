package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/conceptlink/internal/game"
)

const (
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
)

// Options tunes a Recorder.
type Options struct {
	QueueSize    int
	WriteTimeout time.Duration
}

// Stats counts what happened to the records a Recorder was offered.
type Stats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Failed   int64
}

// Recorder is a game.Observer that queues records and drains them into its
// sinks on a background goroutine. A full queue drops the record.
type Recorder struct {
	sinks        []Sink
	logger       *zap.Logger
	writeTimeout time.Duration

	// base parents every sink write; Close cancels it to abandon
	// in-flight writes before the sinks are closed.
	base context.Context
	stop context.CancelFunc

	mu     sync.RWMutex
	closed bool
	queue  chan Record
	done   chan struct{}

	enqueued atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	failed   atomic.Int64
}

var _ game.Observer = (*Recorder)(nil)

// NewRecorder starts a recorder that fans records out to sinks.
func NewRecorder(logger *zap.Logger, opts Options, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	base, stop := context.WithCancel(context.Background())
	r := &Recorder{
		base:         base,
		stop:         stop,
		sinks:        sinks,
		logger:       logger.Named("persist"),
		writeTimeout: opts.WriteTimeout,
		queue:        make(chan Record, opts.QueueSize),
		done:         make(chan struct{}),
	}
	go r.drain()
	return r
}

// Observe implements game.Observer. It never blocks.
func (r *Recorder) Observe(c game.Change) {
	rec, ok := FromChange(c)
	if !ok {
		return
	}
	r.Enqueue(rec)
}

// Enqueue offers rec to the queue and reports whether it was accepted.
func (r *Recorder) Enqueue(rec Record) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return false
	}
	select {
	case r.queue <- rec:
		r.enqueued.Add(1)
		return true
	default:
		n := r.dropped.Add(1)
		r.logger.Warn("persistence queue full, dropping record",
			zap.String("kind", string(rec.Kind)),
			zap.String("session_id", rec.SessionID),
			zap.Int64("dropped_total", n))
		return false
	}
}

func (r *Recorder) drain() {
	defer close(r.done)
	for rec := range r.queue {
		if r.base.Err() != nil {
			r.dropped.Add(1)
			continue
		}
		r.dispatch(rec)
	}
}

func (r *Recorder) dispatch(rec Record) {
	ctx, cancel := context.WithTimeout(r.base, r.writeTimeout)
	defer cancel()

	var abandoned atomic.Bool
	var g errgroup.Group
	for _, s := range r.sinks {
		g.Go(func() error {
			if err := s.Write(ctx, rec); err != nil {
				if r.base.Err() != nil {
					abandoned.Store(true)
					return nil
				}
				r.failed.Add(1)
				r.logger.Warn("sink write failed",
					zap.String("sink", s.Name()),
					zap.String("kind", string(rec.Kind)),
					zap.String("session_id", rec.SessionID),
					zap.Error(err))
				return err
			}
			r.written.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	if abandoned.Load() {
		r.dropped.Add(1)
	}
}

// Stats returns a snapshot of the recorder's counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Enqueued: r.enqueued.Load(),
		Dropped:  r.dropped.Load(),
		Written:  r.written.Load(),
		Failed:   r.failed.Load(),
	}
}

// Close stops accepting records and waits for the queue to drain until ctx
// is done. On expiry it cancels in-flight writes and waits for the drain
// goroutine to stop before closing the sinks; records still queued are
// counted as dropped. Calling Close again is a no-op.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	var errs []error
	select {
	case <-r.done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("drain persistence queue: %w", ctx.Err()))
		r.stop()
		<-r.done
	}
	r.stop()

	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", s.Name(), err))
		}
	}
	if st := r.Stats(); st.Dropped > 0 || st.Failed > 0 {
		r.logger.Info("persistence recorder closed",
			zap.Int64("written", st.Written),
			zap.Int64("dropped", st.Dropped),
			zap.Int64("failed", st.Failed))
	}
	return errors.Join(errs...)
}
