package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ContentActivation/internal/domain"
)

// ErrNotFound is returned by readers when no record exists for a content id.
var ErrNotFound = errors.New("no activation record")

// Sink persists records. Implementations must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// Reader looks up the newest record written for a content id.
type Reader interface {
	Latest(ctx context.Context, contentID string) (Record, error)
}

// Observer is told what happened to each record: written, failed or dropped.
type Observer interface {
	AuditRecord(result string)
}

const (
	ResultWritten = "written"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

// Options tune the recorder queue.
type Options struct {
	QueueSize     int
	EnqueueBudget time.Duration
	WriteTimeout  time.Duration
	Observer      Observer
}

// Recorder serialises attempts synchronously and writes them from a single background worker so
// the request path never waits on disk or database latency longer than the enqueue budget.
type Recorder struct {
	sink     Sink
	queue    chan Record
	budget   time.Duration
	timeout  time.Duration
	observer Observer
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewRecorder(logger *slog.Logger, sink Sink, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.EnqueueBudget <= 0 {
		opts.EnqueueBudget = 50 * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		sink:     sink,
		queue:    make(chan Record, opts.QueueSize),
		budget:   opts.EnqueueBudget,
		timeout:  opts.WriteTimeout,
		observer: opts.Observer,
		logger:   logger.With("component", "audit"),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

// Record builds the log record for the attempt and queues it. After Close the record is written
// inline instead.
func (r *Recorder) Record(attempt domain.ActivationAttempt) Record {
	rec := FromAttempt(attempt)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.write(rec)
		return rec
	}

	select {
	case r.queue <- rec:
		return rec
	default:
	}

	timer := time.NewTimer(r.budget)
	defer timer.Stop()
	select {
	case r.queue <- rec:
	case <-timer.C:
		r.logger.Warn("audit queue full, record dropped", "activation_id", rec.ActivationID)
		r.observe(ResultDropped)
	}
	return rec
}

// Close stops accepting queued records and waits for the worker to drain.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		r.write(rec)
	}
}

func (r *Recorder) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.sink.Write(ctx, rec); err != nil {
		r.logger.Warn("audit write failed", "activation_id", rec.ActivationID, "error", err)
		r.observe(ResultFailed)
		return
	}
	r.observe(ResultWritten)
}

func (r *Recorder) observe(result string) {
	if r.observer != nil {
		r.observer.AuditRecord(result)
	}
}
