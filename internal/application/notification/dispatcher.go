package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pg-onboarding-api/internal/config"
	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/observability"
)

var (
	ErrQueueFull = errors.New("dispatch queue full")
	ErrStopped   = errors.New("dispatcher stopped")
)

// Job asks for a freshly issued code to be delivered on one channel.
type Job struct {
	UserID    string
	Channel   domain.Channel
	Recipient string // email address; empty for mobile, resolved by the sender
	Code      string
	TTL       time.Duration
	QueuedAt  time.Time
}

// Sender delivers a code over one channel.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Dropped   int64 `json:"dropped"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Queued    int   `json:"queued"`
}

// Dispatcher delivers jobs on a bounded queue drained by a fixed worker pool.
// Delivery is fire-and-forget: failures are logged and counted, never retried.
type Dispatcher struct {
	queue       chan Job
	senders     map[domain.Channel]Sender
	sendTimeout time.Duration
	wg          sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	statsMu sync.Mutex
	stats   Stats
}

// NewDispatcher starts cfg.Workers workers.
func NewDispatcher(senders map[domain.Channel]Sender, cfg config.DispatchConfig) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		queue:       make(chan Job, cfg.QueueSize),
		senders:     senders,
		sendTimeout: cfg.SendTimeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Enqueue hands job to the pool without blocking.
func (d *Dispatcher) Enqueue(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now()
	}
	select {
	case d.queue <- job:
		d.count(func(s *Stats) { s.Enqueued++ })
		observability.DispatchQueueDepth.Inc()
		return nil
	default:
		d.count(func(s *Stats) { s.Dropped++ })
		observability.OTPDispatch.WithLabelValues(string(job.Channel), "dropped").Inc()
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to drain, or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	s := d.stats
	s.Queued = len(d.queue)
	return s
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.queue {
		observability.DispatchQueueDepth.Dec()
		d.deliver(id, job)
	}
}

func (d *Dispatcher) deliver(workerID int, job Job) {
	log := slog.With("worker_id", workerID, "user_id", job.UserID, "channel", job.Channel)

	sender, ok := d.senders[job.Channel]
	if !ok {
		log.Error("no sender for channel")
		d.fail(job)
		return
	}

	ctx := context.Background()
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := sender.Send(ctx, job); err != nil {
		log.Error("otp delivery failed", "err", err)
		d.fail(job)
		return
	}
	d.count(func(s *Stats) { s.Delivered++ })
	observability.OTPDispatch.WithLabelValues(string(job.Channel), "sent").Inc()
	log.Info("otp delivered", "wait", time.Since(job.QueuedAt))
}

func (d *Dispatcher) fail(job Job) {
	d.count(func(s *Stats) { s.Failed++ })
	observability.OTPDispatch.WithLabelValues(string(job.Channel), "failed").Inc()
}

func (d *Dispatcher) count(f func(*Stats)) {
	d.statsMu.Lock()
	f(&d.stats)
	d.statsMu.Unlock()
}
