package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxAttempts = 3
	retryPause  = 200 * time.Millisecond
)

// Job is one unit of best-effort outbound work.
type Job struct {
	ID        string
	Name      string
	OrderCode string
	Run       func(ctx context.Context) error
}

type Recorder interface {
	ObserveJob(job, outcome string)
	JobDropped(job string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveJob(string, string) {}
func (nopRecorder) JobDropped(string)         {}

type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Attempts  int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = c.Workers * 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Attempts <= 0 {
		c.Attempts = 1
	}
	if c.Attempts > MaxAttempts {
		c.Attempts = MaxAttempts
	}
	return c
}

// Dispatcher runs jobs on a fixed worker pool fed by a bounded queue.
type Dispatcher struct {
	cfg     Config
	rec     Recorder
	jobs    chan Job
	pause   time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewDispatcher(cfg Config, rec Recorder) *Dispatcher {
	cfg = cfg.withDefaults()
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Dispatcher{
		cfg:   cfg,
		rec:   rec,
		jobs:  make(chan Job, cfg.QueueSize),
		pause: retryPause,
	}
}

// Start launches the workers. Jobs run on a context detached from ctx's cancellation,
// so a request or signal ending does not abort queued work; Stop ends it.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	d.ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 1; i <= d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
	logger.Log.Info("notify dispatcher started",
		zap.Int("workers", d.cfg.Workers), zap.Int("queue", d.cfg.QueueSize))
}

// Enqueue never blocks. It reports false when the job was dropped.
func (d *Dispatcher) Enqueue(j Job) bool {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(j, "dispatcher stopped")
		return false
	}
	select {
	case d.jobs <- j:
		return true
	default:
		d.drop(j, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(j Job, reason string) {
	d.rec.JobDropped(j.Name)
	logger.Log.Warn("notification dropped",
		zap.String("job_id", j.ID), zap.String("job", j.Name),
		zap.String("order", j.OrderCode), zap.String("reason", reason))
}

// Stop closes the queue and waits for workers to drain it. When ctx expires first,
// in-flight jobs are cancelled and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) workerLoop(id int) {
	for j := range d.jobs {
		err := d.run(j)
		if err != nil {
			d.rec.ObserveJob(j.Name, "failed")
			logger.Log.Warn("notification failed",
				zap.Int("worker", id), zap.String("job_id", j.ID), zap.String("job", j.Name),
				zap.String("order", j.OrderCode), zap.Error(err))
			continue
		}
		d.rec.ObserveJob(j.Name, "sent")
		logger.Log.Debug("notification sent",
			zap.Int("worker", id), zap.String("job_id", j.ID), zap.String("job", j.Name),
			zap.String("order", j.OrderCode))
	}
}

func (d *Dispatcher) run(j Job) error {
	var err error
	for attempt := 1; attempt <= d.cfg.Attempts; attempt++ {
		if d.ctx.Err() != nil {
			return d.ctx.Err()
		}
		err = d.attempt(j)
		if err == nil {
			return nil
		}
		if attempt < d.cfg.Attempts {
			select {
			case <-time.After(d.pause):
			case <-d.ctx.Done():
				return errors.Join(err, d.ctx.Err())
			}
		}
	}
	return err
}

func (d *Dispatcher) attempt(j Job) (err error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("job panicked")
			logger.Log.Error("notification job panicked", zap.String("job", j.Name), zap.Any("panic", r))
		}
	}()
	return j.Run(ctx)
}
