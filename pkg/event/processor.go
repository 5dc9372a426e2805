package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/experimentkit/pkg/logger"
)

const (
	defaultQueueSize     = 1000
	defaultBatchSize     = 10
	defaultFlushInterval = 30 * time.Second
)

// BatchProcessor decouples decision calls from event delivery: Dispatch
// enqueues without blocking, a background worker flushes accumulated events
// to the wrapped sink in batches. Delivery failures are logged and dropped;
// the originating decision already succeeded.
type BatchProcessor struct {
	sink   Dispatcher
	queue  chan Event
	logger *slog.Logger

	batchSize     int
	flushInterval time.Duration

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
	stopping atomic.Bool
}

// ProcessorOption configures a BatchProcessor.
type ProcessorOption func(*BatchProcessor)

// WithQueueSize sets the enqueue buffer capacity.
func WithQueueSize(n int) ProcessorOption {
	return func(p *BatchProcessor) {
		if n > 0 {
			p.queue = make(chan Event, n)
		}
	}
}

// WithBatchSize sets how many events a flush delivers at most.
func WithBatchSize(n int) ProcessorOption {
	return func(p *BatchProcessor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval sets how long a partial batch may wait before delivery.
func WithFlushInterval(d time.Duration) ProcessorOption {
	return func(p *BatchProcessor) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// WithProcessorLogger sets the logger for delivery diagnostics.
func WithProcessorLogger(log *slog.Logger) ProcessorOption {
	return func(p *BatchProcessor) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewBatchProcessor creates a processor delivering to the given sink.
func NewBatchProcessor(sink Dispatcher, opts ...ProcessorOption) (*BatchProcessor, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	p := &BatchProcessor{
		sink:          sink,
		logger:        slog.Default(),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue == nil {
		p.queue = make(chan Event, defaultQueueSize)
	}
	return p, nil
}

// Start launches the background flush worker.
func (p *BatchProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(ctx)
	return nil
}

// Stop drains the queue, flushes the remaining events and waits for the
// worker to exit.
func (p *BatchProcessor) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	// Stopping is permanent: a stopped processor refuses new events so that
	// nothing is silently lost after the final flush.
	p.stopping.Store(true)
	cancel()
	p.wg.Wait()
}

// Dispatch enqueues the event for asynchronous delivery. When the queue is
// full or the processor is stopping, the event is dropped with a warning:
// blocking a decision call on analytics delivery is never acceptable.
func (p *BatchProcessor) Dispatch(ctx context.Context, ev Event) error {
	if p.stopping.Load() {
		return ErrStopped
	}

	select {
	case p.queue <- ev:
		return nil
	default:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "Event queue full, dropping event",
			slog.String("event_id", ev.ID),
			slog.String("event_type", string(ev.Type)),
		)
		return ErrQueueFull
	}
}

func (p *BatchProcessor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, p.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, ev := range batch {
			// Delivery runs outside the canceled start context on purpose:
			// shutdown still flushes what was accepted.
			if err := p.sink.Dispatch(context.WithoutCancel(ctx), ev); err != nil {
				p.logger.LogAttrs(ctx, slog.LevelError, "Event delivery failed",
					slog.String("event_id", ev.ID),
					logger.Error(err),
				)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-p.queue:
			batch = append(batch, ev)
			if len(batch) >= p.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-ctx.Done():
			// Drain whatever was enqueued before shutdown.
			for {
				select {
				case ev := <-p.queue:
					batch = append(batch, ev)
					if len(batch) >= p.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
