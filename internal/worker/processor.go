package worker

import (
	"context"
	"sync"

	"github.com/ayo6706/payout-service/internal/observability"
	"github.com/ayo6706/payout-service/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayoutProcessor runs the processing workflow for one payout id.
type PayoutProcessor interface {
	Process(ctx context.Context, id uuid.UUID) service.ProcessResult
}

// Processor consumes dispatched payout ids on a buffered queue and drives
// them through the processing workflow on a pool of goroutines. It implements
// service.Dispatcher.
type Processor struct {
	svc       PayoutProcessor
	queue     chan uuid.UUID
	workers   int
	stopCh    chan struct{}
	stopOnce  sync.Once
	workersWG sync.WaitGroup
}

const (
	defaultQueueSize = 1024
	defaultWorkers   = 4
)

// NewProcessor creates a Processor with default queue size and worker count.
func NewProcessor(svc PayoutProcessor) *Processor {
	return &Processor{
		svc:     svc,
		queue:   make(chan uuid.UUID, defaultQueueSize),
		workers: defaultWorkers,
		stopCh:  make(chan struct{}),
	}
}

// Bind attaches the processing service. The service takes the processor as
// its dispatcher, so the two are wired in sequence: construct the processor,
// construct the service with it, then bind the service back. Must be called
// before Start.
func (p *Processor) Bind(svc PayoutProcessor) *Processor {
	p.svc = svc
	return p
}

// WithWorkers sets the number of concurrent processing goroutines.
func (p *Processor) WithWorkers(n int) *Processor {
	if n > 0 {
		p.workers = n
	}
	return p
}

// WithQueueSize sets the dispatch queue capacity.
func (p *Processor) WithQueueSize(n int) *Processor {
	if n > 0 {
		p.queue = make(chan uuid.UUID, n)
	}
	return p
}

// Dispatch enqueues a payout for processing without blocking the caller.
// A full queue drops the dispatch; the sweeper re-dispatches stale pending
// records, so a dropped id is delayed rather than lost.
func (p *Processor) Dispatch(id uuid.UUID) {
	select {
	case p.queue <- id:
		observability.SetDispatchQueueDepth(len(p.queue))
	default:
		observability.IncrementDispatchDropped()
		zap.L().Warn("payout dispatch queue full, dropping", zap.String("payout_id", id.String()))
	}
}

// Start runs the worker pool and blocks until the context is canceled or
// Stop is called.
func (p *Processor) Start(ctx context.Context) {
	zap.L().Info("payout processor starting", zap.Int("workers", p.workers), zap.Int("queue_size", cap(p.queue)))

	for i := 0; i < p.workers; i++ {
		p.workersWG.Add(1)
		go p.work(ctx)
	}
	p.workersWG.Wait()
}

func (p *Processor) work(ctx context.Context) {
	defer p.workersWG.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case id := <-p.queue:
			observability.SetDispatchQueueDepth(len(p.queue))
			result := p.svc.Process(ctx, id)
			observability.IncrementPayoutOutcome(string(result.Outcome))
			zap.L().Info("payout processing finished",
				zap.String("payout_id", result.PayoutID.String()),
				zap.String("outcome", string(result.Outcome)),
				zap.String("message", result.Message),
			)
		}
	}
}

// Stop signals the worker pool to stop.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// Run starts the processor in a goroutine and returns a stop function.
func (p *Processor) Run(ctx context.Context) func() {
	go p.Start(ctx)
	return p.Stop
}
