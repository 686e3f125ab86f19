package dispatch

import (
	"sync"
	"time"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

// Request is one outbound robot command.
type Request struct {
	Endpoint string
	Body     interface{}
	// Beacon requests carry Payload verbatim instead of a JSON Body.
	Beacon   bool
	Payload  string
	Priority string
	Queued   time.Time

	// Generation counts the stops submitted up to and including this request.
	Generation uint64
	// Seq orders drive samples; zero for other requests.
	Seq        uint64
}

// Outcome pairs a request with what the transport reported.
type Outcome struct {
	Request  *Request
	Result   transport.Result
	Duration time.Duration
}

// RequestProcessor performs a request.
type RequestProcessor func(r *Request) transport.Result

// OutcomeHandler receives every completed request.
type OutcomeHandler func(o *Outcome)

// DiscardFilter reports whether a dequeued request is stale and must not
// be performed.
type DiscardFilter func(r *Request) bool

// Pool is a fixed set of workers draining a bounded queue. Several
// requests may be in flight at once and complete in any order.
type Pool struct {
	name           string
	workerCount    int
	queueSize      int
	logger         customlog.Logger
	queue          chan *Request
	running        bool
	wg             sync.WaitGroup
	mu             sync.Mutex
	processor      RequestProcessor
	outcomeHandler OutcomeHandler
	discard        DiscardFilter
	metrics        *PoolMetrics
}

// PoolMetrics tracks metrics for a pool
type PoolMetrics struct {
	ProcessedCount int64
	FailedCount    int64
	QueuedCount    int64
	DroppedCount   int64
	DiscardedCount int64
	LatencyAvg     int64 // in microseconds
	LatencyMax     int64 // in microseconds
	mu             sync.Mutex
}

// NewPool creates a pool; call Start before submitting.
func NewPool(name string, workerCount int, queueSize int, logger customlog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		name:        name,
		workerCount: workerCount,
		queueSize:   queueSize,
		logger:      logger,
		queue:       make(chan *Request, queueSize),
		metrics:     &PoolMetrics{},
	}
}

// SetProcessor sets the function that performs requests.
func (p *Pool) SetProcessor(processor RequestProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processor = processor
}

// SetOutcomeHandler sets the function that receives completed requests.
func (p *Pool) SetOutcomeHandler(handler OutcomeHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomeHandler = handler
}

// SetDiscardFilter sets the check run on each request before it is performed.
func (p *Pool) SetDiscardFilter(filter DiscardFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discard = filter
}

// Submit queues r without blocking. It returns false when the pool is
// stopped or the queue is full; the request is then dropped.
func (p *Pool) Submit(r *Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		p.logger.Warnf("%s pool not running, discarding %s", p.name, r.Endpoint)
		p.countDrop()
		return false
	}

	select {
	case p.queue <- r:
		p.metrics.mu.Lock()
		p.metrics.QueuedCount++
		p.metrics.mu.Unlock()
		return true
	default:
		p.logger.Warnf("%s pool queue is full, discarding %s", p.name, r.Endpoint)
		p.countDrop()
		return false
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.logger.Infof("Starting %s priority pool with %d workers", p.name, p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the queue and waits until every queued request completed.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	// Closing under the lock keeps Submit from sending on a closed channel.
	close(p.queue)
	p.mu.Unlock()

	p.logger.Infof("Stopping %s priority pool", p.name)
	p.wg.Wait()
	p.logMetrics()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugf("%s pool worker %d started", p.name, id)

	for r := range p.queue {
		p.mu.Lock()
		processor := p.processor
		handler := p.outcomeHandler
		discard := p.discard
		p.mu.Unlock()

		if discard != nil && discard(r) {
			p.metrics.mu.Lock()
			p.metrics.DiscardedCount++
			p.metrics.mu.Unlock()
			p.logger.Debugf("%s pool discarded stale %s", p.name, r.Endpoint)
			continue
		}

		if processor == nil {
			p.logger.Errorf("No request processor set for %s pool", p.name)
			continue
		}

		start := time.Now()
		result := processor(r)
		elapsed := time.Since(start)

		p.record(elapsed, result.OK)

		if handler != nil {
			handler(&Outcome{Request: r, Result: result, Duration: elapsed})
		}
	}

	p.logger.Debugf("%s pool worker %d stopped", p.name, id)
}

func (p *Pool) record(elapsed time.Duration, ok bool) {
	us := elapsed.Microseconds()

	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	p.metrics.ProcessedCount++
	if !ok {
		p.metrics.FailedCount++
	}
	if p.metrics.LatencyAvg == 0 {
		p.metrics.LatencyAvg = us
	} else {
		p.metrics.LatencyAvg = (p.metrics.LatencyAvg + us) / 2
	}
	if us > p.metrics.LatencyMax {
		p.metrics.LatencyMax = us
	}
}

func (p *Pool) countDrop() {
	p.metrics.mu.Lock()
	p.metrics.DroppedCount++
	p.metrics.mu.Unlock()
}

// GetMetrics returns a copy of the current metrics
func (p *Pool) GetMetrics() PoolMetrics {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	return PoolMetrics{
		ProcessedCount: p.metrics.ProcessedCount,
		FailedCount:    p.metrics.FailedCount,
		QueuedCount:    p.metrics.QueuedCount,
		DroppedCount:   p.metrics.DroppedCount,
		DiscardedCount: p.metrics.DiscardedCount,
		LatencyAvg:     p.metrics.LatencyAvg,
		LatencyMax:     p.metrics.LatencyMax,
	}
}

func (p *Pool) logMetrics() {
	m := p.GetMetrics()
	p.logger.Infof("%s pool metrics: processed=%d, failed=%d, dropped=%d, discarded=%d, avg_latency=%dµs, max_latency=%dµs",
		p.name, m.ProcessedCount, m.FailedCount, m.DroppedCount, m.DiscardedCount, m.LatencyAvg, m.LatencyMax)
}

// Name returns the pool name
func (p *Pool) Name() string {
	return p.name
}

// QueueLength returns the number of requests waiting for a worker
func (p *Pool) QueueLength() int {
	return len(p.queue)
}
