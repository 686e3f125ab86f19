// Package dispatch sends robot commands fire-and-forget through priority
// worker pools, so the caller never waits on the network.
//
// Stops jump ahead of queued commands, so the Director keeps drives from
// landing after a stop: a drive still queued when a newer drive or a stop
// is submitted is discarded, and a drive that was already on the wire when
// a stop went out is followed by one more stop unless driving resumed.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

// Priority levels
const (
	PriorityHigh     = "HIGH"
	PriorityStandard = "STANDARD"
)

// DefaultPriorities sends stops ahead of everything else.
var DefaultPriorities = map[string]string{
	transport.EndpointStop: PriorityHigh,
}

// DirectorOptions holds configuration options for the Director
type DirectorOptions struct {
	HighWorkers     int
	StandardWorkers int
	QueueSize       int
	// BeaconTimeout bounds a beacon, which is detached from its caller.
	BeaconTimeout time.Duration
	// Priorities maps endpoints to a priority; unlisted endpoints are STANDARD.
	Priorities map[string]string
}

// Director routes requests to the HIGH or STANDARD pool by endpoint and
// hands them to the transport.
type Director struct {
	logger        customlog.Logger
	transport     transport.Transport
	high          *Pool
	standard      *Pool
	priorities    map[string]string
	beaconTimeout time.Duration

	mu        sync.RWMutex
	onOutcome OutcomeHandler
	inflight  sync.WaitGroup

	stops    atomic.Uint64 // stops submitted
	drives   atomic.Uint64 // drive samples submitted
	driveGen atomic.Uint64 // Generation of the newest drive
}

// NewDirector creates a Director; call Start before sending.
func NewDirector(tr transport.Transport, logger customlog.Logger, options *DirectorOptions) *Director {
	if options == nil {
		options = &DirectorOptions{}
	}
	if options.HighWorkers == 0 {
		options.HighWorkers = 2
	}
	if options.StandardWorkers == 0 {
		options.StandardWorkers = 4
	}
	if options.QueueSize == 0 {
		options.QueueSize = 32
	}
	if options.BeaconTimeout == 0 {
		options.BeaconTimeout = 2 * time.Second
	}
	priorities := options.Priorities
	if priorities == nil {
		priorities = DefaultPriorities
	}

	d := &Director{
		logger:        logger,
		transport:     tr,
		high:          NewPool(PriorityHigh, options.HighWorkers, options.QueueSize, logger),
		standard:      NewPool(PriorityStandard, options.StandardWorkers, options.QueueSize, logger),
		priorities:    priorities,
		beaconTimeout: options.BeaconTimeout,
	}
	for _, p := range []*Pool{d.high, d.standard} {
		p.SetProcessor(d.execute)
		p.SetOutcomeHandler(d.handleOutcome)
		p.SetDiscardFilter(d.stale)
	}
	d.logger.Infof("Dispatch director initialized with pools: HIGH(%d), STANDARD(%d), queue=%d",
		options.HighWorkers, options.StandardWorkers, options.QueueSize)
	return d
}

// SetOutcomeHandler registers an observer for completed requests.
func (d *Director) SetOutcomeHandler(h OutcomeHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onOutcome = h
}

// Start starts both pools.
func (d *Director) Start() {
	d.high.Start()
	d.standard.Start()
}

// Stop drains both pools and waits for fallback deliveries.
func (d *Director) Stop() {
	d.high.Stop()
	d.standard.Stop()
	d.inflight.Wait()
}

// Send queues a JSON command. Drive samples that find a full queue are
// dropped, and queued ones are discarded once a newer sample or a stop is
// submitted.
func (d *Director) Send(endpoint string, body interface{}) {
	d.submit(&Request{Endpoint: endpoint, Body: body})
}

// Beacon queues a raw payload that must survive the sender's teardown.
func (d *Director) Beacon(endpoint string, payload string) {
	d.submit(&Request{Endpoint: endpoint, Beacon: true, Payload: payload})
}

// Metrics returns per-pool metrics.
func (d *Director) Metrics() map[string]PoolMetrics {
	return map[string]PoolMetrics{
		PriorityHigh:     d.high.GetMetrics(),
		PriorityStandard: d.standard.GetMetrics(),
	}
}

func (d *Director) submit(r *Request) {
	switch r.Endpoint {
	case transport.EndpointStop:
		r.Generation = d.stops.Add(1)
	case transport.EndpointDrive:
		r.Generation = d.stops.Load()
		r.Seq = d.drives.Add(1)
		d.driveGen.Store(r.Generation)
	default:
		r.Generation = d.stops.Load()
	}
	d.enqueue(r)
}

func (d *Director) enqueue(r *Request) {
	r.Priority = d.priorityOf(r.Endpoint)
	r.Queued = time.Now()

	if r.Priority == PriorityHigh {
		if d.high.Submit(r) {
			return
		}
		// High priority requests are stops and are never dropped.
		d.logger.Warnf("Delivering %s outside the HIGH pool", r.Endpoint)
		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			start := time.Now()
			res := d.execute(r)
			d.handleOutcome(&Outcome{Request: r, Result: res, Duration: time.Since(start)})
		}()
		return
	}
	d.standard.Submit(r)
}

func (d *Director) priorityOf(endpoint string) string {
	if p, ok := d.priorities[endpoint]; ok {
		return p
	}
	return PriorityStandard
}

// stale reports a drive superseded by a newer drive or by a stop.
func (d *Director) stale(r *Request) bool {
	if r.Endpoint != transport.EndpointDrive {
		return false
	}
	return r.Seq < d.drives.Load() || r.Generation < d.stops.Load()
}

// overtaken reports a drive that a stop was submitted behind while it was
// in flight, with no drive submitted since.
func (d *Director) overtaken(r *Request) bool {
	stops := d.stops.Load()
	return r.Endpoint == transport.EndpointDrive && r.Generation < stops && d.driveGen.Load() < stops
}

// execute performs a request. Nothing cancels it once started.
func (d *Director) execute(r *Request) transport.Result {
	if r.Beacon {
		ctx, cancel := context.WithTimeout(context.Background(), d.beaconTimeout)
		defer cancel()
		if d.transport.Beacon(ctx, r.Endpoint, r.Payload) {
			return transport.Result{OK: true}
		}
		return transport.Result{OK: false, Error: "beacon not delivered"}
	}
	res := d.transport.PostJSON(context.Background(), r.Endpoint, r.Body)
	if d.overtaken(r) {
		d.logger.Debugf("Drive #%d finished after a stop, stopping again", r.Seq)
		d.enqueue(&Request{Endpoint: transport.EndpointStop, Body: transport.StopBody{}, Generation: d.stops.Load()})
	}
	return res
}

func (d *Director) handleOutcome(o *Outcome) {
	if o.Result.OK {
		d.logger.Debugf("%s delivered in %s", o.Request.Endpoint, o.Duration)
	} else {
		d.logger.Warnf("%s not delivered: %s", o.Request.Endpoint, o.Result.Error)
	}

	d.mu.RLock()
	h := d.onOutcome
	d.mu.RUnlock()
	if h != nil {
		h(o)
	}
}
