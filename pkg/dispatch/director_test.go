package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
)

type fakeTransport struct {
	mu      sync.Mutex
	posts   []string
	bodies  []interface{}
	beacons []string
	fail    bool
	block   chan struct{}
	// entered receives each endpoint as its request starts, when set.
	entered chan string
	delay   time.Duration
}

func (f *fakeTransport) PostJSON(_ context.Context, endpoint string, body interface{}) transport.Result {
	if f.entered != nil {
		f.entered <- endpoint
	}
	if f.block != nil {
		<-f.block
	}
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, endpoint)
	f.bodies = append(f.bodies, body)
	if f.fail {
		return transport.Result{OK: false, Error: "robot unreachable"}
	}
	return transport.Result{OK: true}
}

func (f *fakeTransport) Beacon(_ context.Context, endpoint, payload string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beacons = append(f.beacons, endpoint+" "+payload)
	return !f.fail
}

func (f *fakeTransport) snapshot() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...), append([]string(nil), f.beacons...)
}

func TestDirectorDeliversAndDrains(t *testing.T) {
	tr := &fakeTransport{}
	d := NewDirector(tr, customlog.Discard(), nil)
	d.Start()

	d.Send(transport.EndpointHead, transport.HeadBody{Pan: 0.5, Tilt: 0.5})
	d.Send(transport.EndpointStop, transport.StopBody{})
	d.Beacon(transport.EndpointStop, transport.StopPayload)
	d.Stop()

	posts, beacons := tr.snapshot()
	assert.ElementsMatch(t, []string{transport.EndpointHead, transport.EndpointStop}, posts)
	assert.Equal(t, []string{"/api/stop {}"}, beacons)

	m := d.Metrics()
	assert.Equal(t, int64(2), m[PriorityHigh].ProcessedCount)
	assert.Equal(t, int64(1), m[PriorityStandard].ProcessedCount)
}

func TestDirectorReportsFailures(t *testing.T) {
	tr := &fakeTransport{fail: true}
	d := NewDirector(tr, customlog.Discard(), nil)

	var mu sync.Mutex
	var outcomes []*Outcome
	d.SetOutcomeHandler(func(o *Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	})
	d.Start()
	d.Send(transport.EndpointSay, transport.SayBody{PhraseID: 1})
	d.Stop()

	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Result.OK)
	assert.Equal(t, "robot unreachable", outcomes[0].Result.Error)
	assert.Equal(t, PriorityStandard, outcomes[0].Request.Priority)
	assert.Equal(t, int64(1), d.Metrics()[PriorityStandard].FailedCount)
}

func TestDirectorNeverDropsStop(t *testing.T) {
	tr := &fakeTransport{block: make(chan struct{})}
	d := NewDirector(tr, customlog.Discard(), &DirectorOptions{HighWorkers: 1, StandardWorkers: 1, QueueSize: 1})
	d.Start()

	// One stop occupies the worker, one fills the queue, the rest overflow.
	for i := 0; i < 4; i++ {
		d.Send(transport.EndpointStop, transport.StopBody{})
	}
	close(tr.block)
	d.Stop()

	posts, _ := tr.snapshot()
	assert.Len(t, posts, 4)
}

func countPosts(posts []string, endpoint string) int {
	n := 0
	for _, p := range posts {
		if p == endpoint {
			n++
		}
	}
	return n
}

func TestDirectorStopLandsAfterQueuedDrives(t *testing.T) {
	tr := &fakeTransport{delay: 30 * time.Millisecond}
	d := NewDirector(tr, customlog.Discard(), &DirectorOptions{HighWorkers: 1, StandardWorkers: 1})
	d.Start()

	for i := 1; i <= 6; i++ {
		d.Send(transport.EndpointDrive, transport.DriveBody{L: float64(i) / 10, R: float64(i) / 10})
	}
	d.Send(transport.EndpointStop, transport.StopBody{})
	d.Stop()

	posts, _ := tr.snapshot()
	require.NotEmpty(t, posts)
	assert.Equal(t, transport.EndpointStop, posts[len(posts)-1], "robot saw %v", posts)
	assert.LessOrEqual(t, countPosts(posts, transport.EndpointDrive), 1)
	assert.GreaterOrEqual(t, d.Metrics()[PriorityStandard].DiscardedCount, int64(5))
}

func TestDirectorSendsOnlyNewestQueuedDrive(t *testing.T) {
	tr := &fakeTransport{block: make(chan struct{}), entered: make(chan string, 16)}
	d := NewDirector(tr, customlog.Discard(), &DirectorOptions{StandardWorkers: 1})
	d.Start()

	d.Send(transport.EndpointDrive, transport.DriveBody{L: 0.1, R: 0.1})
	<-tr.entered
	for _, v := range []float64{0.2, 0.3, 0.4, 0.5} {
		d.Send(transport.EndpointDrive, transport.DriveBody{L: v, R: v})
	}
	close(tr.block)
	d.Stop()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Equal(t, []interface{}{
		transport.DriveBody{L: 0.1, R: 0.1},
		transport.DriveBody{L: 0.5, R: 0.5},
	}, tr.bodies)
	assert.Equal(t, int64(3), d.Metrics()[PriorityStandard].DiscardedCount)
}

func TestDirectorRepeatsStopAfterInFlightDrive(t *testing.T) {
	t.Run("no new drag", func(t *testing.T) {
		tr := &fakeTransport{block: make(chan struct{}), entered: make(chan string, 16)}
		d := NewDirector(tr, customlog.Discard(), &DirectorOptions{HighWorkers: 1, StandardWorkers: 1})
		d.Start()

		d.Send(transport.EndpointDrive, transport.DriveBody{L: 1, R: 1})
		<-tr.entered
		d.Send(transport.EndpointStop, transport.StopBody{})
		<-tr.entered
		close(tr.block)
		d.Stop()

		posts, _ := tr.snapshot()
		assert.Equal(t, 2, countPosts(posts, transport.EndpointStop))
		assert.Equal(t, transport.EndpointStop, posts[len(posts)-1])
	})

	t.Run("drag resumed", func(t *testing.T) {
		tr := &fakeTransport{block: make(chan struct{}), entered: make(chan string, 16)}
		d := NewDirector(tr, customlog.Discard(), &DirectorOptions{HighWorkers: 1, StandardWorkers: 1})
		d.Start()

		d.Send(transport.EndpointDrive, transport.DriveBody{L: 1, R: 1})
		<-tr.entered
		d.Send(transport.EndpointStop, transport.StopBody{})
		<-tr.entered
		d.Send(transport.EndpointDrive, transport.DriveBody{L: 0.2, R: 0.2})
		close(tr.block)
		d.Stop()

		posts, _ := tr.snapshot()
		assert.Equal(t, 1, countPosts(posts, transport.EndpointStop))
		assert.Equal(t, 2, countPosts(posts, transport.EndpointDrive))
	})
}

func TestPoolDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	p := NewPool("TEST", 1, 1, customlog.Discard())
	p.SetProcessor(func(r *Request) transport.Result {
		<-block
		return transport.Result{OK: true}
	})
	p.Start()

	accepted := 0
	for i := 0; i < 5; i++ {
		if p.Submit(&Request{Endpoint: transport.EndpointDrive}) {
			accepted++
		}
	}
	close(block)
	p.Stop()

	m := p.GetMetrics()
	assert.Equal(t, int64(accepted), m.ProcessedCount)
	assert.Equal(t, int64(5-accepted), m.DroppedCount)
	assert.LessOrEqual(t, accepted, 2)
}

func TestPoolRejectsWhenStopped(t *testing.T) {
	p := NewPool("TEST", 1, 4, customlog.Discard())
	assert.False(t, p.Submit(&Request{Endpoint: transport.EndpointDrive}))

	p.Start()
	p.Stop()
	assert.False(t, p.Submit(&Request{Endpoint: transport.EndpointDrive}))
	assert.Equal(t, int64(2), p.GetMetrics().DroppedCount)
}

func TestPoolLatency(t *testing.T) {
	p := NewPool("TEST", 1, 4, customlog.Discard())
	p.SetProcessor(func(r *Request) transport.Result {
		time.Sleep(time.Millisecond)
		return transport.Result{OK: true}
	})
	p.Start()
	p.Submit(&Request{Endpoint: transport.EndpointDrive})
	p.Stop()

	assert.GreaterOrEqual(t, p.GetMetrics().LatencyMax, int64(1000))
}
