package memhost

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"archagent/pkg/agenttypes"
)

// Pump emulates the host main thread: a single OS-locked goroutine that owns
// the session and runs external-event handlers serially. NewEvent hands out
// the cross-thread signal primitive the bridge is initialized with.
type Pump struct {
	sess *Session

	dispatch chan func(agenttypes.Session)
	quit     chan struct{}
	done     chan struct{}
	stop     sync.Once

	mu          sync.Mutex
	raiseResult agenttypes.RaiseResult
}

// NewPump creates a pump for sess. Call Start to begin draining events.
func NewPump(sess *Session) *Pump {
	return &Pump{
		sess:        sess,
		dispatch:    make(chan func(agenttypes.Session), 16),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		raiseResult: agenttypes.RaiseAccepted,
	}
}

// SetRaiseResult overrides the answer every Raise gets, simulating a host
// that is busy or showing a modal dialog. Pass RaiseAccepted to restore
// normal operation.
func (p *Pump) SetRaiseResult(r agenttypes.RaiseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raiseResult = r
}

func (p *Pump) currentRaiseResult() agenttypes.RaiseResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.raiseResult
}

// NewEvent registers handler and returns the signal that schedules it on the
// main thread. Raises are coalesced: signaling an event already pending is
// accepted without queuing a second run, like the real host's external events.
func (p *Pump) NewEvent(handler func(sess agenttypes.Session)) agenttypes.ExternalEvent {
	return &externalEvent{pump: p, handler: handler}
}

// Start launches the main-thread loop.
func (p *Pump) Start() {
	go p.run()
}

// Stop shuts the loop down and waits for it to exit. Idempotent.
func (p *Pump) Stop() {
	p.stop.Do(func() { close(p.quit) })
	<-p.done
}

func (p *Pump) run() {
	// The document-owning thread in a real host is one OS thread for its
	// whole lifetime.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(p.done)
	for {
		select {
		case <-p.quit:
			return
		case fn := <-p.dispatch:
			fn(p.sess)
		}
	}
}

type externalEvent struct {
	pump    *Pump
	handler func(sess agenttypes.Session)
	pending atomic.Bool
}

// Raise schedules the event's handler on the main thread. Safe from any
// goroutine.
func (e *externalEvent) Raise() agenttypes.RaiseResult {
	if r := e.pump.currentRaiseResult(); r != agenttypes.RaiseAccepted {
		return r
	}
	if !e.pending.CompareAndSwap(false, true) {
		// Already signaled and not yet run; the pending run will observe
		// whatever state this caller produced.
		return agenttypes.RaiseAccepted
	}
	select {
	case e.pump.dispatch <- e.run:
		return agenttypes.RaiseAccepted
	case <-time.After(time.Second):
		e.pending.Store(false)
		return agenttypes.RaiseTimedOut
	}
}

func (e *externalEvent) run(sess agenttypes.Session) {
	// Clear before the handler so raises during handling schedule a fresh run.
	e.pending.Store(false)
	e.handler(sess)
}
