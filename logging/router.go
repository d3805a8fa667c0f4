package logging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans published events out to sinks. Publish never blocks: events
// that do not fit the queue are counted and dropped. Each sink drains its
// own buffer so a slow sink cannot stall the others.
type Router struct {
	cfg         Config
	queue       chan Event
	workers     []*sinkWorker
	clock       Clock
	fallback    *zap.Logger
	minSeverity Severity
	fields      map[string]any

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	wg     sync.WaitGroup

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	lastDropLog  atomic.Int64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// NewRouter starts the dispatch loop and one worker per sink. A nil clock
// uses wall time and a nil fallback discards the router's own diagnostics.
func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink, fallback *zap.Logger) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if fallback == nil {
		fallback = zap.NewNop()
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:         cfg,
		queue:       make(chan Event, bufferSize),
		clock:       clock,
		fallback:    fallback.Named("logging"),
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
		ctx:         ctx,
		cancel:      cancel,
	}

	sinkBuffer := min(max(bufferSize, 32), 1024)
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.workers = append(r.workers, &sinkWorker{
			name:     named.Name,
			sink:     named.Sink,
			events:   make(chan Event, sinkBuffer),
			fallback: r.fallback,
		})
	}

	r.wg.Add(1)
	go r.dispatch()
	for _, w := range r.workers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			w.run()
		}()
	}
	return r
}

func (r *Router) dispatch() {
	defer func() {
		for _, w := range r.workers {
			close(w.events)
		}
		r.wg.Done()
	}()
	for {
		select {
		case <-r.ctx.Done():
			for {
				select {
				case event := <-r.queue:
					r.forward(event)
				default:
					return
				}
			}
		case event := <-r.queue:
			r.forward(event)
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeFields(event, r.fields)
	r.eventsTotal.Add(1)
	for _, w := range r.workers {
		w.enqueue(cloneEvent(event))
	}
}

func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.drop(event)
	}
}

func (r *Router) drop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.lastDropLog.Load()
	if (next == 0 || now >= next) && r.lastDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
		r.fallback.Warn("dropping event", zap.String("type", string(event.Type)), zap.Uint64("tick", event.Tick))
	}
}

// Close stops accepting events, delivers everything already queued and
// closes the sinks. Only the first call does any work.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, w := range r.workers {
		if err := w.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Sink returns the sink registered under name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, w := range r.workers {
		if w.name == name {
			return w.sink
		}
	}
	return nil
}

type sinkWorker struct {
	name      string
	sink      Sink
	events    chan Event
	fallback  *zap.Logger
	failures  int
	nextRetry time.Time
}

func (w *sinkWorker) enqueue(event Event) {
	select {
	case w.events <- event:
	default:
		w.fallback.Warn("sink backlog full", zap.String("sink", w.name), zap.String("type", string(event.Type)))
	}
}

func (w *sinkWorker) run() {
	for event := range w.events {
		if w.failures > 0 {
			if wait := time.Until(w.nextRetry); wait > 0 {
				time.Sleep(wait)
			}
		}
		if err := w.sink.Write(event); err != nil {
			w.failures++
			delay := time.Duration(1<<min(w.failures, 5)) * time.Second
			w.nextRetry = time.Now().Add(delay)
			w.fallback.Error("sink write failed", zap.String("sink", w.name), zap.Error(err), zap.Duration("retry", delay))
			continue
		}
		w.failures = 0
	}
}
