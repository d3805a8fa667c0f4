package match

import (
	"context"
	"time"

	"github.com/evymii/ard-arena/internal/moves"
)

const DefaultFrameInterval = 16 * time.Millisecond

// IntentCommand asks the fighter at Side to start Kind.
type IntentCommand struct {
	Side int
	Kind moves.Kind
}

// LifeCommand mirrors a remote life report.
type LifeCommand struct {
	Side int
	Life float64
}

// PositionCommand mirrors a remote position report.
type PositionCommand struct {
	Side int
	X, Y float64
}

// LeaveCommand reports that the peer driving Side disconnected.
type LeaveCommand struct {
	Side int
}

// SnapshotRequest asks the runner for a snapshot taken on its goroutine.
// Reply should be buffered; a snapshot nobody is ready to receive is dropped.
type SnapshotRequest struct {
	Reply chan<- Snapshot
}

// Recorder receives every intent with the match time it was applied at.
type Recorder interface {
	Record(at time.Duration, side int, kind moves.Kind)
}

type RunnerConfig struct {
	FrameInterval time.Duration
	// OnFrame receives a snapshot after every clock advance.
	OnFrame  func(Snapshot)
	Recorder Recorder
	// Now is the wall clock; tests may replace it.
	Now func() time.Time
}

// Runner owns a match on a single goroutine. Commands reach it through
// Inbox; a ticker converts wall time into match time.
type Runner struct {
	Inbox chan any

	match *Match
	cfg   RunnerConfig
}

func NewRunner(m *Match, cfg RunnerConfig) *Runner {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Runner{
		Inbox: make(chan any, 256),
		match: m,
		cfg:   cfg,
	}
}

// Send queues cmd, waiting for room or ctx.
func (r *Runner) Send(ctx context.Context, cmd any) error {
	select {
	case r.Inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the match until ctx is cancelled, then closes it.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.FrameInterval)
	defer ticker.Stop()
	defer r.match.Close()

	start := r.cfg.Now().Add(-r.match.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.Inbox:
			r.handle(cmd)
		case <-ticker.C:
			r.match.AdvanceTo(r.cfg.Now().Sub(start))
			if r.cfg.OnFrame != nil {
				r.cfg.OnFrame(r.match.Snapshot())
			}
		}
	}
}

func (r *Runner) handle(cmd any) {
	switch c := cmd.(type) {
	case IntentCommand:
		if r.cfg.Recorder != nil {
			r.cfg.Recorder.Record(r.match.Now(), c.Side, c.Kind)
		}
		r.match.Intent(c.Side, c.Kind)
	case LifeCommand:
		_ = r.match.SetLife(c.Side, c.Life)
	case PositionCommand:
		_ = r.match.SetPosition(c.Side, c.X, c.Y)
	case LeaveCommand:
		r.match.OpponentLeft(c.Side)
	case SnapshotRequest:
		select {
		case c.Reply <- r.match.Snapshot():
		default:
		}
	}
}
