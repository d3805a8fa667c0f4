// Package remote keeps one fighter of a local match in step with a peer on
// the other side of the relay.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
	"github.com/evymii/ard-arena/internal/net/proto"
	"github.com/evymii/ard-arena/internal/session"
	"github.com/evymii/ard-arena/internal/sim"
	"github.com/evymii/ard-arena/internal/telemetry"
)

const (
	LifeInterval     = 2 * time.Second
	PositionInterval = 500 * time.Millisecond
	// HostSide is the fighter the creating peer controls; the joining peer
	// controls the other one.
	HostSide  = 1
	GuestSide = 0
)

var (
	ErrTransportClosed = errors.New("remote: transport closed")
	ErrUnexpectedReply = errors.New("remote: unexpected reply")
)

// Transport carries protocol envelopes to and from the relay. *ws.Client
// satisfies it.
type Transport interface {
	Send(t string, payload any) error
	Incoming() <-chan proto.Envelope
}

// Commander accepts match commands. *match.Runner satisfies it.
type Commander interface {
	Send(ctx context.Context, cmd any) error
}

// Host creates game on the relay and waits until a second peer joins.
func Host(ctx context.Context, tr Transport, game string) error {
	if err := request(ctx, tr, proto.MsgCreateGame, game); err != nil {
		return err
	}
	for {
		env, err := receive(ctx, tr)
		if err != nil {
			return err
		}
		if env.T == proto.MsgPlayerConnected {
			return nil
		}
	}
}

// Join joins a game created by another peer.
func Join(ctx context.Context, tr Transport, game string) error {
	return request(ctx, tr, proto.MsgJoinGame, game)
}

func request(ctx context.Context, tr Transport, t, game string) error {
	if err := tr.Send(t, proto.GameRequest{Game: game}); err != nil {
		return fmt.Errorf("remote: %s: %w", t, err)
	}
	env, err := receive(ctx, tr)
	if err != nil {
		return err
	}
	if env.T != proto.MsgResponse {
		return fmt.Errorf("%w: %s", ErrUnexpectedReply, env.T)
	}
	resp, err := proto.DecodePayload[proto.Response](env)
	if err != nil {
		return fmt.Errorf("remote: %s: %w", t, err)
	}
	return errorFor(resp.Code)
}

func receive(ctx context.Context, tr Transport) (proto.Envelope, error) {
	select {
	case env, ok := <-tr.Incoming():
		if !ok {
			return proto.Envelope{}, ErrTransportClosed
		}
		return env, nil
	case <-ctx.Done():
		return proto.Envelope{}, ctx.Err()
	}
}

// errorFor turns a relay response code back into the registry error that
// produced it.
func errorFor(code proto.ResponseCode) error {
	switch code {
	case proto.Success:
		return nil
	case proto.GameExists:
		return session.ErrSessionExists
	case proto.GameFull:
		return session.ErrSessionFull
	default:
		return session.ErrSessionNotFound
	}
}

type outbound struct {
	t       string
	payload any
}

type Config struct {
	// Host selects which side the local player controls.
	Host   bool
	Logger telemetry.Logger
}

// Mirror sends the local fighter's moves, life and position to the peer and
// turns the peer's reports into commands for the match runner.
type Mirror struct {
	tr     Transport
	cmds   Commander
	local  int
	remote int
	logger telemetry.Logger

	outbox  chan outbound
	dropped atomic.Uint64
	timers  []sim.Timer
}

func NewMirror(tr Transport, cmds Commander, cfg Config) *Mirror {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	local := GuestSide
	if cfg.Host {
		local = HostSide
	}
	return &Mirror{
		tr:     tr,
		cmds:   cmds,
		local:  local,
		remote: 1 - local,
		logger: logger,
		outbox: make(chan outbound, 128),
	}
}

// LocalSide is the fighter driven by this process.
func (m *Mirror) LocalSide() int { return m.local }

// RemoteSide is the fighter driven by the peer.
func (m *Mirror) RemoteSide() int { return m.remote }

// Attach schedules the periodic life and position reports on the match
// clock. It must run on the goroutine that owns the match.
func (m *Mirror) Attach(mt *match.Match) {
	f := mt.Fighter(m.local)
	clock := mt.Clock()
	m.timers = append(m.timers,
		clock.Every(LifeInterval, func() {
			m.enqueue(proto.MsgLifeUpdate, proto.LifeUpdate{Life: f.Life()})
		}),
		clock.Every(PositionInterval, func() {
			if f.Airborne() {
				return
			}
			m.enqueue(proto.MsgPositionUpdate, proto.PositionUpdate{X: f.X(), Y: f.Y()})
		}),
	)
}

// Detach stops the periodic reports. Like Attach it runs on the match
// goroutine.
func (m *Mirror) Detach() {
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
}

// Intent applies a local move and tells the peer about it.
func (m *Mirror) Intent(ctx context.Context, kind moves.Kind) error {
	if err := m.cmds.Send(ctx, match.IntentCommand{Side: m.local, Kind: kind}); err != nil {
		return err
	}
	m.enqueue(proto.MsgEvent, proto.Event{Move: kind})
	return nil
}

// Dropped counts reports discarded because the outbox was full.
func (m *Mirror) Dropped() uint64 { return m.dropped.Load() }

func (m *Mirror) enqueue(t string, payload any) {
	select {
	case m.outbox <- outbound{t: t, payload: payload}:
	default:
		m.dropped.Add(1)
	}
}

// Run pumps messages in both directions until ctx ends or the peer goes
// away. A lost peer is reported to the match as a leave before Run returns.
func (m *Mirror) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.receive(gctx) })
	g.Go(func() error { return m.send(gctx) })
	return g.Wait()
}

func (m *Mirror) receive(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-m.tr.Incoming():
			if !ok {
				m.logger.Printf("remote peer left")
				if err := m.cmds.Send(ctx, match.LeaveCommand{Side: m.remote}); err != nil {
					return err
				}
				return ErrTransportClosed
			}
			cmd, err := m.command(env)
			if err != nil {
				m.logger.Printf("remote %s: %v", env.T, err)
				continue
			}
			if cmd == nil {
				continue
			}
			if err := m.cmds.Send(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

// command converts a peer report into a match command. Messages that do not
// affect the match yield nil.
func (m *Mirror) command(env proto.Envelope) (any, error) {
	switch env.T {
	case proto.MsgEvent:
		event, err := proto.DecodePayload[proto.Event](env)
		if err != nil {
			return nil, err
		}
		return match.IntentCommand{Side: m.remote, Kind: event.Move}, nil
	case proto.MsgLifeUpdate:
		update, err := proto.DecodePayload[proto.LifeUpdate](env)
		if err != nil {
			return nil, err
		}
		return match.LifeCommand{Side: m.remote, Life: update.Life}, nil
	case proto.MsgPositionUpdate:
		update, err := proto.DecodePayload[proto.PositionUpdate](env)
		if err != nil {
			return nil, err
		}
		return match.PositionCommand{Side: m.remote, X: update.X, Y: update.Y}, nil
	}
	return nil, nil
}

func (m *Mirror) send(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out := <-m.outbox:
			if err := m.tr.Send(out.t, out.payload); err != nil {
				return fmt.Errorf("remote: send %s: %w", out.t, err)
			}
		}
	}
}
