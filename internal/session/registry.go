package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/evymii/ard-arena/internal/net/proto"
	"github.com/evymii/ard-arena/internal/telemetry"
	"github.com/evymii/ard-arena/logging"
	"github.com/evymii/ard-arena/logging/network"
)

var (
	ErrSessionExists   = errors.New("session: game already exists")
	ErrSessionNotFound = errors.New("session: game does not exist")
	ErrSessionFull     = errors.New("session: game is full")
	ErrInvalidName     = errors.New("session: empty game name")
	ErrAlreadyInGame   = errors.New("session: peer already in a game")
	ErrNotPaired       = errors.New("session: peer has no opponent")
)

// CodeFor maps a Create or Join error to the response code sent to the peer.
func CodeFor(err error) proto.ResponseCode {
	switch {
	case err == nil:
		return proto.Success
	case errors.Is(err, ErrSessionExists), errors.Is(err, ErrAlreadyInGame):
		return proto.GameExists
	case errors.Is(err, ErrSessionFull):
		return proto.GameFull
	default:
		return proto.GameNotExists
	}
}

// Conn is the transport a peer is reached through. Send must not block for
// long; Close ends the peer's connection.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Recorder persists session history. Failures are logged, never fatal.
type Recorder interface {
	Created(ctx context.Context, game, host string, at time.Time) error
	Paired(ctx context.Context, game, guest string, at time.Time) error
	Ended(ctx context.Context, game, reason string, at time.Time) error
}

// Peer is one connected client.
type Peer struct {
	ID   string
	Conn Conn

	game string
}

// Info describes a live session.
type Info struct {
	Name    string    `json:"name"`
	Peers   int       `json:"peers"`
	Created time.Time `json:"created"`
}

type session struct {
	name    string
	created time.Time
	// peers[0] created the session, peers[1] joined it.
	peers [2]*Peer
}

func (s *session) size() int {
	n := 0
	for _, p := range s.peers {
		if p != nil {
			n++
		}
	}
	return n
}

type Options struct {
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Logger    telemetry.Logger
	Recorder  Recorder
	Now       func() time.Time
}

// Registry pairs peers into named two-player sessions and relays gameplay
// messages between them.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session

	pub      logging.Publisher
	metrics  telemetry.Metrics
	logger   telemetry.Logger
	recorder Recorder
	now      func() time.Time
}

func NewRegistry(opts Options) *Registry {
	if opts.Publisher == nil {
		opts.Publisher = logging.NopPublisher()
	}
	if opts.Metrics == nil {
		opts.Metrics = &telemetry.Counters{}
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.LoggerFunc(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*session),
		pub:      opts.Publisher,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		now:      opts.Now,
	}
}

// Connect registers a new peer reached through conn.
func (r *Registry) Connect(conn Conn) *Peer {
	r.metrics.Add("peers_connected", 1)
	return &Peer{ID: uuid.NewString(), Conn: conn}
}

// Create opens a session named game with peer as its host.
func (r *Registry) Create(ctx context.Context, peer *Peer, game string) error {
	game = strings.TrimSpace(game)
	r.mu.Lock()
	err := r.create(peer, game)
	active := len(r.sessions)
	r.mu.Unlock()

	if err != nil {
		r.reject(ctx, peer, game, err)
		return err
	}
	r.metrics.Add("sessions_created", 1)
	r.metrics.Store("sessions_active", uint64(active))
	network.SessionCreated(ctx, r.pub, network.SessionPayload{Game: game, Peer: peer.ID})
	if r.recorder != nil {
		if err := r.recorder.Created(ctx, game, peer.ID, r.now()); err != nil {
			r.logger.Printf("session %s: record create: %v", game, err)
		}
	}
	return nil
}

func (r *Registry) create(peer *Peer, game string) error {
	if game == "" {
		return ErrInvalidName
	}
	if peer.game != "" {
		return fmt.Errorf("%w: %s", ErrAlreadyInGame, peer.game)
	}
	if _, exists := r.sessions[game]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, game)
	}
	r.sessions[game] = &session{name: game, created: r.now(), peers: [2]*Peer{peer, nil}}
	peer.game = game
	return nil
}

// Join adds peer as the second player of game and tells the host.
func (r *Registry) Join(ctx context.Context, peer *Peer, game string) error {
	game = strings.TrimSpace(game)
	r.mu.Lock()
	host, err := r.join(peer, game)
	r.mu.Unlock()

	if err != nil {
		r.reject(ctx, peer, game, err)
		return err
	}
	r.metrics.Add("sessions_joined", 1)
	network.SessionJoined(ctx, r.pub, network.SessionPayload{Game: game, Peer: peer.ID})
	if msg, err := proto.Encode(proto.MsgPlayerConnected, proto.PlayerConnected{Side: 0}); err == nil {
		if err := host.Conn.Send(msg); err != nil {
			r.logger.Printf("session %s: notify host: %v", game, err)
		}
	}
	if r.recorder != nil {
		if err := r.recorder.Paired(ctx, game, peer.ID, r.now()); err != nil {
			r.logger.Printf("session %s: record join: %v", game, err)
		}
	}
	return nil
}

func (r *Registry) join(peer *Peer, game string) (*Peer, error) {
	if game == "" {
		return nil, ErrInvalidName
	}
	if peer.game != "" {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, peer.game)
	}
	s, ok := r.sessions[game]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, game)
	}
	if s.size() > 1 {
		return nil, fmt.Errorf("%w: %s", ErrSessionFull, game)
	}
	s.peers[1] = peer
	peer.game = game
	return s.peers[0], nil
}

func (r *Registry) reject(ctx context.Context, peer *Peer, game string, err error) {
	r.metrics.Add("sessions_rejected", 1)
	network.SessionRejected(ctx, r.pub, network.SessionPayload{
		Game:   game,
		Peer:   peer.ID,
		Code:   int(CodeFor(err)),
		Reason: err.Error(),
	})
}

// Relay forwards msg from peer to its opponent unchanged.
func (r *Registry) Relay(peer *Peer, msg []byte) error {
	r.mu.Lock()
	other := r.opponent(peer)
	r.mu.Unlock()
	if other == nil {
		r.metrics.Add("relay_dropped", 1)
		return ErrNotPaired
	}
	r.metrics.Add("relay_messages", 1)
	return other.Conn.Send(msg)
}

func (r *Registry) opponent(peer *Peer) *Peer {
	s, ok := r.sessions[peer.game]
	if !ok {
		return nil
	}
	switch peer {
	case s.peers[0]:
		return s.peers[1]
	case s.peers[1]:
		return s.peers[0]
	}
	return nil
}

// Handle dispatches one inbound message from peer. Create and join requests
// are answered with a response message; gameplay messages are relayed.
// Other message types are ignored.
func (r *Registry) Handle(ctx context.Context, peer *Peer, msg []byte) error {
	t := gjson.GetBytes(msg, "t").String()
	switch {
	case t == proto.MsgCreateGame || t == proto.MsgJoinGame:
		game := gjson.GetBytes(msg, "p.game").String()
		var err error
		if t == proto.MsgCreateGame {
			err = r.Create(ctx, peer, game)
		} else {
			err = r.Join(ctx, peer, game)
		}
		reply, encErr := proto.Encode(proto.MsgResponse, proto.Response{Code: CodeFor(err), Game: game})
		if encErr != nil {
			return encErr
		}
		if sendErr := peer.Conn.Send(reply); sendErr != nil {
			return sendErr
		}
		return err
	case proto.Relayed(t):
		err := r.Relay(peer, msg)
		if errors.Is(err, ErrNotPaired) {
			return nil
		}
		return err
	}
	return nil
}

// Disconnect removes peer. If it was in a session the session ends and the
// opponent's connection is closed.
func (r *Registry) Disconnect(ctx context.Context, peer *Peer) {
	r.mu.Lock()
	s, ok := r.sessions[peer.game]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, s.name)
	for _, p := range s.peers {
		if p != nil {
			p.game = ""
		}
	}
	other := s.peers[0]
	if other == peer {
		other = s.peers[1]
	}
	active := len(r.sessions)
	r.mu.Unlock()

	reason := "host left"
	if peer == s.peers[1] {
		reason = "guest left"
	}
	if other != nil {
		if err := other.Conn.Close(); err != nil {
			r.logger.Printf("session %s: close opponent: %v", s.name, err)
		}
	}
	r.metrics.Add("sessions_ended", 1)
	r.metrics.Store("sessions_active", uint64(active))
	network.SessionEnded(ctx, r.pub, network.SessionPayload{Game: s.name, Peer: peer.ID, Reason: reason})
	if r.recorder != nil {
		if err := r.recorder.Ended(ctx, s.name, reason, r.now()); err != nil {
			r.logger.Printf("session %s: record end: %v", s.name, err)
		}
	}
}

// List returns the live sessions ordered by name.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, Info{Name: s.name, Peers: s.size(), Created: s.created})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
