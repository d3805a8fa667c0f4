// Package proto is the relay wire format: a JSON envelope carrying a message
// type and a typed payload.
package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evymii/ard-arena/internal/moves"
)

const (
	MsgCreateGame      = "create-game"
	MsgJoinGame        = "join-game"
	MsgResponse        = "response"
	MsgEvent           = "event"
	MsgLifeUpdate      = "life-update"
	MsgPositionUpdate  = "position-update"
	MsgPlayerConnected = "player-connected"
)

// ResponseCode answers a create-game or join-game request.
type ResponseCode int

const (
	Success       ResponseCode = 0
	GameExists    ResponseCode = 1
	GameNotExists ResponseCode = 2
	GameFull      ResponseCode = 3
)

func (c ResponseCode) String() string {
	switch c {
	case Success:
		return "success"
	case GameExists:
		return "game-exists"
	case GameNotExists:
		return "game-not-exists"
	case GameFull:
		return "game-full"
	default:
		return fmt.Sprintf("response(%d)", int(c))
	}
}

var (
	ErrEmptyMessage = errors.New("proto: empty message")
	ErrEmptyPayload = errors.New("proto: empty payload")
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// GameRequest names the session to create or join.
type GameRequest struct {
	Game string `json:"game"`
}

type Response struct {
	Code ResponseCode `json:"code"`
	Game string       `json:"game,omitempty"`
}

// Event carries a move the sender's fighter started.
type Event struct {
	Move moves.Kind `json:"move"`
}

type LifeUpdate struct {
	Life float64 `json:"life"`
}

type PositionUpdate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerConnected tells the host which side the joiner plays.
type PlayerConnected struct {
	Side int `json:"side"`
}

// Relayed reports whether the relay forwards messages of type t between
// paired peers.
func Relayed(t string) bool {
	switch t {
	case MsgEvent, MsgLifeUpdate, MsgPositionUpdate:
		return true
	}
	return false
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("proto: encode without message type")
	}
	if payload == nil {
		return nil, fmt.Errorf("proto: encode %s: %w", t, ErrEmptyPayload)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("proto: encode %s: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: p})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("proto: decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("proto: envelope without type")
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("proto: %s: %w", env.T, ErrEmptyPayload)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("proto: decode %s: %w", env.T, err)
	}
	return out, nil
}
