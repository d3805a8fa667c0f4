package proto

import (
	"errors"
	"strings"
	"testing"

	"github.com/evymii/ard-arena/internal/moves"
)

func TestEventCarriesMoveName(t *testing.T) {
	b, err := Encode(MsgEvent, Event{Move: moves.ForwardJumpKick})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(b), `"move":"forward-jump-kick"`) {
		t.Fatalf("expected move name on the wire, got %s", b)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	event, err := DecodePayload[Event](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if env.T != MsgEvent || event.Move != moves.ForwardJumpKick {
		t.Fatalf("unexpected decode %s %+v", env.T, event)
	}
}

func TestDecodeRejectsUnknownMove(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"t":"event","p":{"move":"fireball"}}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if _, err := DecodePayload[Event](env); !errors.Is(err, moves.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeEnvelope(nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := DecodeEnvelope([]byte(`{"p":{}}`)); err == nil {
		t.Fatalf("expected envelope without type to fail")
	}
	if _, err := DecodePayload[LifeUpdate](Envelope{T: MsgLifeUpdate}); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := Encode(MsgResponse, nil); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected nil payload to fail, got %v", err)
	}
}

func TestResponseCodesMatchWireValues(t *testing.T) {
	cases := map[ResponseCode]int{Success: 0, GameExists: 1, GameNotExists: 2, GameFull: 3}
	for code, want := range cases {
		if int(code) != want {
			t.Fatalf("%s = %d, want %d", code, int(code), want)
		}
	}
	if !Relayed(MsgPositionUpdate) || Relayed(MsgCreateGame) || Relayed(MsgPlayerConnected) {
		t.Fatalf("unexpected relay set")
	}
}
