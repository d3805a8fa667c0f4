package network

import (
	"context"

	"github.com/evymii/ard-arena/logging"
)

const (
	// EventSessionCreated is emitted when a host opens a named session.
	EventSessionCreated logging.EventType = "network.session_created"
	// EventSessionJoined is emitted when the second peer pairs.
	EventSessionJoined logging.EventType = "network.session_joined"
	// EventSessionRejected is emitted for a create or join that failed.
	EventSessionRejected logging.EventType = "network.session_rejected"
	// EventSessionEnded is emitted when either peer disconnects.
	EventSessionEnded logging.EventType = "network.session_ended"
)

// SessionPayload identifies the session and peer involved.
type SessionPayload struct {
	Game   string `json:"game"`
	Peer   string `json:"peer,omitempty"`
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Session refers to a named session.
func Session(game string) logging.EntityRef {
	return logging.EntityRef{ID: game, Kind: logging.EntityKindSession}
}

func SessionCreated(ctx context.Context, pub logging.Publisher, payload SessionPayload) {
	publish(ctx, pub, EventSessionCreated, logging.SeverityInfo, payload)
}

func SessionJoined(ctx context.Context, pub logging.Publisher, payload SessionPayload) {
	publish(ctx, pub, EventSessionJoined, logging.SeverityInfo, payload)
}

func SessionRejected(ctx context.Context, pub logging.Publisher, payload SessionPayload) {
	publish(ctx, pub, EventSessionRejected, logging.SeverityWarn, payload)
}

func SessionEnded(ctx context.Context, pub logging.Publisher, payload SessionPayload) {
	publish(ctx, pub, EventSessionEnded, logging.SeverityInfo, payload)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, sev logging.Severity, payload SessionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Actor:    Session(payload.Game),
		Severity: sev,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
