package lifecycle

import (
	"context"

	"github.com/evymii/ard-arena/logging"
)

const (
	EventMatchStarted  logging.EventType = "lifecycle.match_started"
	EventMatchTimedOut logging.EventType = "lifecycle.match_timed_out"
	EventMatchEnded    logging.EventType = "lifecycle.match_ended"
	EventOpponentLeft  logging.EventType = "lifecycle.opponent_left"
)

// MatchStartedPayload describes the fighters entering the lane.
type MatchStartedPayload struct {
	Fighters  [2]string `json:"fighters"`
	Countdown int       `json:"countdown"`
	Width     float64   `json:"width"`
}

// MatchEndedPayload is the final outcome.
type MatchEndedPayload struct {
	Winner string     `json:"winner,omitempty"`
	Loser  string     `json:"loser,omitempty"`
	Draw   bool       `json:"draw,omitempty"`
	Reason string     `json:"reason"`
	Life   [2]float64 `json:"life"`
}

func MatchStarted(ctx context.Context, pub logging.Publisher, tick uint64, match logging.EntityRef, payload MatchStartedPayload) {
	publish(ctx, pub, EventMatchStarted, tick, match, logging.SeverityInfo, payload)
}

func MatchTimedOut(ctx context.Context, pub logging.Publisher, tick uint64, match logging.EntityRef, payload MatchEndedPayload) {
	publish(ctx, pub, EventMatchTimedOut, tick, match, logging.SeverityInfo, payload)
}

func MatchEnded(ctx context.Context, pub logging.Publisher, tick uint64, match logging.EntityRef, payload MatchEndedPayload) {
	publish(ctx, pub, EventMatchEnded, tick, match, logging.SeverityInfo, payload)
}

// OpponentLeft is a warning: the match ends without a fight result.
func OpponentLeft(ctx context.Context, pub logging.Publisher, tick uint64, fighter logging.EntityRef) {
	publish(ctx, pub, EventOpponentLeft, tick, fighter, logging.SeverityWarn, nil)
}

func publish(ctx context.Context, pub logging.Publisher, t logging.EventType, tick uint64, actor logging.EntityRef, sev logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     t,
		Tick:     tick,
		Actor:    actor,
		Severity: sev,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
