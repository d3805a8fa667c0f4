package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindFighter EntityKind = "fighter"
	EntityKindMatch   EntityKind = "match"
	EntityKindSession EntityKind = "session"
	EntityKindPeer    EntityKind = "peer"
)

// Event is one gameplay or network fact. Tick is the match clock in
// milliseconds for gameplay events and zero for network events.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
	MatchID  string         `json:"matchId,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Fighter refers to the fighter at index side of a match.
func Fighter(name string, side int) EntityRef {
	return EntityRef{ID: fighterID(name, side), Kind: EntityKindFighter}
}

func fighterID(name string, side int) string {
	if side == 0 {
		return name + "#0"
	}
	return name + "#1"
}

const (
	CategoryCombat    = "combat"
	CategoryLifecycle = "lifecycle"
	CategoryNetwork   = "network"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithFields returns a publisher that adds fields to every event's Extra
// without overwriting keys the event already carries.
func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	return &fieldPublisher{next: p, fields: copyFields(fields)}
}

type fieldPublisher struct {
	next   Publisher
	fields map[string]any
}

func (p *fieldPublisher) Publish(ctx context.Context, event Event) {
	p.next.Publish(ctx, mergeFields(event, p.fields))
}

// WithMatch tags every event with a match identifier.
func WithMatch(p Publisher, matchID string) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if matchID == "" {
		return p
	}
	return PublisherFunc(func(ctx context.Context, event Event) {
		if event.MatchID == "" {
			event.MatchID = matchID
		}
		p.Publish(ctx, event)
	})
}

func (e Event) WithExtra(key string, value any) Event {
	e = cloneEvent(e)
	if e.Extra == nil {
		e.Extra = make(map[string]any, 1)
	}
	e.Extra[key] = value
	return e
}

func mergeFields(event Event, fields map[string]any) Event {
	if len(fields) == 0 {
		return event
	}
	event = cloneEvent(event)
	if event.Extra == nil {
		event.Extra = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		if _, exists := event.Extra[k]; !exists {
			event.Extra[k] = v
		}
	}
	return event
}

func cloneEvent(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		cloned.Extra = copyFields(event.Extra)
	}
	return cloned
}

// Clone returns a copy of the event that shares no slices or maps with it.
func Clone(event Event) Event {
	return cloneEvent(event)
}

func copyFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return copied
}
