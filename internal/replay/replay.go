// Package replay records the intents applied to a match and plays them back
// into a fresh one.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

const Version = 1

var (
	ErrVersion  = errors.New("replay: unsupported log version")
	ErrBadEntry = errors.New("replay: invalid entry")
)

// Entry is one intent. At is match time in nanoseconds.
type Entry struct {
	At   int64  `msgpack:"at"`
	Side uint8  `msgpack:"side"`
	Kind string `msgpack:"kind"`
}

// Log is everything needed to rebuild a local match.
type Log struct {
	Version    int       `msgpack:"version"`
	Characters [2]string `msgpack:"characters"`
	Countdown  int       `msgpack:"countdown"`
	LaneWidth  float64   `msgpack:"laneWidth"`
	LaneHeight float64   `msgpack:"laneHeight"`
	// Duration is the match time at which recording stopped.
	Duration int64   `msgpack:"duration"`
	Entries  []Entry `msgpack:"entries"`
}

// Recorder implements match.Recorder. It is safe for concurrent use so the
// log can be read while the runner is still going.
type Recorder struct {
	mu  sync.Mutex
	log Log
}

// NewRecorder starts a log for a match built from cfg.
func NewRecorder(cfg match.Config) *Recorder {
	return &Recorder{log: Log{
		Version:    Version,
		Characters: cfg.Characters,
		Countdown:  cfg.Countdown,
		LaneWidth:  cfg.LaneWidth,
		LaneHeight: cfg.LaneHeight,
	}}
}

func (r *Recorder) Record(at time.Duration, side int, kind moves.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Entries = append(r.log.Entries, Entry{At: int64(at), Side: uint8(side), Kind: kind.String()})
	if int64(at) > r.log.Duration {
		r.log.Duration = int64(at)
	}
}

// Finish marks the match time recording stopped at.
func (r *Recorder) Finish(at time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int64(at) > r.log.Duration {
		r.log.Duration = int64(at)
	}
}

// Log returns a copy of what has been recorded so far.
func (r *Recorder) Log() Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.log
	log.Entries = append([]Entry(nil), r.log.Entries...)
	return log
}

func Encode(w io.Writer, log Log) error {
	return msgpack.NewEncoder(w).Encode(&log)
}

func Decode(r io.Reader) (Log, error) {
	var log Log
	if err := msgpack.NewDecoder(r).Decode(&log); err != nil {
		return Log{}, fmt.Errorf("replay: decode: %w", err)
	}
	if log.Version != Version {
		return Log{}, fmt.Errorf("%w: %d", ErrVersion, log.Version)
	}
	return log, nil
}

func Save(path string, log Log) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	if err := Encode(f, log); err != nil {
		f.Close()
		return fmt.Errorf("replay: encode %s: %w", path, err)
	}
	return f.Close()
}

func Load(path string) (Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return Log{}, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Play rebuilds the match described by log, applies every entry at its
// recorded time and returns the snapshot at the end of the recording. base
// supplies everything the log does not carry, such as publishers and frames.
func Play(ctx context.Context, log Log, base match.Config) (match.Snapshot, error) {
	base.Characters = log.Characters
	base.Countdown = log.Countdown
	base.LaneWidth = log.LaneWidth
	base.LaneHeight = log.LaneHeight
	m, err := match.New(base)
	if err != nil {
		return match.Snapshot{}, err
	}
	defer m.Close()
	if err := m.Init(ctx, nil); err != nil {
		return match.Snapshot{}, err
	}
	for i, entry := range log.Entries {
		if err := ctx.Err(); err != nil {
			return match.Snapshot{}, err
		}
		var kind moves.Kind
		if err := kind.UnmarshalText([]byte(entry.Kind)); err != nil {
			return match.Snapshot{}, fmt.Errorf("%w %d: %w", ErrBadEntry, i, err)
		}
		if entry.Side > 1 {
			return match.Snapshot{}, fmt.Errorf("%w %d: side %d", ErrBadEntry, i, entry.Side)
		}
		m.AdvanceTo(time.Duration(entry.At))
		m.Intent(int(entry.Side), kind)
	}
	m.AdvanceTo(time.Duration(log.Duration))
	return m.Snapshot(), nil
}
