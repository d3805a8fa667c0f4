package replay

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

func recordScript(t *testing.T) (Log, match.Snapshot) {
	t.Helper()
	cfg := match.Config{Characters: [2]string{"subzero", "kano"}, Countdown: 30}
	m, err := match.New(cfg)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	defer m.Close()
	if err := m.Init(context.Background(), nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	rec := NewRecorder(cfg)
	script := []struct {
		at   time.Duration
		side int
		kind moves.Kind
	}{
		{0, 0, moves.Walk},
		{0, 1, moves.Walk},
		{1200 * time.Millisecond, 1, moves.Stand},
		{2500 * time.Millisecond, 0, moves.HighKick},
		{3400 * time.Millisecond, 0, moves.Uppercut},
		{4000 * time.Millisecond, 1, moves.ForwardJump},
		{4300 * time.Millisecond, 1, moves.ForwardJumpKick},
		{5000 * time.Millisecond, 0, moves.Squat},
		{5200 * time.Millisecond, 1, moves.SpinKick},
	}
	for _, step := range script {
		m.AdvanceTo(step.at)
		rec.Record(m.Now(), step.side, step.kind)
		m.Intent(step.side, step.kind)
	}
	m.AdvanceTo(8 * time.Second)
	rec.Finish(m.Now())
	return rec.Log(), m.Snapshot()
}

func TestPlayReproducesRecordedMatch(t *testing.T) {
	log, want := recordScript(t)

	var buf bytes.Buffer
	if err := Encode(&buf, log); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := Play(context.Background(), decoded, match.Config{})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if got.At != want.At || got.Countdown != want.Countdown {
		t.Fatalf("expected time %v/%d, got %v/%d", want.At, want.Countdown, got.At, got.Countdown)
	}
	for side := 0; side < 2; side++ {
		a, b := want.Fighters[side], got.Fighters[side]
		if a.X != b.X || a.Y != b.Y || a.Life != b.Life || a.Move != b.Move {
			t.Fatalf("side %d diverged: recorded %+v, replayed %+v", side, a, b)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	log, _ := recordScript(t)
	path := filepath.Join(t.TempDir(), "match.replay")
	if err := Save(path, log); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Entries) != len(log.Entries) || loaded.Duration != log.Duration {
		t.Fatalf("loaded log differs: %d entries/%d, want %d/%d",
			len(loaded.Entries), loaded.Duration, len(log.Entries), log.Duration)
	}
	if loaded.Characters != log.Characters {
		t.Fatalf("unexpected characters %v", loaded.Characters)
	}
}

func TestDecodeRejectsOtherVersions(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Log{Version: Version + 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}

func TestPlayRejectsUnknownMove(t *testing.T) {
	log := Log{
		Version:    Version,
		Characters: [2]string{"subzero", "kano"},
		Entries:    []Entry{{At: 0, Side: 0, Kind: "moonwalk"}},
	}
	if _, err := Play(context.Background(), log, match.Config{}); !errors.Is(err, ErrBadEntry) {
		t.Fatalf("expected ErrBadEntry, got %v", err)
	}
}
