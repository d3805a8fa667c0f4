package fighter

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/evymii/ard-arena/internal/moves"
)

// preloadLimit caps concurrent frame requests per fighter.
const preloadLimit = 8

// Frame is one animation picture. Width and Height are zero when the source
// does not know the picture size; the fighter then falls back to its base
// size.
type Frame struct {
	Ref    string  `json:"ref"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FrameSource acquires animation frames.
type FrameSource interface {
	Frame(ctx context.Context, character string, o moves.Orientation, kind moves.Kind, step int) (Frame, error)
}

// FrameRef is the canonical asset path of a frame.
func FrameRef(character string, o moves.Orientation, kind moves.Kind, step int) string {
	return fmt.Sprintf("fighters/%s/%s/%s/%d.png", character, o, kind, step)
}

type frameKey struct {
	kind        moves.Kind
	orientation moves.Orientation
	step        int
}

// FrameCount is the number of frames a fighter declares: every step of every
// move for both facings.
func FrameCount() int {
	total := 0
	for _, spec := range moves.Table() {
		total += spec.Steps * len(moves.Orientations())
	}
	return total
}

// Init acquires every declared frame. It returns once all frames are loaded
// or the first acquisition fails.
func (f *Fighter) Init(ctx context.Context, src FrameSource) error {
	if src == nil {
		return fmt.Errorf("fighter %s: nil frame source", f.name)
	}
	var mu sync.Mutex
	loaded := make(map[frameKey]Frame, FrameCount())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadLimit)
	for _, spec := range moves.Table() {
		for _, o := range moves.Orientations() {
			for step := 0; step < spec.Steps; step++ {
				key := frameKey{kind: spec.Kind, orientation: o, step: step}
				g.Go(func() error {
					frame, err := src.Frame(gctx, f.name, key.orientation, key.kind, key.step)
					if err != nil {
						return fmt.Errorf("fighter %s: frame %s: %w", f.name, FrameRef(f.name, key.orientation, key.kind, key.step), err)
					}
					if frame.Ref == "" {
						frame.Ref = FrameRef(f.name, key.orientation, key.kind, key.step)
					}
					mu.Lock()
					loaded[key] = frame
					mu.Unlock()
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.frames = loaded
	return nil
}

func (f *Fighter) lookupFrame(kind moves.Kind, step int) Frame {
	if frame, ok := f.frames[frameKey{kind: kind, orientation: f.orientation, step: step}]; ok {
		return frame
	}
	return Frame{Ref: FrameRef(f.name, f.orientation, kind, step)}
}
