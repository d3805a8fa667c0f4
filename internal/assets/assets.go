// Package assets provides fighter frame sources.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/moves"
)

var ErrNoFrames = errors.New("assets: no frames for character")

// Uniform serves every frame at one fixed size.
type Uniform struct {
	Width  float64
	Height float64
}

// DefaultUniform matches the fighters' base size.
func DefaultUniform() Uniform {
	return Uniform{Width: fighter.BaseWidth, Height: fighter.BaseHeight}
}

func (u Uniform) Frame(_ context.Context, character string, o moves.Orientation, kind moves.Kind, step int) (fighter.Frame, error) {
	return fighter.Frame{
		Ref:    fighter.FrameRef(character, o, kind, step),
		Width:  u.Width,
		Height: u.Height,
	}, nil
}

// Size is a frame size in lane units.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// CharacterFrames sizes the frames of one character. Moves overrides
// Default for individual move kinds.
type CharacterFrames struct {
	Default Size                `yaml:"default"`
	Moves   map[moves.Kind]Size `yaml:"moves"`
}

// Manifest is a frame source read from YAML:
//
//	characters:
//	  kano:
//	    default: {width: 30, height: 60}
//	    moves:
//	      squat: {width: 30, height: 35}
type Manifest struct {
	Characters map[string]CharacterFrames `yaml:"characters"`
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("assets: parse manifest: %w", err)
	}
	normalized := make(map[string]CharacterFrames, len(m.Characters))
	for name, frames := range m.Characters {
		normalized[strings.ToLower(strings.TrimSpace(name))] = frames
	}
	m.Characters = normalized
	return &m, nil
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return ParseManifest(data)
}

func (m *Manifest) Frame(_ context.Context, character string, o moves.Orientation, kind moves.Kind, step int) (fighter.Frame, error) {
	frames, ok := m.Characters[character]
	if !ok {
		return fighter.Frame{}, fmt.Errorf("%w: %s", ErrNoFrames, character)
	}
	size := frames.Default
	if override, ok := frames.Moves[kind]; ok {
		size = override
	}
	return fighter.Frame{
		Ref:    fighter.FrameRef(character, o, kind, step),
		Width:  size.Width,
		Height: size.Height,
	}, nil
}

// Dir reads frame pictures from a directory laid out like FrameRef and
// takes each frame's size from its image header. Scale converts pixels to
// lane units; zero means one to one.
type Dir struct {
	Root  string
	Scale float64
}

func (d Dir) Frame(ctx context.Context, character string, o moves.Orientation, kind moves.Kind, step int) (fighter.Frame, error) {
	if err := ctx.Err(); err != nil {
		return fighter.Frame{}, err
	}
	ref := fighter.FrameRef(character, o, kind, step)
	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(ref)))
	if err != nil {
		return fighter.Frame{}, fmt.Errorf("assets: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fighter.Frame{}, fmt.Errorf("assets: decode %s: %w", ref, err)
	}
	scale := d.Scale
	if scale <= 0 {
		scale = 1
	}
	return fighter.Frame{
		Ref:    ref,
		Width:  float64(cfg.Width) * scale,
		Height: float64(cfg.Height) * scale,
	}, nil
}
