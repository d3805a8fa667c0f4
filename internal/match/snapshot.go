package match

import (
	"time"

	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/moves"
)

// FighterState is what a renderer needs to draw one fighter.
type FighterState struct {
	Name        string            `json:"name"`
	X           float64           `json:"x"`
	Y           float64           `json:"y"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Life        float64           `json:"life"`
	Orientation moves.Orientation `json:"orientation"`
	Move        moves.Kind        `json:"move"`
	Step        int               `json:"step"`
	Frame       string            `json:"frame"`
	Locked      bool              `json:"locked"`
}

// Snapshot is a read-only copy of the match taken between clock advances.
type Snapshot struct {
	At        time.Duration   `json:"at"`
	Countdown int             `json:"countdown"`
	LaneWidth float64         `json:"laneWidth"`
	Over      bool            `json:"over"`
	Fighters  [2]FighterState `json:"fighters"`
	Result    *Result         `json:"result,omitempty"`
}

// Snapshot copies the state of both fighters.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		At:        m.clock.Now(),
		Countdown: m.countdown,
		LaneWidth: m.lane.Width(),
		Over:      m.over,
	}
	for side, f := range m.fighters {
		snap.Fighters[side] = fighterState(f)
	}
	if m.over {
		result := m.result
		snap.Result = &result
	}
	return snap
}

func fighterState(f *fighter.Fighter) FighterState {
	state := FighterState{
		Name:        f.Name(),
		X:           f.X(),
		Y:           f.Y(),
		Width:       f.VisibleWidth(),
		Height:      f.VisibleHeight(),
		Life:        f.Life(),
		Orientation: f.Orientation(),
		Frame:       f.Frame().Ref,
		Locked:      f.Locked(),
	}
	if f.HasMove() {
		state.Move = f.Move().Kind()
		state.Step = f.Move().Step()
	}
	return state
}
