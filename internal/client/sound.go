package client

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays hit feedback.
type Sound interface {
	Hit(damage float64)
	Close()
}

// Silent is used when no audio device is available.
type Silent struct{}

func (Silent) Hit(float64) {}
func (Silent) Close()      {}

// Speaker plays a short tone per hit; harder hits sound higher.
type Speaker struct{}

func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Speaker{}, nil
}

func (s *Speaker) Hit(damage float64) {
	tone, err := generators.SineTone(sampleRate, 220+damage*40)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(60*time.Millisecond), tone))
}

func (s *Speaker) Close() {
	speaker.Close()
}
