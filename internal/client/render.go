package client

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/evymii/ard-arena/internal/arena"
	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

const (
	hudRows     = 2
	lifeBarSize = 20
)

var (
	styleHUD   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleFloor = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLife  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLow   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	sideStyles = [2]tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorBlue),
		tcell.StyleDefault.Foreground(tcell.ColorYellow),
	}
)

// draw paints snap onto screen. Lane units are scaled to fill the screen
// below the two HUD rows.
func draw(screen tcell.Screen, snap match.Snapshot) {
	screen.Clear()
	w, h := screen.Size()
	if w <= 0 || h <= hudRows+1 {
		screen.Show()
		return
	}

	drawHUD(screen, w, snap)

	laneWidth := snap.LaneWidth
	if laneWidth <= 0 {
		laneWidth = arena.DefaultWidth
	}
	sx := float64(w) / laneWidth
	sy := float64(h-hudRows-1) / arena.DefaultHeight

	floor := hudRows + int(math.Round((moves.PlayerTop+fighter.BaseHeight)*sy))
	if floor >= h {
		floor = h - 1
	}
	for x := 0; x < w; x++ {
		screen.SetContent(x, floor, '▀', nil, styleFloor)
	}

	for side, f := range snap.Fighters {
		drawFighter(screen, side, f, sx, sy, floor)
	}
	screen.Show()
}

func drawFighter(screen tcell.Screen, side int, f match.FighterState, sx, sy float64, floor int) {
	style := sideStyles[side]
	left := int(math.Floor(f.X * sx))
	right := max(int(math.Ceil((f.X+f.Width)*sx))-1, left)
	top := hudRows + int(math.Floor(f.Y*sy))
	bottom := max(hudRows+int(math.Ceil((f.Y+f.Height)*sy))-1, top)
	if bottom >= floor {
		shift := bottom - floor + 1
		top, bottom = top-shift, bottom-shift
	}
	for y := max(top, hudRows); y <= bottom; y++ {
		for x := left; x <= right; x++ {
			screen.SetContent(x, y, '█', nil, style)
		}
	}
	if top-1 >= hudRows {
		drawText(screen, left, top-1, style, f.Move.String())
	}
}

func drawHUD(screen tcell.Screen, w int, snap match.Snapshot) {
	a, b := snap.Fighters[0], snap.Fighters[1]
	drawText(screen, 0, 0, styleHUD, strings.ToUpper(a.Name))
	drawLife(screen, 0, 1, a.Life, false)

	name := strings.ToUpper(b.Name)
	drawText(screen, w-len(name), 0, styleHUD, name)
	drawLife(screen, w-lifeBarSize, 1, b.Life, true)

	clock := fmt.Sprintf("%02d", snap.Countdown)
	drawText(screen, (w-len(clock))/2, 0, styleHUD, clock)
	if banner := bannerText(snap); banner != "" {
		drawText(screen, (w-len(banner))/2, 1, styleHUD.Bold(true), banner)
	}
}

func drawLife(screen tcell.Screen, x, y int, life float64, mirrored bool) {
	filled := int(math.Round(life / fighter.MaxLife * lifeBarSize))
	style := styleLife
	if life < fighter.MaxLife/4 {
		style = styleLow
	}
	for i := 0; i < lifeBarSize; i++ {
		on := i < filled
		if mirrored {
			on = i >= lifeBarSize-filled
		}
		r := '░'
		if on {
			r = '█'
		}
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func bannerText(snap match.Snapshot) string {
	if !snap.Over || snap.Result == nil {
		return ""
	}
	r := snap.Result
	if r.Draw {
		return "DRAW"
	}
	text := strings.ToUpper(snap.Fighters[r.Winner].Name) + " WINS"
	if r.Reason == match.ReasonOpponentLeft {
		text += " (opponent left)"
	}
	return text
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
