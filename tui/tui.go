// Package tui plays the game in a terminal.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-grid/game"
	"github.com/hoshinonyaruko/snake-grid/structs"
	"github.com/rs/zerolog"
)

// Each grid cell is two terminal columns wide so the board looks square.
const cellWidth = 2

var (
	snakeStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	foodStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	emptyStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	textStyle  = tcell.StyleDefault
	overStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// App draws the controller's snapshots and turns key presses into moves.
type App struct {
	screen tcell.Screen
	ctrl   *game.Controller
	log    zerolog.Logger

	drawMu   sync.Mutex
	quit     chan struct{}
	quitOnce sync.Once
}

func New(screen tcell.Screen, ctrl *game.Controller, log zerolog.Logger) *App {
	return &App{
		screen: screen,
		ctrl:   ctrl,
		log:    log.With().Str("component", "tui").Logger(),
		quit:   make(chan struct{}),
	}
}

// Run plays until ctx is done or the player quits. The screen must already be
// initialized; the caller finalizes it.
func (a *App) Run(ctx context.Context) error {
	a.screen.HideCursor()

	unsubscribe := a.ctrl.Subscribe(a.Draw)
	defer unsubscribe()
	a.Draw(a.ctrl.Snapshot())

	binding := a.ctrl.Start(a)
	defer binding.Close()

	select {
	case <-ctx.Done():
	case <-a.quit:
	}
	a.log.Info().Msg("leaving")
	return nil
}

// Quit ends Run.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Listen polls terminal events, passing arrow keys to fn. Enter restarts a
// finished game; Esc, q and Ctrl-C quit.
func (a *App) Listen(fn func(structs.Direction)) func() {
	stopping := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			switch ev := a.screen.PollEvent().(type) {
			case nil:
				// screen finalized
				return
			case *tcell.EventInterrupt:
				select {
				case <-stopping:
					return
				default:
				}
			case *tcell.EventKey:
				a.handleKey(ev, fn)
			case *tcell.EventResize:
				a.screen.Sync()
				a.Draw(a.ctrl.Snapshot())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopping)
			if err := a.screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
				a.log.Warn().Err(err).Msg("interrupt event loop")
			}
			<-done
		})
	}
}

func (a *App) handleKey(ev *tcell.EventKey, fn func(structs.Direction)) {
	if d, ok := KeyDirection(ev); ok {
		fn(d)
		return
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.Quit()
	case tcell.KeyEnter:
		if a.ctrl.Snapshot().GameOver {
			a.ctrl.Reset()
		}
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			a.Quit()
		}
	}
}

// KeyDirection maps the arrow keys. Every other key reports false.
func KeyDirection(ev *tcell.EventKey) (structs.Direction, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return structs.Up, true
	case tcell.KeyDown:
		return structs.Down, true
	case tcell.KeyLeft:
		return structs.Left, true
	case tcell.KeyRight:
		return structs.Right, true
	}
	return structs.Direction{}, false
}

// Draw paints snap: a score line, the board, then a status line.
func (a *App) Draw(snap structs.Snapshot) {
	a.drawMu.Lock()
	defer a.drawMu.Unlock()

	s := a.screen
	s.Clear()
	drawText(s, 0, 0, textStyle, fmt.Sprintf("Score: %d", snap.Score))

	for y := 0; y < snap.GridSize; y++ {
		for x := 0; x < snap.GridSize; x++ {
			col, row := x*cellWidth, y+1
			switch snap.KindAt(x, y) {
			case structs.SnakeBody:
				s.SetContent(col, row, tcell.RuneBlock, nil, snakeStyle)
				s.SetContent(col+1, row, tcell.RuneBlock, nil, snakeStyle)
			case structs.Food:
				s.SetContent(col, row, '●', nil, foodStyle)
				s.SetContent(col+1, row, ' ', nil, foodStyle)
			default:
				s.SetContent(col, row, tcell.RuneBullet, nil, emptyStyle)
				s.SetContent(col+1, row, ' ', nil, emptyStyle)
			}
		}
	}

	status := snap.GridSize + 1
	if snap.GameOver {
		drawText(s, 0, status, overStyle, "Game Over! Press Enter to play again")
	} else {
		drawText(s, 0, status, textStyle, "Arrows steer, Esc quits")
	}
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
