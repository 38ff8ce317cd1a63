package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flapneat/assets"
	"github.com/pthm-cable/flapneat/config"
	"github.com/pthm-cable/flapneat/game"
)

var (
	styleSky    = tcell.StyleDefault.Background(tcell.NewRGBColor(78, 192, 202))
	stylePipe   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(116, 191, 46)).Background(tcell.NewRGBColor(78, 192, 202))
	styleGround = tcell.StyleDefault.Foreground(tcell.NewRGBColor(196, 186, 118)).Background(tcell.NewRGBColor(222, 216, 149))
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(78, 192, 202)).Bold(true)
)

// Terminal presents ticks as character cells. The view is scaled to the
// terminal size; each bird is one cell. Esc, Ctrl-C or q quits.
type Terminal struct {
	cfg    *config.Config
	screen tcell.Screen
	events chan tcell.Event
	ticker *time.Ticker

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewTerminal initialises screen and starts reading its events. Ticks are
// paced at screen.target_fps; a zero rate runs unthrottled.
func NewTerminal(cfg *config.Config, screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	screen.HideCursor()

	t := &Terminal{
		cfg:    cfg,
		screen: screen,
		events:  make(chan tcell.Event, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if cfg.Derived.TickBudget > 0 {
		t.ticker = time.NewTicker(time.Duration(cfg.Derived.TickBudget * float64(time.Second)))
	}

	go t.readEvents()
	return t, nil
}

// readEvents forwards screen events until the screen is finalised or the
// terminal is closed.
func (t *Terminal) readEvents() {
	defer close(t.stopped)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return // screen finalised
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Close restores the terminal and waits for the event reader to exit. It is
// safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		if t.ticker != nil {
			t.ticker.Stop()
		}
		t.screen.Fini()
		<-t.stopped
	})
}

// Present implements game.Frontend.
func (t *Terminal) Present(f *game.Frame) game.Input {
	if t.drainEvents() {
		return game.InputQuit
	}

	t.draw(f)
	t.screen.Show()

	if t.ticker != nil {
		<-t.ticker.C
	}
	return game.InputNone
}

// drainEvents handles pending events without blocking and reports whether
// a quit key was pressed.
func (t *Terminal) drainEvents() bool {
	for {
		select {
		case ev := <-t.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return true
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		default:
			return false
		}
	}
}

// cell maps a view position to a terminal cell.
func (t *Terminal) cell(x, y float64) (int, int) {
	cols, rows := t.screen.Size()
	cx := int(x * float64(cols) / float64(t.cfg.Screen.Width))
	cy := int(y * float64(rows) / float64(t.cfg.Screen.Height))
	return cx, cy
}

func (t *Terminal) draw(f *game.Frame) {
	s := t.screen
	cols, rows := s.Size()
	s.Clear()

	_, groundRow := t.cell(0, f.Base.Y)
	for y := 0; y < rows; y++ {
		style, ch := styleSky, ' '
		if y >= groundRow {
			style, ch = styleGround, '▒'
		}
		for x := 0; x < cols; x++ {
			s.SetContent(x, y, ch, nil, style)
		}
	}

	for _, p := range f.Pipes {
		x0, gapTop := t.cell(p.X, p.Top+assets.PipeHeight)
		x1, gapBottom := t.cell(p.X+assets.PipeWidth, p.Bottom)
		for x := max(x0, 0); x < min(x1, cols); x++ {
			for y := 0; y < groundRow; y++ {
				if y < gapTop || y >= gapBottom {
					s.SetContent(x, y, '█', nil, stylePipe)
				}
			}
		}
	}

	for _, b := range f.Birds {
		x, y := t.cell(b.X+assets.BirdWidth/2, b.Y+assets.BirdHeight/2)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		ch := '>'
		switch {
		case b.Tilt > 0:
			ch = '/'
		case b.Tilt <= t.cfg.Physics.DiveTilt:
			ch = 'v'
		case b.Tilt < 0:
			ch = '\\'
		}
		color := tcell.NewRGBColor(int32(b.Tint.R), int32(b.Tint.G), int32(b.Tint.B))
		s.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(color).Background(tcell.NewRGBColor(78, 192, 202)).Bold(true))
	}

	drawString(s, 1, 0, fmt.Sprintf("Gen: %d", f.Generation), styleText)
	score := fmt.Sprintf("Score: %d", f.Score)
	drawString(s, cols-len(score)-1, 0, score, styleText)
	drawString(s, 1, 1, fmt.Sprintf("Alive: %d", f.Alive), styleText)
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}
