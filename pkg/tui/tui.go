package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// TUI wraps the tcell screen with the layout and helpers the game views
// need.
type TUI struct {
	screen  tcell.Screen
	width   int
	height  int
	eventCh chan tcell.Event
	quitCh  chan struct{}

	// Layout.
	boardX int
	boardY int
	infoX  int
	infoY  int

	// State.
	running bool
}

// shapeColors maps shapes to terminal colors.
var shapeColors = map[piece.Tetromino]tcell.Color{
	piece.O: tcell.ColorYellow,
	piece.I: tcell.ColorTeal,
	piece.S: tcell.ColorGreen,
	piece.Z: tcell.ColorRed,
	piece.T: tcell.ColorPurple,
	piece.L: tcell.ColorOrange,
	piece.J: tcell.ColorBlue,
}

// New creates a TUI instance and initializes the terminal screen.
func New() (*TUI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	t := &TUI{
		screen:  screen,
		eventCh: make(chan tcell.Event, 10),
		quitCh:  make(chan struct{}),
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	screen.Sync()

	t.UpdateSize()

	go t.eventPump()

	return t, nil
}

// eventPump continuously polls events and sends them to the channel.
func (t *TUI) eventPump() {
	for {
		select {
		case <-t.quitCh:
			return
		default:
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			t.eventCh <- ev
		}
	}
}

// UpdateSize refreshes the cached terminal size and layout anchors.
func (t *TUI) UpdateSize() {
	w, h := t.screen.Size()
	t.width = w
	t.height = h

	t.boardX = 2
	t.boardY = 2
	t.infoX = t.boardX + boardDrawWidth + 4
	t.infoY = t.boardY
}

// Close restores the terminal state.
func (t *TUI) Close() {
	t.running = false
	close(t.quitCh)
	t.screen.Fini()
}

// Clear clears the screen buffer.
func (t *TUI) Clear() {
	t.screen.Clear()
}

// Sync flushes the buffer to the terminal.
func (t *TUI) Sync() {
	t.screen.Show()
}

// SetRunning sets the main-loop flag.
func (t *TUI) SetRunning(running bool) {
	t.running = running
}

// IsRunning reports whether the main loop should continue.
func (t *TUI) IsRunning() bool {
	return t.running
}

// PollEvent waits for and returns the next event.
func (t *TUI) PollEvent() tcell.Event {
	return <-t.eventCh
}

// PollEventWithTimeout waits for an event, returning nil on timeout.
func (t *TUI) PollEventWithTimeout(timeout time.Duration) tcell.Event {
	select {
	case ev := <-t.eventCh:
		return ev
	case <-time.After(timeout):
		return nil
	}
}

// ShapeColor returns the terminal color for a shape.
func ShapeColor(shape piece.Tetromino) tcell.Color {
	if c, ok := shapeColors[shape]; ok {
		return c
	}
	return tcell.ColorDefault
}

// DrawBox draws a box with borders and an optional centered title.
func (t *TUI) DrawBox(x, y, width, height int, title string, style tcell.Style) {
	t.screen.SetContent(x, y, '┌', nil, style)
	t.screen.SetContent(x+width-1, y, '┐', nil, style)
	t.screen.SetContent(x, y+height-1, '└', nil, style)
	t.screen.SetContent(x+width-1, y+height-1, '┘', nil, style)

	for i := x + 1; i < x+width-1; i++ {
		t.screen.SetContent(i, y, '─', nil, style)
		t.screen.SetContent(i, y+height-1, '─', nil, style)
	}
	for i := y + 1; i < y+height-1; i++ {
		t.screen.SetContent(x, i, '│', nil, style)
		t.screen.SetContent(x+width-1, i, '│', nil, style)
	}

	if title != "" && width > len(title)+4 {
		titleX := x + (width-len(title))/2
		for i, ch := range title {
			t.screen.SetContent(titleX+i, y, ch, nil, style.Bold(true))
		}
	}
}

// DrawText draws text at the specified position.
func (t *TUI) DrawText(x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// FillRect fills a rectangle with the specified character.
func (t *TUI) FillRect(x, y, width, height int, ch rune, style tcell.Style) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			t.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

// GetSize returns the terminal size.
func (t *TUI) GetSize() (int, int) {
	return t.screen.Size()
}

// CheckMinimumSize checks if the terminal can fit the game layout.
func (t *TUI) CheckMinimumSize() bool {
	w, h := t.screen.Size()
	return w >= 64 && h >= 26
}
