package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// boardDrawWidth is the board's on-screen width: two columns per cell plus
// borders.
const boardDrawWidth = board.Width*2 + 2

// DrawGame renders the full game view: board with active and ghost piece,
// hold box, preview queue, stats and the feedback ticker.
func (t *TUI) DrawGame(view game.StateView, feed []string, style tcell.Style) {
	t.DrawBox(t.boardX, t.boardY, boardDrawWidth, board.Skyline+2, "", style)
	t.drawBoard(t.boardX+1, t.boardY+1, view, style)
	t.drawInfo(t.infoX, t.infoY, view, style)
	t.drawFeed(t.infoX, t.infoY+16, feed, style)
}

// drawBoard renders the visible rows, bottom row at the bottom of the box.
func (t *TUI) drawBoard(x, y int, view game.StateView, style tcell.Style) {
	ghost := map[piece.Coord]bool{}
	for _, c := range view.GhostTiles {
		ghost[c] = true
	}
	active := map[piece.Coord]piece.Tetromino{}
	if view.ActivePiece != nil {
		for _, c := range view.ActiveTiles {
			active[c] = view.ActivePiece.Shape
		}
	}

	for row := 0; row < board.Skyline; row++ {
		cellY := board.Skyline - 1 - row
		screenY := y + row
		for col := 0; col < board.Width; col++ {
			screenX := x + col*2
			coord := piece.Coord{X: col, Y: cellY}

			switch shape, isActive := active[coord]; {
			case isActive:
				cellStyle := style.Background(ShapeColor(shape))
				t.screen.SetContent(screenX, screenY, ' ', nil, cellStyle)
				t.screen.SetContent(screenX+1, screenY, ' ', nil, cellStyle)
			case view.Board[cellY][col] != 0:
				cellStyle := style.Background(tileColor(view.Board[cellY][col]))
				t.screen.SetContent(screenX, screenY, ' ', nil, cellStyle)
				t.screen.SetContent(screenX+1, screenY, ' ', nil, cellStyle)
			case ghost[coord]:
				dimStyle := style.Dim(true)
				t.screen.SetContent(screenX, screenY, '░', nil, dimStyle)
				t.screen.SetContent(screenX+1, screenY, '░', nil, dimStyle)
			default:
				dimStyle := style.Dim(true)
				t.screen.SetContent(screenX, screenY, '·', nil, dimStyle)
				t.screen.SetContent(screenX+1, screenY, '·', nil, dimStyle)
			}
		}
	}
}

// tileColor maps a board tile id to a color; garbage renders grey.
func tileColor(tile uint8) tcell.Color {
	if shape, ok := piece.FromTileID(tile); ok {
		return ShapeColor(shape)
	}
	return tcell.ColorGray
}

// drawInfo renders scores, timers, hold and preview.
func (t *TUI) drawInfo(x, y int, view game.StateView, style tcell.Style) {
	line := y
	t.DrawText(x, line, "Score:", style.Bold(true))
	t.DrawText(x+8, line, fmt.Sprintf("%d", view.Score), style)

	line += 2
	t.DrawText(x, line, "Level:", style.Bold(true))
	t.DrawText(x+8, line, fmt.Sprintf("%d", view.Level), style)

	line += 2
	t.DrawText(x, line, "Lines:", style.Bold(true))
	t.DrawText(x+8, line, fmt.Sprintf("%d", view.LinesCleared), style)

	line += 2
	t.DrawText(x, line, "Time:", style.Bold(true))
	t.DrawText(x+8, line, formatDuration(view.Time), style)

	line += 2
	t.DrawText(x, line, "Hold:", style.Bold(true))
	if view.Hold != nil {
		holdStyle := style
		if view.Hold.Used {
			holdStyle = holdStyle.Dim(true)
		}
		t.DrawText(x+8, line, view.Hold.Shape.String(), holdStyle.Foreground(ShapeColor(view.Hold.Shape)))
	} else {
		t.DrawText(x+8, line, "-", style.Dim(true))
	}

	line += 2
	t.DrawText(x, line, "Next:", style.Bold(true))
	for i, shape := range view.Preview {
		t.DrawText(x+8+i*2, line, shape.String(), style.Foreground(ShapeColor(shape)))
	}

	if view.Combo > 1 {
		line += 2
		t.DrawText(x, line, fmt.Sprintf("%d.combo", view.Combo), style.Bold(true))
	}
	if view.BackToBack > 1 {
		line += 1
		t.DrawText(x, line, fmt.Sprintf("%d.B2B", view.BackToBack), style.Bold(true))
	}
}

// drawFeed renders the most recent feedback lines, newest on top.
func (t *TUI) drawFeed(x, y int, feed []string, style tcell.Style) {
	for i, msg := range feed {
		if i >= 6 {
			break
		}
		t.DrawText(x, y+i, msg, style.Dim(i > 1))
	}
}

// DrawGameOver renders the end-of-game banner.
func (t *TUI) DrawGameOver(view game.StateView, style tcell.Style) {
	w, h := t.screen.Size()

	title := "GAME OVER"
	color := tcell.ColorRed
	if view.Result != nil && view.Result.Ok {
		title = "FINISHED!"
		color = tcell.ColorGreen
	}
	subtitle := fmt.Sprintf("Final Score: %d", view.Score)

	titleX := (w - len(title)) / 2
	titleY := h / 3
	t.DrawText(titleX, titleY, title, style.Bold(true).Foreground(color.TrueColor()))

	subX := (w - len(subtitle)) / 2
	t.DrawText(subX, titleY+2, subtitle, style.Bold(true).Foreground(tcell.ColorYellow.TrueColor()))

	stats := []string{
		fmt.Sprintf("Level: %d", view.Level),
		fmt.Sprintf("Lines: %d", view.LinesCleared),
		fmt.Sprintf("Time:  %s", formatDuration(view.Time)),
		"",
		"Press Q or ESC to quit...",
	}
	if view.Result != nil && !view.Result.Ok {
		stats = append([]string{fmt.Sprintf("Reason: %s", view.Result.Reason)}, stats...)
	}

	statsY := titleY + 5
	for _, stat := range stats {
		statX := (w - len(stat)) / 2
		t.DrawText(statX, statsY, stat, style)
		statsY++
	}
}

// DrawWelcome renders the startup screen.
func (t *TUI) DrawWelcome(mode string, style tcell.Style) {
	w, h := t.screen.Size()

	title := "T E T R O"
	subtitle := fmt.Sprintf("Mode: %s", mode)

	titleX := (w - len(title)) / 2
	titleY := h / 3
	t.DrawText(titleX, titleY, title, style.Bold(true).Foreground(tcell.ColorTeal.TrueColor()))

	subX := (w - len(subtitle)) / 2
	t.DrawText(subX, titleY+2, subtitle, style.Foreground(tcell.ColorYellow.TrueColor()))

	instructions := []string{
		"Controls:",
		"  ←/→  Move    ↓ Soft drop    Space Hard drop",
		"  Z/X  Rotate  A Rotate 180   S Sonic drop",
		"  C    Hold    P Pause        Q/ESC Quit",
		"",
		"Press any key to start...",
	}
	instY := titleY + 5
	for _, inst := range instructions {
		instX := (w - len(inst)) / 2
		t.DrawText(instX, instY, inst, style)
		instY++
	}
}

// FormatFeedback renders one engine feedback message as a ticker line.
// Messages not meant for the ticker return "".
func FormatFeedback(msg game.Message) string {
	switch msg.Kind {
	case game.MsgAccolade:
		a := msg.Accolade
		if a == nil {
			return ""
		}
		s := fmt.Sprintf("+%d", a.ScoreBonus)
		if a.PerfectClear {
			s += " Perfect"
		}
		if a.Spin {
			s += fmt.Sprintf(" %v-Spin", a.Shape)
		}
		s += " " + clearName(a.LinesCleared)
		if a.Combo > 1 {
			s += fmt.Sprintf(" [%d.combo]", a.Combo)
		}
		if a.BackToBack > 1 {
			s += fmt.Sprintf(" (%d.B2B)", a.BackToBack)
		}
		return s
	case game.MsgText:
		return msg.Text
	case game.MsgDebug:
		return "~" + msg.Text
	default:
		return ""
	}
}

// clearName names an n-line clear.
func clearName(n int) string {
	names := map[int]string{
		1: "Single",
		2: "Double",
		3: "Triple",
		4: "Quadruple",
		5: "Quintuple",
	}
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("%d-Clear", n)
}

func formatDuration(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins)*60
	return fmt.Sprintf("%d:%04.1f", mins, secs)
}
