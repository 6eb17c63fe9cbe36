package main

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/protocol"
	"github.com/Strophox/tetro-tui-sub001/pkg/tui"
	"github.com/Strophox/tetro-tui-sub001/pkg/wsclient"
)

// remoteView is the last state received from the server plus the feedback
// ticker, guarded for the reader goroutine.
type remoteView struct {
	mu       sync.Mutex
	state    *protocol.StateMessage
	feed     []string
	gameOver *protocol.GameOverMessage
	status   string
}

func (v *remoteView) snapshot() (*protocol.StateMessage, []string, *protocol.GameOverMessage, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, append([]string(nil), v.feed...), v.gameOver, v.status
}

// runRemote plays on a remote server: taps are sent as input messages, the
// board renders from the server's state stream.
func runRemote(ui *tui.TUI, serverURL string) {
	view := &remoteView{status: "Connecting..."}

	client := wsclient.New(serverURL)
	client.SetOnConnected(func() {
		view.mu.Lock()
		view.status = "Connected"
		view.mu.Unlock()
	})
	client.SetOnDisconnected(func() {
		view.mu.Lock()
		view.status = "Disconnected"
		view.mu.Unlock()
	})
	client.SetOnError(func(err error) {
		view.mu.Lock()
		view.status = err.Error()
		view.mu.Unlock()
	})
	client.SetOnMessage(func(msg *protocol.Message) {
		view.mu.Lock()
		defer view.mu.Unlock()
		switch msg.Type {
		case protocol.MessageTypeState:
			var state protocol.StateMessage
			if json.Unmarshal(msg.Data, &state) == nil {
				view.state = &state
			}
		case protocol.MessageTypeFeedback:
			var fb protocol.FeedbackMessage
			if json.Unmarshal(msg.Data, &fb) == nil {
				if line := formatRemoteFeedback(fb); line != "" {
					view.feed = append([]string{line}, view.feed...)
					if len(view.feed) > 8 {
						view.feed = view.feed[:8]
					}
				}
			}
		case protocol.MessageTypeGameOver:
			var over protocol.GameOverMessage
			if json.Unmarshal(msg.Data, &over) == nil {
				view.gameOver = &over
			}
		}
	})

	go client.Connect()
	defer client.Close()

	clock := tui.NewGameClock()
	held := game.ButtonSet{}
	releases := map[game.Button]time.Duration{}

	ui.SetRunning(true)
	style := tcell.StyleDefault

	for ui.IsRunning() {
		now := clock.Now()
		for b, at := range releases {
			if at <= now {
				delete(releases, b)
				held = held.Without(b)
				client.SendInput(held, now)
			}
		}

		state, feed, over, status := view.snapshot()
		ui.Clear()
		drawRemote(ui, state, feed, over, status, style)
		ui.Sync()

		ev := ui.PollEventWithTimeout(frameInterval)
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' || ev.Rune() == 'Q' {
				ui.SetRunning(false)
				continue
			}
			if over != nil {
				continue
			}
			if button, ok := keyButton(ev); ok {
				at := clock.Now()
				held = held.With(button)
				client.SendInput(held, at)
				releases[button] = at + tapDuration
			}

		case *tcell.EventResize:
			ui.UpdateSize()
		}
	}
}

// drawRemote renders the server's encoded board and stats.
func drawRemote(ui *tui.TUI, state *protocol.StateMessage, feed []string, over *protocol.GameOverMessage, status string, style tcell.Style) {
	ui.DrawText(2, 0, status, style.Dim(true))
	if state == nil {
		ui.DrawText(2, 2, "Waiting for server...", style)
		return
	}

	boardX, boardY := 2, 2
	ui.DrawBox(boardX, boardY, 22, len(state.Board)+2, "", style)
	active := map[[2]int]bool{}
	for _, c := range state.ActiveTiles {
		active[[2]int{c.X, c.Y}] = true
	}
	ghost := map[[2]int]bool{}
	for _, c := range state.GhostTiles {
		ghost[[2]int{c.X, c.Y}] = true
	}
	rows := len(state.Board)
	for i, row := range state.Board {
		y := rows - 1 - i // rows arrive topmost first
		for x := 0; x < len(row); x++ {
			screenX := boardX + 1 + x*2
			screenY := boardY + 1 + i
			switch {
			case active[[2]int{x, y}]:
				ui.FillRect(screenX, screenY, 2, 1, ' ', style.Reverse(true))
			case row[x] != ' ':
				ui.FillRect(screenX, screenY, 2, 1, '█', style)
			case ghost[[2]int{x, y}]:
				ui.FillRect(screenX, screenY, 2, 1, '░', style.Dim(true))
			default:
				ui.FillRect(screenX, screenY, 2, 1, '·', style.Dim(true))
			}
		}
	}

	infoX := boardX + 26
	ui.DrawText(infoX, boardY, "Score:", style.Bold(true))
	ui.DrawText(infoX+8, boardY, strconv.FormatUint(state.Score, 10), style)
	ui.DrawText(infoX, boardY+2, "Lines:", style.Bold(true))
	ui.DrawText(infoX+8, boardY+2, strconv.FormatUint(uint64(state.Lines), 10), style)
	for i, line := range feed {
		if i >= 6 {
			break
		}
		ui.DrawText(infoX, boardY+4+i, line, style.Dim(i > 1))
	}

	if over != nil {
		banner := "GAME OVER: " + over.Reason
		if over.Ok {
			banner = "FINISHED!"
		}
		ui.DrawText(boardX, boardY+rows+3, banner, style.Bold(true))
	}
}

func formatRemoteFeedback(fb protocol.FeedbackMessage) string {
	switch fb.Kind {
	case "accolade":
		s := "+" + strconv.FormatUint(fb.ScoreBonus, 10)
		if fb.Perfect {
			s += " Perfect"
		}
		if fb.Spin {
			s += " " + fb.Shape + "-Spin"
		}
		return s
	case "text":
		return fb.Text
	default:
		return ""
	}
}
