package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/gamemode"
	"github.com/Strophox/tetro-tui-sub001/pkg/replay"
	"github.com/Strophox/tetro-tui-sub001/pkg/tui"
)

// tapDuration is how long a key press counts as held. Terminals deliver no
// key-release events, so buttons are tapped: pressed at the key event and
// released shortly after.
const tapDuration = 40 * time.Millisecond

const frameInterval = 33 * time.Millisecond

var (
	modeName   = flag.String("mode", "Marathon", "game mode preset")
	seed       = flag.Uint64("seed", 0, "PRNG seed (0 picks a random one)")
	rotSystem  = flag.String("rotation", "super", "rotation system: classic or super")
	replayPath = flag.String("replay", "", "start the game recorded in this file (its recorded inputs are not fed)")
	recordPath = flag.String("record", "", "save the played game to this file")
	serverURL  = flag.String("server", "", "play on a remote server at this websocket URL")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		g        *game.Game
		recorder *replay.Recorder
		err      error
	)
	if *serverURL == "" {
		g, recorder, err = setupGame()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up game")
		}
	}

	ui, err := tui.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create TUI")
	}
	defer ui.Close()

	if !ui.CheckMinimumSize() {
		ui.Close()
		fmt.Fprintln(os.Stderr, "terminal too small (need at least 64x26)")
		return
	}

	if *serverURL != "" {
		runRemote(ui, *serverURL)
		return
	}
	runGame(ui, g, recorder)

	if recorder != nil && *recordPath != "" {
		data, err := recorder.Recording().Marshal()
		if err != nil {
			log.Error().Err(err).Msg("failed to encode recording")
			return
		}
		if err := os.WriteFile(*recordPath, data, 0o644); err != nil {
			log.Error().Err(err).Msg("failed to save recording")
			return
		}
		log.Info().Str("path", *recordPath).Msg("recording saved")
	}
}

// setupGame builds the game from the flags: either the starting game of a
// recording (its configuration, initial values and modifiers; the recorded
// inputs are not fed and play continues from the keyboard, unrecorded) or a
// fresh preset game wrapped in a recorder.
func setupGame() (*game.Game, *replay.Recorder, error) {
	if *replayPath != "" {
		data, err := os.ReadFile(*replayPath)
		if err != nil {
			return nil, nil, err
		}
		recording, err := replay.Unmarshal(data)
		if err != nil {
			return nil, nil, err
		}
		g, err := recording.Rebuild()
		if err != nil {
			return nil, nil, err
		}
		return g, nil, nil
	}

	preset, ok := gamemode.ByName(*modeName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown mode %q", *modeName)
	}
	builder := game.NewBuilder().RotationSystem(*rotSystem)
	if *seed != 0 {
		builder.Seed(*seed)
	}
	g, err := preset.Build(builder)
	if err != nil {
		return nil, nil, err
	}
	return g, replay.NewRecorder(g), nil
}

// keyButton maps a key event to a game button.
func keyButton(ev *tcell.EventKey) (game.Button, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return game.ButtonMoveLeft, true
	case tcell.KeyRight:
		return game.ButtonMoveRight, true
	case tcell.KeyDown:
		return game.ButtonDropSoft, true
	case tcell.KeyUp:
		return game.ButtonRotateRight, true
	}
	switch ev.Rune() {
	case ' ':
		return game.ButtonDropHard, true
	case 'z', 'Z':
		return game.ButtonRotateLeft, true
	case 'x', 'X':
		return game.ButtonRotateRight, true
	case 'a', 'A':
		return game.ButtonRotateAround, true
	case 's', 'S':
		return game.ButtonDropSonic, true
	case 'c', 'C':
		return game.ButtonHoldPiece, true
	}
	return 0, false
}

// runGame drives the engine from the terminal until the game ends or the
// player quits.
func runGame(ui *tui.TUI, g *game.Game, recorder *replay.Recorder) {
	clock := tui.NewGameClock()
	held := game.ButtonSet{}
	releases := map[game.Button]time.Duration{}
	var feed []string

	pushUpdate := func(buttons *game.ButtonSet, at time.Duration) {
		if recorder != nil && buttons != nil {
			recorder.Note(at, buttons)
		}
		msgs, err := g.Update(buttons, at)
		if err != nil {
			return
		}
		for _, m := range msgs {
			if s := tui.FormatFeedback(m); s != "" {
				feed = append([]string{s}, feed...)
			}
		}
		if len(feed) > 8 {
			feed = feed[:8]
		}
	}

	ui.SetRunning(true)
	style := tcell.StyleDefault

	for ui.IsRunning() {
		now := clock.Now()

		// Release expired taps in deterministic button order.
		var due []game.Button
		for b, at := range releases {
			if at <= now {
				due = append(due, b)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
		for _, b := range due {
			delete(releases, b)
			held = held.Without(b)
			next := held
			pushUpdate(&next, now)
		}

		if !clock.IsPaused() && !g.Ended() {
			pushUpdate(nil, now)
		}

		ui.Clear()
		view := g.State()
		if g.Ended() {
			ui.DrawGameOver(view, style)
		} else {
			ui.DrawGame(view, feed, style)
			if clock.IsPaused() {
				ui.DrawText(4, 1, "[PAUSED]", style.Bold(true))
			}
		}
		ui.Sync()

		ev := ui.PollEventWithTimeout(frameInterval)
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' || ev.Rune() == 'Q' {
				if !g.Ended() {
					g.Forfeit()
				} else {
					ui.SetRunning(false)
				}
				continue
			}
			if ev.Rune() == 'p' || ev.Rune() == 'P' {
				clock.Toggle()
				continue
			}
			if clock.IsPaused() || g.Ended() {
				continue
			}
			if button, ok := keyButton(ev); ok {
				at := clock.Now()
				held = held.With(button)
				next := held
				pushUpdate(&next, at)
				releases[button] = at + tapDuration
			}

		case *tcell.EventResize:
			ui.UpdateSize()
		}
	}
}
