package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
	"github.com/Strophox/tetro-tui-sub001/pkg/tui"
)

func main() {
	fmt.Println("=== Tetro Engine Demo ===")
	fmt.Println()

	src, err := piece.NewCycleSource([]piece.Tetromino{piece.I, piece.O, piece.T, piece.L, piece.J, piece.S, piece.Z})
	if err != nil {
		panic(err)
	}
	g, err := game.NewBuilder().
		Seed(1).
		Source(src).
		SpawnDelay(0).
		LineClearDuration(50 * time.Millisecond).
		Build()
	if err != nil {
		panic(err)
	}

	fmt.Printf("Game initialized, seed %d\n", g.Seed())
	fmt.Printf("Phase: %v\n", g.Phase().Kind)
	fmt.Println()

	// Scripted inputs: walk the first piece right, rotate it, drop it,
	// then stack a few more pieces.
	type step struct {
		at      time.Duration
		buttons *game.ButtonSet
	}
	press := func(buttons ...game.Button) *game.ButtonSet {
		s := game.ButtonSet{}.With(buttons...)
		return &s
	}
	script := []step{
		{10 * time.Millisecond, press(game.ButtonMoveRight)},
		{40 * time.Millisecond, press()},
		{60 * time.Millisecond, press(game.ButtonRotateRight)},
		{90 * time.Millisecond, press()},
		{100 * time.Millisecond, press(game.ButtonDropHard)},
		{110 * time.Millisecond, press()},
		{200 * time.Millisecond, press(game.ButtonDropHard)},
		{210 * time.Millisecond, press()},
		{300 * time.Millisecond, press(game.ButtonHoldPiece)},
		{310 * time.Millisecond, press()},
		{400 * time.Millisecond, press(game.ButtonDropHard)},
		{410 * time.Millisecond, press()},
		{500 * time.Millisecond, nil},
	}

	for _, s := range script {
		msgs, err := g.Update(s.buttons, s.at)
		if err != nil {
			panic(err)
		}
		for _, m := range msgs {
			if line := tui.FormatFeedback(m); line != "" {
				fmt.Printf("  [%6s] %s\n", m.Time.Round(time.Millisecond), line)
			}
		}
	}

	view := g.State()
	fmt.Println()
	fmt.Printf("Time:   %v\n", view.Time.Round(time.Millisecond))
	fmt.Printf("Score:  %d\n", view.Score)
	fmt.Printf("Lines:  %d\n", view.LinesCleared)
	fmt.Printf("Locked: %d pieces\n", totalLocked(view))
	fmt.Println()

	fmt.Println("Bottom of the board:")
	rows := view.Board.EncodeRows()
	for _, row := range rows[board.Height-6:] {
		fmt.Printf("  |%s|\n", strings.ReplaceAll(row, "#", "█"))
	}

	fmt.Println()
	fmt.Println("Demo completed!")
}

func totalLocked(view game.StateView) int {
	n := 0
	for _, c := range view.PiecesLocked {
		n += int(c)
	}
	return n
}
