package gamemode

import (
	"fmt"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// PuzzleModID identifies the puzzle modifier in descriptors.
const PuzzleModID = "puzzle"

// PuzzleStage is one scripted setup: a partial board (topmost row first)
// and the exact pieces available to clear it.
type PuzzleStage struct {
	Name   string
	Rows   []string
	Pieces []piece.Tetromino
}

// puzzleStages are the built-in stages, each solvable by clearing every
// garbage row with the given pieces.
var puzzleStages = []PuzzleStage{
	{
		Name:   "I-spot",
		Rows:   []string{"###### ###"},
		Pieces: []piece.Tetromino{piece.I},
	},
	{
		Name: "O-corner",
		Rows: []string{
			"########  ",
			"########  ",
		},
		Pieces: []piece.Tetromino{piece.O},
	},
	{
		Name: "S/Z-weave",
		Rows: []string{
			"#####  ###",
			"####  ####",
		},
		Pieces: []piece.Tetromino{piece.S, piece.Z},
	},
	{
		Name: "L-hook",
		Rows: []string{
			"######## #",
			"######   #",
		},
		Pieces: []piece.Tetromino{piece.L, piece.J},
	},
}

// BuildPuzzle configures a puzzle game running the built-in stages in
// order. Gravity is frozen so the player positions every piece.
func BuildPuzzle(b *game.Builder) (*game.Game, error) {
	return b.Clone().
		FallDelayEquation(game.DelayEquation{
			Initial: extmath.Infinite(),
			Factor:  extmath.MustNonNegF64(1),
		}).
		FallDelayLowerBound(extmath.Infinite()).
		PiecePreviewCount(1).
		EndConditions(nil).
		BuildModded([]game.Modifier{PuzzleModifier(puzzleStages)})
}

// PuzzleModifier drives a sequence of scripted stages: it rewrites the
// board and piece source per stage, fails the run when a stage's pieces
// are spent with garbage left, and completes it after the final stage.
func PuzzleModifier(stages []PuzzleStage) game.Modifier {
	stage := -1
	piecesLeft := 0

	loadStage := func(ctx *game.ModContext) {
		st := ctx.State
		s := stages[stage]
		decoded, err := board.DecodeRows(s.Rows)
		if err != nil {
			decoded = board.New()
		}
		*st.Board = *decoded
		if src, err := piece.NewCycleSource(s.Pieces); err == nil {
			*st.Source = *src
		}
		st.Preview = nil
		piecesLeft = len(s.Pieces)
		*ctx.Feedback = append(*ctx.Feedback, game.Message{
			Time: st.Time,
			Kind: game.MsgText,
			Text: fmt.Sprintf("(Stage %d: %s.)", stage+1, s.Name),
		})
	}

	return game.Modifier{
		Descriptor: PuzzleModID,
		Func: func(ctx *game.ModContext) {
			st := ctx.State
			if stage < 0 {
				stage = 0
				loadStage(ctx)
				return
			}

			switch ctx.Point {
			case game.PointPieceSpawned:
				piecesLeft--

			case game.PointAfterEvent:
				if ctx.Event != game.EventLock && ctx.Event != game.EventLineClear {
					return
				}
				if boardSolved(st.Board) {
					if stage == len(stages)-1 {
						stat := game.TimeElapsed(st.Time)
						ctx.End(game.EndResult{Ok: true, Reason: game.ReasonStatReached, Stat: &stat})
						return
					}
					stage++
					loadStage(ctx)
					return
				}
				// Out of pieces with garbage left: puzzle failed.
				if piecesLeft == 0 && ctx.Event == game.EventLock {
					if _, pending := st.Events[game.EventLineClear]; !pending {
						ctx.End(game.EndResult{Ok: false, Reason: game.ReasonModeLimit})
					}
				}
			}
		},
	}
}

// boardSolved reports whether no garbage remains on the board.
func boardSolved(b *board.Board) bool {
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			if b[y][x] == board.GarbageTile {
				return false
			}
		}
	}
	return true
}
