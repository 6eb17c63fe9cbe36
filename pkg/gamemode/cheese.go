package gamemode

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
)

// CheeseModID identifies the cheese modifier in descriptors.
const CheeseModID = "cheese"

// cheeseSeedLines is how many garbage lines are on the board at the start.
const cheeseSeedLines = 10

type cheeseArgs struct {
	LineLimit uint32 `json:"line_limit"`
	GapSize   int    `json:"gap_size"`
	Gravity   uint32 `json:"gravity"`
}

// BuildCheese configures a cheese game: the board holds garbage lines with
// random gaps, only cleared garbage counts toward the line limit, and every
// cleared garbage line is replaced from below until the limit is spent.
// A line limit of zero digs endlessly.
func BuildCheese(b *game.Builder, lineLimit uint32, gapSize int, gravity uint32) (*game.Game, error) {
	if gapSize < 1 || gapSize >= board.Width {
		return nil, fmt.Errorf("cheese: gap size %d out of range", gapSize)
	}
	args := cheeseArgs{LineLimit: lineLimit, GapSize: gapSize, Gravity: gravity}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	var conds []game.EndCondition
	if lineLimit > 0 {
		conds = []game.EndCondition{{Stat: game.LinesCleared(uint64(lineLimit)), Positive: true}}
	}
	return fixedGravity(b.Clone(), gravity).
		EndConditions(conds).
		BuildModded([]game.Modifier{{
			Descriptor: fmt.Sprintf("%s\n%s", CheeseModID, argsJSON),
			Func:       cheeseModFn(args),
		}})
}

// cheeseModFn seeds the board, tallies which cleared rows were cheese, and
// refills cheese from below.
func cheeseModFn(args cheeseArgs) game.ModFn {
	remaining := args.LineLimit
	endless := args.LineLimit == 0
	initialized := false
	cheeseTally := 0
	normalTally := uint32(0)

	return func(ctx *game.ModContext) {
		st := ctx.State
		if !initialized {
			initialized = true
			for i := 0; i < cheeseSeedLines; i++ {
				if line, ok := nextCheeseLine(st.Rng, args.GapSize, &remaining, endless); ok {
					st.Board.InsertBottom(line)
				}
			}
			return
		}

		switch ctx.Point {
		case game.PointPieceLocked:
			// Lines are still on the board here; sort them into
			// cheese and player-built rows.
			for y := 0; y < board.Height; y++ {
				if !st.Board[y].IsFull() {
					continue
				}
				if rowHasCheese(st.Board, y) {
					cheeseTally++
				} else {
					normalTally++
				}
			}

		case game.PointLinesCleared:
			// Only dug cheese counts toward the mode's line total.
			if st.LinesCleared >= normalTally {
				st.LinesCleared -= normalTally
			} else {
				st.LinesCleared = 0
			}
			for i := 0; i < cheeseTally; i++ {
				if line, ok := nextCheeseLine(st.Rng, args.GapSize, &remaining, endless); ok {
					st.Board.InsertBottom(line)
				}
			}
			cheeseTally = 0
			normalTally = 0
		}
	}
}

func rowHasCheese(b *board.Board, y int) bool {
	for x := 0; x < board.Width; x++ {
		if b[y][x] == board.GarbageTile {
			return true
		}
	}
	return false
}

// nextCheeseLine produces a garbage line with a random gap, counting down
// the remaining budget unless digging endlessly.
func nextCheeseLine(rng *rand.Rand, gapSize int, remaining *uint32, endless bool) (board.Line, bool) {
	if !endless {
		if *remaining == 0 {
			return board.Line{}, false
		}
		*remaining--
	}
	var line board.Line
	for x := range line {
		line[x] = board.GarbageTile
	}
	gapAt := rng.Intn(board.Width - gapSize + 1)
	for i := 0; i < gapSize; i++ {
		line[gapAt+i] = 0
	}
	return line, true
}
