package gamemode

import (
	"math/rand"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
)

// AscentModID identifies the ascent modifier in descriptors.
const AscentModID = "ascent"

// ascentScrollEvery is how many locked pieces push a fresh garbage line in
// at the bottom.
const ascentScrollEvery = 2

// BuildAscent configures an ascent game: gravity is frozen, the tower
// scrolls up from below, and the run ends when the stack reaches the
// spawn area.
func BuildAscent(b *game.Builder) (*game.Game, error) {
	return b.Clone().
		FallDelayEquation(game.DelayEquation{
			Initial: extmath.Infinite(),
			Factor:  extmath.MustNonNegF64(1),
		}).
		FallDelayLowerBound(extmath.Infinite()).
		LockDelayEquation(game.DelayEquation{
			Initial: extmath.Finite(0),
			Factor:  extmath.MustNonNegF64(1),
		}).
		LockDelayLowerBound(extmath.Finite(0)).
		EndConditions(nil).
		BuildModded([]game.Modifier{AscentModifier()})
}

// AscentModifier seeds a rough starting floor and scrolls garbage terrain
// in from below as pieces lock.
func AscentModifier() game.Modifier {
	initialized := false
	locksSeen := uint64(0)

	return game.Modifier{
		Descriptor: AscentModID,
		Func: func(ctx *game.ModContext) {
			st := ctx.State
			if !initialized {
				initialized = true
				for i := 0; i < 4; i++ {
					st.Board.InsertBottom(ascentLine(st.Rng))
				}
				return
			}

			if ctx.Point == game.PointPieceLocked {
				locksSeen++
				if locksSeen%ascentScrollEvery == 0 {
					st.Board.InsertBottom(ascentLine(st.Rng))
				}
			}
		},
	}
}

// ascentLine is a jagged terrain row with two to four open cells.
func ascentLine(rng *rand.Rand) board.Line {
	var line board.Line
	for x := range line {
		line[x] = board.GarbageTile
	}
	open := 2 + rng.Intn(3)
	at := rng.Intn(board.Width - open + 1)
	for i := 0; i < open; i++ {
		line[at+i] = 0
	}
	return line
}
