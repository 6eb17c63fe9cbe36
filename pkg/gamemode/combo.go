package gamemode

import (
	"encoding/json"
	"fmt"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// ComboModID identifies the combo-board modifier in descriptors.
const ComboModID = "combo_board"

// comboLayouts are starting fillings of the four-wide well, one nibble per
// row from the bottom, bits for columns 3..6.
var comboLayouts = []uint16{
	0b0000_0000_1100_1000, // "r"
	0b0000_0000_0000_1110, // "_"
	0b0000_1100_1000_1011, // "f _"
	0b0000_1100_1000_1101, // "k ."
	0b1000_1000_1000_1101, // "L ."
}

// ComboLayout returns the n-th built-in well layout.
func ComboLayout(n int) uint16 {
	return comboLayouts[n%len(comboLayouts)]
}

type comboArgs struct {
	ComboLimit  uint32 `json:"combo_limit"`
	StartLayout uint16 `json:"start_layout"`
}

// BuildCombo configures a combo game: a four-wide well walled by garbage;
// every lock must keep clearing lines or the game ends. A combo limit of
// zero plays endlessly.
func BuildCombo(b *game.Builder, comboLimit uint32, startLayout uint16) (*game.Game, error) {
	var conds []game.EndCondition
	if comboLimit > 0 {
		conds = []game.EndCondition{{Stat: game.LinesCleared(uint64(comboLimit)), Positive: true}}
	}
	return fixedGravity(b.Clone(), 1).
		EndConditions(conds).
		BuildModded([]game.Modifier{ComboBoardModifier(startLayout)})
}

// ComboBoardModifier seeds the four-wide well and ends the game as soon as
// a lock breaks the chain.
func ComboBoardModifier(startLayout uint16) game.Modifier {
	argsJSON, _ := json.Marshal(comboArgs{StartLayout: startLayout})
	initialized := false
	wellRow := 0

	return game.Modifier{
		Descriptor: fmt.Sprintf("%s\n%s", ComboModID, argsJSON),
		Func: func(ctx *game.ModContext) {
			st := ctx.State
			if !initialized {
				initialized = true
				for y := 0; y < board.Height; y++ {
					st.Board[y] = wellLine(y)
				}
				wellRow = board.Height
				seedComboLayout(st.Board, startLayout)
				return
			}

			if ctx.Point == game.PointAfterEvent && ctx.Event == game.EventLock {
				if _, pending := st.Events[game.EventLineClear]; !pending {
					ctx.End(game.EndResult{Ok: false, Reason: game.ReasonModeLimit})
				}
				return
			}

			if ctx.Point == game.PointLinesCleared {
				// The chain holds; feed the well a fresh line for every
				// row the clear emptied at the top.
				y := board.Height
				for y > 0 && st.Board[y-1].IsEmpty() {
					y--
				}
				for ; y < board.Height; y++ {
					st.Board[y] = wellLine(wellRow)
					wellRow++
				}
			}
		},
	}
}

// wellLine is a four-wide well row: colored walls outside, garbage shoulder
// columns, columns 3..6 open.
func wellLine(row int) board.Line {
	var line board.Line
	line[0] = piece.Tetrominoes[row%7].TileID()
	line[1] = piece.Tetrominoes[(row+1)%7].TileID()
	line[2] = board.GarbageTile
	line[7] = board.GarbageTile
	line[8] = piece.Tetrominoes[(row+1)%7].TileID()
	line[9] = piece.Tetrominoes[row%7].TileID()
	return line
}

// seedComboLayout fills columns 3..6 of the bottom rows from the layout's
// nibbles.
func seedComboLayout(b *board.Board, layout uint16) {
	y := 0
	for layout != 0 {
		if layout&0b1000 != 0 {
			b.SetCell(3, y, board.GarbageTile)
		}
		if layout&0b0100 != 0 {
			b.SetCell(4, y, board.GarbageTile)
		}
		if layout&0b0010 != 0 {
			b.SetCell(5, y, board.GarbageTile)
		}
		if layout&0b0001 != 0 {
			b.SetCell(6, y, board.GarbageTile)
		}
		layout >>= 4
		y++
	}
}
