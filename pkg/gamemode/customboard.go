package gamemode

import (
	"encoding/json"
	"fmt"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
)

// CustomBoardModID identifies the custom start board modifier in
// descriptors.
const CustomBoardModID = "custom_start_board"

// CustomStartBoardModifier fills the board once, at game start, from
// encoded rows (topmost first, space = empty).
func CustomStartBoardModifier(rows []string) game.Modifier {
	argsJSON, _ := json.Marshal(rows)
	initialized := false

	return game.Modifier{
		Descriptor: fmt.Sprintf("%s\n%s", CustomBoardModID, argsJSON),
		Func: func(ctx *game.ModContext) {
			if initialized {
				return
			}
			initialized = true
			decoded, err := board.DecodeRows(rows)
			if err != nil {
				*ctx.Feedback = append(*ctx.Feedback, game.Message{
					Time: ctx.State.Time,
					Kind: game.MsgText,
					Text: fmt.Sprintf("(Bad start board: %v.)", err),
				})
				return
			}
			*ctx.State.Board = *decoded
		},
	}
}
