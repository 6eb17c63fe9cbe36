package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

func TestInputMessageRoundTrip(t *testing.T) {
	buttons := game.ButtonSet{}.With(game.ButtonMoveLeft, game.ButtonDropHard)
	msg, err := NewMessage(MessageTypeInput, InputMessage{
		Buttons:  buttons.Packed(),
		AtMicros: (42 * time.Millisecond).Microseconds(),
	})
	require.NoError(t, err)

	data, err := msg.Serialize()
	require.NoError(t, err)

	parsed, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, MessageTypeInput, parsed.Type)

	gotButtons, gotAt, err := ParseInput(parsed.Data)
	require.NoError(t, err)
	assert.Equal(t, buttons, gotButtons)
	assert.Equal(t, 42*time.Millisecond, gotAt)
}

func TestDeserializeRejectsBadInput(t *testing.T) {
	_, err := Deserialize([]byte("not json"))
	assert.Error(t, err)
	_, err = Deserialize([]byte(`{"data":{}}`))
	assert.Error(t, err, "missing type must be rejected")
}

func TestStateMessageEncodesVisibleBoard(t *testing.T) {
	var b board.Board
	b[0][0] = piece.I.TileID()

	view := game.StateView{
		Board:   b,
		Preview: []piece.Tetromino{piece.T, piece.O},
		Score:   1234,
	}
	msg, err := NewStateMessage(view)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeState, msg.Type)

	data, err := msg.Serialize()
	require.NoError(t, err)
	parsed, err := Deserialize(data)
	require.NoError(t, err)

	var state StateMessage
	require.NoError(t, json.Unmarshal(parsed.Data, &state))
	require.Len(t, state.Board, board.Skyline, "only visible rows travel")
	assert.Equal(t, "#         ", state.Board[board.Skyline-1], "bottom row is last")
	assert.Equal(t, []string{"T", "O"}, state.Preview)
	assert.Equal(t, uint64(1234), state.Score)
}

func TestFeedbackMessageKinds(t *testing.T) {
	msgs := []game.Message{
		{Kind: game.MsgAccolade, Accolade: &game.Accolade{ScoreBonus: 100, Shape: piece.T, LinesCleared: 1, Combo: 1, BackToBack: 0}},
		{Kind: game.MsgPieceSpawned, Shape: piece.L},
		{Kind: game.MsgLinesClearing, Rows: []int{0, 1}},
		{Kind: game.MsgText, Text: "hello"},
	}
	wantKinds := []string{"accolade", "piece_spawned", "lines_clearing", "text"}
	for i, m := range msgs {
		wire, err := NewFeedbackMessage(m)
		require.NoError(t, err)
		var fb FeedbackMessage
		require.NoError(t, json.Unmarshal(wire.Data, &fb))
		assert.Equal(t, wantKinds[i], fb.Kind)
	}
}
