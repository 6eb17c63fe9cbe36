package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// MessageType represents the type of a wire message.
type MessageType string

const (
	// Client to server messages.
	MessageTypeInput MessageType = "input"
	MessageTypePong  MessageType = "pong"

	// Server to client messages.
	MessageTypeState    MessageType = "state"
	MessageTypeFeedback MessageType = "feedback"
	MessageTypeError    MessageType = "error"
	MessageTypePing     MessageType = "ping"
	MessageTypeGameOver MessageType = "game_over"
)

// Message is the envelope every wire message travels in.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// InputMessage carries a button transition from the client. Buttons is the
// packed bitfield, AtMicros the client's game time in microseconds.
type InputMessage struct {
	Buttons  uint16 `json:"buttons"`
	AtMicros int64  `json:"at_micros"`
}

// TileMessage is one occupied cell.
type TileMessage struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StateMessage is the game state snapshot sent to clients. The board is
// encoded row-major, topmost row first, one character per cell, space for
// empty.
type StateMessage struct {
	Board        []string      `json:"board"`
	ActiveTiles  []TileMessage `json:"active_tiles,omitempty"`
	GhostTiles   []TileMessage `json:"ghost_tiles,omitempty"`
	Preview      []string      `json:"preview"`
	Hold         string        `json:"hold,omitempty"`
	HoldUsed     bool          `json:"hold_used,omitempty"`
	Score        uint64        `json:"score"`
	Level        uint32        `json:"level"`
	Lines        uint32        `json:"lines"`
	Combo        uint32        `json:"combo"`
	BackToBack   uint32        `json:"back_to_back"`
	TimeMicros   int64         `json:"time_micros"`
	Result       string        `json:"result,omitempty"`
	ResultOk     bool          `json:"result_ok,omitempty"`
}

// FeedbackMessage relays one engine feedback message.
type FeedbackMessage struct {
	Kind       string `json:"kind"`
	TimeMicros int64  `json:"time_micros"`
	Text       string `json:"text,omitempty"`
	Shape      string `json:"shape,omitempty"`
	ScoreBonus uint64 `json:"score_bonus,omitempty"`
	Lines      int    `json:"lines,omitempty"`
	Spin       bool   `json:"spin,omitempty"`
	Perfect    bool   `json:"perfect,omitempty"`
	Combo      uint32 `json:"combo,omitempty"`
	BackToBack uint32 `json:"back_to_back,omitempty"`
	Rows       []int  `json:"rows,omitempty"`
}

// ErrorMessage reports a server-side error to the client.
type ErrorMessage struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// PingMessage carries the heartbeat timestamp.
type PingMessage struct {
	Timestamp int64 `json:"timestamp"`
}

// GameOverMessage announces the end of a game.
type GameOverMessage struct {
	Ok     bool   `json:"ok"`
	Reason string `json:"reason"`
	Score  uint64 `json:"score"`
	Lines  uint32 `json:"lines"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(t MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", t, err)
	}
	return &Message{Type: t, Data: data}, nil
}

// NewStateMessage builds a state envelope from a game snapshot.
func NewStateMessage(view game.StateView) (*Message, error) {
	state := StateMessage{
		Board:      visibleRows(view.Board),
		Score:      view.Score,
		Level:      view.Level,
		Lines:      view.LinesCleared,
		Combo:      view.Combo,
		BackToBack: view.BackToBack,
		TimeMicros: view.Time.Microseconds(),
	}
	for _, c := range view.ActiveTiles {
		state.ActiveTiles = append(state.ActiveTiles, TileMessage{X: c.X, Y: c.Y})
	}
	for _, c := range view.GhostTiles {
		state.GhostTiles = append(state.GhostTiles, TileMessage{X: c.X, Y: c.Y})
	}
	state.Preview = make([]string, 0, len(view.Preview))
	for _, shape := range view.Preview {
		state.Preview = append(state.Preview, shape.String())
	}
	if view.Hold != nil {
		state.Hold = view.Hold.Shape.String()
		state.HoldUsed = view.Hold.Used
	}
	if view.Result != nil {
		state.Result = view.Result.Reason.String()
		state.ResultOk = view.Result.Ok
	}
	return NewMessage(MessageTypeState, state)
}

// visibleRows encodes the visible part of the board, topmost skyline row
// first.
func visibleRows(b board.Board) []string {
	full := b.EncodeRows()
	return full[board.Height-board.Skyline:]
}

// NewFeedbackMessage builds a feedback envelope from an engine message.
func NewFeedbackMessage(msg game.Message) (*Message, error) {
	fb := FeedbackMessage{TimeMicros: msg.Time.Microseconds()}
	switch msg.Kind {
	case game.MsgAccolade:
		fb.Kind = "accolade"
		if a := msg.Accolade; a != nil {
			fb.Shape = a.Shape.String()
			fb.ScoreBonus = a.ScoreBonus
			fb.Lines = a.LinesCleared
			fb.Spin = a.Spin
			fb.Perfect = a.PerfectClear
			fb.Combo = a.Combo
			fb.BackToBack = a.BackToBack
		}
	case game.MsgPieceSpawned:
		fb.Kind = "piece_spawned"
		fb.Shape = msg.Shape.String()
	case game.MsgPieceLocked:
		fb.Kind = "piece_locked"
		fb.Shape = msg.Piece.Shape.String()
	case game.MsgLinesClearing:
		fb.Kind = "lines_clearing"
		fb.Rows = msg.Rows
	case game.MsgHardDrop:
		fb.Kind = "hard_drop"
	case game.MsgDebug:
		fb.Kind = "debug"
		fb.Text = msg.Text
	case game.MsgText:
		fb.Kind = "text"
		fb.Text = msg.Text
	}
	return NewMessage(MessageTypeFeedback, fb)
}

// NewErrorMessage builds an error envelope.
func NewErrorMessage(err string, code int) *Message {
	m, _ := NewMessage(MessageTypeError, ErrorMessage{Error: err, Code: code})
	return m
}

// NewGameOverMessage builds a game-over envelope.
func NewGameOverMessage(result game.EndResult, view game.StateView) (*Message, error) {
	return NewMessage(MessageTypeGameOver, GameOverMessage{
		Ok:     result.Ok,
		Reason: result.Reason.String(),
		Score:  view.Score,
		Lines:  view.LinesCleared,
	})
}

// ParseInput decodes an input payload and converts its timestamp.
func ParseInput(data json.RawMessage) (game.ButtonSet, time.Duration, error) {
	var in InputMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return game.ButtonSet{}, 0, fmt.Errorf("invalid input message: %w", err)
	}
	return game.UnpackButtons(in.Buttons), time.Duration(in.AtMicros) * time.Microsecond, nil
}

// Serialize converts a message to JSON bytes.
func (m *Message) Serialize() ([]byte, error) {
	return json.Marshal(m)
}

// Deserialize parses a message from JSON bytes.
func Deserialize(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message format: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("missing message type")
	}
	return &msg, nil
}

// ParseTetromino resolves a one-letter shape name from the wire.
func ParseTetromino(s string) (piece.Tetromino, error) {
	return piece.ParseTetromino(s)
}
