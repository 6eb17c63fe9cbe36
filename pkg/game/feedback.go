package game

import (
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// Verbosity controls how much feedback a game emits.
type Verbosity int

const (
	// VerbositySilent suppresses all feedback messages.
	VerbositySilent Verbosity = iota
	// VerbosityNormal emits gameplay feedback but no debug messages.
	VerbosityNormal
	// VerbosityDebug additionally emits a debug message per dispatched
	// event.
	VerbosityDebug
)

// MessageKind discriminates the feedback message variants.
type MessageKind int

const (
	MsgAccolade MessageKind = iota
	MsgPieceSpawned
	MsgPieceLocked
	MsgLinesClearing
	MsgHardDrop
	MsgDebug
	MsgText
)

// Accolade describes the reward for a line-clearing lock.
type Accolade struct {
	ScoreBonus   uint64          `json:"score_bonus"`
	Shape        piece.Tetromino `json:"shape"`
	Spin         bool            `json:"spin"`
	LinesCleared int             `json:"lines_cleared"`
	PerfectClear bool            `json:"perfect_clear"`
	Combo        uint32          `json:"combo"`
	BackToBack   uint32          `json:"back_to_back"`
}

// Message is one feedback event emitted by the engine, stamped with the
// logical time it occurred at. Only the fields of the active Kind are
// meaningful.
type Message struct {
	Time time.Duration `json:"time"`
	Kind MessageKind   `json:"kind"`

	Accolade *Accolade       `json:"accolade,omitempty"`
	Shape    piece.Tetromino `json:"shape,omitempty"`
	Piece    piece.Piece     `json:"piece,omitempty"`
	Rows     []int           `json:"rows,omitempty"`
	FromY    int             `json:"from_y,omitempty"`
	ToY      int             `json:"to_y,omitempty"`
	Text     string          `json:"text,omitempty"`
}
