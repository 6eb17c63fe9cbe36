package game

import (
	"math/rand"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// HoldPiece is the stashed shape and whether the hold was already used for
// the current piece.
type HoldPiece struct {
	Shape piece.Tetromino
	Used  bool
}

// State is the mutable per-game state. Modifiers receive it with full
// read/write access; the frontend only sees snapshots.
type State struct {
	// Time is the logical time elapsed since game start. It never
	// decreases.
	Time time.Duration
	// Buttons is the currently held button set.
	Buttons ButtonSet
	// Rng is the game-owned deterministic PRNG.
	Rng *rand.Rand
	// Source generates upcoming shapes.
	Source *piece.Source
	// Preview holds the upcoming shapes; its length equals the
	// configured preview count whenever the game is not ended.
	Preview []piece.Tetromino
	// Hold is the stashed piece, if any.
	Hold *HoldPiece
	// Board is the playfield.
	Board *board.Board
	// FallDelay is the currently effective fall delay.
	FallDelay extmath.ExtDuration
	// LockDelay is the currently effective lock delay.
	LockDelay extmath.ExtDuration
	// FallBottomedOutAt records, once, the line count at which the fall
	// delay reached its lower bound.
	FallBottomedOutAt *uint32
	// PiecesLocked counts locked pieces per shape.
	PiecesLocked [7]uint32
	// LinesCleared is the total number of cleared lines.
	LinesCleared uint32
	// ConsecutiveLineClears is the running combo counter.
	ConsecutiveLineClears uint32
	// BackToBack is the running chain of difficult clears.
	BackToBack uint32
	// Score is the accumulated score.
	Score uint64
	// Events is the scheduler's pending event map. Modifiers may cancel
	// or enqueue events by editing it.
	Events EventMap
}

// TotalPiecesLocked sums the per-shape lock counters.
func (s *State) TotalPiecesLocked() uint64 {
	var n uint64
	for _, c := range s.PiecesLocked {
		n += uint64(c)
	}
	return n
}

// Level is the gravity level derived from the cleared line count and the
// delay-update cadence. Level 1 is the start.
func (s *State) Level(cadence uint32) uint32 {
	if cadence == 0 {
		return 1
	}
	return s.LinesCleared/cadence + 1
}
