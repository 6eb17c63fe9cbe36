package game

import (
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
	"github.com/Strophox/tetro-tui-sub001/pkg/rotation"
)

// PhaseKind discriminates the state machine's phases.
type PhaseKind int

const (
	// PhaseSpawning waits to introduce a new active piece.
	PhaseSpawning PhaseKind = iota
	// PhasePieceInPlay has a piece falling or locking.
	PhasePieceInPlay
	// PhaseLinesClearing suspends filled lines before their removal.
	PhaseLinesClearing
	// PhaseGameEnded is terminal.
	PhaseGameEnded
)

// String returns the name of the phase kind.
func (k PhaseKind) String() string {
	names := map[PhaseKind]string{
		PhaseSpawning:      "spawning",
		PhasePieceInPlay:   "piece_in_play",
		PhaseLinesClearing: "lines_clearing",
		PhaseGameEnded:     "game_ended",
	}
	return names[k]
}

// PieceData tracks the active piece while it is in play.
type PieceData struct {
	// Piece is the active piece. While in play it always fits the board.
	Piece piece.Piece
	// FallOrLockDeadline is the next scheduled falling or locking time.
	FallOrLockDeadline time.Duration
	// IsFallNotLock tells which of the two the deadline represents.
	IsFallNotLock bool
	// LowestYReached resets the ground cap when the piece descends to a
	// new low.
	LowestYReached int
	// GroundedOnce is set the first time the piece touches the ground
	// since its last new low.
	GroundedOnce bool
	// CappedLockDeadline is the hard upper bound on total grounded time.
	CappedLockDeadline time.Duration
	// AutoShiftEngaged distinguishes the initial DAS wait from running
	// auto-repeat.
	AutoShiftEngaged bool
	// LastRotationKick holds the kick of the piece's last successful
	// action if that action was a rotation, nil otherwise. Spin
	// detection consults it at lock time.
	LastRotationKick *rotation.Kick
}

// Phase is the discriminated state of the phase machine. Only the fields of
// the active Kind are meaningful.
type Phase struct {
	Kind PhaseKind

	// SpawnDueAt is when the next piece spawns (PhaseSpawning).
	SpawnDueAt time.Duration
	// Piece is the active piece data (PhasePieceInPlay).
	Piece *PieceData
	// ClearingRows are the suspended row indices (PhaseLinesClearing).
	ClearingRows []int
	// ClearDueAt is when the suspended rows are removed.
	ClearDueAt time.Duration
	// Result is the terminal outcome (PhaseGameEnded).
	Result *EndResult
}
