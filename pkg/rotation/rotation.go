package rotation

import (
	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// Kick is the offset a rotation system applied to make a rotation fit.
type Kick struct {
	DX int
	DY int
}

// IsTrivial reports whether the rotation needed no offset at all.
func (k Kick) IsTrivial() bool {
	return k.DX == 0 && k.DY == 0
}

// System turns a piece on a board by a delta of -1, +1 or +2 quarter turns.
// On success it returns the rotated piece, which fits the board, and the
// kick that was used. The candidate offsets tried per rotation are a data
// concern of the concrete system.
type System interface {
	// Name identifies the system for configuration and serialization.
	Name() string
	// Rotate attempts the rotation, trying the system's kicks in order.
	Rotate(b *board.Board, p piece.Piece, delta int) (piece.Piece, Kick, bool)
}

// ByName returns the rotation system with the given name.
func ByName(name string) (System, bool) {
	switch name {
	case "classic":
		return Classic{}, true
	case "super":
		return Super{}, true
	default:
		return nil, false
	}
}

// tryKicks attempts the rotated piece at each offset in order.
func tryKicks(b *board.Board, rotated piece.Piece, kicks []Kick) (piece.Piece, Kick, bool) {
	for _, k := range kicks {
		candidate := rotated.Moved(k.DX, k.DY)
		if b.Fits(candidate) {
			return candidate, k, true
		}
	}
	return piece.Piece{}, Kick{}, false
}

// Classic is a simple nintendo-style rotation system: rotation in place,
// then a short list of one-cell wall kicks, with the I piece allowed
// two-cell kicks.
type Classic struct{}

// Name implements System.
func (Classic) Name() string { return "classic" }

var classicKicks = []Kick{
	{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {-1, -1}, {1, -1},
}

var classicKicksI = []Kick{
	{0, 0}, {-1, 0}, {1, 0}, {-2, 0}, {2, 0}, {0, -1}, {0, 1}, {0, 2}, {0, -2},
}

// Rotate implements System.
func (Classic) Rotate(b *board.Board, p piece.Piece, delta int) (piece.Piece, Kick, bool) {
	rotated := p.Rotated(delta)
	kicks := classicKicks
	if p.Shape == piece.I {
		kicks = classicKicksI
	}
	return tryKicks(b, rotated, kicks)
}

// Super is a guideline-style rotation system with per-transition kick
// tables for the J, L, S, T and Z pieces and a separate table for I.
// Half turns try an in-place rotation, then one-cell kicks down, up, left
// and right.
type Super struct{}

// Name implements System.
func (Super) Name() string { return "super" }

// superKicks holds quarter-turn kick candidates keyed by the starting
// orientation and turn direction (+1 clockwise, -1 counterclockwise).
// Offsets use y growing upward.
var superKicks = map[piece.Orientation]map[int][]Kick{
	piece.North: {
		1:  {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		-1: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
	},
	piece.East: {
		1:  {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		-1: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
	},
	piece.South: {
		1:  {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
		-1: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
	},
	piece.West: {
		1:  {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		-1: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	},
}

var superKicksI = map[piece.Orientation]map[int][]Kick{
	piece.North: {
		1:  {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		-1: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
	},
	piece.East: {
		1:  {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		-1: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
	},
	piece.South: {
		1:  {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		-1: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
	},
	piece.West: {
		1:  {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		-1: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
	},
}

var superKicksHalf = []Kick{
	{0, 0}, {0, -1}, {0, 1}, {-1, 0}, {1, 0},
}

// Rotate implements System.
func (Super) Rotate(b *board.Board, p piece.Piece, delta int) (piece.Piece, Kick, bool) {
	rotated := p.Rotated(delta)
	var kicks []Kick
	switch {
	case delta == 2:
		kicks = superKicksHalf
	case p.Shape == piece.I:
		kicks = superKicksI[p.Orientation][delta]
	default:
		kicks = superKicks[p.Orientation][delta]
	}
	return tryKicks(b, rotated, kicks)
}
