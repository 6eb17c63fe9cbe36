package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

func fillRow(b *Board, y int) {
	for x := 0; x < Width; x++ {
		b[y][x] = GarbageTile
	}
}

func TestFits(t *testing.T) {
	b := New()
	p := piece.Piece{Shape: piece.O, X: 4, Y: 0}

	assert.True(t, b.Fits(p))
	assert.False(t, b.Fits(p.Moved(0, -1)), "below the floor")
	assert.False(t, b.Fits(piece.Piece{Shape: piece.I, X: 7, Y: 0}), "past the right wall")
	assert.False(t, b.Fits(piece.Piece{Shape: piece.I, X: -1, Y: 0}), "past the left wall")

	b.SetCell(4, 1, 3)
	assert.False(t, b.Fits(p), "overlapping an occupied cell")
}

func TestGhostDropsToFloor(t *testing.T) {
	b := New()
	p := piece.Piece{Shape: piece.T, X: 3, Y: 20}
	g := b.Ghost(p)
	assert.Equal(t, 0, g.Y)
	assert.Equal(t, p.X, g.X)
	assert.True(t, b.Grounded(g))
}

func TestGhostRestsOnStack(t *testing.T) {
	b := New()
	fillRow(b, 0)
	fillRow(b, 1)
	p := piece.Piece{Shape: piece.O, X: 0, Y: 25}
	g := b.Ghost(p)
	assert.Equal(t, 2, g.Y)
}

func TestGhostOfGroundedPieceIsItself(t *testing.T) {
	b := New()
	p := piece.Piece{Shape: piece.L, X: 2, Y: 0}
	assert.Equal(t, p, b.Ghost(p))
}

func TestCommitAndFullRows(t *testing.T) {
	b := New()
	// Fill rows 0 and 1 except the two leftmost columns.
	for y := 0; y < 2; y++ {
		for x := 2; x < Width; x++ {
			b[y][x] = GarbageTile
		}
	}
	p := piece.Piece{Shape: piece.O, X: 0, Y: 0}
	b.Commit(p)

	assert.Equal(t, piece.O.TileID(), b.Cell(0, 0))
	rows := b.FullRows([]int{0, 1, 1, 2, -5, 99})
	assert.Equal(t, []int{0, 1}, rows)
}

func TestClearRowsMassConservation(t *testing.T) {
	b := New()
	fillRow(b, 0)
	fillRow(b, 2)
	b.SetCell(0, 1, 1)
	b.SetCell(3, 3, 2)

	before := b.CellCount()
	cleared := b.ClearRows([]int{0, 2})
	require.Equal(t, 2, cleared)
	assert.Equal(t, before-2*Width, b.CellCount())

	// Rows above shifted down in order.
	assert.Equal(t, uint8(1), b.Cell(0, 0))
	assert.Equal(t, uint8(2), b.Cell(3, 1))
	assert.True(t, b[Height-1].IsEmpty())
	assert.True(t, b[Height-2].IsEmpty())
}

func TestInsertBottom(t *testing.T) {
	b := New()
	b.SetCell(5, 0, 7)
	var garbage Line
	for x := 0; x < Width; x++ {
		if x != 3 {
			garbage[x] = GarbageTile
		}
	}
	b.InsertBottom(garbage)

	assert.Equal(t, garbage, b[0])
	assert.Equal(t, uint8(7), b.Cell(5, 1))
}

func TestEncodeDecodeRows(t *testing.T) {
	b := New()
	b.SetCell(0, 0, 1)
	b.SetCell(9, 0, 2)
	b.SetCell(4, 1, 3)

	rows := b.EncodeRows()
	require.Len(t, rows, Height)
	assert.Equal(t, "#        #", rows[Height-1])
	assert.Equal(t, "    #     ", rows[Height-2])

	back, err := DecodeRows(rows)
	require.NoError(t, err)
	assert.Equal(t, b.CellCount(), back.CellCount())
	assert.NotZero(t, back.Cell(0, 0))
	assert.NotZero(t, back.Cell(4, 1))
}

func TestDecodeRowsPartial(t *testing.T) {
	// Two rows decode into the bottom of the board, first row on top.
	back, err := DecodeRows([]string{"##", " #"})
	require.NoError(t, err)
	assert.NotZero(t, back.Cell(0, 1))
	assert.NotZero(t, back.Cell(1, 1))
	assert.Zero(t, back.Cell(0, 0))
	assert.NotZero(t, back.Cell(1, 0))
}

func TestDecodeRowsErrors(t *testing.T) {
	_, err := DecodeRows(make([]string, Height+1))
	assert.Error(t, err)
	_, err = DecodeRows([]string{"###########"})
	assert.Error(t, err)
}
