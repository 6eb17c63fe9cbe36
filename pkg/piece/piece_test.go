package piece

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileIDsDistinct(t *testing.T) {
	seen := map[uint8]bool{}
	for _, tet := range Tetrominoes {
		id := tet.TileID()
		assert.GreaterOrEqual(t, id, uint8(1))
		assert.LessOrEqual(t, id, uint8(7))
		assert.False(t, seen[id], "tile id %d duplicated", id)
		seen[id] = true

		back, ok := FromTileID(id)
		require.True(t, ok)
		assert.Equal(t, tet, back)
	}

	_, ok := FromTileID(0)
	assert.False(t, ok)
	_, ok = FromTileID(8)
	assert.False(t, ok)
}

func TestOrientationRotatedRight(t *testing.T) {
	tests := []struct {
		name  string
		start Orientation
		turns int
		want  Orientation
	}{
		{"identity", North, 0, North},
		{"quarter", North, 1, East},
		{"half", North, 2, South},
		{"full cycle", East, 4, East},
		{"counterclockwise", North, -1, West},
		{"large negative", South, -6, North},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.RotatedRight(tt.turns))
		})
	}
}

func TestTilesFourDistinctCells(t *testing.T) {
	for _, tet := range Tetrominoes {
		for _, o := range []Orientation{North, East, South, West} {
			p := Piece{Shape: tet, Orientation: o, X: 3, Y: 5}
			tiles := p.Tiles()
			seen := map[Coord]bool{}
			for _, c := range tiles {
				assert.False(t, seen[c], "%v %v: duplicate tile %v", tet, o, c)
				seen[c] = true
				assert.GreaterOrEqual(t, c.X, 3)
				assert.GreaterOrEqual(t, c.Y, 5)
			}
		}
	}
}

func TestTilesAnchorIsLowerLeft(t *testing.T) {
	// Some cell sits in the anchor column and some cell in the anchor row.
	for _, tet := range Tetrominoes {
		for _, o := range []Orientation{North, East, South, West} {
			p := Piece{Shape: tet, Orientation: o}
			minX, minY := 99, 99
			for _, c := range p.Tiles() {
				if c.X < minX {
					minX = c.X
				}
				if c.Y < minY {
					minY = c.Y
				}
			}
			assert.Equal(t, 0, minX, "%v %v", tet, o)
			assert.Equal(t, 0, minY, "%v %v", tet, o)
		}
	}
}

func TestMovedAndRotated(t *testing.T) {
	p := Piece{Shape: T, Orientation: North, X: 2, Y: 3}
	q := p.Moved(1, -1)
	assert.Equal(t, Piece{Shape: T, Orientation: North, X: 3, Y: 2}, q)
	r := p.Rotated(1)
	assert.Equal(t, East, r.Orientation)
	assert.Equal(t, p.X, r.X)
}

func TestParseTetromino(t *testing.T) {
	for _, tet := range Tetrominoes {
		got, err := ParseTetromino(tet.String())
		require.NoError(t, err)
		assert.Equal(t, tet, got)
	}
	_, err := ParseTetromino("X")
	assert.Error(t, err)
}
