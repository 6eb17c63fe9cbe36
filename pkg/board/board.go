package board

import (
	"fmt"
	"strings"

	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

const (
	// Width is the number of columns of the playfield.
	Width = 10
	// Height is the total number of rows, including the hidden buffer
	// above the skyline where pieces spawn.
	Height = 40
	// Skyline is the number of visible rows. Rows at or above it exist to
	// contain freshly spawned pieces and to detect top-out.
	Skyline = 20
)

// GarbageTile is the tile-type identifier used for mode-generated garbage
// lines. It is outside the 1..7 range of the tetromino tiles.
const GarbageTile uint8 = 254

// Line is one row of the board. A zero cell is empty; any other value is the
// tile-type identifier of the mino occupying it.
type Line [Width]uint8

// IsFull reports whether every cell of the line is occupied.
func (l Line) IsFull() bool {
	for _, cell := range l {
		if cell == 0 {
			return false
		}
	}
	return true
}

// IsEmpty reports whether every cell of the line is empty.
func (l Line) IsEmpty() bool {
	for _, cell := range l {
		if cell != 0 {
			return false
		}
	}
	return true
}

// Board is the playfield grid. Row 0 is the bottom row.
type Board [Height]Line

// New creates a new empty board.
func New() *Board {
	return &Board{}
}

// Cell returns the tile at (x, y), or 0 if the position is out of bounds.
func (b *Board) Cell(x, y int) uint8 {
	if !inBounds(x, y) {
		return 0
	}
	return b[y][x]
}

// SetCell sets the tile at (x, y). Out-of-bounds positions are ignored.
func (b *Board) SetCell(x, y int, tile uint8) {
	if inBounds(x, y) {
		b[y][x] = tile
	}
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// Fits reports whether the piece's four cells are all in-bounds and empty.
func (b *Board) Fits(p piece.Piece) bool {
	for _, c := range p.Tiles() {
		if !inBounds(c.X, c.Y) || b[c.Y][c.X] != 0 {
			return false
		}
	}
	return true
}

// Ghost drops the piece until one more downward step would not fit and
// returns the resulting piece.
func (b *Board) Ghost(p piece.Piece) piece.Piece {
	for b.Fits(p.Moved(0, -1)) {
		p = p.Moved(0, -1)
	}
	return p
}

// Grounded reports whether the piece cannot move one more row down.
func (b *Board) Grounded(p piece.Piece) bool {
	return !b.Fits(p.Moved(0, -1))
}

// Commit writes the piece's tiles onto the board.
func (b *Board) Commit(p piece.Piece) {
	tile := p.Shape.TileID()
	for _, c := range p.Tiles() {
		b.SetCell(c.X, c.Y, tile)
	}
}

// FullRows returns the indices of completely filled rows among the given
// candidates, deduplicated and sorted ascending.
func (b *Board) FullRows(candidates []int) []int {
	seen := map[int]bool{}
	var rows []int
	for _, y := range candidates {
		if y < 0 || y >= Height || seen[y] {
			continue
		}
		seen[y] = true
		if b[y].IsFull() {
			rows = append(rows, y)
		}
	}
	sortInts(rows)
	return rows
}

// ClearRows removes the given rows, shifting everything above downward and
// filling vacated top rows with empty lines. It returns the number of rows
// removed.
func (b *Board) ClearRows(rows []int) int {
	remove := map[int]bool{}
	for _, y := range rows {
		if y >= 0 && y < Height {
			remove[y] = true
		}
	}
	if len(remove) == 0 {
		return 0
	}
	dst := 0
	for src := 0; src < Height; src++ {
		if remove[src] {
			continue
		}
		b[dst] = b[src]
		dst++
	}
	for ; dst < Height; dst++ {
		b[dst] = Line{}
	}
	return len(remove)
}

// InsertBottom pushes a line in at the bottom of the board, shifting all
// rows up by one. The topmost row is discarded.
func (b *Board) InsertBottom(l Line) {
	for y := Height - 1; y > 0; y-- {
		b[y] = b[y-1]
	}
	b[0] = l
}

// CellCount returns the number of occupied cells.
func (b *Board) CellCount() int {
	n := 0
	for _, line := range b {
		for _, cell := range line {
			if cell != 0 {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether no cell is occupied.
func (b *Board) IsEmpty() bool {
	return b.CellCount() == 0
}

// Clone creates a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// EncodeRows serializes the board row-major, topmost row first, one
// character per cell: space for empty, '#' for filled.
func (b *Board) EncodeRows() []string {
	rows := make([]string, Height)
	for y := 0; y < Height; y++ {
		var sb strings.Builder
		for x := 0; x < Width; x++ {
			if b[Height-1-y][x] == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte('#')
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// DecodeRows fills a board from encoded rows as produced by EncodeRows: the
// first row is the topmost, a space is an empty cell and any other character
// a garbage tile. Shorter inputs fill only the bottom rows.
func DecodeRows(rows []string) (*Board, error) {
	if len(rows) > Height {
		return nil, fmt.Errorf("board: %d rows exceed height %d", len(rows), Height)
	}
	b := New()
	for i, row := range rows {
		if len(row) > Width {
			return nil, fmt.Errorf("board: row %d is %d cells wide, max %d", i, len(row), Width)
		}
		y := len(rows) - 1 - i
		for x := 0; x < len(row); x++ {
			if row[x] != ' ' {
				b[y][x] = GarbageTile
			}
		}
	}
	return b, nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
