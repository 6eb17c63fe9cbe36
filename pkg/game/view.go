package game

import (
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// StateView is a read-only snapshot of the game state for frontends.
type StateView struct {
	Time         time.Duration
	Board        board.Board
	ActivePiece  *piece.Piece
	ActiveTiles  []piece.Coord
	GhostTiles   []piece.Coord
	Preview      []piece.Tetromino
	Hold         *HoldPiece
	Score        uint64
	Level        uint32
	LinesCleared uint32
	Combo        uint32
	BackToBack   uint32
	PiecesLocked [7]uint32
	FallDelay    extmath.ExtDuration
	LockDelay    extmath.ExtDuration
	Result       *EndResult
}

// State returns a consistent snapshot of the current game state.
func (g *Game) State() StateView {
	view := StateView{
		Time:         g.state.Time,
		Board:        *g.state.Board,
		Preview:      append([]piece.Tetromino(nil), g.state.Preview...),
		Score:        g.state.Score,
		Level:        g.state.Level(g.config.UpdateDelaysEveryNLineClears),
		LinesCleared: g.state.LinesCleared,
		Combo:        g.state.ConsecutiveLineClears,
		BackToBack:   g.state.BackToBack,
		PiecesLocked: g.state.PiecesLocked,
		FallDelay:    g.state.FallDelay,
		LockDelay:    g.state.LockDelay,
	}
	if g.state.Hold != nil {
		h := *g.state.Hold
		view.Hold = &h
	}
	if pd := g.phase.Piece; pd != nil {
		p := pd.Piece
		view.ActivePiece = &p
		tiles := p.Tiles()
		view.ActiveTiles = tiles[:]
		ghost := g.state.Board.Ghost(p).Tiles()
		view.GhostTiles = ghost[:]
	}
	if g.phase.Result != nil {
		r := *g.phase.Result
		view.Result = &r
	}
	return view
}

// PhaseView is a read-only copy of the phase machine's state.
type PhaseView struct {
	Kind         PhaseKind
	SpawnDueAt   time.Duration
	Piece        *PieceData
	ClearingRows []int
	ClearDueAt   time.Duration
	Result       *EndResult
}

// Phase returns a copy of the current phase.
func (g *Game) Phase() PhaseView {
	view := PhaseView{
		Kind:       g.phase.Kind,
		SpawnDueAt: g.phase.SpawnDueAt,
		ClearDueAt: g.phase.ClearDueAt,
	}
	if g.phase.Piece != nil {
		pd := *g.phase.Piece
		view.Piece = &pd
	}
	view.ClearingRows = append([]int(nil), g.phase.ClearingRows...)
	if g.phase.Result != nil {
		r := *g.phase.Result
		view.Result = &r
	}
	return view
}

// Config returns a copy of the game's configuration.
func (g *Game) Config() Config {
	c := g.config
	c.EndConditions = append([]EndCondition(nil), g.config.EndConditions...)
	return c
}

// InitialValues returns a copy of the game's initial values, from which a
// replay can be reconstructed.
func (g *Game) InitialValues() InitialValues {
	iv := g.initVals
	if iv.Source != nil {
		src := *iv.Source
		iv.Source = &src
	}
	return iv
}

// Seed returns the seed the game's PRNG was initialized with.
func (g *Game) Seed() uint64 {
	return g.initVals.Seed
}

// Time returns the game's current logical time.
func (g *Game) Time() time.Duration {
	return g.state.Time
}

// Ended reports whether the game has reached a terminal phase.
func (g *Game) Ended() bool {
	return g.phase.Kind == PhaseGameEnded
}

// Result returns the terminal outcome, or nil while the game runs.
func (g *Game) Result() *EndResult {
	if g.phase.Result == nil {
		return nil
	}
	r := *g.phase.Result
	return &r
}

// Modifiers returns the descriptors of the attached modifiers, in order.
func (g *Game) Modifiers() []string {
	descriptors := make([]string, len(g.modifiers))
	for i, m := range g.modifiers {
		descriptors[i] = m.Descriptor
	}
	return descriptors
}

// AppendModifiers attaches further modifiers behind the existing ones.
func (g *Game) AppendModifiers(mods ...Modifier) {
	g.modifiers = append(g.modifiers, mods...)
}

// PendingEvents returns a copy of the scheduler's event map, exposed for
// debugging frontends.
func (g *Game) PendingEvents() EventMap {
	m := EventMap{}
	for ev, due := range g.state.Events {
		m[ev] = due
	}
	return m
}
