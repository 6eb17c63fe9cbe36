package game

import (
	"errors"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
	"github.com/Strophox/tetro-tui-sub001/pkg/rotation"
)

const (
	// MaxEventsPerUpdate caps the events dispatched per Update call. A
	// configuration that exceeds it ends the game with RunawayEvents.
	MaxEventsPerUpdate = 100_000
	// MaxFeedbackPerUpdate caps the feedback messages collected per
	// Update call; excess messages are dropped.
	MaxFeedbackPerUpdate = 4096

	// hardDropLockDelay is the near-immediate lock scheduled by a hard
	// drop.
	hardDropLockDelay = 100 * time.Microsecond

	maxDuration = time.Duration(1<<63 - 1)
)

// ErrTimeRegression is returned by Update when the requested time lies
// before the game's current logical time. The game state is left untouched.
var ErrTimeRegression = errors.New("game: update time precedes current game time")

// Game is a deterministic falling-block engine instance. It owns its state,
// configuration, phase and modifiers exclusively; it is not safe for
// concurrent use, callers must serialize access.
type Game struct {
	config    Config
	initVals  InitialValues
	state     State
	phase     Phase
	modifiers []Modifier
	rotSys    rotation.System

	// Transient per-piece input intents.
	moveDir         int
	pendingRotation int

	// Per-Update working set.
	feedback         []Message
	eventsDispatched int
}

// Update advances the game's logical clock to upTo, dispatching every due
// internal event, then applies the button change, if any, and the events it
// triggers. It returns the feedback collected along the way, in dispatch
// order.
//
// Updating an ended game is a no-op returning empty feedback. A regression
// of upTo below the current logical time fails with ErrTimeRegression.
func (g *Game) Update(buttons *ButtonSet, upTo time.Duration) ([]Message, error) {
	if g.phase.Kind == PhaseGameEnded {
		return nil, nil
	}
	if upTo < g.state.Time {
		return nil, ErrTimeRegression
	}

	g.feedback = nil
	g.eventsDispatched = 0

	g.runMods(&ModContext{Point: PointMainLoopHead, ButtonChange: &buttons})

	g.processEvents(upTo)
	if g.phase.Kind != PhaseGameEnded && g.state.Time < upTo {
		g.state.Time = upTo
		g.checkEnd()
	}

	if buttons != nil && g.phase.Kind != PhaseGameEnded {
		g.runMods(&ModContext{Point: PointBeforeButtonChange})
		g.applyButtonChange(*buttons)
		g.runMods(&ModContext{Point: PointAfterButtonChange})
		g.checkEnd()
		g.processEvents(upTo)
	}

	batch := g.feedback
	g.feedback = nil
	return batch, nil
}

// processEvents dispatches pending events in (due time, priority) order
// until none is due at or before upTo. Events may enqueue further events for
// the same instant; the iteration is bounded by the per-call event budget.
func (g *Game) processEvents(upTo time.Duration) {
	for g.phase.Kind != PhaseGameEnded {
		ev, due, ok := g.state.Events.Next()
		if !ok || due > upTo {
			return
		}
		if g.eventsDispatched >= MaxEventsPerUpdate {
			g.endGame(EndResult{Ok: false, Reason: ReasonRunawayEvents})
			return
		}
		g.eventsDispatched++

		delete(g.state.Events, ev)
		if due > g.state.Time {
			g.state.Time = due
		}
		now := g.state.Time

		g.runMods(&ModContext{Point: PointBeforeEvent, Event: ev})
		if g.phase.Kind == PhaseGameEnded {
			return
		}
		g.dispatch(ev, now)
		if g.config.FeedbackVerbosity >= VerbosityDebug {
			g.emit(Message{Time: now, Kind: MsgDebug, Text: ev.String()})
		}
		g.runMods(&ModContext{Point: PointAfterEvent, Event: ev})
		g.checkEnd()
	}
}

// dispatch applies the effect of one internal event at logical time now.
func (g *Game) dispatch(ev Event, now time.Duration) {
	switch ev {
	case EventSpawn:
		if g.phase.Kind != PhaseSpawning {
			return
		}
		g.spawnPiece(g.nextShape(), now)

	case EventFall, EventSoftDrop:
		pd := g.phase.Piece
		if pd == nil {
			return
		}
		down := pd.Piece.Moved(0, -1)
		if g.state.Board.Fits(down) {
			pd.Piece = down
			pd.LastRotationKick = nil
			g.noteLowered(pd)
		}
		g.rearm(pd, now)

	case EventLock:
		pd := g.phase.Piece
		if pd == nil {
			return
		}
		if !g.state.Board.Grounded(pd.Piece) {
			// The piece was shaken loose before the deadline hit.
			g.rearm(pd, now)
			return
		}
		g.lockPiece(pd, now)

	case EventGroundCap:
		pd := g.phase.Piece
		if pd == nil || !g.state.Board.Grounded(pd.Piece) {
			return
		}
		g.lockPiece(pd, now)

	case EventHardDrop:
		pd := g.phase.Piece
		if pd == nil {
			return
		}
		fromY := pd.Piece.Y
		pd.Piece = g.state.Board.Ghost(pd.Piece)
		g.noteLowered(pd)
		g.emit(Message{Time: now, Kind: MsgHardDrop, FromY: fromY, ToY: pd.Piece.Y})
		delete(g.state.Events, EventFall)
		delete(g.state.Events, EventSoftDrop)
		g.armGroundCap(pd, now)
		deadline := minDuration(now+hardDropLockDelay, pd.CappedLockDeadline)
		pd.FallOrLockDeadline = deadline
		pd.IsFallNotLock = false
		g.state.Events[EventLock] = deadline

	case EventMove:
		pd := g.phase.Piece
		if pd == nil || g.moveDir == 0 {
			return
		}
		g.tryShift(pd, g.moveDir, now)
		if g.state.Buttons.Pressed(ButtonMoveLeft) || g.state.Buttons.Pressed(ButtonMoveRight) {
			repeat := g.config.DelayedAutoShift
			if pd.AutoShiftEngaged {
				repeat = g.config.AutoRepeatRate
			}
			pd.AutoShiftEngaged = true
			g.state.Events[EventMove] = now + repeat
		}

	case EventRotate:
		pd := g.phase.Piece
		if pd == nil || g.pendingRotation == 0 {
			return
		}
		g.tryRotate(pd, g.pendingRotation, now)
		g.pendingRotation = 0

	case EventLineClear:
		if g.phase.Kind != PhaseLinesClearing {
			return
		}
		linesBefore := g.state.LinesCleared
		cleared := g.state.Board.ClearRows(g.phase.ClearingRows)
		g.state.LinesCleared += uint32(cleared)
		g.updateDelays(linesBefore)
		g.runMods(&ModContext{Point: PointLinesCleared})
		if g.phase.Kind == PhaseGameEnded {
			return
		}
		g.phase = Phase{Kind: PhaseSpawning, SpawnDueAt: now + g.config.SpawnDelay}
		g.state.Events[EventSpawn] = g.phase.SpawnDueAt
	}
}

// nextShape pops the head of the preview queue, refilling it from the piece
// source to the configured length.
func (g *Game) nextShape() piece.Tetromino {
	if g.config.PiecePreviewCount == 0 && len(g.state.Preview) == 0 {
		return g.state.Source.Next(g.state.Rng)
	}
	for len(g.state.Preview) < g.config.PiecePreviewCount+1 {
		g.state.Preview = append(g.state.Preview, g.state.Source.Next(g.state.Rng))
	}
	shape := g.state.Preview[0]
	g.state.Preview = g.state.Preview[1:]
	return shape
}

// spawnPiece introduces a new active piece at the spawn position. A piece
// that does not fit tops the game out.
func (g *Game) spawnPiece(shape piece.Tetromino, now time.Duration) {
	p := piece.Piece{Shape: shape, Orientation: piece.North, X: spawnX(shape), Y: board.Skyline}

	if g.config.AllowPrespawnActions {
		for _, press := range []struct {
			button Button
			delta  int
		}{
			{ButtonRotateRight, 1},
			{ButtonRotateLeft, -1},
			{ButtonRotateAround, 2},
		} {
			if g.state.Buttons.Pressed(press.button) {
				if rotated, _, ok := g.rotSys.Rotate(g.state.Board, p, press.delta); ok {
					p = rotated
				}
			}
		}
	}

	if !g.state.Board.Fits(p) {
		g.endGame(EndResult{Ok: false, Reason: ReasonTopOut})
		return
	}

	pd := &PieceData{
		Piece:          p,
		LowestYReached: p.Y,
	}
	g.phase = Phase{Kind: PhasePieceInPlay, Piece: pd}
	g.emit(Message{Time: now, Kind: MsgPieceSpawned, Shape: shape})

	if g.moveDir != 0 && (g.state.Buttons.Pressed(ButtonMoveLeft) || g.state.Buttons.Pressed(ButtonMoveRight)) {
		g.state.Events[EventMove] = now
	}
	g.rearm(pd, now)
	g.runMods(&ModContext{Point: PointPieceSpawned})
}

// spawnX centers the shape horizontally at spawn.
func spawnX(shape piece.Tetromino) int {
	if shape == piece.O {
		return 4
	}
	return 3
}

// noteLowered refreshes the new-low bookkeeping after the piece descended.
// Reaching a new low grants a fresh ground cap.
func (g *Game) noteLowered(pd *PieceData) {
	if pd.Piece.Y < pd.LowestYReached {
		pd.LowestYReached = pd.Piece.Y
		pd.GroundedOnce = false
		delete(g.state.Events, EventGroundCap)
	}
}

// armGroundCap starts the grounded-time cap the first time the piece
// touches ground since its last new low. The cap is never pushed back.
func (g *Game) armGroundCap(pd *PieceData, now time.Duration) {
	if pd.GroundedOnce {
		return
	}
	pd.GroundedOnce = true
	groundTime := g.state.LockDelay.Mul(g.config.CappedLockTimeFactor)
	pd.CappedLockDeadline = after(now, groundTime)
	g.state.Events[EventGroundCap] = pd.CappedLockDeadline
}

// rearm schedules the piece's single fall-or-lock deadline according to its
// groundedness.
func (g *Game) rearm(pd *PieceData, now time.Duration) {
	if g.state.Board.Grounded(pd.Piece) {
		delete(g.state.Events, EventFall)
		delete(g.state.Events, EventSoftDrop)
		g.armGroundCap(pd, now)
		deadline := minDuration(after(now, g.state.LockDelay), pd.CappedLockDeadline)
		pd.FallOrLockDeadline = deadline
		pd.IsFallNotLock = false
		g.state.Events[EventLock] = deadline
		return
	}

	delete(g.state.Events, EventLock)
	pd.IsFallNotLock = true
	if g.state.Buttons.Pressed(ButtonDropSoft) {
		due := after(now, g.state.FallDelay.Div(g.config.SoftDropDivisor))
		pd.FallOrLockDeadline = due
		delete(g.state.Events, EventFall)
		g.state.Events[EventSoftDrop] = due
	} else {
		due := after(now, g.state.FallDelay)
		pd.FallOrLockDeadline = due
		delete(g.state.Events, EventSoftDrop)
		g.state.Events[EventFall] = due
	}
}

// resetLockDeadline pushes the lock deadline out by a fresh lock delay,
// bounded by the ground cap.
func (g *Game) resetLockDeadline(pd *PieceData, now time.Duration) {
	if pd.IsFallNotLock {
		return
	}
	deadline := minDuration(after(now, g.state.LockDelay), pd.CappedLockDeadline)
	pd.FallOrLockDeadline = deadline
	g.state.Events[EventLock] = deadline
}

// tryShift attempts one horizontal step and applies the lock-delay reset
// policy.
func (g *Game) tryShift(pd *PieceData, dx int, now time.Duration) {
	wasGrounded := !pd.IsFallNotLock
	shifted := pd.Piece.Moved(dx, 0)
	if g.state.Board.Fits(shifted) {
		pd.Piece = shifted
		pd.LastRotationKick = nil
		nowGrounded := g.state.Board.Grounded(pd.Piece)
		if nowGrounded != wasGrounded {
			g.rearm(pd, now)
		} else if nowGrounded {
			g.resetLockDeadline(pd, now)
		}
		return
	}
	if g.config.LenientLockDelayReset && wasGrounded {
		g.resetLockDeadline(pd, now)
	}
}

// tryRotate attempts a rotation through the configured rotation system and
// applies the lock-delay reset policy.
func (g *Game) tryRotate(pd *PieceData, delta int, now time.Duration) {
	wasGrounded := !pd.IsFallNotLock
	rotated, kick, ok := g.rotSys.Rotate(g.state.Board, pd.Piece, delta)
	if ok && rotated.Tiles() != pd.Piece.Tiles() {
		pd.Piece = rotated
		k := kick
		pd.LastRotationKick = &k
		g.noteLowered(pd)
		nowGrounded := g.state.Board.Grounded(pd.Piece)
		if nowGrounded != wasGrounded {
			g.rearm(pd, now)
		} else if nowGrounded {
			g.resetLockDeadline(pd, now)
		}
		return
	}
	// A failed rotation, or one that moved no cells (the O piece), only
	// counts under the lenient reset policy.
	if ok {
		pd.Piece = rotated
	}
	if g.config.LenientLockDelayReset && wasGrounded {
		g.resetLockDeadline(pd, now)
	}
}

// lockPiece commits the active piece to the board, scores the result and
// transitions to line clearing or spawning.
func (g *Game) lockPiece(pd *PieceData, now time.Duration) {
	spin := g.detectSpin(pd)

	g.state.Board.Commit(pd.Piece)
	g.state.PiecesLocked[pd.Piece.Shape]++
	if g.state.Hold != nil {
		g.state.Hold.Used = false
	}
	g.emit(Message{Time: now, Kind: MsgPieceLocked, Piece: pd.Piece})

	var candidates []int
	for _, c := range pd.Piece.Tiles() {
		candidates = append(candidates, c.Y)
	}
	rows := g.state.Board.FullRows(candidates)

	for _, ev := range []Event{EventFall, EventSoftDrop, EventMove, EventRotate, EventHardDrop, EventGroundCap, EventLock} {
		delete(g.state.Events, ev)
	}

	if len(rows) > 0 {
		perfect := g.boardEmptyAfter(rows)
		accolade := g.scoreAccolade(len(rows), spin, perfect)
		g.emit(Message{Time: now, Kind: MsgAccolade, Accolade: &accolade})
		clearDue := now + g.config.LineClearDuration
		g.phase = Phase{Kind: PhaseLinesClearing, ClearingRows: rows, ClearDueAt: clearDue}
		g.state.Events[EventLineClear] = clearDue
		g.emit(Message{Time: now, Kind: MsgLinesClearing, Rows: append([]int(nil), rows...)})
	} else {
		g.state.ConsecutiveLineClears = 0
		g.phase = Phase{Kind: PhaseSpawning, SpawnDueAt: now + g.config.SpawnDelay}
		g.state.Events[EventSpawn] = g.phase.SpawnDueAt
	}
	g.runMods(&ModContext{Point: PointPieceLocked})
}

// detectSpin reports whether the lock qualifies as a spin: the last
// successful action was a rotation resolved by a nontrivial kick, and the
// piece has no legal translation in any cardinal direction.
func (g *Game) detectSpin(pd *PieceData) bool {
	if pd.LastRotationKick == nil || pd.LastRotationKick.IsTrivial() {
		return false
	}
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if g.state.Board.Fits(pd.Piece.Moved(d[0], d[1])) {
			return false
		}
	}
	return true
}

// boardEmptyAfter reports whether removing the given rows empties the
// board: a perfect clear.
func (g *Game) boardEmptyAfter(rows []int) bool {
	return g.state.Board.CellCount() == len(rows)*board.Width
}

// updateDelays recomputes the fall and lock delays when the cleared-line
// count crosses the configured cadence.
func (g *Game) updateDelays(linesBefore uint32) {
	cadence := g.config.UpdateDelaysEveryNLineClears
	if cadence == 0 || linesBefore/cadence == g.state.LinesCleared/cadence {
		return
	}
	level := g.state.Level(cadence)
	g.state.FallDelay = g.config.FallDelayLowerBound.Max(g.config.FallDelayEquation.Eval(level))
	g.state.LockDelay = g.config.LockDelayLowerBound.Max(g.config.LockDelayEquation.Eval(level))
	if g.state.FallBottomedOutAt == nil && g.state.FallDelay.Cmp(g.config.FallDelayLowerBound) <= 0 {
		lines := g.state.LinesCleared
		g.state.FallBottomedOutAt = &lines
	}
}

// applyButtonChange transitions the held-button set and enqueues the events
// the transition derives, all at the current logical time.
func (g *Game) applyButtonChange(next ButtonSet) {
	now := g.state.Time
	prev := g.state.Buttons
	g.state.Buttons = next
	pd := g.phase.Piece

	pressed := func(b Button) bool { return next.Pressed(b) && !prev.Pressed(b) }
	released := func(b Button) bool { return !next.Pressed(b) && prev.Pressed(b) }

	// Horizontal movement: the most recent press wins; releasing the
	// active direction falls back to the other held one.
	switch {
	case pressed(ButtonMoveLeft):
		g.moveDir = -1
	case pressed(ButtonMoveRight):
		g.moveDir = 1
	case released(ButtonMoveLeft) && next.Pressed(ButtonMoveRight):
		g.moveDir = 1
	case released(ButtonMoveRight) && next.Pressed(ButtonMoveLeft):
		g.moveDir = -1
	}
	if pressed(ButtonMoveLeft) || pressed(ButtonMoveRight) {
		if pd != nil {
			pd.AutoShiftEngaged = false
		}
		g.state.Events[EventMove] = now
	}
	if !next.Pressed(ButtonMoveLeft) && !next.Pressed(ButtonMoveRight) {
		g.moveDir = 0
		delete(g.state.Events, EventMove)
	}

	// Rotation presses accumulate into one net delta.
	turns := 0
	if pressed(ButtonRotateRight) {
		turns++
	}
	if pressed(ButtonRotateLeft) {
		turns--
	}
	if pressed(ButtonRotateAround) {
		turns += 2
	}
	if turns != 0 {
		switch ((turns % 4) + 4) % 4 {
		case 1:
			g.pendingRotation = 1
		case 2:
			g.pendingRotation = 2
		case 3:
			g.pendingRotation = -1
		default:
			g.pendingRotation = 0
		}
		if g.pendingRotation != 0 {
			g.state.Events[EventRotate] = now
		}
	}

	if pressed(ButtonDropHard) {
		g.state.Events[EventHardDrop] = now
	}

	if pressed(ButtonDropSoft) && pd != nil && pd.IsFallNotLock {
		g.rearm(pd, now)
	}
	if released(ButtonDropSoft) && pd != nil && pd.IsFallNotLock {
		g.rearm(pd, now)
	}

	if pressed(ButtonDropSonic) && pd != nil {
		pd.Piece = g.state.Board.Ghost(pd.Piece)
		g.noteLowered(pd)
		g.rearm(pd, now)
	}

	if pressed(ButtonHoldPiece) {
		g.holdPiece(now)
	}
}

// holdPiece stashes the active piece and brings in the previously held
// shape, or the next preview shape the first time. At most one hold per
// spawned piece.
func (g *Game) holdPiece(now time.Duration) {
	pd := g.phase.Piece
	if pd == nil {
		return
	}
	if g.state.Hold != nil && g.state.Hold.Used {
		return
	}

	var incoming piece.Tetromino
	if g.state.Hold != nil {
		incoming = g.state.Hold.Shape
	} else {
		incoming = g.nextShape()
	}
	g.state.Hold = &HoldPiece{Shape: pd.Piece.Shape, Used: true}

	for _, ev := range []Event{EventFall, EventSoftDrop, EventLock, EventGroundCap, EventHardDrop} {
		delete(g.state.Events, ev)
	}
	g.phase = Phase{Kind: PhaseSpawning, SpawnDueAt: now}
	g.spawnPiece(incoming, now)
}

// checkEnd evaluates the configured end conditions in order; the first
// reached one finishes the game.
func (g *Game) checkEnd() {
	if g.phase.Kind == PhaseGameEnded {
		return
	}
	for _, cond := range g.config.EndConditions {
		if !g.statReached(cond.Stat) {
			continue
		}
		stat := cond.Stat
		if cond.Positive {
			g.endGame(EndResult{Ok: true, Reason: ReasonStatReached, Stat: &stat})
		} else {
			g.endGame(EndResult{Ok: false, Reason: ReasonModeLimit, Stat: &stat})
		}
		return
	}
}

// statReached reports whether the game state passed the stat threshold.
func (g *Game) statReached(s Stat) bool {
	switch s.Kind {
	case StatTimeElapsed:
		return g.state.Time >= s.Time
	case StatLinesCleared:
		return uint64(g.state.LinesCleared) >= s.Count
	case StatPiecesLocked:
		return g.state.TotalPiecesLocked() >= s.Count
	case StatPointsScored:
		return g.state.Score >= s.Count
	case StatGravityReached:
		return uint64(g.state.Level(g.config.UpdateDelaysEveryNLineClears)) >= s.Count
	default:
		return false
	}
}

// endGame finishes the game. The event map is drained, upholding the
// invariant that it is non-empty exactly while the game runs.
func (g *Game) endGame(result EndResult) {
	g.phase = Phase{Kind: PhaseGameEnded, Result: &result}
	g.state.Events = EventMap{}
}

// Forfeit force-ends the game with a negative result. Forfeiting an ended
// game changes nothing.
func (g *Game) Forfeit() {
	if g.phase.Kind == PhaseGameEnded {
		return
	}
	g.endGame(EndResult{Ok: false, Reason: ReasonForfeit})
}

// runMods invokes every attached modifier at the given hook point, in
// declaration order.
func (g *Game) runMods(ctx *ModContext) {
	if len(g.modifiers) == 0 {
		return
	}
	ctx.Config = &g.config
	ctx.InitialValues = &g.initVals
	ctx.State = &g.state
	ctx.Phase = &g.phase
	ctx.Feedback = &g.feedback
	for _, m := range g.modifiers {
		m.Func(ctx)
	}
}

// emit appends a feedback message, honoring verbosity and the per-call cap.
func (g *Game) emit(msg Message) {
	if g.config.FeedbackVerbosity == VerbositySilent {
		return
	}
	if len(g.feedback) >= MaxFeedbackPerUpdate {
		return
	}
	g.feedback = append(g.feedback, msg)
}

// after adds an extended duration onto a point in logical time, saturating
// at the largest representable instant.
func after(now time.Duration, d extmath.ExtDuration) time.Duration {
	dd := d.Duration()
	if dd > maxDuration-now {
		return maxDuration
	}
	return now + dd
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
