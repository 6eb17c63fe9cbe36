package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// cycleBuilder returns a builder with deterministic timing and a scripted
// piece sequence, the base of most scenarios.
func cycleBuilder(t *testing.T, pattern ...piece.Tetromino) *Builder {
	t.Helper()
	src, err := piece.NewCycleSource(pattern)
	require.NoError(t, err)
	return NewBuilder().
		Seed(1).
		Source(src).
		PiecePreviewCount(1).
		SpawnDelay(0).
		LineClearDuration(0).
		RotationSystem("super").
		DelayedAutoShift(10 * time.Second).
		AutoRepeatRate(10 * time.Second).
		FallDelayEquation(DelayEquation{Initial: extmath.Finite(time.Second), Factor: extmath.MustNonNegF64(1)}).
		FallDelayLowerBound(extmath.Finite(time.Millisecond)).
		LockDelayEquation(DelayEquation{Initial: extmath.Finite(500 * time.Millisecond), Factor: extmath.MustNonNegF64(1)}).
		LockDelayLowerBound(extmath.Finite(time.Millisecond)).
		SoftDropDivisor(extmath.MustNonNegF64(20)).
		CappedLockTimeFactor(extmath.MustNonNegF64(10))
}

func press(buttons ...Button) *ButtonSet {
	s := ButtonSet{}.With(buttons...)
	return &s
}

func countKind(msgs []Message, kind MessageKind) int {
	n := 0
	for _, m := range msgs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func TestScenarioSoftDropSingle(t *testing.T) {
	// Spawn an O, hold soft drop from t=0, expect it locked at the
	// bottom of columns 4-5 and a second O spawned.
	g, err := cycleBuilder(t, piece.O, piece.O).Build()
	require.NoError(t, err)

	first, err := g.Update(press(ButtonDropSoft), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(first, MsgPieceSpawned))

	later, err := g.Update(nil, 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1, countKind(later, MsgPieceLocked))
	assert.Equal(t, 1, countKind(later, MsgPieceSpawned), "second O spawns")
	assert.Equal(t, 0, countKind(later, MsgLinesClearing))

	view := g.State()
	for _, c := range []piece.Coord{{X: 4, Y: 0}, {X: 5, Y: 0}, {X: 4, Y: 1}, {X: 5, Y: 1}} {
		assert.Equal(t, piece.O.TileID(), view.Board.Cell(c.X, c.Y), "cell %v", c)
	}
	assert.Nil(t, view.Result)
}

func TestScenarioLineClearTetris(t *testing.T) {
	g, err := cycleBuilder(t, piece.I, piece.I, piece.I, piece.I, piece.I).Build()
	require.NoError(t, err)

	// Pre-fill rows 0-3 leaving column 0 open.
	for y := 0; y < 4; y++ {
		for x := 1; x < board.Width; x++ {
			g.state.Board.SetCell(x, y, board.GarbageTile)
		}
	}

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	_, err = g.Update(press(ButtonRotateRight), 2*time.Millisecond)
	require.NoError(t, err)

	// Tap left three times to park the vertical I in column 0.
	for i := 0; i < 3; i++ {
		at := time.Duration(3+2*i) * time.Millisecond
		_, err = g.Update(press(ButtonMoveLeft), at)
		require.NoError(t, err)
		_, err = g.Update(press(), at+time.Millisecond)
		require.NoError(t, err)
	}

	msgs, err := g.Update(press(ButtonDropHard), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, countKind(msgs, MsgHardDrop))

	msgs, err = g.Update(nil, 20*time.Millisecond)
	require.NoError(t, err)

	var accolade *Accolade
	for _, m := range msgs {
		if m.Kind == MsgAccolade {
			accolade = m.Accolade
		}
	}
	require.NotNil(t, accolade, "tetris should emit an accolade")
	assert.Equal(t, 4, accolade.LinesCleared)
	assert.Equal(t, piece.I, accolade.Shape)
	assert.Equal(t, uint32(1), accolade.Combo)
	assert.Equal(t, uint32(1), accolade.BackToBack, "first difficult clear starts the chain")

	assert.Equal(t, uint32(4), g.State().LinesCleared)
	assert.True(t, g.state.Board.IsEmpty(), "perfect clear leaves an empty board")
	assert.True(t, accolade.PerfectClear)
}

func TestScenarioTopOut(t *testing.T) {
	g, err := cycleBuilder(t, piece.O).Build()
	require.NoError(t, err)

	// Occupy the O spawn cells.
	for _, c := range []piece.Coord{{X: 4, Y: board.Skyline}, {X: 5, Y: board.Skyline}, {X: 4, Y: board.Skyline + 1}, {X: 5, Y: board.Skyline + 1}} {
		g.state.Board.SetCell(c.X, c.Y, board.GarbageTile)
	}

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)

	result := g.State().Result
	require.NotNil(t, result)
	assert.False(t, result.Ok)
	assert.Equal(t, ReasonTopOut, result.Reason)

	// Further updates are no-ops with empty feedback.
	msgs, err := g.Update(press(ButtonDropHard), time.Second)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestScenarioReplayDeterminism(t *testing.T) {
	trace := []struct {
		at      time.Duration
		buttons ButtonSet
	}{
		{0, ButtonSet{}.With(ButtonMoveRight)},
		{50 * time.Millisecond, ButtonSet{}.With(ButtonMoveRight, ButtonDropHard)},
		{51 * time.Millisecond, ButtonSet{}},
	}

	run := func() ([]Message, StateView) {
		g, err := cycleBuilder(t, piece.T, piece.L, piece.J).Seed(77).Build()
		require.NoError(t, err)
		var all []Message
		for _, step := range trace {
			buttons := step.buttons
			msgs, err := g.Update(&buttons, step.at)
			require.NoError(t, err)
			all = append(all, msgs...)
		}
		msgs, err := g.Update(nil, 5*time.Second)
		require.NoError(t, err)
		all = append(all, msgs...)
		return all, g.State()
	}

	feedbackA, stateA := run()
	feedbackB, stateB := run()
	assert.Equal(t, feedbackA, feedbackB, "feedback sequences must be identical")
	assert.Equal(t, stateA.Board, stateB.Board, "final boards must be identical")
	assert.Equal(t, stateA.Score, stateB.Score)
}

func TestScenarioLockDelayReset(t *testing.T) {
	// Strict reset policy: a failed rotation must not reset the lock
	// deadline, a successful move must.
	g, err := cycleBuilder(t, piece.T).
		LenientLockDelayReset(false).
		FallDelayEquation(DelayEquation{Initial: extmath.Finite(10 * time.Millisecond), Factor: extmath.MustNonNegF64(1)}).
		Build()
	require.NoError(t, err)

	// Let the T fall onto the floor.
	_, err = g.Update(nil, 300*time.Millisecond)
	require.NoError(t, err)
	pd := g.phase.Piece
	require.NotNil(t, pd)
	require.False(t, pd.IsFallNotLock, "piece should be grounded")
	require.Equal(t, 0, pd.Piece.Y)

	// Wall the piece in so every rotation fails, leaving only a move to
	// the right open.
	open := map[piece.Coord]bool{{X: 6, Y: 0}: true, {X: 5, Y: 1}: true}
	for _, c := range pd.Piece.Tiles() {
		open[c] = true
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < board.Width; x++ {
			if !open[piece.Coord{X: x, Y: y}] {
				g.state.Board.SetCell(x, y, board.GarbageTile)
			}
		}
	}

	deadline := pd.FallOrLockDeadline

	_, err = g.Update(press(ButtonRotateRight), 310*time.Millisecond)
	require.NoError(t, err)
	require.Same(t, pd, g.phase.Piece)
	assert.Equal(t, deadline, pd.FallOrLockDeadline, "failed rotation must not reset the deadline")

	_, err = g.Update(press(ButtonMoveRight), 320*time.Millisecond)
	require.NoError(t, err)
	require.Same(t, pd, g.phase.Piece)
	assert.Equal(t, 4, pd.Piece.X, "move must succeed")
	assert.Equal(t, 320*time.Millisecond+500*time.Millisecond, pd.FallOrLockDeadline,
		"successful move must reset the deadline")
}

func TestLenientLockDelayReset(t *testing.T) {
	g, err := cycleBuilder(t, piece.O).
		LenientLockDelayReset(true).
		FallDelayEquation(DelayEquation{Initial: extmath.Finite(10 * time.Millisecond), Factor: extmath.MustNonNegF64(1)}).
		Build()
	require.NoError(t, err)

	_, err = g.Update(nil, 300*time.Millisecond)
	require.NoError(t, err)
	pd := g.phase.Piece
	require.NotNil(t, pd)
	require.False(t, pd.IsFallNotLock)

	// An O rotation moves no cells, but under the lenient policy the
	// attempt alone refreshes the deadline.
	_, err = g.Update(press(ButtonRotateRight), 400*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 400*time.Millisecond+500*time.Millisecond, pd.FallOrLockDeadline)
}

func TestTimeRegressionRejected(t *testing.T) {
	g, err := cycleBuilder(t, piece.O).Build()
	require.NoError(t, err)

	_, err = g.Update(nil, 100*time.Millisecond)
	require.NoError(t, err)
	before := g.State()

	_, err = g.Update(press(ButtonDropHard), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeRegression)
	assert.Equal(t, before.Time, g.State().Time, "state must be unchanged")
	assert.Equal(t, before.Board, g.State().Board)
}

func TestMonotoneTime(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I, piece.T).Build()
	require.NoError(t, err)

	last := time.Duration(0)
	for i := 1; i <= 50; i++ {
		at := time.Duration(i) * 40 * time.Millisecond
		_, err := g.Update(nil, at)
		require.NoError(t, err)
		now := g.State().Time
		assert.GreaterOrEqual(t, now, last)
		last = now
	}
}

func TestEventMapNonEmptyIffRunning(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I).Build()
	require.NoError(t, err)

	for i := 1; i <= 100 && !g.Ended(); i++ {
		assert.NotEmpty(t, g.PendingEvents(), "running game must have pending events")
		_, err := g.Update(press(ButtonDropHard), time.Duration(i)*30*time.Millisecond)
		require.NoError(t, err)
		_, err = g.Update(press(), time.Duration(i)*30*time.Millisecond+time.Millisecond)
		require.NoError(t, err)
	}
	require.True(t, g.Ended(), "stacking O pieces forever must top out")
	assert.Empty(t, g.PendingEvents())
}

func TestPieceAlwaysFitsAndPreviewConstant(t *testing.T) {
	const previewCount = 3
	g, err := cycleBuilder(t, piece.T, piece.S, piece.Z, piece.L).
		PiecePreviewCount(previewCount).
		Build()
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(8))
	var at time.Duration
	for i := 0; i < 300 && !g.Ended(); i++ {
		at += time.Duration(rng.Intn(60)) * time.Millisecond
		var buttons *ButtonSet
		if rng.Intn(2) == 0 {
			buttons = &ButtonSet{}
			for b := Button(0); b < ButtonCount; b++ {
				buttons[b] = rng.Intn(4) == 0
			}
		}
		_, err := g.Update(buttons, at)
		require.NoError(t, err)

		if pd := g.phase.Piece; pd != nil {
			assert.True(t, g.state.Board.Fits(pd.Piece), "active piece must fit the board")
		}
		if !g.Ended() {
			assert.Len(t, g.state.Preview, previewCount)
		}
	}
}

func TestHardDropIdempotent(t *testing.T) {
	run := func(double bool) StateView {
		g, err := cycleBuilder(t, piece.L, piece.J, piece.S).Build()
		require.NoError(t, err)
		_, err = g.Update(nil, time.Millisecond)
		require.NoError(t, err)
		_, err = g.Update(press(ButtonDropHard), 2*time.Millisecond)
		require.NoError(t, err)
		if double {
			_, err = g.Update(press(), 2*time.Millisecond)
			require.NoError(t, err)
			_, err = g.Update(press(ButtonDropHard), 2*time.Millisecond)
			require.NoError(t, err)
		}
		_, err = g.Update(nil, time.Second)
		require.NoError(t, err)
		return g.State()
	}

	once := run(false)
	twice := run(true)
	assert.Equal(t, once.Board, twice.Board)
	assert.Equal(t, once.Score, twice.Score)
	assert.Equal(t, once.PiecesLocked, twice.PiecesLocked)
}

func TestDelayProgressionMonotone(t *testing.T) {
	g, err := cycleBuilder(t, piece.I).
		UpdateDelaysEveryNLineClears(1).
		FallDelayEquation(DelayEquation{Initial: extmath.Finite(time.Second), Factor: extmath.MustNonNegF64(0.5)}).
		FallDelayLowerBound(extmath.Finite(50 * time.Millisecond)).
		LockDelayEquation(DelayEquation{Initial: extmath.Finite(500 * time.Millisecond), Factor: extmath.MustNonNegF64(0.5)}).
		LockDelayLowerBound(extmath.Finite(100 * time.Millisecond)).
		Build()
	require.NoError(t, err)

	prevFall := g.state.FallDelay
	prevLock := g.state.LockDelay

	// Clear single rows repeatedly: drop horizontal I pieces onto a
	// prepared row with 4 open cells at x 3..6.
	var at time.Duration
	for round := 0; round < 8 && !g.Ended(); round++ {
		for x := 0; x < board.Width; x++ {
			if x < 3 || x > 6 {
				g.state.Board.SetCell(x, 0, board.GarbageTile)
			}
		}
		at += 5 * time.Millisecond
		_, err = g.Update(press(ButtonDropHard), at)
		require.NoError(t, err)
		at += 5 * time.Millisecond
		_, err = g.Update(press(), at)
		require.NoError(t, err)
		at += 20 * time.Millisecond
		_, err = g.Update(nil, at)
		require.NoError(t, err)

		assert.LessOrEqual(t, g.state.FallDelay.Cmp(prevFall), 0, "fall delay must not increase")
		assert.LessOrEqual(t, g.state.LockDelay.Cmp(prevLock), 0, "lock delay must not increase")
		assert.GreaterOrEqual(t, g.state.FallDelay.Cmp(g.config.FallDelayLowerBound), 0)
		assert.GreaterOrEqual(t, g.state.LockDelay.Cmp(g.config.LockDelayLowerBound), 0)
		prevFall = g.state.FallDelay
		prevLock = g.state.LockDelay
	}
	require.NotNil(t, g.state.FallBottomedOutAt, "fall delay should have hit its lower bound")
}

func TestEndConditionPositive(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I, piece.T).
		EndConditions([]EndCondition{{Stat: PiecesLocked(2), Positive: true}}).
		Build()
	require.NoError(t, err)

	var at time.Duration
	for i := 0; i < 10 && !g.Ended(); i++ {
		at += 10 * time.Millisecond
		_, err = g.Update(press(ButtonDropHard), at)
		require.NoError(t, err)
		at += 10 * time.Millisecond
		_, err = g.Update(press(), at)
		require.NoError(t, err)
	}

	result := g.Result()
	require.NotNil(t, result)
	assert.True(t, result.Ok)
	assert.Equal(t, ReasonStatReached, result.Reason)
	require.NotNil(t, result.Stat)
	assert.Equal(t, StatPiecesLocked, result.Stat.Kind)
}

func TestEndConditionNegativeTimeLimit(t *testing.T) {
	g, err := cycleBuilder(t, piece.O).
		EndConditions([]EndCondition{{Stat: TimeElapsed(time.Second), Positive: false}}).
		Build()
	require.NoError(t, err)

	_, err = g.Update(nil, 2*time.Second)
	require.NoError(t, err)

	result := g.Result()
	require.NotNil(t, result)
	assert.False(t, result.Ok)
	assert.Equal(t, ReasonModeLimit, result.Reason)
}

func TestForfeit(t *testing.T) {
	g, err := cycleBuilder(t, piece.O).Build()
	require.NoError(t, err)
	g.Forfeit()

	result := g.Result()
	require.NotNil(t, result)
	assert.False(t, result.Ok)
	assert.Equal(t, ReasonForfeit, result.Reason)
	assert.Empty(t, g.PendingEvents())
}

func TestHoldPieceSwap(t *testing.T) {
	g, err := cycleBuilder(t, piece.T, piece.I, piece.O, piece.S).Build()
	require.NoError(t, err)

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, piece.T, g.phase.Piece.Piece.Shape)

	// First hold stashes the T and spawns the next shape.
	_, err = g.Update(press(ButtonHoldPiece), 2*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, g.state.Hold)
	assert.Equal(t, piece.T, g.state.Hold.Shape)
	assert.True(t, g.state.Hold.Used)
	assert.Equal(t, piece.I, g.phase.Piece.Piece.Shape)

	// A second hold for the same piece is refused.
	_, err = g.Update(press(), 3*time.Millisecond)
	require.NoError(t, err)
	_, err = g.Update(press(ButtonHoldPiece), 4*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, piece.I, g.phase.Piece.Piece.Shape)
	assert.Equal(t, piece.T, g.state.Hold.Shape)

	// After locking, hold becomes available again and returns the T.
	_, err = g.Update(press(), 5*time.Millisecond)
	require.NoError(t, err)
	_, err = g.Update(press(ButtonDropHard), 6*time.Millisecond)
	require.NoError(t, err)
	_, err = g.Update(press(), 20*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, piece.O, g.phase.Piece.Piece.Shape)

	_, err = g.Update(press(ButtonHoldPiece), 21*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, piece.T, g.phase.Piece.Piece.Shape)
	assert.Equal(t, piece.O, g.state.Hold.Shape)
}

func TestSonicDropDoesNotLock(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I).Build()
	require.NoError(t, err)

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	_, err = g.Update(press(ButtonDropSonic), 2*time.Millisecond)
	require.NoError(t, err)

	pd := g.phase.Piece
	require.NotNil(t, pd)
	assert.Equal(t, 0, pd.Piece.Y, "sonic drop teleports to the ghost position")
	assert.False(t, pd.IsFallNotLock, "piece is grounded and waiting on lock delay")
	assert.Equal(t, PhasePieceInPlay, g.phase.Kind)

	// The piece locks only after the full lock delay.
	_, err = g.Update(nil, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, PhasePieceInPlay, g.phase.Kind)
	_, err = g.Update(nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), g.state.PiecesLocked[piece.O])
}

func TestGroundCapForcesLock(t *testing.T) {
	// Keep resetting the lock delay by wiggling; the ground cap must
	// still force the lock.
	g, err := cycleBuilder(t, piece.T, piece.I).
		LenientLockDelayReset(true).
		CappedLockTimeFactor(extmath.MustNonNegF64(2)).
		FallDelayEquation(DelayEquation{Initial: extmath.Finite(10 * time.Millisecond), Factor: extmath.MustNonNegF64(1)}).
		Build()
	require.NoError(t, err)

	// Ground the piece.
	_, err = g.Update(nil, 300*time.Millisecond)
	require.NoError(t, err)
	require.False(t, g.phase.Piece.IsFallNotLock)

	// Wiggle left-right every 100ms; lock delay 500ms, cap 1s.
	at := 300 * time.Millisecond
	dir := ButtonMoveLeft
	for i := 0; i < 30 && g.phase.Kind == PhasePieceInPlay; i++ {
		at += 100 * time.Millisecond
		_, err = g.Update(press(dir), at)
		require.NoError(t, err)
		if dir == ButtonMoveLeft {
			dir = ButtonMoveRight
		} else {
			dir = ButtonMoveLeft
		}
	}

	assert.Equal(t, uint32(1), g.state.PiecesLocked[piece.T], "ground cap must have locked the piece")
	assert.LessOrEqual(t, g.state.Time, 300*time.Millisecond+100*time.Millisecond*30)
}

func TestModifierConsumesButtonChange(t *testing.T) {
	eatInputs := Modifier{
		Descriptor: "eat_inputs",
		Func: func(ctx *ModContext) {
			if ctx.Point == PointMainLoopHead && ctx.ButtonChange != nil {
				*ctx.ButtonChange = nil
			}
		},
	}
	g, err := cycleBuilder(t, piece.O, piece.I).BuildModded([]Modifier{eatInputs})
	require.NoError(t, err)

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	y := g.phase.Piece.Piece.Y

	_, err = g.Update(press(ButtonDropHard), 2*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, y, g.phase.Piece.Piece.Y, "consumed hard drop must not act")
}

func TestModifierFeedbackAndDescriptor(t *testing.T) {
	announce := Modifier{
		Descriptor: "announcer",
		Func: func(ctx *ModContext) {
			if ctx.Point == PointPieceSpawned {
				*ctx.Feedback = append(*ctx.Feedback, Message{
					Time: ctx.State.Time,
					Kind: MsgText,
					Text: "spawned",
				})
			}
		},
	}
	g, err := cycleBuilder(t, piece.O).BuildModded([]Modifier{announce})
	require.NoError(t, err)
	assert.Equal(t, []string{"announcer"}, g.Modifiers())

	msgs, err := g.Update(nil, time.Millisecond)
	require.NoError(t, err)

	found := false
	for _, m := range msgs {
		if m.Kind == MsgText && m.Text == "spawned" {
			found = true
		}
	}
	assert.True(t, found, "modifier feedback must appear in the batch")
}

func TestVerbositySilent(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I).
		FeedbackVerbosity(VerbositySilent).
		Build()
	require.NoError(t, err)

	msgs, err := g.Update(press(ButtonDropHard), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestVerbosityDebugEmitsEvents(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I).
		FeedbackVerbosity(VerbosityDebug).
		Build()
	require.NoError(t, err)

	msgs, err := g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	assert.Greater(t, countKind(msgs, MsgDebug), 0)
}

func TestBuilderRejectsUnknownRotationSystem(t *testing.T) {
	_, err := NewBuilder().RotationSystem("does_not_exist").Build()
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "rotation_system", buildErr.Field)
}

func TestDASAutoRepeat(t *testing.T) {
	g, err := cycleBuilder(t, piece.O, piece.I).
		DelayedAutoShift(100 * time.Millisecond).
		AutoRepeatRate(50 * time.Millisecond).
		Build()
	require.NoError(t, err)

	_, err = g.Update(nil, time.Millisecond)
	require.NoError(t, err)
	startX := g.phase.Piece.Piece.X

	// Hold right: one step on press, another after DAS, then every ARR.
	_, err = g.Update(press(ButtonMoveRight), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, startX+1, g.phase.Piece.Piece.X)

	_, err = g.Update(nil, 109*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, startX+1, g.phase.Piece.Piece.X, "still inside the DAS window")

	_, err = g.Update(nil, 115*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, startX+2, g.phase.Piece.Piece.X, "one auto shift after DAS")

	_, err = g.Update(nil, 165*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, startX+3, g.phase.Piece.Piece.X, "auto repeat follows")

	// Release stops the repeat.
	_, err = g.Update(press(), 200*time.Millisecond)
	require.NoError(t, err)
	x := g.phase.Piece.Piece.X
	_, err = g.Update(nil, 400*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, x, g.phase.Piece.Piece.X)
}
