package game

// Point names a well-defined hook in the update cycle at which modifiers
// run.
type Point int

const (
	// PointMainLoopHead runs before a button change is processed for the
	// tick; the modifier may consume the change.
	PointMainLoopHead Point = iota
	// PointBeforeEvent runs right before an internal event dispatches.
	PointBeforeEvent
	// PointAfterEvent runs right after dispatch, state already mutated.
	PointAfterEvent
	// PointBeforeButtonChange runs before a button transition applies.
	PointBeforeButtonChange
	// PointAfterButtonChange runs after a button transition applied.
	PointAfterButtonChange
	// PointPieceLocked fires alongside a piece committing to the board.
	PointPieceLocked
	// PointLinesCleared fires alongside rows being removed.
	PointLinesCleared
	// PointPieceSpawned fires alongside a new piece entering play.
	PointPieceSpawned
)

// String returns the name of the modifier point.
func (p Point) String() string {
	names := map[Point]string{
		PointMainLoopHead:       "main_loop_head",
		PointBeforeEvent:        "before_event",
		PointAfterEvent:         "after_event",
		PointBeforeButtonChange: "before_button_change",
		PointAfterButtonChange:  "after_button_change",
		PointPieceLocked:        "piece_locked",
		PointLinesCleared:       "lines_cleared",
		PointPieceSpawned:       "piece_spawned",
	}
	return names[p]
}

// ModContext is what a modifier function receives: the hook point plus
// mutable references into the game. Modifiers run in declaration order and
// must be deterministic to preserve replay determinism.
type ModContext struct {
	// Point is the hook being invoked.
	Point Point
	// Event is set for PointBeforeEvent and PointAfterEvent.
	Event Event
	// ButtonChange is set for PointMainLoopHead; assigning nil through
	// it consumes the pending change.
	ButtonChange **ButtonSet

	Config        *Config
	InitialValues *InitialValues
	State         *State
	Phase         *Phase
	// Feedback is the batch being built; modifiers may append to it.
	Feedback *[]Message
}

// End finishes the game from modifier code, overriding the engine's own
// end-condition decision. The event map is drained to uphold the scheduler
// invariant.
func (ctx *ModContext) End(result EndResult) {
	*ctx.Phase = Phase{Kind: PhaseGameEnded, Result: &result}
	ctx.State.Events = EventMap{}
}

// ModFn is a modifier hook function.
type ModFn func(ctx *ModContext)

// Modifier is a mode plugin: a textual descriptor for serialization plus
// the hook function. The descriptor's first line identifies the modifier,
// an optional second line carries JSON-encoded arguments.
type Modifier struct {
	Descriptor string
	Func       ModFn
}
