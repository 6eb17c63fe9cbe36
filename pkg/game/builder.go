package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/board"
	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
	"github.com/Strophox/tetro-tui-sub001/pkg/rotation"
)

// Builder collects configuration and initial-value overrides and
// materializes Games. A builder can be reused to initialize several games.
type Builder struct {
	config    Config
	seed      *uint64
	source    *piece.Source
	fallDelay *extmath.ExtDuration
	lockDelay *extmath.ExtDuration
}

// NewBuilder creates a builder preloaded with the default configuration.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.config.EndConditions = append([]EndCondition(nil), b.config.EndConditions...)
	if b.source != nil {
		c.source = b.source.Clone()
	}
	return &c
}

// Config replaces the whole configuration.
func (b *Builder) Config(c Config) *Builder {
	b.config = c
	return b
}

// PiecePreviewCount sets how many upcoming shapes are visible.
func (b *Builder) PiecePreviewCount(n int) *Builder {
	b.config.PiecePreviewCount = n
	return b
}

// AllowPrespawnActions lets held rotation buttons apply to spawning pieces.
func (b *Builder) AllowPrespawnActions(allow bool) *Builder {
	b.config.AllowPrespawnActions = allow
	return b
}

// RotationSystem selects the rotation system by name.
func (b *Builder) RotationSystem(name string) *Builder {
	b.config.RotationSystem = name
	return b
}

// SpawnDelay sets the wait before a new piece spawns.
func (b *Builder) SpawnDelay(d time.Duration) *Builder {
	b.config.SpawnDelay = d
	return b
}

// DelayedAutoShift sets the DAS delay.
func (b *Builder) DelayedAutoShift(d time.Duration) *Builder {
	b.config.DelayedAutoShift = d
	return b
}

// AutoRepeatRate sets the auto-repeat interval.
func (b *Builder) AutoRepeatRate(d time.Duration) *Builder {
	b.config.AutoRepeatRate = d
	return b
}

// FallDelayEquation sets how the fall delay derives from the gravity level.
func (b *Builder) FallDelayEquation(e DelayEquation) *Builder {
	b.config.FallDelayEquation = e
	return b
}

// FallDelayLowerBound clamps the fall delay from below.
func (b *Builder) FallDelayLowerBound(d extmath.ExtDuration) *Builder {
	b.config.FallDelayLowerBound = d
	return b
}

// SoftDropDivisor sets the soft-drop speedup factor.
func (b *Builder) SoftDropDivisor(f extmath.NonNegF64) *Builder {
	b.config.SoftDropDivisor = f
	return b
}

// LockDelayEquation sets how the lock delay derives from the gravity level.
func (b *Builder) LockDelayEquation(e DelayEquation) *Builder {
	b.config.LockDelayEquation = e
	return b
}

// LockDelayLowerBound clamps the lock delay from below.
func (b *Builder) LockDelayLowerBound(d extmath.ExtDuration) *Builder {
	b.config.LockDelayLowerBound = d
	return b
}

// LenientLockDelayReset also resets the lock deadline on failed actions.
func (b *Builder) LenientLockDelayReset(lenient bool) *Builder {
	b.config.LenientLockDelayReset = lenient
	return b
}

// CappedLockTimeFactor bounds total grounded time per piece.
func (b *Builder) CappedLockTimeFactor(f extmath.NonNegF64) *Builder {
	b.config.CappedLockTimeFactor = f
	return b
}

// LineClearDuration sets the line-clear suspension interval.
func (b *Builder) LineClearDuration(d time.Duration) *Builder {
	b.config.LineClearDuration = d
	return b
}

// UpdateDelaysEveryNLineClears sets the delay-progression cadence.
func (b *Builder) UpdateDelaysEveryNLineClears(n uint32) *Builder {
	b.config.UpdateDelaysEveryNLineClears = n
	return b
}

// EndConditions sets the stat thresholds that finish the game.
func (b *Builder) EndConditions(conds []EndCondition) *Builder {
	b.config.EndConditions = conds
	return b
}

// FeedbackVerbosity sets how much feedback the game emits.
func (b *Builder) FeedbackVerbosity(v Verbosity) *Builder {
	b.config.FeedbackVerbosity = v
	return b
}

// Seed sets the PRNG seed.
func (b *Builder) Seed(seed uint64) *Builder {
	b.seed = &seed
	return b
}

// Source sets the piece generation strategy and starting state.
func (b *Builder) Source(s *piece.Source) *Builder {
	b.source = s
	return b
}

// InitialFallDelay sets the fall delay at game start.
func (b *Builder) InitialFallDelay(d extmath.ExtDuration) *Builder {
	b.fallDelay = &d
	return b
}

// InitialLockDelay sets the lock delay at game start.
func (b *Builder) InitialLockDelay(d extmath.ExtDuration) *Builder {
	b.lockDelay = &d
	return b
}

// InitialValues applies a full set of initial values at once.
func (b *Builder) InitialValues(iv InitialValues) *Builder {
	b.Seed(iv.Seed)
	if iv.Source != nil {
		b.Source(iv.Source)
	}
	b.InitialFallDelay(iv.FallDelay)
	b.InitialLockDelay(iv.LockDelay)
	return b
}

// Build creates a Game from the collected configuration.
func (b *Builder) Build() (*Game, error) {
	return b.BuildModded(nil)
}

// BuildModded creates a Game with an ordered list of modifiers attached.
func (b *Builder) BuildModded(modifiers []Modifier) (*Game, error) {
	if b.config.PiecePreviewCount < 0 {
		return nil, &BuildError{Field: "piece_preview_count", Reason: "must not be negative"}
	}
	rotSys, ok := rotation.ByName(b.config.RotationSystem)
	if !ok {
		return nil, &BuildError{Field: "rotation_system", Reason: fmt.Sprintf("unknown system %q", b.config.RotationSystem)}
	}

	initVals := InitialValues{
		Seed:      rand.Uint64(),
		Source:    piece.NewRecencySource(),
		FallDelay: b.config.FallDelayEquation.Initial,
		LockDelay: b.config.LockDelayEquation.Initial,
	}
	if b.seed != nil {
		initVals.Seed = *b.seed
	}
	if b.source != nil {
		// Keep the exact generator state: a restored game must resume
		// mid-bag. Resetting counters is Clone's business, not ours.
		src := *b.source
		initVals.Source = &src
	}
	if b.fallDelay != nil {
		initVals.FallDelay = *b.fallDelay
	}
	if b.lockDelay != nil {
		initVals.LockDelay = *b.lockDelay
	}

	config := b.config
	config.EndConditions = append([]EndCondition(nil), b.config.EndConditions...)

	fallDelay := config.FallDelayLowerBound.Max(initVals.FallDelay)
	var bottomedOut *uint32
	if initVals.FallDelay.Cmp(config.FallDelayLowerBound) <= 0 {
		zero := uint32(0)
		bottomedOut = &zero
	}

	g := &Game{
		config:   config,
		initVals: initVals,
		rotSys:   rotSys,
		state: State{
			Buttons:           ButtonSet{},
			Rng:               rand.New(rand.NewSource(int64(initVals.Seed))),
			Source:            copySource(initVals.Source),
			Board:             board.New(),
			FallDelay:         fallDelay,
			LockDelay:         config.LockDelayLowerBound.Max(initVals.LockDelay),
			FallBottomedOutAt: bottomedOut,
			Events:            EventMap{EventSpawn: 0},
		},
		phase:     Phase{Kind: PhaseSpawning, SpawnDueAt: 0},
		modifiers: modifiers,
	}
	for len(g.state.Preview) < config.PiecePreviewCount {
		g.state.Preview = append(g.state.Preview, g.state.Source.Next(g.state.Rng))
	}
	return g, nil
}

func copySource(s *piece.Source) *piece.Source {
	c := *s
	return &c
}

// BuildError reports an invalid builder configuration.
type BuildError struct {
	Field  string
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build game: %s: %s", e.Field, e.Reason)
}
