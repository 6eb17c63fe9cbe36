package game

import (
	"math"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

// DelayEquation computes a delay from the gravity level as
// Initial × Factor^(level−1). A factor of 1 keeps the delay constant; the
// original marathon curve uses factor 0.793.
type DelayEquation struct {
	Initial extmath.ExtDuration `json:"initial"`
	Factor  extmath.NonNegF64   `json:"factor"`
}

// Eval computes the delay at the given gravity level (level 1 yields
// Initial).
func (e DelayEquation) Eval(level uint32) extmath.ExtDuration {
	if level <= 1 {
		return e.Initial
	}
	pow := math.Pow(e.Factor.Get(), float64(level-1))
	factor, ok := extmath.NewNonNegF64(pow)
	if !ok {
		factor = extmath.InfF64()
	}
	return e.Initial.Mul(factor)
}

// Config is the immutable per-game configuration. Mutating it after a game
// has been built is the business of modifiers only.
type Config struct {
	// PiecePreviewCount is how many upcoming shapes are visible.
	PiecePreviewCount int `json:"piece_preview_count"`
	// AllowPrespawnActions applies held rotation buttons to a piece as it
	// spawns.
	AllowPrespawnActions bool `json:"allow_prespawn_actions"`
	// RotationSystem names the rotation system, resolved via
	// rotation.ByName.
	RotationSystem string `json:"rotation_system"`
	// SpawnDelay is how long the game waits before spawning a new piece.
	SpawnDelay time.Duration `json:"spawn_delay"`
	// DelayedAutoShift is the delay after a move press before auto-repeat
	// begins.
	DelayedAutoShift time.Duration `json:"delayed_auto_shift"`
	// AutoRepeatRate is the interval between auto-shifts while a
	// direction is held.
	AutoRepeatRate time.Duration `json:"auto_repeat_rate"`
	// FallDelayEquation computes the fall delay from the gravity level.
	FallDelayEquation DelayEquation `json:"fall_delay_equation"`
	// FallDelayLowerBound clamps the fall delay from below.
	FallDelayLowerBound extmath.ExtDuration `json:"fall_delay_lower_bound"`
	// SoftDropDivisor divides the fall delay while soft drop is held.
	// An infinite divisor makes soft drop instant.
	SoftDropDivisor extmath.NonNegF64 `json:"soft_drop_divisor"`
	// LockDelayEquation computes the lock delay from the gravity level.
	LockDelayEquation DelayEquation `json:"lock_delay_equation"`
	// LockDelayLowerBound clamps the lock delay from below.
	LockDelayLowerBound extmath.ExtDuration `json:"lock_delay_lower_bound"`
	// LenientLockDelayReset also resets the lock deadline on merely
	// attempted moves and rotations, not only successful ones.
	LenientLockDelayReset bool `json:"lenient_lock_delay_reset"`
	// CappedLockTimeFactor bounds the total grounded time of a piece to
	// this multiple of the lock delay.
	CappedLockTimeFactor extmath.NonNegF64 `json:"capped_lock_time_factor"`
	// LineClearDuration suspends cleared lines for this long before
	// removal.
	LineClearDuration time.Duration `json:"line_clear_duration"`
	// UpdateDelaysEveryNLineClears is the cadence, in cleared lines, of
	// recomputing the fall and lock delays. Zero disables progression.
	UpdateDelaysEveryNLineClears uint32 `json:"update_delays_every_n_lineclears"`
	// EndConditions lists the stat thresholds that finish the game.
	EndConditions []EndCondition `json:"end_conditions"`
	// FeedbackVerbosity gates which feedback messages are emitted.
	FeedbackVerbosity Verbosity `json:"feedback_verbosity"`
}

// DefaultConfig returns a guideline-flavored configuration with marathon
// delay progression.
func DefaultConfig() Config {
	return Config{
		PiecePreviewCount:    4,
		AllowPrespawnActions: false,
		RotationSystem:       "super",
		SpawnDelay:           100 * time.Millisecond,
		DelayedAutoShift:     167 * time.Millisecond,
		AutoRepeatRate:       33 * time.Millisecond,
		FallDelayEquation: DelayEquation{
			Initial: extmath.Finite(time.Second),
			Factor:  extmath.MustNonNegF64(0.793),
		},
		FallDelayLowerBound: extmath.Finite(823907 * time.Nanosecond),
		SoftDropDivisor:     extmath.MustNonNegF64(20),
		LockDelayEquation: DelayEquation{
			Initial: extmath.Finite(500 * time.Millisecond),
			Factor:  extmath.MustNonNegF64(0.96),
		},
		LockDelayLowerBound:          extmath.Finite(150 * time.Millisecond),
		LenientLockDelayReset:        false,
		CappedLockTimeFactor:         extmath.MustNonNegF64(5),
		LineClearDuration:            200 * time.Millisecond,
		UpdateDelaysEveryNLineClears: 10,
		EndConditions:                nil,
		FeedbackVerbosity:            VerbosityNormal,
	}
}

// InitialValues are the seed values a restored or replayed game must
// reproduce exactly. They are kept apart from Config so the seed of a
// running game stays recoverable.
type InitialValues struct {
	// Seed for the game's PRNG.
	Seed uint64 `json:"seed"`
	// Source is the piece generation strategy and its starting state.
	Source *piece.Source `json:"source"`
	// FallDelay at the beginning of the game.
	FallDelay extmath.ExtDuration `json:"fall_delay"`
	// LockDelay at the beginning of the game.
	LockDelay extmath.ExtDuration `json:"lock_delay"`
}
