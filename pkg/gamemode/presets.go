package gamemode

import (
	"math"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/extmath"
	"github.com/Strophox/tetro-tui-sub001/pkg/game"
)

// Preset is a named game mode: the stat players optimize for on the
// scoreboard plus a build function that configures the game.
type Preset struct {
	Name  string
	Goal  game.Stat
	Build func(*game.Builder) (*game.Game, error)
}

// gravityFallDelay is the fall delay at a given gravity level on the
// standard curve, 1s × 0.793^(level−1).
func gravityFallDelay(level uint32) extmath.ExtDuration {
	secs := math.Pow(0.793, float64(level-1))
	return extmath.Finite(time.Duration(secs * float64(time.Second)))
}

// fixedGravity pins the fall delay to the given level for the whole game.
func fixedGravity(b *game.Builder, level uint32) *game.Builder {
	return b.FallDelayEquation(game.DelayEquation{
		Initial: gravityFallDelay(level),
		Factor:  extmath.MustNonNegF64(1),
	})
}

// progressiveGravity makes the fall delay follow the standard curve as
// lines accumulate.
func progressiveGravity(b *game.Builder) *game.Builder {
	return b.FallDelayEquation(game.DelayEquation{
		Initial: gravityFallDelay(1),
		Factor:  extmath.MustNonNegF64(0.793),
	})
}

// FortyLines is the sprint mode: clear 40 lines as fast as possible.
func FortyLines() Preset {
	return Preset{
		Name: "40-Lines",
		Goal: game.TimeElapsed(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return fixedGravity(b.Clone(), 3).
				EndConditions([]game.EndCondition{
					{Stat: game.LinesCleared(40), Positive: true},
				}).
				Build()
		},
	}
}

// Marathon raises gravity with every tenth line and finishes on reaching
// gravity level 16.
func Marathon() Preset {
	return Preset{
		Name: "Marathon",
		Goal: game.PointsScored(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return progressiveGravity(b.Clone()).
				EndConditions([]game.EndCondition{
					{Stat: game.GravityReached(16), Positive: true},
				}).
				Build()
		},
	}
}

// TimeTrial scores as many points as possible in three minutes.
func TimeTrial() Preset {
	return Preset{
		Name: "Time Trial",
		Goal: game.PointsScored(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return fixedGravity(b.Clone(), 3).
				EndConditions([]game.EndCondition{
					{Stat: game.TimeElapsed(3 * time.Minute), Positive: true},
				}).
				Build()
		},
	}
}

// Master starts at instant gravity.
func Master() Preset {
	return Preset{
		Name: "Master",
		Goal: game.PointsScored(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return b.Clone().
				FallDelayEquation(game.DelayEquation{
					Initial: extmath.Finite(0),
					Factor:  extmath.MustNonNegF64(1),
				}).
				EndConditions([]game.EndCondition{
					{Stat: game.GravityReached(30), Positive: true},
				}).
				Build()
		},
	}
}

// Endless plays with progressive gravity and no end condition.
func Endless() Preset {
	return Preset{
		Name: "Endless",
		Goal: game.PointsScored(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return progressiveGravity(b.Clone()).
				EndConditions(nil).
				Build()
		},
	}
}

// Cheese digs through garbage lines with gaps.
func Cheese(lineLimit uint32, gapSize int) Preset {
	return Preset{
		Name: "Cheese",
		Goal: game.PiecesLocked(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return BuildCheese(b, lineLimit, gapSize, 1)
		},
	}
}

// Combo keeps a chain alive inside a four-wide well.
func Combo(comboLimit uint32, startLayout uint16) Preset {
	return Preset{
		Name: "Combo",
		Goal: game.TimeElapsed(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return BuildCombo(b, comboLimit, startLayout)
		},
	}
}

// Ascent climbs a scrolling garbage tower under frozen gravity.
func Ascent() Preset {
	return Preset{
		Name: "Ascent",
		Goal: game.LinesCleared(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return BuildAscent(b)
		},
	}
}

// Puzzle runs a fixed sequence of board setups to clear.
func Puzzle() Preset {
	return Preset{
		Name: "Puzzle",
		Goal: game.TimeElapsed(0),
		Build: func(b *game.Builder) (*game.Game, error) {
			return BuildPuzzle(b)
		},
	}
}

// Presets lists the built-in modes.
func Presets() []Preset {
	return []Preset{
		FortyLines(),
		Marathon(),
		TimeTrial(),
		Master(),
		Endless(),
		Cheese(18, 1),
		Combo(0, comboLayouts[0]),
		Ascent(),
		Puzzle(),
	}
}

// ByName returns the built-in preset with the given name.
func ByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
