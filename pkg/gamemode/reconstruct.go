package gamemode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
)

// Reconstruct re-attaches modifiers to a fresh game from their textual
// descriptors, so a saved or replayed game is rebuilt with the exact same
// mode behavior. A descriptor's first line is the modifier id, the optional
// second line its JSON-encoded arguments.
//
// At most one of the descriptors may be a game-building mode (cheese,
// ascent, puzzle); the remaining ones compound onto the built game.
func Reconstruct(builder *game.Builder, descriptors []string) (*game.Game, error) {
	var compounding []game.Modifier
	var buildID string
	var build func(*game.Builder) (*game.Game, error)

	setBuilder := func(id string, fn func(*game.Builder) (*game.Game, error)) error {
		if build != nil {
			return fmt.Errorf("incompatible mods: %q + %q", buildID, id)
		}
		buildID = id
		build = fn
		return nil
	}

	for _, descriptor := range descriptors {
		id, argsJSON, _ := strings.Cut(descriptor, "\n")
		switch id {
		case CheeseModID:
			var args cheeseArgs
			if err := parseModArgs(id, argsJSON, &args); err != nil {
				return nil, err
			}
			err := setBuilder(id, func(b *game.Builder) (*game.Game, error) {
				return BuildCheese(b, args.LineLimit, args.GapSize, args.Gravity)
			})
			if err != nil {
				return nil, err
			}

		case AscentModID:
			if err := setBuilder(id, BuildAscent); err != nil {
				return nil, err
			}

		case PuzzleModID:
			if err := setBuilder(id, BuildPuzzle); err != nil {
				return nil, err
			}

		case ComboModID:
			var args comboArgs
			if err := parseModArgs(id, argsJSON, &args); err != nil {
				return nil, err
			}
			compounding = append(compounding, ComboBoardModifier(args.StartLayout))

		case CustomBoardModID:
			var rows []string
			if err := parseModArgs(id, argsJSON, &rows); err != nil {
				return nil, err
			}
			compounding = append(compounding, CustomStartBoardModifier(rows))

		default:
			return nil, fmt.Errorf("unrecognized mod %q", id)
		}
	}

	if build != nil {
		g, err := build(builder)
		if err != nil {
			return nil, err
		}
		g.AppendModifiers(compounding...)
		return g, nil
	}
	return builder.BuildModded(compounding)
}

func parseModArgs(id, argsJSON string, out any) error {
	if argsJSON == "" {
		return fmt.Errorf("mod args missing for %q", id)
	}
	if err := json.Unmarshal([]byte(argsJSON), out); err != nil {
		return fmt.Errorf("mod args parse error for %s: %w", id, err)
	}
	return nil
}
