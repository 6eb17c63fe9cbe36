package replay

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/gamemode"
)

// Input is one recorded button transition: the full packed button set that
// became held at the given game time.
type Input struct {
	At      time.Duration `json:"at"`
	Buttons uint16        `json:"buttons"`
}

// Recording is everything needed to reproduce a game bit-exactly: the
// configuration, the initial values, the modifier descriptors and the
// timestamped input trace.
type Recording struct {
	Config         game.Config        `json:"config"`
	InitialValues  game.InitialValues `json:"initial_values"`
	ModDescriptors []string           `json:"mod_descriptors,omitempty"`
	Inputs         []Input            `json:"inputs"`
}

// Marshal encodes the recording as canonical JSON: field order is fixed by
// the struct layout, so equal recordings produce equal bytes.
func (r Recording) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a recording from its Marshal form.
func Unmarshal(data []byte) (Recording, error) {
	var r Recording
	if err := json.Unmarshal(data, &r); err != nil {
		return Recording{}, fmt.Errorf("decode recording: %w", err)
	}
	return r, nil
}

// Rebuild constructs a fresh game with the recording's configuration,
// initial values and modifiers, ready to be driven.
func (r Recording) Rebuild() (*game.Game, error) {
	builder := game.NewBuilder().
		Config(r.Config).
		InitialValues(r.InitialValues)
	return gamemode.Reconstruct(builder, r.ModDescriptors)
}

// Replay rebuilds the game and feeds it the recorded input trace. It
// returns the finished game and the full feedback in dispatch order.
func (r Recording) Replay() (*game.Game, []game.Message, error) {
	g, err := r.Rebuild()
	if err != nil {
		return nil, nil, err
	}
	var all []game.Message
	for _, in := range r.Inputs {
		buttons := game.UnpackButtons(in.Buttons)
		msgs, err := g.Update(&buttons, in.At)
		if err != nil {
			return nil, nil, fmt.Errorf("replay input at %v: %w", in.At, err)
		}
		all = append(all, msgs...)
	}
	return g, all, nil
}

// Recorder captures the input trace of a live game alongside the data to
// rebuild it.
type Recorder struct {
	recording Recording
}

// NewRecorder snapshots the game's reproduction data. Create the recorder
// before driving the game, then note every button change passed to Update.
func NewRecorder(g *game.Game) *Recorder {
	return &Recorder{recording: Recording{
		Config:         g.Config(),
		InitialValues:  g.InitialValues(),
		ModDescriptors: g.Modifiers(),
	}}
}

// Note records a button transition fed to the game at the given time.
// Updates without a button change need no note.
func (r *Recorder) Note(at time.Duration, buttons *game.ButtonSet) {
	if buttons == nil {
		return
	}
	r.recording.Inputs = append(r.recording.Inputs, Input{At: at, Buttons: buttons.Packed()})
}

// Recording returns the captured recording.
func (r *Recorder) Recording() Recording {
	return r.recording
}
