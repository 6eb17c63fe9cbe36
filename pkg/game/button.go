package game

// Button is one of the closed set of game inputs.
type Button int

const (
	ButtonMoveLeft Button = iota
	ButtonMoveRight
	ButtonRotateLeft
	ButtonRotateRight
	ButtonRotateAround
	ButtonDropSoft
	ButtonDropHard
	ButtonDropSonic
	ButtonHoldPiece

	// ButtonCount is the number of distinct buttons.
	ButtonCount
)

// String returns the name of the button.
func (b Button) String() string {
	names := map[Button]string{
		ButtonMoveLeft:     "move_left",
		ButtonMoveRight:    "move_right",
		ButtonRotateLeft:   "rotate_left",
		ButtonRotateRight:  "rotate_right",
		ButtonRotateAround: "rotate_around",
		ButtonDropSoft:     "drop_soft",
		ButtonDropHard:     "drop_hard",
		ButtonDropSonic:    "drop_sonic",
		ButtonHoldPiece:    "hold_piece",
	}
	return names[b]
}

// ButtonSet is the set of currently held buttons.
type ButtonSet [ButtonCount]bool

// With returns the set with the given buttons additionally pressed.
func (s ButtonSet) With(buttons ...Button) ButtonSet {
	for _, b := range buttons {
		s[b] = true
	}
	return s
}

// Without returns the set with the given buttons released.
func (s ButtonSet) Without(buttons ...Button) ButtonSet {
	for _, b := range buttons {
		s[b] = false
	}
	return s
}

// Pressed reports whether the button is held.
func (s ButtonSet) Pressed(b Button) bool {
	return s[b]
}

// Packed encodes the set as a fixed-width bitfield, bit i for button i.
func (s ButtonSet) Packed() uint16 {
	var bits uint16
	for i, pressed := range s {
		if pressed {
			bits |= 1 << i
		}
	}
	return bits
}

// UnpackButtons decodes a bitfield produced by Packed.
func UnpackButtons(bits uint16) ButtonSet {
	var s ButtonSet
	for i := range s {
		s[i] = bits&(1<<i) != 0
	}
	return s
}
