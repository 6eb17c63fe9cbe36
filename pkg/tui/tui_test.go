package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/piece"
)

func TestFormatFeedbackAccolade(t *testing.T) {
	msg := game.Message{
		Kind: game.MsgAccolade,
		Accolade: &game.Accolade{
			ScoreBonus:   800,
			Shape:        piece.T,
			Spin:         true,
			LinesCleared: 2,
			Combo:        3,
			BackToBack:   2,
		},
	}
	s := FormatFeedback(msg)
	assert.Contains(t, s, "+800")
	assert.Contains(t, s, "T-Spin")
	assert.Contains(t, s, "Double")
	assert.Contains(t, s, "[3.combo]")
	assert.Contains(t, s, "(2.B2B)")
}

func TestFormatFeedbackSkipsNoise(t *testing.T) {
	assert.Equal(t, "", FormatFeedback(game.Message{Kind: game.MsgPieceSpawned, Shape: piece.I}))
	assert.Equal(t, "", FormatFeedback(game.Message{Kind: game.MsgHardDrop}))
	assert.Equal(t, "hello", FormatFeedback(game.Message{Kind: game.MsgText, Text: "hello"}))
}

func TestClearName(t *testing.T) {
	assert.Equal(t, "Single", clearName(1))
	assert.Equal(t, "Quadruple", clearName(4))
	assert.Equal(t, "7-Clear", clearName(7))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:05.0", formatDuration(5*time.Second))
	assert.Equal(t, "1:30.5", formatDuration(90*time.Second+500*time.Millisecond))
}

func TestGameClockPause(t *testing.T) {
	c := NewGameClock()
	assert.False(t, c.IsPaused())

	c.Pause()
	frozen := c.Now()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, c.Now(), "paused clock must not advance")

	c.Resume()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, c.Now(), frozen, "resumed clock advances")

	c.Toggle()
	assert.True(t, c.IsPaused())
	c.Toggle()
	assert.False(t, c.IsPaused())
}
