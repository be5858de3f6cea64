package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/lobby-server/internal/color"
)

func TestNewPositionStartsWithWhite(t *testing.T) {
	p := NewPosition()

	assert.Equal(t, color.White, p.Turn())
	assert.Contains(t, p.FEN(), "rnbqkbnr/pppppppp")
	assert.False(t, p.IsCheckmate())
	assert.False(t, p.IsStalemate())
}

func TestApplyUCIFlipsTurn(t *testing.T) {
	p := NewPosition()

	require.NoError(t, p.ApplyUCI("e2e4"))
	assert.Equal(t, color.Black, p.Turn())

	require.NoError(t, p.ApplyUCI("e7e5"))
	assert.Equal(t, color.White, p.Turn())
}

func TestApplyUCIFormatErrors(t *testing.T) {
	p := NewPosition()

	for _, text := range []string{"", "e2", "e2e", "knight to f3", "e9e4", "i2i4", "e2e4x"} {
		assert.ErrorIs(t, p.ApplyUCI(text), ErrMoveFormat, "input %q", text)
	}
	// Position untouched by rejected input.
	assert.Equal(t, color.White, p.Turn())
}

func TestApplyUCIIllegalMove(t *testing.T) {
	p := NewPosition()

	assert.ErrorIs(t, p.ApplyUCI("e2e5"), ErrIllegalMove)
	assert.ErrorIs(t, p.ApplyUCI("e7e5"), ErrIllegalMove) // black piece, white to move
	assert.Equal(t, color.White, p.Turn())
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	p := NewPosition()

	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, p.ApplyUCI(m))
	}

	assert.True(t, p.IsCheckmate())
	assert.False(t, p.IsStalemate())
	assert.False(t, p.IsInsufficientMaterial())
	assert.False(t, p.IsMoveLimitDraw())
	assert.False(t, p.IsRepetitionDraw())
}
