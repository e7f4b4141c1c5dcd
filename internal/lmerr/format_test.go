package lmerr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumesh-lang/lumesh/internal/token"
)

func TestFormatPointsAtColumn(t *testing.T) {
	src := "let x = 1 +\nundefined_name"
	span := token.StrSlice{Start: 12, End: 26} // "undefined_name" on line 2
	err := New(SymbolNotDefined, span, src, "undefined_name is not declared")

	out := Format(err, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "SymbolNotDefined: undefined_name is not declared", lines[0])
	assert.Equal(t, "undefined_name", lines[1])
	assert.Equal(t, "^~~~~~~~~~~~~~", lines[2])
}

func TestFormatClampsWidthToLineLength(t *testing.T) {
	src := "oops"
	span := token.StrSlice{Start: 0, End: 100}
	err := New(TypeError, span, src, "bad")

	out := Format(err, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "oops", lines[1])
	assert.Equal(t, "^~~~", lines[2])
}

func TestFormatNonLmerrFallsBackToErrorText(t *testing.T) {
	out := Format(assertErr{"boom"}, false)
	assert.Equal(t, "boom", out)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
