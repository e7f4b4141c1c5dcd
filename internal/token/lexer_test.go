package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizerTotality(t *testing.T) {
	sources := []string{
		`let x = 1 + 2 * 3`,
		`for i in 1..4 { xs = xs + [i*i] }`,
		`let m = { a: { b: 42 } }`,
		`ls -la foo | grep bar >> out.txt`,
		"`hello ${name}!`",
		"",
		"??!!",
	}
	for _, src := range sources {
		toks, _ := Tokenize(src, nil)
		covered := 0
		for _, tok := range toks {
			require.Equal(t, covered, tok.Range.Start, "gap before token in %q", src)
			covered = tok.Range.End
		}
		require.Equal(t, len(src), covered, "tokens must cover all of %q", src)
	}
}

func TestSymbolPolicyAbsorbsEmbeddedOperatorChars(t *testing.T) {
	toks, diags := Tokenize("a%b+c>d", nil)
	stripped, strippedDiags := StripTokens(toks, diags)
	require.Len(t, stripped, 1)
	assert.Equal(t, Symbol, stripped[0].Kind)
	assert.Equal(t, "a%b+c>d", stripped[0].Text("a%b+c>d"))
	assert.True(t, strippedDiags[0].IsValid())
}

func TestRangeOperatorSplitsFromIntegers(t *testing.T) {
	src := "1..4"
	toks, _ := Tokenize(src, nil)
	assert.Equal(t, []Kind{IntegerLiteral, OperatorInfix, IntegerLiteral}, kinds(toks))
	assert.Equal(t, "1", toks[0].Text(src))
	assert.Equal(t, "..", toks[1].Text(src))
	assert.Equal(t, "4", toks[2].Text(src))
}

func TestMapLiteralColonIsolated(t *testing.T) {
	src := "{a: 1}"
	toks, _ := Tokenize(src, nil)
	stripped, _ := StripTokens(toks, make([]Diagnostic, len(toks)))
	_ = stripped
	var sawColon bool
	for _, tok := range toks {
		if tok.Kind == OperatorInfix && tok.Text(src) == ":" {
			sawColon = true
		}
	}
	assert.True(t, sawColon, "colon must tokenize standalone for map literals")
}

func TestDashedFlagIsOneSymbol(t *testing.T) {
	src := "ls --release -rf"
	toks, _ := Tokenize(src, nil)
	stripped, _ := StripTokens(toks, make([]Diagnostic, len(toks)))
	var texts []string
	for _, tok := range stripped {
		texts = append(texts, tok.Text(src))
	}
	assert.Equal(t, []string{"ls", "--release", "-rf"}, texts)
}

func TestNegativeNumberSplitsFromMinus(t *testing.T) {
	src := "x - 5"
	toks, _ := Tokenize(src, nil)
	stripped, _ := StripTokens(toks, make([]Diagnostic, len(toks)))
	require.Len(t, stripped, 3)
	assert.Equal(t, Symbol, stripped[0].Kind)
	assert.Equal(t, OperatorInfix, stripped[1].Kind)
	assert.Equal(t, IntegerLiteral, stripped[2].Kind)
}

func TestFloatAndScientificLiterals(t *testing.T) {
	for _, src := range []string{"3.14", "1e6", "2.5e-3"} {
		toks, _ := Tokenize(src, nil)
		require.Len(t, toks, 1)
		assert.Equal(t, FloatLiteral, toks[0].Kind)
		assert.Equal(t, src, toks[0].Text(src))
	}
}

func TestStringTemplateInterpolation(t *testing.T) {
	src := "`hi ${name}, you are ${1+2}`"
	toks, _ := Tokenize(src, nil)
	require.Len(t, toks, 1)
	require.Equal(t, StringTemplate, toks[0].Kind)
	lits, exprs := TemplateParts(src, toks[0])
	require.Len(t, exprs, 2)
	assert.Equal(t, "name", exprs[0].Text(src))
	assert.Equal(t, "1+2", exprs[1].Text(src))
	require.Len(t, lits, 3)
	assert.Equal(t, "hi ", lits[0].Text(src))
}

func TestIllegalCharacterDiagnostic(t *testing.T) {
	_, diags := Tokenize("x \xff y", nil)
	var sawIllegal bool
	for _, d := range diags {
		if d.Kind == IllegalChar {
			sawIllegal = true
		}
	}
	assert.True(t, sawIllegal)
}
