// Package highlight implements the REPL's `highlight(line) -> ansi_string`
// hook (spec §6): re-tokenize the current input line and render each
// token in an ANSI color keyed by its token.Kind.
//
// Grounded on ardnew-aenv/cli/cmd/repl/repl.go's lipgloss.Style palette
// (one package-level lipgloss.NewStyle().Foreground(...) per concern,
// reused across renders) adapted from a fixed prompt/result/error/hint
// palette to one keyed by lumesh's own token.Kind taxonomy.
package highlight

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumesh-lang/lumesh/internal/token"
)

var (
	keywordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	symbolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	valueSymStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	operatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	punctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Underline(true)
)

func styleFor(k token.Kind) lipgloss.Style {
	switch k {
	case token.Keyword:
		return keywordStyle
	case token.Symbol:
		return symbolStyle
	case token.ValueSymbol, token.BooleanLiteral:
		return valueSymStyle
	case token.StringLiteral, token.StringRaw, token.StringTemplate, token.RegexLiteral:
		return stringStyle
	case token.IntegerLiteral, token.FloatLiteral, token.TimeLiteral:
		return numberStyle
	case token.Operator, token.OperatorPrefix, token.OperatorInfix, token.OperatorPostfix:
		return operatorStyle
	case token.Punctuation:
		return punctStyle
	case token.Comment:
		return commentStyle
	default:
		return lipgloss.NewStyle()
	}
}

// Line re-tokenizes src and renders it as an ANSI string, one styled run
// per token plus any gap the tokenizer's diagnostics mark as
// NotTokenized (rendered in errorStyle, spec §4.2's tokenizer-totality
// invariant: the diagnostics always cover whatever the tokens don't).
func Line(src string) string {
	toks, diags := token.Tokenize(src, discardLogger())

	var b strings.Builder
	pos := 0
	for _, t := range toks {
		if t.Range.Start > pos {
			b.WriteString(errorStyle.Render(src[pos:t.Range.Start]))
		}
		b.WriteString(styleFor(t.Kind).Render(t.Text(src)))
		pos = t.Range.End
	}
	if pos < len(src) {
		b.WriteString(errorStyle.Render(src[pos:]))
	}
	_ = diags // diagnostics already implied by the gaps rendered above
	return b.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
