package token

import (
	"log/slog"
	"os"
	"strings"
)

// identSpecial is the subset of the spec's symbol character class that is
// allowed to *chain onto* an already-started identifier run regardless of
// what has been seen so far. Colon and question mark are deliberately
// excluded from this set: they are far more often
// structural delimiters (map literals `key: value`, slices `a[s:e:step]`,
// the ternary `cond ? a : b`) than they are symbol characters, so they are
// tokenized like the other single-character operators instead of being
// greedily absorbed into a preceding symbol.
const identSpecial = "_+-.~\\/&<>$%#^"

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isIdentSpecial(b byte) bool { return strings.IndexByte(identSpecial, b) >= 0 }

func isIdentStart(b byte) bool { return isLetter(b) || b == '_' || isIdentSpecial(b) }

// keywords recognised as whole identifier runs; Boolean/None get their own
// kinds, the rest are plain Keyword tokens.
var keywords = map[string]Kind{
	"let": Keyword, "fn": Keyword, "if": Keyword, "then": Keyword,
	"else": Keyword, "for": Keyword, "in": Keyword, "while": Keyword,
	"match": Keyword, "return": Keyword, "del": Keyword, "break": Keyword,
	"use": Keyword, "None": ValueSymbol,
	"True": BooleanLiteral, "False": BooleanLiteral,
}

// operators is every recognised operator lexeme, longest first within each
// length class so a substring scan never under-matches.
var operators = []string{
	">>>", "**", "==", "!=", ">=", "<=", "&&", "||", "<<", ">>",
	"->", "~>", "..", ":=", "+=", "-=", "*=", "/=", "|>", "~~", "~=",
	"+", "-", "*", "/", "%", "!", "<", ">", "=", "?", ":", "|", "&",
	"++", "--",
}

var operatorSet = func() map[string]bool {
	m := make(map[string]bool, len(operators))
	for _, op := range operators {
		m[op] = true
	}
	return m
}()

const punctuationChars = "()[]{},;@"

// Lexer scans lumesh source into a lossless token stream: the union of all
// token ranges plus a trailing NotTokenized range (if any) covers every
// byte of the input (spec §8, tokenizer totality).
type Lexer struct {
	src    string
	pos    int
	tokens []Token
	diags  []Diagnostic
	log    *slog.Logger
}

// New creates a Lexer over src. A nil logger defaults to a stderr text
// logger at Info level, so the per-token Debug records stay silent; set
// LUME_DEBUG_LEXER to lower it to Debug and surface them, mirroring the
// teacher's DEVCMD_DEBUG_LEXER gate.
func New(src string, logger *slog.Logger) *Lexer {
	if logger == nil {
		level := slog.LevelInfo
		if os.Getenv("LUME_DEBUG_LEXER") != "" {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return &Lexer{src: src, log: logger}
}

// Tokenize runs the full cascade to completion and returns the parallel
// tokens/diagnostics slices described in spec §4.1.
func Tokenize(src string, logger *slog.Logger) ([]Token, []Diagnostic) {
	l := New(src, logger)
	return l.Run()
}

// Run scans the whole source and returns (tokens, diagnostics) of equal
// length, plus — if any bytes remain unconsumed after a scan failure — a
// trailing NotTokenized diagnostic covering the remainder.
func (l *Lexer) Run() ([]Token, []Diagnostic) {
	for l.pos < len(l.src) {
		tok, diag := l.next()
		l.tokens = append(l.tokens, tok)
		l.diags = append(l.diags, diag)
		l.log.Debug("token", "kind", tok.Kind.String(), "text", tok.Text(l.src))
	}
	return l.tokens, l.diags
}

func (l *Lexer) next() (Token, Diagnostic) {
	src := l.src
	pos := l.pos
	c := src[pos]

	switch {
	case c == ' ' || c == '\t' || c == '\r' || c == '\f':
		end := pos
		for end < len(src) && (src[end] == ' ' || src[end] == '\t' || src[end] == '\r' || src[end] == '\f') {
			end++
		}
		l.pos = end
		return Token{Kind: Whitespace, Range: StrSlice{pos, end}}, valid()

	case c == '\n':
		end := pos
		for end < len(src) && src[end] == '\n' {
			end++
		}
		l.pos = end
		return Token{Kind: LineBreak, Range: StrSlice{pos, end}}, valid()

	case c == '#':
		end := pos
		for end < len(src) && src[end] != '\n' {
			end++
		}
		l.pos = end
		return Token{Kind: Comment, Range: StrSlice{pos, end}}, valid()

	case strings.IndexByte(punctuationChars, c) >= 0:
		l.pos = pos + 1
		return Token{Kind: Punctuation, Range: StrSlice{pos, pos + 1}}, valid()

	case c == '"':
		return l.scanString(pos)

	case c == '\'':
		return l.scanRaw(pos)

	case c == '`':
		return l.scanTemplate(pos)

	case isDigit(c) || (c == '.' && pos+1 < len(src) && isDigit(src[pos+1])):
		return l.scanNumber(pos)

	case isIdentStart(c):
		return l.scanIdent(pos)

	default:
		return l.scanOperator(pos)
	}
}

func (l *Lexer) scanIdent(pos int) (Token, Diagnostic) {
	src := l.src
	end := pos
	alnumSeen := false
	for end < len(src) {
		b := src[end]
		switch {
		case isLetter(b) || b == '_':
			alnumSeen = true
			end++
		case isDigit(b):
			if !alnumSeen {
				// a digit never starts a symbol run on its own; it only
				// extends one that already saw a letter/underscore/digit.
				goto done
			}
			end++
		case isIdentSpecial(b):
			end++
		default:
			goto done
		}
	}
done:
	text := src[pos:end]
	l.pos = end
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Range: StrSlice{pos, end}}, valid()
	}
	if operatorSet[text] {
		return Token{Kind: operatorKind(text), Range: StrSlice{pos, end}}, valid()
	}
	return Token{Kind: Symbol, Range: StrSlice{pos, end}}, valid()
}

func operatorKind(text string) Kind {
	switch text {
	case "!":
		return OperatorPrefix
	case "++", "--":
		return OperatorPostfix
	default:
		return OperatorInfix
	}
}

func (l *Lexer) scanOperator(pos int) (Token, Diagnostic) {
	src := l.src
	for _, n := range []int{3, 2, 1} {
		if pos+n <= len(src) {
			cand := src[pos : pos+n]
			if operatorSet[cand] {
				l.pos = pos + n
				return Token{Kind: operatorKind(cand), Range: StrSlice{pos, pos + n}}, valid()
			}
		}
	}
	// Unrecognised character: report it and keep scanning past it so a
	// single bad byte doesn't hide every diagnostic after it.
	l.pos = pos + 1
	return Token{Kind: Symbol, Range: StrSlice{pos, pos + 1}}, single(IllegalChar, StrSlice{pos, pos + 1})
}

func (l *Lexer) scanNumber(pos int) (Token, Diagnostic) {
	src := l.src
	end := pos
	isFloat := false
	for end < len(src) && isDigit(src[end]) {
		end++
	}
	if end < len(src) && src[end] == '.' && end+1 < len(src) && isDigit(src[end+1]) {
		isFloat = true
		end++
		for end < len(src) && isDigit(src[end]) {
			end++
		}
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		e := end + 1
		if e < len(src) && (src[e] == '+' || src[e] == '-') {
			e++
		}
		if e < len(src) && isDigit(src[e]) {
			isFloat = true
			end = e
			for end < len(src) && isDigit(src[end]) {
				end++
			}
		}
	}
	l.pos = end
	kind := IntegerLiteral
	if isFloat {
		kind = FloatLiteral
	}
	return Token{Kind: kind, Range: StrSlice{pos, end}}, valid()
}

func (l *Lexer) scanString(pos int) (Token, Diagnostic) {
	src := l.src
	end := pos + 1
	var badEscapes []StrSlice
	for end < len(src) && src[end] != '"' {
		if src[end] == '\\' && end+1 < len(src) {
			switch src[end+1] {
			case 'n', 't', 'r', '\\', '"', '0':
				end += 2
				continue
			case 'u':
				if end+2 < len(src) && src[end+2] == '{' {
					close := strings.IndexByte(src[end+3:], '}')
					if close >= 0 {
						end = end + 3 + close + 1
						continue
					}
				}
				badEscapes = append(badEscapes, StrSlice{end, end + 2})
				end += 2
				continue
			default:
				badEscapes = append(badEscapes, StrSlice{end, end + 2})
				end += 2
				continue
			}
		}
		end++
	}
	if end >= len(src) {
		l.pos = end
		return Token{Kind: StringLiteral, Range: StrSlice{pos, end}}, single(InvalidStringEscapes, StrSlice{pos, end})
	}
	end++ // closing quote
	l.pos = end
	if len(badEscapes) > 0 {
		return Token{Kind: StringLiteral, Range: StrSlice{pos, end}}, Diagnostic{Kind: InvalidStringEscapes, Ranges: badEscapes}
	}
	return Token{Kind: StringLiteral, Range: StrSlice{pos, end}}, valid()
}

func (l *Lexer) scanRaw(pos int) (Token, Diagnostic) {
	src := l.src
	end := pos + 1
	for end < len(src) && src[end] != '\'' {
		end++
	}
	if end >= len(src) {
		l.pos = end
		return Token{Kind: StringRaw, Range: StrSlice{pos, end}}, single(NotTokenized, StrSlice{pos, end})
	}
	end++
	l.pos = end
	return Token{Kind: StringRaw, Range: StrSlice{pos, end}}, valid()
}

func (l *Lexer) scanTemplate(pos int) (Token, Diagnostic) {
	src := l.src
	end := pos + 1
	depth := 0
	for end < len(src) {
		switch {
		case src[end] == '`' && depth == 0:
			end++
			l.pos = end
			return Token{Kind: StringTemplate, Range: StrSlice{pos, end}}, valid()
		case src[end] == '$' && end+1 < len(src) && src[end+1] == '{':
			depth++
			end += 2
		case src[end] == '}' && depth > 0:
			depth--
			end++
		default:
			end++
		}
	}
	l.pos = end
	return Token{Kind: StringTemplate, Range: StrSlice{pos, end}}, single(NotTokenized, StrSlice{pos, end})
}

// TemplateParts splits a StringTemplate token's raw text into literal
// segments and `${...}` interpolation expression sources, preserving the
// original byte offsets so each part can be re-lexed/parsed independently
// (spec §3: "interpolation points recognised as sub-token ranges").
func TemplateParts(src string, tok Token) (literals []StrSlice, exprs []StrSlice) {
	text := tok.Range
	pos := text.Start + 1 // skip opening backtick
	end := text.End - 1   // skip closing backtick
	litStart := pos
	for pos < end {
		if src[pos] == '$' && pos+1 < end && src[pos+1] == '{' {
			literals = append(literals, StrSlice{litStart, pos})
			depth := 1
			exprStart := pos + 2
			pos += 2
			for pos < end && depth > 0 {
				if src[pos] == '{' {
					depth++
				} else if src[pos] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				pos++
			}
			exprs = append(exprs, StrSlice{exprStart, pos})
			pos++ // skip closing }
			litStart = pos
			continue
		}
		pos++
	}
	literals = append(literals, StrSlice{litStart, end})
	return literals, exprs
}

// StripTokens filters Whitespace/Comment tokens and their matching
// diagnostics, the cleaned stream the parser consumes. LineBreak is kept:
// it is a statement terminator, not decoration.
func StripTokens(tokens []Token, diags []Diagnostic) ([]Token, []Diagnostic) {
	out := make([]Token, 0, len(tokens))
	outDiag := make([]Diagnostic, 0, len(diags))
	for i, t := range tokens {
		if t.Kind == Whitespace || t.Kind == Comment {
			continue
		}
		out = append(out, t)
		outDiag = append(outDiag, diags[i])
	}
	return out, outDiag
}
