// Package token defines the lexical token set and diagnostics produced by
// the lumesh tokenizer (C1 diagnostics & source spans, C2 tokenizer).
package token

// StrSlice is a byte range into the original source string. Tokens and
// diagnostics carry one so that error printing can always re-locate the
// offending text, even after the token stream itself has been discarded.
type StrSlice struct {
	Start int
	End   int
}

// Len returns the number of bytes the slice covers.
func (s StrSlice) Len() int { return s.End - s.Start }

// Text returns the slice of src this range covers.
func (s StrSlice) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Union returns the smallest StrSlice covering both s and other.
func (s StrSlice) Union(other StrSlice) StrSlice {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return StrSlice{Start: start, End: end}
}

// Kind enumerates the lexical categories a Token can belong to.
type Kind int

const (
	Punctuation Kind = iota
	Operator
	OperatorPrefix
	OperatorInfix
	OperatorPostfix
	Keyword
	ValueSymbol
	Symbol
	StringLiteral
	StringRaw
	StringTemplate
	IntegerLiteral
	FloatLiteral
	BooleanLiteral
	TimeLiteral
	RegexLiteral
	Whitespace
	LineBreak
	Comment
	EOF
)

var kindNames = [...]string{
	Punctuation:    "Punctuation",
	Operator:       "Operator",
	OperatorPrefix: "OperatorPrefix",
	OperatorInfix:  "OperatorInfix",
	OperatorPostfix: "OperatorPostfix",
	Keyword:        "Keyword",
	ValueSymbol:    "ValueSymbol",
	Symbol:         "Symbol",
	StringLiteral:  "StringLiteral",
	StringRaw:      "StringRaw",
	StringTemplate: "StringTemplate",
	IntegerLiteral: "IntegerLiteral",
	FloatLiteral:   "FloatLiteral",
	BooleanLiteral: "BooleanLiteral",
	TimeLiteral:    "Time",
	RegexLiteral:   "Regex",
	Whitespace:     "Whitespace",
	LineBreak:      "LineBreak",
	Comment:        "Comment",
	EOF:            "EOF",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is a single lexical unit: a classification plus the byte range it
// occupies in the source. Tokens do not carry their own copy of the text;
// callers re-slice the source via Range.Text when they need it.
type Token struct {
	Kind  Kind
	Range StrSlice
}

// Text returns the token's source text.
func (t Token) Text(src string) string { return t.Range.Text(src) }

func (t Token) String() string { return t.Kind.String() }
