// Package lmerr implements lumesh's unified error model (spec §4.7, §7):
// two top-level kinds, SyntaxError and RuntimeError, both carrying a
// human message, the source span or AST context for display, and a
// stable numeric code used as the process exit status in script mode.
//
// Grounded on the teacher's pkgs/errors/errors.go (New/Wrap/WithContext,
// a string-constant Kind taxonomy) adapted to spec's closed error kind
// enums and numeric codes, and discoverable via the stdlib errors
// package (errors.As) rather than string matching.
package lmerr

import (
	"fmt"

	"github.com/lumesh-lang/lumesh/internal/token"
)

// SyntaxKind enumerates what went wrong while tokenizing or parsing.
type SyntaxKind int

const (
	TokenizationErrors SyntaxKind = iota + 1
	RecursionDepthSyntax
	Expected
	UnclosedDelimiter
	InvalidDefaultValue
	NomError
)

func (k SyntaxKind) String() string {
	switch k {
	case TokenizationErrors:
		return "TokenizationErrors"
	case RecursionDepthSyntax:
		return "RecursionDepth"
	case Expected:
		return "Expected"
	case UnclosedDelimiter:
		return "UnclosedDelimiter"
	case InvalidDefaultValue:
		return "InvalidDefaultValue"
	case NomError:
		return "NomError"
	default:
		return "Unknown"
	}
}

// syntaxPreference orders SyntaxKind by the "more informative wins" rule
// spec §4.2 gives for combining two alternate parse errors: lower number
// wins.
var syntaxPreference = map[SyntaxKind]int{
	TokenizationErrors:   0,
	RecursionDepthSyntax: 1,
	Expected:             2,
	UnclosedDelimiter:    2,
	InvalidDefaultValue:  2,
	NomError:             3,
}

// SyntaxError is produced by the tokenizer (C2) or parser (C3).
type SyntaxError struct {
	Kind    SyntaxKind
	Message string
	Span    token.StrSlice
	Src     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Code returns the stable exit status for this error.
func (e *SyntaxError) Code() int { return 100 + int(e.Kind) }

// Prefer implements the "more informative wins" combination rule: it
// returns whichever of a/b should survive when the parser tried two
// alternative productions and both failed.
func Prefer(a, b *SyntaxError) *SyntaxError {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if syntaxPreference[a.Kind] <= syntaxPreference[b.Kind] {
		return a
	}
	return b
}

func NewSyntax(kind SyntaxKind, span token.StrSlice, src, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span, Src: src}
}

// RuntimeKind is the taxonomy from spec §4.7, abbreviated comment kept per
// entry only where the name alone doesn't make the failure obvious.
type RuntimeKind int

const (
	CannotApply RuntimeKind = iota + 1
	SymbolNotDefined
	CommandFailed
	ForNonList
	RecursionDepthRuntime
	PermissionDenied
	ProgramNotFound
	CustomError
	Redeclaration
	UndeclaredVariable
	NoMatchingBranch
	TooManyArguments
	ArgumentMismatch
	InvalidDefaultValueRuntime
	InvalidOperator
	IndexOutOfBounds
	KeyNotFound
	MethodNotFound
	NoModuleDefined
	NotAFunction
	TypeError
	EarlyReturn
	EarlyBreak
	Overflow
	WildcardNotMatched
	BuiltinFailed
	Terminated
	IoDetailed
	Io
)

var runtimeNames = map[RuntimeKind]string{
	CannotApply:                "CannotApply",
	SymbolNotDefined:           "SymbolNotDefined",
	CommandFailed:              "CommandFailed",
	ForNonList:                 "ForNonList",
	RecursionDepthRuntime:      "RecursionDepth",
	PermissionDenied:           "PermissionDenied",
	ProgramNotFound:            "ProgramNotFound",
	CustomError:                "CustomError",
	Redeclaration:              "Redeclaration",
	UndeclaredVariable:         "UndeclaredVariable",
	NoMatchingBranch:           "NoMatchingBranch",
	TooManyArguments:           "TooManyArguments",
	ArgumentMismatch:           "ArgumentMismatch",
	InvalidDefaultValueRuntime: "InvalidDefaultValue",
	InvalidOperator:            "InvalidOperator",
	IndexOutOfBounds:           "IndexOutOfBounds",
	KeyNotFound:                "KeyNotFound",
	MethodNotFound:             "MethodNotFound",
	NoModuleDefined:            "NoModuleDefined",
	NotAFunction:               "NotAFunction",
	TypeError:                  "TypeError",
	EarlyReturn:                "EarlyReturn",
	EarlyBreak:                 "EarlyBreak",
	Overflow:                   "Overflow",
	WildcardNotMatched:         "WildcardNotMatched",
	BuiltinFailed:              "BuiltinFailed",
	Terminated:                 "Terminated",
	IoDetailed:                 "IoDetailed",
	Io:                         "Io",
}

func (k RuntimeKind) String() string {
	if s, ok := runtimeNames[k]; ok {
		return s
	}
	return "Unknown"
}

// RuntimeError is produced by the evaluator (C4-C8). Depth counts how
// many times the error has propagated up through nested calls, so the
// formatter can show a concise stack (spec §7).
type RuntimeError struct {
	Kind    RuntimeKind
	Message string
	Site    token.StrSlice // call_site span, when known
	Src     string
	Depth   int
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// Code returns the stable exit status for this error.
func (e *RuntimeError) Code() int { return 1 + int(e.Kind) }

// Propagate returns a copy of e with Depth incremented, used as a
// RuntimeError threads back up through nested eval calls.
func (e *RuntimeError) Propagate() *RuntimeError {
	cp := *e
	cp.Depth++
	return &cp
}

func New(kind RuntimeKind, site token.StrSlice, src, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Site: site, Src: src}
}

func Wrap(kind RuntimeKind, site token.StrSlice, src string, cause error, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Site: site, Src: src, Cause: cause}
}
