// Package parser turns a stripped token stream into a single ast.Expression
// using Pratt (precedence-climbing) parsing, per spec §4.2. Grounded on the
// teacher's runtime/parser/parser.go (a precedence-table-driven parseExpr
// with a recursive-descent prefix/infix split) and generalized from parsing
// command declarations to the whole expression grammar.
package parser

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/token"
)

const defaultMaxSyntaxRecursion = 100

// Parser consumes a stripped (whitespace/comment-free) token stream. A
// single instance is not safe for reuse across sources; construct a fresh
// one per Parse call.
type Parser struct {
	src      string
	toks     []token.Token
	pos      int
	depth    int
	maxDepth int
	log      *slog.Logger
}

func New(src string, toks []token.Token, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	maxDepth := defaultMaxSyntaxRecursion
	if v := os.Getenv("LUME_MAX_SYNTAX_RECURSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxDepth = n
		}
	}
	return &Parser{src: src, toks: toks, maxDepth: maxDepth, log: logger}
}

// Parse tokenizes, strips, and parses src into a root Do expression whose
// statements are the top-level program. It is the package's main entry
// point; Tokenize/parser errors from C2 are combined with parse errors
// per the "more informative wins" rule (spec §4.2).
func Parse(src string, logger *slog.Logger) (ast.Expression, *lmerr.SyntaxError) {
	toks, diags := token.Tokenize(src, logger)
	toks, diags = token.StripTokens(toks, diags)

	var lexErr *lmerr.SyntaxError
	for i, d := range diags {
		if !d.IsValid() {
			span := toks[i].Range
			if len(d.Ranges) > 0 {
				span = d.Ranges[0]
			}
			lexErr = lmerr.Prefer(lexErr, lmerr.NewSyntax(lmerr.TokenizationErrors, span, src, "invalid token: %s", d.Kind))
		}
	}

	p := New(src, toks, logger)
	expr, perr := p.ParseProgram()
	return expr, lmerr.Prefer(lexErr, perr)
}

// ---- token stream helpers ----

func (p *Parser) eof() token.Token {
	return token.Token{Kind: token.EOF, Range: token.StrSlice{Start: len(p.src), End: len(p.src)}}
}

func (p *Parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i < 0 || i >= len(p.toks) {
		return p.eof()
	}
	return p.toks[i]
}

func (p *Parser) peek() token.Token { return p.peekAt(0) }

func (p *Parser) text(t token.Token) string { return t.Text(p.src) }

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// skipBreaks consumes LineBreak tokens, used wherever a line break is
// insignificant (inside brackets, right after a binary operator).
func (p *Parser) skipBreaks() {
	for p.peek().Kind == token.LineBreak {
		p.advance()
	}
}

// skipSeparators consumes LineBreak and ';' tokens between statements.
func (p *Parser) skipSeparators() {
	for {
		t := p.peek()
		if t.Kind == token.LineBreak {
			p.advance()
			continue
		}
		if t.Kind == token.Punctuation && p.text(t) == ";" {
			p.advance()
			continue
		}
		break
	}
}

func (p *Parser) atPunct(s string) bool {
	t := p.peek()
	return t.Kind == token.Punctuation && p.text(t) == s
}

func (p *Parser) atOp(s string) bool {
	t := p.peek()
	if t.Kind != token.OperatorInfix && t.Kind != token.OperatorPrefix && t.Kind != token.OperatorPostfix && t.Kind != token.Operator {
		return false
	}
	return p.text(t) == s
}

func (p *Parser) atKeyword(s string) bool {
	t := p.peek()
	return t.Kind == token.Keyword && p.text(t) == s
}

func (p *Parser) expectPunct(s string) (token.Token, *lmerr.SyntaxError) {
	if !p.atPunct(s) {
		return token.Token{}, p.expected(s)
	}
	return p.advance(), nil
}

func (p *Parser) expected(what string) *lmerr.SyntaxError {
	t := p.peek()
	return lmerr.NewSyntax(lmerr.Expected, t.Range, p.src, "expected %s, found %s %q", what, t.Kind, p.text(t))
}

func (p *Parser) enter() *lmerr.SyntaxError {
	p.depth++
	if p.depth > p.maxDepth {
		return lmerr.NewSyntax(lmerr.RecursionDepthSyntax, p.peek().Range, p.src, "syntax nesting exceeds LUME_MAX_SYNTAX_RECURSION (%d)", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

func span(start, end token.Token) token.StrSlice { return start.Range.Union(end.Range) }

// ---- program / blocks ----

// ParseProgram parses the whole token stream as a sequence of statements.
func (p *Parser) ParseProgram() (ast.Expression, *lmerr.SyntaxError) {
	start := p.peek()
	stmts, err := p.parseStmtList(func() bool { return p.peek().Kind == token.EOF })
	if err != nil {
		return nil, err
	}
	end := p.peek()
	return ast.Do{Base: ast.BaseSpan(span(start, end)), Stmts: stmts}, nil
}

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() (ast.Expression, *lmerr.SyntaxError) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtList(func() bool { return p.atPunct("}") })
	if err != nil {
		return nil, err
	}
	close, err := p.expectPunct("}")
	if err != nil {
		return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '{'")
	}
	return ast.Do{Base: ast.BaseSpan(span(open, close)), Stmts: stmts}, nil
}

func (p *Parser) parseStmtList(stop func() bool) ([]ast.Expression, *lmerr.SyntaxError) {
	var stmts []ast.Expression
	p.skipSeparators()
	for !stop() && p.peek().Kind != token.EOF {
		e, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
		if !stop() && p.peek().Kind != token.EOF {
			t := p.peek()
			if t.Kind != token.LineBreak && !(t.Kind == token.Punctuation && p.text(t) == ";") {
				return nil, p.expected("statement separator")
			}
		}
		p.skipSeparators()
	}
	return stmts, nil
}

// canStartPrimary reports whether t could begin a fresh expression; used to
// decide whether command-argument juxtaposition continues.
func canStartPrimary(t token.Token) bool {
	switch t.Kind {
	case token.Symbol, token.ValueSymbol, token.BooleanLiteral, token.IntegerLiteral,
		token.FloatLiteral, token.StringLiteral, token.StringRaw, token.StringTemplate:
		return true
	case token.Punctuation:
		return false // '(' and '[' handled explicitly by caller
	}
	return false
}

func (p *Parser) canStartArg() bool {
	t := p.peek()
	if canStartPrimary(t) {
		return true
	}
	if t.Kind == token.Punctuation {
		s := p.text(t)
		return s == "(" || s == "["
	}
	if t.Kind == token.OperatorInfix && p.text(t) == "-" {
		return true
	}
	if t.Kind == token.OperatorPrefix && p.text(t) == "!" {
		return true
	}
	return false
}

// ---- precedence climbing ----

func (p *Parser) parseExpr(minPrec int) (ast.Expression, *lmerr.SyntaxError) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parsePrefix(minPrec)
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()

		// postfix ++ / --
		if t.Kind == token.OperatorPostfix && (p.text(t) == "++" || p.text(t) == "--") {
			if precPostfix < minPrec {
				break
			}
			op := p.advance()
			left = ast.UnaryOp{Base: ast.BaseSpan(span(tokenOf(left), op)), Op: p.text(op), Operand: left, IsPrefix: false}
			continue
		}

		// postfix __name sugar: `x __len` => Apply(len, [x])
		if t.Kind == token.Symbol && strings.HasPrefix(p.text(t), "__") && len(p.text(t)) > 2 {
			if precPostfix < minPrec {
				break
			}
			name := p.advance()
			callee := ast.Variable{Base: ast.BaseSpan(name.Range), Name: strings.TrimPrefix(p.text(name), "__")}
			left = ast.Apply{Base: ast.BaseSpan(span(tokenOf(left), name)), Callee: callee, Args: []ast.Expression{left}}
			continue
		}

		// call f(...)
		if t.Kind == token.Punctuation && p.text(t) == "(" {
			if precCall < minPrec {
				break
			}
			args, endTok, err := p.parseArgList("(", ")")
			if err != nil {
				return nil, err
			}
			left = ast.Apply{Base: ast.BaseSpan(span(tokenOf(left), endTok)), Callee: left, Args: args}
			continue
		}

		// Note: `.` never arrives as a standalone token — it is one of the
		// chars internal/token absorbs into an ongoing symbol run (so
		// "foo.txt" tokenizes as one Symbol, keeping filenames intact), so
		// there is no dotted member-access production here. `@`/`[...]`
		// below are the only indexing syntaxes.

		// `@` index
		if t.Kind == token.Punctuation && p.text(t) == "@" {
			if precIndex < minPrec {
				break
			}
			p.advance()
			key, err := p.parseExpr(precIndex + 1)
			if err != nil {
				return nil, err
			}
			left = ast.Index{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(key))), Target: left, Key: key}
			continue
		}

		// `[` index or slice
		if t.Kind == token.Punctuation && p.text(t) == "[" {
			if precIndex < minPrec {
				break
			}
			node, err := p.parseIndexOrSlice(left)
			if err != nil {
				return nil, err
			}
			left = node
			continue
		}

		// ternary: cond ? then : else
		if t.Kind == token.OperatorInfix && p.text(t) == "?" {
			if precTernary < minPrec {
				break
			}
			p.advance()
			thenExpr, err := p.parseExpr(precTernary)
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(":"); err != nil {
				return nil, err
			}
			elseExpr, err := p.parseExpr(precTernary)
			if err != nil {
				return nil, err
			}
			left = ast.If{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(elseExpr))), Cond: left, Then: thenExpr, Else: elseExpr}
			continue
		}

		// user-defined infix operator: _foo, _*foo, _+foo (single leading
		// underscore, not a postfix __name which needs two)
		if t.Kind == token.Symbol && strings.HasPrefix(p.text(t), "_") && !strings.HasPrefix(p.text(t), "__") && len(p.text(t)) > 1 {
			if precUserInfix < minPrec {
				break
			}
			op := p.advance()
			right, err := p.parseExpr(precUserInfix + 1)
			if err != nil {
				return nil, err
			}
			name := strings.TrimLeft(p.text(op), "_*+")
			callee := ast.Variable{Base: ast.BaseSpan(op.Range), Name: name}
			left = ast.Apply{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(right))), Callee: callee, Args: []ast.Expression{left, right}}
			continue
		}

		opText := p.text(t)
		info, known := infixOps[opText]
		isOpToken := t.Kind == token.OperatorInfix || t.Kind == token.OperatorPrefix || t.Kind == token.OperatorPostfix || t.Kind == token.Operator
		if known && isOpToken {
			if info.prec < minPrec {
				break
			}
			node, err := p.parseNamedInfix(left, opText, info)
			if err != nil {
				return nil, err
			}
			left = node
			continue
		}

		// command-argument juxtaposition
		if minPrec <= precCmdArg && isCommandCallee(left) && p.canStartArg() {
			arg, err := p.parseExpr(precCmdArg + 1)
			if err != nil {
				return nil, err
			}
			args := []ast.Expression{arg}
			if c, ok := left.(ast.Command); ok {
				args = append(c.Args, arg)
				left = ast.Command{Base: ast.BaseSpan(span(tokenOf(c), tokenOf(arg))), Callee: c.Callee, Args: args}
			} else {
				left = ast.Command{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(arg))), Callee: left, Args: args}
			}
			continue
		}

		break
	}
	return left, nil
}

func isCommandCallee(e ast.Expression) bool {
	switch e.(type) {
	case ast.Symbol, ast.Command:
		return true
	}
	return false
}

func (p *Parser) parseNamedInfix(left ast.Expression, opText string, info infixOp) (ast.Expression, *lmerr.SyntaxError) {
	op := p.advance()
	nextMin := info.prec
	if !info.rightAssoc {
		nextMin = info.prec + 1
	}

	switch opText {
	case "=", ":=", "+=", "-=", "*=", "/=":
		name, ok := lvalueName(left)
		if !ok {
			return nil, lmerr.NewSyntax(lmerr.Expected, op.Range, p.src, "left-hand side of %q must be a plain name", opText)
		}
		rhs, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		if opText == ":=" {
			rhs = ast.Quote{Base: ast.BaseSpan(rhs.Range()), Inner: rhs}
		} else if opText != "=" {
			base := strings.TrimSuffix(opText, "=")
			rhs = ast.BinaryOp{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(rhs))), Op: base, Left: ast.Variable{Base: ast.BaseSpan(left.Range()), Name: name}, Right: rhs}
		}
		return ast.Assign{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(rhs))), Name: name, Rhs: rhs}, nil

	case "->", "~>":
		params, perr := paramsFromLhs(left)
		if perr != nil {
			return nil, lmerr.NewSyntax(lmerr.Expected, op.Range, p.src, "%s", perr.Error())
		}
		body, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		sp := ast.BaseSpan(span(tokenOf(left), tokenOf(body)))
		if opText == "~>" {
			return ast.Macro{Base: sp, Params: params, Body: body}, nil
		}
		return ast.Lambda{Base: sp, Params: params, Body: body}, nil

	case "..":
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		return ast.Range{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(right))), Start: left, End: right}, nil

	default:
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		return ast.BinaryOp{Base: ast.BaseSpan(span(tokenOf(left), tokenOf(right))), Op: opText, Left: left, Right: right}, nil
	}
}

func lvalueName(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case ast.Variable:
		return n.Name, true
	case ast.Symbol:
		return n.Name, true
	}
	return "", false
}

// paramsFromLhs converts a bare name or a parenthesised name list into a
// lambda/macro parameter list. Only plain names are supported on this
// side — defaults belong to `fn` declarations (spec §4.2).
func paramsFromLhs(e ast.Expression) ([]ast.Param, error) {
	switch n := e.(type) {
	case ast.Variable:
		return []ast.Param{{Name: n.Name}}, nil
	case ast.Symbol:
		return []ast.Param{{Name: n.Name}}, nil
	case ast.Group:
		if v, ok := n.Inner.(ast.Variable); ok {
			return []ast.Param{{Name: v.Name}}, nil
		}
		if s, ok := n.Inner.(ast.Symbol); ok {
			return []ast.Param{{Name: s.Name}}, nil
		}
	case paramList:
		out := make([]ast.Param, 0, len(n.names))
		for _, nm := range n.names {
			out = append(out, ast.Param{Name: nm})
		}
		return out, nil
	}
	return nil, errNotAParamList
}

func (p *Parser) expectIdentLike() (token.Token, *lmerr.SyntaxError) {
	t := p.peek()
	if t.Kind == token.Symbol || t.Kind == token.Keyword || t.Kind == token.ValueSymbol {
		return p.advance(), nil
	}
	return token.Token{}, p.expected("a name")
}

func (p *Parser) parseIndexOrSlice(target ast.Expression) (ast.Expression, *lmerr.SyntaxError) {
	open, _ := p.expectPunct("[")
	var start, end, step ast.Expression
	var err *lmerr.SyntaxError

	if !p.atPunct(":") && !p.atOp(":") {
		start, err = p.parseExpr(1)
		if err != nil {
			return nil, err
		}
	}
	isSlice := p.atOp(":")
	if isSlice {
		p.advance()
		if !p.atOp(":") && !p.atPunct("]") {
			end, err = p.parseExpr(1)
			if err != nil {
				return nil, err
			}
		}
		if p.atOp(":") {
			p.advance()
			if !p.atPunct("]") {
				step, err = p.parseExpr(1)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	close, cerr := p.expectPunct("]")
	if cerr != nil {
		return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '['")
	}
	sp := ast.BaseSpan(span(tokenOf(target), close))
	if isSlice {
		return ast.Slice{Base: sp, Target: target, Start: start, End: end, Step: step}, nil
	}
	return ast.Index{Base: sp, Target: target, Key: start}, nil
}

// parseArgList parses a comma-separated expression list between open/close
// punctuation, allowing a trailing comma and interior line breaks.
func (p *Parser) parseArgList(open, close string) ([]ast.Expression, token.Token, *lmerr.SyntaxError) {
	openTok, err := p.expectPunct(open)
	if err != nil {
		return nil, token.Token{}, err
	}
	var args []ast.Expression
	p.skipBreaks()
	for !p.atPunct(close) && p.peek().Kind != token.EOF {
		e, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, token.Token{}, err
		}
		args = append(args, e)
		p.skipBreaks()
		if p.atPunct(",") {
			p.advance()
			p.skipBreaks()
			continue
		}
		break
	}
	closeTok, err := p.expectPunct(close)
	if err != nil {
		return nil, token.Token{}, lmerr.NewSyntax(lmerr.UnclosedDelimiter, openTok.Range, p.src, "unclosed %q", open)
	}
	return args, closeTok, nil
}

func tokenOf(e ast.Expression) token.Token {
	r := e.Range()
	return token.Token{Range: r}
}
