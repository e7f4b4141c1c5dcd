package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/token"
)

var errNotAParamList = errors.New("not a parameter list")

// paramList is a parser-internal node produced when `(a, b, ...)` is
// parsed ahead of an arrow; it never reaches the evaluator. It embeds
// ast.Base so it still satisfies ast.Expression.
type paramList struct {
	ast.Base
	names []string
}

func (p *Parser) parsePrefix(minPrec int) (ast.Expression, *lmerr.SyntaxError) {
	t := p.peek()

	switch t.Kind {
	case token.IntegerLiteral:
		p.advance()
		v, _ := strconv.ParseInt(p.text(t), 10, 64)
		return ast.Integer{Base: ast.BaseSpan(t.Range), Value: v}, nil

	case token.FloatLiteral:
		p.advance()
		v, _ := strconv.ParseFloat(p.text(t), 64)
		return ast.Float{Base: ast.BaseSpan(t.Range), Value: v}, nil

	case token.BooleanLiteral:
		p.advance()
		return ast.Boolean{Base: ast.BaseSpan(t.Range), Value: p.text(t) == "True"}, nil

	case token.ValueSymbol:
		p.advance()
		return ast.None{Base: ast.BaseSpan(t.Range)}, nil

	case token.StringLiteral:
		p.advance()
		return ast.String{Base: ast.BaseSpan(t.Range), Value: unescapeString(p.text(t))}, nil

	case token.StringRaw:
		p.advance()
		raw := p.text(t)
		return ast.String{Base: ast.BaseSpan(t.Range), Value: strings.Trim(raw, "'")}, nil

	case token.StringTemplate:
		p.advance()
		return p.parseTemplate(t)

	case token.Keyword:
		return p.parseKeywordExpr(p.text(t))

	case token.Symbol:
		return p.parseSymbolOrCommand()
	}

	if t.Kind == token.Punctuation {
		switch p.text(t) {
		case "(":
			return p.parseParenExpr()
		case "[":
			return p.parseListLiteral()
		case "{":
			return p.parseMapOrBlock()
		}
	}

	// prefix unary ! and -
	if (t.Kind == token.OperatorPrefix && p.text(t) == "!") || (t.Kind == token.OperatorInfix && p.text(t) == "-") {
		op := p.advance()
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Base: ast.BaseSpan(span(op, tokenOf(operand))), Op: p.text(op), Operand: operand, IsPrefix: true}, nil
	}

	// prefix ++ / --
	if t.Kind == token.OperatorPostfix && (p.text(t) == "++" || p.text(t) == "--") {
		op := p.advance()
		operand, err := p.parseExpr(precPrefixIncr)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Base: ast.BaseSpan(span(op, tokenOf(operand))), Op: p.text(op), Operand: operand, IsPrefix: true}, nil
	}

	return nil, p.expected("an expression")
}

func unescapeString(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	inner := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			switch inner[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case '"':
				b.WriteByte('"')
				i++
				continue
			}
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func (p *Parser) parseTemplate(t token.Token) (ast.Expression, *lmerr.SyntaxError) {
	lits, exprs := token.TemplateParts(p.src, t)
	var parts []ast.StringTemplatePart
	for i, lit := range lits {
		if lit.Len() > 0 || i > 0 {
			parts = append(parts, ast.StringTemplatePart{Literal: unescapeString(`"` + lit.Text(p.src) + `"`)})
		}
		if i < len(exprs) {
			exprSrc := exprs[i].Text(p.src)
			sub, serr := Parse(exprSrc, p.log)
			if serr != nil {
				return nil, lmerr.NewSyntax(serr.Kind, exprs[i], p.src, "in template interpolation: %s", serr.Message)
			}
			parts = append(parts, ast.StringTemplatePart{Expr: sub})
		}
	}
	return ast.StringTemplate{Base: ast.BaseSpan(t.Range), Parts: parts}, nil
}

func (p *Parser) parseKeywordExpr(kw string) (ast.Expression, *lmerr.SyntaxError) {
	switch kw {
	case "let":
		return p.parseLet()
	case "fn":
		return p.parseFn()
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile()
	case "for":
		return p.parseFor()
	case "match":
		return p.parseMatch()
	case "return":
		return p.parseReturnLike("return")
	case "break":
		return p.parseReturnLike("break")
	case "del":
		return p.parseDel()
	case "use":
		return p.parseUse()
	}
	return nil, p.expected("a statement")
}

// parseSymbolOrCommand parses a bare Symbol. Call ('('), indexing/slicing
// ('@'/'['), and command-argument juxtaposition are all handled uniformly
// by parseExpr's infix loop (in that priority order) once this returns —
// folding any of them in here would let juxtaposition pre-empt indexing
// and misparse `a[1:3]` as a command with a list argument.
func (p *Parser) parseSymbolOrCommand() (ast.Expression, *lmerr.SyntaxError) {
	tok := p.advance()
	name := p.text(tok)
	return ast.Symbol{Base: ast.BaseSpan(tok.Range), Name: name}, nil
}

// parseParenExpr handles `(expr)`, `()`, and `(a, b, ...)` — the last two
// only make sense immediately followed by `->`/`~>`, which the caller's
// infix loop validates via paramsFromLhs.
func (p *Parser) parseParenExpr() (ast.Expression, *lmerr.SyntaxError) {
	open, _ := p.expectPunct("(")
	p.skipBreaks()
	if p.atPunct(")") {
		close := p.advance()
		return paramList{Base: ast.BaseSpan(span(open, close))}, nil
	}
	first, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	p.skipBreaks()
	if p.atPunct(",") {
		names := []string{}
		if v, ok := first.(ast.Variable); ok {
			names = append(names, v.Name)
		} else if s, ok := first.(ast.Symbol); ok {
			names = append(names, s.Name)
		} else {
			return nil, p.expected("a parameter name")
		}
		for p.atPunct(",") {
			p.advance()
			p.skipBreaks()
			id, err := p.expectIdentLike()
			if err != nil {
				return nil, err
			}
			names = append(names, p.text(id))
			p.skipBreaks()
		}
		close, cerr := p.expectPunct(")")
		if cerr != nil {
			return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '('")
		}
		return paramList{Base: ast.BaseSpan(span(open, close)), names: names}, nil
	}
	close, cerr := p.expectPunct(")")
	if cerr != nil {
		return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '('")
	}
	return ast.Group{Base: ast.BaseSpan(span(open, close)), Inner: first}, nil
}

func (p *Parser) parseListLiteral() (ast.Expression, *lmerr.SyntaxError) {
	open := p.peek()
	items, close, err := p.parseArgList("[", "]")
	if err != nil {
		return nil, err
	}
	return ast.List{Base: ast.BaseSpan(span(open, close)), Items: items}, nil
}

// parseMapOrBlock disambiguates `{ ... }` between a map literal and a Do
// block by lookahead: a map's first entry is always `key:`.
func (p *Parser) parseMapOrBlock() (ast.Expression, *lmerr.SyntaxError) {
	if p.looksLikeMapLiteral() {
		return p.parseMapLiteral()
	}
	return p.parseBlock()
}

func (p *Parser) looksLikeMapLiteral() bool {
	// Peek past '{'; an empty `{}`, or a symbol/string/integer key
	// immediately followed by ':', signals a map. Anything else is a block.
	save := p.pos
	defer func() { p.pos = save }()
	if !p.atPunct("{") {
		return false
	}
	p.advance()
	p.skipBreaks()
	if p.atPunct("}") {
		return true // `{}` parses as an empty map per spec's literal grammar
	}
	keyTok := p.peek()
	if keyTok.Kind != token.Symbol && keyTok.Kind != token.StringLiteral && keyTok.Kind != token.IntegerLiteral {
		return false
	}
	p.advance()
	return p.atOp(":")
}

func (p *Parser) parseMapLiteral() (ast.Expression, *lmerr.SyntaxError) {
	open, _ := p.expectPunct("{")
	var entries []ast.MapEntry
	p.skipBreaks()
	for !p.atPunct("}") && p.peek().Kind != token.EOF {
		keyTok := p.peek()
		var key ast.Expression
		switch keyTok.Kind {
		case token.Symbol:
			p.advance()
			key = ast.String{Base: ast.BaseSpan(keyTok.Range), Value: p.text(keyTok)}
		default:
			var err *lmerr.SyntaxError
			key, err = p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		p.skipBreaks()
		if p.atPunct(",") {
			p.advance()
			p.skipBreaks()
			continue
		}
		break
	}
	close, err := p.expectPunct("}")
	if err != nil {
		return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '{'")
	}
	return ast.Map{Base: ast.BaseSpan(span(open, close)), Entries: entries}, nil
}

func (p *Parser) expectOp(s string) (token.Token, *lmerr.SyntaxError) {
	if !p.atOp(s) {
		return token.Token{}, p.expected("'" + s + "'")
	}
	return p.advance(), nil
}
