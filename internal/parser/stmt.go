package parser

import (
	"github.com/lumesh-lang/lumesh/internal/ast"
	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/token"
)

// parseLet handles `let name = expr`, `let name := expr` (lazy/Quote), and
// the multi-binding form `let a, b = 1, 2`.
func (p *Parser) parseLet() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'let'

	var names []token.Token
	id, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	names = append(names, id)
	for p.atPunct(",") {
		p.advance()
		id, err = p.expectIdentLike()
		if err != nil {
			return nil, err
		}
		names = append(names, id)
	}

	lazy := false
	switch {
	case p.atOp("="):
		p.advance()
	case p.atOp(":="):
		p.advance()
		lazy = true
	default:
		return nil, p.expected("'=' or ':='")
	}

	var rhss []ast.Expression
	for {
		e, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		rhss = append(rhss, e)
		if len(rhss) >= len(names) || !p.atPunct(",") {
			break
		}
		p.advance()
	}
	// `let a, b = expr` (a single rhs against multiple names) broadcasts:
	// every name declares against the same rhs expression.
	if len(rhss) == 1 && len(names) > 1 {
		for len(rhss) < len(names) {
			rhss = append(rhss, rhss[0])
		}
	}
	if len(rhss) != len(names) {
		return nil, p.expected("as many values as names")
	}

	if len(names) == 1 {
		rhs := rhss[0]
		if lazy {
			rhs = ast.Quote{Base: ast.BaseSpan(rhs.Range()), Inner: rhs}
		}
		return ast.Declare{Base: ast.BaseSpan(span(start, tokenOf(rhs))), Name: p.text(names[0]), Rhs: rhs}, nil
	}

	stmts := make([]ast.Expression, len(names))
	for i, nm := range names {
		rhs := rhss[i]
		if lazy {
			rhs = ast.Quote{Base: ast.BaseSpan(rhs.Range()), Inner: rhs}
		}
		stmts[i] = ast.Declare{Base: ast.BaseSpan(span(nm, tokenOf(rhs))), Name: p.text(nm), Rhs: rhs}
	}
	return ast.Do{Base: ast.BaseSpan(span(start, tokenOf(stmts[len(stmts)-1]))), Stmts: stmts}, nil
}

// parseFn handles `fn name(params) { body }`. Parameter defaults must be
// atomic literals (spec §4.2); anything else raises InvalidDefaultValue.
func (p *Parser) parseFn() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'fn'
	nameTok, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	p.skipBreaks()
	for !p.atPunct(")") && p.peek().Kind != token.EOF {
		pTok, err := p.expectIdentLike()
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: p.text(pTok)}
		if p.atOp("=") {
			p.advance()
			defTok := p.peek()
			def, err := p.parsePrefix(precCall)
			if err != nil {
				return nil, err
			}
			if !isAtomicLiteral(def) {
				return nil, lmerr.NewSyntax(lmerr.InvalidDefaultValue, defTok.Range, p.src, "parameter defaults must be atomic literals")
			}
			param.Default = def
		}
		params = append(params, param)
		p.skipBreaks()
		if p.atPunct(",") {
			p.advance()
			p.skipBreaks()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	var body ast.Expression
	if p.atPunct("{") {
		body, err = p.parseBlock()
	} else if p.atOp("->") {
		p.advance()
		body, err = p.parseExpr(precAssign)
	} else {
		return nil, p.expected("function body")
	}
	if err != nil {
		return nil, err
	}
	return ast.Function{Base: ast.BaseSpan(span(start, tokenOf(body))), Name: p.text(nameTok), Params: params, Body: body}, nil
}

func isAtomicLiteral(e ast.Expression) bool {
	switch e.(type) {
	case ast.Integer, ast.Float, ast.Boolean, ast.String, ast.None:
		return true
	}
	return false
}

func (p *Parser) parseIf() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'if'
	cond, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	var thenExpr ast.Expression
	if p.atKeyword("then") {
		p.advance()
		thenExpr, err = p.parseExpr(1)
	} else {
		thenExpr, err = p.parseBlock()
	}
	if err != nil {
		return nil, err
	}
	var elseExpr ast.Expression
	last := tokenOf(thenExpr)
	if p.atKeyword("else") {
		p.advance()
		switch {
		case p.atKeyword("if"):
			elseExpr, err = p.parseIf()
		case p.atPunct("{"):
			elseExpr, err = p.parseBlock()
		default:
			elseExpr, err = p.parseExpr(1)
		}
		if err != nil {
			return nil, err
		}
		last = tokenOf(elseExpr)
	}
	return ast.If{Base: ast.BaseSpan(span(start, last)), Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func (p *Parser) parseWhile() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'while'
	cond, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.While{Base: ast.BaseSpan(span(start, tokenOf(body))), Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'for'
	varTok, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("in") {
		return nil, p.expected("'in'")
	}
	p.advance()
	iter, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.For{Base: ast.BaseSpan(span(start, tokenOf(body))), Var: p.text(varTok), Iter: iter, Body: body}, nil
}

// parseMatch uses `->` as the pattern/body separator, the same token the
// lambda form uses — lumesh has no dedicated fat-arrow lexeme, so match
// arms share lambda's arrow rather than introducing a new one (DESIGN.md).
func (p *Parser) parseMatch() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'match'
	scrutinee, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	p.skipSeparators()
	for !p.atPunct("}") && p.peek().Kind != token.EOF {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOp("->"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		p.skipSeparators()
		if p.atPunct(",") {
			p.advance()
			p.skipSeparators()
		}
	}
	close, err := p.expectPunct("}")
	if err != nil {
		return nil, lmerr.NewSyntax(lmerr.UnclosedDelimiter, open.Range, p.src, "unclosed '{'")
	}
	return ast.Match{Base: ast.BaseSpan(span(start, close)), Scrutinee: scrutinee, Arms: arms}, nil
}

func (p *Parser) parsePattern() (ast.Pattern, *lmerr.SyntaxError) {
	t := p.peek()
	if t.Kind == token.Symbol {
		p.advance()
		return ast.BindPattern{Name: p.text(t)}, nil
	}
	lit, err := p.parsePrefix(precCall)
	if err != nil {
		return nil, err
	}
	return ast.LiteralPattern{Expr: lit}, nil
}

func isTerminator(t token.Token, text string) bool {
	if t.Kind == token.LineBreak || t.Kind == token.EOF {
		return true
	}
	return t.Kind == token.Punctuation && (text == "}" || text == ";" || text == ")" || text == "]")
}

func (p *Parser) parseReturnLike(kw string) (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance()
	var val ast.Expression
	t := p.peek()
	if !isTerminator(t, p.text(t)) {
		v, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		val = v
	}
	end := start
	if val != nil {
		end = tokenOf(val)
	}
	if kw == "return" {
		return ast.Return{Base: ast.BaseSpan(span(start, end)), Value: val}, nil
	}
	return ast.Break{Base: ast.BaseSpan(span(start, end)), Value: val}, nil
}

func (p *Parser) parseDel() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'del'
	id, err := p.expectIdentLike()
	if err != nil {
		return nil, err
	}
	return ast.Del{Base: ast.BaseSpan(span(start, id)), Name: p.text(id)}, nil
}

// parseUse handles `use path` and `use alias = path`.
func (p *Parser) parseUse() (ast.Expression, *lmerr.SyntaxError) {
	start := p.advance() // 'use'
	var alias string
	if p.peek().Kind == token.Symbol {
		save := p.pos
		idTok := p.advance()
		if p.atOp("=") {
			p.advance()
			alias = p.text(idTok)
		} else {
			p.pos = save
		}
	}
	pathTok := p.peek()
	var path string
	switch pathTok.Kind {
	case token.StringLiteral:
		p.advance()
		path = unescapeString(p.text(pathTok))
	case token.Symbol:
		p.advance()
		path = p.text(pathTok)
	default:
		return nil, p.expected("a module path")
	}
	return ast.Use{Base: ast.BaseSpan(span(start, pathTok)), Alias: alias, Path: path}, nil
}
