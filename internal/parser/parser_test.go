package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumesh-lang/lumesh/internal/ast"
)

func mustParse(t *testing.T, src string) ast.Expression {
	t.Helper()
	e, err := Parse(src, nil)
	require.Nil(t, err, "unexpected parse error for %q: %v", src, err)
	return e
}

func singleStmt(t *testing.T, src string) ast.Expression {
	t.Helper()
	prog := mustParse(t, src).(ast.Do)
	require.Len(t, prog.Stmts, 1)
	return prog.Stmts[0]
}

func TestArithmeticPrecedence(t *testing.T) {
	e := singleStmt(t, "1 + 2 * 3")
	bin := e.(ast.BinaryOp)
	assert.Equal(t, "+", bin.Op)
	rhs := bin.Right.(ast.BinaryOp)
	assert.Equal(t, "*", rhs.Op)
}

func TestRightAssociativePower(t *testing.T) {
	e := singleStmt(t, "2 ** 3 ** 2")
	bin := e.(ast.BinaryOp)
	assert.Equal(t, "**", bin.Op)
	_, rightIsPow := bin.Right.(ast.BinaryOp)
	assert.True(t, rightIsPow, "** must associate right: 2 ** (3 ** 2)")
}

func TestLetDeclareBindsNameAndValue(t *testing.T) {
	e := singleStmt(t, "let x = 1")
	decl := e.(ast.Declare)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, int64(1), decl.Rhs.(ast.Integer).Value)
}

func TestLazyDeclareWrapsQuote(t *testing.T) {
	e := singleStmt(t, "let f := a + 1")
	decl := e.(ast.Declare)
	_, ok := decl.Rhs.(ast.Quote)
	assert.True(t, ok, "let ... := ... must wrap the rhs in Quote")
}

func TestCommandArgsGatherUntilLowPrecedenceOperator(t *testing.T) {
	e := singleStmt(t, "ls -la foo")
	cmd := e.(ast.Command)
	assert.Equal(t, "ls", cmd.Callee.(ast.Symbol).Name)
	require.Len(t, cmd.Args, 2)
}

func TestCommandStopsAtComparisonOperator(t *testing.T) {
	e := singleStmt(t, "status == 0")
	bin := e.(ast.BinaryOp)
	assert.Equal(t, "==", bin.Op)
	_, isCmd := bin.Left.(ast.Command)
	assert.False(t, isCmd, "comparison must not be swallowed into command args")
}

func TestPipeAndRedirectBindLooserThanLogical(t *testing.T) {
	e := singleStmt(t, "a && b | c")
	bin := e.(ast.BinaryOp)
	assert.Equal(t, "|", bin.Op)
	_, leftIsAnd := bin.Left.(ast.BinaryOp)
	assert.True(t, leftIsAnd)
}

func TestLambdaSingleParam(t *testing.T) {
	e := singleStmt(t, "x -> x + 1")
	lam := e.(ast.Lambda)
	require.Len(t, lam.Params, 1)
	assert.Equal(t, "x", lam.Params[0].Name)
}

func TestLambdaMultiParam(t *testing.T) {
	e := singleStmt(t, "(a, b) -> a + b")
	lam := e.(ast.Lambda)
	require.Len(t, lam.Params, 2)
	assert.Equal(t, []string{"a", "b"}, []string{lam.Params[0].Name, lam.Params[1].Name})
}

func TestMacroArrow(t *testing.T) {
	e := singleStmt(t, "x ~> x")
	_, ok := e.(ast.Macro)
	assert.True(t, ok)
}

func TestTernary(t *testing.T) {
	e := singleStmt(t, "a ? 1 : 2")
	ifExpr := e.(ast.If)
	assert.Equal(t, int64(1), ifExpr.Then.(ast.Integer).Value)
	assert.Equal(t, int64(2), ifExpr.Else.(ast.Integer).Value)
}

func TestIfThenElse(t *testing.T) {
	e := singleStmt(t, "if a then 1 else 2")
	ifExpr := e.(ast.If)
	assert.NotNil(t, ifExpr.Then)
	assert.NotNil(t, ifExpr.Else)
}

func TestIfBlockForm(t *testing.T) {
	e := singleStmt(t, "if a { 1 }")
	ifExpr := e.(ast.If)
	_, ok := ifExpr.Then.(ast.Do)
	assert.True(t, ok)
}

func TestWhileLoop(t *testing.T) {
	e := singleStmt(t, "while a { b }")
	w := e.(ast.While)
	assert.NotNil(t, w.Cond)
	assert.NotNil(t, w.Body)
}

func TestForLoop(t *testing.T) {
	e := singleStmt(t, "for i in 1..4 { x }")
	f := e.(ast.For)
	assert.Equal(t, "i", f.Var)
	_, ok := f.Iter.(ast.Range)
	assert.True(t, ok)
}

func TestMatchArms(t *testing.T) {
	e := singleStmt(t, "match x { 1 -> 'one', n -> 'other' }")
	m := e.(ast.Match)
	require.Len(t, m.Arms, 2)
	_, isLit := m.Arms[0].Pattern.(ast.LiteralPattern)
	assert.True(t, isLit)
	bind, isBind := m.Arms[1].Pattern.(ast.BindPattern)
	assert.True(t, isBind)
	assert.Equal(t, "n", bind.Name)
}

func TestIndexAndSlice(t *testing.T) {
	e := singleStmt(t, "a[1:3]")
	sl := e.(ast.Slice)
	assert.Equal(t, int64(1), sl.Start.(ast.Integer).Value)
	assert.Equal(t, int64(3), sl.End.(ast.Integer).Value)
	assert.Nil(t, sl.Step)
}

func TestAtIndex(t *testing.T) {
	e := singleStmt(t, "a @ 0")
	idx := e.(ast.Index)
	assert.Equal(t, int64(0), idx.Key.(ast.Integer).Value)
}

func TestMapLiteralVsBlockDisambiguation(t *testing.T) {
	m := singleStmt(t, "{a: 1, b: 2}")
	mp, ok := m.(ast.Map)
	require.True(t, ok)
	assert.Len(t, mp.Entries, 2)

	blk := singleStmt(t, "{ a = 1\nb }")
	_, ok = blk.(ast.Do)
	assert.True(t, ok)
}

func TestFunctionDeclarationWithDefault(t *testing.T) {
	e := singleStmt(t, `fn greet(name = "world") { name }`)
	fn := e.(ast.Function)
	assert.Equal(t, "greet", fn.Name)
	require.Len(t, fn.Params, 1)
	require.NotNil(t, fn.Params[0].Default)
	assert.Equal(t, "world", fn.Params[0].Default.(ast.String).Value)
}

func TestApplyVsCommandDisambiguation(t *testing.T) {
	apply := singleStmt(t, "f(1, 2)")
	_, ok := apply.(ast.Apply)
	assert.True(t, ok)

	cmd := singleStmt(t, "f 1 2")
	_, ok = cmd.(ast.Command)
	assert.True(t, ok)
}

func TestUseWithAlias(t *testing.T) {
	e := singleStmt(t, "use http = net/http")
	use := e.(ast.Use)
	assert.Equal(t, "http", use.Alias)
	assert.Equal(t, "net/http", use.Path)
}

func TestReturnAndBreakOptionalValue(t *testing.T) {
	ret := singleStmt(t, "return 5")
	assert.Equal(t, int64(5), ret.(ast.Return).Value.(ast.Integer).Value)

	brk := singleStmt(t, "break")
	assert.Nil(t, brk.(ast.Break).Value)
}

func TestRecursionDepthGuard(t *testing.T) {
	src := ""
	for i := 0; i < 300; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 300; i++ {
		src += ")"
	}
	_, err := Parse(src, nil)
	require.NotNil(t, err)
	assert.Equal(t, "RecursionDepth", err.Kind.String())
}

func TestUnclosedDelimiterIsSyntaxError(t *testing.T) {
	_, err := Parse("(1 + 2", nil)
	require.NotNil(t, err)
}
