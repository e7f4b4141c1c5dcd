package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lumesh-lang/lumesh/internal/ast"
)

// ignoreSpans drops every node's source span before comparing trees, the
// same way the teacher's table-driven parser tests diff a flattened event
// list rather than raw, position-bearing nodes (runtime/parser/expressions_test.go).
var ignoreSpans = cmpopts.IgnoreFields(ast.Base{}, "Span")

func TestParseProducesExpectedTreeShape(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ast.Expression
	}{
		{
			name: "arithmetic precedence",
			src:  "1 + 2 * 3",
			want: ast.Do{Stmts: []ast.Expression{
				ast.BinaryOp{
					Op:   "+",
					Left: ast.Integer{Value: 1},
					Right: ast.BinaryOp{
						Op:    "*",
						Left:  ast.Integer{Value: 2},
						Right: ast.Integer{Value: 3},
					},
				},
			}},
		},
		{
			name: "symbol and parenthesization",
			src:  "(x + 1) * 2",
			want: ast.Do{Stmts: []ast.Expression{
				ast.BinaryOp{
					Op: "*",
					Left: ast.Group{Inner: ast.BinaryOp{
						Op:    "+",
						Left:  ast.Symbol{Name: "x"},
						Right: ast.Integer{Value: 1},
					}},
					Right: ast.Integer{Value: 2},
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.src)
			if diff := cmp.Diff(tt.want, got, ignoreSpans); diff != "" {
				t.Errorf("tree mismatch for %q (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}
