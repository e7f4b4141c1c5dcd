package ast

import (
	"strconv"
	"strings"
)

// Print renders an Expression back to lumesh source text. It is exact for
// the literal kinds spec §8 requires round-tripping (Integer, Float,
// Boolean, unescaped String) and best-effort elsewhere — it exists for
// error excerpts and debugging, not as a full unparser.
func Print(e Expression) string {
	switch n := e.(type) {
	case None:
		return "None"
	case Integer:
		return strconv.FormatInt(n.Value, 10)
	case Float:
		s := strconv.FormatFloat(n.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case Boolean:
		if n.Value {
			return "True"
		}
		return "False"
	case String:
		return `"` + n.Value + `"`
	case Symbol:
		return n.Name
	case Variable:
		return n.Name
	case Group:
		return "(" + Print(n.Inner) + ")"
	case List:
		parts := make([]string, len(n.Items))
		for i, it := range n.Items {
			parts[i] = Print(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case BinaryOp:
		return Print(n.Left) + " " + n.Op + " " + Print(n.Right)
	case UnaryOp:
		if n.IsPrefix {
			return n.Op + Print(n.Operand)
		}
		return Print(n.Operand) + n.Op
	default:
		return "<expr>"
	}
}
