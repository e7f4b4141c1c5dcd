package value

import (
	"math"
	"strings"

	"github.com/lumesh-lang/lumesh/internal/lmerr"
	"github.com/lumesh-lang/lumesh/internal/token"
)

// Site bundles the source text and call-site span arithmetic errors need
// to build an lmerr.RuntimeError; internal/eval passes this through from
// the BinaryOp/UnaryOp node it is currently evaluating.
type Site struct {
	Src  string
	Span token.StrSlice
}

func (s Site) err(kind lmerr.RuntimeKind, format string, args ...any) error {
	return lmerr.New(kind, s.Span, s.Src, format, args...)
}

// Add implements spec §4.3's `+`: checked integer addition (overflow ->
// Overflow), int+float promotion, string/list/bytes concatenation.
func Add(a, b Value, site Site) (Value, error) {
	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			sum := av.Value + bv.Value
			if (bv.Value > 0 && sum < av.Value) || (bv.Value < 0 && sum > av.Value) {
				return nil, site.err(lmerr.Overflow, "integer overflow in %d + %d", av.Value, bv.Value)
			}
			return Integer{Value: sum}, nil
		case Float:
			return Float{Value: float64(av.Value) + bv.Value}, nil
		}
	case Float:
		if f, ok := asFloat(b); ok {
			return Float{Value: av.Value + f}, nil
		}
	case String:
		if bv, ok := b.(String); ok {
			return String{Value: av.Value + bv.Value}, nil
		}
	case Bytes:
		if bv, ok := b.(Bytes); ok {
			out := make([]byte, 0, len(av.Value)+len(bv.Value))
			out = append(out, av.Value...)
			out = append(out, bv.Value...)
			return Bytes{Value: out}, nil
		}
	case List:
		if bv, ok := b.(List); ok {
			out := make([]Value, 0, len(av.Items)+len(bv.Items))
			out = append(out, av.Items...)
			out = append(out, bv.Items...)
			return List{Items: out}, nil
		}
	}
	return nil, site.err(lmerr.TypeError, "cannot add %s and %s", TypeName(a), TypeName(b))
}

// Sub implements spec §4.3's `-`: checked integer subtraction, map-key
// removal, and list element removal by index.
func Sub(a, b Value, site Site) (Value, error) {
	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			diff := av.Value - bv.Value
			if (bv.Value < 0 && diff < av.Value) || (bv.Value > 0 && diff > av.Value) {
				return nil, site.err(lmerr.Overflow, "integer overflow in %d - %d", av.Value, bv.Value)
			}
			return Integer{Value: diff}, nil
		case Float:
			return Float{Value: float64(av.Value) - bv.Value}, nil
		}
	case Float:
		if f, ok := asFloat(b); ok {
			return Float{Value: av.Value - f}, nil
		}
	case Map:
		if key, ok := keyText(b); ok {
			return MapDelete(av, key), nil
		}
	case List:
		if bv, ok := b.(Integer); ok {
			idx, err := resolveIndex(bv.Value, len(av.Items), site)
			if err != nil {
				return nil, err
			}
			out := make([]Value, 0, len(av.Items)-1)
			out = append(out, av.Items[:idx]...)
			out = append(out, av.Items[idx+1:]...)
			return List{Items: out}, nil
		}
	}
	return nil, site.err(lmerr.TypeError, "cannot subtract %s from %s", TypeName(b), TypeName(a))
}

// Mul implements spec §4.3's `*`: numeric multiplication (checked for
// integers) and string/list repeat by integer count.
func Mul(a, b Value, site Site) (Value, error) {
	switch av := a.(type) {
	case Integer:
		switch bv := b.(type) {
		case Integer:
			prod := av.Value * bv.Value
			if av.Value != 0 && prod/av.Value != bv.Value {
				return nil, site.err(lmerr.Overflow, "integer overflow in %d * %d", av.Value, bv.Value)
			}
			return Integer{Value: prod}, nil
		case Float:
			return Float{Value: float64(av.Value) * bv.Value}, nil
		}
	case Float:
		if f, ok := asFloat(b); ok {
			return Float{Value: av.Value * f}, nil
		}
	case String:
		if n, ok := b.(Integer); ok {
			return String{Value: strings.Repeat(av.Value, repeatCount(n.Value))}, nil
		}
	case List:
		if n, ok := b.(Integer); ok {
			return List{Items: repeatList(av.Items, repeatCount(n.Value))}, nil
		}
	}
	return nil, site.err(lmerr.TypeError, "cannot multiply %s by %s", TypeName(a), TypeName(b))
}

// Div implements spec §4.3's `/`; a zero divisor is Overflow ("divide by
// zero"), not a separate error kind (spec's own wording).
func Div(a, b Value, site Site) (Value, error) {
	if isZero(b) {
		return nil, site.err(lmerr.Overflow, "divide by zero")
	}
	switch av := a.(type) {
	case Integer:
		if bv, ok := b.(Integer); ok {
			return Integer{Value: av.Value / bv.Value}, nil
		}
		if f, ok := asFloat(b); ok {
			return Float{Value: float64(av.Value) / f}, nil
		}
	case Float:
		if f, ok := asFloat(b); ok {
			return Float{Value: av.Value / f}, nil
		}
	}
	return nil, site.err(lmerr.TypeError, "cannot divide %s by %s", TypeName(a), TypeName(b))
}

// Mod implements spec §4.3's `%`, with the same zero-divisor rule as Div.
func Mod(a, b Value, site Site) (Value, error) {
	if isZero(b) {
		return nil, site.err(lmerr.Overflow, "divide by zero")
	}
	if av, ok := a.(Integer); ok {
		if bv, ok := b.(Integer); ok {
			return Integer{Value: av.Value % bv.Value}, nil
		}
	}
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return Float{Value: math.Mod(af, bf)}, nil
		}
	}
	return nil, site.err(lmerr.TypeError, "cannot take %s %% %s", TypeName(a), TypeName(b))
}

// Pow implements spec §4.3's `**`: checked integer power for integer
// operands, float power (math.Pow) otherwise.
func Pow(a, b Value, site Site) (Value, error) {
	if av, ok := a.(Integer); ok {
		if bv, ok := b.(Integer); ok && bv.Value >= 0 {
			result, overflow := checkedIntPow(av.Value, bv.Value)
			if overflow {
				return nil, site.err(lmerr.Overflow, "integer overflow in %d ** %d", av.Value, bv.Value)
			}
			return Integer{Value: result}, nil
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return Float{Value: math.Pow(af, bf)}, nil
	}
	return nil, site.err(lmerr.TypeError, "cannot raise %s to %s", TypeName(a), TypeName(b))
}

func checkedIntPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		next := result * base
		if base != 0 && next/base != result {
			return 0, true
		}
		result = next
	}
	return result, false
}

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case Integer:
		return float64(t.Value), true
	case Float:
		return t.Value, true
	}
	return 0, false
}

func isZero(v Value) bool {
	switch t := v.(type) {
	case Integer:
		return t.Value == 0
	case Float:
		return t.Value == 0
	}
	return false
}

func repeatCount(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func repeatList(items []Value, n int) []Value {
	out := make([]Value, 0, len(items)*n)
	for i := 0; i < n; i++ {
		out = append(out, items...)
	}
	return out
}

// resolveIndex normalizes a possibly-negative index against length,
// raising IndexOutOfBounds if it's still out of range (spec §4.3,
// "Indexing" — negative indices count from the end).
func resolveIndex(idx int64, length int, site Site) (int, error) {
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, site.err(lmerr.IndexOutOfBounds, "index %d out of bounds for length %d", idx, length)
	}
	return int(idx), nil
}
