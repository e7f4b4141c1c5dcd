package value

import (
	"github.com/lumesh-lang/lumesh/internal/lmerr"
)

// Index implements spec §4.3's "Indexing": list/string index by integer
// (negative counts from the end), map lookup by string/symbol key.
func Index(target, key Value, site Site) (Value, error) {
	switch t := target.(type) {
	case List:
		n, ok := key.(Integer)
		if !ok {
			return nil, site.err(lmerr.TypeError, "list index must be an integer, got %s", TypeName(key))
		}
		idx, err := resolveIndex(n.Value, len(t.Items), site)
		if err != nil {
			return nil, err
		}
		return t.Items[idx], nil

	case String:
		n, ok := key.(Integer)
		if !ok {
			return nil, site.err(lmerr.TypeError, "string index must be an integer, got %s", TypeName(key))
		}
		runes := []rune(t.Value)
		idx, err := resolveIndex(n.Value, len(runes), site)
		if err != nil {
			return nil, err
		}
		return String{Value: string(runes[idx])}, nil

	case Map:
		k, ok := keyText(key)
		if !ok {
			return nil, site.err(lmerr.TypeError, "map key must be a string or symbol, got %s", TypeName(key))
		}
		v, found := MapGet(t, k)
		if !found {
			return nil, site.err(lmerr.KeyNotFound, "key %q not found", k)
		}
		return v, nil
	}
	return nil, site.err(lmerr.TypeError, "cannot index %s", TypeName(target))
}

// sliceBound resolves an optional (possibly negative) bound against
// length, clamping out-of-range values rather than erroring (spec §4.3,
// "Slicing": "out-of-range indices clamp").
func sliceBound(v Value, length int, def int) int {
	n, ok := v.(Integer)
	if !ok {
		return def
	}
	idx := n.Value
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > int64(length) {
		idx = int64(length)
	}
	return int(idx)
}

// Slice implements spec §4.3's "Slicing": a[start:end:step], each bound
// optional, negative step reverses direction, empty result when the
// range crosses.
func Slice(target, start, end, step Value, site Site) (Value, error) {
	stepN := int64(1)
	if s, ok := step.(Integer); ok {
		if s.Value == 0 {
			return nil, site.err(lmerr.Overflow, "slice step cannot be zero")
		}
		stepN = s.Value
	}

	switch t := target.(type) {
	case List:
		idxs := sliceIndices(len(t.Items), start, end, stepN)
		out := make([]Value, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, t.Items[i])
		}
		return List{Items: out}, nil
	case String:
		runes := []rune(t.Value)
		idxs := sliceIndices(len(runes), start, end, stepN)
		out := make([]rune, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, runes[i])
		}
		return String{Value: string(out)}, nil
	case Bytes:
		idxs := sliceIndices(len(t.Value), start, end, stepN)
		out := make([]byte, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, t.Value[i])
		}
		return Bytes{Value: out}, nil
	}
	return nil, site.err(lmerr.TypeError, "cannot slice %s", TypeName(target))
}

func sliceIndices(length int, start, end Value, step int64) []int {
	var lo, hi int
	if step > 0 {
		lo = sliceBound(start, length, 0)
		hi = sliceBound(end, length, length)
	} else {
		lo = sliceBound(start, length, length-1)
		hi = sliceBound(end, length, -1)
	}

	var out []int
	if step > 0 {
		for i := lo; i < hi; i += int(step) {
			out = append(out, i)
		}
	} else {
		for i := lo; i > hi; i += int(step) {
			if i >= 0 && i < length {
				out = append(out, i)
			}
		}
	}
	return out
}

// Range realizes an ast.Range (a..b): inclusive at a, exclusive at b,
// reversed when a > b (spec §4.3, "Ranges").
func Range(a, b int64) RangeValue {
	if a <= b {
		return RangeValue{Start: a, End: b, Step: 1}
	}
	return RangeValue{Start: a, End: b, Step: -1}
}

// Iterate expands r into its concrete integer sequence; internal/eval's
// For-loop calls this rather than each builtin reimplementing direction.
func Iterate(r RangeValue) []int64 {
	var out []int64
	if r.Step > 0 {
		for i := r.Start; i < r.End; i += r.Step {
			out = append(out, i)
		}
	} else {
		for i := r.Start; i > r.End; i += r.Step {
			out = append(out, i)
		}
	}
	return out
}
