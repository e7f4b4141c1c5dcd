package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(None{}))
	assert.False(t, Truthy(Integer{Value: 0}))
	assert.False(t, Truthy(String{Value: ""}))
	assert.False(t, Truthy(List{}))
	assert.True(t, Truthy(Integer{Value: 1}))
	assert.True(t, Truthy(String{Value: "x"}))
	assert.True(t, Truthy(Boolean{Value: true}))
	assert.True(t, Truthy(Builtin{Name: "len"}))
}

func TestEqualCrossVariantNumberPromotion(t *testing.T) {
	assert.True(t, Equal(Integer{Value: 2}, Float{Value: 2.0}))
	assert.False(t, Equal(Integer{Value: 2}, Float{Value: 2.1}))
}

func TestEqualSymbolStringInterchangeable(t *testing.T) {
	assert.True(t, Equal(Symbol{Name: "foo"}, String{Value: "foo"}))
}

func TestEqualListElementwise(t *testing.T) {
	a := List{Items: []Value{Integer{Value: 1}, Integer{Value: 2}}}
	b := List{Items: []Value{Integer{Value: 1}, Integer{Value: 2}}}
	c := List{Items: []Value{Integer{Value: 1}, Integer{Value: 3}}}
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestCompareIncomparableAcrossTypes(t *testing.T) {
	assert.Equal(t, Incomparable, Compare(Integer{Value: 1}, String{Value: "a"}))
}

func TestCompareStrings(t *testing.T) {
	assert.Equal(t, Less, Compare(String{Value: "a"}, String{Value: "b"}))
	assert.Equal(t, Greater, Compare(String{Value: "b"}, String{Value: "a"}))
	assert.Equal(t, EqualOrder, Compare(String{Value: "a"}, String{Value: "a"}))
}

func TestAddIntegerOverflow(t *testing.T) {
	_, err := Add(Integer{Value: math64Max}, Integer{Value: 1}, Site{})
	require.Error(t, err)
}

func TestAddIntFloatPromotion(t *testing.T) {
	v, err := Add(Integer{Value: 1}, Float{Value: 2.5}, Site{})
	require.NoError(t, err)
	assert.Equal(t, Float{Value: 3.5}, v)
}

func TestAddStringConcat(t *testing.T) {
	v, err := Add(String{Value: "ab"}, String{Value: "cd"}, Site{})
	require.NoError(t, err)
	assert.Equal(t, String{Value: "abcd"}, v)
}

func TestSubMapRemovesKey(t *testing.T) {
	m := Map{Pairs: []MapPair{{Key: "a", Value: Integer{Value: 1}}, {Key: "b", Value: Integer{Value: 2}}}}
	v, err := Sub(m, String{Value: "a"}, Site{})
	require.NoError(t, err)
	out := v.(Map)
	require.Len(t, out.Pairs, 1)
	assert.Equal(t, "b", out.Pairs[0].Key)
}

func TestMulStringRepeat(t *testing.T) {
	v, err := Mul(String{Value: "ab"}, Integer{Value: 3}, Site{})
	require.NoError(t, err)
	assert.Equal(t, String{Value: "ababab"}, v)
}

func TestDivByZero(t *testing.T) {
	_, err := Div(Integer{Value: 4}, Integer{Value: 0}, Site{})
	require.Error(t, err)
}

func TestModByZero(t *testing.T) {
	_, err := Mod(Integer{Value: 4}, Integer{Value: 0}, Site{})
	require.Error(t, err)
}

func TestPowCheckedInteger(t *testing.T) {
	v, err := Pow(Integer{Value: 2}, Integer{Value: 10}, Site{})
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: 1024}, v)
}

func TestIndexListNegative(t *testing.T) {
	l := List{Items: []Value{Integer{Value: 1}, Integer{Value: 2}, Integer{Value: 3}}}
	v, err := Index(l, Integer{Value: -1}, Site{})
	require.NoError(t, err)
	assert.Equal(t, Integer{Value: 3}, v)
}

func TestIndexOutOfBounds(t *testing.T) {
	l := List{Items: []Value{Integer{Value: 1}}}
	_, err := Index(l, Integer{Value: 5}, Site{})
	require.Error(t, err)
}

func TestIndexMapKeyNotFound(t *testing.T) {
	m := Map{Pairs: []MapPair{{Key: "a", Value: Integer{Value: 1}}}}
	_, err := Index(m, String{Value: "missing"}, Site{})
	require.Error(t, err)
}

func TestSliceBasic(t *testing.T) {
	l := List{Items: []Value{Integer{Value: 0}, Integer{Value: 1}, Integer{Value: 2}, Integer{Value: 3}}}
	v, err := Slice(l, Integer{Value: 1}, Integer{Value: 3}, nil, Site{})
	require.NoError(t, err)
	out := v.(List)
	require.Len(t, out.Items, 2)
	assert.Equal(t, Integer{Value: 1}, out.Items[0])
	assert.Equal(t, Integer{Value: 2}, out.Items[1])
}

func TestSliceNegativeStepReverses(t *testing.T) {
	l := List{Items: []Value{Integer{Value: 0}, Integer{Value: 1}, Integer{Value: 2}}}
	v, err := Slice(l, nil, nil, Integer{Value: -1}, Site{})
	require.NoError(t, err)
	out := v.(List)
	require.Len(t, out.Items, 3)
	assert.Equal(t, Integer{Value: 2}, out.Items[0])
	assert.Equal(t, Integer{Value: 0}, out.Items[2])
}

func TestRangeReversedWhenDescending(t *testing.T) {
	r := Range(5, 2)
	assert.Equal(t, []int64{5, 4, 3}, Iterate(r))
}

func TestRangeAscending(t *testing.T) {
	r := Range(2, 5)
	assert.Equal(t, []int64{2, 3, 4}, Iterate(r))
}

const math64Max = 1<<63 - 1
