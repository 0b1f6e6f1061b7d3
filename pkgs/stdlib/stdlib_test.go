package stdlib

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtml-lang/xtml/pkgs/registry"
	"github.com/xtml-lang/xtml/pkgs/types"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	Register(reg)
	return reg
}

func call(t *testing.T, reg *registry.Registry, name string, args ...types.Value) (types.Value, error) {
	t.Helper()
	return reg.Call("std", name, args)
}

func TestStringFunctions(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, reg, "toUpper", types.Str("ab"))
	require.NoError(t, err)
	assert.Equal(t, types.Str("AB"), got)

	got, err = call(t, reg, "toLower", types.Str("AB"))
	require.NoError(t, err)
	assert.Equal(t, types.Str("ab"), got)

	got, err = call(t, reg, "trim", types.Str("  x  "))
	require.NoError(t, err)
	assert.Equal(t, types.Str("x"), got)

	got, err = call(t, reg, "trimQuotes", types.Str(`"quoted"`))
	require.NoError(t, err)
	assert.Equal(t, types.Str("quoted"), got)

	got, err = call(t, reg, "len", types.Str("hello"))
	require.NoError(t, err)
	assert.Equal(t, types.Num(5), got)
}

func TestStringFunctionsRejectNonStrings(t *testing.T) {
	reg := newRegistry(t)

	for _, name := range []string{"toUpper", "toLower", "trim", "trimQuotes", "len"} {
		got, err := call(t, reg, name, types.Num(1))
		require.Error(t, err, "std::%s", name)
		assert.True(t, got.IsUnknown(), "std::%s", name)
	}
}

func TestConversions(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, reg, "toInt", types.Str("42"))
	require.NoError(t, err)
	assert.Equal(t, types.Num(42), got)

	_, err = call(t, reg, "toInt", types.Str("nope"))
	require.Error(t, err)

	got, err = call(t, reg, "toStr", types.Num(42))
	require.NoError(t, err)
	assert.Equal(t, types.Str("42"), got)

	_, err = call(t, reg, "toStr", types.ArrayOf(nil))
	require.Error(t, err)
}

func TestToStrToIntRoundTrip(t *testing.T) {
	reg := newRegistry(t)

	for _, n := range []int64{0, 1, 42, 999999999, 1<<62 + 1} {
		s, err := call(t, reg, "toStr", types.Num(n))
		require.NoError(t, err)
		back, err := call(t, reg, "toInt", s)
		require.NoError(t, err)
		assert.Equal(t, types.Num(n), back, "n=%d", n)
	}
}

func TestPredicates(t *testing.T) {
	reg := newRegistry(t)

	got, _ := call(t, reg, "isInt", types.Num(5))
	assert.Equal(t, types.BoolValue(true), got)

	got, _ = call(t, reg, "isInt", types.Str("5"))
	assert.Equal(t, types.BoolValue(false), got)

	got, _ = call(t, reg, "isStr", types.Str("x"))
	assert.Equal(t, types.BoolValue(true), got)

	got, _ = call(t, reg, "isStr", types.Num(1))
	assert.Equal(t, types.BoolValue(false), got)
}

func TestArrayFunctions(t *testing.T) {
	reg := newRegistry(t)
	arr := types.ArrayOf([]types.Value{types.Str("a"), types.Str("b"), types.Str("c")})

	got, err := call(t, reg, "count", arr)
	require.NoError(t, err)
	assert.Equal(t, types.Num(3), got)

	got, err = call(t, reg, "get", arr, types.Num(1))
	require.NoError(t, err)
	assert.Equal(t, types.Str("b"), got)

	_, err = call(t, reg, "get", arr, types.Num(3))
	require.Error(t, err, "out of bounds index")

	_, err = call(t, reg, "count", types.Str("x"))
	require.Error(t, err)
}

func TestPrint(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, reg, "print", types.Num(7))
	require.NoError(t, err)
	assert.Equal(t, types.Str("7"), got)
}

func TestRandStr(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, reg, "randStr", types.Num(16))
	require.NoError(t, err)
	assert.Equal(t, types.KindString, got.Kind)
	assert.Len(t, got.Raw, 16)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Za-z]*$`), got.Raw)

	_, err = call(t, reg, "randStr", types.Str("x"))
	require.Error(t, err)
}

func TestUUIDFormat(t *testing.T) {
	reg := newRegistry(t)

	got, err := call(t, reg, "uuid")
	require.NoError(t, err)
	assert.Len(t, got.Raw, 36)
	for _, i := range []int{8, 13, 18, 23} {
		assert.Equal(t, byte('-'), got.Raw[i], "dash at %d", i)
	}
}

func TestUUIDSeededIsDeterministic(t *testing.T) {
	reg := newRegistry(t)

	first, err := call(t, reg, "uuid", types.Num(7))
	require.NoError(t, err)
	second, err := call(t, reg, "uuid", types.Num(7))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := call(t, reg, "uuid", types.Num(8))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestUUIDArity(t *testing.T) {
	reg := newRegistry(t)

	_, err := call(t, reg, "uuid", types.Num(1), types.Num(2))
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "uuid")
}
