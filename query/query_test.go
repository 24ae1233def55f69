package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon/parser"
	"github.com/dhamidi/hocon/query"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	n, err := parser.Parse([]byte(src), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	return n
}

func TestGetDottedPath(t *testing.T) {
	root := parse(t, "a { b { c = 1 } }")
	v := query.Of(root).Get("a.b.c")
	n, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestGetMissingPathReportsNone(t *testing.T) {
	root := parse(t, "a = 1")
	v := query.Of(root).Get("nope.really")
	require.True(t, v.IsMissing())
	_, ok := v.AsInt()
	require.False(t, ok)
	_, ok = v.AsString()
	require.False(t, ok)
}

// S6
func TestAsSizeSIUnit(t *testing.T) {
	root := parse(t, "size = 10KB")
	n, err := query.Of(root).Get("size").AsSize()
	require.NoError(t, err)
	require.Equal(t, int64(10_000), n)
}

func TestAsSizeIECUnit(t *testing.T) {
	root := parse(t, "size = 1KiB")
	n, err := query.Of(root).Get("size").AsSize()
	require.NoError(t, err)
	require.Equal(t, int64(1024), n)
}

func TestAsSizeBareBytes(t *testing.T) {
	root := parse(t, "size = 512")
	n, err := query.Of(root).Get("size").AsSize()
	require.NoError(t, err)
	require.Equal(t, int64(512), n)
}

func TestAsDuration(t *testing.T) {
	root := parse(t, "t = 10ms")
	d, err := query.Of(root).Get("t").AsDuration()
	require.NoError(t, err)
	require.Equal(t, 10*time.Millisecond, d)
}

func TestAsDurationLongForm(t *testing.T) {
	root := parse(t, "t = 2seconds")
	d, err := query.Of(root).Get("t").AsDuration()
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, d)
}

func TestAsPeriod(t *testing.T) {
	root := parse(t, "p = 3weeks")
	p, err := query.Of(root).Get("p").AsPeriod()
	require.NoError(t, err)
	require.Equal(t, int64(3), p.Weeks)
}

// S7
func TestAsArrayCompactsNumericKeyedObject(t *testing.T) {
	root := parse(t, `x = { "0":"a", "2":"c", "1":"b" }`)
	vals, ok := query.Of(root).Get("x").AsArray()
	require.True(t, ok)
	require.Len(t, vals, 3)
	s0, _ := vals[0].AsString()
	s1, _ := vals[1].AsString()
	s2, _ := vals[2].AsString()
	require.Equal(t, "a", s0)
	require.Equal(t, "b", s1)
	require.Equal(t, "c", s2)
}

func TestAsArrayPlainArray(t *testing.T) {
	root := parse(t, "x = [1,2,3]")
	vals, ok := query.Of(root).Get("x").AsArray()
	require.True(t, ok)
	require.Len(t, vals, 3)
}

func TestDecodeStruct(t *testing.T) {
	type Inner struct {
		Name string `hocon:"name"`
	}
	type Config struct {
		Port  int64 `hocon:"port"`
		Inner Inner `hocon:"inner"`
	}
	root := parse(t, `port = 8080
inner { name = "svc" }`)

	var cfg Config
	require.NoError(t, query.Decode(root, &cfg))
	require.Equal(t, int64(8080), cfg.Port)
	require.Equal(t, "svc", cfg.Inner.Name)
}

func TestDecodeSliceOfStrings(t *testing.T) {
	type Config struct {
		Names []string `hocon:"names"`
	}
	root := parse(t, `names = ["a", "b"]`)
	var cfg Config
	require.NoError(t, query.Decode(root, &cfg))
	require.Equal(t, []string{"a", "b"}, cfg.Names)
}
