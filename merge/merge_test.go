package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon/merge"
	"github.com/dhamidi/hocon/parser"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	n, err := parser.Parse([]byte(src), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	return n
}

func TestDocumentsFoldsLaterOverEarlier(t *testing.T) {
	a := parse(t, "x = 1\ny = 1")
	b := parse(t, "y = 2")
	merged := merge.Documents(a, b)

	yv, ok := merged.Obj.Get("y")
	require.True(t, ok)
	require.Equal(t, int64(2), yv.Int)

	xv, ok := merged.Obj.Get("x")
	require.True(t, ok)
	require.Equal(t, int64(1), xv.Int)
}

func TestDocumentsDeepMergesObjects(t *testing.T) {
	a := parse(t, "a { x = 1 }")
	b := parse(t, "a { y = 2 }")
	merged := merge.Documents(a, b)

	av, ok := merged.Obj.Get("a")
	require.True(t, ok)
	xv, _ := av.Obj.Get("x")
	yv, _ := av.Obj.Get("y")
	require.Equal(t, int64(1), xv.Int)
	require.Equal(t, int64(2), yv.Int)
}
