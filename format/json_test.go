package format_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon/format"
	"github.com/dhamidi/hocon/parser"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	n, err := parser.Parse([]byte(src), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	return n
}

func TestEncodePreservesKeyOrder(t *testing.T) {
	root := parse(t, "z = 1\na = 2\nm = 3\n")
	var buf bytes.Buffer
	require.NoError(t, format.NewJSONEncoder(&buf).Encode(root))
	require.Equal(t, `{"z":1,"a":2,"m":3}`, buf.String())
}

func TestEncodeNestedObjectsAndArrays(t *testing.T) {
	root := parse(t, `a { b = [1, "two", true, null] }`)
	var buf bytes.Buffer
	require.NoError(t, format.NewJSONEncoder(&buf).Encode(root))
	require.Equal(t, `{"a":{"b":[1,"two",true,null]}}`, buf.String())
}

func TestEncodeEscapesStrings(t *testing.T) {
	root := parse(t, `s = "line\nbreak \"quoted\""`)
	var buf bytes.Buffer
	require.NoError(t, format.NewJSONEncoder(&buf).Encode(root))
	require.Equal(t, `{"s":"line\nbreak \"quoted\""}`, buf.String())
}

func TestEncodeRejectsUnresolvedNode(t *testing.T) {
	root := parse(t, "a = ${missing}")
	var buf bytes.Buffer
	err := format.NewJSONEncoder(&buf).Encode(root)
	require.Error(t, err)
}
