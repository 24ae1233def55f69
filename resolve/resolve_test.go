package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon/hocerr"
	"github.com/dhamidi/hocon/parser"
	"github.com/dhamidi/hocon/resolve"
)

func parseAndResolve(t *testing.T, src string, opts ...resolve.Option) *parser.Node {
	t.Helper()
	node, err := parser.Parse([]byte(src), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	resolved, err := resolve.New(opts...).Resolve(node)
	require.NoError(t, err)
	return resolved
}

func get(t *testing.T, obj *parser.Node, key string) *parser.Node {
	t.Helper()
	v, ok := obj.Obj.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

// S4, Invariant: plain forward reference to an earlier/override binding.
func TestSubstitutionResolvesToLatestBinding(t *testing.T) {
	root := parseAndResolve(t, "a=1\nb=${a}\na=2\n")
	require.Equal(t, int64(2), get(t, root, "b").Int)
}

// Invariant 5 end to end.
func TestSelfReferenceAppend(t *testing.T) {
	root := parseAndResolve(t, "a=[1]\na=${a}[2]\n")
	a := get(t, root, "a")
	require.Equal(t, parser.KindArray, a.Kind)
	require.Len(t, a.Elems, 2)
	require.Equal(t, int64(1), a.Elems[0].Int)
	require.Equal(t, int64(2), a.Elems[1].Int)
}

// Invariant 6: `k += v` with no earlier `k = ...` has no prior binding to
// append to, so the implicit self-reference must be treated as absent
// rather than as a dependency on itself.
func TestPlusEqualsWithNoPriorBindingStartsArray(t *testing.T) {
	root := parseAndResolve(t, "k += 1\n")
	k := get(t, root, "k")
	require.Equal(t, parser.KindArray, k.Kind)
	require.Len(t, k.Elems, 1)
	require.Equal(t, int64(1), k.Elems[0].Int)
}

// S5 via +=
func TestPlusEqualsAppendsToArray(t *testing.T) {
	root := parseAndResolve(t, "a=[1,2]\na += 3\n")
	a := get(t, root, "a")
	require.Equal(t, parser.KindArray, a.Kind)
	require.Len(t, a.Elems, 3)
	require.Equal(t, int64(3), a.Elems[2].Int)
}

// Invariant 6: optional substitution dropped from concat.
func TestOptionalSubstitutionDropsFromConcat(t *testing.T) {
	root := parseAndResolve(t, `a = foo${?missing}bar`)
	v := get(t, root, "a")
	require.Equal(t, parser.KindString, v.Kind)
	require.Equal(t, "foobar", v.Str)
}

// Invariant 6: optional substitution as sole value removes the key.
func TestOptionalSubstitutionAsSoleValueRemovesKey(t *testing.T) {
	root := parseAndResolve(t, "a=${?missing}\nb=1\n")
	_, ok := root.Obj.Get("a")
	require.False(t, ok)
	require.Equal(t, int64(1), get(t, root, "b").Int)
}

// Invariant 7
func TestEnvironmentFallback(t *testing.T) {
	root := parseAndResolve(t, `h = ${HOSTNAME_TEST_VAR}`,
		resolve.WithSystemEnvironment(false),
		resolve.WithEnvironment(map[string]string{"HOSTNAME_TEST_VAR": "example"}))
	v := get(t, root, "h")
	require.Equal(t, "example", v.Str)
}

// Invariant 8
func TestSubstitutionCycleStrict(t *testing.T) {
	node, err := parser.Parse([]byte("a=${b}\nb=${a}\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	_, err = resolve.New(resolve.WithMode(parser.ModeStrict)).Resolve(node)
	require.Error(t, err)
}

func TestSubstitutionCycleLenientEmbedsBadValue(t *testing.T) {
	node, err := parser.Parse([]byte("a=${b}\nb=${a}\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	resolved, err := resolve.New(resolve.WithMode(parser.ModeLenient)).Resolve(node)
	require.NoError(t, err)
	a := get(t, resolved, "a")
	require.Equal(t, parser.KindBad, a.Kind)
	require.Equal(t, hocerr.KindSubstitutionCycle, a.Bad.ErrKind)
	b := get(t, resolved, "b")
	require.Equal(t, parser.KindBad, b.Kind)
	require.Equal(t, hocerr.KindSubstitutionCycle, b.Bad.ErrKind)
}

func TestDottedUnquotedValueJoinsWithoutSpaces(t *testing.T) {
	root := parseAndResolve(t, `version = 1.2.3`)
	v := get(t, root, "version")
	require.Equal(t, parser.KindString, v.Kind)
	require.Equal(t, "1.2.3", v.Str)
}

func TestConcatWithSpaceBetweenAtoms(t *testing.T) {
	root := parseAndResolve(t, `greeting = hello world`)
	v := get(t, root, "greeting")
	require.Equal(t, "hello world", v.Str)
}

// A bare self-reference with nothing preceding it has no prior binding to
// resolve against; MergeAt never ran annotateSelfReference for it (there
// was no earlier value to snapshot), so it must report MissingKey rather
// than loop as a cycle against itself.
func TestBareSelfReferenceWithNoPriorBindingIsMissingKey(t *testing.T) {
	node, err := parser.Parse([]byte("k=${k}\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	_, err = resolve.New(resolve.WithMode(parser.ModeStrict), resolve.WithSystemEnvironment(false)).Resolve(node)
	require.Error(t, err)
	var mkErr *hocerr.MissingKeyError
	require.ErrorAs(t, err, &mkErr)
	require.Equal(t, "k", mkErr.Path)
}

// A required substitution that points nowhere (not the tree, not the
// environment) can never resolve no matter how many more rounds run, so it
// must be reported as MissingKey rather than SubstitutionCycle.
func TestMissingKeySubstitutionStrict(t *testing.T) {
	node, err := parser.Parse([]byte("a=${definitely.not.defined.anywhere}\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	_, err = resolve.New(resolve.WithMode(parser.ModeStrict), resolve.WithSystemEnvironment(false)).Resolve(node)
	require.Error(t, err)
	var mkErr *hocerr.MissingKeyError
	require.ErrorAs(t, err, &mkErr)
	require.Equal(t, "definitely.not.defined.anywhere", mkErr.Path)
}

func TestMissingKeySubstitutionLenientEmbedsBadValue(t *testing.T) {
	node, err := parser.Parse([]byte("a=${definitely.not.defined.anywhere}\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	resolved, err := resolve.New(resolve.WithMode(parser.ModeLenient), resolve.WithSystemEnvironment(false)).Resolve(node)
	require.NoError(t, err)
	a := get(t, resolved, "a")
	require.Equal(t, parser.KindBad, a.Kind)
	require.Equal(t, hocerr.KindMissingKey, a.Bad.ErrKind)
}

// A missing required substitution inside a concat should fail the same way,
// not be left pending forever and misreported once the round budget runs out.
func TestMissingKeySubstitutionInsideConcatLenient(t *testing.T) {
	node, err := parser.Parse([]byte(`a = foo${definitely.not.defined.anywhere}bar` + "\n"), "t", parser.ModeStrict, nil)
	require.NoError(t, err)
	resolved, err := resolve.New(resolve.WithMode(parser.ModeLenient), resolve.WithSystemEnvironment(false)).Resolve(node)
	require.NoError(t, err)
	a := get(t, resolved, "a")
	require.Equal(t, parser.KindBad, a.Kind)
	require.Equal(t, hocerr.KindMissingKey, a.Bad.ErrKind)
}

func TestObjectConcatenationDeepMerges(t *testing.T) {
	root := parseAndResolve(t, `a = { x = 1 } { y = 2 }`)
	a := get(t, root, "a")
	require.Equal(t, int64(1), get(t, a, "x").Int)
	require.Equal(t, int64(2), get(t, a, "y").Int)
}
