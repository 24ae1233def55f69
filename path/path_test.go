package path_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon/path"
)

func TestSplitPlainSegments(t *testing.T) {
	require.Equal(t, path.Path{"a", "b", "c"}, path.Split("a.b.c"))
}

func TestSplitQuotedSegmentKeepsLiteralDot(t *testing.T) {
	require.Equal(t, path.Path{"a", "b.c", "d"}, path.Split(`a."b.c".d`))
}

func TestSplitEmptyStringYieldsNoSegments(t *testing.T) {
	require.Nil(t, path.Split(""))
}

func TestJoinQuotesSegmentsContainingDots(t *testing.T) {
	require.Equal(t, `a."b.c".d`, path.Join(path.Path{"a", "b.c", "d"}))
}

func TestSplitJoinRoundTrips(t *testing.T) {
	p := path.Split(`x."y.z".w`)
	require.Equal(t, p, path.Split(path.Join(p)))
}

func TestHeadSplitsFirstSegmentFromRest(t *testing.T) {
	head, rest := path.Split("a.b.c").Head()
	require.Equal(t, "a", head)
	require.Equal(t, path.Path{"b", "c"}, rest)
}

func TestEmptyPathHeadReturnsZeroValues(t *testing.T) {
	head, rest := path.Path(nil).Head()
	require.Equal(t, "", head)
	require.Nil(t, rest)
}
