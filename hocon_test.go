package hocon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/hocon"
)

func TestLoadStrProducesResolvedTree(t *testing.T) {
	root, err := hocon.New().LoadStr(`a = 1
b = ${a}`, "t").Hocon()
	require.NoError(t, err)
	v, ok := root.Obj.Get("b")
	require.True(t, ok)
	require.Equal(t, int64(1), v.Int)
}

func TestLoadFileAutoDetectsProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	require.NoError(t, os.WriteFile(path, []byte("a.b.c=1\n"), 0644))

	root, err := hocon.New().LoadFile(path).Hocon()
	require.NoError(t, err)
	a, ok := root.Obj.Get("a")
	require.True(t, ok)
	b, ok := a.Obj.Get("b")
	require.True(t, ok)
	c, ok := b.Obj.Get("c")
	require.True(t, ok)
	require.Equal(t, "1", c.Str)
}

func TestResolveDecodesOntoStruct(t *testing.T) {
	type Config struct {
		Port int64 `hocon:"port"`
	}
	loader := hocon.New().LoadStr("port = 8080", "t")
	cfg, err := hocon.Resolve[Config](loader)
	require.NoError(t, err)
	require.Equal(t, int64(8080), cfg.Port)
}

func TestWithNoURLIncludesBlocksLoadURL(t *testing.T) {
	_, err := hocon.New(hocon.WithNoURLIncludes(true)).LoadURL("http://example.invalid/x.conf").Hocon()
	require.Error(t, err)
}
