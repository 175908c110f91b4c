package twiconset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	return &Loader{
		Cache: NewCache(),
		Locator: &Locator{
			FS:    OSFileSystem{},
			Roots: []string{"testdata/node_modules/"},
		},
		FS: OSFileSystem{},
	}
}

func TestLoadPrefixCached(t *testing.T) {
	l := newTestLoader()

	s1, ok := l.Load(FromString("mdi-light"))
	require.True(t, ok)
	assert.Equal(t, "mdi-light", s1.Prefix)
	require.NotNil(t, s1.Info, "info.json should be grafted onto the icon set")
	assert.Equal(t, "Material Design Light", s1.Info.Name)

	// the second load must not touch the file system
	l.FS = failFS{}
	l.Locator.FS = failFS{}
	s2, ok := l.Load(FromString("mdi-light"))
	require.True(t, ok)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, l.Cache.Len())
}

func TestLoadFuncNotCached(t *testing.T) {
	l := newTestLoader()
	calls := 0
	src := FromFunc(func() *IconSet {
		calls++
		return &IconSet{Prefix: "live"}
	})

	s1, ok := l.Load(src)
	require.True(t, ok)
	s2, ok := l.Load(src)
	require.True(t, ok)

	assert.Equal(t, 2, calls)
	assert.NotSame(t, s1, s2)
	assert.Equal(t, 0, l.Cache.Len())
}

func TestLoadFuncNil(t *testing.T) {
	l := newTestLoader()
	_, ok := l.Load(FromFunc(func() *IconSet { return nil }))
	assert.False(t, ok)
}

func TestLoadObject(t *testing.T) {
	l := newTestLoader()
	set := &IconSet{Prefix: "obj", Icons: map[string]*Icon{"a": {Body: "<g/>"}}}
	s, ok := l.Load(FromIconSet(set))
	require.True(t, ok)
	assert.Same(t, set, s)
	assert.Equal(t, 0, l.Cache.Len())
}

func TestLoadInlineJSONNotCached(t *testing.T) {
	l := newTestLoader()
	parses := 0
	l.parse = func(b []byte) (*IconSet, error) {
		parses++
		return &IconSet{Prefix: "inline"}, nil
	}

	const text = `{"prefix":"inline","icons":{"x":{"body":"<g/>"}}}`
	_, ok := l.Load(FromString(text))
	require.True(t, ok)
	_, ok = l.Load(FromString(text))
	require.True(t, ok)

	assert.Equal(t, 2, parses)
	assert.Equal(t, 0, l.Cache.Len())
}

func TestLoadInlineJSONValue(t *testing.T) {
	l := newTestLoader()
	s, ok := l.Load(FromString(`{"prefix":"inline","icons":{"x":{"body":"<g/>","width":24}}}`))
	require.True(t, ok)
	assert.Equal(t, &IconSet{
		Prefix: "inline",
		Icons:  map[string]*Icon{"x": {Body: "<g/>", Width: 24}},
	}, s)
}

func TestLoadInlineJSONMalformed(t *testing.T) {
	l := newTestLoader()
	_, ok := l.Load(FromString(`{"prefix":`))
	assert.False(t, ok)
	assert.Equal(t, 0, l.Cache.Len())
}

func TestLoadFullPackage(t *testing.T) {
	l := newTestLoader()

	// @iconify-json/noinfo has no info.json, so the full package wins
	s, ok := l.Load(FromString("noinfo"))
	require.True(t, ok)
	require.NotNil(t, s.Info)
	assert.Equal(t, "No Info (full package)", s.Info.Name)
}

func TestLoadFileName(t *testing.T) {
	l := newTestLoader()
	fn := filepath.Join("testdata", "custom.json")

	s, ok := l.Load(FromString(fn))
	require.True(t, ok)
	assert.Equal(t, "custom", s.Prefix)

	s2, ok := l.Load(FromString(fn))
	require.True(t, ok)
	assert.Same(t, s, s2)
}

func TestLoadNotFound(t *testing.T) {
	l := newTestLoader()

	for _, src := range []string{
		"does-not-exist",
		"testdata/missing.json",
		"testdata/broken.json",
	} {
		_, ok := l.Load(FromString(src))
		assert.False(t, ok, src)
	}
	assert.Equal(t, 0, l.Cache.Len())
}

func TestLoadCacheIsolation(t *testing.T) {
	l1 := newTestLoader()
	l2 := newTestLoader()

	s1, ok := l1.Load(FromString("mdi-light"))
	require.True(t, ok)
	s2, ok := l2.Load(FromString("mdi-light"))
	require.True(t, ok)

	assert.NotSame(t, s1, s2)
	assert.Equal(t, s1, s2)
}

func TestLoadStale(t *testing.T) {
	l := newTestLoader()
	fn := filepath.Join(t.TempDir(), "set.json")
	l.FS = &memFS{files: map[string]string{fn: `{"prefix":"v1","icons":{}}`}}

	s, ok := l.Load(FromString(fn))
	require.True(t, ok)
	assert.Equal(t, "v1", s.Prefix)

	l.FS.(*memFS).files[fn] = `{"prefix":"v2","icons":{}}`
	s, ok = l.Load(FromString(fn))
	require.True(t, ok)
	assert.Equal(t, "v1", s.Prefix, "cached icon sets are not reloaded")
}

type failFS struct{}

func (failFS) ReadFile(name string) ([]byte, error) {
	return nil, errors.New("unexpected read of " + name)
}

func (failFS) IsFile(name string) bool { return false }

type memFS struct {
	files map[string]string
}

func (m *memFS) ReadFile(name string) ([]byte, error) {
	s, ok := m.files[name]
	if !ok {
		return nil, errors.New("not found: " + name)
	}
	return []byte(s), nil
}

func (m *memFS) IsFile(name string) bool {
	_, ok := m.files[name]
	return ok
}
