package iconify

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchValue(t *testing.T) {
	tcases := []struct {
		class, prefix string
		brackets      bool
		want          string
		ok            bool
	}{
		{"icon-[mdi--home]", "icon", true, "mdi--home", true},
		{"icon-[mdi--home]", "icon", false, "mdi--home", true},
		{"icon-mdi--home", "icon", true, "", false},
		{"icon-mdi--home", "icon", false, "mdi--home", true},
		{"icon-[]", "icon", false, "", false},
		{"icon-[mdi--home", "icon", false, "", false},
		{"icon-", "icon", false, "", false},
		{"icons-[mdi--home]", "icon", false, "", false},
		{"i-[mdi--home]", "icon", false, "", false},
	}
	for _, tc := range tcases {
		v, ok := matchValue(tc.class, tc.prefix, MatchOptions{BracketsOnly: tc.brackets})
		assert.Equal(t, tc.ok, ok, tc.class)
		assert.Equal(t, tc.want, v, tc.class)
	}
}

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry()
	calls := map[string]int{}
	r.MatchComponents(map[string]MatchFunc{
		"icon": func(v string) Declarations {
			calls[v]++
			if v == "empty" {
				return Declarations{}
			}
			return Declarations{{"--v", v}}
		},
	}, MatchOptions{BracketsOnly: true})

	d, ok := r.Match("icon-[a--b]")
	require.True(t, ok)
	assert.Equal(t, Declarations{{"--v", "a--b"}}, d)

	// results are memoized
	_, ok = r.Match("icon-[a--b]")
	require.True(t, ok)
	assert.Equal(t, 1, calls["a--b"])

	_, ok = r.Match("icon-[empty]")
	assert.False(t, ok)
	_, ok = r.Match("icon-[empty]")
	assert.False(t, ok)
	assert.Equal(t, 1, calls["empty"])

	_, ok = r.Match("icon-a--b")
	assert.False(t, ok)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.AddComponents(Rules{".iconify": {{"display", "inline-block"}}})
	r.AddUtilities(Rules{".mdi--home": {{"--svg", "url(x)"}}, ".iconify": {{"color", "red"}}})
	r.MatchComponents(map[string]MatchFunc{
		"icon": func(v string) Declarations { return Declarations{{"--svg", v}} },
	}, MatchOptions{})

	d, ok := r.Lookup("iconify")
	require.True(t, ok)
	assert.Equal(t, "display:inline-block;", d.String())

	d, ok = r.Lookup("mdi--home")
	require.True(t, ok)
	assert.Equal(t, "--svg:url(x);", d.String())

	d, ok = r.Lookup("icon-[a--b]")
	require.True(t, ok)
	assert.Equal(t, "--svg:a--b;", d.String())

	_, ok = r.Lookup("other")
	assert.False(t, ok)
}

func TestRegistryMerge(t *testing.T) {
	r := NewRegistry()
	r.AddComponents(Rules{".b": {{"width", "1em"}}, ".a": {{"width", "1em"}}})
	r.AddComponents(Rules{".b": {{"width", "2em"}, {"height", "2em"}}, ".0": {{"x", "y"}}})

	var buf bytes.Buffer
	require.NoError(t, r.WriteComponents(&buf))
	// first registration order, then new selectors
	assert.Equal(t, ".a{width:1em;}.b{width:2em;height:2em;}.0{x:y;}", buf.String())
}

func TestRegistryWriteComponents(t *testing.T) {
	r := NewRegistry()
	r.AddComponents(Rules{".iconify": {{"display", "inline-block"}}})
	r.MatchComponents(map[string]MatchFunc{
		"icon": func(v string) Declarations {
			if v == "bad" {
				return nil
			}
			return Declarations{{"--svg", v}}
		},
	}, MatchOptions{BracketsOnly: true})
	r.SetCandidates([]string{"icon-[z--z]", "icon-[bad]", "flex", "icon-[a--a]", "icon-b--b"})

	var buf bytes.Buffer
	require.NoError(t, r.WriteComponents(&buf))
	assert.Equal(t, `.iconify{display:inline-block;}.icon-\[a--a\]{--svg:a--a;}.icon-\[z--z\]{--svg:z--z;}`, buf.String())

	buf.Reset()
	require.NoError(t, r.WriteUtilities(&buf))
	assert.Empty(t, buf.String())
}

func TestRegistryOpenDist(t *testing.T) {
	r := NewRegistry()
	r.AddComponents(Rules{".c": {{"a", "b"}}})
	r.AddUtilities(Rules{".u": {{"c", "d"}}})

	for name, want := range map[string]string{
		"base":       "",
		"components": ".c{a:b;}",
		"utilities":  ".u{c:d;}",
	} {
		rc, err := r.OpenDist(name)
		require.NoError(t, err, name)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, want, string(b), name)
	}

	_, err := r.OpenDist("components.css")
	assert.Error(t, err)
}
