package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader() *twiconset.Loader {
	return &twiconset.Loader{
		Cache: twiconset.NewCache(),
		Locator: &twiconset.Locator{
			FS:    twiconset.OSFileSystem{},
			Roots: []string{"../../testdata/node_modules/"},
		},
		FS: twiconset.OSFileSystem{},
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		fn := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fn), 0o755))
		require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
	}
	return dir
}

func TestBuildStdout(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.css":        `@plugin "@iconify/tailwind4"; @tailwind components; .x { color: red; }`,
		"src/index.html":  `<i class="icon-[mdi-light--home]"></i>`,
		"src/other.html":  `<i class="icon-[flags--nl] p-4"></i>`,
		"src/ignored.txt": `<i class="icon-[mdi-light--alert]"></i>`,
	})

	var out bytes.Buffer
	b := &builder{
		output:  "-",
		content: []string{filepath.Join(dir, "src", "**", "*.html")},
		inputs:  []string{filepath.Join(dir, "main.css")},
		stdout:  &out,
		loader:  testLoader(),
		log:     zerolog.Nop(),
	}
	require.NoError(t, b.run())

	s := out.String()
	assert.True(t, strings.HasPrefix(s, `.icon-\[flags--nl\]{`), s)
	assert.Contains(t, s, `.icon-\[mdi-light--home\]{`)
	assert.NotContains(t, s, "mdi-light--alert")
	assert.True(t, strings.HasSuffix(s, ".x{color:red;}"), s)
}

func TestBuildConfigFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.css": `.x { @apply iconify; }`,
		"iconify.yaml": `
plugin:
  prefixes:
    - mdi-light
  mask-selector: .iconify
  scale: 2
`,
	})

	b := &builder{
		output: filepath.Join(dir, "out.css"),
		inputs: []string{filepath.Join(dir, "main.css")},
		minify: true,
		loader: testLoader(),
		log:    zerolog.Nop(),
	}
	require.NoError(t, b.loadConfig(filepath.Join(dir, "iconify.yaml")))
	assert.Equal(t, []any{"mdi-light"}, b.options["prefixes"])
	assert.Equal(t, 2, b.options["scale"])

	require.NoError(t, b.run())
	data, err := os.ReadFile(filepath.Join(dir, "out.css"))
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, ".x{display:inline-block;width:2em;height:2em;"), s)
	assert.Contains(t, s, ".mdi-light--home{")
	assert.NotContains(t, s, ";}")
}

func TestBuildConfigContent(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"iconify.yaml": "content:\n  - src/*.html\n",
	})
	b := &builder{content: []string{"a/*.vue"}}
	require.NoError(t, b.loadConfig(filepath.Join(dir, "iconify.yaml")))
	assert.Equal(t, []string{"a/*.vue", "src/*.html"}, b.content)
	assert.Nil(t, b.options)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("plugin: [1"), 0o644))
	assert.Error(t, b.loadConfig(filepath.Join(dir, "bad.yaml")))
	assert.Error(t, b.loadConfig(filepath.Join(dir, "missing.yaml")))
}

func TestBuildErrors(t *testing.T) {
	b := &builder{
		inputs: []string{filepath.Join(t.TempDir(), "missing.css")},
		stdout: &bytes.Buffer{},
		loader: testLoader(),
		log:    zerolog.Nop(),
	}
	assert.Error(t, b.run())

	dir := writeFiles(t, map[string]string{"main.css": `.x { @apply nope; }`})
	b.inputs = []string{filepath.Join(dir, "main.css")}
	err := b.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown @apply name: nope")
}

func TestWatchDirs(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"css/main.css":              ``,
		"src/a.html":                ``,
		"src/deep/b.html":           ``,
		"src/node_modules/x/c.html": ``,
		"src/.cache/d.html":         ``,
		"pages/e.html":              ``,
		"pages/sub/f.txt":           ``,
	})

	b := &builder{
		inputs: []string{filepath.Join(dir, "css", "main.css")},
		content: []string{
			filepath.Join(dir, "src", "**", "*.html"),
			filepath.Join(dir, "pages", "*.html"),
		},
	}
	dirs, err := b.watchDirs()
	require.NoError(t, err)
	sort.Strings(dirs)

	want := []string{
		filepath.Join(dir, "css"),
		filepath.Join(dir, "pages"),
		filepath.Join(dir, "src"),
		filepath.Join(dir, "src", "deep"),
	}
	sort.Strings(want)
	assert.Equal(t, want, dirs)
}
