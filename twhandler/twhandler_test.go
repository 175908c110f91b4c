package twhandler_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gotailwindcss/iconify"
	"github.com/gotailwindcss/iconify/twhandler"
	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader() *twiconset.Loader {
	return &twiconset.Loader{
		Cache: twiconset.NewCache(),
		Locator: &twiconset.Locator{
			FS:    twiconset.OSFileSystem{},
			Roots: []string{"testdata/node_modules/"},
		},
		FS: twiconset.OSFileSystem{},
	}
}

func get(t *testing.T, h http.Handler, target string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", target, nil)
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	h.ServeHTTP(w, r)
	res := w.Result()
	t.Cleanup(func() { res.Body.Close() })
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(b)
}

func TestHandler(t *testing.T) {

	td, _ := filepath.Abs("testdata")
	h := twhandler.New(http.Dir(td), "/td1", testLoader())

	res, bs := get(t, h, "/td1/demo1.css", nil)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "text/css", res.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
	assert.Contains(t, bs, `.iconify{display:inline-block;`)
	assert.Contains(t, bs, `.test1{display:inline-block;width:1em;`)
	assert.Contains(t, bs, `.mdi-light--home{--svg:url(`)
	assert.NotContains(t, bs, "@plugin")

	etag := res.Header.Get("Etag")
	require.NotEmpty(t, etag)

	// served from cache, same etag
	res2, bs2 := get(t, h, "/td1/demo1.css", nil)
	assert.Equal(t, etag, res2.Header.Get("Etag"))
	assert.Equal(t, bs, bs2)

	res3, _ := get(t, h, "/td1/demo1.css", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, res3.StatusCode)

}

func TestHandlerNotFound(t *testing.T) {
	td, _ := filepath.Abs("testdata")
	h := twhandler.New(http.Dir(td), "/td1", testLoader())

	res, _ := get(t, h, "/td1/missing.css", nil)
	assert.Equal(t, 404, res.StatusCode)

	h.SetNotFoundHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(418)
	}))
	res, _ = get(t, h, "/td1/missing.css", nil)
	assert.Equal(t, 418, res.StatusCode)
}

func TestHandlerError(t *testing.T) {
	td, _ := filepath.Abs("testdata")
	h := twhandler.New(http.Dir(td), "", testLoader())

	res, bs := get(t, h, "/broken.css", nil)
	assert.Equal(t, 500, res.StatusCode)
	assert.Contains(t, bs, "unknown @apply name")
}

func TestHandlerFileChange(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(fn, []byte(`.a { display: block; }`), 0o644))

	h := twhandler.New(http.Dir(dir), "", testLoader())
	h.SetMaxAge(60)

	res, bs := get(t, h, "/main.css", nil)
	assert.Equal(t, ".a{display:block;}", bs)
	assert.Equal(t, "public, max-age=60", res.Header.Get("Cache-Control"))

	require.NoError(t, os.WriteFile(fn, []byte(`.b { display: block; }`), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(fn, later, later))

	_, bs = get(t, h, "/main.css", nil)
	assert.Equal(t, ".b{display:block;}", bs)
}

func TestHandlerFromFunc(t *testing.T) {
	td, _ := filepath.Abs("testdata")
	loader := testLoader()
	h := twhandler.NewFromFunc(http.Dir(td), "", func(w io.Writer) *iconify.Converter {
		c := iconify.New(w, loader)
		c.SetCandidates([]string{"icon-[mdi-light--home]"})
		return c
	})
	h.SetCache(false)

	_, bs := get(t, h, "/demo1.css", nil)
	assert.Contains(t, bs, `.icon-\[mdi-light--home\]{display:inline-block;`)
}

func TestHandlerWriteCloser(t *testing.T) {
	td, _ := filepath.Abs("testdata")
	h := twhandler.New(http.Dir(td), "", testLoader())
	h.SetWriteCloserFunc(func(w http.ResponseWriter, r *http.Request) io.WriteCloser {
		w.Header().Set("Content-Encoding", "gzip")
		return gzip.NewWriter(w)
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/demo1.css", nil))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), ".iconify{"))
}
