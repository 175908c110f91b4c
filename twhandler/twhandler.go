// Package twhandler provides an HTTP handler that converts CSS files with
// iconify @plugin blocks and serves the result.
package twhandler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/gotailwindcss/iconify"
	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/rs/zerolog"
)

// New returns a Handler which serves the CSS files in fs below pathPrefix,
// e.g. with pathPrefix "/css" a request for "/css/main.css" converts
// "/main.css".  Icon sets are loaded with loader, which is shared by all
// requests so each icon set is read once.  The internal cache is enabled on
// the Handler returned.
func New(fs http.FileSystem, pathPrefix string, loader *twiconset.Loader) *Handler {
	return NewFromFunc(fs, pathPrefix, func(w io.Writer) *iconify.Converter {
		return iconify.New(w, loader)
	})
}

// NewFromFunc is like New but calls converterFunc for every conversion,
// which allows things like candidates from a twpurge.Purger to be set.
func NewFromFunc(fs http.FileSystem, pathPrefix string, converterFunc func(w io.Writer) *iconify.Converter) *Handler {
	return &Handler{
		converterFunc: converterFunc,
		fs:            fs,
		pathPrefix:    pathPrefix,
		cache:         make(map[string]cacheValue),
		headerFunc:    defaultHeaderFunc,
		log:           zerolog.Nop(),
	}
}

func defaultHeaderFunc(w http.ResponseWriter, r *http.Request) {
	cc := w.Header().Get("Cache-Control")
	if cc == "" {
		// Force browser to check each time, but 304 still works.
		w.Header().Set("Cache-Control", "no-cache")
	}
}

// Handler serves an HTTP response for a CSS file that is processed using iconify.Converter.
type Handler struct {
	converterFunc   func(w io.Writer) *iconify.Converter
	fs              http.FileSystem
	notFound        http.Handler
	pathPrefix      string
	writeCloserFunc func(w http.ResponseWriter, r *http.Request) io.WriteCloser
	cache           map[string]cacheValue
	rwmu            sync.RWMutex
	headerFunc      func(w http.ResponseWriter, r *http.Request)
	log             zerolog.Logger
}

// SetMaxAge calls SetHeaderFunc with a function that sets the Cache-Control header (if not already set)
// with a corresponding maximum timeout specified in seconds.  If cache-breaking
// URLs are in use, this is a good option to set in production.
func (h *Handler) SetMaxAge(n int) {
	h.SetHeaderFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := w.Header().Get("Cache-Control")
		if cc == "" {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", n))
		}
	})
}

// SetHeaderFunc assigns a function that gets called immediately before a valid response is served.
// It was added so applications could customize cache headers.  By default, the Cache-Control
// header will be set to "no-cache" if it was not set earlier (causing the browser to check
// each time for an updated resource - which may result in a full response or a 304).
func (h *Handler) SetHeaderFunc(f func(w http.ResponseWriter, r *http.Request)) {
	h.headerFunc = f
}

// SetNotFoundHandler assigns the handler that gets called when something is not found.
func (h *Handler) SetNotFoundHandler(nfh http.Handler) {
	h.notFound = nfh
}

// SetCache with false will disable the cache.
func (h *Handler) SetCache(enabled bool) {
	h.rwmu.Lock()
	defer h.rwmu.Unlock()
	if enabled {
		h.cache = make(map[string]cacheValue)
	} else {
		h.cache = nil
	}
}

// SetWriteCloserFunc assigns a function that wraps the response writer,
// e.g. with a compressor.  Close is called after the response is written.
func (h *Handler) SetWriteCloserFunc(f func(w http.ResponseWriter, r *http.Request) io.WriteCloser) {
	h.writeCloserFunc = f
}

// SetLogger sets the logger for conversion failures.
func (h *Handler) SetLogger(log zerolog.Logger) {
	h.log = log
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	p := path.Clean(r.URL.Path)
	p = path.Clean("/" + strings.TrimPrefix(p, h.pathPrefix))

	f, err := h.fs.Open(p)
	if err != nil {
		code := 500
		if os.IsPermission(err) {
			code = 403
		} else if os.IsNotExist(err) {
			if h.notFound != nil {
				h.notFound.ServeHTTP(w, r)
				return
			}
			code = 404
		}
		http.Error(w, fmt.Sprintf("error opening %s: %v", r.URL.Path, err), code)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		http.Error(w, fmt.Sprintf("stat failed for %s: %v", r.URL.Path, err), 500)
		return
	}
	if st.IsDir() {
		http.Error(w, fmt.Sprintf("%s is a directory", r.URL.Path), 404)
		return
	}

	w.Header().Set("Content-Type", "text/css")

	if h.headerFunc != nil {
		h.headerFunc(w, r)
	}

	h.rwmu.RLock()
	cacheEnabled := h.cache != nil
	cv, ok := h.cache[p]
	h.rwmu.RUnlock()

	// a changed file is converted again
	if !ok || cv.size != st.Size() || cv.tsnano != st.ModTime().UnixNano() {
		content, hash, err := h.process(p, f)
		if err != nil {
			h.log.Error().Err(err).Str("path", p).Msg("processing failed")
			http.Error(w, fmt.Sprintf("processing failed on %s: %v", r.URL.Path, err), 500)
			return
		}
		cv = cacheValue{
			size:    st.Size(),
			tsnano:  st.ModTime().UnixNano(),
			content: content,
			hash:    hash,
		}
		if cacheEnabled {
			h.rwmu.Lock()
			if h.cache != nil {
				h.cache[p] = cv
			}
			h.rwmu.Unlock()
		}
	}

	w.Header().Set("Etag", cv.etag())

	wc := h.makeW(w, r)
	defer wc.Close()

	// handle 304s properly with ServeContent
	http.ServeContent(
		&wwrap{Writer: wc, ResponseWriter: w},
		r,
		p,
		st.ModTime(),
		strings.NewReader(cv.content),
	)
}

func (h *Handler) makeW(w http.ResponseWriter, r *http.Request) io.WriteCloser {
	var wc io.WriteCloser
	if h.writeCloserFunc != nil {
		wc = h.writeCloserFunc(w, r)
	} else {
		wc = &nopWriteCloser{Writer: w}
	}
	return wc
}

// process converts rd, nothing is written to the response so a failed
// conversion can still be reported with a 500.
func (h *Handler) process(name string, rd io.Reader) (content string, hash uint64, reterr error) {

	var outbuf bytes.Buffer
	d := xxhash.New()

	// write to the cache buffer and hash calc'er at the same time
	mw := io.MultiWriter(&outbuf, d)

	conv := h.converterFunc(mw)
	conv.AddReader(name, rd, false)
	err := conv.Run()
	if err != nil {
		reterr = err
		return
	}

	return outbuf.String(), d.Sum64(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (n *nopWriteCloser) Close() error {
	return nil
}

type cacheValue struct {
	size    int64  // in bytes
	tsnano  int64  // file mod time
	content string // output
	hash    uint64 // for e-tag
}

func (cv cacheValue) etag() string {
	return `"` + strconv.FormatUint(cv.hash, 16) + `"`
}

// wwrap wraps a ResponseWriter allowing us to override where the Write calls go
type wwrap struct {
	io.Writer
	http.ResponseWriter
}

func (w *wwrap) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}
