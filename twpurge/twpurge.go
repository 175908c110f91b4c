// Package twpurge scans markup for class names, which are the candidates
// dynamic icon classes like "icon-[mdi-light--home]" are generated for.
package twpurge

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// MatchDefault is a filename matcher function which will return true for
// common markup and component file extensions.
var MatchDefault = func(fn string) bool {
	ext := strings.ToLower(filepath.Ext(fn))
	switch ext {
	case ".html", ".htm", ".vugu", ".jsx", ".tsx", ".vue", ".svelte", ".astro", ".templ", ".md", ".mdx":
		return true
	}
	return false
}

// Purger parses markup and accumulates the tokens that could be class names.
// It is not safe for concurrent use.
type Purger struct {
	filter      func(tok string) bool // nil accepts every token
	keys        map[string]struct{}   // tokens parsed from the markup, after filter
	newTokenize TokenizerFunc
	log         zerolog.Logger
}

// New returns a new Purger instance.  If filter is not nil only tokens it
// accepts are kept, see HasPrefix.  Passing nil will still result in proper
// function but will use more memory.
func New(filter func(tok string) bool) *Purger {
	return &Purger{
		filter: filter,
		keys:   make(map[string]struct{}),
		log:    zerolog.Nop(),
	}
}

// HasPrefix returns a filter accepting tokens which start with one of the
// prefixes followed by a dash, e.g. HasPrefix("icon") for "icon-[mdi--home]".
func HasPrefix(prefixes ...string) func(tok string) bool {
	return func(tok string) bool {
		for _, p := range prefixes {
			if len(tok) > len(p)+1 && strings.HasPrefix(tok, p) && tok[len(p)] == '-' {
				return true
			}
		}
		return false
	}
}

// SetTokenizer sets the function used to create a Tokenizer for each file,
// NewDefaultTokenizer is used if not set.
func (p *Purger) SetTokenizer(f TokenizerFunc) {
	p.newTokenize = f
}

// SetLogger sets the logger for files parsed.
func (p *Purger) SetLogger(log zerolog.Logger) {
	p.log = log
}

// WalkFunc returns a function which can be called by filepath.Walk
func (p *Purger) WalkFunc(fnmatch func(fn string) bool) filepath.WalkFunc {
	if fnmatch == nil {
		fnmatch = MatchDefault
	}
	return filepath.WalkFunc(func(fpath string, info os.FileInfo, err error) error {
		if err != nil { // any stat errors get returned as-is
			return err
		}
		if info.IsDir() { // ignore dirs
			return nil
		}
		if !fnmatch(fpath) { // ignore if filename doesn't match
			return nil
		}
		return p.ParseFile(fpath)
	})
}

// Glob parses every file matching one of the patterns, which may use "**"
// for any number of directories, e.g. "src/**/*.html".  It returns the
// files parsed.
func (p *Purger) Glob(patterns ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
		matches, err := doublestar.Glob(os.DirFS(base), rel)
		if err != nil {
			return files, err
		}
		for _, m := range matches {
			fpath := filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
			if seen[fpath] {
				continue
			}
			seen[fpath] = true
			st, err := os.Stat(fpath)
			if err != nil {
				return files, err
			}
			if st.IsDir() {
				continue
			}
			if err := p.ParseFile(fpath); err != nil {
				return files, err
			}
			files = append(files, fpath)
		}
	}
	return files, nil
}

// ParseReader adds the tokens in r.
func (p *Purger) ParseReader(r io.Reader) error {
	if p.keys == nil {
		p.keys = make(map[string]struct{})
	}
	var tz Tokenizer
	if p.newTokenize != nil {
		tz = p.newTokenize(r)
	} else {
		tz = NewDefaultTokenizer(r)
	}
	for {
		tok, err := tz.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		k := string(tok)
		if p.filter != nil && !p.filter(k) {
			continue
		}
		p.keys[k] = struct{}{}
	}
}

// ParseFile adds the tokens in the file at fpath.
func (p *Purger) ParseFile(fpath string) error {
	f, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer f.Close()
	before := len(p.keys)
	if err := p.ParseReader(f); err != nil {
		return err
	}
	p.log.Debug().Str("file", fpath).Int("new", len(p.keys)-before).Msg("parsed")
	return nil
}

// Has reports whether k was found.
func (p *Purger) Has(k string) bool {
	_, ok := p.keys[k]
	return ok
}

// Candidates returns every token found, sorted.
func (p *Purger) Candidates() []string {
	ret := make([]string, 0, len(p.keys))
	for k := range p.keys {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Reset forgets all tokens found so far.
func (p *Purger) Reset() {
	p.keys = make(map[string]struct{})
}
