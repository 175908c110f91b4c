package twiconset

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Loader turns a Source into an icon set.  Failures are never returned as
// errors: anything that cannot be located, read or parsed is reported as
// not found (and logged at debug level).
type Loader struct {
	Cache   *Cache     // nil uses DefaultCache
	Locator *Locator   // nil skips prefix lookups
	FS      FileSystem // nil uses OSFileSystem
	Log     zerolog.Logger

	parse func(b []byte) (*IconSet, error) // replaced in tests
}

// NewLoader returns a Loader with its own empty cache and the default Locator.
func NewLoader() *Loader {
	return &Loader{
		Cache:   NewCache(),
		Locator: NewLocator(),
		FS:      OSFileSystem{},
		Log:     zerolog.Nop(),
	}
}

func (l *Loader) cache() *Cache {
	if l.Cache == nil {
		return DefaultCache
	}
	return l.Cache
}

func (l *Loader) fs() FileSystem {
	if l.FS == nil {
		return OSFileSystem{}
	}
	return l.FS
}

func (l *Loader) unmarshal(b []byte) (*IconSet, error) {
	if l.parse != nil {
		return l.parse(b)
	}
	var s IconSet
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load returns the icon set for src.
//
// Functions are called every time and icon sets are returned as-is, neither
// is cached.  Strings starting with "{" are parsed as JSON and not cached.
// Other strings are looked up in the cache, then located as an icon set
// prefix (if they look like one) and finally read as a file name; a
// successful result is cached under the exact string.
func (l *Loader) Load(src Source) (*IconSet, bool) {
	if src.fn != nil {
		s := src.fn()
		return s, s != nil
	}
	if src.set != nil {
		return src.set, true
	}

	text := src.text
	if strings.HasPrefix(text, "{") {
		s, err := l.unmarshal([]byte(text))
		if err != nil {
			l.Log.Debug().Err(err).Msg("invalid inline icon set JSON")
			return nil, false
		}
		return s, true
	}

	c := l.cache()
	if s, ok := c.Get(text); ok {
		return s, true
	}

	if ValidName(text) && l.Locator != nil {
		if loc, ok := l.Locator.Locate(text); ok {
			if s, ok := l.loadFiles(loc); ok {
				return c.Add(text, s), true
			}
		}
	}

	if s, ok := l.loadFiles(Located{Main: text}); ok {
		return c.Add(text, s), true
	}
	return nil, false
}

func (l *Loader) loadFiles(loc Located) (*IconSet, bool) {
	fs := l.fs()
	b, err := fs.ReadFile(loc.Main)
	if err != nil {
		l.Log.Debug().Err(err).Str("file", loc.Main).Msg("cannot read icon set")
		return nil, false
	}
	s, err := l.unmarshal(b)
	if err != nil {
		l.Log.Debug().Err(err).Str("file", loc.Main).Msg("cannot parse icon set")
		return nil, false
	}
	if s.Info == nil && loc.Info != "" {
		b, err := fs.ReadFile(loc.Info)
		if err != nil {
			l.Log.Debug().Err(err).Str("file", loc.Info).Msg("cannot read icon set info")
			return nil, false
		}
		var info Info
		if err := json.Unmarshal(b, &info); err != nil {
			l.Log.Debug().Err(err).Str("file", loc.Info).Msg("cannot parse icon set info")
			return nil, false
		}
		s.Info = &info
	}
	return s, true
}
