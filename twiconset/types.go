// Package twiconset loads icon sets in the Iconify JSON format.
//
// Icon sets can be given directly, as inline JSON, as a path to a JSON file
// or as a prefix like "mdi-light" which is located in an installed
// @iconify-json/* or @iconify/json package.  String sources are cached,
// see Cache.
package twiconset

import (
	"regexp"
)

// Default icon dimensions when neither the icon nor the set specifies them.
const (
	DefaultWidth  = 16
	DefaultHeight = 16
)

// maximum alias chain followed by IconSet.Icon
const maxAliasDepth = 10

var iconNameRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidName reports whether s matches the icon name grammar, which is also
// used for icon set prefixes: lower case alphanumeric words joined by single
// hyphens.
func ValidName(s string) bool {
	return iconNameRE.MatchString(s)
}

// IconSet is an icon set in IconifyJSON format.
type IconSet struct {
	Prefix       string            `json:"prefix"`
	Icons        map[string]*Icon  `json:"icons"`
	Aliases      map[string]*Alias `json:"aliases,omitempty"`
	Width        float64           `json:"width,omitempty"`
	Height       float64           `json:"height,omitempty"`
	Left         float64           `json:"left,omitempty"`
	Top          float64           `json:"top,omitempty"`
	Info         *Info             `json:"info,omitempty"`
	LastModified int64             `json:"lastModified,omitempty"`
	NotFound     []string          `json:"not_found,omitempty"`
}

// Icon is a single icon entry.  Zero dimensions fall back to the icon set
// defaults.
type Icon struct {
	Body   string  `json:"body"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	Rotate int     `json:"rotate,omitempty"`
	HFlip  bool    `json:"hFlip,omitempty"`
	VFlip  bool    `json:"vFlip,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
}

// Alias points to another icon, optionally adding transformations.
type Alias struct {
	Parent string  `json:"parent"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	Rotate int     `json:"rotate,omitempty"`
	HFlip  bool    `json:"hFlip,omitempty"`
	VFlip  bool    `json:"vFlip,omitempty"`
	Hidden bool    `json:"hidden,omitempty"`
}

// Info is icon set metadata.  It is stored in a separate info.json file in
// @iconify-json/* packages.
type Info struct {
	Name     string   `json:"name"`
	Total    int      `json:"total,omitempty"`
	Version  string   `json:"version,omitempty"`
	Author   *Author  `json:"author,omitempty"`
	License  *License `json:"license,omitempty"`
	Samples  []string `json:"samples,omitempty"`
	Height   any      `json:"height,omitempty"` // number or list of numbers
	Category string   `json:"category,omitempty"`
	Palette  *bool    `json:"palette,omitempty"`
}

type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type License struct {
	Title string `json:"title"`
	SPDX  string `json:"spdx,omitempty"`
	URL   string `json:"url,omitempty"`
}

// IconData is an icon with all defaults and alias transformations applied.
type IconData struct {
	Body   string
	Width  float64
	Height float64
	Left   float64
	Top    float64
	Rotate int // quarter turns, 0-3
	HFlip  bool
	VFlip  bool
}

// Names returns the names of all visible icons and aliases in the set.
func (s *IconSet) Names() []string {
	ret := make([]string, 0, len(s.Icons)+len(s.Aliases))
	for name, icon := range s.Icons {
		if icon == nil || icon.Hidden {
			continue
		}
		ret = append(ret, name)
	}
	for name, alias := range s.Aliases {
		if alias == nil || alias.Hidden {
			continue
		}
		if _, ok := s.Icon(name); ok {
			ret = append(ret, name)
		}
	}
	return ret
}

// Icon returns the full data for the named icon or alias, following alias
// chains and merging their transformations.
func (s *IconSet) Icon(name string) (IconData, bool) {
	var chain []*Alias
	for depth := 0; depth <= maxAliasDepth; depth++ {
		if icon, ok := s.Icons[name]; ok && icon != nil {
			return s.resolve(icon, chain), true
		}
		alias, ok := s.Aliases[name]
		if !ok || alias == nil || alias.Parent == name {
			return IconData{}, false
		}
		chain = append(chain, alias)
		name = alias.Parent
	}
	return IconData{}, false
}

func (s *IconSet) resolve(icon *Icon, chain []*Alias) IconData {
	d := IconData{
		Body:   icon.Body,
		Width:  firstNonZero(icon.Width, s.Width, DefaultWidth),
		Height: firstNonZero(icon.Height, s.Height, DefaultHeight),
		Left:   firstNonZero(icon.Left, s.Left),
		Top:    firstNonZero(icon.Top, s.Top),
		Rotate: icon.Rotate,
		HFlip:  icon.HFlip,
		VFlip:  icon.VFlip,
	}
	// closest alias wins for dimensions, transformations accumulate
	for i := len(chain) - 1; i >= 0; i-- {
		a := chain[i]
		if a.Width != 0 {
			d.Width = a.Width
		}
		if a.Height != 0 {
			d.Height = a.Height
		}
		if a.Left != 0 {
			d.Left = a.Left
		}
		if a.Top != 0 {
			d.Top = a.Top
		}
		d.Rotate += a.Rotate
		d.HFlip = d.HFlip != a.HFlip
		d.VFlip = d.VFlip != a.VFlip
	}
	d.Rotate = ((d.Rotate % 4) + 4) % 4
	return d
}

func firstNonZero(v ...float64) float64 {
	for _, f := range v {
		if f != 0 {
			return f
		}
	}
	return 0
}
