// Package iconify generates CSS for icons from Iconify icon sets, as a plugin
// for a Tailwind CSS style build.
//
// Two modes are supported.  Dynamic mode matches classes like
// "icon-[mdi-light--home]" found in your markup and generates a rule for each.
// Preparsed mode generates a rule for every icon of the listed icon sets up
// front, e.g. ".mdi-light--home", to be combined with ".iconify" or
// ".iconify-color".
//
// A Plugin registers its rules with a Host.  Registry is the Host used by
// Converter, which reads the plugin configuration from @plugin blocks:
//
//	@plugin "@iconify/tailwind4" {
//		prefixes: mdi-light, flags;
//		scale: 1.5;
//	}
//	@tailwind components;
//	@tailwind utilities;
package iconify

import (
	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/rs/zerolog"
)

// MatchFunc returns the declarations for the value of a matched class, e.g.
// "mdi-light--home" for "icon-[mdi-light--home]".  An empty result means no
// rule is generated.
type MatchFunc func(value string) Declarations

// MatchOptions controls how class names are matched against a prefix.
type MatchOptions struct {
	BracketsOnly bool // only "prefix-[value]"
}

// Host is where a Plugin registers its rules.
type Host interface {
	MatchComponents(components map[string]MatchFunc, opts MatchOptions)
	AddComponents(rules Rules)
	AddUtilities(rules Rules)
}

// Plugin generates icon CSS from normalized options.
type Plugin struct {
	dynamic   DynamicOptions
	preparsed PreparsedOptions
	loader    *twiconset.Loader
	log       zerolog.Logger
}

// Option configures a Plugin.
type Option func(p *Plugin)

// WithLoader sets the loader used for icon sets.  Plugins sharing a loader
// share its cache.
func WithLoader(l *twiconset.Loader) Option {
	return func(p *Plugin) { p.loader = l }
}

// WithLogger sets the logger for warnings about icons that cannot be
// generated.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// WithCustomise sets a function that can change icon content in both modes.
func WithCustomise(f CustomiseFunc) Option {
	return func(p *Plugin) {
		p.dynamic.Customise = f
		p.preparsed.Customise = f
	}
}

// WithIconSet adds a custom icon set for prefix in both modes.
func WithIconSet(prefix string, src twiconset.Source) Option {
	return func(p *Plugin) {
		// options from Normalize may share one map, copy before writing
		d := make(map[string]twiconset.Source, len(p.dynamic.IconSets)+1)
		for k, v := range p.dynamic.IconSets {
			d[k] = v
		}
		d[prefix] = src
		p.dynamic.IconSets = d

		pp := make(map[string]twiconset.Source, len(p.preparsed.IconSets)+1)
		for k, v := range p.preparsed.IconSets {
			pp[k] = v
		}
		pp[prefix] = src
		p.preparsed.IconSets = pp
	}
}

// NewPlugin normalizes raw (see Normalize) and returns a Plugin.  Without
// WithLoader icon sets are loaded with the process wide DefaultCache.
func NewPlugin(raw map[string]any, opts ...Option) (*Plugin, error) {
	d, pp, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	p := &Plugin{
		dynamic:   d,
		preparsed: pp,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.loader == nil {
		l := twiconset.NewLoader()
		l.Cache = twiconset.DefaultCache
		l.Log = p.log
		p.loader = l
	}
	return p, nil
}

// DynamicOptions returns the options for dynamic mode.
func (p *Plugin) DynamicOptions() DynamicOptions { return p.dynamic }

// PreparsedOptions returns the options for preparsed mode.
func (p *Plugin) PreparsedOptions() PreparsedOptions { return p.preparsed }

// Loader returns the icon set loader.
func (p *Plugin) Loader() *twiconset.Loader { return p.loader }

// Register adds the plugin rules to h: a match component for dynamic mode
// (unless the prefix is empty) and components and utilities for preparsed
// mode (if prefixes are configured).
func (p *Plugin) Register(h Host) {
	if prefix := p.dynamic.Prefix; prefix != "" {
		h.MatchComponents(map[string]MatchFunc{
			prefix: p.matchIcon,
		}, MatchOptions{BracketsOnly: p.dynamic.ForceBrackets})
	}

	if p.preparsed.Prefixes != nil {
		h.AddComponents(ComponentRules(p.preparsed))
		h.AddUtilities(UtilityRules(p.loader, p.preparsed, p.log))
	}
}

func (p *Plugin) matchIcon(icon string) Declarations {
	d, err := DynamicRules(p.loader, icon, p.dynamic)
	if err != nil {
		p.log.Warn().Err(err).Str("icon", icon).Msg("cannot generate icon")
		return Declarations{}
	}
	return d
}
