package iconify

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gotailwindcss/iconify/twiconset"
)

// CustomiseFunc can replace the body of an icon before CSS is generated.
type CustomiseFunc func(content, name, prefix string) string

// DynamicOptions configures classes like "icon-[mdi-light--home]" that are
// generated on demand.
type DynamicOptions struct {
	// Prefix is the class prefix, an empty prefix disables dynamic classes.
	Prefix string

	// OverrideOnly omits the rules shared by all icons and only emits the
	// icon specific ones.
	OverrideOnly bool

	// Scale is the icon height in em, 0 omits width and height.
	Scale float64

	// IconSets maps prefixes to custom icon set sources.
	IconSets map[string]twiconset.Source

	// ForceBrackets only matches "icon-[...]", not "icon-...".
	ForceBrackets bool

	Customise CustomiseFunc
}

// PreparsedOptions configures rules generated up front for every icon of the
// listed icon sets.
type PreparsedOptions struct {
	// Prefixes lists the icon sets, by prefix, file name, JSON or icon set.
	// Nil disables preparsed rules.
	Prefixes []twiconset.Source

	// IconSelector is the selector for each icon, "{prefix}" and "{name}"
	// are replaced.
	IconSelector string

	MaskSelector       string // rules for monotone icons
	BackgroundSelector string // rules for icons with a palette

	// VarName is the name of the CSS variable holding the icon, without "--".
	VarName string

	// Square skips width for icons that are not square.
	Square bool

	Scale     float64
	IconSets  map[string]twiconset.Source
	Customise CustomiseFunc
}

// DefaultDynamicOptions returns the options used for keys not present in the
// configuration.
func DefaultDynamicOptions() DynamicOptions {
	return DynamicOptions{
		Prefix:        "icon",
		Scale:         1,
		ForceBrackets: true,
	}
}

// DefaultPreparsedOptions returns the options used for keys not present in
// the configuration.
func DefaultPreparsedOptions() PreparsedOptions {
	return PreparsedOptions{
		IconSelector:       ".{prefix}--{name}",
		MaskSelector:       ".iconify",
		BackgroundSelector: ".iconify-color",
		VarName:            "svg",
		Square:             true,
		Scale:              1,
	}
}

// ConfigError is returned for icon set lists that cannot be parsed.
type ConfigError struct {
	Name    string   // property name
	Value   any      // offending value
	Allowed []string // accepted function names
}

func (e *ConfigError) Error() string {
	examples := make([]string, 0, len(e.Allowed)*2)
	for _, fn := range e.Allowed {
		examples = append(examples, fn+"(key1, value1)", fn+"(key2, value2)")
	}
	return fmt.Sprintf("invalid %s property: %v; expected: %s", e.Name, e.Value, strings.Join(examples, ", "))
}

type optionSetter func(d *DynamicOptions, p *PreparsedOptions, v any) error

// optionTable maps canonical keys (see canonicalKey) to setters.  Invalid
// values leave the option unchanged.
var optionTable = map[string]optionSetter{
	"prefix": func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		switch v := v.(type) {
		case bool:
			if !v {
				d.Prefix = ""
			}
		case string:
			d.Prefix = v
		}
		return nil
	},
	"overrideonly":       boolOption(func(d *DynamicOptions, p *PreparsedOptions) *bool { return &d.OverrideOnly }),
	"forcebrackets":      boolOption(func(d *DynamicOptions, p *PreparsedOptions) *bool { return &d.ForceBrackets }),
	"square":             boolOption(func(d *DynamicOptions, p *PreparsedOptions) *bool { return &p.Square }),
	"iconselector":       stringOption(func(p *PreparsedOptions) *string { return &p.IconSelector }),
	"maskselector":       stringOption(func(p *PreparsedOptions) *string { return &p.MaskSelector }),
	"backgroundselector": stringOption(func(p *PreparsedOptions) *string { return &p.BackgroundSelector }),
	"varname":            stringOption(func(p *PreparsedOptions) *string { return &p.VarName }),
	"prefixes": func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		if prefixes, ok := prefixList(v); ok {
			p.Prefixes = prefixes
		}
		return nil
	},
	"iconsets": func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		sets, err := parseIconSets("icon-set", v)
		if err != nil {
			return err
		}
		d.IconSets = sets
		p.IconSets = sets
		return nil
	},
	"scale": func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		scale := floatValue(v, d.Scale)
		d.Scale = scale
		p.Scale = scale
		return nil
	},
}

func boolOption(field func(*DynamicOptions, *PreparsedOptions) *bool) optionSetter {
	return func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		f := field(d, p)
		*f = boolValue(v, *f)
		return nil
	}
}

func stringOption(field func(*PreparsedOptions) *string) optionSetter {
	return func(d *DynamicOptions, p *PreparsedOptions, v any) error {
		if s, ok := v.(string); ok {
			*field(p) = s
		}
		return nil
	}
}

// canonicalKey folds "iconSets", "icon-sets" and "iconsets" to the same key.
func canonicalKey(k string) string {
	k = strings.ToLower(k)
	if strings.ContainsAny(k, "-_") {
		k = strings.NewReplacer("-", "", "_", "").Replace(k)
	}
	return k
}

// Normalize converts loosely typed configuration, as found in CSS @plugin
// blocks or config files, into options for both plugin modes.  Unknown keys
// and values of the wrong type are ignored; the only error is an icon set
// list that cannot be parsed, which is a *ConfigError.
func Normalize(raw map[string]any) (DynamicOptions, PreparsedOptions, error) {
	d := DefaultDynamicOptions()
	p := DefaultPreparsedOptions()
	for _, k := range sortedKeys(raw) {
		set, ok := optionTable[canonicalKey(k)]
		if !ok {
			continue
		}
		if err := set(&d, &p, raw[k]); err != nil {
			return d, p, err
		}
	}
	return d, p, nil
}

func sortedKeys(m map[string]any) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func boolValue(v any, def bool) bool {
	switch v {
	case true, "1", "true":
		return true
	case false, "0", "false":
		return false
	}
	return def
}

func floatValue(v any, def float64) float64 {
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case string:
		// leading number only, "1.5em" is 1.5
		m := leadingFloatRE.FindString(strings.TrimSpace(v))
		if m == "" {
			return def
		}
		n, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return def
		}
		f = n
	default:
		return def
	}
	if math.IsNaN(f) {
		return def
	}
	return f
}

var leadingFloatRE = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func prefixList(v any) ([]twiconset.Source, bool) {
	switch v := v.(type) {
	case string:
		return []twiconset.Source{twiconset.FromString(v)}, true
	case []string:
		ret := make([]twiconset.Source, 0, len(v))
		for _, s := range v {
			ret = append(ret, twiconset.FromString(s))
		}
		return ret, true
	case []twiconset.Source:
		return v, true
	case []any:
		ret := make([]twiconset.Source, 0, len(v))
		for _, item := range v {
			if src, ok := sourceValue(item); ok {
				ret = append(ret, src)
			}
		}
		return ret, true
	}
	return nil, false
}

// sourceValue converts a configuration value into an icon set source.  Maps
// (e.g. an icon set written inline in YAML) are converted to JSON.
func sourceValue(v any) (twiconset.Source, bool) {
	switch v := v.(type) {
	case string:
		return twiconset.FromString(v), true
	case twiconset.Source:
		return v, true
	case *twiconset.IconSet:
		return twiconset.FromIconSet(v), v != nil
	case func() *twiconset.IconSet:
		return twiconset.FromFunc(v), v != nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return twiconset.Source{}, false
		}
		return twiconset.FromString(string(b)), true
	}
	return twiconset.Source{}, false
}

// parseIconSets parses `name(k1, v1), name(k2, v2)` into {k1: v1, k2: v2}.
// The value can be one string, a list of strings or a map.
func parseIconSets(name string, v any) (map[string]twiconset.Source, error) {
	cfgErr := &ConfigError{Name: name, Value: v, Allowed: []string{name}}

	var items []string
	switch v := v.(type) {
	case string:
		items = []string{v}
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, cfgErr
			}
			items = append(items, s)
		}
	case map[string]twiconset.Source:
		return v, nil
	case map[string]string:
		ret := make(map[string]twiconset.Source, len(v))
		for k, s := range v {
			ret[k] = twiconset.FromString(s)
		}
		return ret, nil
	case map[string]any:
		ret := make(map[string]twiconset.Source, len(v))
		for k, item := range v {
			src, ok := sourceValue(item)
			if !ok {
				return nil, cfgErr
			}
			ret[k] = src
		}
		return ret, nil
	default:
		return nil, cfgErr
	}

	// the key ends at the first comma, the value may contain commas
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `\((.*?)\s*,\s*(.*?)\s*\)$`)
	ret := make(map[string]twiconset.Source, len(items))
	for _, item := range items {
		m := re.FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			return nil, &ConfigError{Name: name, Value: item, Allowed: []string{name}}
		}
		ret[unquote(m[1])] = twiconset.FromString(unquote(m[2]))
	}
	return ret, nil
}

var quotedRE = regexp.MustCompile(`^['"]?([^'"]+)['"]?$`)

// unquote extracts foo from: foo, "foo" or 'foo'
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if m := quotedRE.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
