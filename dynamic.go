package iconify

import (
	"fmt"
	"regexp"

	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/gotailwindcss/iconify/twsvg"
)

var iconNameSplitRE = regexp.MustCompile(`--|:`)

// renderedIcon is an icon converted to a CSS url() value.
type renderedIcon struct {
	url    string
	mask   bool // monotone icon, rendered with mask-image
	width  float64
	height float64
}

func renderIcon(set *twiconset.IconSet, prefix, name string, customise CustomiseFunc) (renderedIcon, bool) {
	d, ok := set.Icon(name)
	if !ok {
		return renderedIcon{}, false
	}
	if customise != nil {
		d.Body = customise(d.Body, name, prefix)
	}

	mask := twsvg.UsesCurrentColor(d.Body)
	if set.Info != nil && set.Info.Palette != nil {
		mask = !*set.Info.Palette
	}

	svg := twsvg.Build(d)
	return renderedIcon{
		url:    twsvg.URL(twsvg.Minify(svg.String())),
		mask:   mask,
		width:  svg.Width,
		height: svg.Height,
	}, true
}

// commonRules returns the rules shared by all icons of a mode, with the icon
// in var(--varName).
func commonRules(mask bool, varName string, scale float64) Declarations {
	v := "var(--" + varName + ")"
	d := Declarations{{"display", "inline-block"}}
	if scale != 0 {
		d = append(d,
			Declaration{"width", twsvg.Em(scale)},
			Declaration{"height", twsvg.Em(scale)})
	}
	if mask {
		return append(d,
			Declaration{"background-color", "currentColor"},
			Declaration{"-webkit-mask-image", v},
			Declaration{"mask-image", v},
			Declaration{"-webkit-mask-repeat", "no-repeat"},
			Declaration{"mask-repeat", "no-repeat"},
			Declaration{"-webkit-mask-size", "100% 100%"},
			Declaration{"mask-size", "100% 100%"})
	}
	return append(d,
		Declaration{"background-image", v},
		Declaration{"background-repeat", "no-repeat"},
		Declaration{"background-size", "100% 100%"},
		Declaration{"background-color", "transparent"})
}

// iconWidth returns the width of a non-square icon relative to scale.
func iconWidth(icon renderedIcon, scale float64) (string, bool) {
	if icon.width == icon.height || icon.height == 0 {
		return "", false
	}
	if scale == 0 {
		scale = 1
	}
	return twsvg.Em(scale * icon.width / icon.height), true
}

// SplitIconName splits "prefix--name" or "prefix:name".
func SplitIconName(icon string) (prefix, name string, ok bool) {
	parts := iconNameSplitRE.Split(icon, -1)
	if len(parts) != 2 {
		return "", "", false
	}
	if !twiconset.ValidName(parts[0]) || !twiconset.ValidName(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// DynamicRules returns the declarations for a class with the given icon name,
// e.g. "mdi-light--home".  The icon set is taken from opts.IconSets or else
// loaded by prefix.
func DynamicRules(loader *twiconset.Loader, icon string, opts DynamicOptions) (Declarations, error) {
	prefix, name, ok := SplitIconName(icon)
	if !ok {
		return nil, fmt.Errorf("invalid icon name: %q", icon)
	}

	src, ok := opts.IconSets[prefix]
	if !ok {
		src = twiconset.FromString(prefix)
	}
	set, ok := loader.Load(src)
	if !ok {
		return nil, fmt.Errorf("cannot load icon set for %q, install \"@iconify-json/%s\" as a dev dependency?", prefix, prefix)
	}

	r, ok := renderIcon(set, prefix, name, opts.Customise)
	if !ok {
		return nil, fmt.Errorf("cannot find %q, bad icon name?", icon)
	}

	var ret Declarations
	if !opts.OverrideOnly {
		ret = commonRules(r.mask, "svg", opts.Scale)
	}
	if w, ok := iconWidth(r, opts.Scale); ok && opts.Scale != 0 {
		ret.Set("width", w)
	}
	ret.Set("--svg", r.url)
	return ret, nil
}
