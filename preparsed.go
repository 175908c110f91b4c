package iconify

import (
	"strings"

	"github.com/gotailwindcss/iconify/twiconset"
	"github.com/rs/zerolog"
)

// ComponentRules returns the rules for the mask and background selectors,
// which are combined with the icon classes from UtilityRules, e.g.
// class="iconify mdi-light--home".
func ComponentRules(opts PreparsedOptions) Rules {
	rules := make(Rules, 2)
	if opts.MaskSelector != "" {
		rules[opts.MaskSelector] = commonRules(true, opts.VarName, opts.Scale)
	}
	if opts.BackgroundSelector != "" {
		rules[opts.BackgroundSelector] = commonRules(false, opts.VarName, opts.Scale)
	}
	return rules
}

// UtilityRules returns a rule for every visible icon in the icon sets listed
// in opts.Prefixes.  Icon sets that cannot be loaded are logged and skipped.
func UtilityRules(loader *twiconset.Loader, opts PreparsedOptions, log zerolog.Logger) Rules {
	rules := make(Rules)
	for _, src := range opts.Prefixes {
		key, isText := src.Text()
		if isText {
			if custom, ok := opts.IconSets[key]; ok {
				src = custom
			}
		}

		set, ok := loader.Load(src)
		if !ok {
			log.Warn().Str("source", src.String()).Msg("cannot load icon set")
			continue
		}

		prefix := set.Prefix
		if prefix == "" && isText && twiconset.ValidName(key) {
			prefix = key
		}

		for _, name := range set.Names() {
			r, ok := renderIcon(set, prefix, name, opts.Customise)
			if !ok {
				continue
			}
			sel := iconSelector(opts.IconSelector, prefix, name)
			decls := Declarations{{"--" + opts.VarName, r.url}}
			if !opts.Square {
				if w, ok := iconWidth(r, opts.Scale); ok {
					decls.Set("width", w)
				}
			}
			rules[sel] = decls
		}
	}
	return rules
}

func iconSelector(tmpl, prefix, name string) string {
	return strings.NewReplacer("{prefix}", prefix, "{name}", name).Replace(tmpl)
}
