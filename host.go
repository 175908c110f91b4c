package iconify

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

type matcher struct {
	prefix string
	fn     MatchFunc
	opts   MatchOptions
}

// Registry collects rules registered by plugins and renders them as CSS.
// It implements Host and Dist.
type Registry struct {
	matchers   []matcher
	components Rules
	compOrder  []string
	utilities  Rules
	utilOrder  []string
	candidates []string
	matched    map[string]Declarations // class name -> result, filled as classes are matched
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(Rules),
		utilities:  make(Rules),
		matched:    make(map[string]Declarations),
	}
}

// MatchComponents implements Host.  Matchers are tried in sorted prefix
// order.
func (r *Registry) MatchComponents(components map[string]MatchFunc, opts MatchOptions) {
	for prefix, fn := range components {
		r.matchers = append(r.matchers, matcher{prefix: prefix, fn: fn, opts: opts})
	}
	sort.SliceStable(r.matchers, func(i, j int) bool {
		return r.matchers[i].prefix < r.matchers[j].prefix
	})
}

// AddComponents implements Host.
func (r *Registry) AddComponents(rules Rules) {
	r.compOrder = addRules(r.components, r.compOrder, rules)
}

// AddUtilities implements Host.
func (r *Registry) AddUtilities(rules Rules) {
	r.utilOrder = addRules(r.utilities, r.utilOrder, rules)
}

// addRules merges src into dst, selectors new to dst are appended to order
// in sorted order.
func addRules(dst Rules, order []string, src Rules) []string {
	for _, sel := range src.Selectors() {
		decls, ok := dst[sel]
		if !ok {
			order = append(order, sel)
		}
		decls.Merge(src[sel])
		dst[sel] = decls
	}
	return order
}

// SetCandidates sets the class names that match components are tried
// against, usually the output of a twpurge.Purger.
func (r *Registry) SetCandidates(classes []string) {
	r.candidates = append([]string(nil), classes...)
	sort.Strings(r.candidates)
}

// matchValue returns the value of class for prefix, e.g. "mdi--home" for
// "icon-[mdi--home]".
func matchValue(class, prefix string, opts MatchOptions) (string, bool) {
	rest := strings.TrimPrefix(class, prefix+"-")
	if len(rest) == len(class) || rest == "" {
		return "", false
	}
	if strings.HasPrefix(rest, "[") {
		if !strings.HasSuffix(rest, "]") || len(rest) < 3 {
			return "", false
		}
		return rest[1 : len(rest)-1], true
	}
	if opts.BracketsOnly {
		return "", false
	}
	return rest, true
}

// Match returns the declarations a match component generates for class.
func (r *Registry) Match(class string) (Declarations, bool) {
	if d, ok := r.matched[class]; ok {
		return d, len(d) > 0
	}
	var ret Declarations
	for _, m := range r.matchers {
		v, ok := matchValue(class, m.prefix, m.opts)
		if !ok {
			continue
		}
		if d := m.fn(v); len(d) > 0 {
			ret = d
			break
		}
	}
	r.matched[class] = ret
	return ret, len(ret) > 0
}

// Lookup returns the declarations for a class name from the registered
// components, utilities or match components, in that order.
func (r *Registry) Lookup(class string) (Declarations, bool) {
	sel := ClassSelector(class)
	if d, ok := r.components[sel]; ok {
		return d, true
	}
	if d, ok := r.utilities[sel]; ok {
		return d, true
	}
	return r.Match(class)
}

// WriteComponents writes the registered components followed by the rules
// for every candidate matched by a match component.
func (r *Registry) WriteComponents(w io.Writer) error {
	if err := writeRules(w, r.compOrder, r.components); err != nil {
		return err
	}
	if len(r.matchers) == 0 {
		return nil
	}
	dynamic := make(Rules)
	var order []string
	for _, class := range r.candidates {
		if d, ok := r.Match(class); ok {
			sel := ClassSelector(class)
			dynamic[sel] = d
			order = append(order, sel)
		}
	}
	return writeRules(w, order, dynamic)
}

// WriteUtilities writes the registered utilities.
func (r *Registry) WriteUtilities(w io.Writer) error {
	return writeRules(w, r.utilOrder, r.utilities)
}

// OpenDist implements Dist.  Valid names are "base" (always empty),
// "components" and "utilities".
func (r *Registry) OpenDist(name string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	var err error
	switch name {
	case "base":
	case "components":
		err = r.WriteComponents(&buf)
	case "utilities":
		err = r.WriteUtilities(&buf)
	default:
		return nil, fmt.Errorf("unknown dist name %q", name)
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}
