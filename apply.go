package iconify

import "fmt"

// applier resolves @apply class names against the rules registered by
// plugins, including dynamic icon classes.
type applier struct {
	reg *Registry
}

func (a *applier) apply(names []string) ([]byte, error) {
	ret := make([]byte, 0, len(names)*64)
	for _, name := range names {
		d, ok := a.reg.Lookup(name)
		if !ok {
			return ret, fmt.Errorf("unknown @apply name: %s", name)
		}
		ret = append(ret, d.String()...)
	}
	return ret, nil
}
