package twiconset

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is what the Locator and Loader read files through.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	IsFile(name string) bool
}

// OSFileSystem implements FileSystem against the OS file system.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFileSystem) IsFile(name string) bool {
	st, err := os.Lstat(name)
	return err == nil && st.Mode().IsRegular()
}

// Resolver resolves a package relative path like "@iconify/json/json/mdi.json"
// to a file name.
type Resolver interface {
	Resolve(path string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(path string) (string, bool)

func (f ResolverFunc) Resolve(path string) (string, bool) { return f(path) }

// NodeResolver resolves package paths the way Node does for packages: each
// NODE_PATH entry, then node_modules in Dir and every parent of it.
type NodeResolver struct {
	FS       FileSystem
	Dir      string   // start directory, working directory if empty
	NodePath []string // extra directories searched first
}

// NewNodeResolver returns a resolver starting at the working directory, with
// NodePath taken from the NODE_PATH environment variable.
func NewNodeResolver(fs FileSystem) *NodeResolver {
	r := &NodeResolver{FS: fs}
	if np := os.Getenv("NODE_PATH"); np != "" {
		r.NodePath = filepath.SplitList(np)
	}
	return r
}

// Resolve implements Resolver.
func (r *NodeResolver) Resolve(path string) (string, bool) {
	fs := r.FS
	if fs == nil {
		fs = OSFileSystem{}
	}
	rel := filepath.FromSlash(path)
	for _, dir := range r.NodePath {
		if dir == "" {
			continue
		}
		fn := filepath.Join(dir, rel)
		if fs.IsFile(fn) {
			return fn, true
		}
	}

	dir := r.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if filepath.Base(dir) != "node_modules" {
			fn := filepath.Join(dir, "node_modules", rel)
			if fs.IsFile(fn) {
				return fn, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultRoots lists directories checked for packages when module resolution
// fails, in order.  Each entry ends with a slash.
var DefaultRoots = []string{
	"./node_modules/",
	"../node_modules/",
	"../../node_modules/",
}

func init() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	if root, ok := rootFromPath(exe); ok {
		DefaultRoots = append([]string{root}, DefaultRoots...)
	}
}

// rootFromPath returns the node_modules directory containing p, if any.
func rootFromPath(p string) (string, bool) {
	p = strings.TrimPrefix(filepath.ToSlash(p), "file://")
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "node_modules" && i > 0 {
			return strings.Join(parts[:i+1], "/") + "/", true
		}
	}
	return "", false
}

// Located holds the files for an icon set.  Info is empty if the metadata is
// in the main file or not available.
type Located struct {
	Main string
	Info string
}

// Locator finds installed icon set packages by prefix.
type Locator struct {
	FS       FileSystem
	Resolver Resolver // nil skips module resolution
	Roots    []string // nil uses DefaultRoots
}

// NewLocator returns a Locator using the OS file system, a NodeResolver and
// DefaultRoots.
func NewLocator() *Locator {
	fs := OSFileSystem{}
	return &Locator{FS: fs, Resolver: NewNodeResolver(fs)}
}

func packagePaths(prefix string) (main, info, full string) {
	return "@iconify-json/" + prefix + "/icons.json",
		"@iconify-json/" + prefix + "/info.json",
		"@iconify/json/json/" + prefix + ".json"
}

// Locate finds the files for the icon set with the given prefix.  It tries
// @iconify-json/{prefix} (icons.json + info.json) before the full
// @iconify/json package, first through the Resolver and then by checking
// each root directly.
func (l *Locator) Locate(prefix string) (Located, bool) {
	mainPath, infoPath, fullPath := packagePaths(prefix)

	if l.Resolver != nil {
		if main, ok := l.Resolver.Resolve(mainPath); ok {
			if info, ok := l.Resolver.Resolve(infoPath); ok {
				return Located{Main: main, Info: info}, true
			}
		}
		if full, ok := l.Resolver.Resolve(fullPath); ok {
			return Located{Main: full}, true
		}
	}

	if main, ok := l.resolveFile(mainPath); ok {
		if info, ok := l.resolveFile(infoPath); ok {
			return Located{Main: main, Info: info}, true
		}
	}
	if full, ok := l.resolveFile(fullPath); ok {
		return Located{Main: full}, true
	}

	return Located{}, false
}

func (l *Locator) resolveFile(name string) (string, bool) {
	fs := l.FS
	if fs == nil {
		fs = OSFileSystem{}
	}
	roots := l.Roots
	if roots == nil {
		roots = DefaultRoots
	}
	for _, root := range roots {
		fn := root + name
		if fs.IsFile(fn) {
			return fn, true
		}
	}
	return "", false
}
