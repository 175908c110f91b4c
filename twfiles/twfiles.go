// Package twfiles implements twiconset.FileSystem against a net/http.FileSystem,
// so icon sets can be loaded from an OS directory, an embed.FS (via http.FS)
// or any other http.FileSystem.
package twfiles

import (
	"io"
	"net/http"
	"path"
	"path/filepath"
)

// New returns an HTTPFiles instance that reads from the underlying OS directory you provide.
// Implementation is done via net/http Filesystem.
func New(baseDir string) *HTTPFiles {
	return &HTTPFiles{
		FileSystem: http.Dir(baseDir),
	}
}

// NewHTTP returns an HTTPFiles instance which reads from the underlying net/http.FileSystem.
func NewHTTP(fs http.FileSystem) *HTTPFiles {
	return &HTTPFiles{
		FileSystem: fs,
	}
}

// HTTPFiles implements twiconset.FileSystem against a net/http.FileSystem.
// Names are cleaned and rooted, so "./node_modules/x/icons.json" and
// "node_modules/x/icons.json" both open "/node_modules/x/icons.json".
type HTTPFiles struct {
	http.FileSystem                          // underlying http FileSystem
	NameMapFunc     func(name string) string // name conversion func, applied before cleaning
}

func (hf *HTTPFiles) fileName(name string) string {
	if hf.NameMapFunc != nil {
		name = hf.NameMapFunc(name)
	}
	return path.Clean("/" + filepath.ToSlash(name))
}

// ReadFile implements twiconset.FileSystem.
func (hf *HTTPFiles) ReadFile(name string) ([]byte, error) {
	f, err := hf.FileSystem.Open(hf.fileName(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// IsFile implements twiconset.FileSystem.
func (hf *HTTPFiles) IsFile(name string) bool {
	f, err := hf.FileSystem.Open(hf.fileName(name))
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	return err == nil && st.Mode().IsRegular()
}
