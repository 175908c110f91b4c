package iconify

import "io"

// Dist is where the CSS for the @tailwind directives is read from.
type Dist interface {
	// OpenDist should return a new ReadCloser for the specific section name.
	// Valid names are "base", "utilities" and "components" (only those exact strings,
	// without .css or anything like that).  The caller is responsible for ensuring
	// Close() is called on the response if the error is nil.
	OpenDist(name string) (io.ReadCloser, error)
}
