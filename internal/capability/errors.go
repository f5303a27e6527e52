package capability

import "errors"

// ErrNotFound is returned by ClipFetcher when the clip page request comes
// back 404: there is nothing at this ID, as opposed to a transient failure.
var ErrNotFound = errors.New("capability: not found")
