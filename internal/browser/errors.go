package browser

import (
	"errors"
	"fmt"
)

// ErrLaunchTimeout is returned when the browser does not hand back a live
// controller handle within Config.LaunchTimeout. The session is fully torn
// down before this propagates, so a retry relaunches from scratch.
var ErrLaunchTimeout = errors.New("timed out waiting for the browser to launch")

// RefNotFoundError is returned when a ref is absent from the current
// snapshot's table: either it was never issued, or a newer snapshot
// invalidated it. Stale refs are rejected, never resolved to stale elements.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("ref %q not found in the current snapshot; take a new snapshot to get fresh refs", e.Ref)
}
