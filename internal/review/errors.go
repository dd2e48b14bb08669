package review

import (
	"errors"
	"fmt"

	"github.com/jonathan/prospect-scout/internal/types"
)

// ErrNotFound is returned when the referenced discovery or prospect does not exist.
var ErrNotFound = errors.New("not found")

// InvalidTransitionError reports a disallowed discovery state change.
type InvalidTransitionError struct {
	From types.DiscoveryStatus
	To   types.DiscoveryStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}
