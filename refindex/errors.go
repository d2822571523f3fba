package refindex

import (
	"fmt"
)

// ErrCapacityExceeded is returned when a picture actively references more
// distinct frames than there are frame stores.
type ErrCapacityExceeded struct {
	Unique int
	Max    int
}

func (e ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("%d distinct active references do not fit into %d frame stores", e.Unique, e.Max)
}
