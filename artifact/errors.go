package artifact

import "fmt"

var (
	// ErrNotFound is returned when no artifact with the given name exists in
	// the underlying store.
	ErrNotFound = fmt.Errorf("artifact not found")
)
