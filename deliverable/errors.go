package deliverable

import "fmt"

var (
	// ErrNotFound is returned when a deliverable for the given session /
	// name pair does not exist in the underlying store.
	ErrNotFound = fmt.Errorf("deliverable not found")
)
