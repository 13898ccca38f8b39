package table

import "fmt"

// ErrNameTooLong is returned when a name exceeds NameTreeMaxDepth components.
type ErrNameTooLong struct {
	Name fmt.Stringer
}

func (e ErrNameTooLong) Error() string {
	return fmt.Sprintf("name exceeds max depth of %d components: %s", NameTreeMaxDepth, e.Name.String())
}

// ErrPitFull reports a full PIT. The Pit has no capacity limit, and nothing
// in this package returns it.
type ErrPitFull struct{}

func (e ErrPitFull) Error() string { return "PIT is full" }
