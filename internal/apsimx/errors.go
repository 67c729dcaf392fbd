package apsimx

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is the sentinel matched by every *NodeNotFoundError.
var ErrNodeNotFound = errors.New("node not found")

// ErrExampleNotFound is returned when a bundled example cannot be located.
var ErrExampleNotFound = errors.New("bundled example not found")

// NodeNotFoundError reports the first path segment, or type/name query, that
// did not match anything in the tree.
type NodeNotFoundError struct {
	Path    string // the path or query as given by the caller
	Segment string // the segment that failed to match, if resolving a path
	Parent  string // full path of the node whose children were searched
}

func (e *NodeNotFoundError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("node not found: %s", e.Path)
	}
	return fmt.Sprintf("node not found: %s (no child named %q under %s)", e.Path, e.Segment, e.Parent)
}

// Is lets errors.Is(err, ErrNodeNotFound) match.
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}
