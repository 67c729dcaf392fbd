// internal/nodepath/path.go
package nodepath

import (
	"slices"
	"strings"
)

// String renders the path with a leading separator, in the notation it was
// parsed with.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	sep := p.Sep
	if sep == "" {
		sep = DotSep
	}
	return sep + strings.Join(p.Segments, sep)
}

// Equal reports whether two paths address the same segments. The separator
// is notation only and does not take part in the comparison.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return slices.Equal(p.Segments, other.Segments)
}

// Child returns a new path with name appended.
func (p *Path) Child(name string) *Path {
	segs := make([]string, 0, p.Len()+1)
	if p != nil {
		segs = append(segs, p.Segments...)
	}
	sep := DotSep
	if p != nil && p.Sep != "" {
		sep = p.Sep
	}
	return &Path{Segments: append(segs, name), Sep: sep}
}
