// internal/nodepath/types.go
package nodepath

// Separators accepted by Parse.
const (
	DotSep   = "."
	SlashSep = "/"
)

// Path is the structured representation of a node address. It is modeled as
// an ordered list of node names, outermost first.
type Path struct {
	Segments []string
	// Sep is the separator the path was parsed with; it is only used to
	// render the path back in the caller's own notation.
	Sep string
}

// Len returns the number of segments in the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Segments)
}

// Last returns the final segment, the name of the addressed node.
func (p *Path) Last() string {
	if p.Len() == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}
