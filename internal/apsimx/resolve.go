package apsimx

import (
	"fmt"

	"github.com/specialistvlad/apsimgo/internal/nodepath"
)

// Resolve finds the node addressed by a '.' or '/' delimited path. The first
// segment may name the root itself. Resolve never returns a nil node without
// an error.
func Resolve(root *Node, rawPath string) (*Node, error) {
	p, err := nodepath.Parse(rawPath)
	if err != nil {
		return nil, fmt.Errorf("invalid node path: %w", err)
	}
	return ResolvePath(root, p)
}

// ResolvePath is Resolve for an already parsed path.
func ResolvePath(root *Node, p *nodepath.Path) (*Node, error) {
	if root == nil {
		return nil, &NodeNotFoundError{Path: p.String()}
	}
	segs := p.Segments
	if len(segs) > 0 && segs[0] == root.Name {
		segs = segs[1:]
	}

	current := root
	for _, seg := range segs {
		next := current.Child(seg)
		if next == nil {
			return nil, &NodeNotFoundError{Path: p.String(), Segment: seg, Parent: current.FullPath()}
		}
		current = next
	}
	return current, nil
}

func matches(n *Node, kind, name string) bool {
	if kind != "" && n.Kind() != kind && n.Type != kind {
		return false
	}
	return name == "" || n.Name == name
}

// FindAll returns every descendant of root (root excluded) of the given kind
// whose name matches. An empty kind or name matches anything.
func FindAll(root *Node, kind, name string) []*Node {
	var found []*Node
	for _, c := range root.Children {
		c.Walk(func(n *Node) bool {
			if matches(n, kind, name) {
				found = append(found, n)
			}
			return true
		})
	}
	return found
}

// FindInScope returns the match closest to n: n itself and its descendants
// first, then each ancestor and that ancestor's other descendants.
func FindInScope(n *Node, kind, name string) (*Node, error) {
	var visited *Node
	for scope := n; scope != nil; scope = scope.parent {
		if matches(scope, kind, name) {
			return scope, nil
		}
		for _, c := range scope.Children {
			if c == visited {
				continue
			}
			if hits := FindAll(&Node{Children: []*Node{c}}, kind, name); len(hits) > 0 {
				return hits[0], nil
			}
		}
		visited = scope
	}
	return nil, &NodeNotFoundError{Path: fmt.Sprintf("%s %q in scope of %s", kind, name, n.FullPath())}
}

// Simulations returns the Simulation nodes of the tree, optionally filtered
// by name. Requesting a name that does not exist is an error.
func Simulations(root *Node, names ...string) ([]*Node, error) {
	all := FindAll(root, "Simulation", "")
	if root.Kind() == "Simulation" {
		all = append([]*Node{root}, all...)
	}
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*Node, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]*Node, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, &NodeNotFoundError{Path: fmt.Sprintf("Simulation %q", name)}
		}
		selected = append(selected, s)
	}
	return selected, nil
}
