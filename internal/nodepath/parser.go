// internal/nodepath/parser.go
package nodepath

import (
	"fmt"
	"strings"
)

// Parse creates a Path from its string representation, detecting the
// separator. A path starting with '/' or '.' uses that character; otherwise
// '/' is used if it appears anywhere and '.' is the fallback.
func Parse(raw string) (*Path, error) {
	return ParseWithSep(raw, detectSep(raw))
}

// ParseWithSep creates a Path using an explicit separator.
func ParseWithSep(raw, sep string) (*Path, error) {
	if sep == "" {
		return nil, fmt.Errorf("separator cannot be empty")
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("node path cannot be empty")
	}

	parts := strings.Split(trimmed, sep)
	// A leading separator produces one empty leading segment.
	if parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("node path %q has no segments", raw)
	}

	p := &Path{Sep: sep, Segments: make([]string, 0, len(parts))}
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("node path %q contains empty segment at position %d", raw, i)
		}
		p.Segments = append(p.Segments, part)
	}
	return p, nil
}

func detectSep(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, SlashSep):
		return SlashSep
	case strings.HasPrefix(s, DotSep):
		return DotSep
	case strings.Contains(s, SlashSep):
		return SlashSep
	default:
		return DotSep
	}
}
