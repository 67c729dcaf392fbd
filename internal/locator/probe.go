package locator

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// probePatterns returns the glob patterns of standard install locations.
func probePatterns(goos string, getenv func(string) string) []string {
	switch goos {
	case "windows":
		patterns := []string{`C:\Program Files\APSIM*\bin`}
		if local := getenv("LOCALAPPDATA"); local != "" {
			patterns = append(patterns, filepath.Join(local, "Programs", "APSIM*", "bin"))
		}
		return patterns
	case "darwin":
		return []string{"/Applications/APSIM*.app/Contents/Resources/bin"}
	default:
		return []string{"/usr/local/APSIM*/bin", "/usr/local/lib/apsim/*/bin"}
	}
}

// probe expands the patterns. Matches of each pattern are ordered newest
// first, going by the version embedded in the directory name.
func (l *Locator) probe() []string {
	var dirs []string
	for _, pattern := range l.patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		slices.SortFunc(matches, func(a, b string) int { return compareVersions(b, a) })
		dirs = append(dirs, matches...)
	}
	return dirs
}

// compareVersions orders install paths with digit runs compared as
// numbers, so APSIM2024.10 sorts after APSIM2024.9.
func compareVersions(a, b string) int {
	for a != "" && b != "" {
		ra, restA := nextRun(a)
		rb, restB := nextRun(b)
		if c := compareRun(ra, rb); c != 0 {
			return c
		}
		a, b = restA, restB
	}
	return cmp.Compare(len(a), len(b))
}

func nextRun(s string) (run, rest string) {
	digit := isDigit(rune(s[0]))
	i := strings.IndexFunc(s, func(r rune) bool { return isDigit(r) != digit })
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func compareRun(a, b string) int {
	if !isDigit(rune(a[0])) || !isDigit(rune(b[0])) {
		return strings.Compare(a, b)
	}
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
