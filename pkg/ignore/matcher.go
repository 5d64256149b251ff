package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher applies gitignore-style patterns to slash-separated relative paths.
// The last matching pattern wins, so a later negation re-includes a path.
type Matcher struct {
	rules *gitignore.GitIgnore
}

// Compile builds a Matcher from normalized patterns. Blank patterns and
// patterns that would match every path ("/", "!") are dropped.
func Compile(patterns ...string) *Matcher {
	lines := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		switch strings.TrimSpace(pattern) {
		case "", "/", "!":
			continue
		}
		lines = append(lines, pattern)
	}
	return &Matcher{rules: gitignore.CompileIgnoreLines(lines...)}
}

// MatchesPath reports whether path is excluded by the compiled patterns.
func (m *Matcher) MatchesPath(path string) bool {
	return m.rules.MatchesPath(filepath.ToSlash(path))
}
