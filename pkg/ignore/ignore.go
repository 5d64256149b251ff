// Package ignore loads ignore-pattern files and optionally matches paths against them.
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultFileName is the ignore file read from the working directory when none is configured.
const DefaultFileName = ".gitignore"

const (
	commentMarker  = "#"
	pathSeparator  = "/"
	lineTerminator = "\n"
)

// PatternSet is the set of normalized patterns read from an ignore file.
// Patterns keep the order of their first appearance.
type PatternSet struct {
	order []string
	index map[string]struct{}
}

// NewPatternSet returns a set holding patterns, dropping repeats.
func NewPatternSet(patterns ...string) PatternSet {
	ps := PatternSet{index: make(map[string]struct{}, len(patterns))}
	for _, pattern := range patterns {
		ps.add(pattern)
	}
	return ps
}

func (ps *PatternSet) add(pattern string) {
	if ps.index == nil {
		ps.index = make(map[string]struct{})
	}
	if _, ok := ps.index[pattern]; ok {
		return
	}
	ps.index[pattern] = struct{}{}
	ps.order = append(ps.order, pattern)
}

// Len returns the number of distinct patterns.
func (ps PatternSet) Len() int {
	return len(ps.order)
}

// Patterns returns the patterns in file order.
func (ps PatternSet) Patterns() []string {
	return append([]string(nil), ps.order...)
}

// Sorted returns the patterns in lexical order.
func (ps PatternSet) Sorted() []string {
	patterns := ps.Patterns()
	sort.Strings(patterns)
	return patterns
}

// LoadPatterns reads the ignore file at path and returns its normalized patterns.
// A missing file yields an empty set. Any other read failure is returned.
func LoadPatterns(fsys afero.Fs, path string, logger *zap.Logger) (PatternSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := NewPatternSet()
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No ignore file found", zap.String("filePath", path))
			return patterns, nil
		}
		return PatternSet{}, fmt.Errorf("failed to read ignore file '%s': %w", path, err)
	}

	for _, line := range strings.Split(string(content), lineTerminator) {
		if pattern, ok := normalizeLine(line); ok {
			patterns.add(pattern)
		}
	}

	logger.Debug("Loaded ignore patterns", zap.String("filePath", path), zap.Int("patternCount", patterns.Len()))
	return patterns, nil
}

// normalizeLine drops everything from the first comment marker, trims whitespace
// and strips a single trailing separator.
func normalizeLine(line string) (string, bool) {
	if index := strings.Index(line, commentMarker); index >= 0 {
		line = line[:index]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return strings.TrimSuffix(line, pathSeparator), true
}
