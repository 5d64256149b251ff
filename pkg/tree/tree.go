// Package tree renders a directory hierarchy as ASCII tree lines.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultMaxFilesPerDir caps the non-important files listed per directory.
const DefaultMaxFilesPerDir = 15

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	branchExtension = "│   "
	lastExtension   = "    "
	ellipsis        = "..."
	lineSeparator   = "\n"
	hiddenPrefix    = "."
)

// PathMatcher reports whether a slash-separated path relative to the root is excluded.
type PathMatcher interface {
	MatchesPath(path string) bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithIgnoreMatcher drops every entry whose path relative to root matches m.
func WithIgnoreMatcher(root string, m PathMatcher) Option {
	return func(g *Generator) {
		g.root = root
		g.matcher = m
	}
}

// Generator walks directories and produces rendered tree lines.
type Generator struct {
	fsys    afero.Fs
	logger  *zap.Logger
	root    string
	matcher PathMatcher
}

// NewGenerator returns a Generator reading from fsys. A nil logger disables logging.
func NewGenerator(fsys afero.Fs, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{fsys: fsys, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type entry struct {
	name  string
	isDir bool
}

// Render returns the full tree for root: the root's base name on the first
// line followed by its rendered subtree, joined without a trailing newline.
func (g *Generator) Render(root string, maxFilesPerDir int) (string, error) {
	lines, err := g.Generate(root, "", maxFilesPerDir)
	if err != nil {
		return "", err
	}
	content := make([]string, 0, len(lines)+1)
	content = append(content, rootName(root))
	content = append(content, lines...)
	return strings.Join(content, lineSeparator), nil
}

// Generate returns one line per visible entry below directory in depth-first
// pre-order. prefix is the indentation accumulated from ancestors.
//
// Directories come first, then important files, then at most maxFilesPerDir
// other files. When other files are cut, a trailing ellipsis row takes the
// last slot. A directory whose listing is denied yields no lines.
func (g *Generator) Generate(directory, prefix string, maxFilesPerDir int) ([]string, error) {
	lines := []string{}

	entries, err := g.listEntries(directory)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			g.logger.Debug("Skipping directory with denied listing", zap.String("directory", directory), zap.Error(err))
			return lines, nil
		}
		return nil, fmt.Errorf("failed to list directory '%s': %w", directory, err)
	}

	var dirs, important, others []entry
	for _, e := range entries {
		switch {
		case e.isDir:
			if IsExcludedDir(e.name) {
				g.logger.Debug("Skipping excluded directory", zap.String("directory", filepath.Join(directory, e.name)))
				continue
			}
			dirs = append(dirs, e)
		case IsImportantFile(e.name):
			important = append(important, e)
		default:
			others = append(others, e)
		}
	}

	showEllipsis := false
	if len(others) > maxFilesPerDir {
		g.logger.Debug("Truncating file listing",
			zap.String("directory", directory),
			zap.Int("files", len(others)),
			zap.Int("maxFilesPerDir", maxFilesPerDir))
		others = others[:maxFilesPerDir]
		showEllipsis = true
	}

	items := make([]entry, 0, len(dirs)+len(important)+len(others))
	items = append(items, dirs...)
	items = append(items, important...)
	items = append(items, others...)

	for i, item := range items {
		connector, extension := branchConnector, branchExtension
		if i == len(items)-1 && !showEllipsis {
			connector, extension = lastConnector, lastExtension
		}
		lines = append(lines, prefix+connector+item.name)

		if item.isDir {
			subtree, err := g.Generate(filepath.Join(directory, item.name), prefix+extension, maxFilesPerDir)
			if err != nil {
				return nil, err
			}
			lines = append(lines, subtree...)
		}
	}

	if showEllipsis {
		lines = append(lines, prefix+lastConnector+ellipsis)
	}
	return lines, nil
}

// listEntries returns the visible children of directory sorted directories
// first, then by case-insensitive name. Symlinks are classified by their
// target; dangling links and non-regular files are dropped.
func (g *Generator) listEntries(directory string) ([]entry, error) {
	infos, err := afero.ReadDir(g.fsys, directory)
	if err != nil {
		return nil, err
	}

	var entries []entry
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, hiddenPrefix) {
			continue
		}

		childPath := filepath.Join(directory, name)
		if info.Mode()&os.ModeSymlink != 0 {
			target, statErr := g.fsys.Stat(childPath)
			if statErr != nil {
				g.logger.Debug("Skipping unresolvable symlink", zap.String("path", childPath), zap.Error(statErr))
				continue
			}
			info = target
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			continue
		}

		if g.isIgnored(childPath) {
			g.logger.Debug("Skipping path matched by ignore patterns", zap.String("path", childPath))
			continue
		}
		entries = append(entries, entry{name: name, isDir: info.IsDir()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		left, right := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if left != right {
			return left < right
		}
		return entries[i].name < entries[j].name
	})
	return entries, nil
}

// rootName is the last element of root. A filesystem root has no name and
// renders as an empty first line.
func rootName(root string) string {
	cleaned := filepath.Clean(root)
	if filepath.Dir(cleaned) == cleaned {
		return ""
	}
	return filepath.Base(cleaned)
}

func (g *Generator) isIgnored(path string) bool {
	if g.matcher == nil {
		return false
	}
	relPath, err := filepath.Rel(g.root, path)
	if err != nil {
		return false
	}
	return g.matcher.MatchesPath(filepath.ToSlash(relPath))
}
