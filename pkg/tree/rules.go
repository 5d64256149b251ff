package tree

// excludedDirs are build, cache and dependency directories that are never listed or traversed.
var excludedDirs = map[string]struct{}{
	"node_modules":  {},
	"env":           {},
	".git":          {},
	"__pycache__":   {},
	".pytest_cache": {},
	"dist":          {},
	"build":         {},
	"venv":          {},
	".venv":         {},
	"eggs":          {},
	".eggs":         {},
	".npm":          {},
	".yarn":         {},
}

// importantFiles are conventional entry-point and config names listed ahead of
// other files and never counted against the per-directory cap.
//
// The dot-prefixed names can never match: dot entries are dropped before this
// set is consulted.
var importantFiles = map[string]struct{}{
	"package.json":       {},
	"requirements.txt":   {},
	"setup.py":           {},
	"main.py":            {},
	"main.js":            {},
	"index.js":           {},
	"index.html":         {},
	"README.md":          {},
	".env.example":       {},
	"Dockerfile":         {},
	"docker-compose.yml": {},
	".gitignore":         {},
	"tsconfig.json":      {},
	"vite.config.js":     {},
	"next.config.js":     {},
	"app.py":             {},
	"manage.py":          {},
}

// IsExcludedDir reports whether a directory with this name is skipped entirely.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

// IsImportantFile reports whether a file with this name is always listed.
func IsImportantFile(name string) bool {
	_, ok := importantFiles[name]
	return ok
}
