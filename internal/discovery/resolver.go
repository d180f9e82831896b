package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// globMeta are the characters that make a pattern a glob rather than a plain path.
const globMeta = "*?[{"

// DefaultIgnore lists the patterns skipped when no ignore list is configured.
var DefaultIgnore = []string{"node_modules/**", ".git/**", "vendor/**"}

// markdownExtensions are the only document extensions ever resolved (lower-case).
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// compiledPattern holds both the pattern string and its compiled globs.
// A pattern containing "**/" also gets a variant without it, so "**/*.md"
// matches "README.md" as well as "docs/guide.md".
type compiledPattern struct {
	pattern string
	globs   []glob.Glob
}

func compile(pattern string) (compiledPattern, error) {
	pattern = filepath.ToSlash(pattern)
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return compiledPattern{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	cp := compiledPattern{pattern: pattern, globs: []glob.Glob{g}}

	if simplified := collapseRecursive(pattern); simplified != pattern {
		if sg, err := glob.Compile(simplified, '/'); err == nil {
			cp.globs = append(cp.globs, sg)
		}
	}
	return cp, nil
}

// collapseRecursive rewrites "**/" segments so they may match zero directories.
func collapseRecursive(pattern string) string {
	simplified := strings.ReplaceAll(pattern, "/**/", "/")
	return strings.TrimPrefix(simplified, "**/")
}

func (cp compiledPattern) match(path string) bool {
	for _, g := range cp.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Resolver turns positional document patterns into markdown file paths.
type Resolver struct {
	root   string
	ignore []compiledPattern
}

// NewResolver creates a resolver for patterns relative to root. Ignore patterns
// are matched against root-relative, slash-separated paths.
func NewResolver(root string, ignorePatterns []string) (*Resolver, error) {
	if root == "" {
		root = "."
	}
	r := &Resolver{root: root}

	for _, pattern := range ignorePatterns {
		cp, err := compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("ignore: %w", err)
		}
		r.ignore = append(r.ignore, cp)
	}

	return r, nil
}

// Resolve expands patterns in order. Matches of one pattern are sorted
// lexicographically, a file matched by several patterns is returned once at
// its first position, and only .md/.markdown files are kept. A pattern that
// matches nothing contributes nothing; an invalid glob is an error.
func (r *Resolver) Resolve(patterns []string) ([]string, error) {
	files := []string{}
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := r.expand(pattern)
		if err != nil {
			return nil, err
		}

		sort.Strings(matches)
		for _, path := range matches {
			key := filepath.Clean(path)
			if seen[key] {
				continue
			}
			seen[key] = true
			files = append(files, path)
		}
	}

	return files, nil
}

// expand returns the unsorted markdown files matching a single pattern.
func (r *Resolver) expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, globMeta) {
		return r.expandPlain(pattern), nil
	}

	pattern, absolute, err := r.normalize(pattern)
	if err != nil {
		return nil, err
	}

	cp, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	walkRoot := staticBase(cp.pattern)
	if !absolute {
		walkRoot = filepath.Join(r.root, walkRoot)
	}

	// A missing base directory matches nothing
	if _, err := os.Stat(walkRoot); err != nil {
		return nil, nil
	}

	matches := []string{}
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are omitted, not fatal
			if d != nil && d.IsDir() && path != walkRoot {
				return filepath.SkipDir
			}
			return nil
		}

		rel := r.relative(path)

		if d.IsDir() {
			if path != walkRoot && r.shouldIgnore(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isMarkdown(path) || r.shouldIgnore(rel) {
			return nil
		}

		key := rel
		if absolute {
			key = filepath.ToSlash(path)
		}
		if cp.match(key) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", walkRoot, err)
	}

	return matches, nil
}

// normalize cleans a glob pattern and reports whether it must be matched
// against absolute paths. Patterns that climb above the root ("../docs/*.md")
// are anchored at the absolute root so walked files can be compared directly.
func (r *Resolver) normalize(pattern string) (string, bool, error) {
	if filepath.IsAbs(pattern) {
		return filepath.ToSlash(filepath.Clean(pattern)), true, nil
	}

	cleaned := path.Clean(filepath.ToSlash(pattern))
	if cleaned != ".." && !strings.HasPrefix(cleaned, "../") {
		return cleaned, false, nil
	}

	root, err := filepath.Abs(r.root)
	if err != nil {
		return "", false, fmt.Errorf("resolve root: %w", err)
	}
	return filepath.ToSlash(filepath.Join(root, filepath.FromSlash(cleaned))), true, nil
}

// expandPlain handles a pattern without glob meta characters: it names a single file.
func (r *Resolver) expandPlain(pattern string) []string {
	path := pattern
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() || !isMarkdown(path) {
		return nil
	}
	return []string{path}
}

// relative returns path relative to the resolver root with slash separators.
// Paths outside the root are returned as-is.
func (r *Resolver) relative(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (r *Resolver) shouldIgnore(relPath string) bool {
	for _, cp := range r.ignore {
		if cp.match(relPath) {
			return true
		}
	}

	// A directory such as "node_modules" matches "node_modules/**" with the suffix added
	pathWithSuffix := relPath + "/**"
	for _, cp := range r.ignore {
		if cp.match(pathWithSuffix) {
			return true
		}
	}
	return false
}

// staticBase returns the directory part of pattern before its first meta character.
func staticBase(pattern string) string {
	prefix := pattern
	if idx := strings.IndexAny(pattern, globMeta); idx >= 0 {
		prefix = pattern[:idx]
	}

	slash := strings.LastIndex(prefix, "/")
	switch {
	case slash < 0:
		return "."
	case slash == 0:
		return "/"
	default:
		return filepath.FromSlash(prefix[:slash])
	}
}

func isMarkdown(path string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(path))]
}

// Ignored reports whether path falls under an ignore pattern.
func (r *Resolver) Ignored(path string) bool {
	return r.shouldIgnore(r.relative(path))
}

// WatchDirs returns the existing directories whose contents can change the
// result of Resolve: the static base of each glob and the parent of each
// plain path. The result is sorted and free of duplicates.
func (r *Resolver) WatchDirs(patterns []string) []string {
	seen := make(map[string]bool)
	dirs := []string{}

	for _, pattern := range patterns {
		var dir string
		if strings.ContainsAny(pattern, globMeta) {
			dir = staticBase(filepath.ToSlash(pattern))
		} else {
			dir = filepath.Dir(pattern)
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.root, dir)
		}
		dir = filepath.Clean(dir)

		if seen[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)
	return dirs
}
