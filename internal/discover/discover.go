// Package discover locates candidate bibliography resources (.bib
// databases and .bst styles) under a directory tree, honoring .gitignore
// files. It backs the scan command that helps users spot resources their
// search-path registrations miss.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Resource is one discovered file, classified by kind.
type Resource struct {
	Locator string `json:"locator"` // slash-separated path relative to the root
	Kind    string `json:"kind"`    // "database" or "style"
}

// resourceKind classifies a file name, returning "" for files that are
// neither databases nor styles.
func resourceKind(name string) string {
	switch {
	case strings.HasSuffix(name, ".bib"):
		return "database"
	case strings.HasSuffix(name, ".bst"):
		return "style"
	default:
		return ""
	}
}

// FindResources walks root and returns the discovered resources sorted by
// locator. Unless noGitignore is set, files matched by .gitignore
// patterns anywhere on the path from the root are skipped.
func FindResources(root string, noGitignore bool) ([]Resource, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var found []Resource
	err = filepath.WalkDir(absRoot, func(path string, ent os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if ent.IsDir() {
			if !noGitignore && matchIgnore(absRoot, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		kind := resourceKind(ent.Name())
		if kind == "" {
			return nil
		}
		if !noGitignore && matchIgnore(absRoot, rel, false) {
			return nil
		}
		found = append(found, Resource{Locator: filepath.ToSlash(rel), Kind: kind})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Locator < found[j].Locator })
	return found, nil
}

// dirsForRel returns the directories from "." down to the directory of rel.
func dirsForRel(rel string) []string {
	dirs := []string{"."}
	dir := filepath.Dir(rel)
	if dir == "." {
		return dirs
	}
	cur := ""
	for _, part := range strings.Split(dir, string(os.PathSeparator)) {
		if cur == "" {
			cur = part
		} else {
			cur = filepath.Join(cur, part)
		}
		dirs = append(dirs, cur)
	}
	return dirs
}

// readGitignorePatterns collects .gitignore patterns from the given
// directories under absRoot, scoped to the directory they came from.
func readGitignorePatterns(absRoot string, dirs []string) []gitignore.Pattern {
	var patterns []gitignore.Pattern
	for _, d := range dirs {
		b, err := os.ReadFile(filepath.Join(absRoot, d, ".gitignore"))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			var base []string
			if d != "." && d != "" {
				base = strings.Split(filepath.ToSlash(d), "/")
			}
			patterns = append(patterns, gitignore.ParsePattern(line, base))
		}
	}
	return patterns
}

// matchIgnore reports whether rel should be skipped per the .gitignore
// files between the root and rel's directory.
func matchIgnore(absRoot, rel string, isDir bool) bool {
	patterns := readGitignorePatterns(absRoot, dirsForRel(rel))
	if len(patterns) == 0 {
		return false
	}
	m := gitignore.NewMatcher(patterns)
	var comps []string
	if rel != "." && rel != "" {
		comps = strings.Split(rel, string(os.PathSeparator))
	}
	return m.Match(comps, isDir)
}
