package bib

import (
	"os"
	"path/filepath"
)

// Resolver keeps the ordered search paths for the two resource kinds the
// bibliography tool consumes: citation databases (.bib) and style
// definitions (.bst). Directories are scanned in registration order and
// the first existing file wins. A miss is absence, never an error.
type Resolver struct {
	bibDirs []string
	bstDirs []string
}

// NewResolver seeds both search paths with the given base directories.
// Duplicates are skipped so the "more than the default directory" test
// used for subprocess environment construction stays meaningful.
func NewResolver(baseDirs ...string) *Resolver {
	r := &Resolver{}
	for _, d := range baseDirs {
		r.AddDatabaseDir(d)
	}
	if len(baseDirs) > 0 {
		r.bstDirs = append(r.bstDirs, baseDirs[0])
	}
	return r
}

// AddDatabaseDir appends dir to the database search path.
func (r *Resolver) AddDatabaseDir(dir string) {
	for _, d := range r.bibDirs {
		if d == dir {
			return
		}
	}
	r.bibDirs = append(r.bibDirs, dir)
}

// AddStyleDir appends dir to the style search path.
func (r *Resolver) AddStyleDir(dir string) {
	for _, d := range r.bstDirs {
		if d == dir {
			return
		}
	}
	r.bstDirs = append(r.bstDirs, dir)
}

// DatabaseDirs returns a copy of the database search path.
func (r *Resolver) DatabaseDirs() []string {
	return append([]string(nil), r.bibDirs...)
}

// StyleDirs returns a copy of the style search path.
func (r *Resolver) StyleDirs() []string {
	return append([]string(nil), r.bstDirs...)
}

// ResolveDatabase returns the path of the first existing <name>.bib on
// the database search path.
func (r *Resolver) ResolveDatabase(name string) (string, bool) {
	return resolveIn(r.bibDirs, name+".bib")
}

// ResolveStyle returns the path of the first existing <name>.bst on the
// style search path.
func (r *Resolver) ResolveStyle(name string) (string, bool) {
	return resolveIn(r.bstDirs, name+".bst")
}

func resolveIn(dirs []string, file string) (string, bool) {
	for _, d := range dirs {
		p := filepath.Join(d, file)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}
