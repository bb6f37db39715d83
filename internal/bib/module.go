package bib

import (
	"os"
	"sort"
)

// OwnedSuffixes are the output suffixes this module is responsible for:
// the compiled bibliography and the tool's diagnostic log.
var OwnedSuffixes = []string{".bbl", ".blg"}

// DefaultStyle is the style registered until the document declares one.
const DefaultStyle = "plain"

// Module is the bibliography-resolution engine for one document. It owns
// the search paths, the declared databases and style, the cross-run
// state, and the decision logic around the external tool.
type Module struct {
	base    string // base name of the tool's aux/bbl/blg outputs
	srcBase string // base name of the document's own aux/log

	paths     *Resolver
	dbs       map[string]string // logical name -> resolved path
	style     string
	styleFile string // resolved style path, empty when unresolved
	sorted    bool
	auxFiles  []string // registry files in host-supplied order

	state  RunState
	runner Runner
	host   Host
}

// Options configures a new Module. Base defaults to SrcBase; Host
// defaults to NopHost; Runner defaults to the bibtex subprocess runner.
type Options struct {
	Base     string
	SrcBase  string
	BaseDirs []string // initial search directories, usually cwd (+ source dir)
	Host     Host
	Runner   Runner
}

// New creates a Module with the default style registered and insertion
// handling matching the external tool's defaults (sorted keys on).
func New(opts Options) *Module {
	m := &Module{
		base:    opts.Base,
		srcBase: opts.SrcBase,
		paths:   NewResolver(opts.BaseDirs...),
		dbs:     map[string]string{},
		sorted:  true,
		runner:  opts.Runner,
		host:    opts.Host,
	}
	if m.base == "" {
		m.base = m.srcBase
	}
	if m.host == nil {
		m.host = NopHost{}
	}
	if m.runner == nil {
		m.runner = BibTeXRunner{}
	}
	m.SetStyle(DefaultStyle)
	return m
}

// AddDatabasePath appends dir to the database search path.
func (m *Module) AddDatabasePath(dir string) { m.paths.AddDatabaseDir(dir) }

// AddStylePath appends dir to the style search path.
func (m *Module) AddStylePath(dir string) { m.paths.AddStyleDir(dir) }

// SetSorted switches the cited-key ordering mode from a bool-like
// directive token. Only meaningful before the first evaluation.
func (m *Module) SetSorted(token string) {
	switch token {
	case "true", "yes", "1":
		m.sorted = true
	default:
		m.sorted = false
	}
}

// SetSortedMode sets the key-ordering mode directly.
func (m *Module) SetSortedMode(sorted bool) { m.sorted = sorted }

// Sorted reports the current key-ordering mode.
func (m *Module) Sorted() bool { return m.sorted }

// AddDatabase registers a citation database by logical name. When the
// name resolves on the search path the file becomes a tracked dependency
// of the document; otherwise the declaration is remembered as absent.
func (m *Module) AddDatabase(name string) {
	p, ok := m.paths.ResolveDatabase(name)
	if !ok {
		return
	}
	m.dbs[name] = p
	m.host.RegisterDependency(p)
}

// SetStyle declares the formatting style. At most one style dependency is
// tracked: replacing the style first unregisters the prior file.
func (m *Module) SetStyle(name string) {
	if m.styleFile != "" {
		m.host.UnregisterDependency(m.styleFile)
		m.styleFile = ""
	}
	m.style = name
	if p, ok := m.paths.ResolveStyle(name); ok {
		m.styleFile = p
		m.host.RegisterDependency(p)
	}
}

// Style returns the declared style name.
func (m *Module) Style() string { return m.style }

// AddRegistryFile appends a per-compilation-unit registry (aux) file.
// Order matters: citation order is global first-occurrence order across
// the files in the order they were added.
func (m *Module) AddRegistryFile(path string) {
	m.auxFiles = append(m.auxFiles, path)
}

// LookupDatabase returns the resolved path of a declared database.
func (m *Module) LookupDatabase(name string) (string, bool) {
	p, ok := m.dbs[name]
	return p, ok
}

// Databases returns the declared databases as sorted name/path pairs.
func (m *Module) Databases() map[string]string {
	out := make(map[string]string, len(m.dbs))
	for k, v := range m.dbs {
		out[k] = v
	}
	return out
}

// ToolErrors returns a lazy scan over the tool log's error records with
// file names mapped back to resolved database paths.
func (m *Module) ToolErrors() (*ErrorScan, error) {
	return ScanToolErrors(m.base+".blg", m.LookupDatabase)
}

// Clean removes the outputs owned by this module and returns the paths
// actually deleted.
func (m *Module) Clean() []string {
	var removed []string
	for _, suffix := range OwnedSuffixes {
		p := m.base + suffix
		if err := os.Remove(p); err == nil {
			removed = append(removed, p)
		}
	}
	return removed
}

// registryFiles returns the registry files to parse, defaulting to the
// document's own aux file when the host supplied none.
func (m *Module) registryFiles() []string {
	if len(m.auxFiles) > 0 {
		return append([]string(nil), m.auxFiles...)
	}
	return []string{m.srcBase + ".aux"}
}

// databasePaths returns the resolved database paths sorted by logical
// name, so comparisons and messages never depend on map iteration order.
func (m *Module) databasePaths() []string {
	names := make([]string, 0, len(m.dbs))
	for name := range m.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, m.dbs[name])
	}
	return paths
}
