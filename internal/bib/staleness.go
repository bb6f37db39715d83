package bib

import (
	"context"
	"os"
	"slices"
)

// Decision is the outcome of one staleness evaluation.
type Decision struct {
	// Ran reports whether the external tool was invoked.
	Ran bool
	// Recompile reports that the host should schedule another
	// typesetting pass (also signalled via RequestRecompilation).
	Recompile bool
}

// PreCompile evaluates staleness before a typesetting pass. It snapshots
// the registry and main log into RunState, decides whether the tool must
// run first, and runs it unless the host is about to compile anyway, in
// which case the invocation is deferred to PostCompile.
func (m *Module) PreCompile(ctx context.Context, hostWillCompile bool) (Decision, error) {
	if cites, dbs, err := ParseRegistry(m.registryFiles(), m.sorted); err == nil {
		m.state.UsedCites, m.state.UsedCitesKnown = cites, true
		m.state.PrevDBs, m.state.PrevDBsKnown = dbs, true
	} else {
		// No prior registry data for this session.
		m.state.PrevDBs, m.state.PrevDBsKnown = nil, false
	}
	if lines := readLogLines(m.srcBase + ".log"); len(lines) > 0 {
		m.state.UndefCites, m.state.UndefCitesKnown = UndefinedCitations(lines), true
	}

	m.state.RunNeeded = m.FirstRunNeeded()
	if hostWillCompile {
		// A typesetting pass is coming regardless; no need to bother
		// with the tool yet.
		return Decision{}, nil
	}
	if m.state.RunNeeded {
		return m.run(ctx)
	}

	// The compiled bibliography may have been refreshed behind our back
	// (someone ran the tool by hand); pick it up with a new pass.
	if newerThan(m.base+".bbl", m.srcBase+".log") {
		m.host.RequestRecompilation()
		return Decision{Recompile: true}, nil
	}
	return Decision{}, nil
}

// FirstRunNeeded decides whether the tool must run before the next
// typesetting pass. No registry file means the pass has to happen first;
// no tool log means the tool has never run at all.
func (m *Module) FirstRunNeeded() bool {
	if !exists(m.base + ".aux") {
		return false
	}
	blg := m.base + ".blg"
	info, err := os.Stat(blg)
	if err != nil {
		return true
	}
	logTime := info.ModTime()

	for _, db := range m.databasePaths() {
		if db2, err := os.Stat(db); err == nil && db2.ModTime().After(logTime) {
			m.host.Log("bibliography database %s was modified", db)
			return true
		}
	}
	if hasToolErrorMarker(blg) {
		m.host.Log("last BibTeXing failed")
		return true
	}
	if m.StyleChanged() {
		return true
	}
	if m.styleFile != "" {
		if info, err := os.Stat(m.styleFile); err == nil && info.ModTime().After(logTime) {
			m.host.Log("the bibliography style file was modified")
			return true
		}
	}
	return false
}

// StyleChanged reports whether the style the tool says it used differs
// from the declared one. An absent tool log is no evidence of a change.
func (m *Module) StyleChanged() bool {
	reported, ok := StyleReported(m.base + ".blg")
	if !ok {
		return false
	}
	if reported != m.style {
		m.host.Log("the bibliography style was changed")
		return true
	}
	return false
}

// PostCompile evaluates staleness after a typesetting pass and runs the
// tool when the comparisons call for it. A successful run requests a new
// typesetting pass from the host.
func (m *Module) PostCompile(ctx context.Context) (Decision, error) {
	if !m.NeedsRerun() {
		m.host.Log("no BibTeXing needed")
		return Decision{}, nil
	}
	return m.run(ctx)
}

// NeedsRerun is the post-compile comparison chain, short-circuiting at
// the first conclusive signal. Missing files are treated as insufficient
// evidence everywhere except the tool log, whose absence always forces a
// run.
func (m *Module) NeedsRerun() bool {
	if m.state.RunNeeded {
		return true
	}
	m.host.Log("checking if BibTeX must be run...")

	newCites, newDBs, err := ParseRegistry(m.registryFiles(), m.sorted)
	if err == nil {
		if m.state.PrevDBsKnown && !slices.Equal(m.state.PrevDBs, newDBs) {
			m.host.Log("the set of databases changed")
			m.state.PrevDBs, m.state.PrevDBsKnown = newDBs, true
			m.state.UsedCites, m.state.UsedCitesKnown = newCites, true
			m.state.UndefCites, m.state.UndefCitesKnown = m.listUndefs(), true
			return true
		}
		m.state.PrevDBs, m.state.PrevDBsKnown = newDBs, true

		if m.state.UsedCitesKnown && len(m.state.UsedCites) > 0 && !slices.Equal(newCites, m.state.UsedCites) {
			m.host.Log("the list of citations changed")
			m.state.UsedCites, m.state.UsedCitesKnown = newCites, true
			m.state.UndefCites, m.state.UndefCitesKnown = m.listUndefs(), true
			return true
		}
		m.state.UsedCites, m.state.UsedCitesKnown = newCites, true
	}

	if m.state.UndefCitesKnown && len(m.state.UndefCites) > 0 {
		newUndef := m.listUndefs()
		if len(newUndef) == 0 {
			m.host.Log("no more undefined citations")
			m.state.UndefCites = newUndef
			return false
		}
		for _, cite := range newUndef {
			if !slices.Contains(m.state.UndefCites, cite) {
				m.host.Log("there are new undefined citations")
				m.state.UndefCites = newUndef
				return true
			}
		}
		m.host.Log("there is no new undefined citation")
		m.state.UndefCites = newUndef
		return false
	}
	m.state.UndefCites, m.state.UndefCitesKnown = m.listUndefs(), true

	// Whether undefined citations changed is unknown at this point. If
	// the tool has never produced a log it has to run now.
	blg := m.base + ".blg"
	if !exists(blg) {
		m.host.Log("no BibTeX log file")
		return true
	}
	if len(m.state.UndefCites) == 0 {
		m.host.Log("no undefined citations")
		return false
	}
	if newerThan(m.srcBase+".log", blg) {
		m.host.Log("BibTeX's log is older than the main log")
		return true
	}
	return false
}

// State returns a copy of the engine's cross-run memory.
func (m *Module) State() RunState {
	st := m.state
	st.UsedCites = append([]string(nil), m.state.UsedCites...)
	st.PrevDBs = append([]string(nil), m.state.PrevDBs...)
	st.UndefCites = append([]string(nil), m.state.UndefCites...)
	return st
}

func (m *Module) listUndefs() []string {
	return UndefinedCitations(readLogLines(m.srcBase + ".log"))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newerThan reports mtime(a) > mtime(b); equal timestamps or a missing
// file on either side never count as newer.
func newerThan(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return ia.ModTime().After(ib.ModTime())
}
