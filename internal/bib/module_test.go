package bib

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestAddDatabase_RegistersDependency(t *testing.T) {
	dir := t.TempDir()
	resolved := filepath.Join(dir, "refs.bib")
	writeFile(t, resolved, "@book{x,title={T}}\n")

	m, host := newTestModule(t, dir, &fakeRunner{})
	m.AddDatabase("refs")

	if p, ok := m.LookupDatabase("refs"); !ok || p != resolved {
		t.Fatalf("unexpected lookup: %q ok=%v", p, ok)
	}
	if !reflect.DeepEqual(host.registered, []string{resolved}) {
		t.Fatalf("dependency not registered: %v", host.registered)
	}
}

func TestAddDatabase_MissingStaysAbsent(t *testing.T) {
	dir := t.TempDir()
	m, host := newTestModule(t, dir, &fakeRunner{})
	m.AddDatabase("ghost")

	if _, ok := m.LookupDatabase("ghost"); ok {
		t.Fatalf("unresolved database must stay absent")
	}
	if len(host.registered) != 0 {
		t.Fatalf("no dependency expected: %v", host.registered)
	}
}

func TestSetStyle_ReplacesSingleDependency(t *testing.T) {
	dir := t.TempDir()
	oldStyle := filepath.Join(dir, "old.bst")
	newStyle := filepath.Join(dir, "new.bst")
	writeFile(t, oldStyle, "ENTRY {}\n")
	writeFile(t, newStyle, "ENTRY {}\n")

	m, host := newTestModule(t, dir, &fakeRunner{})
	m.SetStyle("old")
	m.SetStyle("new")

	if m.Style() != "new" {
		t.Fatalf("unexpected style: %q", m.Style())
	}
	if !reflect.DeepEqual(host.registered, []string{oldStyle, newStyle}) {
		t.Fatalf("unexpected registrations: %v", host.registered)
	}
	if !reflect.DeepEqual(host.unregistered, []string{oldStyle}) {
		t.Fatalf("old style not unregistered: %v", host.unregistered)
	}
}

func TestSetSorted_Tokens(t *testing.T) {
	m, _ := newTestModule(t, t.TempDir(), &fakeRunner{})
	for _, token := range []string{"true", "yes", "1"} {
		m.SetSortedMode(false)
		m.SetSorted(token)
		if !m.Sorted() {
			t.Fatalf("token %q must enable sorting", token)
		}
	}
	for _, token := range []string{"false", "no", "0", "anything"} {
		m.SetSortedMode(true)
		m.SetSorted(token)
		if m.Sorted() {
			t.Fatalf("token %q must disable sorting", token)
		}
	}
}

func TestClean_RemovesOwnedOutputs(t *testing.T) {
	dir := t.TempDir()
	bbl := filepath.Join(dir, "doc.bbl")
	blg := filepath.Join(dir, "doc.blg")
	writeFile(t, bbl, "\\bibitem{x}\n")
	writeFile(t, blg, "The style file: plain.bst\n")

	m, _ := newTestModule(t, dir, &fakeRunner{})
	removed := m.Clean()
	if !reflect.DeepEqual(removed, []string{bbl, blg}) {
		t.Fatalf("unexpected removals: %v", removed)
	}
	for _, p := range []string{bbl, blg} {
		if _, err := os.Stat(p); err == nil {
			t.Fatalf("%s still exists", p)
		}
	}
	if again := m.Clean(); len(again) != 0 {
		t.Fatalf("second clean must remove nothing, got %v", again)
	}
}
