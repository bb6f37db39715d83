package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

func locators(res []Resource) []string {
	out := make([]string, 0, len(res))
	for _, r := range res {
		out = append(out, r.Locator)
	}
	return out
}

func TestFindResources_SortedAndClassified(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"refs.bib":       "@book{x,title={T}}\n",
		"styles/abc.bst": "ENTRY {}\n",
		"notes.txt":      "not a resource\n",
	})

	res, err := FindResources(root, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []Resource{
		{Locator: "refs.bib", Kind: "database"},
		{Locator: "styles/abc.bst", Kind: "style"},
	}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("unexpected resources: %+v", res)
	}
}

func TestFindResources_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "build/\n",
		"refs.bib":          "x\n",
		"build/out.bib":     "x\n",
		"sub/.gitignore":    "draft.bib\n",
		"sub/draft.bib":     "x\n",
		"sub/published.bib": "x\n",
	})

	res, err := FindResources(root, false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []string{"refs.bib", "sub/published.bib"}
	if !reflect.DeepEqual(locators(res), want) {
		t.Fatalf("unexpected locators: %v", locators(res))
	}
}

func TestFindResources_NoGitignoreSeesEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":    "build/\n",
		"refs.bib":      "x\n",
		"build/out.bib": "x\n",
	})

	res, err := FindResources(root, true)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []string{"build/out.bib", "refs.bib"}
	if !reflect.DeepEqual(locators(res), want) {
		t.Fatalf("unexpected locators: %v", locators(res))
	}
}

func TestFindResources_EmptyTree(t *testing.T) {
	res, err := FindResources(t.TempDir(), false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(res) != 0 {
		t.Fatalf("expected no resources, got %+v", res)
	}
}
