// Package config loads the CUE configuration driving the bibliography
// module: the document base name, search paths, sort mode, declared
// resources, tool invocation settings and the optional diagnostics
// filter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Config is the decoded configuration.
type Config struct {
	ConfigVersion string
	Document      Document
	Bib           Bib
	Tool          Tool
	Diagnostics   Diagnostics
}

// Document identifies the document under build.
type Document struct {
	Base          string   // base name of the tool outputs (aux/bbl/blg)
	SrcBase       string   // base name of the document's log; defaults to Base
	RegistryFiles []string // per-unit aux files in host order, optional
}

// Bib carries search paths and declared resources.
type Bib struct {
	Paths      []string
	StylePaths []string
	Sorted     bool
	HasSorted  bool
	Style      string
	Databases  []string
}

// Tool configures the external binary invocation.
type Tool struct {
	Program      string
	MinCrossrefs int
}

// Diagnostics configures post-run diagnostic handling.
type Diagnostics struct {
	FilterInline string
}

// Load reads and validates a .cue config file.
// Required fields: configVersion (string), document.base (string).
func Load(path string) (Config, error) {
	if filepath.Ext(path) != ".cue" {
		return Config{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}

	var cfg Config
	if err := requireString(v, "configVersion", &cfg.ConfigVersion); err != nil {
		return Config{}, err
	}

	dv := v.LookupPath(cue.ParsePath("document"))
	if !dv.Exists() {
		return Config{}, errors.New("missing required field: document")
	}
	if err := requireString(dv, "base", &cfg.Document.Base); err != nil {
		return Config{}, fmt.Errorf("document: %v", err)
	}
	optionalString(dv, "srcBase", &cfg.Document.SrcBase)
	optionalStrings(dv, "registryFiles", &cfg.Document.RegistryFiles)
	if cfg.Document.SrcBase == "" {
		cfg.Document.SrcBase = cfg.Document.Base
	}

	bv := v.LookupPath(cue.ParsePath("bib"))
	if bv.Exists() {
		optionalStrings(bv, "paths", &cfg.Bib.Paths)
		optionalStrings(bv, "stylePaths", &cfg.Bib.StylePaths)
		optionalString(bv, "style", &cfg.Bib.Style)
		optionalStrings(bv, "databases", &cfg.Bib.Databases)
		sv := bv.LookupPath(cue.ParsePath("sorted"))
		if sv.Exists() && sv.Kind() == cue.BoolKind {
			if err := sv.Decode(&cfg.Bib.Sorted); err == nil {
				cfg.Bib.HasSorted = true
			}
		}
	}

	tv := v.LookupPath(cue.ParsePath("tool"))
	if tv.Exists() {
		optionalString(tv, "program", &cfg.Tool.Program)
		mv := tv.LookupPath(cue.ParsePath("minCrossrefs"))
		if mv.Exists() && mv.Kind() == cue.IntKind {
			var n int64
			if err := mv.Decode(&n); err == nil {
				cfg.Tool.MinCrossrefs = int(n)
			}
		}
	}

	gv := v.LookupPath(cue.ParsePath("diagnostics"))
	if gv.Exists() {
		optionalString(gv, "filterInline", &cfg.Diagnostics.FilterInline)
	}

	return cfg, nil
}

func requireString(v cue.Value, name string, out *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	if err := f.Decode(out); err != nil {
		return fmt.Errorf("invalid value for %s: %v", name, err)
	}
	return nil
}

func optionalString(v cue.Value, name string, out *string) {
	f := v.LookupPath(cue.ParsePath(name))
	if f.Exists() && f.Kind() == cue.StringKind {
		_ = f.Decode(out)
	}
}

func optionalStrings(v cue.Value, name string, out *[]string) {
	f := v.LookupPath(cue.ParsePath(name))
	if f.Exists() && f.Kind() == cue.ListKind {
		_ = f.Decode(out)
	}
}
