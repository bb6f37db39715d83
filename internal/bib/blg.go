package bib

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// The error format of the bibliography tool's log is heavily heuristic.
// Every error message ends with a text of the form "---line xxx of file
// yyy" or "---while reading file zzz"; the actual message is either the
// text before the dashes or the whole previous line. Do not tidy these
// patterns without checking real tool output first.
var reToolError = regexp.MustCompile(`---(line (?P<line>[0-9]+) of|while reading) file (?P<file>.*)`)

const styleReportPrefix = "The style file: "

// Diagnostic is one structured error extracted from the tool log.
type Diagnostic struct {
	Package string `json:"pkg"`
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Line    int    `json:"line,omitempty"`
	File    string `json:"file,omitempty"`
}

// ErrorScan lazily produces Diagnostics from a tool log. The scan reads
// the file exactly once and is not restartable; call ScanToolErrors again
// to re-iterate. The underlying file is closed when the scan is exhausted
// or Close is called.
type ErrorScan struct {
	f        *os.File
	sc       *bufio.Scanner
	lastLine string
	lookup   func(name string) (string, bool)
	done     bool
}

// ScanToolErrors opens the tool log at path and returns a lazy scan over
// its error records. lookup maps a logical database name back to its
// resolved path; the tool itself never reports full paths. A missing log
// surfaces as an error satisfying errors.Is(err, fs.ErrNotExist).
func ScanToolErrors(path string, lookup func(name string) (string, bool)) (*ErrorScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &ErrorScan{f: f, sc: sc, lookup: lookup}, nil
}

// Next returns the next Diagnostic, or ok=false once the log is exhausted.
func (s *ErrorScan) Next() (Diagnostic, bool) {
	if s.done {
		return Diagnostic{}, false
	}
	for s.sc.Scan() {
		line := s.sc.Text()
		loc := reToolError.FindStringSubmatchIndex(line)
		if loc == nil {
			s.lastLine = line
			continue
		}

		var text string
		if loc[0] == 0 {
			text = strings.TrimSpace(s.lastLine)
		} else {
			text = strings.TrimSpace(line[:loc[0]])
		}

		d := Diagnostic{Package: "bibtex", Kind: "error", Text: text}
		if g := reToolError.SubexpIndex("line"); loc[2*g] >= 0 {
			if n, err := strconv.Atoi(line[loc[2*g]:loc[2*g+1]]); err == nil {
				d.Line = n
			}
		}
		g := reToolError.SubexpIndex("file")
		d.File = s.mapFile(line[loc[2*g]:loc[2*g+1]])

		s.lastLine = line
		return d, true
	}
	_ = s.Close()
	return Diagnostic{}, false
}

// Close releases the underlying file. Safe to call more than once.
func (s *ErrorScan) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.f.Close()
}

// mapFile recovers the resolved database path for a file name the tool
// reported. Names carrying the .bib suffix are stripped before lookup.
func (s *ErrorScan) mapFile(name string) string {
	base := strings.TrimSuffix(name, ".bib")
	if p, ok := s.lookup(base); ok {
		return p
	}
	if p, ok := s.lookup(base + ".bib"); ok {
		return p
	}
	return name
}

// StyleReported scans the tool log for the style it says it used,
// identified by a line with the literal prefix "The style file: ". The
// trailing .bst suffix is stripped. Absence of the log or of the line
// yields ok=false.
func StyleReported(path string) (string, bool) {
	for _, line := range readLogLines(path) {
		if !strings.HasPrefix(line, styleReportPrefix) {
			continue
		}
		name := strings.TrimRight(line[len(styleReportPrefix):], " \t\r")
		name = strings.TrimSuffix(name, ".bst")
		return name, true
	}
	return "", false
}

// hasToolErrorMarker reports whether the tool log contains at least one
// error marker. A missing log yields false.
func hasToolErrorMarker(path string) bool {
	for _, line := range readLogLines(path) {
		if reToolError.MatchString(line) {
			return true
		}
	}
	return false
}
