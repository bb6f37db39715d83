package bib

import (
	"bufio"
	"os"
	"regexp"
	"sort"
)

// reUndefined matches the warning the typesetting pass emits for a
// citation key it could not resolve. The pattern is anchored at line
// start; anything else in the log is ignored.
var reUndefined = regexp.MustCompile("^LaTeX Warning: Citation `(?P<cite>.*)' .*undefined.*")

// UndefinedCitations returns the sorted set of citation keys reported as
// undefined in the given main-log lines. No matching line means an empty
// result, which is the normal case rather than an error.
func UndefinedCitations(lines []string) []string {
	set := map[string]struct{}{}
	for _, line := range lines {
		if m := reUndefined.FindStringSubmatch(line); m != nil {
			set[m[1]] = struct{}{}
		}
	}
	cites := make([]string, 0, len(set))
	for c := range set {
		cites = append(cites, c)
	}
	sort.Strings(cites)
	return cites
}

// readLogLines reads a log file into lines. A missing or unreadable file
// yields nil, which callers treat as "no log yet".
func readLogLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if sc.Err() != nil {
		return nil
	}
	return lines
}
