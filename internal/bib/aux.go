package bib

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
)

// The aux files written by the typesetting pass are the registry this
// module works from: \citation lines list the cited keys, \bibdata lines
// list the databases the document declared.
var (
	reCitation = regexp.MustCompile(`^\\citation\{(?P<cite>.*)\}`)
	reBibdata  = regexp.MustCompile(`^\\bibdata\{(?P<data>.*)\}`)
)

// ParseRegistry scans the given aux files in order and returns the cited
// keys together with the sorted, duplicate-free list of database names.
//
// Key ordering depends on sorted: lexicographic when true, global
// first-occurrence order across the whole concatenation when false. A
// missing file yields an error satisfying errors.Is(err, fs.ErrNotExist);
// callers treat that as "no prior data".
func ParseRegistry(paths []string, sorted bool) (cites []string, dbs []string, err error) {
	order := map[string]int{}
	last := 0
	dbSet := map[string]struct{}{}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil, fmt.Errorf("registry %s: %w", p, fs.ErrNotExist)
			}
			return nil, nil, err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			if m := reCitation.FindStringSubmatch(line); m != nil {
				for _, cite := range strings.Split(m[1], ",") {
					if _, seen := order[cite]; !seen {
						last++
						order[cite] = last
					}
				}
				continue
			}
			if m := reBibdata.FindStringSubmatch(line); m != nil {
				for _, name := range strings.Split(m[1], ",") {
					dbSet[name] = struct{}{}
				}
			}
		}
		scanErr := sc.Err()
		_ = f.Close()
		if scanErr != nil {
			return nil, nil, scanErr
		}
	}

	dbs = make([]string, 0, len(dbSet))
	for name := range dbSet {
		dbs = append(dbs, name)
	}
	sort.Strings(dbs)

	cites = make([]string, 0, len(order))
	for cite := range order {
		cites = append(cites, cite)
	}
	if sorted {
		sort.Strings(cites)
	} else {
		sort.Slice(cites, func(i, j int) bool { return order[cites[i]] < order[cites[j]] })
	}
	return cites, dbs, nil
}
