package bib

// RunState is the memory the staleness engine carries across evaluations
// within one build session. "Not yet known" is explicit: each slice has a
// companion flag instead of overloading nil, so the comparison steps can
// distinguish "never observed" from "observed empty".
type RunState struct {
	// UsedCites is the cited-key list from the last registry parse.
	UsedCites      []string
	UsedCitesKnown bool

	// PrevDBs is the sorted database list from the last registry parse.
	PrevDBs      []string
	PrevDBsKnown bool

	// UndefCites is the undefined-citation set from the last main log.
	UndefCites      []string
	UndefCitesKnown bool

	// RunNeeded is set by PreCompile when a tool run is due and cleared
	// only by a successful run.
	RunNeeded bool
}
