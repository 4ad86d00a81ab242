package filesink

// lifecycle is the file-lifecycle sum type from spec §3: a closed set of
// states encoded as a tagged variant rather than a class hierarchy, per
// spec §9 "Sum types over inheritance". From the sink's point of view there
// is at most one active file at a time, so the "tag" is simply whether
// active is nil (Absent) or not (Open); Sealed and Promoted are transient
// states passed through synchronously inside sealAndPromote and never
// observed by the run loop.
type lifecycle int

const (
	stateAbsent lifecycle = iota
	stateOpen
)

// event is the run loop's discriminated union (spec §9): exactly one of
// these drives each iteration of Run.
type event int

const (
	evShutdown event = iota
	evTick
	evMsg
	evEOF
)
