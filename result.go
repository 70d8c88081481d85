package html2md

import "context"

// Result is the terminal outcome of converting one InputFile.
// A Result with a nil Err is a success.
type Result struct {
	Index    int
	File     *InputFile
	Title    string
	Markdown string

	// Hash is a content hash of Markdown, empty on failure.
	Hash string

	// Attempts is the number of conversion calls made.
	Attempts int

	Err error
}

// OK reports whether the conversion succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Stats holds pipeline counters.
type Stats struct {
	Total     int
	InFlight  int
	Completed int
	Failed    int
}

// Succeeded returns the number of successful conversions.
func (s Stats) Succeeded() int {
	return s.Completed - s.Failed
}

// State maps sequence indices to results. It is filled by a Scheduler and
// read by the assembler once the Scheduler has returned.
type State struct {
	Results []*Result
	Stats
}

// NewState returns an empty state with n pending slots.
func NewState(n int) *State {
	return &State{
		Results: make([]*Result, n),
		Stats:   Stats{Total: n},
	}
}

// Record stores r in its slot. Slots are write-once.
func (s *State) Record(r *Result) error {
	if r == nil {
		return Errorf(EINTERNAL, "nil result")
	}
	if r.Index < 0 || r.Index >= len(s.Results) {
		return Errorf(EINTERNAL, "result index %d out of range [0, %d)", r.Index, len(s.Results))
	}
	if s.Results[r.Index] != nil {
		return Errorf(ECONFLICT, "result for index %d already recorded", r.Index)
	}
	s.Results[r.Index] = r
	s.Completed++
	if !r.OK() {
		s.Failed++
	}
	return nil
}

// Complete reports whether every slot holds a result.
func (s *State) Complete() bool {
	for _, r := range s.Results {
		if r == nil {
			return false
		}
	}
	return true
}

// Failures returns the failed results in index order.
func (s *State) Failures() []*Result {
	var failed []*Result
	for _, r := range s.Results {
		if r != nil && !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Index     int
	Path      string
	Completed int
	Failed    int
	Total     int
	Err       error
}

// ProgressFunc is called as files are processed.
type ProgressFunc func(ProgressEvent)

// Scheduler converts a set of input files concurrently.
type Scheduler interface {
	// RunAll converts every file and returns once each has a terminal
	// Result. Per-file failures are recorded in the state, never returned.
	// The returned error is non-nil only for invalid input or when ctx
	// was cancelled; in the latter case the state is still complete.
	RunAll(ctx context.Context, files []*InputFile, progress ProgressFunc) (*State, error)
}
