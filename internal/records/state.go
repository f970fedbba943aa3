package records

import (
	"fmt"
	"time"
)

// FetchPhase is the data-fetch state of a view.
type FetchPhase int

const (
	FetchIdle FetchPhase = iota
	FetchLoading
	FetchLoaded
	FetchFailed
)

func (p FetchPhase) String() string {
	switch p {
	case FetchIdle:
		return "idle"
	case FetchLoading:
		return "loading"
	case FetchLoaded:
		return "loaded"
	case FetchFailed:
		return "failed"
	default:
		return fmt.Sprintf("FetchPhase(%d)", int(p))
	}
}

// FetchState is {Idle | Loading | Loaded | Failed(reason)}. Reason is only
// meaningful in FetchFailed.
type FetchState struct {
	Phase  FetchPhase
	Reason string
}

// Loading reports whether a list request is outstanding.
func (s FetchState) Loading() bool { return s.Phase == FetchLoading }

// Failed returns the failure reason when the last load failed.
func (s FetchState) Failed() (string, bool) {
	if s.Phase != FetchFailed {
		return "", false
	}
	return s.Reason, true
}

// FormMode is the state of the form region.
type FormMode int

const (
	FormHidden FormMode = iota
	FormCreate
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormHidden:
		return "hidden"
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	default:
		return fmt.Sprintf("FormMode(%d)", int(m))
	}
}

// FormState is {Hidden | CreateOpen | EditOpen(id)}.
type FormState struct {
	Mode     FormMode
	TargetID string
}

// Open reports whether the form is visible.
func (f FormState) Open() bool { return f.Mode != FormHidden }

// EditingTarget returns the identifier being edited; ok is false in
// create mode or when the form is hidden.
func (f FormState) EditingTarget() (id string, ok bool) {
	if f.Mode != FormEdit {
		return "", false
	}
	return f.TargetID, true
}

func (f FormState) String() string {
	if f.Mode == FormEdit {
		return fmt.Sprintf("edit(%s)", f.TargetID)
	}
	return f.Mode.String()
}

// Op names a completed operation.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one completed request and how it was reconciled.
type Event struct {
	Resource string
	Op       Op
	RecordID string
	Err      error
	// Anomaly is set when a successful response could not be reconciled
	// as expected (update of an unknown record, create of an existing id).
	Anomaly  bool
	Duration time.Duration
	At       time.Time
}

// Snapshot is what a rendering layer needs from a view.
type Snapshot[R Record] struct {
	Loading bool
	Error   string
	Records []R
}
