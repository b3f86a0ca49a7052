package inspection

import "fmt"

// ErrMasterInputMissing indicates a required master input could not be read.
// This is the only error class that aborts a run before any assignment.
type ErrMasterInputMissing struct {
	Master string
	Path   string
	Cause  error
}

func (e *ErrMasterInputMissing) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("master input %s missing or unreadable at %s: %v", e.Master, e.Path, e.Cause)
	}
	return fmt.Sprintf("master input %s missing or unreadable: %v", e.Master, e.Cause)
}

func (e *ErrMasterInputMissing) Unwrap() error { return e.Cause }

// ErrColumnMissing indicates a required column is absent from an input frame.
type ErrColumnMissing struct {
	Input  string
	Column string
}

func (e *ErrColumnMissing) Error() string {
	return fmt.Sprintf("input %s is missing required column %q", e.Input, e.Column)
}

// ErrInspectorUnknown indicates a referenced inspector is not in the roster.
type ErrInspectorUnknown struct {
	Reference string
}

func (e *ErrInspectorUnknown) Error() string {
	return fmt.Sprintf("inspector not found in roster: %s", e.Reference)
}

// ErrRunCancelled indicates the run was cancelled at a phase boundary.
type ErrRunCancelled struct {
	Phase string
}

func (e *ErrRunCancelled) Error() string {
	return fmt.Sprintf("run cancelled during phase %s", e.Phase)
}
