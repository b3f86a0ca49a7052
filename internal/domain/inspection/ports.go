package inspection

import (
	"context"
	"time"
)

// MasterBundle is the immutable snapshot of every master input consumed by one
// extraction run. Snapshots are safe to share without locks after load.
type MasterBundle struct {
	Products  *ProductMaster
	Roster    *Roster
	Skills    *SkillMatrix
	Vacations *VacationCalendar
	Pins      *FixedPinTable
}

// MasterSource loads the master bundle for a run date. Implementations may
// load the four file-backed masters in parallel and must fall back to
// sequential loading when a parallel read fails.
type MasterSource interface {
	LoadBundle(ctx context.Context, runDate time.Time) (*MasterBundle, error)
}

// RunRepository persists published extraction-run results for auditing.
// Engine state itself is run-scoped and never persisted.
type RunRepository interface {
	// SaveRun stores the run header and all assignment rows.
	SaveRun(ctx context.Context, run *RunRecord) error

	// FindRun retrieves a stored run by ID.
	FindRun(ctx context.Context, runID string) (*RunRecord, error)

	// ListRunsByDate retrieves run headers for a calendar date.
	ListRunsByDate(ctx context.Context, date time.Time) ([]*RunRecord, error)
}

// RunRecord is the persisted form of one extraction run.
type RunRecord struct {
	RunID         string
	RunDate       time.Time
	StartedAt     time.Time
	FinishedAt    time.Time
	Rows          []*AssignmentRow
	NonInspection []NonInspectionLot
	Diagnostics   []string
}

// Notifier publishes the non-inspection side list to the chat channel.
// Notification failures are isolated and never roll back an assignment.
type Notifier interface {
	PublishNonInspection(ctx context.Context, runDate time.Time, lots []NonInspectionLot) error
}
