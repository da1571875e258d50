package jobs

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the number of live jobs a table holds when none is given.
const DefaultCapacity = 100

var (
	ErrTableFull   = errors.New("job table full")
	ErrUnknownJob  = errors.New("no such job")
	ErrPIDAssigned = errors.New("process handle already set")
)

// Table is the ordered set of jobs owned by one shell. Entries are kept in
// insertion order. It is not safe for concurrent use; signal delivery never
// touches it directly.
type Table struct {
	jobs      []*Job
	nextJobID int
	capacity  int
}

// NewTable returns an empty table holding at most capacity live jobs.
// A capacity <= 0 selects DefaultCapacity.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Table{
		nextJobID: 1,
		capacity:  capacity,
	}
}

// Insert appends a running job with no process handle and returns a copy of it.
func (t *Table) Insert(command string) (Job, error) {
	if len(t.jobs) >= t.capacity {
		return Job{}, ErrTableFull
	}
	job := &Job{
		ID:      t.nextJobID,
		PID:     NoPID,
		Command: truncateCommand(command),
		Status:  Running,
	}
	t.jobs = append(t.jobs, job)
	t.nextJobID++
	return *job, nil
}

// SetPID records the process handle of job id. It may only be done once.
func (t *Table) SetPID(id, pid int) error {
	job := t.find(id)
	if job == nil {
		return fmt.Errorf("job %d: %w", id, ErrUnknownJob)
	}
	if job.HasPID() {
		return fmt.Errorf("job %d: %w", id, ErrPIDAssigned)
	}
	job.PID = pid
	return nil
}

// ApplyStatus moves every job with the given process handle to status.
// Unknown handles and jobs that are already Done are left alone. It reports
// whether any entry changed.
func (t *Table) ApplyStatus(pid int, status Status) bool {
	if pid == NoPID {
		return false
	}
	changed := false
	for _, job := range t.jobs {
		if job.PID != pid || !canTransition(job.Status, status) {
			continue
		}
		job.Status = status
		changed = true
	}
	return changed
}

// Discard removes job id regardless of its status. Used to roll back a
// launch that never produced a process. The id is not handed out again.
func (t *Table) Discard(id int) bool {
	for i, job := range t.jobs {
		if job.ID == id {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return true
		}
	}
	return false
}

// PruneDone drops every Done job and keeps the order of the rest.
func (t *Table) PruneDone() int {
	kept := t.jobs[:0]
	for _, job := range t.jobs {
		if job.Status != Done {
			kept = append(kept, job)
		}
	}
	removed := len(t.jobs) - len(kept)
	for i := len(kept); i < len(t.jobs); i++ {
		t.jobs[i] = nil
	}
	t.jobs = kept
	return removed
}

// List returns a snapshot of the jobs, oldest first.
func (t *Table) List() []Job {
	jobs := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return len(t.jobs)
}

func (t *Table) find(id int) *Job {
	for _, job := range t.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}
