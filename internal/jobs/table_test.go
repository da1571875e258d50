package jobs

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func mustInsert(t *testing.T, table *Table, cmd string) Job {
	t.Helper()
	job, err := table.Insert(cmd)
	if err != nil {
		t.Fatalf("Insert(%q): %v", cmd, err)
	}
	return job
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	table := NewTable(0)

	first := mustInsert(t, table, "a")
	second := mustInsert(t, table, "b")
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("Expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if first.Status != Running || first.HasPID() {
		t.Errorf("Expected new job to be RUNNING without pid, got %v pid=%d", first.Status, first.PID)
	}

	table.ApplyStatus(NoPID, Done)
	if err := table.SetPID(first.ID, 100); err != nil {
		t.Fatalf("SetPID: %v", err)
	}
	table.ApplyStatus(100, Done)
	table.PruneDone()

	third := mustInsert(t, table, "c")
	if third.ID != 3 {
		t.Errorf("Expected id 3 after prune, got %d", third.ID)
	}

	table.Discard(third.ID)
	fourth := mustInsert(t, table, "d")
	if fourth.ID != 4 {
		t.Errorf("Expected id 4 after discard, got %d", fourth.ID)
	}
}

func TestSetPIDOnlyOnce(t *testing.T) {
	table := NewTable(0)
	job := mustInsert(t, table, "a")

	if err := table.SetPID(job.ID, 10); err != nil {
		t.Fatalf("SetPID: %v", err)
	}
	if err := table.SetPID(job.ID, 11); !errors.Is(err, ErrPIDAssigned) {
		t.Errorf("Expected ErrPIDAssigned, got %v", err)
	}
	if err := table.SetPID(42, 11); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("Expected ErrUnknownJob, got %v", err)
	}
	if got := table.List()[0].PID; got != 10 {
		t.Errorf("Expected pid 10, got %d", got)
	}
}

func TestApplyStatusUnknownPIDIsNoop(t *testing.T) {
	table := NewTable(0)
	job := mustInsert(t, table, "a")
	table.SetPID(job.ID, 10)

	before := table.List()
	if table.ApplyStatus(99, Done) {
		t.Error("Expected no change for unknown pid")
	}
	after := table.List()
	if len(before) != len(after) || before[0] != after[0] {
		t.Errorf("Table changed: before %+v after %+v", before, after)
	}
}

func TestStateMachine(t *testing.T) {
	tests := []struct {
		name  string
		steps []Status
		want  Status
	}{
		{"stop", []Status{Stopped}, Stopped},
		{"stop then continue", []Status{Stopped, Running}, Running},
		{"exit while running", []Status{Done}, Done},
		{"exit while stopped", []Status{Stopped, Done}, Done},
		{"done is terminal", []Status{Done, Running}, Done},
		{"done ignores stop", []Status{Done, Stopped, Running}, Done},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(0)
			job := mustInsert(t, table, "a")
			table.SetPID(job.ID, 7)
			for _, s := range tt.steps {
				table.ApplyStatus(7, s)
			}
			if got := table.List()[0].Status; got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPruneDoneKeepsOrder(t *testing.T) {
	table := NewTable(0)
	for i, cmd := range []string{"a", "b", "c", "d", "e"} {
		job := mustInsert(t, table, cmd)
		table.SetPID(job.ID, 100+i)
	}
	table.ApplyStatus(100, Done)
	table.ApplyStatus(102, Done)
	table.ApplyStatus(103, Stopped)

	if removed := table.PruneDone(); removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 live jobs, got %d", table.Len())
	}

	var got []string
	for _, job := range table.List() {
		if job.Status == Done {
			t.Errorf("Done job %d survived prune", job.ID)
		}
		got = append(got, job.Command)
	}
	if strings.Join(got, ",") != "b,d,e" {
		t.Errorf("Expected b,d,e, got %v", got)
	}

	if removed := table.PruneDone(); removed != 0 {
		t.Errorf("Expected idempotent prune, removed %d", removed)
	}
}

func TestInsertTruncatesCommand(t *testing.T) {
	table := NewTable(0)

	long := strings.Repeat("x", MaxCommandLen+20)
	job := mustInsert(t, table, long)
	if len(job.Command) != MaxCommandLen {
		t.Errorf("Expected %d bytes, got %d", MaxCommandLen, len(job.Command))
	}

	// a two-byte rune straddling the bound is dropped whole
	multi := strings.Repeat("a", MaxCommandLen-1) + "é"
	job = mustInsert(t, table, multi)
	if !utf8.ValidString(job.Command) {
		t.Errorf("Truncated command is not valid UTF-8: %q", job.Command)
	}
	if len(job.Command) != MaxCommandLen-1 {
		t.Errorf("Expected %d bytes, got %d", MaxCommandLen-1, len(job.Command))
	}
}

func TestInsertTableFull(t *testing.T) {
	table := NewTable(2)
	mustInsert(t, table, "a")
	mustInsert(t, table, "b")

	if _, err := table.Insert("c"); !errors.Is(err, ErrTableFull) {
		t.Fatalf("Expected ErrTableFull, got %v", err)
	}

	table.SetPID(1, 50)
	table.ApplyStatus(50, Done)
	table.PruneDone()
	if job := mustInsert(t, table, "c"); job.ID != 3 {
		t.Errorf("Expected id 3, got %d", job.ID)
	}
}
