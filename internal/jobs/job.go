package jobs

// Status is the lifecycle state of a background job.
type Status int

const (
	Running Status = iota
	Stopped
	Done
)

func (s Status) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// NoPID marks a job whose process has not been spawned yet.
const NoPID = -1

// MaxCommandLen bounds the stored command text in bytes.
const MaxCommandLen = 255

type Job struct {
	ID      int
	PID     int
	Command string
	Status  Status
}

// HasPID reports whether the job's process handle has been recorded.
func (j Job) HasPID() bool {
	return j.PID != NoPID
}

// canTransition reports whether a job in state from may move to to.
// Done is terminal.
func canTransition(from, to Status) bool {
	if from == Done {
		return false
	}
	return from != to
}

func truncateCommand(cmd string) string {
	if len(cmd) <= MaxCommandLen {
		return cmd
	}
	cut := MaxCommandLen
	// back off to a rune start so the stored text stays valid UTF-8
	for cut > 0 && cmd[cut]&0xC0 == 0x80 {
		cut--
	}
	return cmd[:cut]
}
