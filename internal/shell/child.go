package shell

import (
	"io"
	"log/slog"

	"mxshell/internal/command"
)

// RunJob is the whole life of a job's child process: run text once, write
// its output to out and return the exit code. A job has no job table of its
// own, so joblist prints nothing, and exit just ends the job.
func RunJob(text string, out io.Writer, log *slog.Logger) int {
	d := command.ClassifyForeground(text)

	if d.Kind == command.Builtin && (d.Text == command.Exit || d.Text == command.JobList) {
		return 0
	}

	result := runForeground(d, log)
	if result == "" {
		return 0
	}
	if _, err := io.WriteString(out, result); err != nil {
		log.Error("write job output", "err", err)
		return 1
	}
	return 0
}
