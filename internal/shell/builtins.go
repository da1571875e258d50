package shell

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mxshell/internal/command"
	"mxshell/internal/jobs"
)

// Messages shown to the user. Underlying errors only go to the log.
const (
	msgNotFound     = "command not found\n"
	msgEmptyCommand = "error: empty command\n"
	msgGetwdFailed  = "error: getcwd failed\n"
	msgOpenFailed   = "error: open failed\n"
	msgReadFailed   = "error: getdents64 failed\n"
	msgSleepFailed  = "error: sleep failed\n"
	msgPipeFailed   = "error: pipe failed\n"
	msgSpawnFailed  = "error: spawn failed\n"
	msgTableFull    = "error: job table full\n"
)

var (
	errOpenDir = errors.New("open directory")
	errReadDir = errors.New("read directory")
)

// runForeground runs a directive that needs no shell state: pwd, ls, sleep
// and unknown commands. It is shared by the interactive path and the job
// bootstrap.
func runForeground(d command.Directive, log *slog.Logger) string {
	switch d.Kind {
	case command.Sleep:
		if err := sleepFor(d.Duration()); err != nil {
			log.Error("sleep", "seconds", d.Seconds, "err", err)
			return msgSleepFailed
		}
		return ""
	case command.Builtin:
		switch d.Text {
		case command.Pwd:
			return pwd(log)
		case command.Ls:
			return ls(log)
		}
	}
	return msgNotFound
}

func pwd(log *slog.Logger) string {
	dir, err := os.Getwd()
	if err != nil {
		log.Error("pwd", "err", err)
		return msgGetwdFailed
	}
	return dir + "\n"
}

func ls(log *slog.Logger) string {
	dir, err := os.Getwd()
	if err != nil {
		log.Error("ls", "err", err)
		return msgGetwdFailed
	}

	names, err := readDirNames(dir)
	if err != nil {
		log.Error("ls", "dir", dir, "err", err)
		if errors.Is(err, errOpenDir) {
			return msgOpenFailed
		}
		return msgReadFailed
	}

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatJobs(list []jobs.Job) string {
	var b strings.Builder
	for _, job := range list {
		fmt.Fprintf(&b, "[%d] %s (%s)\n", job.ID, job.Command, job.Status)
	}
	return b.String()
}
