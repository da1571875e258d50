package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"

	"mxshell/internal/jobs"
)

// JobCommand is the hidden subcommand that runs one job in a child process.
const JobCommand = "__job"

// captureBufSize bounds the single read of a job's output.
const captureBufSize = 4096

var (
	ErrPipe  = errors.New("create output pipe")
	ErrSpawn = errors.New("spawn job")
)

// Launcher starts background jobs by running Path with Args(text) and
// capturing the child's stdout over a pipe.
type Launcher struct {
	Path string
	Args func(text string) []string
	// Env is the child environment; nil inherits the shell's.
	Env []string
	// CaptureTimeout bounds the wait for the first output. Zero waits for
	// data or end of file.
	CaptureTimeout time.Duration

	log *slog.Logger
}

// SelfLauncher runs jobs through the shell's own executable.
func SelfLauncher(captureTimeout time.Duration, log *slog.Logger) (*Launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	return &Launcher{
		Path: exe,
		Args: func(text string) []string {
			return []string{JobCommand, "--", text}
		},
		CaptureTimeout: captureTimeout,
		log:            log,
	}, nil
}

func (l *Launcher) logger() *slog.Logger {
	if l.log == nil {
		return slog.Default()
	}
	return l.log
}

// Launch registers text in table, spawns it and returns the job together with
// whatever the child wrote before the first read returned. The job is removed
// again if no process could be started.
func (l *Launcher) Launch(table *jobs.Table, text string) (jobs.Job, []byte, error) {
	log := l.logger()

	job, err := table.Insert(text)
	if err != nil {
		return jobs.Job{}, nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		table.Discard(job.ID)
		return jobs.Job{}, nil, fmt.Errorf("%w: %w", ErrPipe, err)
	}
	defer r.Close()

	// the stored command may be truncated; the child runs what was typed
	argv := append([]string{l.Path}, l.Args(text)...)
	cmd := &exec.Cmd{
		Path:   l.Path,
		Args:   argv,
		Env:    l.Env,
		Stdout: w,
		// own process group so terminal keystrokes stay with the shell
		SysProcAttr: &unix.SysProcAttr{Setpgid: true},
	}

	log.Debug("spawn job", "job", job.ID, "argv", shellquote.Join(argv...))
	if err := cmd.Start(); err != nil {
		w.Close()
		table.Discard(job.ID)
		return jobs.Job{}, nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	w.Close()

	pid := cmd.Process.Pid
	if err := table.SetPID(job.ID, pid); err != nil {
		return jobs.Job{}, nil, err
	}
	job.PID = pid
	// the bridge reaps the child with wait4; drop the Go-side handle
	cmd.Process.Release()

	return job, l.capture(r), nil
}

func (l *Launcher) capture(r *os.File) []byte {
	if l.CaptureTimeout > 0 {
		if err := r.SetReadDeadline(time.Now().Add(l.CaptureTimeout)); err != nil {
			l.logger().Debug("capture deadline", "err", err)
		}
	}

	buf := make([]byte, captureBufSize)
	n, err := r.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
		l.logger().Warn("capture job output", "err", err)
	}
	return buf[:n]
}
