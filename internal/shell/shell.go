package shell

import (
	"errors"
	"fmt"
	"log/slog"

	"mxshell/internal/command"
	"mxshell/internal/config"
	"mxshell/internal/history"
	"mxshell/internal/jobs"
)

// ErrExit is returned by Dispatch when the user asked the shell to end.
var ErrExit = errors.New("exit")

type Shell struct {
	config   *config.Config
	history  *history.History
	jobs     *jobs.Table
	signals  *Bridge
	launcher *Launcher
	log      *slog.Logger
}

func New(cfg *config.Config, launcher *Launcher, log *slog.Logger) (*Shell, error) {
	hist, err := history.New(cfg.HistoryFile, cfg.MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("error initializing history: %w", err)
	}
	if launcher.log == nil {
		launcher.log = log
	}

	return &Shell{
		config:   cfg,
		history:  hist,
		jobs:     jobs.NewTable(cfg.MaxJobs),
		signals:  NewBridge(log),
		launcher: launcher,
		log:      log,
	}, nil
}

// Dispatch runs one input line and returns the text to show for it.
func (s *Shell) Dispatch(line string) (string, error) {
	if s.signals.Pending() {
		s.Reconcile()
	}

	d := command.Classify(line)
	switch d.Kind {
	case command.Blank:
		return "", nil
	case command.Empty:
		return msgEmptyCommand, nil
	case command.Background:
		return s.launch(d.Text), nil
	case command.Builtin:
		switch d.Text {
		case command.Exit:
			return "", ErrExit
		case command.JobList:
			return s.jobList(), nil
		}
	}
	return runForeground(d, s.log), nil
}

// Reconcile applies all pending child state changes to the job table.
func (s *Shell) Reconcile() {
	s.signals.Reconcile(s.jobs)
}

// Jobs returns the current job table, oldest first.
func (s *Shell) Jobs() []jobs.Job {
	return s.jobs.List()
}

func (s *Shell) launch(text string) string {
	job, out, err := s.launcher.Launch(s.jobs, text)
	if err != nil {
		s.log.Error("launch job", "command", text, "err", err)
		switch {
		case errors.Is(err, jobs.ErrTableFull):
			return msgTableFull
		case errors.Is(err, ErrPipe):
			return msgPipeFailed
		default:
			return msgSpawnFailed
		}
	}
	return fmt.Sprintf("[%d] %d\n", job.ID, job.PID) + string(out)
}

// jobList shows every job once with its latest state, then forgets the
// finished ones.
func (s *Shell) jobList() string {
	s.Reconcile()
	out := formatJobs(s.jobs.List())
	s.jobs.PruneDone()
	return out
}
