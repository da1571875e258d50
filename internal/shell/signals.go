package shell

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"mxshell/internal/jobs"
)

// Bridge turns SIGCHLD into a pending flag. The job table is only touched by
// Reconcile, which runs on the caller's goroutine.
type Bridge struct {
	pending    atomic.Bool
	signalChan chan os.Signal
	done       chan struct{}
	once       sync.Once
	log        *slog.Logger
}

func NewBridge(log *slog.Logger) *Bridge {
	return &Bridge{
		signalChan: make(chan os.Signal, 4),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Start begins signal delivery. Diagnostics for SIGINT and SIGTSTP are
// written to out.
func (b *Bridge) Start(out io.Writer) {
	signal.Notify(b.signalChan, syscall.SIGINT, syscall.SIGTSTP, syscall.SIGCHLD)
	go b.handleSignals(out)
}

func (b *Bridge) Stop() {
	b.once.Do(func() {
		signal.Stop(b.signalChan)
		close(b.done)
	})
}

func (b *Bridge) handleSignals(out io.Writer) {
	for {
		select {
		case sig := <-b.signalChan:
			switch sig {
			case syscall.SIGCHLD:
				b.pending.Store(true)
			case syscall.SIGINT:
				fmt.Fprintln(out, "\nReceived SIGINT")
			case syscall.SIGTSTP:
				fmt.Fprintln(out, "\nReceived SIGTSTP")
			}
		case <-b.done:
			return
		}
	}
}

// Raise hands sig to the signal goroutine as if the OS had delivered it. It
// never blocks; a signal is dropped when the queue is full.
func (b *Bridge) Raise(sig os.Signal) {
	select {
	case b.signalChan <- sig:
	default:
	}
}

// Pending reports whether a child changed state since the last Reconcile.
func (b *Bridge) Pending() bool {
	return b.pending.Load()
}

// Reconcile collects every outstanding child state change without blocking
// and applies it to table. The flag is cleared before draining so a change
// that races the drain is picked up next time. It returns the number of
// state changes collected.
func (b *Bridge) Reconcile(table *jobs.Table) int {
	b.pending.Store(false)

	n := 0
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err == unix.EINTR {
			continue
		}
		// ECHILD: no children left
		if err != nil || pid <= 0 {
			return n
		}
		n++

		status, ok := statusOf(ws)
		if !ok {
			continue
		}
		if table.ApplyStatus(pid, status) {
			b.log.Debug("job status", "pid", pid, "status", status)
		}
	}
}

// statusOf maps a wait status onto the job state machine.
func statusOf(ws unix.WaitStatus) (jobs.Status, bool) {
	switch {
	case ws.Exited(), ws.Signaled():
		return jobs.Done, true
	case ws.Stopped():
		return jobs.Stopped, true
	case ws.Continued():
		return jobs.Running, true
	}
	return 0, false
}
