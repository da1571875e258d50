package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Run reads lines until end of input or exit. It returns ErrExit when the
// user typed exit.
func (s *Shell) Run() error {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return s.runInteractive()
	}
	return s.runScript(os.Stdin, os.Stdout)
}

func (s *Shell) runInteractive() error {
	username := userName()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 s.prompt(username),
		HistoryLimit:           s.config.MaxHistory,
		DisableAutoSaveHistory: true,
		// readline would suspend itself on Ctrl+Z and wait for a SIGCONT
		// that never comes while the shell holds SIGTSTP.
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == readline.CharCtrlZ {
				s.signals.Raise(syscall.SIGTSTP)
				return r, false
			}
			return r, true
		},
	})
	if err != nil {
		return fmt.Errorf("error initializing readline: %w", err)
	}
	defer rl.Close()

	for _, item := range s.history.GetAll() {
		rl.SaveHistory(item)
	}

	s.signals.Start(rl.Stdout())
	defer s.signals.Stop()

	if s.config.ShowBanner() {
		fmt.Fprint(rl.Stdout(), banner(username))
	}

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Fprintln(rl.Stdout(), "Received SIGINT")
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if strings.TrimSpace(line) != "" {
			rl.SaveHistory(line)
			s.addHistory(line)
		}

		out, err := s.Dispatch(line)
		if errors.Is(err, ErrExit) {
			return err
		}
		fmt.Fprint(rl.Stdout(), out)
	}
}

// runScript serves non-terminal input: no prompt, no banner.
func (s *Shell) runScript(in io.Reader, out io.Writer) error {
	s.signals.Start(out)
	defer s.signals.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		result, err := s.Dispatch(scanner.Text())
		if errors.Is(err, ErrExit) {
			return err
		}
		fmt.Fprint(out, result)
	}
	return scanner.Err()
}

func (s *Shell) addHistory(line string) {
	if err := s.history.Add(line); err != nil {
		s.log.Warn("saving history", "file", s.config.HistoryFile, "err", err)
	}
}

func (s *Shell) prompt(username string) string {
	if strings.Contains(s.config.Prompt, "%s") {
		return fmt.Sprintf(s.config.Prompt, username)
	}
	return s.config.Prompt
}

func banner(username string) string {
	return fmt.Sprintf("%30sWELCOME %s\n\n%28sMXJESTICAL SHELL\n\n", "", username, "")
}

func userName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
