// Package command decides what a raw input line asks the shell to do.
package command

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Kind int

const (
	// Blank is an input line with nothing but whitespace.
	Blank Kind = iota
	// Background asks for Text to run as a background job.
	Background
	// Empty is a background directive with no command before the '&'.
	Empty
	// Sleep blocks for Seconds.
	Sleep
	// Builtin names one of the synchronous builtins in Text.
	Builtin
	// Unknown is anything else.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Background:
		return "background"
	case Empty:
		return "empty"
	case Sleep:
		return "sleep"
	case Builtin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Builtin names.
const (
	Pwd     = "pwd"
	Ls      = "ls"
	JobList = "joblist"
	Exit    = "exit"
)

var builtins = map[string]bool{
	Pwd:     true,
	Ls:      true,
	JobList: true,
	Exit:    true,
}

// maxSleepSeconds keeps a sleep duration representable as time.Duration.
const maxSleepSeconds = uint64(math.MaxInt64 / int64(time.Second))

type Directive struct {
	Kind Kind
	// Text is the trimmed command for Background, Builtin and Unknown.
	Text    string
	Seconds uint64
}

func (d Directive) Duration() time.Duration {
	return time.Duration(d.Seconds) * time.Second
}

// IsBuiltin reports whether name is one of the synchronous builtins.
func IsBuiltin(name string) bool {
	return builtins[name]
}

// Classify inspects line. It never modifies or retains anything but copies
// of line's substrings.
func Classify(line string) Directive {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if strings.HasSuffix(trimmed, "&") {
		text := strings.TrimSpace(strings.TrimSuffix(trimmed, "&"))
		if text == "" {
			return Directive{Kind: Empty}
		}
		return Directive{Kind: Background, Text: text}
	}
	return classifyForeground(strings.TrimSpace(trimmed))
}

// ClassifyForeground is Classify without background detection, for a command
// that is already running as a job.
func ClassifyForeground(text string) Directive {
	return classifyForeground(strings.TrimSpace(text))
}

func classifyForeground(text string) Directive {
	if text == "" {
		return Directive{Kind: Blank}
	}
	if secs, ok := parseSleep(text); ok {
		return Directive{Kind: Sleep, Text: text, Seconds: secs}
	}
	if IsBuiltin(text) {
		return Directive{Kind: Builtin, Text: text}
	}
	return Directive{Kind: Unknown, Text: text}
}

func parseSleep(text string) (uint64, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 || fields[0] != "sleep" || !allDigits(fields[1]) {
		return 0, false
	}
	secs, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil || secs > maxSleepSeconds {
		// only overflow can fail here
		return maxSleepSeconds, true
	}
	return secs, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
