package main

import (
	"testing"

	"mxshell/internal/shell"
)

func TestRootFlags(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--config", "/tmp/x.yml", "--log-level", "debug"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if got := root.Flag("config").Value.String(); got != "/tmp/x.yml" {
		t.Errorf("Expected config flag, got %q", got)
	}
	if got := root.Flag("log-level").Value.String(); got != "debug" {
		t.Errorf("Expected log-level flag, got %q", got)
	}
}

func TestJobCommandIsHidden(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{shell.JobCommand, "--", "sleep 1"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cmd.Name() != shell.JobCommand || !cmd.Hidden {
		t.Errorf("Expected hidden %s command, got %q hidden=%v", shell.JobCommand, cmd.Name(), cmd.Hidden)
	}
}
