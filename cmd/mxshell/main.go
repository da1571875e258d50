package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mxshell/internal/config"
	"mxshell/internal/shell"
)

type options struct {
	configFile string
	logLevel   string
}

func addFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.configFile, "config", "", "config file (default $"+config.EnvConfigFile+" or "+config.DefaultConfigFile+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "mxshell",
		Short:         "A minimal interactive shell with background jobs.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts)
		},
	}
	addFlags(root.PersistentFlags(), opts)
	root.AddCommand(newJobCmd())
	return root
}

// newJobCmd is the entry point of a background job's child process.
func newJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:    shell.JobCommand + " -- COMMAND",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			os.Exit(shell.RunJob(args[0], os.Stdout, log))
		},
	}
}

func runShell(opts *options) error {
	file := opts.configFile
	if file == "" {
		file = config.File()
	}
	cfg, err := config.Load(file)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, err := cfg.NewLogger()
	if err != nil {
		log.Warn("falling back to warn level", "err", err)
	}

	launcher, err := shell.SelfLauncher(cfg.CaptureTimeout, log)
	if err != nil {
		return err
	}

	s, err := shell.New(cfg, launcher, log)
	if err != nil {
		return err
	}

	if err := s.Run(); err != nil && !errors.Is(err, shell.ErrExit) {
		return err
	}
	return nil
}

func main() {
	config.LoadEnv()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
