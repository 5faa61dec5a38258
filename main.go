package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"prodcons/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "prodcons",
		Short:        "Bounded-buffer producer/consumer simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, opts)
		},
	}
	bindConfigFlags(runCmd, opts)
	runCmd.Flags().DurationVar(&opts.deadline, "deadline", 0, "abort the run after this long (0 disables)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	bindConfigFlags(configCmd, opts)

	root.AddCommand(runCmd, configCmd)
	return root
}

func runSimulation(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	log, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.noColor {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.deadline)
		defer cancel()
	}

	coord, err := pipeline.NewCoordinator(cfg,
		pipeline.WithLogger(logrus.NewEntry(log)),
		pipeline.WithSink(newProgressPrinter(cmd.OutOrStdout())),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, cfg)

	rep, err := coord.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	renderSummary(out, rep)
	return nil
}
