package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prodcons/internal/pipeline"
)

type options struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
	deadline   time.Duration

	// Flag values; only the ones set on the command line override the file.
	flags pipeline.Config
}

func bindConfigFlags(cmd *cobra.Command, opts *options) {
	def := pipeline.DefaultConfig()
	fs := cmd.Flags()
	fs.IntVar(&opts.flags.BufferSize, "buffer-size", def.BufferSize, "channel capacity")
	fs.IntVar(&opts.flags.NumProducers, "producers", def.NumProducers, "number of producer workers")
	fs.IntVar(&opts.flags.NumConsumers, "consumers", def.NumConsumers, "number of consumer workers")
	fs.IntVar(&opts.flags.MaxItems, "max-items", def.MaxItems, "total items to produce")
	fs.DurationVar(&opts.flags.BaseTimeout, "timeout", def.BaseTimeout, "consumer poll timeout")
	fs.DurationVar(&opts.flags.ThinkTime, "think-time", def.ThinkTime, "simulated work per item")
}

// resolve layers defaults, the optional config file and explicitly set flags.
func (o *options) resolve(cmd *cobra.Command) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("buffer-size") {
		cfg.BufferSize = o.flags.BufferSize
	}
	if fs.Changed("producers") {
		cfg.NumProducers = o.flags.NumProducers
	}
	if fs.Changed("consumers") {
		cfg.NumConsumers = o.flags.NumConsumers
	}
	if fs.Changed("max-items") {
		cfg.MaxItems = o.flags.MaxItems
	}
	if fs.Changed("timeout") {
		cfg.BaseTimeout = o.flags.BaseTimeout
	}
	if fs.Changed("think-time") {
		cfg.ThinkTime = o.flags.ThinkTime
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) logger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	switch o.logFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", o.logFormat)
	}
	return log, nil
}
