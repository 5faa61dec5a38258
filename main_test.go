package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benbjohnson/immutable"
	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"prodcons/internal/pipeline"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestRenderSummary(t *testing.T) {
	color.NoColor = true

	ledger := immutable.NewSortedMap[int, pipeline.Delivery](nil)
	for i := 1; i <= 15; i++ {
		ledger = ledger.Set(i, pipeline.Delivery{Producer: 1 + i%2, Consumer: 1 + (i+1)%2})
	}
	rep := &pipeline.Report{
		Config:    *pipeline.DefaultConfig(),
		HighWater: 5,
		Produced:  map[int]int{2: 7, 1: 8},
		Consumed:  map[int]int{1: 7, 2: 8},
		Ledger:    ledger,
	}

	var out bytes.Buffer
	renderSummary(&out, rep)
	goldie.New(t).Assert(t, "summary", out.Bytes())
}

func TestRenderSummaryShortfall(t *testing.T) {
	color.NoColor = true

	rep := &pipeline.Report{
		Config:    pipeline.Config{BufferSize: 1, MaxItems: 4},
		HighWater: 1,
		Produced:  map[int]int{1: 4},
		Consumed:  map[int]int{1: 3},
		Ledger:    immutable.NewSortedMap[int, pipeline.Delivery](nil),
	}

	var out bytes.Buffer
	renderSummary(&out, rep)
	goldie.New(t).Assert(t, "summary_shortfall", out.Bytes())
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run",
		"--max-items", "4",
		"--buffer-size", "2",
		"--think-time", "0",
		"--timeout", "5ms",
		"--no-color",
	)
	require.NoError(t, err)

	require.Contains(t, out, "Producer-Consumer Problem!")
	require.Contains(t, out, "Buffer size: 2, Max items: 4")
	require.Equal(t, 4, strings.Count(out, ": Added (Item-"))
	require.Equal(t, 4, strings.Count(out, ": Got (Item-"))
	for _, label := range []string{"Item-1", "Item-2", "Item-3", "Item-4"} {
		require.Contains(t, out, "("+label+")")
	}
	require.Contains(t, out, "Simulation completed!")
	require.Contains(t, out, "Items consumed: 4\n")
}

func TestRunCommandDeadline(t *testing.T) {
	_, err := execute(t, "run",
		"--max-items", "100",
		"--think-time", "50ms",
		"--deadline", "60ms",
		"--no-color",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "simulation failed")
}

func TestRunCommandInvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--consumers", "0")
	require.ErrorIs(t, err, pipeline.ErrInvalidConfig)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buffer_size: 3\nmax_items: 9\n"), 0o644))

	out, err := execute(t, "config", "--config", path, "--max-items", "12", "--think-time", "2ms")
	require.NoError(t, err)

	// File value kept, flag values override.
	require.Contains(t, out, "buffer_size: 3\n")
	require.Contains(t, out, "max_items: 12\n")
	require.Contains(t, out, "think_time: 2ms\n")
	require.Contains(t, out, "num_producers: 2\n")
}

func TestLoggerOptions(t *testing.T) {
	opts := &options{logLevel: "debug", logFormat: "json"}
	log, err := opts.logger(&bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, log.IsLevelEnabled(logrus.DebugLevel))

	opts.logFormat = "xml"
	_, err = opts.logger(&bytes.Buffer{})
	require.Error(t, err)

	opts = &options{logLevel: "loud", logFormat: "text"}
	_, err = opts.logger(&bytes.Buffer{})
	require.Error(t, err)
}
