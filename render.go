package main

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"

	"prodcons/internal/pipeline"
)

// progressPrinter prints one line per produced or consumed item.
type progressPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	producer *color.Color
	consumer *color.Color
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{
		out:      out,
		producer: color.New(color.FgCyan),
		consumer: color.New(color.FgGreen),
	}
}

func (p *progressPrinter) Observe(e pipeline.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case pipeline.ItemProduced:
		p.producer.Fprintf(p.out, "Producer %d: Added (%s)\n", e.Worker, e.Item.Label())
	case pipeline.ItemConsumed:
		p.consumer.Fprintf(p.out, "Consumer %d: Got (%s)\n", e.Worker, e.Item.Label())
	}
}

func printHeader(out io.Writer, cfg *pipeline.Config) {
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Producer-Consumer Problem!"))
	fmt.Fprintf(out, "Buffer size: %d, Max items: %d\n\n", cfg.BufferSize, cfg.MaxItems)
}

func renderSummary(out io.Writer, rep *pipeline.Report) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("Simulation completed!"))
	fmt.Fprintf(out, "Items produced: %s\n", count(rep.TotalProduced(), rep.Config.MaxItems))
	fmt.Fprintf(out, "Items consumed: %s\n", count(rep.TotalConsumed(), rep.Config.MaxItems))
	fmt.Fprintf(out, "Peak buffer use: %d/%d\n", rep.HighWater, rep.Config.BufferSize)

	for _, id := range sortedIDs(rep.Produced) {
		fmt.Fprintf(out, "  producer %d: %d\n", id, rep.Produced[id])
	}
	for _, id := range sortedIDs(rep.Consumed) {
		fmt.Fprintf(out, "  consumer %d: %d\n", id, rep.Consumed[id])
	}
}

func count(got, want int) string {
	if got != want {
		return color.RedString("%d of %d", got, want)
	}
	return color.GreenString("%d", got)
}

func sortedIDs(m map[int]int) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
