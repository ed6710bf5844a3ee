package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nsqlite/nsqlitekit"
	"github.com/nsqlite/nsqlitekit/internal/bench/config"
	"github.com/nsqlite/nsqlitekit/internal/log"
	"github.com/nsqlite/nsqlitekit/internal/styled"
	"github.com/nsqlite/nsqlitekit/internal/util/numutil"
	"github.com/nsqlite/nsqlitekit/internal/version"
)

const nsBench = "bench"

// Run executes the benchmarks for mattn/go-sqlite3 and nsqlitekit and
// prints the results.
func Run(ctx context.Context) error {
	conf := config.MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.BenchVersion())
	fmt.Println(version.EngineLine(nsqlitekit.LibVersion()))

	logWriter, level := io.Discard, slog.LevelInfo
	if conf.Verbose {
		logWriter, level = os.Stderr, slog.LevelDebug
	}

	b := runner{
		conf:      conf,
		out:       os.Stdout,
		barOut:    os.Stderr,
		logWriter: logWriter,
		level:     level,
		logger:    log.NewLoggerWithLevel(logWriter, level),
	}
	return b.run(ctx)
}

type runner struct {
	conf      config.Config
	out       io.Writer
	barOut    io.Writer
	logWriter io.Writer
	level     slog.Level
	logger    log.Logger
}

func (b *runner) run(ctx context.Context) error {
	dir := b.conf.Directory
	if dir == "" {
		tmpDir, err := os.MkdirTemp("", "nsqlitekitbench_*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)
		dir = tmpDir
	}

	openers := []func(dir string) (target, error){
		openMattn,
		func(dir string) (target, error) { return openKit(dir, b.logWriter, b.level) },
	}

	for _, open := range openers {
		if err := b.runTarget(ctx, dir, open); err != nil {
			return err
		}
	}

	return nil
}

func (b *runner) runTarget(ctx context.Context, dir string, open func(dir string) (target, error)) error {
	t, err := open(dir)
	if err != nil {
		return fmt.Errorf("error opening db: %w", err)
	}
	defer t.Close()

	fmt.Fprintf(b.out, "\n--- Benchmarks for %s ---\n", t.Name())
	results, err := runBenchmark(ctx, t, b.conf, b.barOut)
	if err != nil {
		return fmt.Errorf("error benchmarking %s: %w", t.Name(), err)
	}

	for _, r := range results {
		b.logger.DebugNs(nsBench, "benchmark finished", log.KV{
			"target":   t.Name(),
			"name":     r.Name,
			"duration": r.Duration.String(),
		})
	}
	printResults(b.out, results)
	return nil
}

func printResults(w io.Writer, results []benchmarkResult) {
	tw := styled.NewTableWriter()
	tw.AppendHeader(table.Row{"Name", "Reads", "Writes", "Bytes", "Duration", "Rows/s"})

	for _, r := range results {
		bytesCell := "-"
		if r.TotalBytes > 0 {
			bytesCell = numutil.Bytes(r.TotalBytes)
		}
		tw.AppendRow(table.Row{
			r.Name,
			numutil.IntWithCommas(r.TotalReads),
			numutil.IntWithCommas(r.TotalWrites),
			bytesCell,
			r.Duration.Round(1000),
			numutil.PerSecond(int(r.TotalReads+r.TotalWrites), r.Duration.Nanoseconds()),
		})
	}

	fmt.Fprintln(w, styled.Render(tw))
}
