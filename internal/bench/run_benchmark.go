package bench

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nsqlite/nsqlitekit/internal/bench/benchbar"
	"github.com/nsqlite/nsqlitekit/internal/bench/config"
	"github.com/nsqlite/nsqlitekit/internal/util/numutil"
)

// benchmarkResult stores the outcome of a benchmark.
type benchmarkResult struct {
	Name        string
	Duration    time.Duration
	TotalReads  uint64
	TotalWrites uint64
	TotalBytes  int64
}

type benchmark func(t target, conf config.Config, barOut io.Writer) (benchmarkResult, error)

// runBenchmark recreates the schema and executes all benchmarks in order.
// Read works on the users written by Insert.
func runBenchmark(ctx context.Context, t target, conf config.Config, barOut io.Writer) ([]benchmarkResult, error) {
	if err := recreateSchema(t); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	benchs := []benchmark{
		runBenchmarkInsert,
		runBenchmarkRead,
		runBenchmarkBlobs,
	}

	var results []benchmarkResult
	for _, bench := range benchs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := bench(t, conf, barOut)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// runBenchmarkInsert inserts X users in a single transaction with one
// prepared statement.
func runBenchmarkInsert(t target, conf config.Config, barOut io.Writer) (benchmarkResult, error) {
	start := time.Now()
	bar := benchbar.NewBar(
		barOut, fmt.Sprintf("Inserting %s users", numutil.IntWithCommas(conf.Rows)), conf.Rows,
	)

	totalWrites, err := t.InsertUsers(conf.Rows, bar.Inc)
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error when inserting: %w", err)
	}
	bar.Finish()

	return benchmarkResult{
		Name:        "Insert",
		Duration:    time.Since(start),
		TotalWrites: totalWrites,
	}, nil
}

// runBenchmarkRead iterates all users Y times.
func runBenchmarkRead(t target, conf config.Config, barOut io.Writer) (benchmarkResult, error) {
	start := time.Now()
	var totalReads uint64
	bar := benchbar.NewBar(
		barOut, fmt.Sprintf("Reading all users %s times", numutil.IntWithCommas(conf.Reads)), conf.Reads,
	)

	for range conf.Reads {
		reads, err := t.ReadUsers()
		if err != nil {
			return benchmarkResult{}, fmt.Errorf("error when querying: %w", err)
		}
		totalReads += reads
		bar.Inc()
	}
	bar.Finish()

	return benchmarkResult{
		Name:       "Read",
		Duration:   time.Since(start),
		TotalReads: totalReads,
	}, nil
}

// runBenchmarkBlobs inserts X blobs of Y bytes and reads them back,
// checking every byte.
func runBenchmarkBlobs(t target, conf config.Config, barOut io.Writer) (benchmarkResult, error) {
	payloads := make([][]byte, conf.Blobs)
	for i := range payloads {
		payloads[i] = newPayload(conf.BlobSize)
	}

	start := time.Now()
	bar := benchbar.NewBar(
		barOut, fmt.Sprintf("Writing %s blobs of %s", numutil.IntWithCommas(conf.Blobs), numutil.Bytes(int64(conf.BlobSize))), conf.Blobs,
	)

	totalWrites, err := t.InsertBlobs(payloads, bar.Inc)
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error when inserting blobs: %w", err)
	}
	bar.Finish()

	var totalBytes int64
	totalReads, err := t.ReadBlobs(func(id int64, data []byte) error {
		if id < 1 || id > int64(len(payloads)) {
			return fmt.Errorf("unexpected blob id %d", id)
		}
		if !bytes.Equal(payloads[id-1], data) {
			return fmt.Errorf("blob %d does not match what was written", id)
		}
		totalBytes += int64(len(data))
		return nil
	})
	if err != nil {
		return benchmarkResult{}, fmt.Errorf("error when reading blobs: %w", err)
	}

	return benchmarkResult{
		Name:        "Blobs",
		Duration:    time.Since(start),
		TotalReads:  totalReads,
		TotalWrites: totalWrites,
		TotalBytes:  totalBytes,
	}, nil
}

// newPayload returns size bytes built from a random UUID.
func newPayload(size int) []byte {
	id := uuid.New()
	payload := bytes.Repeat(id[:], size/len(id)+1)
	return payload[:size]
}
