package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/nsqlitekit/internal/version"
)

// Config represents the configuration for nsqlitekitbench.
type Config struct {
	Directory string `arg:"--directory,env:NSQLITEKIT_BENCH_DIRECTORY" help:"Directory for the benchmark databases, a temporary one is used and removed when empty"`
	Rows      int    `arg:"--rows,env:NSQLITEKIT_BENCH_ROWS" help:"Number of users inserted by the Insert benchmark" default:"100000"`
	Reads     int    `arg:"--reads,env:NSQLITEKIT_BENCH_READS" help:"How many times the Read benchmark iterates all users" default:"10"`
	Blobs     int    `arg:"--blobs,env:NSQLITEKIT_BENCH_BLOBS" help:"Number of blobs written and read back by the Blobs benchmark" default:"1000"`
	BlobSize  int    `arg:"--blob-size,env:NSQLITEKIT_BENCH_BLOB_SIZE" help:"Size in bytes of every blob" default:"10000"`
	Verbose   bool   `arg:"-v,--verbose,env:NSQLITEKIT_BENCH_VERBOSE" help:"Write debug logs to stderr" default:"false"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.BenchVersion())
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{Program: "nsqlitekitbench"},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	return cfg
}

// Validate checks that every count is usable.
func (cfg Config) Validate() error {
	if err := validatePositive("rows", cfg.Rows); err != nil {
		return err
	}
	if err := validatePositive("reads", cfg.Reads); err != nil {
		return err
	}
	if err := validatePositive("blobs", cfg.Blobs); err != nil {
		return err
	}
	return validateBlobSize(cfg.BlobSize)
}

// validatePositive validates that n is greater than zero.
func validatePositive(name string, n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid %s, must be greater than zero", name)
	}
	return nil
}

// validateBlobSize validates that size fits in a single SQLite value.
func validateBlobSize(size int) error {
	const maxLength = 1_000_000_000
	if size <= 0 || size > maxLength {
		return errors.New("invalid blob size, valid values are 1-1000000000")
	}
	return nil
}
