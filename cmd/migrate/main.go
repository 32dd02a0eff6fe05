// Command migrate applies the embedded Counsel schema migrations.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/counsel/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "COUNSEL_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	opts, fs, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	if !opts.up && !opts.down && !opts.version && !opts.forced && opts.steps == 0 {
		fmt.Fprintln(out, "usage: migrate [-dsn URL] -up|-down|-steps N|-version|-force N")
		fs.PrintDefaults()
		return nil
	}

	dsn, err := resolveDSN(opts.dsn)
	if err != nil {
		return err
	}

	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	return apply(m, opts, out)
}

func parseFlags(args []string, out io.Writer) (*options, *flag.FlagSet, error) {
	var opts options

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.dsn, "dsn", "", "database URL (default: $"+envDSN+", then config.toml and COUNSEL_DB_* variables)")
	fs.BoolVar(&opts.up, "up", false, "apply all pending migrations")
	fs.BoolVar(&opts.down, "down", false, "revert all migrations")
	fs.IntVar(&opts.steps, "steps", 0, "apply N migrations (negative reverts)")
	fs.BoolVar(&opts.version, "version", false, "print the current schema version")
	fs.IntVar(&opts.force, "force", -1, "force the recorded version without migrating")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forced = true
		}
	})
	return &opts, fs, nil
}

// resolveDSN prefers the flag, then COUNSEL_DB_DSN, then the service's own
// database configuration.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}
	db, err := config.LoadDatabase()
	if err != nil {
		return "", fmt.Errorf("load database config: %w", err)
	}
	return db.URL(), nil
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func apply(m *migrate.Migrate, opts *options, out io.Writer) error {
	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Fprintf(out, "version: %d, dirty: %v\n", v, dirty)
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version %d: %w", opts.force, err)
		}
		fmt.Fprintf(out, "forced to version %d\n", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		fmt.Fprintln(out, "schema up to date")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		fmt.Fprintln(out, "schema reverted")
	default:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("migrate %d steps: %w", opts.steps, err)
		}
		fmt.Fprintf(out, "applied %d migration steps\n", opts.steps)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
