package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/logger"
)

// migrateLogger routes golang-migrate's progress output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	migrationDir := flag.String("path", "migrations", "Path to migration files")
	verbose := flag.Bool("v", false, "Log every applied migration step")
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+*migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", *migrationDir).Msg("Failed to initialize migrations")
	}
	defer m.Close()
	m.Log = migrateLogger{log: log, verbose: *verbose}

	switch cmd := args[0]; cmd {
	case "up":
		check(log, cmd, m.Up())
		log.Info().Msg("Migrated up")
	case "down":
		// Without a count only the latest migration is rolled back.
		steps := 1
		if len(args) > 1 {
			steps = positiveArg(log, args[1], "step count")
		}
		check(log, cmd, m.Steps(-steps))
		log.Info().Int("steps", steps).Msg("Migrated down")
	case "reset":
		check(log, cmd, m.Down())
		log.Info().Msg("All migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migration applied yet")
			return
		}
		check(log, cmd, err)
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current version")
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires a version argument")
		}
		v := positiveArg(log, args[1], "version")
		check(log, cmd, m.Force(v))
		log.Info().Int("version", v).Msg("Forced version")
	default:
		printUsage()
		os.Exit(2)
	}
}

// check treats ErrNoChange as success and exits on any other error.
func check(log zerolog.Logger, cmd string, err error) {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return
	}
	log.Fatal().Err(err).Str("command", cmd).Msg("Migration failed")
}

func positiveArg(log zerolog.Logger, raw, name string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Fatal().Str("value", raw).Msgf("Invalid %s", name)
	}
	return n
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands: up, down [n], reset, version, force <version>")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
