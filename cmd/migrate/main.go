package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/pkg/migrate"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for -dir migrations
	_ "modernc.org/sqlite"             // SQLite driver
)

func main() {
	var (
		dbDriver       = flag.String("driver", "sqlite", "Database driver (sqlite, postgres)")
		dbDSN          = flag.String("dsn", "", "Database connection string or SQLite file path")
		migrationDir   = flag.String("dir", "", "Migration directory (default: built-in sample store migrations)")
		migrationTable = flag.String("table", "schema_migrations", "Migration table name")
		command        = flag.String("command", "up", "Migration command: up, down, to, version, status")
		targetVersion  = flag.String("target", "", "Target version for down/to commands")
		debug          = flag.Bool("debug", false, "Enable debug logging")
		helpFlag       = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dbDSN == "" {
		fmt.Fprintf(os.Stderr, "Error: -dsn flag is required\n")
		showHelp()
		os.Exit(1)
	}

	sqlDriver := *dbDriver
	switch *dbDriver {
	case "sqlite":
	case "postgres":
		sqlDriver = "pgx"
		if *migrationDir == "" {
			log.Fatal("the built-in migrations target SQLite; pass -dir for PostgreSQL")
		}
	default:
		log.Fatalf("unsupported driver %q", *dbDriver)
	}

	db, err := sql.Open(sqlDriver, *dbDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	var migrator *migrate.Migrator
	if *migrationDir == "" {
		migrator = store.SQLiteMigrator(db, log.GetSugaredLogger())
	} else {
		provider := migrate.NewFSProvider(os.DirFS(*migrationDir), ".", *migrationTable, *dbDriver)
		migrator = migrate.NewMigrator(db, provider, log.GetSugaredLogger())
	}

	switch *command {
	case "up":
		err = migrator.MigrateUp()
	case "down":
		err = migrator.MigrateDown(parseTarget(*targetVersion, *command))
	case "to":
		err = migrator.MigrateTo(parseTarget(*targetVersion, *command))
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			log.Fatalf("failed to get current version: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		return
	case "status":
		err = showStatus(migrator)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("migration command failed: %v", err)
	}

	log.Infow("migration completed", "command", *command, "dsn", *dbDSN)
}

func parseTarget(target, command string) int {
	if target == "" {
		log.Fatalf("-target flag is required for %s command", command)
	}
	v, err := strconv.Atoi(target)
	if err != nil {
		log.Fatalf("invalid target version: %v", err)
	}
	return v
}

func showStatus(migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Printf("Current version: %d\n", currentVersion)
	fmt.Printf("Pending migrations: %d\n", len(pending))

	if len(pending) > 0 {
		fmt.Println("\nPending migrations:")
		for _, migration := range pending {
			fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
		}
	}

	return nil
}

func showHelp() {
	fmt.Println("Sample store migration tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  migrate [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -driver string     Database driver (default: sqlite)")
	fmt.Println("  -dsn string        Database connection string (required)")
	fmt.Println("  -dir string        Migration directory (default: built-in SQLite migrations)")
	fmt.Println("  -table string      Migration table name (default: schema_migrations)")
	fmt.Println("  -command string    Migration command (default: up)")
	fmt.Println("  -target string     Target version for down/to commands")
	fmt.Println("  -debug             Enable debug logging")
	fmt.Println("  -help              Show this help message")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                 Apply all pending migrations")
	fmt.Println("  down               Roll back to target version")
	fmt.Println("  to                 Migrate to specific version (up or down)")
	fmt.Println("  version            Show current migration version")
	fmt.Println("  status             Show migration status")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  migrate -dsn samples.db -command status")
	fmt.Println("  migrate -dsn samples.db -command down -target 1")
}
