package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

const migrationsDir = "migrations"

func main() {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the attendance database schema",
		SilenceUsage: true,
	}
	root.AddCommand(upCmd(), downCmd(), statusCmd(), createCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openMigrator() (*migrate.Migrate, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("prepare migration driver: %w", err)
	}
	return migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					fmt.Println("schema already up to date")
					return nil
				}
				return fmt.Errorf("apply migrations: %w", err)
			}
			fmt.Println("schema migrated")
			return nil
		},
	}
}

func downCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (default: one step)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			if err := m.Steps(-steps); err != nil {
				return fmt.Errorf("roll back %d step(s): %w", steps, err)
			}
			fmt.Printf("rolled back %d step(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openMigrator()
			if err != nil {
				return err
			}
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied yet")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Printf("version %d", version)
			if dirty {
				fmt.Print(" (dirty)")
			}
			fmt.Println()
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Scaffold an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(migrationsDir, 0755); err != nil {
				return fmt.Errorf("ensure migrations directory: %w", err)
			}
			version, err := nextVersion()
			if err != nil {
				return err
			}
			for _, suffix := range []string{"up", "down"} {
				path := fmt.Sprintf("%s/%06d_%s.%s.sql", migrationsDir, version, args[0], suffix)
				if err := os.WriteFile(path, []byte("-- "+suffix+" migration\n"), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Println(path)
			}
			return nil
		},
	}
}

// nextVersion scans the numeric prefixes of existing migration files, so a
// deleted pair never causes a version to be reissued.
func nextVersion() (int, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("read migrations directory: %w", err)
	}
	last := 0
	for _, entry := range entries {
		name := entry.Name()
		i := strings.IndexByte(name, '_')
		if i <= 0 {
			continue
		}
		if v, err := strconv.Atoi(name[:i]); err == nil && v > last {
			last = v
		}
	}
	return last + 1, nil
}
