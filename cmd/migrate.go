package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/training-tracker/internal"
	confirmationDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/confirmation"
	courseDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/course"
	employeeDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/employee"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
		Long: `postgres databases are migrated with the SQL files under db/migrations.
sqlite databases are created from the gorm models.`,
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Database.Driver == internal.DriverSQLite {
		return autoMigrate(cfg)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func autoMigrate(cfg *internal.Config) error {
	if migrateRollback {
		return fmt.Errorf("rollback is only supported for postgres")
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Gorm.AutoMigrate(
		&employeeDatamodel.Employee{},
		&courseDatamodel.Course{},
		&courseDatamodel.AttendanceRecord{},
		&confirmationDatamodel.Confirmation{},
	)
}
