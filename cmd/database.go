package cmd

import (
	"fmt"

	"github.com/frahmantamala/training-tracker/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database bundles the two views of one connection pool: gorm for the
// repositories and sqlx for raw queries.
type Database struct {
	Gorm *gorm.DB
	SQLX *sqlx.DB
}

func (d *Database) Close() error {
	return d.SQLX.Close()
}

// openDatabase connects with the configured driver. postgres goes through
// the pgx stdlib driver; sqlite is the single-file local variant.
func openDatabase(cfg internal.DatabaseConfig) (*Database, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var (
		gdb *gorm.DB
		sx  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case internal.DriverPostgres:
		sx, err = sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: sx.DB}), gormCfg)
		if err != nil {
			_ = sx.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
		}
	case internal.DriverSQLite:
		gdb, err = gorm.Open(sqlite.Open(cfg.Source), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sx = sqlx.NewDb(sqlDB, "sqlite3")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sx.SetMaxOpenConns(cfg.MaxOpenConns)
	sx.SetMaxIdleConns(cfg.MaxIdleConns)
	sx.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sx.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sx.Ping(); err != nil {
		_ = sx.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{Gorm: gdb, SQLX: sx}, nil
}
