package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/training-tracker/internal"
	"github.com/frahmantamala/training-tracker/internal/auth"
	employeeDatamodel "github.com/frahmantamala/training-tracker/internal/core/datamodel/employee"
	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/spf13/cobra"
	"gorm.io/gorm/clause"
)

var resetAdminPassword bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the protected administrator account",
	Long: `Create the protected administrator account configured under training.seed_admin_*.
Running it again leaves the account alone unless --reset-password is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := openDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		created, err := seedAdmin(db, cfg)
		if err != nil {
			log.Fatalf("failed to seed administrator: %v", err)
		}
		if created {
			fmt.Println("Seeded administrator:", cfg.Training.SeedAdminID)
		} else {
			fmt.Println("administrator already exists:", cfg.Training.SeedAdminID)
		}
	},
}

func seedAdmin(db *Database, cfg *internal.Config) (bool, error) {
	hash, err := auth.HashPassword(cfg.Training.SeedAdminPass, cfg.Security.BCryptCost)
	if err != nil {
		return false, err
	}

	admin := employeeDatamodel.Employee{
		ID:           cfg.Training.SeedAdminID,
		Name:         cfg.Training.SeedAdminName,
		Part:         employee.DefaultTag,
		Group:        employee.DefaultTag,
		Role:         employee.RoleAdmin,
		Company:      employee.CompanyPrimary,
		PasswordHash: hash,
	}

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	if resetAdminPassword {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "updated_at"}),
		}
	}

	res := db.Gorm.Clauses(onConflict).Create(&admin)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func init() {
	seedCmd.Flags().BoolVar(&resetAdminPassword, "reset-password", false, "overwrite the administrator password and role")
}
