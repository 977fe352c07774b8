package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/training-tracker/internal/employee"
	"github.com/spf13/cobra"
)

var importCompany string

var importCmd = &cobra.Command{
	Use:   "import [spreadsheet]",
	Short: "Import employees from an .xlsx or .xls file",
	Long: `Upsert employees from a spreadsheet with ID and Name columns (Part, Group and
Company are optional). Existing employees keep their role and password.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0])
	},
}

func runImport(ctx context.Context, path string) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer deps.DB.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := employee.ParseSpreadsheet(f, filepath.Base(path))
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := deps.Services.Employee.Import(ctx, rows, importCompany)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d, skipped %d, rejected %d\n", result.Imported, result.Skipped, len(result.Errors))
	for _, rowErr := range result.Errors {
		fmt.Printf("  line %d (%s): %s\n", rowErr.Line, rowErr.ID, rowErr.Message)
	}
	return nil
}

func init() {
	importCmd.Flags().StringVar(&importCompany, "company", employee.CompanyPrimary, "company for rows without a Company column")
	rootCmd.AddCommand(importCmd)
}
