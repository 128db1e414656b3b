package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studykit/internal/database"
	"github.com/at-ishikawa/studykit/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.Migrate(cmd.Context(), db, schemas.Migrations); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}
