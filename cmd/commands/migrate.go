package commands

import (
	"github.com/spf13/cobra"

	"github.com/suteetoe/krist-shop/cmd/output"
	"github.com/suteetoe/krist-shop/pkg/database"
)

// migrateCmd creates or updates the schema for every model
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close(db)

		if err := migrate(db); err != nil {
			output.Error("Migration failed: %v", err)
			return err
		}
		output.Success("Database schema is up to date")
		return nil
	},
}
