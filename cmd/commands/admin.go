package commands

import (
	"github.com/spf13/cobra"

	"github.com/suteetoe/krist-shop/cmd/output"
	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/database"
	"github.com/suteetoe/krist-shop/pkg/validation"
)

var (
	adminIdentifier string
	adminPassword   string
	adminFirstName  string
	adminLastName   string
)

// createAdminCmd seeds an administrator account
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account that can sign in to the admin API.

Examples:
  krist-shop create-admin --identifier admin@example.com --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.AddUserInput{
			FirstName:  adminFirstName,
			LastName:   adminLastName,
			Identifier: adminIdentifier,
			Password:   adminPassword,
			Role:       model.RoleAdmin,
		}
		if err := validation.New().Validate(in); err != nil {
			output.Error("%v", err)
			return err
		}

		_, db, err := bootstrap()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close(db)

		users := service.NewUserService(repository.NewUserRepository(db))
		user, err := users.Add(cmd.Context(), in)
		if err != nil {
			output.Error("Could not create admin: %v", err)
			return err
		}
		output.Success("Admin %s created", user.Identifier())
		output.Muted("id: %s", user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminIdentifier, "identifier", "", "Email or phone number used to sign in")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Account password")
	createAdminCmd.Flags().StringVar(&adminFirstName, "first-name", "Admin", "First name")
	createAdminCmd.Flags().StringVar(&adminLastName, "last-name", "Admin", "Last name")
	_ = createAdminCmd.MarkFlagRequired("identifier")
	_ = createAdminCmd.MarkFlagRequired("password")
}
