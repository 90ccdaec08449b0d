package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
)

var userInput logic.CreateUserInput

// userCmd 用户管理，主要用于创建第一个管理员
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage platform users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Example: `  verifund user create --email admin@verifund.ph --first-name Ana --admin
  verifund user create --email support@verifund.ph --support`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if userInput.Email == "" {
			return errors.New("--email is required")
		}
		return withDB(func(_ *config.Config, db *gorm.DB) error {
			user, err := logic.NewUserLogic(db).CreateUser(cmd.Context(), userInput)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> admin=%t support=%t\n",
				user.Id, user.Email, user.IsAdmin, user.IsSupport)
			return nil
		})
	},
}

func init() {
	flags := userCreateCmd.Flags()
	flags.StringVar(&userInput.Email, "email", "", "Email address")
	flags.StringVar(&userInput.FirstName, "first-name", "", "First name")
	flags.StringVar(&userInput.LastName, "last-name", "", "Last name")
	flags.BoolVar(&userInput.IsAdmin, "admin", false, "Grant administrator role")
	flags.BoolVar(&userInput.IsSupport, "support", false, "Grant support role")

	userCmd.AddCommand(userCreateCmd)
}
