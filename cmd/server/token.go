package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/middleware"
)

var tokenEmail string

// tokenCmd 为已有用户签发访问令牌，供运维和联调使用
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for an existing user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenEmail == "" {
			return errors.New("--email is required")
		}
		return withDB(func(cfg *config.Config, db *gorm.DB) error {
			user, err := logic.NewUserLogic(db).GetUserByEmail(cmd.Context(), tokenEmail)
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken(cfg.Auth, user.Id, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		})
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email of the user")
}
