package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newCreateAdminCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if email == "" {
				email = a.cfg.Auth.AdminEmail
			}
			if password == "" {
				password = a.cfg.Auth.AdminPassword
			}
			if email == "" || password == "" {
				return errors.New("admin email and password are required (flags or COFFEE_AUTH.ADMIN_EMAIL / COFFEE_AUTH.ADMIN_PASSWORD)")
			}

			if err := a.connect(); err != nil {
				return err
			}

			user, err := a.services.Auth.EnsureAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			a.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("admin account ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}
