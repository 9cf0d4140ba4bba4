package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

func newRegisterCmd() *cobra.Command {
	var email, password, username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Sessions.Register(cmd.Context(), model.Credentials{
				Email:           email,
				Password:        password,
				ConfirmPassword: password,
				Username:        username,
			})
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(session.AccessToken); err != nil {
				return err
			}
			fmt.Printf("Registered as %s\n", session.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with existing credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Sessions.Login(cmd.Context(), model.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			if err := cfg.SaveToken(session.AccessToken); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", session.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Sign in as a local guest",
		Long:  "Creates a device-local guest identity. Guest progress never syncs to the account service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Sessions.LoginAsGuest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as guest %s\n", session.UserID)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear local session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Sessions.Logout(cmd.Context())
			if err := cfg.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the session from the previous run",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := cfg.LoadToken()
			if err != nil {
				return err
			}
			app.Sessions.SetProbeToken(token)

			session, err := app.Sessions.RestoreSession(cmd.Context())
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Println("No session to restore")
				return nil
			}
			fmt.Printf("Restored session for %s\n", session.UserID)
			return nil
		},
	}
}
