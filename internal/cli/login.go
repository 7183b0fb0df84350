package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

type LoginOptions struct {
	Email    string
	Password string
}

func NewLoginCommand() *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; falls back to an anonymous identity on failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			sess := a.sessions().SignIn(cmd.Context(), opts.Email, opts.Password)
			if sess == nil {
				return errors.New("sign-in failed")
			}
			if sess.Anonymous {
				cmd.Printf("signed in anonymously as %s\n", sess.UserID)
			} else {
				cmd.Printf("signed in as %s\n", sess.UserID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password")

	return cmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			a.sessions().SignOut(cmd.Context())
			cmd.Println("signed out")
			return nil
		},
	}
}
