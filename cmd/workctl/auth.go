package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/pkg/token"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <phone> <password>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "register <name> <phone> <password>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Register(cmd.Context(), args[0], args[1], args[2], domain.UserRole(role))
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s as %s\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleWorker), "account role: worker or employer")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			user := a.session.Current()
			fmt.Printf("%s (%s)\n", user.Name, user.Role)
			fmt.Printf("  phone:  %s\n", user.Phone)
			fmt.Printf("  rating: %.1f (%d reviews)\n", user.RatingAvg, user.RatingCount)

			sess, err := a.store.Load(cmd.Context())
			if err == nil && sess.Valid() {
				if exp, expErr := token.ExpiresAt(sess.AccessToken); expErr == nil {
					fmt.Printf("  access token expires %s\n", exp.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
}
