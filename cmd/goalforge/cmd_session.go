package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/goal-forge/internal/app/session"
	"github.com/PabloGalante/goal-forge/internal/domain"
)

func (c *cli) loginCmd() *cobra.Command {
	var token, email, name string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a token issued by the Goal Forge server",
		Long: `Sign in with a token issued by the Goal Forge server. While signed in,
goals are read from and written to the server. Goals already on this
device stay here until you run 'goalforge import'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var user *domain.User
			if email != "" || name != "" {
				claims, err := session.ParseClaims(token)
				if err != nil {
					return err
				}
				user = &domain.User{ID: claims.Subject, Email: email, Name: name}
			}
			if err := c.app.sessions.Login(cmd.Context(), token, user); err != nil {
				return err
			}

			local, err := c.app.device.ListGoals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			if len(local) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(),
					"%d goal(s) are stored on this device. Run 'goalforge import' to move them to your account.\n", len(local))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token (JWT)")
	cmd.Flags().StringVar(&email, "email", "", "override the email shown by whoami")
	cmd.Flags().StringVar(&name, "name", "", "override the name shown by whoami")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; goals on this device become active again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.app.sessions.Current(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !sess.Authenticated() {
				fmt.Fprintln(w, "Not signed in. Goals are stored on this device.")
				return nil
			}

			if sess.User != nil {
				fmt.Fprintf(w, "Signed in as %s", displayName(sess.User))
				if sess.User.Email != "" && sess.User.Email != displayName(sess.User) {
					fmt.Fprintf(w, " <%s>", sess.User.Email)
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, "Signed in.")
			}

			if claims, err := session.ParseClaims(sess.Token); err == nil && claims.ExpiresAt != nil {
				if claims.Expired(c.now()) {
					fmt.Fprintln(w, "Token expired at", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
				} else {
					fmt.Fprintln(w, "Token expires at", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}
}

func displayName(u *domain.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

func (c *cli) importCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Move goals stored on this device into your account",
		Long: `Move goals stored on this device into your account.

  --mode append  adds them next to the goals already in the account
  --mode reset   replaces the account's goals with them

The device copy is removed once the server accepts the import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.goals.ImportLocal(cmd.Context(), domain.ImportMode(mode))
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals on this device to import.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d goal(s).\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(domain.ImportAppend), "append or reset")
	return cmd
}
