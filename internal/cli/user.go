package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
	"github.com/Sternrassler/boutique-hotel-client/pkg/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds hotel.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.users.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("login succeeded but the API returned no token")
			}

			user := a.users.User()
			if user == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (profile unavailable: %s)\n", creds.ClientID, a.users.Err())
				return nil
			}
			return renderUser(cmd.OutOrStdout(), a.flags.output, user, token)
		},
	}
	cmd.Flags().StringVar(&creds.ClientID, "client-id", "", "user name")
	cmd.Flags().StringVar(&creds.Secret, "secret", "", "password")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg hotel.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.users.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.flags.output, user, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Registered %s. Sign in with: hotel login --client-id %s --secret ...\n", user.Username, user.Username)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Firstname, "firstname", "", "first name")
	f.StringVar(&reg.Lastname, "lastname", "", "last name")
	f.StringVar(&reg.Email, "email", "", "email")
	f.StringVar(&reg.Username, "username", "", "user name")
	f.StringVar(&reg.Password, "password", "", "password")
	for _, name := range []string{"firstname", "lastname", "email", "username", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.users.FetchCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("%w: run hotel login first", hotel.ErrNotAuthenticated)
			}
			return renderUser(cmd.OutOrStdout(), a.flags.output, user, a.users.Token())
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.users.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func renderUser(w io.Writer, format string, user *hotel.User, token string) error {
	info := session.Inspect(token)
	return render(w, format, user, func(w io.Writer) error {
		fields := [][2]string{
			{"Username", user.Username},
			{"Name", user.Firstname + " " + user.Lastname},
			{"Email", user.Email},
		}
		if !info.ExpiresAt.IsZero() {
			fields = append(fields, [2]string{"Token expires", info.ExpiresAt.Local().Format(time.RFC1123)})
		}
		return writeFields(w, fields)
	})
}
