package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

var errNoPersistence = errors.New("DATABASE_URL is required to remember a login")

type authFunc func(c *backend.Client, ctx context.Context, creds backend.Credentials) (string, error)

func newLoginCmd() *cobra.Command {
	return newAuthCmd("login", "Log in to the backend and remember the access token", "logged in as", (*backend.Client).Login)
}

func newRegisterCmd() *cobra.Command {
	return newAuthCmd("register", "Create a backend account and remember its access token", "registered", (*backend.Client).Register)
}

// newAuthCmd builds a command that exchanges credentials for a token and
// stores it in the persistent session.
func newAuthCmd(use, short, done string, auth authFunc) *cobra.Command {
	var creds backend.Credentials
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := backend.ValidateCredentials(creds); err != nil {
				return err
			}
			ctx := cmd.Context()
			sess, persistent, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()
			if !persistent {
				return errNoPersistence
			}

			base, err := resolveBackend(ctx)
			if err != nil {
				return err
			}
			client := backend.NewClient(base, nil)
			token, err := auth(client, ctx, creds)
			if err != nil {
				return fmt.Errorf("%s: %s", use, backend.Detail(err))
			}
			if err := sess.SignIn(ctx, creds.Email, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s\n", done, creds.Email, client.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	if use == "register" {
		cmd.Flags().StringVar(&creds.FullName, "name", "", "full name")
	}
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, persistent, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()
			if !persistent {
				return errNoPersistence
			}
			return sess.SignOut(ctx)
		},
	}
}
