package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	auth_http "github.com/maeumssi/maeumssi/internal/modules/auth/interfaces/http"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/httpclient"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/spf13/cobra"
)

func (c *cli) registerCmd() *cobra.Command {
	var req application.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp application.TokenResponse
			if err := c.client().Post(cmd.Context(), "/auth/register", req, &resp); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			printToken(cmd.OutOrStdout(), cmd.ErrOrStderr(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.Nickname, "nickname", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var req application.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password and print the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp application.TokenResponse
			if err := c.client().Post(cmd.Context(), "/auth/login", req, &resp); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			printToken(cmd.OutOrStdout(), cmd.ErrOrStderr(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) guestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Start a guest session and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp application.TokenResponse
			if err := c.client().Post(cmd.Context(), "/auth/guest", nil, &resp); err != nil {
				return fmt.Errorf("guest login: %w", err)
			}
			printToken(cmd.OutOrStdout(), cmd.ErrOrStderr(), resp)
			return nil
		},
	}
}

// printToken writes the bare token to out so it can be captured by a shell.
func printToken(out, errOut io.Writer, resp application.TokenResponse) {
	if resp.User != nil {
		kind := "member"
		if resp.User.IsGuest {
			kind = "guest"
		}
		fmt.Fprintf(errOut, "signed in as %s (%s)\n", resp.User.Nickname, kind)
	}
	fmt.Fprintln(out, resp.Token)
}

// fetchSession resolves the token's session through GET /me. A rejected or
// missing token is an initialized state without a session.
func fetchSession(ctx context.Context, client *httpclient.Client) (session.State, error) {
	var me auth_http.MeResponse
	err := client.Get(ctx, "/me", &me)
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
		return session.State{Initialized: true}, nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("fetch session: %w", err)
	}
	if me.User == nil {
		return session.State{Initialized: true}, nil
	}
	return session.State{
		Session: &session.Session{
			UserID: me.ID,
			Role:   string(me.Role),
			Guest:  me.Guest,
		},
		Initialized: true,
	}, nil
}
