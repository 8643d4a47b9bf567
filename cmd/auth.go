package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelf/internal/auth"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

type authStatus struct {
	Environment string         `json:"environment"`
	State       string         `json:"state"`
	Member      *models.Member `json:"member,omitempty"`
}

// AuthLogin signs in and stores the token for the configured environment.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	// needed so a login as someone else is refused while signed in
	if err := r.auth.Bootstrap(ctx); err != nil {
		r.logger.Warn("could not validate stored token", "error", err)
	}

	member, err := r.auth.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return r.writePlain("Signed in as @%s (%s)\n", member.Handle, r.session.Env())
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return r.writePlain("Signed out\n")
}

// AuthStatus validates the stored token and prints the resulting state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to validate token: %w", err)
	}

	status := authStatus{
		Environment: string(r.session.Env()),
		State:       r.auth.State().String(),
		Member:      r.auth.Member(),
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	r.writePlain("Environment: %s\n", status.Environment)
	r.writePlain("State:       %s\n", status.State)
	if status.Member != nil {
		r.writePlain("Member:      @%s (%s)\n", status.Member.Handle, status.Member.Email)
	}
	if r.auth.State() == auth.StateAuthenticated {
		if token, err := r.session.Token(ctx); err == nil {
			if exp, ok := session.TokenExpiry(token); ok {
				r.writePlain("Expires:     %s\n", exp)
			}
		}
	}
	return nil
}

// AuthWhoami prints the signed-in member.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(member, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderMember(member, nil))
}

// AuthRegister creates an account. It does not sign in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	member, err := r.public.Register(ctx, models.Registration{
		Name:      cmd.String("name"),
		Email:     cmd.String("email"),
		Password:  cmd.String("password"),
		Handle:    cmd.String("handle"),
		BirthDate: cmd.String("birth-date"),
		Gender:    strings.ToLower(cmd.String("gender")),
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.logger.Info("account created", "member", member.ID, "handle", member.Handle)
	return r.writePlain("Created @%s; sign in with 'shelf auth login'\n", member.Handle)
}

// AuthForgot requests a password reset email.
func (r *Runner) AuthForgot(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	if err := r.public.RequestPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return r.writePlain("If %s has an account, a reset link is on its way\n", email)
}

// AuthReset sets a new password using the token from the reset email.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.public.ResetPassword(ctx, cmd.String("token"), cmd.String("password")); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return r.writePlain("Password updated; sign in with 'shelf auth login'\n")
}
