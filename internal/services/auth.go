package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Login exchanges credentials for a bearer token. The token is returned, not stored.
func (b *Backend) Login(ctx context.Context, email, password string) (string, error) {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := shared.ValidateStruct(creds); err != nil {
		return "", err
	}

	var resp models.LoginResponse
	if err := b.FetchJSON(ctx, "/member/login", FetchOpts{Method: http.MethodPost, Body: creds}, &resp); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response carried no token", shared.ErrMalformedPayload)
	}
	return resp.Token, nil
}

// VerifyToken asks the backend whether the session token is still valid.
func (b *Backend) VerifyToken(ctx context.Context) error {
	_, err := b.Fetch(ctx, "/auth/verifyToken", FetchOpts{Auth: true})
	return err
}

// RequestPasswordReset asks the backend to email a reset link.
func (b *Backend) RequestPasswordReset(ctx context.Context, email string) error {
	in := struct {
		Email string `validate:"required,email"`
	}{Email: strings.TrimSpace(email)}
	if err := shared.ValidateStruct(in); err != nil {
		return err
	}

	_, err := b.Fetch(ctx, "/member/password/forgot", FetchOpts{
		Method: http.MethodPost,
		Form:   url.Values{"email": {in.Email}},
	})
	return err
}

// ResetPassword sets a new password using the token from the reset email.
func (b *Backend) ResetPassword(ctx context.Context, token, password string) error {
	in := struct {
		Token    string `validate:"required"`
		Password string `validate:"required,min=8,max=72"`
	}{Token: strings.TrimSpace(token), Password: password}
	if err := shared.ValidateStruct(in); err != nil {
		return err
	}

	_, err := b.Fetch(ctx, "/member/password/reset", FetchOpts{
		Method: http.MethodPost,
		Form:   url.Values{"token": {in.Token}, "password": {in.Password}},
	})
	return err
}
