package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Me fetches the profile of the session member.
func (b *Backend) Me(ctx context.Context) (*models.Member, error) {
	var m models.Member
	if err := b.FetchJSON(ctx, "/member/me", FetchOpts{Auth: true}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MemberByHandle looks up a public profile.
func (b *Backend) MemberByHandle(ctx context.Context, handle string) (*models.Member, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: handle", shared.ErrMissingArgument)
	}

	var m models.Member
	if err := b.FetchJSON(ctx, "/member/handle/"+url.PathEscape(handle), FetchOpts{}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember sends the changed fields and returns the canonical record the backend stored.
func (b *Backend) UpdateMember(ctx context.Context, upd models.MemberUpdate) (*models.Member, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}
	if err := shared.ValidateStruct(upd); err != nil {
		return nil, err
	}

	var m models.Member
	if err := b.FetchJSON(ctx, "/member/me", FetchOpts{Auth: true, Method: http.MethodPut, Body: upd}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Register creates an account. It does not sign in.
func (b *Backend) Register(ctx context.Context, reg models.Registration) (*models.Member, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Handle = strings.ToLower(strings.TrimSpace(reg.Handle))
	if err := shared.ValidateStruct(reg); err != nil {
		return nil, err
	}

	var m models.Member
	if err := b.FetchJSON(ctx, "/member/register", FetchOpts{Method: http.MethodPost, Body: reg}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
