package models

import "strconv"

// Member is the authenticated end user's profile record.
type Member struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	BirthDate       string `json:"birthDate,omitempty"` // YYYY-MM-DD
	Email           string `json:"email"`
	Handle          string `json:"handle"`
	Gender          string `json:"gender,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Key returns the member ID as a string, the form used in cache keys and paths.
func (m *Member) Key() string {
	if m == nil {
		return ""
	}
	return strconv.FormatInt(m.ID, 10)
}

// Credentials are exchanged for a bearer token at login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration creates a new member account.
type Registration struct {
	Name      string `json:"name" validate:"required,max=80"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Handle    string `json:"handle" validate:"required,handle"`
	BirthDate string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender    string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
}

// MemberUpdate carries the editable profile fields. Nil fields are left unchanged by the backend.
type MemberUpdate struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	BirthDate       *string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Handle          *string `json:"handle,omitempty" validate:"omitempty,handle"`
	Gender          *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
}

// Empty reports whether the update changes nothing.
func (u MemberUpdate) Empty() bool {
	return u.Name == nil && u.BirthDate == nil && u.Handle == nil &&
		u.Gender == nil && u.Bio == nil && u.ProfileImageURL == nil
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	Token string `json:"token"`
}
