package session

import (
	"context"
	"fmt"
	"strings"
)

// Role identifies what kind of account is signed in.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// ParseRole converts user input into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleRider:
		return RoleRider, nil
	case RoleDriver:
		return RoleDriver, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case "":
		return RoleRider, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
	}
}

// KVStore is the key/value persistence used to survive restarts.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// User is the account bound to a session.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role,omitempty"`
	Photo  string `json:"photo,omitempty"`
}

// State is a snapshot of the authentication state.
type State struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user,omitempty"`
	Role            Role  `json:"userType"`
	IsAdmin         bool  `json:"isAdmin"`
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	Success bool `json:"success"`
	IsAdmin bool `json:"isAdmin"`
}

// RegisterInput carries the profile fields supplied at sign-up.
type RegisterInput struct {
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	NameEn *string `json:"nameEn,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Photo  *string `json:"photo,omitempty"`
}

func (p UserPatch) apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.NameEn != nil {
		u.NameEn = *p.NameEn
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	return u
}

// Credentials is the fixed admin account.
type Credentials struct {
	Email    string
	Password string
}

// DefaultAdminCredentials matches the seeded admin account.
func DefaultAdminCredentials() Credentials {
	return Credentials{Email: "admin@transfers.com", Password: "admin123"}
}

// DefaultMockUser is the profile every non-admin login resolves to.
func DefaultMockUser() User {
	return User{
		ID:     "TV12345",
		Name:   "أحمد محمد",
		NameEn: "Ahmed Mohammed",
		Email:  "ahmed@example.com",
		Phone:  "+966501234567",
		Photo:  "https://i.pravatar.cc/150?u=TV12345",
	}
}

func adminUser(email string) User {
	return User{
		ID:     "admin_1",
		Name:   "مدير النظام",
		NameEn: "System Admin",
		Email:  email,
		Phone:  "+966500000000",
		Role:   string(RoleAdmin),
	}
}

// Telemetry records session events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
