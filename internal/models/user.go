package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxTokenBytes is the longest secret bcrypt can hash.
const MaxTokenBytes = 72

// User is an API account. The password hash never leaves the storage layer except through [Credentials].
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	PersonID  *int64    `json:"person_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials pairs a [User] with its stored password hash for login checks.
type Credentials struct {
	User
	PasswordHash string
}

// UserInput is the payload for creating a [User], and for replacing one when Token may be empty.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Token    string `json:"token" validate:"required,min=4"`
	Role     Role   `json:"role" validate:"required,oneof=admin user"`
	PersonID *int64 `json:"person_id" validate:"omitempty,gt=0"`
}

// NormalizeUsername trims and lower-cases a username the way it is stored.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (in *UserInput) normalize() {
	in.Username = NormalizeUsername(in.Username)
	if in.Role == "" {
		in.Role = RoleUser
	}
}

// Validate normalizes the username, defaults the role to user and checks the result.
func (in *UserInput) Validate() error {
	in.normalize()
	var fe fieldErrors
	fe.checkStruct("", in)
	fe.checkTokenBytes(in.Token)
	return fe.err()
}

// checkTokenBytes bounds the token in bytes, so multibyte secrets stay hashable.
func (fe *fieldErrors) checkTokenBytes(token string) {
	if len(token) > MaxTokenBytes {
		fe.add("token", "max", fmt.Sprintf("token must be at most %d bytes", MaxTokenBytes))
	}
}

// ValidateUpdate is [UserInput.Validate] for replacements, where an empty token keeps the current secret.
func (in *UserInput) ValidateUpdate() error {
	in.normalize()
	var fe fieldErrors
	fe.check("username", in.Username, "required,min=3,max=64")
	fe.check("role", string(in.Role), "required,oneof=admin user")
	if in.Token != "" {
		fe.check("token", in.Token, "min=4")
		fe.checkTokenBytes(in.Token)
	}
	if in.PersonID != nil {
		fe.check("person_id", *in.PersonID, "gt=0")
	}
	return fe.err()
}

// LoginInput is the payload of a login attempt.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

func (in *LoginInput) Validate() error {
	in.Username = NormalizeUsername(in.Username)
	return ValidateStruct(in)
}
