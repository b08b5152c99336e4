package models

import (
	"strings"
	"time"
)

// Person is someone who takes part in publications.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// PersonInput is the payload for creating or replacing a [Person].
type PersonInput struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Email *string `json:"email" validate:"omitempty,email,max=320"`
}

// Validate trims the name, maps a blank email to none and checks the result.
func (in *PersonInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = trimmedOrNil(in.Email)
	return ValidateStruct(in)
}

// PersonPatch is the payload for a partial update of a [Person].
type PersonPatch struct {
	Name  Field[string] `json:"name"`
	Email Field[string] `json:"email"`
}

// Validate checks the present members. A blank email clears it, like null.
func (p *PersonPatch) Validate() error {
	var fe fieldErrors
	if p.Name.Set {
		if p.Name.Null {
			fe.add("name", "required", "name is required")
		} else {
			p.Name.Value = strings.TrimSpace(p.Name.Value)
			fe.check("name", p.Name.Value, "required,max=200")
		}
	}
	if p.Email.Set && !p.Email.Null {
		p.Email.Value = strings.TrimSpace(p.Email.Value)
		if p.Email.Value == "" {
			p.Email.Null = true
		} else {
			fe.check("email", p.Email.Value, "email,max=320")
		}
	}
	return fe.err()
}

// Empty reports whether the patch carries no members.
func (p *PersonPatch) Empty() bool {
	return !p.Name.Set && !p.Email.Set
}
