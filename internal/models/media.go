package models

import (
	"fmt"
	"strings"
	"time"
)

// Media is a single recorded publication. People is never nil.
type Media struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Platform    Platform          `json:"platform"`
	URL         string            `json:"url"`
	PublishedAt string            `json:"published_at"`
	LineID      *int64            `json:"line_id"`
	SystemID    *int64            `json:"system_id"`
	UpdatedAt   time.Time         `json:"updated_at"`
	People      []MediaPersonLink `json:"people"`
}

// MediaPersonLink connects a [Media] item to a [Person] with a role.
// PersonName is filled in on reads.
type MediaPersonLink struct {
	PersonID   int64    `json:"person_id" validate:"required,gt=0"`
	Role       LinkRole `json:"role" validate:"required,oneof=responsavel participante"`
	PersonName string   `json:"person_name,omitempty" validate:"-"`
}

// MediaInput is the payload for creating or replacing a [Media] item.
// A missing people list means no links.
type MediaInput struct {
	Title       string            `json:"title" validate:"required,max=300"`
	Description *string           `json:"description" validate:"omitempty,max=5000"`
	Platform    Platform          `json:"platform" validate:"required,oneof=vimeo youtube"`
	URL         string            `json:"url" validate:"required,http_url,max=2048"`
	PublishedAt string            `json:"published_at" validate:"required,datetime=2006-01-02"`
	LineID      *int64            `json:"line_id" validate:"omitempty,gt=0"`
	SystemID    *int64            `json:"system_id" validate:"omitempty,gt=0"`
	People      []MediaPersonLink `json:"people" validate:"dive"`
}

func (in *MediaInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = trimmedOrNil(in.Description)
	if in.People == nil {
		in.People = []MediaPersonLink{}
	}

	var fe fieldErrors
	fe.checkStruct("", in)
	checkDuplicateLinks(&fe, in.People)
	return fe.err()
}

// MediaPatch is the payload for a partial update of a [Media] item.
//
// People replaces the whole link set when present; an empty list clears it.
type MediaPatch struct {
	Title       Field[string]            `json:"title"`
	Description Field[string]            `json:"description"`
	Platform    Field[Platform]          `json:"platform"`
	URL         Field[string]            `json:"url"`
	PublishedAt Field[string]            `json:"published_at"`
	LineID      Field[int64]             `json:"line_id"`
	SystemID    Field[int64]             `json:"system_id"`
	People      Field[[]MediaPersonLink] `json:"people"`
}

func (p *MediaPatch) Validate() error {
	var fe fieldErrors

	required := func(name string, f *Field[string], tag string) {
		if !f.Set {
			return
		}
		if f.Null {
			fe.add(name, "required", name+" is required")
			return
		}
		f.Value = strings.TrimSpace(f.Value)
		fe.check(name, f.Value, "required,"+tag)
	}
	required("title", &p.Title, "max=300")
	required("url", &p.URL, "http_url,max=2048")
	required("published_at", &p.PublishedAt, "datetime=2006-01-02")

	if p.Platform.Set {
		if p.Platform.Null {
			fe.add("platform", "required", "platform is required")
		} else {
			fe.check("platform", string(p.Platform.Value), "required,oneof=vimeo youtube")
		}
	}

	if p.Description.Set && !p.Description.Null {
		p.Description.Value = strings.TrimSpace(p.Description.Value)
		if p.Description.Value == "" {
			p.Description.Null = true
		} else {
			fe.check("description", p.Description.Value, "max=5000")
		}
	}

	if p.LineID.Set && !p.LineID.Null {
		fe.check("line_id", p.LineID.Value, "gt=0")
	}
	if p.SystemID.Set && !p.SystemID.Null {
		fe.check("system_id", p.SystemID.Value, "gt=0")
	}

	if p.People.Set {
		if p.People.Null {
			fe.add("people", "required", "people must be a list; send [] to remove every link")
		}
		for i := range p.People.Value {
			fe.checkStruct(fmt.Sprintf("people[%d]", i), &p.People.Value[i])
		}
		checkDuplicateLinks(&fe, p.People.Value)
	}

	return fe.err()
}

// Empty reports whether the patch carries no members.
func (p *MediaPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Platform.Set && !p.URL.Set &&
		!p.PublishedAt.Set && !p.LineID.Set && !p.SystemID.Set && !p.People.Set
}

// checkDuplicateLinks rejects the same (person, role) pair twice in one payload.
func checkDuplicateLinks(fe *fieldErrors, links []MediaPersonLink) {
	type key struct {
		id   int64
		role LinkRole
	}
	seen := make(map[key]bool, len(links))
	for i, l := range links {
		k := key{l.PersonID, l.Role}
		if seen[k] {
			fe.add(fmt.Sprintf("people[%d]", i), "unique", "person and role pair is listed more than once")
		}
		seen[k] = true
	}
}

// MediaFilter holds the optional filters of media listings and reports; present filters are AND-ed.
type MediaFilter struct {
	Platform Platform `json:"platform,omitempty" validate:"omitempty,oneof=vimeo youtube"`
	PersonID *int64   `json:"person_id,omitempty" validate:"omitempty,gt=0"`
	LineID   *int64   `json:"line_id,omitempty" validate:"omitempty,gt=0"`
	SystemID *int64   `json:"system_id,omitempty" validate:"omitempty,gt=0"`
	DateFrom string   `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string   `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (f *MediaFilter) Validate() error {
	return ValidateStruct(f)
}
