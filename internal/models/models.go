// package models defines the data model for the media catalog service
package models

import (
	"bytes"
	"context"
	"encoding/json"
)

// Platform is the video host a [Media] item is published on.
type Platform string

const (
	PlatformVimeo   Platform = "vimeo"
	PlatformYouTube Platform = "youtube"
)

// Platforms lists every supported [Platform] in display order.
var Platforms = []Platform{PlatformVimeo, PlatformYouTube}

// LinkRole is the part a person played in a publication.
type LinkRole string

const (
	RoleResponsavel  LinkRole = "responsavel"
	RoleParticipante LinkRole = "participante"
)

// Role is the authorization role of a [User].
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Validatable is implemented by every request input.
//
// Validate normalizes the input in place (trimming, lower-casing) and checks it.
type Validatable interface {
	Validate() error
}

// Repository defines the data access operations shared by every entity.
// Implementations return the reloaded row from Create and Update.
type Repository[T any, I any] interface {
	Create(ctx context.Context, in *I) (*T, error)           // Create inserts a row built from in
	Get(ctx context.Context, id int64) (*T, error)           // Get retrieves a row by its ID
	Update(ctx context.Context, id int64, in *I) (*T, error) // Update replaces every column of the row
	Delete(ctx context.Context, id int64) error              // Delete removes a row by its ID
}

// Lister is implemented by repositories with an unfiltered listing.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Field holds one member of a partial update payload.
//
// Set reports whether the member was present at all, Null whether it was present as JSON null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON is called by encoding/json only for members present in the payload, including nulls.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// Ptr returns nil for a null member and a pointer to the value otherwise.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Of builds a present, non-null [Field].
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null builds a present, null [Field].
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}
