package models

import "strings"

// System is the top-level organizational grouping containing lines.
type System struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SystemInput is the payload for creating or replacing a [System].
type SystemInput struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (in *SystemInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return ValidateStruct(in)
}

// Line groups media thematically. SystemName is joined from the referenced [System].
type Line struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	SystemID   *int64  `json:"system_id"`
	SystemName *string `json:"system_name"`
}

// LineInput is the payload for creating or replacing a [Line].
type LineInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	SystemID *int64 `json:"system_id" validate:"omitempty,gt=0"`
}

func (in *LineInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return ValidateStruct(in)
}
