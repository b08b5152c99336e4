// Package models defines domain entities, request inputs and persistence interfaces for the midias catalog.
//
// The package contains three categories of types:
//
// 1. Entities: rows as returned to API callers
//   - [Person] : someone who takes part in a publication
//   - [System] : top-level organizational grouping
//   - [Line] : grouping of media, optionally nested under a [System]
//   - [Media] : a published video with its [MediaPersonLink] set
//   - [User] : an API account, optionally tied to a [Person]
//
// 2. Inputs: request payloads validated before they reach storage
//   - [PersonInput], [LineInput], [SystemInput], [MediaInput], [UserInput] : create and full replace
//   - [PersonPatch], [MediaPatch] : partial updates built from [Field] values that record presence
//   - [MediaFilter] : AND-ed list and report filters
//
// 3. Interfaces: [Repository] describes the CRUD surface shared by the storage layer.
//
// Validation uses go-playground/validator and reports failures as [shared.ErrValidation] errors
// whose details are a list of [FieldError] values keyed by JSON field name.
package models
