package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/shared"
)

// validatable is a pointer to an input type whose Validate normalizes and checks it.
type validatable[I any] interface {
	*I
	models.Validatable
}

// decodeInput reads a JSON body into a new I and validates it.
func decodeInput[I any, PI validatable[I]](r *http.Request) (*I, error) {
	in := new(I)
	if err := decodeJSON(r, in); err != nil {
		return nil, err
	}
	if err := PI(in).Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// decodeJSON reads exactly one JSON value from the request body. Unknown members are ignored.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return shared.Invalid("malformed JSON body", "unexpected data after the JSON value")
		}
		return nil
	}

	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return err
	case errors.Is(err, io.EOF):
		return shared.Invalid("request body is required", nil)
	case errors.As(err, &syntaxErr):
		return shared.Invalid("malformed JSON body", fmt.Sprintf("syntax error at offset %d", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return shared.Invalid("request validation failed", []models.FieldError{{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be %s", field, describeType(typeErr.Type.Kind().String())),
		}})
	case errors.Is(err, io.ErrUnexpectedEOF):
		return shared.Invalid("malformed JSON body", "unexpected end of input")
	}
	return shared.Invalid("malformed JSON body", err.Error())
}

func describeType(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "a number"
	case kind == "string":
		return "a string"
	case kind == "slice", kind == "array":
		return "a list"
	case kind == "struct", kind == "map":
		return "an object"
	case kind == "bool":
		return "a boolean"
	}
	return "of another type"
}

// pathID parses the {id} segment of the route.
func pathID(r *http.Request) (int64, error) {
	raw := server.Param(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Invalid("request validation failed", []models.FieldError{{
			Field:   "id",
			Rule:    "gt",
			Message: "id must be a positive integer",
		}})
	}
	return id, nil
}

// queryErrors collects problems with query parameters.
type queryErrors []models.FieldError

func (q *queryErrors) id(values url.Values, name string) *int64 {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*q = append(*q, models.FieldError{Field: name, Rule: "int", Message: name + " must be an integer"})
		return nil
	}
	return &id
}

func (q *queryErrors) flag(values url.Values, name string) bool {
	raw := strings.ToLower(strings.TrimSpace(values.Get(name)))
	switch raw {
	case "", "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	*q = append(*q, models.FieldError{Field: name, Rule: "bool", Message: name + " must be a boolean"})
	return false
}

func (q queryErrors) err() error {
	if len(q) == 0 {
		return nil
	}
	return shared.Invalid("request validation failed", []models.FieldError(q))
}

// parseFilter reads the media filters from a query string and validates them.
func parseFilter(values url.Values, q *queryErrors) (models.MediaFilter, error) {
	f := models.MediaFilter{
		Platform: models.Platform(strings.TrimSpace(values.Get("platform"))),
		PersonID: q.id(values, "person_id"),
		LineID:   q.id(values, "line_id"),
		SystemID: q.id(values, "system_id"),
		DateFrom: strings.TrimSpace(values.Get("date_from")),
		DateTo:   strings.TrimSpace(values.Get("date_to")),
	}
	if err := q.err(); err != nil {
		return f, err
	}
	return f, f.Validate()
}
