// Package inputval decodes and validates JSON request bodies for the
// note endpoints. Bodies are decoded through a raw map first so unknown
// properties can be rejected instead of silently dropped.
package inputval

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError describes a single rejected property.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return e.Field + " " + e.Reason }

// Errors is the full set of problems found in one body.
type Errors []FieldError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// CreateNoteInput is the accepted body for creating a note.
type CreateNoteInput struct {
	Title    string
	Content  string
	Tags     []string
	Category string
}

// UpdateNoteInput is the accepted body for updating a note. Nil fields
// were absent from the body and must be left unchanged.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	Tags     *[]string
	Category *string
}

// noteFields is the set of properties a note body may carry.
var noteFields = map[string]struct{}{
	"title":    {},
	"content":  {},
	"tags":     {},
	"category": {},
}

// CreateNote decodes and validates a create-note body. Title and
// content are required non-empty strings; tags and category are
// optional. Any property outside the set is rejected.
func CreateNote(body []byte) (CreateNoteInput, error) {
	raw, errs := decodeObject(body)
	if errs != nil {
		return CreateNoteInput{}, errs
	}

	var in CreateNoteInput
	errs = append(errs, requireString(raw, "title", &in.Title)...)
	errs = append(errs, requireString(raw, "content", &in.Content)...)
	errs = append(errs, optionalStrings(raw, "tags", &in.Tags)...)
	if cat, fe := optionalString(raw, "category"); fe != nil {
		errs = append(errs, *fe)
	} else if cat != nil {
		in.Category = *cat
	}

	if len(errs) > 0 {
		return CreateNoteInput{}, errs
	}
	return in, nil
}

// UpdateNote decodes and validates an update-note body. Every property
// is optional, but a supplied title or content must still be a
// non-empty string. An empty object is valid and updates nothing.
func UpdateNote(body []byte) (UpdateNoteInput, error) {
	raw, errs := decodeObject(body)
	if errs != nil {
		return UpdateNoteInput{}, errs
	}

	var in UpdateNoteInput
	if _, present := raw["title"]; present {
		var s string
		errs = append(errs, requireString(raw, "title", &s)...)
		in.Title = &s
	}
	if _, present := raw["content"]; present {
		var s string
		errs = append(errs, requireString(raw, "content", &s)...)
		in.Content = &s
	}
	if _, present := raw["tags"]; present {
		var tags []string
		errs = append(errs, optionalStrings(raw, "tags", &tags)...)
		in.Tags = &tags
	}
	if cat, fe := optionalString(raw, "category"); fe != nil {
		errs = append(errs, *fe)
	} else if cat != nil {
		in.Category = cat
	}

	if len(errs) > 0 {
		return UpdateNoteInput{}, errs
	}
	return in, nil
}

// decodeObject parses body into a raw property map and rejects unknown
// properties.
func decodeObject(body []byte) (map[string]json.RawMessage, Errors) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, Errors{{Field: "body", Reason: "must be a JSON object"}}
	}

	var errs Errors
	for key := range raw {
		if _, ok := noteFields[key]; !ok {
			errs = append(errs, FieldError{Field: fmt.Sprintf("property %s", key), Reason: "should not exist"})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return raw, nil
}

func requireString(raw map[string]json.RawMessage, field string, dst *string) Errors {
	msg, present := raw[field]
	if !present {
		return Errors{{Field: field, Reason: "should not be empty"}}
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return Errors{{Field: field, Reason: "must be a string"}}
	}
	if strings.TrimSpace(s) == "" {
		return Errors{{Field: field, Reason: "should not be empty"}}
	}
	*dst = s
	return nil
}

func optionalString(raw map[string]json.RawMessage, field string) (*string, *FieldError) {
	msg, present := raw[field]
	if !present {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return nil, &FieldError{Field: field, Reason: "must be a string"}
	}
	return &s, nil
}

func optionalStrings(raw map[string]json.RawMessage, field string, dst *[]string) Errors {
	msg, present := raw[field]
	if !present {
		return nil
	}
	var ss []string
	if err := json.Unmarshal(msg, &ss); err != nil {
		return Errors{{Field: field, Reason: "must be an array of strings"}}
	}
	*dst = ss
	return nil
}
