package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const ContentTypeProblem = "application/problem+json"

var ErrNoValidationErrors = errors.New("problem details carry no validation errors")

// FieldErrors holds the messages a server reported under one identifier.
type FieldErrors struct {
	Field    string
	Messages []string
}

// ProblemDetails is a structured error body. Errors keeps the identifiers in
// the order the server emitted them.
type ProblemDetails struct {
	Type     string
	Title    string
	Status   int
	Detail   string
	Instance string
	Errors   []FieldErrors
}

// ParseProblemDetails decodes a validation problem body. It fails unless the
// body is an object whose "errors" member is an object mapping identifiers to
// a string or an array of strings.
func ParseProblemDetails(data []byte) (*ProblemDetails, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	problem := &ProblemDetails{}
	sawErrors := false
	for _, m := range members {
		// descriptive members are best effort; only "errors" decides validity
		switch strings.ToLower(m.key) {
		case "type":
			_ = json.Unmarshal(m.value, &problem.Type)
		case "title":
			_ = json.Unmarshal(m.value, &problem.Title)
		case "status":
			_ = json.Unmarshal(m.value, &problem.Status)
		case "detail":
			_ = json.Unmarshal(m.value, &problem.Detail)
		case "instance":
			_ = json.Unmarshal(m.value, &problem.Instance)
		case "errors":
			fields, err := decodeFieldErrors(m.value)
			if err != nil {
				return nil, fmt.Errorf("problem errors: %w", err)
			}
			sawErrors = true
			problem.Errors = fields
		}
	}

	if !sawErrors {
		return nil, ErrNoValidationErrors
	}
	return problem, nil
}

func decodeFieldErrors(data json.RawMessage) ([]FieldErrors, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	fields := make([]FieldErrors, 0, len(members))
	for _, m := range members {
		messages, err := decodeStringList(m.value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", m.key, err)
		}
		fields = append(fields, FieldErrors{Field: m.key, Messages: messages})
	}
	return fields, nil
}

// Messages flattens every field's messages into one list, in order, dropping
// empty strings.
func (p *ProblemDetails) Messages() []string {
	var messages []string
	for _, field := range p.Errors {
		for _, msg := range field.Messages {
			if msg != "" {
				messages = append(messages, msg)
			}
		}
	}
	return messages
}

func (p ProblemDetails) MarshalJSON() ([]byte, error) {
	var members []member
	add := func(key string, v any) error {
		value, err := json.Marshal(v)
		if err != nil {
			return err
		}
		members = append(members, member{key: key, value: value})
		return nil
	}

	if p.Type != "" {
		if err := add("type", p.Type); err != nil {
			return nil, err
		}
	}
	if err := add("title", p.Title); err != nil {
		return nil, err
	}
	if err := add("status", p.Status); err != nil {
		return nil, err
	}
	if p.Detail != "" {
		if err := add("detail", p.Detail); err != nil {
			return nil, err
		}
	}
	if p.Instance != "" {
		if err := add("instance", p.Instance); err != nil {
			return nil, err
		}
	}

	if p.Errors != nil {
		fields := make([]member, 0, len(p.Errors))
		for _, f := range p.Errors {
			value, err := json.Marshal(f.Messages)
			if err != nil {
				return nil, err
			}
			fields = append(fields, member{key: f.Field, value: value})
		}
		errs, err := encodeObject(fields)
		if err != nil {
			return nil, err
		}
		members = append(members, member{key: "errors", value: errs})
	}

	return encodeObject(members)
}
