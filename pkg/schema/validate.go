package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidateArgs checks args against a raw JSON Schema declaration.
// An empty or nil declaration validates everything.
//
// The returned error is a *ValidationError or *AggregateError for schema
// violations, or a plain error when the declaration itself cannot be
// compiled.
func ValidateArgs(declared map[string]any, args map[string]any) error {
	if len(declared) == 0 {
		// No schema = no validation
		return nil
	}

	compiled, err := compile(declared)
	if err != nil {
		return err
	}

	// Round-trip through JSON so Go-native values (int, custom types)
	// compare like the decoded wire values the schema describes.
	var value any = map[string]any{}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode args for validation: %w", err)
		}
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("decode args for validation: %w", err)
		}
	}

	if err := compiled.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return translate(err)
	}
	return nil
}

func compile(declared map[string]any) (*openapi3.Schema, error) {
	data, err := json.Marshal(declared)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	var s openapi3.Schema
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &s, nil
}

// translate flattens kin-openapi's error types into this package's.
func translate(err error) error {
	switch e := err.(type) {
	case openapi3.MultiError:
		out := &AggregateError{}
		for _, sub := range e {
			out.Errors = append(out.Errors, translate(sub))
		}
		if len(out.Errors) == 1 {
			return out.Errors[0]
		}
		return out
	case *openapi3.SchemaError:
		return &ValidationError{
			Key:    strings.Join(e.JSONPointer(), "."),
			Reason: e.Reason,
			Value:  e.Value,
		}
	default:
		return &ValidationError{Reason: err.Error()}
	}
}
