package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/fitplan/internal/models"
)

// DecodePlan parses a model response and checks it against schema before
// converting it to a FitnessPlan. Nothing partially populated is returned:
// the result is either a complete plan or a *GenerationError.
func DecodePlan(text string, schema *genai.Schema) (*models.FitnessPlan, error) {
	text = stripFence(text)
	if text == "" {
		return nil, newError(KindEmptyResponse, fmt.Errorf("no response generated"))
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, schemaMismatch("failed to parse model response: %w", err)
	}

	if err := validate(doc, schema, "$"); err != nil {
		return nil, err
	}

	var plan models.FitnessPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, schemaMismatch("failed to decode plan: %w", err)
	}
	return &plan, nil
}

// stripFence removes a surrounding markdown code fence, which some models
// add even when asked for raw JSON.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func validate(v any, s *genai.Schema, path string) error {
	if s == nil {
		return nil
	}
	if v == nil {
		if s.Nullable {
			return nil
		}
		return schemaMismatch("%s: unexpected null", path)
	}

	switch s.Type {
	case genai.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return schemaMismatch("%s: expected object, got %s", path, typeName(v))
		}
		for _, key := range s.Required {
			if _, ok := obj[key]; !ok {
				return schemaMismatch("%s: missing required field %q", path, key)
			}
		}
		for key, prop := range s.Properties {
			val, ok := obj[key]
			if !ok {
				continue
			}
			if err := validate(val, prop, path+"."+key); err != nil {
				return err
			}
		}
	case genai.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return schemaMismatch("%s: expected array, got %s", path, typeName(v))
		}
		for i, item := range arr {
			if err := validate(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case genai.TypeString:
		if _, ok := v.(string); !ok {
			return schemaMismatch("%s: expected string, got %s", path, typeName(v))
		}
	case genai.TypeNumber:
		if _, ok := v.(json.Number); !ok {
			return schemaMismatch("%s: expected number, got %s", path, typeName(v))
		}
	case genai.TypeInteger:
		n, ok := v.(json.Number)
		if !ok {
			return schemaMismatch("%s: expected integer, got %s", path, typeName(v))
		}
		if _, err := n.Int64(); err != nil {
			return schemaMismatch("%s: expected integer, got %s", path, n)
		}
	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return schemaMismatch("%s: expected boolean, got %s", path, typeName(v))
		}
	}
	return nil
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// encodePlan renders a plan the way a remote model would return it.
func encodePlan(plan *models.FitnessPlan) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(plan); err != nil {
		return "", err
	}
	return buf.String(), nil
}
