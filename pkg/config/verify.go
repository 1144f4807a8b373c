package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	return r.Reflect(&Config{})
}

// VerifyAgainstSchema checks config values against the bounds and enums of the reflected schema
func VerifyAgainstSchema(cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return checkValue("", GenerateSchema(), doc)
}

// checkValue walks the config document along the schema properties
func checkValue(path string, schema *jsonschema.Schema, value any) error {
	if schema == nil {
		return nil
	}

	switch v := value.(type) {
	case map[string]any:
		if schema.Properties == nil {
			return nil
		}
		var errs []error
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			child, ok := v[pair.Key]
			if !ok {
				continue
			}
			if err := checkValue(joinPath(path, pair.Key), pair.Value, child); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	case float64:
		if schema.Minimum != "" {
			if limit, err := schema.Minimum.Float64(); err == nil && v < limit {
				return fmt.Errorf("%s: %v is less than minimum %v", path, v, limit)
			}
		}
		if schema.Maximum != "" {
			if limit, err := schema.Maximum.Float64(); err == nil && v > limit {
				return fmt.Errorf("%s: %v is greater than maximum %v", path, v, limit)
			}
		}
	case string:
		if len(schema.Enum) > 0 && !slices.Contains(schema.Enum, any(v)) {
			return fmt.Errorf("%s: %q is not one of %v", path, v, schema.Enum)
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
