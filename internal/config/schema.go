package config

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// JSONSchema renders the schema of the service configuration for editor
// tooling. Duration fields are declared as Go duration strings, which is
// how the YAML loader reads them.
func JSONSchema() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration string such as 2s or 500ms",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "backtestd-config"
	schema.Description = "Service configuration schema"

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
