package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Schema describes the config file. The engine tick is derived from tick_hz, so editors can
// ignore engine.tick_seconds.
func Schema() *jsonschema.Schema {
	// several packages name their section Config
	r := &jsonschema.Reflector{FullyQualifyTypeNames: true}
	return r.Reflect(&Config{})
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	out, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "cannot render config schema")
	}
	return out, nil
}
