package nativemsg

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of Message, for extension authors.
func Schema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Message{})

	schema.ID = "https://github.com/cristianoliveira/tab-recall/native-message.schema.json"
	schema.Title = "tab-recall native message"
	schema.Description = "Envelope exchanged between the browser extension and the tab-recall native messaging host"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
