package api

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed complaint.schema.json
var complaintSchemaSource string

var (
	complaintSchemaOnce sync.Once
	complaintSchema     *jsonschema.Schema
	complaintSchemaErr  error
)

// validateComplaintPayload checks a raw complaint record against the
// embedded schema. Only active in strict-decode mode; the lenient path
// tolerates drifted server builds.
func validateComplaintPayload(raw []byte) error {
	complaintSchemaOnce.Do(func() {
		complaintSchema, complaintSchemaErr = jsonschema.CompileString("complaint.schema.json", complaintSchemaSource)
	})
	if complaintSchemaErr != nil {
		return complaintSchemaErr
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	return complaintSchema.Validate(value)
}
