// Package state models the environment state chain: the versioned JSON
// snapshot of the consolidated body of regulation an environment has in
// force. Snapshots are stored as an envelope {Schema_Version, Data} and
// upgraded in memory, version by version, when loaded. A stored snapshot is
// never rewritten; every package build derives the next one explicitly.
package state

import (
	"encoding/json"
	"fmt"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// CurrentSchemaVersion is the schema version new snapshots are written at.
const CurrentSchemaVersion = 3

// Envelope wraps a schema-versioned state document for storage.
type Envelope struct {
	SchemaVersion int             `json:"Schema_Version"`
	Data          json.RawMessage `json:"Data"`
}

// ActKey is the map key an active act or announcement is stored under.
func ActKey(documentType string, procedureType string) string {
	return fmt.Sprintf("%s-%s", documentType, procedureType)
}

// Marshal serializes a current-version state into a storable envelope.
func Marshal(s *ActiveState) (models.JSON, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling state data: %w", err)
	}
	envelope := Envelope{
		SchemaVersion: CurrentSchemaVersion,
		Data:          data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshaling state envelope: %w", err)
	}
	return models.JSON(raw), nil
}
