package state

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upgrader lifts a state document from one schema version to the next. An
// upgrader may consult the database for data the old schema did not record,
// but must never write.
type Upgrader interface {
	InputSchemaVersion() int
	TargetSchemaVersion() int
	Upgrade(tx *gorm.DB, environmentUUID uuid.UUID, raw json.RawMessage) (json.RawMessage, error)
}

// Factory holds the ordered upgrader chain from the oldest supported schema
// to the current one.
type Factory struct {
	upgraders []Upgrader
}

func NewFactory() *Factory {
	return &Factory{
		upgraders: []Upgrader{
			NewV2Upgrader(),
			NewV3Upgrader(),
		},
	}
}

// Upgraders returns the chain in ascending target-version order.
func (f *Factory) Upgraders() []Upgrader {
	return f.upgraders
}
