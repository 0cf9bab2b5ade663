package state

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// Loader produces the in-memory ActiveState of an environment from its
// activated snapshot, walking every upgrader whose target version exceeds the
// stored schema version. Loading never writes the upgraded document back.
type Loader struct {
	factory *Factory
	log     hclog.Logger
}

func NewLoader(factory *Factory, log hclog.Logger) *Loader {
	return &Loader{
		factory: factory,
		log:     log.Named("state-loader"),
	}
}

// Load returns the environment's active state at the current schema version,
// or nil when the environment does not maintain state.
func (l *Loader) Load(tx *gorm.DB, environment *models.Environment) (*ActiveState, error) {
	if !environment.HasState {
		return nil, nil
	}

	row, err := environment.GetActivatedState(tx)
	if err != nil {
		return nil, fmt.Errorf("fetching activated state for environment %s: %w", environment.UUID, err)
	}

	var envelope Envelope
	if err := json.Unmarshal(row.State, &envelope); err != nil {
		return nil, fmt.Errorf("decoding state envelope of %s: %w", row.UUID, err)
	}
	if envelope.SchemaVersion < 1 || envelope.SchemaVersion > CurrentSchemaVersion {
		return nil, fmt.Errorf("state %s has unsupported schema version %d", row.UUID, envelope.SchemaVersion)
	}

	data := envelope.Data
	version := envelope.SchemaVersion
	for _, upgrader := range l.factory.Upgraders() {
		if upgrader.TargetSchemaVersion() <= version {
			continue
		}
		l.log.Debug("upgrading state schema",
			"state_uuid", row.UUID,
			"from", version,
			"to", upgrader.TargetSchemaVersion(),
		)
		data, err = upgrader.Upgrade(tx, environment.UUID, data)
		if err != nil {
			return nil, fmt.Errorf("upgrading state %s to schema %d: %w", row.UUID, upgrader.TargetSchemaVersion(), err)
		}
		version = upgrader.TargetSchemaVersion()
	}
	if version != CurrentSchemaVersion {
		return nil, fmt.Errorf("state %s ended at schema %d, expected %d", row.UUID, version, CurrentSchemaVersion)
	}

	var active ActiveState
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, fmt.Errorf("decoding upgraded state of %s: %w", row.UUID, err)
	}
	if active.Purposes == nil {
		active.Purposes = map[string]Purpose{}
	}
	if active.Acts == nil {
		active.Acts = map[string]ActiveAct{}
	}
	if active.Announcements == nil {
		active.Announcements = map[string]Announcement{}
	}
	return &active, nil
}
