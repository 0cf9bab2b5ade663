package state

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveAct is the current-schema shape of an act in force.
type ActiveAct = ActiveActV2

// ActiveState is schema version 3, the version the rest of the system works
// with: purposes, active acts and active announcements.
type ActiveState struct {
	Purposes      map[string]Purpose      `json:"Purposes"`
	Acts          map[string]ActiveAct    `json:"Acts"`
	Announcements map[string]Announcement `json:"Announcements"`
}

// NewInitialState returns the empty snapshot a freshly provisioned stateful
// environment starts from.
func NewInitialState() *ActiveState {
	return &ActiveState{
		Purposes:      map[string]Purpose{},
		Acts:          map[string]ActiveAct{},
		Announcements: map[string]Announcement{},
	}
}

// GetAct returns the active act under a document/procedure key, or nil.
func (s *ActiveState) GetAct(documentType string, procedureType string) *ActiveAct {
	act, ok := s.Acts[ActKey(documentType, procedureType)]
	if !ok {
		return nil
	}
	return &act
}

// AddPurpose records a consolidation purpose, keyed by its work identifier.
func (s *ActiveState) AddPurpose(purpose Purpose) {
	s.Purposes[purpose.Work()] = purpose
}

// AddPublication replaces the active act under its document/procedure key.
func (s *ActiveState) AddPublication(act ActiveAct) {
	s.Acts[ActKey(act.DocumentType, act.ProcedureType)] = act
}

// AddAnnouncement replaces the active announcement under its key.
func (s *ActiveState) AddAnnouncement(announcement Announcement) {
	s.Announcements[ActKey(announcement.DocumentType, announcement.ProcedureType)] = announcement
}

// Clone returns an independent deep copy of the state.
func (s *ActiveState) Clone() (*ActiveState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cloning state: %w", err)
	}
	var clone ActiveState
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("cloning state: %w", err)
	}
	if clone.Purposes == nil {
		clone.Purposes = map[string]Purpose{}
	}
	if clone.Acts == nil {
		clone.Acts = map[string]ActiveAct{}
	}
	if clone.Announcements == nil {
		clone.Announcements = map[string]Announcement{}
	}
	return &clone, nil
}

// V3Upgrader lifts a V2 snapshot to V3 by adding the announcements section.
// Pure; nothing to re-derive.
type V3Upgrader struct{}

func NewV3Upgrader() *V3Upgrader {
	return &V3Upgrader{}
}

func (u *V3Upgrader) InputSchemaVersion() int  { return 2 }
func (u *V3Upgrader) TargetSchemaVersion() int { return 3 }

func (u *V3Upgrader) Upgrade(tx *gorm.DB, environmentUUID uuid.UUID, raw json.RawMessage) (json.RawMessage, error) {
	var old StateV2
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decoding v2 state: %w", err)
	}

	upgraded := ActiveState{
		Purposes:      old.Purposes,
		Acts:          old.Acts,
		Announcements: map[string]Announcement{},
	}
	return json.Marshal(upgraded)
}
