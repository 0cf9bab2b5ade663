package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Environment is the scope record a publication chain runs against: one per
// target platform tenant (production LVBB, pre-production, stateless test
// targets). Its flags decide which package types may be built and whether the
// environment maintains a consolidated state chain.
type Environment struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Provincial identity stamped into every FRBR identifier and delivery.
	ProvinceID  string `gorm:"type:varchar(32);not null" json:"provinceId"`
	AuthorityID string `gorm:"type:varchar(20);not null" json:"authorityId"`
	SubmitterID string `gorm:"type:varchar(20);not null" json:"submitterId"`

	FrbrCountry  string `gorm:"type:varchar(2);not null" json:"frbrCountry"`
	FrbrLanguage string `gorm:"type:varchar(3);not null" json:"frbrLanguage"`

	IsActive     bool `gorm:"not null;default:true" json:"isActive"`
	HasState     bool `gorm:"not null" json:"hasState"`
	CanValidate  bool `gorm:"not null" json:"canValidate"`
	CanPublicate bool `gorm:"not null" json:"canPublicate"`

	// IsLocked is held for the whole interval between "new state created,
	// awaiting platform confirmation" and "conclusive report received".
	IsLocked bool `gorm:"not null;default:false" json:"isLocked"`

	ActiveStateUUID *uuid.UUID        `gorm:"type:uuid" json:"activeStateUuid,omitempty"`
	ActiveState     *EnvironmentState `gorm:"foreignKey:ActiveStateUUID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Environment) TableName() string {
	return "publication_environments"
}

// EnvironmentState is one immutable snapshot in an environment's consolidated
// state chain. AdjustOnUUID points to the parent snapshot; nil marks the
// initial state. Snapshots are created unactivated by the package builder and
// activated only by report reconciliation on a conclusive success.
type EnvironmentState struct {
	UUID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"uuid"`
	EnvironmentUUID uuid.UUID  `gorm:"type:uuid;not null;index:idx_env_states_env" json:"environmentUuid"`
	AdjustOnUUID    *uuid.UUID `gorm:"type:uuid" json:"adjustOnUuid,omitempty"`

	// State holds the versioned snapshot envelope {schemaVersion, data}.
	State JSON `gorm:"type:json;not null" json:"state"`

	IsActivated       bool       `gorm:"not null;default:false;index:idx_env_states_activated" json:"isActivated"`
	ActivatedDatetime *time.Time `json:"activatedDatetime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (EnvironmentState) TableName() string {
	return "publication_environment_states"
}

// BeforeCreate hook to ensure the UUID is set.
func (s *EnvironmentState) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	return nil
}

// GetEnvironmentByUUID retrieves an environment by its UUID.
func GetEnvironmentByUUID(db *gorm.DB, environmentUUID uuid.UUID) (*Environment, error) {
	var env Environment
	err := db.Where("uuid = ?", environmentUUID).First(&env).Error
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// ListEnvironments returns all environments, oldest first.
func ListEnvironments(db *gorm.DB) ([]Environment, error) {
	var environments []Environment
	err := db.Order("created_at ASC").Find(&environments).Error
	return environments, err
}

// GetEnvironmentForUpdate retrieves an environment inside tx while taking a
// row lock, so concurrent package builds against the same environment
// serialize on the guard check instead of racing to the commit. SQLite has no
// row locks; its single-writer transactions give the same guarantee.
func GetEnvironmentForUpdate(tx *gorm.DB, environmentUUID uuid.UUID) (*Environment, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var env Environment
	err := q.Where("uuid = ?", environmentUUID).First(&env).Error
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// GetActivatedState returns the environment's currently activated state, or
// gorm.ErrRecordNotFound when the chain has never been activated.
func (e *Environment) GetActivatedState(db *gorm.DB) (*EnvironmentState, error) {
	if e.ActiveStateUUID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var state EnvironmentState
	err := db.Where("uuid = ?", *e.ActiveStateUUID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// CountStates returns the number of snapshots in this environment's chain.
func (e *Environment) CountStates(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&EnvironmentState{}).
		Where("environment_uuid = ?", e.UUID).
		Count(&count).Error
	return count, err
}

// Activate marks the state as the activated snapshot of its environment and
// repoints the environment at it. The previously activated snapshot, if any,
// is deactivated in the same call so that at most one state per environment
// ever carries the flag.
func (s *EnvironmentState) Activate(tx *gorm.DB, env *Environment, at time.Time) error {
	if s.EnvironmentUUID != env.UUID {
		return errors.New("state does not belong to environment")
	}

	err := tx.Model(&EnvironmentState{}).
		Where("environment_uuid = ? AND is_activated = ?", env.UUID, true).
		Updates(map[string]interface{}{"is_activated": false}).Error
	if err != nil {
		return fmt.Errorf("deactivating previous state: %w", err)
	}

	s.IsActivated = true
	s.ActivatedDatetime = &at
	if err := tx.Model(s).Updates(map[string]interface{}{
		"is_activated":       true,
		"activated_datetime": at,
	}).Error; err != nil {
		return fmt.Errorf("activating state: %w", err)
	}

	env.ActiveStateUUID = &s.UUID
	return tx.Model(env).Update("active_state_uuid", s.UUID).Error
}
