package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Act is the long-lived legal instrument identity: the FRBR Work of a
// consolidated regulation. The Work fields are immutable once created; only
// Title, Metadata and IsActive may change.
type Act struct {
	// Auto increment gives a small identifier used to consolidate
	// geographic information objects with.
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	EnvironmentUUID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uix_acts_env_other" json:"environmentUuid"`
	Environment     *Environment `gorm:"foreignKey:EnvironmentUUID;references:UUID" json:"-"`

	DocumentType  string        `gorm:"type:varchar(50);not null" json:"documentType"`
	ProcedureType ProcedureType `gorm:"type:varchar(50);not null" json:"procedureType"`

	Title    string `gorm:"type:varchar(500)" json:"title"`
	IsActive bool   `gorm:"not null;default:false" json:"isActive"`
	Metadata JSON   `gorm:"type:json" json:"metadata,omitempty"`

	// FRBR Work identifier.
	WorkProvinceID string `gorm:"type:varchar(32);not null" json:"workProvinceId"`
	WorkCountry    string `gorm:"type:varchar(2);not null" json:"workCountry"`
	WorkDate       string `gorm:"type:varchar(32);not null" json:"workDate"`
	WorkOther      string `gorm:"type:varchar(128);not null;uniqueIndex:uix_acts_env_other" json:"workOther"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Act) TableName() string {
	return "publication_acts"
}

// ActVersion is one FRBR Expression of an act, appended 1:1 with each
// successful publication package build. Rows are never mutated after creation.
type ActVersion struct {
	UUID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	ActUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_act_versions" json:"actUuid"`
	Act     *Act      `gorm:"foreignKey:ActUUID;references:UUID" json:"-"`

	ConsolidationPurposeUUID uuid.UUID `gorm:"type:uuid;not null" json:"consolidationPurposeUuid"`

	ExpressionLanguage string `gorm:"type:varchar(3);not null" json:"expressionLanguage"`
	ExpressionDate     string `gorm:"type:varchar(32);not null" json:"expressionDate"`
	ExpressionVersion  int    `gorm:"not null;uniqueIndex:uix_act_versions" json:"expressionVersion"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (ActVersion) TableName() string {
	return "publication_act_versions"
}

// GetActByUUID retrieves an act by its UUID.
func GetActByUUID(db *gorm.DB, actUUID uuid.UUID) (*Act, error) {
	var act Act
	err := db.Where("uuid = ?", actUUID).First(&act).Error
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// GetActByWork retrieves an act by its FRBR work tuple within an environment.
func GetActByWork(db *gorm.DB, environmentUUID uuid.UUID, workProvinceID, workCountry, workDate, workOther string) (*Act, error) {
	var act Act
	err := db.Where(
		"environment_uuid = ? AND work_province_id = ? AND work_country = ? AND work_date = ? AND work_other = ?",
		environmentUUID, workProvinceID, workCountry, workDate, workOther,
	).First(&act).Error
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// GetActVersionByExpression retrieves one expression row of an act.
func GetActVersionByExpression(db *gorm.DB, actUUID uuid.UUID, expressionVersion int) (*ActVersion, error) {
	var version ActVersion
	err := db.Where("act_uuid = ? AND expression_version = ?", actUUID, expressionVersion).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// CountVersions returns the number of expressions recorded for this act.
func (a *Act) CountVersions(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&ActVersion{}).
		Where("act_uuid = ?", a.UUID).
		Count(&count).Error
	return count, err
}

// LatestVersion returns the highest expression version for this act, or nil
// when the act has no expressions yet.
func (a *Act) LatestVersion(db *gorm.DB) (*ActVersion, error) {
	var version ActVersion
	err := db.Where("act_uuid = ?", a.UUID).
		Order("expression_version DESC").
		First(&version).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}
