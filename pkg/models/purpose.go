package models

import (
	"time"

	"github.com/google/uuid"
)

// Purpose is a consolidation purpose (doel): the FRBR-addressed reason a new
// act expression supersedes the prior consolidated text. Draft procedures
// carry no effective date.
type Purpose struct {
	UUID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	EnvironmentUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_purposes_env_other" json:"environmentUuid"`

	PurposeType   string     `gorm:"type:varchar(50);not null" json:"purposeType"`
	EffectiveDate *time.Time `gorm:"type:date" json:"effectiveDate,omitempty"`

	WorkProvinceID string `gorm:"type:varchar(32);not null" json:"workProvinceId"`
	WorkDate       string `gorm:"type:varchar(32);not null" json:"workDate"`
	WorkOther      string `gorm:"type:varchar(128);not null;uniqueIndex:uix_purposes_env_other" json:"workOther"`

	CreatedAt time.Time `json:"createdAt"`
}

// PurposeTypeConsolidation marks a regular consolidation purpose.
const PurposeTypeConsolidation = "CONSOLIDATION"

// TableName specifies the table name.
func (Purpose) TableName() string {
	return "publication_purposes"
}
