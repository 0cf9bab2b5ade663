package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is the transient FRBR Work of a draft decision (besluit): the
// instrument that carries a regulation change through the procedure. A new
// bill work is allocated for every publication build, so unlike acts a bill
// normally has exactly one expression.
type Bill struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	EnvironmentUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_bills_env_other" json:"environmentUuid"`
	DocumentType    string    `gorm:"type:varchar(50);not null" json:"documentType"`

	WorkProvinceID string `gorm:"type:varchar(32);not null" json:"workProvinceId"`
	WorkCountry    string `gorm:"type:varchar(2);not null" json:"workCountry"`
	WorkDate       string `gorm:"type:varchar(32);not null" json:"workDate"`
	WorkOther      string `gorm:"type:varchar(128);not null;uniqueIndex:uix_bills_env_other" json:"workOther"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Bill) TableName() string {
	return "publication_bills"
}

// BillVersion is an FRBR Expression of a bill. Append-only.
type BillVersion struct {
	UUID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	BillUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_bill_versions" json:"billUuid"`
	Bill     *Bill     `gorm:"foreignKey:BillUUID;references:UUID" json:"-"`

	ExpressionLanguage string `gorm:"type:varchar(3);not null" json:"expressionLanguage"`
	ExpressionDate     string `gorm:"type:varchar(32);not null" json:"expressionDate"`
	ExpressionVersion  int    `gorm:"not null;uniqueIndex:uix_bill_versions" json:"expressionVersion"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (BillVersion) TableName() string {
	return "publication_bill_versions"
}

// CountBillsForEnvironment returns the number of bill works allocated within
// an environment for a document type. The count seeds the next stable
// work-other suffix on stateful environments.
func CountBillsForEnvironment(db *gorm.DB, environmentUUID uuid.UUID, documentType string) (int64, error) {
	var count int64
	err := db.Model(&Bill{}).
		Where("environment_uuid = ? AND document_type = ?", environmentUUID, documentType).
		Count(&count).Error
	return count, err
}
