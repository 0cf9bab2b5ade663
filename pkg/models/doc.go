package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Doc is the FRBR Work of an announcement document (kennisgeving), the
// notification text published alongside an act package.
type Doc struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	EnvironmentUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_docs_env_other" json:"environmentUuid"`
	DocumentType    string    `gorm:"type:varchar(50);not null" json:"documentType"`

	WorkProvinceID string `gorm:"type:varchar(32);not null" json:"workProvinceId"`
	WorkCountry    string `gorm:"type:varchar(2);not null" json:"workCountry"`
	WorkDate       string `gorm:"type:varchar(32);not null" json:"workDate"`
	WorkOther      string `gorm:"type:varchar(128);not null;uniqueIndex:uix_docs_env_other" json:"workOther"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Doc) TableName() string {
	return "publication_docs"
}

// DocVersion is an FRBR Expression of an announcement document. Append-only.
type DocVersion struct {
	UUID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`
	DocUUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uix_doc_versions" json:"docUuid"`
	Doc     *Doc      `gorm:"foreignKey:DocUUID;references:UUID" json:"-"`

	ExpressionLanguage string `gorm:"type:varchar(3);not null" json:"expressionLanguage"`
	ExpressionDate     string `gorm:"type:varchar(32);not null" json:"expressionDate"`
	ExpressionVersion  int    `gorm:"not null;uniqueIndex:uix_doc_versions" json:"expressionVersion"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (DocVersion) TableName() string {
	return "publication_doc_versions"
}

// CountDocsForEnvironment returns the number of announcement works allocated
// within an environment for a document type.
func CountDocsForEnvironment(db *gorm.DB, environmentUUID uuid.UUID, documentType string) (int64, error) {
	var count int64
	err := db.Model(&Doc{}).
		Where("environment_uuid = ? AND document_type = ?", environmentUUID, documentType).
		Count(&count).Error
	return count, err
}
