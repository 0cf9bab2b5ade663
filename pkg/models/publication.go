package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publication binds a policy module to an act within an environment, under a
// DRAFT or FINAL procedure. It is the anchor publication versions hang off.
type Publication struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	ModuleID int    `gorm:"not null" json:"moduleId"`
	Title    string `gorm:"type:varchar(500)" json:"title"`

	DocumentType  string        `gorm:"type:varchar(50);not null" json:"documentType"`
	ProcedureType ProcedureType `gorm:"type:varchar(50);not null" json:"procedureType"`

	EnvironmentUUID uuid.UUID    `gorm:"type:uuid;not null" json:"environmentUuid"`
	Environment     *Environment `gorm:"foreignKey:EnvironmentUUID;references:UUID" json:"-"`

	ActUUID uuid.UUID `gorm:"type:uuid;not null" json:"actUuid"`
	Act     *Act      `gorm:"foreignKey:ActUUID;references:UUID" json:"-"`

	IsLocked bool `gorm:"not null;default:false" json:"isLocked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Publication) TableName() string {
	return "publications"
}

// PublicationVersion is one editable draft of a publication: the bill text,
// metadata and procedural dates that a package build freezes into a delivery.
type PublicationVersion struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	PublicationUUID uuid.UUID    `gorm:"type:uuid;not null;index:idx_pub_versions_pub" json:"publicationUuid"`
	Publication     *Publication `gorm:"foreignKey:PublicationUUID;references:UUID" json:"-"`

	BillMetadata JSON `gorm:"type:json" json:"billMetadata,omitempty"`
	BillCompact  JSON `gorm:"type:json" json:"billCompact,omitempty"`
	Procedural   JSON `gorm:"type:json" json:"procedural,omitempty"`

	EffectiveDate    *time.Time `gorm:"type:date" json:"effectiveDate,omitempty"`
	AnnouncementDate *time.Time `gorm:"type:date" json:"announcementDate,omitempty"`

	Status   VersionStatus `gorm:"type:varchar(64);not null" json:"status"`
	IsLocked bool          `gorm:"not null;default:false" json:"isLocked"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (PublicationVersion) TableName() string {
	return "publication_versions"
}

// PublicationVersionAttachment links an uploaded file to a publication
// version. The small integer ID doubles as the attachment number inside the
// rendered publication.
type PublicationVersionAttachment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PublicationVersionUUID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uix_version_file" json:"publicationVersionUuid"`
	FileUUID               uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uix_version_file" json:"fileUuid"`
	File                   *StorageFile `gorm:"foreignKey:FileUUID;references:UUID" json:"-"`

	Filename string `gorm:"type:varchar(255);not null" json:"filename"`
	Title    string `gorm:"type:varchar(255);not null" json:"title"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (PublicationVersionAttachment) TableName() string {
	return "publication_version_attachments"
}

// GetPublicationVersionByUUID retrieves a publication version with its
// publication, environment and act preloaded.
func GetPublicationVersionByUUID(db *gorm.DB, versionUUID uuid.UUID) (*PublicationVersion, error) {
	var version PublicationVersion
	err := db.
		Preload("Publication").
		Preload("Publication.Environment").
		Preload("Publication.Act").
		Where("uuid = ?", versionUUID).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetAttachments returns the attachments of a version in upload order.
func (v *PublicationVersion) GetAttachments(db *gorm.DB) ([]PublicationVersionAttachment, error) {
	var attachments []PublicationVersionAttachment
	err := db.Preload("File").
		Where("publication_version_uuid = ?", v.UUID).
		Order("id ASC").
		Find(&attachments).Error
	return attachments, err
}
