package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Announcement is the notification (kennisgeving) published about a draft act
// package. It hangs off the act package because the package carries all the
// FRBR context the announcement refers to.
type Announcement struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	ActPackageUUID uuid.UUID   `gorm:"type:uuid;not null" json:"actPackageUuid"`
	ActPackage     *ActPackage `gorm:"foreignKey:ActPackageUUID;references:UUID" json:"-"`

	PublicationUUID uuid.UUID    `gorm:"type:uuid;not null" json:"publicationUuid"`
	Publication     *Publication `gorm:"foreignKey:PublicationUUID;references:UUID" json:"-"`

	Metadata   JSON `gorm:"type:json" json:"metadata,omitempty"`
	Procedural JSON `gorm:"type:json" json:"procedural,omitempty"`
	Content    JSON `gorm:"type:json" json:"content,omitempty"`

	AnnouncementDate *time.Time `gorm:"type:date" json:"announcementDate,omitempty"`
	IsLocked         bool       `gorm:"not null;default:false" json:"isLocked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Announcement) TableName() string {
	return "publication_announcements"
}

// GetAnnouncementByUUID retrieves an announcement with its publication and
// environment preloaded.
func GetAnnouncementByUUID(db *gorm.DB, announcementUUID uuid.UUID) (*Announcement, error) {
	var announcement Announcement
	err := db.
		Preload("Publication").
		Preload("Publication.Environment").
		Preload("Publication.Act").
		Preload("ActPackage").
		Where("uuid = ?", announcementUUID).
		First(&announcement).Error
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}
