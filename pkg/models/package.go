package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackageZip is the content-addressed delivery artifact: the zip handed to
// the national platform. Immutable except for download bookkeeping.
type PackageZip struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	Filename string `gorm:"type:varchar(255);not null" json:"filename"`
	Binary   []byte `gorm:"not null" json:"-"`
	// Checksum is the SHA-256 hex digest over Binary.
	Checksum string `gorm:"type:varchar(64);not null" json:"checksum"`

	LatestDownloadDate *time.Time `json:"latestDownloadDate,omitempty"`
	LatestDownloadBy   string     `gorm:"type:varchar(255)" json:"latestDownloadBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (PackageZip) TableName() string {
	return "publication_package_zips"
}

// MarkDownloaded updates the download bookkeeping fields.
func (z *PackageZip) MarkDownloaded(db *gorm.DB, by string, at time.Time) error {
	z.LatestDownloadDate = &at
	z.LatestDownloadBy = by
	return db.Model(z).Updates(map[string]interface{}{
		"latest_download_date": at,
		"latest_download_by":   by,
	}).Error
}

// ActPackage records one build attempt of an act publication or validation
// delivery. CreatedEnvironmentStateUUID, once set, never changes.
type ActPackage struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	PublicationVersionUUID uuid.UUID           `gorm:"type:uuid;not null;index:idx_act_packages_version" json:"publicationVersionUuid"`
	PublicationVersion     *PublicationVersion `gorm:"foreignKey:PublicationVersionUUID;references:UUID" json:"-"`

	BillVersionUUID *uuid.UUID `gorm:"type:uuid" json:"billVersionUuid,omitempty"`
	ActVersionUUID  *uuid.UUID `gorm:"type:uuid" json:"actVersionUuid,omitempty"`

	ZipUUID uuid.UUID   `gorm:"type:uuid;not null" json:"zipUuid"`
	Zip     *PackageZip `gorm:"foreignKey:ZipUUID;references:UUID" json:"-"`

	PackageType  PackageType  `gorm:"type:varchar(64);not null" json:"packageType"`
	ReportStatus ReportStatus `gorm:"type:varchar(64);not null" json:"reportStatus"`

	// DeliveryID correlates platform acknowledgements back to this package.
	DeliveryID string `gorm:"type:varchar(80);not null;index:idx_act_packages_delivery" json:"deliveryId"`

	UsedEnvironmentStateUUID    *uuid.UUID        `gorm:"type:uuid" json:"usedEnvironmentStateUuid,omitempty"`
	CreatedEnvironmentStateUUID *uuid.UUID        `gorm:"type:uuid" json:"createdEnvironmentStateUuid,omitempty"`
	CreatedEnvironmentState     *EnvironmentState `gorm:"foreignKey:CreatedEnvironmentStateUUID;references:UUID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (ActPackage) TableName() string {
	return "publication_act_packages"
}

// AnnouncementPackage records one build attempt of an announcement delivery.
// Mirrors ActPackage; the owning entity is an Announcement.
type AnnouncementPackage struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	AnnouncementUUID uuid.UUID     `gorm:"type:uuid;not null;index:idx_ann_packages_announcement" json:"announcementUuid"`
	Announcement     *Announcement `gorm:"foreignKey:AnnouncementUUID;references:UUID" json:"-"`

	DocVersionUUID *uuid.UUID `gorm:"type:uuid" json:"docVersionUuid,omitempty"`

	ZipUUID uuid.UUID   `gorm:"type:uuid;not null" json:"zipUuid"`
	Zip     *PackageZip `gorm:"foreignKey:ZipUUID;references:UUID" json:"-"`

	PackageType  PackageType  `gorm:"type:varchar(64);not null" json:"packageType"`
	ReportStatus ReportStatus `gorm:"type:varchar(64);not null" json:"reportStatus"`

	DeliveryID string `gorm:"type:varchar(80);not null;index:idx_ann_packages_delivery" json:"deliveryId"`

	UsedEnvironmentStateUUID    *uuid.UUID        `gorm:"type:uuid" json:"usedEnvironmentStateUuid,omitempty"`
	CreatedEnvironmentStateUUID *uuid.UUID        `gorm:"type:uuid" json:"createdEnvironmentStateUuid,omitempty"`
	CreatedEnvironmentState     *EnvironmentState `gorm:"foreignKey:CreatedEnvironmentStateUUID;references:UUID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (AnnouncementPackage) TableName() string {
	return "publication_announcement_packages"
}

// GetActPackageByUUID retrieves an act package with its full ownership chain
// preloaded (version, publication, environment, act).
func GetActPackageByUUID(db *gorm.DB, packageUUID uuid.UUID) (*ActPackage, error) {
	var pkg ActPackage
	err := db.
		Preload("PublicationVersion").
		Preload("PublicationVersion.Publication").
		Preload("PublicationVersion.Publication.Environment").
		Preload("PublicationVersion.Publication.Act").
		Preload("CreatedEnvironmentState").
		Where("uuid = ?", packageUUID).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetAnnouncementPackageByUUID retrieves an announcement package with its
// ownership chain preloaded.
func GetAnnouncementPackageByUUID(db *gorm.DB, packageUUID uuid.UUID) (*AnnouncementPackage, error) {
	var pkg AnnouncementPackage
	err := db.
		Preload("Announcement").
		Preload("Announcement.Publication").
		Preload("Announcement.Publication.Environment").
		Preload("CreatedEnvironmentState").
		Where("uuid = ?", packageUUID).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetActPackageByActVersion retrieves the package that produced an act
// expression.
func GetActPackageByActVersion(db *gorm.DB, actVersionUUID uuid.UUID) (*ActPackage, error) {
	var pkg ActPackage
	err := db.Where("act_version_uuid = ?", actVersionUUID).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ListActPackagesForVersion returns packages of a publication version, oldest
// first.
func ListActPackagesForVersion(db *gorm.DB, versionUUID uuid.UUID) ([]ActPackage, error) {
	var packages []ActPackage
	err := db.Where("publication_version_uuid = ?", versionUUID).
		Order("created_at ASC").
		Find(&packages).Error
	return packages, err
}

// ListAnnouncementPackagesForAnnouncement returns packages of an announcement,
// oldest first.
func ListAnnouncementPackagesForAnnouncement(db *gorm.DB, announcementUUID uuid.UUID) ([]AnnouncementPackage, error) {
	var packages []AnnouncementPackage
	err := db.Where("announcement_uuid = ?", announcementUUID).
		Order("created_at ASC").
		Find(&packages).Error
	return packages, err
}

// GetPackageZipByUUID retrieves a package zip by its UUID.
func GetPackageZipByUUID(db *gorm.DB, zipUUID uuid.UUID) (*PackageZip, error) {
	var zip PackageZip
	err := db.Where("uuid = ?", zipUUID).First(&zip).Error
	if err != nil {
		return nil, err
	}
	return &zip, nil
}
