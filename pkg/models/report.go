package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActPackageReport is one acknowledgement file the national platform returned
// for an act package. Append-only; a filename is stored at most once per
// package, re-uploads are counted as duplicates and skipped.
type ActPackageReport struct {
	UUID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"uuid"`
	ActPackageUUID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uix_act_reports_filename" json:"actPackageUuid"`
	ActPackage     *ActPackage `gorm:"foreignKey:ActPackageUUID;references:UUID" json:"-"`

	ReportStatus ReportStatus `gorm:"type:varchar(64);not null" json:"reportStatus"`

	Filename       string `gorm:"type:varchar(255);not null;uniqueIndex:uix_act_reports_filename" json:"filename"`
	SourceDocument string `gorm:"type:text" json:"-"`

	MainOutcome   string `gorm:"type:varchar(255);not null" json:"mainOutcome"`
	SubDeliveryID string `gorm:"type:varchar(80);not null" json:"subDeliveryId"`
	SubProgress   string `gorm:"type:varchar(100)" json:"subProgress"`
	SubOutcome    string `gorm:"type:varchar(100)" json:"subOutcome"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (ActPackageReport) TableName() string {
	return "publication_act_package_reports"
}

// AnnouncementPackageReport mirrors ActPackageReport for announcement
// packages.
type AnnouncementPackageReport struct {
	UUID                    uuid.UUID            `gorm:"type:uuid;primaryKey" json:"uuid"`
	AnnouncementPackageUUID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uix_ann_reports_filename" json:"announcementPackageUuid"`
	AnnouncementPackage     *AnnouncementPackage `gorm:"foreignKey:AnnouncementPackageUUID;references:UUID" json:"-"`

	ReportStatus ReportStatus `gorm:"type:varchar(64);not null" json:"reportStatus"`

	Filename       string `gorm:"type:varchar(255);not null;uniqueIndex:uix_ann_reports_filename" json:"filename"`
	SourceDocument string `gorm:"type:text" json:"-"`

	MainOutcome   string `gorm:"type:varchar(255);not null" json:"mainOutcome"`
	SubDeliveryID string `gorm:"type:varchar(80);not null" json:"subDeliveryId"`
	SubProgress   string `gorm:"type:varchar(100)" json:"subProgress"`
	SubOutcome    string `gorm:"type:varchar(100)" json:"subOutcome"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (AnnouncementPackageReport) TableName() string {
	return "publication_announcement_package_reports"
}

// CountActReportsByFilename returns how many reports with this filename exist
// for the package. Used for the per-file duplicate skip.
func CountActReportsByFilename(db *gorm.DB, packageUUID uuid.UUID, filename string) (int64, error) {
	var count int64
	err := db.Model(&ActPackageReport{}).
		Where("act_package_uuid = ? AND filename = ?", packageUUID, filename).
		Count(&count).Error
	return count, err
}

// CountAnnouncementReportsByFilename is the announcement-side duplicate check.
func CountAnnouncementReportsByFilename(db *gorm.DB, packageUUID uuid.UUID, filename string) (int64, error) {
	var count int64
	err := db.Model(&AnnouncementPackageReport{}).
		Where("announcement_package_uuid = ? AND filename = ?", packageUUID, filename).
		Count(&count).Error
	return count, err
}

// ListActReports returns the reports of an act package, oldest first.
func ListActReports(db *gorm.DB, packageUUID uuid.UUID) ([]ActPackageReport, error) {
	var reports []ActPackageReport
	err := db.Where("act_package_uuid = ?", packageUUID).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}

// ListAnnouncementReports returns the reports of an announcement package,
// oldest first.
func ListAnnouncementReports(db *gorm.DB, packageUUID uuid.UUID) ([]AnnouncementPackageReport, error) {
	var reports []AnnouncementPackageReport
	err := db.Where("announcement_package_uuid = ?", packageUUID).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}

// CountActReportsForPackage returns the number of stored reports for an act
// package.
func CountActReportsForPackage(db *gorm.DB, packageUUID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&ActPackageReport{}).
		Where("act_package_uuid = ?", packageUUID).
		Count(&count).Error
	return count, err
}
