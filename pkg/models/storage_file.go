package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StorageFile is a content-addressed binary artifact, typically an uploaded
// GIO/GML attachment referenced by a publication version. The Lookup column
// holds the first ten hex characters of the SHA-256 checksum so that lookups
// stay on a short index while the full checksum guards against collisions.
type StorageFile struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	Lookup   string `gorm:"type:varchar(10);not null;index:idx_storage_files_lookup" json:"lookup"`
	Checksum string `gorm:"type:varchar(64);not null" json:"checksum"`

	Filename    string `gorm:"type:varchar(255);not null" json:"filename"`
	ContentType string `gorm:"type:varchar(100);not null" json:"contentType"`
	Size        int64  `gorm:"not null" json:"size"`
	Binary      []byte `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (StorageFile) TableName() string {
	return "storage_files"
}

// BeforeCreate ensures a UUID is set before creation.
func (f *StorageFile) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	return nil
}

// ChecksumLookup computes the full SHA-256 hex checksum of content and the
// ten-character lookup prefix derived from it.
func ChecksumLookup(content []byte) (checksum string, lookup string) {
	sum := sha256.Sum256(content)
	checksum = hex.EncodeToString(sum[:])
	return checksum, checksum[:10]
}

// FindStorageFileByChecksum returns an existing file with the same content,
// or nil when none is stored yet.
func FindStorageFileByChecksum(db *gorm.DB, checksum string) (*StorageFile, error) {
	var file StorageFile
	err := db.
		Where("lookup = ? AND checksum = ?", checksum[:10], checksum).
		First(&file).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// StoreFile persists content under its checksum, returning the existing row
// when the same content was stored before.
func StoreFile(db *gorm.DB, filename, contentType string, content []byte) (*StorageFile, error) {
	checksum, lookup := ChecksumLookup(content)

	existing, err := FindStorageFileByChecksum(db, checksum)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	file := &StorageFile{
		Lookup:      lookup,
		Checksum:    checksum,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		Binary:      content,
	}
	if err := db.Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// GetStorageFileByUUID returns a stored file by its identifier.
func GetStorageFileByUUID(db *gorm.DB, fileUUID uuid.UUID) (*StorageFile, error) {
	var file StorageFile
	if err := db.First(&file, "uuid = ?", fileUUID).Error; err != nil {
		return nil, err
	}
	return &file, nil
}
