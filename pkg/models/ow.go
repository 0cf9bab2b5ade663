package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IMOWType enumerates the OW object kinds this subsystem materializes from a
// renderer export. The values double as the object-kind segment of an OW_ID.
type IMOWType string

const (
	IMOWGebied         IMOWType = "gebied"
	IMOWGebiedenGroep  IMOWType = "gebiedengroep"
	IMOWAmbtsgebied    IMOWType = "ambtsgebied"
	IMOWRegelingsgebied IMOWType = "regelingsgebied"
	IMOWDivisie        IMOWType = "divisie"
	IMOWDivisietekst   IMOWType = "divisietekst"
	IMOWTekstdeel      IMOWType = "tekstdeel"
)

// OWAssociationType labels the edge kinds between OW objects.
type OWAssociationType string

const (
	OWAssociationGroupArea         OWAssociationType = "GEBIEDENGROEP_GEBIED"
	OWAssociationTekstdeelLocation OWAssociationType = "TEKSTDEEL_LOCATION"
)

// OWObject is one object-law row created per package build: an area, area
// group, administrative area, division, division text or text fragment. Rows
// share a single table discriminated by IMOWType and are never mutated after
// creation.
type OWObject struct {
	UUID uuid.UUID `gorm:"type:uuid;primaryKey" json:"uuid"`

	OWID     string   `gorm:"column:ow_id;type:varchar(255);not null;index:idx_ow_objects_owid" json:"owId"`
	IMOWType IMOWType `gorm:"column:imow_type;type:varchar(64);not null" json:"imowType"`

	PackageUUID uuid.UUID `gorm:"type:uuid;not null;index:idx_ow_objects_package" json:"packageUuid"`

	ProcedureType ProcedureType `gorm:"type:varchar(50);not null" json:"procedureType"`

	// Noemer is the display name, where the object kind carries one.
	Noemer string `gorm:"type:varchar(255)" json:"noemer,omitempty"`

	// Kind-specific payload columns; unused ones stay empty.
	GeoUUID                *uuid.UUID `gorm:"type:uuid" json:"geoUuid,omitempty"`
	WID                    string     `gorm:"column:wid;type:varchar(255)" json:"wid,omitempty"`
	AdministrativeBordersID string    `gorm:"type:varchar(255)" json:"administrativeBordersId,omitempty"`
	BordersDomain          string     `gorm:"type:varchar(255)" json:"bordersDomain,omitempty"`
	ValidOn                string     `gorm:"type:varchar(32)" json:"validOn,omitempty"`
	AmbtsgebiedOWID        string     `gorm:"column:ambtsgebied_ow_id;type:varchar(255)" json:"ambtsgebiedOwId,omitempty"`
	DivisieOWID            string     `gorm:"column:divisie_ow_id;type:varchar(255)" json:"divisieOwId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (OWObject) TableName() string {
	return "publication_ow_objects"
}

// BeforeCreate ensures a UUID is set before creation.
func (o *OWObject) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	return nil
}

// OWAssociation is a typed edge between two OW objects of one package build,
// keyed by their OW_IDs.
type OWAssociation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PackageUUID uuid.UUID `gorm:"type:uuid;not null;index:idx_ow_assoc_package" json:"packageUuid"`

	FromOWID string            `gorm:"column:from_ow_id;type:varchar(255);not null" json:"fromOwId"`
	ToOWID   string            `gorm:"column:to_ow_id;type:varchar(255);not null" json:"toOwId"`
	Type     OWAssociationType `gorm:"type:varchar(64);not null" json:"type"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (OWAssociation) TableName() string {
	return "publication_ow_associations"
}

// CountOWObjectsForPackage returns the number of OW rows a package build
// created.
func CountOWObjectsForPackage(db *gorm.DB, packageUUID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&OWObject{}).
		Where("package_uuid = ?", packageUUID).
		Count(&count).Error
	return count, err
}
