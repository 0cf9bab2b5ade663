package state

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/frbr"
	"github.com/provincie-forge/publicatie/pkg/models"
)

// ActiveActV2 adds the publication version an act expression was built from.
type ActiveActV2 struct {
	ActFrbr              frbr.Frbr `json:"Act_Frbr"`
	BillFrbr             frbr.Frbr `json:"Bill_Frbr"`
	ConsolidationPurpose Purpose   `json:"Consolidation_Purpose"`

	DocumentType  string `json:"Document_Type"`
	ProcedureType string `json:"Procedure_Type"`

	Areas     map[int]Area     `json:"Werkingsgebieden"`
	Documents map[int]Document `json:"Documents"`
	Assets    map[string]Asset `json:"Assets"`
	WidData   WidData          `json:"Wid_Data"`
	OwData    OwData           `json:"Ow_Data"`
	ActText   string           `json:"Act_Text"`

	PublicationVersionUUID string `json:"Publication_Version_UUID"`
}

// StateV2 is schema version 2.
type StateV2 struct {
	Purposes map[string]Purpose     `json:"Purposes"`
	Acts     map[string]ActiveActV2 `json:"Acts"`
}

// V2Upgrader lifts a V1 snapshot to V2. The old schema did not record which
// publication version produced an act expression, so the upgrader re-derives
// it from the act version and package tables.
type V2Upgrader struct{}

func NewV2Upgrader() *V2Upgrader {
	return &V2Upgrader{}
}

func (u *V2Upgrader) InputSchemaVersion() int  { return 1 }
func (u *V2Upgrader) TargetSchemaVersion() int { return 2 }

func (u *V2Upgrader) Upgrade(tx *gorm.DB, environmentUUID uuid.UUID, raw json.RawMessage) (json.RawMessage, error) {
	var old StateV1
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decoding v1 state: %w", err)
	}

	acts := make(map[string]ActiveActV2, len(old.Acts))
	for key, oldAct := range old.Acts {
		versionUUID, err := u.resolvePublicationVersion(tx, environmentUUID, oldAct)
		if err != nil {
			return nil, fmt.Errorf("upgrading act %q: %w", key, err)
		}
		acts[key] = ActiveActV2{
			ActFrbr:              oldAct.ActFrbr,
			BillFrbr:             oldAct.BillFrbr,
			ConsolidationPurpose: oldAct.ConsolidationPurpose,
			DocumentType:         oldAct.DocumentType,
			ProcedureType:        oldAct.ProcedureType,
			Areas:                oldAct.Areas,
			Documents:            oldAct.Documents,
			Assets:               oldAct.Assets,
			WidData:              oldAct.WidData,
			OwData:               oldAct.OwData,
			ActText:              oldAct.ActText,

			PublicationVersionUUID: versionUUID.String(),
		}
	}

	upgraded := StateV2{
		Purposes: old.Purposes,
		Acts:     acts,
	}
	return json.Marshal(upgraded)
}

// resolvePublicationVersion walks act work -> expression row -> producing
// package to recover the publication version behind an active act.
func (u *V2Upgrader) resolvePublicationVersion(tx *gorm.DB, environmentUUID uuid.UUID, oldAct ActiveActV1) (uuid.UUID, error) {
	act, err := models.GetActByWork(
		tx,
		environmentUUID,
		oldAct.ActFrbr.WorkProvinceID,
		oldAct.ActFrbr.WorkCountry,
		oldAct.ActFrbr.WorkDate,
		oldAct.ActFrbr.WorkOther,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("act for work %s not found: %w", oldAct.ActFrbr.WorkOther, err)
	}

	actVersion, err := models.GetActVersionByExpression(tx, act.UUID, oldAct.ActFrbr.ExpressionVersion)
	if err != nil {
		return uuid.Nil, fmt.Errorf("act version %d not found: %w", oldAct.ActFrbr.ExpressionVersion, err)
	}

	pkg, err := models.GetActPackageByActVersion(tx, actVersion.UUID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("package for act version %s not found: %w", actVersion.UUID, err)
	}
	return pkg.PublicationVersionUUID, nil
}
