package state

import (
	"github.com/provincie-forge/publicatie/pkg/frbr"
)

// ActiveActV1 is the first-schema shape of an act in force. It lacks the
// publication version linkage that later schemas carry.
type ActiveActV1 struct {
	ActFrbr              frbr.Frbr `json:"Act_Frbr"`
	BillFrbr             frbr.Frbr `json:"Bill_Frbr"`
	ConsolidationPurpose Purpose   `json:"Consolidation_Purpose"`

	DocumentType  string `json:"Document_Type"`
	ProcedureType string `json:"Procedure_Type"`

	Areas     map[int]Area      `json:"Werkingsgebieden"`
	Documents map[int]Document  `json:"Documents"`
	Assets    map[string]Asset  `json:"Assets"`
	WidData   WidData           `json:"Wid_Data"`
	OwData    OwData            `json:"Ow_Data"`
	ActText   string            `json:"Act_Text"`
}

// StateV1 is schema version 1: purposes and active acts, keyed by purpose
// work and document/procedure type respectively.
type StateV1 struct {
	Purposes map[string]Purpose     `json:"Purposes"`
	Acts     map[string]ActiveActV1 `json:"Acts"`
}
