package state

import (
	"github.com/provincie-forge/publicatie/pkg/frbr"
)

// Purpose is a consolidation purpose as recorded inside a state snapshot.
type Purpose struct {
	PurposeType   string  `json:"Purpose_Type"`
	EffectiveDate *string `json:"Effective_Date"`

	WorkProvinceID string `json:"Work_Province_ID"`
	WorkDate       string `json:"Work_Date"`
	WorkOther      string `json:"Work_Other"`
}

// Work returns the join identifier the purpose is keyed under.
func (p Purpose) Work() string {
	return frbr.PurposeWork(p.WorkProvinceID, p.WorkDate, p.WorkOther)
}

// Area is a served geographic area (werkingsgebied) of an active act.
type Area struct {
	UUID     string    `json:"UUID"`
	ObjectID int       `json:"Object_ID"`
	Title    string    `json:"Title"`
	Hash     string    `json:"Hash"`
	OwnerAct string    `json:"Owner_Act"`
	Frbr     frbr.Frbr `json:"Frbr"`
}

// Document is a geographic information document delivered with an act.
type Document struct {
	UUID        string    `json:"UUID"`
	Code        string    `json:"Code"`
	ObjectID    int       `json:"Object_ID"`
	Filename    string    `json:"Filename"`
	Title       string    `json:"Title"`
	OwnerAct    string    `json:"Owner_Act"`
	ContentType string    `json:"Content_Type"`
	Hash        string    `json:"Hash"`
	Frbr        frbr.Frbr `json:"Frbr"`
}

// Asset is a binary attachment the rendered act text references.
type Asset struct {
	UUID string `json:"UUID"`
}

// WidData records the platform element identifiers (wId) the renderer
// assigned, so the next mutation addresses existing elements by the same ids.
type WidData struct {
	KnownWidMap map[string]string `json:"Known_Wid_Map"`
	KnownWids   []string          `json:"Known_Wids"`
}

// OwData is the object-law snapshot the renderer exported for an act.
type OwData struct {
	OwObjects       map[string]interface{} `json:"Ow_Objects"`
	TerminatedOwIDs []string               `json:"Terminated_Ow_Ids"`
}

// Announcement is an active announcement recorded in the state.
type Announcement struct {
	DocFrbr       frbr.Frbr `json:"Doc_Frbr"`
	AboutActFrbr  frbr.Frbr `json:"About_Act_Frbr"`
	AboutBillFrbr frbr.Frbr `json:"About_Bill_Frbr"`

	DocumentType  string `json:"Document_Type"`
	ProcedureType string `json:"Procedure_Type"`
}
