package state

import (
	"github.com/google/uuid"

	"github.com/provincie-forge/publicatie/pkg/frbr"
)

// ActPatch carries everything a publication build adds to the state: the new
// act expression with its rendered artifacts, plus the consolidation purpose
// that justifies it.
type ActPatch struct {
	ActFrbr              frbr.ActFrbr
	BillFrbr             frbr.BillFrbr
	ConsolidationPurpose Purpose

	DocumentType  string
	ProcedureType string

	Areas     map[int]Area
	Documents map[int]Document
	Assets    map[string]Asset
	WidData   WidData
	OwData    OwData
	ActText   string

	PublicationVersionUUID uuid.UUID
}

// ActStatePatcher derives the next snapshot after an act publication.
type ActStatePatcher struct{}

func NewActStatePatcher() *ActStatePatcher {
	return &ActStatePatcher{}
}

// Apply returns a new snapshot with the patch applied; source is untouched.
func (p *ActStatePatcher) Apply(source *ActiveState, patch ActPatch) (*ActiveState, error) {
	next, err := source.Clone()
	if err != nil {
		return nil, err
	}

	next.AddPurpose(patch.ConsolidationPurpose)
	next.AddPublication(ActiveAct{
		ActFrbr:              patch.ActFrbr.Frbr,
		BillFrbr:             patch.BillFrbr.Frbr,
		ConsolidationPurpose: patch.ConsolidationPurpose,
		DocumentType:         patch.DocumentType,
		ProcedureType:        patch.ProcedureType,
		Areas:                patch.Areas,
		Documents:            patch.Documents,
		Assets:               patch.Assets,
		WidData:              patch.WidData,
		OwData:               patch.OwData,
		ActText:              patch.ActText,

		PublicationVersionUUID: patch.PublicationVersionUUID.String(),
	})
	return next, nil
}

// AnnouncementPatch is the announcement counterpart of ActPatch.
type AnnouncementPatch struct {
	DocFrbr       frbr.DocFrbr
	AboutActFrbr  frbr.ActFrbr
	AboutBillFrbr frbr.BillFrbr

	DocumentType  string
	ProcedureType string
}

// AnnouncementStatePatcher derives the next snapshot after an announcement
// publication.
type AnnouncementStatePatcher struct{}

func NewAnnouncementStatePatcher() *AnnouncementStatePatcher {
	return &AnnouncementStatePatcher{}
}

// Apply returns a new snapshot with the announcement recorded.
func (p *AnnouncementStatePatcher) Apply(source *ActiveState, patch AnnouncementPatch) (*ActiveState, error) {
	next, err := source.Clone()
	if err != nil {
		return nil, err
	}

	next.AddAnnouncement(Announcement{
		DocFrbr:       patch.DocFrbr.Frbr,
		AboutActFrbr:  patch.AboutActFrbr.Frbr,
		AboutBillFrbr: patch.AboutBillFrbr.Frbr,
		DocumentType:  patch.DocumentType,
		ProcedureType: patch.ProcedureType,
	})
	return next, nil
}
