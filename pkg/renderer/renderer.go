// Package renderer defines the interface to the external document renderer
// that turns an assembled input model into the publication XML bundle.
package renderer

import (
	"context"

	"github.com/provincie-forge/publicatie/pkg/frbr"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// Renderer produces the publication documents for a package build. The
// production implementation talks to the rendering toolchain over HTTP; tests
// use the mock subpackage.
type Renderer interface {
	// RenderAct renders the bill and consolidated act documents for an act
	// package.
	RenderAct(ctx context.Context, req *ActRequest) (*ActResult, error)

	// RenderAnnouncement renders the announcement documents for an
	// announcement package.
	RenderAnnouncement(ctx context.Context, req *AnnouncementRequest) (*AnnouncementResult, error)

	// Name returns the renderer name (e.g. "dso", "mock").
	Name() string
}

// Document is one rendered file of the publication bundle.
type Document struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// ActRequest is the input model for an act package render.
type ActRequest struct {
	DeliveryID          string `json:"deliveryId"`
	PublicationFilename string `json:"publicationFilename"`

	DocumentType  string `json:"documentType"`
	ProcedureType string `json:"procedureType"`
	PackageType   string `json:"packageType"`

	BillFrbr frbr.BillFrbr `json:"billFrbr"`
	ActFrbr  frbr.ActFrbr  `json:"actFrbr"`
	Purpose  state.Purpose `json:"consolidationPurpose"`

	BillMetadata map[string]interface{} `json:"billMetadata"`
	BillCompact  map[string]interface{} `json:"billCompact"`
	Procedural   map[string]interface{} `json:"procedural"`

	AnnouncementDate string `json:"announcementDate"`
	EffectiveDate    string `json:"effectiveDate,omitempty"`

	Objects   []map[string]interface{} `json:"objects"`
	Assets    map[string]state.Asset   `json:"assets"`
	Areas     map[int]state.Area       `json:"areas"`
	GeoDocuments map[int]state.Document `json:"geoDocuments"`

	// State is the currently consolidated law, present for renders against a
	// stateful environment so the renderer can compute mutations.
	State *state.ActiveState `json:"state,omitempty"`
}

// ActResult carries the rendered bundle plus the byproducts the state
// patcher and OW graph builder consume.
type ActResult struct {
	Documents []Document `json:"documents"`

	// ExportedState is the renderer's OW repository export.
	ExportedState map[string]interface{} `json:"exportedState"`

	WidData state.WidData `json:"widData"`
	ActText string        `json:"actText"`
}

// AnnouncementRequest is the input model for an announcement package render.
type AnnouncementRequest struct {
	DeliveryID          string `json:"deliveryId"`
	PublicationFilename string `json:"publicationFilename"`

	DocumentType  string `json:"documentType"`
	ProcedureType string `json:"procedureType"`
	PackageType   string `json:"packageType"`

	DocFrbr      frbr.DocFrbr  `json:"docFrbr"`
	AboutActFrbr frbr.ActFrbr  `json:"aboutActFrbr"`
	AboutBillFrbr frbr.BillFrbr `json:"aboutBillFrbr"`

	Metadata map[string]interface{} `json:"metadata"`
	Content  map[string]interface{} `json:"content"`

	AnnouncementDate string `json:"announcementDate"`
}

// AnnouncementResult carries the rendered announcement bundle.
type AnnouncementResult struct {
	Documents []Document `json:"documents"`
}
