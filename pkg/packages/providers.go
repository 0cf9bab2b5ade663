package packages

import (
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/frbr"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// PublicationData bundles the policy content a render needs: the published
// objects, their binary assets, the served geographic areas and the
// geographic information documents.
type PublicationData struct {
	Objects      []map[string]interface{}
	Assets       map[string]state.Asset
	Areas        map[int]state.Area
	GeoDocuments map[int]state.Document
}

// DataProvider collects the publication data for a version. The policy
// object store lives outside this module, so the production provider is
// supplied by the embedding application.
type DataProvider interface {
	FetchActData(tx *gorm.DB, version *models.PublicationVersion, billFrbr frbr.BillFrbr, actFrbr frbr.ActFrbr) (*PublicationData, error)
}

// StaticDataProvider serves a fixed data set. Useful for tests and for
// announcement-only deployments that publish no policy objects.
type StaticDataProvider struct {
	Data PublicationData
}

func (p *StaticDataProvider) FetchActData(tx *gorm.DB, version *models.PublicationVersion, billFrbr frbr.BillFrbr, actFrbr frbr.ActFrbr) (*PublicationData, error) {
	data := p.Data
	if data.Assets == nil {
		data.Assets = map[string]state.Asset{}
	}
	if data.Areas == nil {
		data.Areas = map[int]state.Area{}
	}
	if data.GeoDocuments == nil {
		data.GeoDocuments = map[int]state.Document{}
	}
	return &data, nil
}
