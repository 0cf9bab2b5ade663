// Package mock is a deterministic renderer for testing. It produces a small
// but complete bundle without calling the external toolchain.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/provincie-forge/publicatie/pkg/renderer"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// Renderer is a mock renderer.
type Renderer struct {
	authorityPrefix string
	failRender      bool
	failConfig      bool

	// LastActRequest records the most recent act render input for assertions.
	LastActRequest *renderer.ActRequest

	// LastAnnouncementRequest records the most recent announcement render
	// input for assertions.
	LastAnnouncementRequest *renderer.AnnouncementRequest
}

// NewRenderer creates a new mock renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		authorityPrefix: "pv28",
	}
}

// WithAuthorityPrefix sets the OW authority prefix used in generated OW_IDs.
func (r *Renderer) WithAuthorityPrefix(prefix string) *Renderer {
	r.authorityPrefix = prefix
	return r
}

// WithRenderFailure makes every render fail with a RenderError.
func (r *Renderer) WithRenderFailure() *Renderer {
	r.failRender = true
	return r
}

// WithConfigurationFailure makes every render fail with a ConfigurationError.
func (r *Renderer) WithConfigurationFailure() *Renderer {
	r.failConfig = true
	return r
}

func (r *Renderer) Name() string {
	return "mock"
}

// RenderAct renders a deterministic act bundle. The exported OW state is a
// valid repository export so the full build flow can run against it.
func (r *Renderer) RenderAct(ctx context.Context, req *renderer.ActRequest) (*renderer.ActResult, error) {
	r.LastActRequest = req

	if r.failConfig {
		return nil, &renderer.ConfigurationError{Message: "mock: unknown document type"}
	}
	if r.failRender {
		return nil, &renderer.RenderError{Message: "mock: render failed"}
	}

	actContent := fmt.Sprintf(
		"<RegelingVrijetekst wId=%q>%s</RegelingVrijetekst>",
		r.wid("regeling"),
		req.DocumentType,
	)

	return &renderer.ActResult{
		Documents: []renderer.Document{
			{
				Filename: req.PublicationFilename,
				Content:  []byte(fmt.Sprintf("<AanleveringBesluit deliveryId=%q/>", req.DeliveryID)),
			},
			{
				Filename: strings.Replace(req.PublicationFilename, ".xml", "-regeling.xml", 1),
				Content:  []byte(actContent),
			},
		},
		ExportedState: r.exportedState(),
		WidData: state.WidData{
			KnownWidMap: map[string]string{
				"regeling": r.wid("regeling"),
			},
			KnownWids: []string{r.wid("regeling"), r.wid("divisietekst")},
		},
		ActText: actContent,
	}, nil
}

// RenderAnnouncement renders a deterministic announcement bundle.
func (r *Renderer) RenderAnnouncement(ctx context.Context, req *renderer.AnnouncementRequest) (*renderer.AnnouncementResult, error) {
	r.LastAnnouncementRequest = req

	if r.failConfig {
		return nil, &renderer.ConfigurationError{Message: "mock: unknown document type"}
	}
	if r.failRender {
		return nil, &renderer.RenderError{Message: "mock: render failed"}
	}

	return &renderer.AnnouncementResult{
		Documents: []renderer.Document{
			{
				Filename: req.PublicationFilename,
				Content:  []byte(fmt.Sprintf("<AanleveringKennisgeving deliveryId=%q/>", req.DeliveryID)),
			},
		},
	}, nil
}

func (r *Renderer) wid(suffix string) string {
	return fmt.Sprintf("%s_1__%s_o_1", r.authorityPrefix, suffix)
}

func (r *Renderer) owID(kind, code string) string {
	return fmt.Sprintf("nl.imow-%s.%s.%s", r.authorityPrefix, kind, code)
}

func (r *Renderer) exportedState() map[string]interface{} {
	return map[string]interface{}{
		"ow_repository": map[string]interface{}{
			"locaties_content": map[string]interface{}{
				"gebieden": []map[string]interface{}{
					{
						"OW_ID":    r.owID("gebied", "0001"),
						"geo_uuid": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
						"noemer":   "Werkingsgebied 1",
					},
				},
				"gebiedengroepen": []map[string]interface{}{
					{
						"OW_ID":    r.owID("gebiedengroep", "0002"),
						"geo_uuid": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
						"noemer":   "Werkingsgebied 1",
						"locations": []map[string]interface{}{
							{"OW_ID": r.owID("gebied", "0001")},
						},
					},
				},
				"ambtsgebieden": []map[string]interface{}{
					{
						"OW_ID": r.owID("ambtsgebied", "0003"),
						"bestuurlijke_genzenverwijzing": map[string]interface{}{
							"bestuurlijke_grenzen_id": strings.ToUpper(r.authorityPrefix),
							"domein":                  "NL.BI.BestuurlijkGebied",
							"geldig_op":               "2026-01-01",
						},
					},
				},
			},
			"divisie_content": map[string]interface{}{
				"annotaties": []map[string]interface{}{
					{
						"divisietekst_aanduiding": map[string]interface{}{
							"OW_ID": r.owID("divisietekst", "0004"),
							"wid":   r.wid("divisietekst"),
						},
						"tekstdeel": map[string]interface{}{
							"OW_ID":   r.owID("tekstdeel", "0005"),
							"divisie": r.owID("divisietekst", "0004"),
							"locations": []string{
								r.owID("gebiedengroep", "0002"),
							},
						},
					},
				},
			},
			"regelingsgebied_content": map[string]interface{}{
				"regelingsgebieden": []map[string]interface{}{
					{
						"OW_ID":       r.owID("regelingsgebied", "0006"),
						"ambtsgebied": r.owID("ambtsgebied", "0003"),
					},
				},
			},
		},
	}
}
