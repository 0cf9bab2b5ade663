package owexport

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"

	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/validator"
)

// Builder turns the renderer's exported OW repository into typed object rows
// and association edges for one package build.
//
// The build runs in two passes: first every node is allocated into an arena
// indexed by its OW identifier, then reference lists are resolved against the
// complete arena. Input order therefore does not matter.
type Builder struct {
	log hclog.Logger
}

func NewBuilder(log hclog.Logger) *Builder {
	return &Builder{
		log: log.Named("ow-builder"),
	}
}

type arena struct {
	objects []models.OWObject
	index   map[string]int
}

func (a *arena) add(obj models.OWObject) error {
	if !ValidOWID(obj.OWID) {
		return newExportError(fmt.Sprintf("OW identifier %q does not match the official grammar", obj.OWID))
	}
	if _, exists := a.index[obj.OWID]; exists {
		return newExportError(fmt.Sprintf("duplicate OW identifier %q in export", obj.OWID))
	}
	a.index[obj.OWID] = len(a.objects)
	a.objects = append(a.objects, obj)
	return nil
}

func (a *arena) has(owID string) bool {
	_, ok := a.index[owID]
	return ok
}

// Build parses the exported state and returns the OW rows and edges to
// persist. A malformed export yields an ExportError and no rows. The
// authority prefix (for example "pv28") is used to mint identifiers for
// ambtsgebied entries the renderer left unidentified.
func (b *Builder) Build(exported map[string]interface{}, packageUUID uuid.UUID, authorityPrefix string, procedureType models.ProcedureType) ([]models.OWObject, []models.OWAssociation, error) {
	var parsed export
	if err := mapstructure.Decode(exported, &parsed); err != nil {
		return nil, nil, newExportError(fmt.Sprintf("invalid export data format: %v", err))
	}
	if parsed.OwRepository == nil {
		return nil, nil, newExportError("invalid export data format: 'ow_repository' key not found")
	}

	repo := parsed.OwRepository
	natural := &arena{index: map[string]int{}}

	shared := models.OWObject{
		PackageUUID:   packageUUID,
		ProcedureType: procedureType,
	}

	if err := b.allocateLocations(natural, shared, authorityPrefix, repo.LocatiesContent); err != nil {
		return nil, nil, err
	}
	if err := b.allocateDivisions(natural, shared, repo.DivisieContent); err != nil {
		return nil, nil, err
	}
	if err := b.allocateRegelingsgebieden(natural, shared, repo.RegelingsgebiedContent); err != nil {
		return nil, nil, err
	}

	associations, err := b.resolveEdges(natural, packageUUID, repo)
	if err != nil {
		return nil, nil, err
	}

	b.log.Debug("built OW graph",
		"package_uuid", packageUUID,
		"objects", len(natural.objects),
		"associations", len(associations),
	)
	return natural.objects, associations, nil
}

func (b *Builder) allocateLocations(a *arena, shared models.OWObject, authorityPrefix string, content *locatiesContent) error {
	if content == nil {
		return nil
	}

	for _, area := range content.Gebieden {
		obj := shared
		obj.UUID = uuid.New()
		obj.OWID = area.OWID
		obj.IMOWType = models.IMOWGebied
		obj.Noemer = area.Noemer
		if geo, err := uuid.Parse(area.GeoUUID); err == nil {
			obj.GeoUUID = &geo
		}
		if err := a.add(obj); err != nil {
			return err
		}
	}

	for _, group := range content.Gebiedengroepen {
		obj := shared
		obj.UUID = uuid.New()
		obj.OWID = group.OWID
		obj.IMOWType = models.IMOWGebiedenGroep
		obj.Noemer = group.Noemer
		if geo, err := uuid.Parse(group.GeoUUID); err == nil {
			obj.GeoUUID = &geo
		}
		if err := a.add(obj); err != nil {
			return err
		}
	}

	for _, aoj := range content.Ambtsgebieden {
		obj := shared
		obj.UUID = uuid.New()
		obj.OWID = aoj.OWID
		if obj.OWID == "" {
			// An updated ambtsgebied arrives without an identifier and gets
			// a fresh one under the authority's prefix.
			obj.OWID = GenerateOWID(authorityPrefix, models.IMOWAmbtsgebied, "")
		}
		obj.IMOWType = models.IMOWAmbtsgebied
		obj.AdministrativeBordersID = aoj.Borders.BestuurlijkeGrenzenID
		obj.BordersDomain = aoj.Borders.Domein
		if aoj.Borders.GeldigOp != "" {
			validOn, err := validator.NormalizeDate(aoj.Borders.GeldigOp)
			if err != nil {
				return newExportError(fmt.Sprintf("invalid 'geldig_op' date %q on ambtsgebied %s", aoj.Borders.GeldigOp, obj.OWID))
			}
			obj.ValidOn = validOn
		}
		if err := a.add(obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) allocateDivisions(a *arena, shared models.OWObject, content *divisieContent) error {
	if content == nil {
		return nil
	}

	for _, item := range content.Annotaties {
		if item.Tekstdeel == nil {
			return newExportError("invalid data format: 'tekstdeel' key not found in divisie_content item")
		}
		if item.DivisieAanduiding == nil && item.DivisietekstAanduiding == nil {
			return newExportError("invalid data format: annotation carries no division pointer")
		}

		if item.DivisieAanduiding != nil {
			obj := shared
			obj.UUID = uuid.New()
			obj.OWID = item.DivisieAanduiding.OWID
			obj.IMOWType = models.IMOWDivisie
			obj.WID = item.DivisieAanduiding.WID
			if err := a.add(obj); err != nil {
				return err
			}
		}
		if item.DivisietekstAanduiding != nil {
			obj := shared
			obj.UUID = uuid.New()
			obj.OWID = item.DivisietekstAanduiding.OWID
			obj.IMOWType = models.IMOWDivisietekst
			obj.WID = item.DivisietekstAanduiding.WID
			if err := a.add(obj); err != nil {
				return err
			}
		}

		obj := shared
		obj.UUID = uuid.New()
		obj.OWID = item.Tekstdeel.OWID
		obj.IMOWType = models.IMOWTekstdeel
		obj.DivisieOWID = item.Tekstdeel.Divisie
		if err := a.add(obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) allocateRegelingsgebieden(a *arena, shared models.OWObject, content *regelingsgebiedContent) error {
	if content == nil {
		return nil
	}

	for _, rg := range content.Regelingsgebieden {
		obj := shared
		obj.UUID = uuid.New()
		obj.OWID = rg.OWID
		obj.IMOWType = models.IMOWRegelingsgebied
		obj.AmbtsgebiedOWID = rg.Ambtsgebied
		if err := a.add(obj); err != nil {
			return err
		}
	}
	return nil
}

// resolveEdges checks every reference list against the completed arena and
// materializes the association rows.
func (b *Builder) resolveEdges(a *arena, packageUUID uuid.UUID, repo *repository) ([]models.OWAssociation, error) {
	var associations []models.OWAssociation

	if repo.LocatiesContent != nil {
		for _, group := range repo.LocatiesContent.Gebiedengroepen {
			for _, member := range group.Locations {
				if !a.has(member.OWID) {
					return nil, newExportError(fmt.Sprintf(
						"invalid data: area %q referenced by area group %q not found", member.OWID, group.OWID))
				}
				associations = append(associations, models.OWAssociation{
					PackageUUID: packageUUID,
					FromOWID:    group.OWID,
					ToOWID:      member.OWID,
					Type:        models.OWAssociationGroupArea,
				})
			}
		}
	}

	if repo.DivisieContent != nil {
		for _, item := range repo.DivisieContent.Annotaties {
			if !a.has(item.Tekstdeel.Divisie) {
				return nil, newExportError(fmt.Sprintf(
					"invalid data: division %q referenced by tekstdeel %q not found",
					item.Tekstdeel.Divisie, item.Tekstdeel.OWID))
			}
			for _, location := range item.Tekstdeel.Locations {
				if !a.has(location) {
					return nil, newExportError(fmt.Sprintf(
						"invalid data: OW location %q referenced by tekstdeel %q not found",
						location, item.Tekstdeel.OWID))
				}
				associations = append(associations, models.OWAssociation{
					PackageUUID: packageUUID,
					FromOWID:    item.Tekstdeel.OWID,
					ToOWID:      location,
					Type:        models.OWAssociationTekstdeelLocation,
				})
			}
		}
	}

	if repo.RegelingsgebiedContent != nil {
		for _, rg := range repo.RegelingsgebiedContent.Regelingsgebieden {
			if !a.has(rg.Ambtsgebied) {
				return nil, newExportError(fmt.Sprintf(
					"invalid data: ambtsgebied %q referenced by regelingsgebied %q not found",
					rg.Ambtsgebied, rg.OWID))
			}
		}
	}

	return associations, nil
}
