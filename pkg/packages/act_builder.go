// Package packages builds the validation and publication deliveries for the
// national platform. A build runs request scoped inside one transaction:
// guard, validate, assemble, render, archive, and, for publication packages
// against a stateful environment, derive the next state snapshot and append
// the FRBR history rows.
package packages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/frbr"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/owexport"
	"github.com/provincie-forge/publicatie/pkg/renderer"
	"github.com/provincie-forge/publicatie/pkg/state"
	"github.com/provincie-forge/publicatie/pkg/validator"
)

// ActBuilder builds act packages for publication versions.
type ActBuilder struct {
	db           *gorm.DB
	renderer     renderer.Renderer
	validator    *validator.Validator
	loader       *state.Loader
	patcher      *state.ActStatePatcher
	owBuilder    *owexport.Builder
	actProvider  *frbr.ActProvider
	billProvider *frbr.BillProvider
	dataProvider DataProvider
	logger       hclog.Logger
}

// ActBuilderConfig holds configuration for the act package builder.
type ActBuilderConfig struct {
	DB           *gorm.DB
	Renderer     renderer.Renderer
	DataProvider DataProvider // Optional, defaults to an empty static provider
	Logger       hclog.Logger // Optional
}

// NewActBuilder creates a new act package builder.
func NewActBuilder(config ActBuilderConfig) (*ActBuilder, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if config.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if config.DataProvider == nil {
		config.DataProvider = &StaticDataProvider{}
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	logger := config.Logger.Named("act-package-builder")

	return &ActBuilder{
		db:           config.DB,
		renderer:     config.Renderer,
		validator:    validator.New(),
		loader:       state.NewLoader(state.NewFactory(), logger),
		patcher:      state.NewActStatePatcher(),
		owBuilder:    owexport.NewBuilder(logger),
		actProvider:  frbr.NewActProvider(),
		billProvider: frbr.NewBillProvider(),
		dataProvider: config.DataProvider,
		logger:       logger,
	}, nil
}

// BuildResult identifies the rows a successful build created.
type BuildResult struct {
	Package *models.ActPackage
	Zip     *models.PackageZip
}

// Build creates an act package for a publication version. Everything happens
// in one transaction; any error rolls back all derived rows.
func (b *ActBuilder) Build(ctx context.Context, versionUUID uuid.UUID, packageType models.PackageType) (*BuildResult, error) {
	if !packageType.IsValid() {
		return nil, newConflict("unknown package type %q", packageType)
	}

	var result *BuildResult
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		built, err := b.build(ctx, tx, versionUUID, packageType)
		if err != nil {
			return err
		}
		result = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("built act package",
		"package_uuid", result.Package.UUID,
		"version_uuid", versionUUID,
		"package_type", packageType,
		"report_status", result.Package.ReportStatus,
	)
	return result, nil
}

func (b *ActBuilder) build(ctx context.Context, tx *gorm.DB, versionUUID uuid.UUID, packageType models.PackageType) (*BuildResult, error) {
	version, err := models.GetPublicationVersionByUUID(tx, versionUUID)
	if err != nil {
		return nil, fmt.Errorf("loading publication version: %w", err)
	}
	publication := version.Publication
	act := publication.Act

	// Re-read the environment under a row lock so concurrent builds against
	// the same environment serialize on the guard check.
	environment, err := models.GetEnvironmentForUpdate(tx, publication.EnvironmentUUID)
	if err != nil {
		return nil, fmt.Errorf("locking environment: %w", err)
	}

	if err := b.guard(environment, version, act, packageType); err != nil {
		return nil, err
	}
	if err := b.validate(version, packageType); err != nil {
		return nil, err
	}

	currentState, err := b.loader.Load(tx, environment)
	if err != nil {
		return nil, fmt.Errorf("loading environment state: %w", err)
	}

	actFrbr, err := b.actProvider.Generate(tx, act)
	if err != nil {
		return nil, fmt.Errorf("generating act frbr: %w", err)
	}
	billFrbr, err := b.billProvider.Generate(tx, environment, publication.DocumentType, actFrbr)
	if err != nil {
		return nil, fmt.Errorf("generating bill frbr: %w", err)
	}
	purpose := consolidationPurpose(environment, version, actFrbr)

	data, err := b.dataProvider.FetchActData(tx, version, billFrbr, actFrbr)
	if err != nil {
		return nil, fmt.Errorf("fetching publication data: %w", err)
	}

	deliveryID := uuid.New().String()
	publicationFilename := frbr.PublicationFilename(billFrbr, packageType.Abbreviation())

	req, err := b.renderRequest(version, packageType, billFrbr, actFrbr, purpose, data, currentState, deliveryID, publicationFilename)
	if err != nil {
		return nil, err
	}
	rendered, err := b.renderer.RenderAct(ctx, req)
	if err != nil {
		return nil, err
	}

	// Uploaded attachments (GIO/GML files) travel inside the delivery next
	// to the rendered documents.
	attachments, err := version.GetAttachments(tx)
	if err != nil {
		return nil, fmt.Errorf("loading version attachments: %w", err)
	}
	documents := rendered.Documents
	for _, attachment := range attachments {
		if attachment.File == nil {
			return nil, fmt.Errorf("attachment %d has no stored file", attachment.ID)
		}
		documents = append(documents, renderer.Document{
			Filename: attachment.Filename,
			Content:  attachment.File.Binary,
		})
	}

	zipData, err := buildZip(publicationFilename, documents)
	if err != nil {
		return nil, fmt.Errorf("archiving publication bundle: %w", err)
	}

	packageZip := &models.PackageZip{
		UUID:     uuid.New(),
		Filename: zipData.Filename,
		Binary:   zipData.Binary,
		Checksum: zipData.Checksum,
	}
	if err := tx.Create(packageZip).Error; err != nil {
		return nil, fmt.Errorf("persisting package zip: %w", err)
	}

	reportStatus := models.ReportStatusNotApplicable
	if environment.HasState {
		reportStatus = models.ReportStatusPending
	}

	pkg := &models.ActPackage{
		UUID:                   uuid.New(),
		PublicationVersionUUID: version.UUID,
		ZipUUID:                packageZip.UUID,
		PackageType:            packageType,
		ReportStatus:           reportStatus,
		DeliveryID:             deliveryID,
	}
	if err := tx.Create(pkg).Error; err != nil {
		return nil, fmt.Errorf("persisting package: %w", err)
	}

	if environment.HasState && packageType == models.PublicationPackageType {
		if err := b.recordNewState(tx, environment, publication, version, pkg, currentState, billFrbr, actFrbr, purpose, data, rendered); err != nil {
			return nil, err
		}
		if err := b.recordFrbrHistory(tx, environment, publication, act, pkg, billFrbr, actFrbr, purpose, version); err != nil {
			return nil, err
		}
	}

	if version.Status != models.VersionStatusNotApplicable {
		newStatus := models.VersionStatusValidation
		if packageType == models.PublicationPackageType {
			newStatus = models.VersionStatusPublication
		}
		if err := tx.Model(version).Update("status", newStatus).Error; err != nil {
			return nil, fmt.Errorf("updating version status: %w", err)
		}
	}

	return &BuildResult{Package: pkg, Zip: packageZip}, nil
}

func (b *ActBuilder) guard(environment *models.Environment, version *models.PublicationVersion, act *models.Act, packageType models.PackageType) error {
	switch packageType {
	case models.ValidationPackageType:
		if !environment.CanValidate {
			return newConflict("can not create a validation package for this environment")
		}
	case models.PublicationPackageType:
		if !environment.CanPublicate {
			return newConflict("can not create a publication package for this environment")
		}
	}

	if version.IsLocked {
		return newConflict("this publication version is locked")
	}
	if environment.IsLocked {
		return newConflict("this environment is locked")
	}
	if act == nil || !act.IsActive {
		return newConflict("this act can no longer be used")
	}
	return nil
}

// validate runs the pre-flight schema. Validation builds skip the checks
// that only gate an actual publication.
func (b *ActBuilder) validate(version *models.PublicationVersion, packageType models.PackageType) error {
	errs := b.validator.Validate(version)
	if packageType == models.ValidationPackageType {
		errs = withoutFinalOnly(errs)
	}
	if len(errs) > 0 {
		return &ValidationFailedError{Errors: errs}
	}
	return nil
}

func withoutFinalOnly(errs []validator.FieldError) []validator.FieldError {
	var kept []validator.FieldError
	for _, e := range errs {
		if e.Field == "Effective_Date" {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (b *ActBuilder) renderRequest(
	version *models.PublicationVersion,
	packageType models.PackageType,
	billFrbr frbr.BillFrbr,
	actFrbr frbr.ActFrbr,
	purpose state.Purpose,
	data *PublicationData,
	currentState *state.ActiveState,
	deliveryID string,
	publicationFilename string,
) (*renderer.ActRequest, error) {
	billMetadata, err := decodeBlob(version.BillMetadata)
	if err != nil {
		return nil, fmt.Errorf("decoding bill metadata: %w", err)
	}
	billCompact, err := decodeBlob(version.BillCompact)
	if err != nil {
		return nil, fmt.Errorf("decoding bill compact: %w", err)
	}
	procedural, err := decodeBlob(version.Procedural)
	if err != nil {
		return nil, fmt.Errorf("decoding procedural data: %w", err)
	}

	req := &renderer.ActRequest{
		DeliveryID:          deliveryID,
		PublicationFilename: publicationFilename,
		DocumentType:        version.Publication.DocumentType,
		ProcedureType:       string(version.Publication.ProcedureType),
		PackageType:         string(packageType),
		BillFrbr:            billFrbr,
		ActFrbr:             actFrbr,
		Purpose:             purpose,
		BillMetadata:        billMetadata,
		BillCompact:         billCompact,
		Procedural:          procedural,
		AnnouncementDate:    version.AnnouncementDate.Format("2006-01-02"),
		Objects:             data.Objects,
		Assets:              data.Assets,
		Areas:               data.Areas,
		GeoDocuments:        data.GeoDocuments,
		State:               currentState,
	}
	if version.EffectiveDate != nil {
		req.EffectiveDate = version.EffectiveDate.Format("2006-01-02")
	}
	return req, nil
}

// recordNewState derives the next snapshot from the render byproducts,
// persists it unactivated, links it to the package and locks the environment
// until a conclusive report arrives.
func (b *ActBuilder) recordNewState(
	tx *gorm.DB,
	environment *models.Environment,
	publication *models.Publication,
	version *models.PublicationVersion,
	pkg *models.ActPackage,
	currentState *state.ActiveState,
	billFrbr frbr.BillFrbr,
	actFrbr frbr.ActFrbr,
	purpose state.Purpose,
	data *PublicationData,
	rendered *renderer.ActResult,
) error {
	if currentState == nil {
		return newConflict("environment has no activated state to adjust on")
	}

	owObjects, owAssociations, err := b.owBuilder.Build(rendered.ExportedState, pkg.UUID, environment.ProvinceID, publication.ProcedureType)
	if err != nil {
		return err
	}
	for i := range owObjects {
		if err := tx.Create(&owObjects[i]).Error; err != nil {
			return fmt.Errorf("persisting ow object: %w", err)
		}
	}
	for i := range owAssociations {
		if err := tx.Create(&owAssociations[i]).Error; err != nil {
			return fmt.Errorf("persisting ow association: %w", err)
		}
	}

	patch := state.ActPatch{
		ActFrbr:              actFrbr,
		BillFrbr:             billFrbr,
		ConsolidationPurpose: purpose,
		DocumentType:         publication.DocumentType,
		ProcedureType:        string(publication.ProcedureType),
		Areas:                data.Areas,
		Documents:            data.GeoDocuments,
		Assets:               data.Assets,
		WidData:              rendered.WidData,
		OwData:               owData(owObjects),
		ActText:              rendered.ActText,

		PublicationVersionUUID: version.UUID,
	}
	nextState, err := b.patcher.Apply(currentState, patch)
	if err != nil {
		return fmt.Errorf("deriving next state: %w", err)
	}
	raw, err := state.Marshal(nextState)
	if err != nil {
		return fmt.Errorf("encoding next state: %w", err)
	}

	stateRow := &models.EnvironmentState{
		UUID:            uuid.New(),
		EnvironmentUUID: environment.UUID,
		AdjustOnUUID:    environment.ActiveStateUUID,
		State:           raw,
		IsActivated:     false,
	}
	if err := tx.Create(stateRow).Error; err != nil {
		return fmt.Errorf("persisting new state: %w", err)
	}

	pkg.UsedEnvironmentStateUUID = environment.ActiveStateUUID
	pkg.CreatedEnvironmentStateUUID = &stateRow.UUID
	if err := tx.Model(pkg).Updates(map[string]interface{}{
		"used_environment_state_uuid":    pkg.UsedEnvironmentStateUUID,
		"created_environment_state_uuid": pkg.CreatedEnvironmentStateUUID,
	}).Error; err != nil {
		return fmt.Errorf("linking new state: %w", err)
	}

	environment.IsLocked = true
	if err := tx.Model(environment).Update("is_locked", true).Error; err != nil {
		return fmt.Errorf("locking environment: %w", err)
	}
	return nil
}

// recordFrbrHistory appends the purpose, bill and act expression rows that
// commit the allocated identifiers to the history.
func (b *ActBuilder) recordFrbrHistory(
	tx *gorm.DB,
	environment *models.Environment,
	publication *models.Publication,
	act *models.Act,
	pkg *models.ActPackage,
	billFrbr frbr.BillFrbr,
	actFrbr frbr.ActFrbr,
	purpose state.Purpose,
	version *models.PublicationVersion,
) error {
	purposeRow := &models.Purpose{
		UUID:            uuid.New(),
		EnvironmentUUID: environment.UUID,
		PurposeType:     purpose.PurposeType,
		EffectiveDate:   version.EffectiveDate,
		WorkProvinceID:  purpose.WorkProvinceID,
		WorkDate:        purpose.WorkDate,
		WorkOther:       purpose.WorkOther,
	}
	if err := tx.Create(purposeRow).Error; err != nil {
		return fmt.Errorf("persisting consolidation purpose: %w", err)
	}

	bill := &models.Bill{
		UUID:            uuid.New(),
		EnvironmentUUID: environment.UUID,
		DocumentType:    publication.DocumentType,
		WorkProvinceID:  billFrbr.WorkProvinceID,
		WorkCountry:     billFrbr.WorkCountry,
		WorkDate:        billFrbr.WorkDate,
		WorkOther:       billFrbr.WorkOther,
	}
	if err := tx.Create(bill).Error; err != nil {
		return fmt.Errorf("persisting bill work: %w", err)
	}

	billVersion := &models.BillVersion{
		UUID:               uuid.New(),
		BillUUID:           bill.UUID,
		ExpressionLanguage: billFrbr.ExpressionLanguage,
		ExpressionDate:     billFrbr.ExpressionDate,
		ExpressionVersion:  billFrbr.ExpressionVersion,
	}
	if err := tx.Create(billVersion).Error; err != nil {
		return fmt.Errorf("persisting bill expression: %w", err)
	}

	actVersion := &models.ActVersion{
		UUID:                     uuid.New(),
		ActUUID:                  act.UUID,
		ConsolidationPurposeUUID: purposeRow.UUID,
		ExpressionLanguage:       actFrbr.ExpressionLanguage,
		ExpressionDate:           actFrbr.ExpressionDate,
		ExpressionVersion:        actFrbr.ExpressionVersion,
	}
	if err := tx.Create(actVersion).Error; err != nil {
		return fmt.Errorf("persisting act expression: %w", err)
	}

	pkg.BillVersionUUID = &billVersion.UUID
	pkg.ActVersionUUID = &actVersion.UUID
	return tx.Model(pkg).Updates(map[string]interface{}{
		"bill_version_uuid": pkg.BillVersionUUID,
		"act_version_uuid":  pkg.ActVersionUUID,
	}).Error
}

// consolidationPurpose derives the purpose justifying the new act expression.
// The work-other suffix combines the act's work suffix with the expression
// version, which keeps it unique within the environment.
func consolidationPurpose(environment *models.Environment, version *models.PublicationVersion, actFrbr frbr.ActFrbr) state.Purpose {
	var effective *string
	if version.EffectiveDate != nil {
		s := version.EffectiveDate.Format("2006-01-02")
		effective = &s
	}
	return state.Purpose{
		PurposeType:    models.PurposeTypeConsolidation,
		EffectiveDate:  effective,
		WorkProvinceID: environment.ProvinceID,
		WorkDate:       actFrbr.ExpressionDate,
		WorkOther:      fmt.Sprintf("%s-%d", actFrbr.WorkOther, actFrbr.ExpressionVersion),
	}
}

// owData converts the persisted OW graph into the snapshot form carried in
// the environment state.
func owData(objects []models.OWObject) state.OwData {
	owObjects := make(map[string]interface{}, len(objects))
	for _, obj := range objects {
		owObjects[obj.OWID] = map[string]interface{}{
			"IMOW_Type": string(obj.IMOWType),
			"Noemer":    obj.Noemer,
		}
	}
	return state.OwData{
		OwObjects:       owObjects,
		TerminatedOwIDs: []string{},
	}
}

func decodeBlob(blob models.JSON) (map[string]interface{}, error) {
	if len(blob) == 0 {
		return map[string]interface{}{}, nil
	}
	var decoded map[string]interface{}
	if err := blob.Unmarshal(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
