package packages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/frbr"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/renderer"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// AnnouncementBuilder builds announcement (kennisgeving) packages. An
// announcement belongs to a published act package and notifies the public of
// the underlying decision.
type AnnouncementBuilder struct {
	db          *gorm.DB
	renderer    renderer.Renderer
	loader      *state.Loader
	patcher     *state.AnnouncementStatePatcher
	docProvider *frbr.DocProvider
	logger      hclog.Logger
}

// AnnouncementBuilderConfig holds configuration for the announcement builder.
type AnnouncementBuilderConfig struct {
	DB       *gorm.DB
	Renderer renderer.Renderer
	Logger   hclog.Logger // Optional
}

// NewAnnouncementBuilder creates a new announcement package builder.
func NewAnnouncementBuilder(config AnnouncementBuilderConfig) (*AnnouncementBuilder, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if config.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	logger := config.Logger.Named("announcement-package-builder")

	return &AnnouncementBuilder{
		db:          config.DB,
		renderer:    config.Renderer,
		loader:      state.NewLoader(state.NewFactory(), logger),
		patcher:     state.NewAnnouncementStatePatcher(),
		docProvider: frbr.NewDocProvider(),
		logger:      logger,
	}, nil
}

// AnnouncementBuildResult identifies the rows a successful build created.
type AnnouncementBuildResult struct {
	Package *models.AnnouncementPackage
	Zip     *models.PackageZip
}

// Build creates an announcement package in one transaction.
func (b *AnnouncementBuilder) Build(ctx context.Context, announcementUUID uuid.UUID, packageType models.PackageType) (*AnnouncementBuildResult, error) {
	if !packageType.IsValid() {
		return nil, newConflict("unknown package type %q", packageType)
	}

	var result *AnnouncementBuildResult
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		built, err := b.build(ctx, tx, announcementUUID, packageType)
		if err != nil {
			return err
		}
		result = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("built announcement package",
		"package_uuid", result.Package.UUID,
		"announcement_uuid", announcementUUID,
		"package_type", packageType,
		"report_status", result.Package.ReportStatus,
	)
	return result, nil
}

func (b *AnnouncementBuilder) build(ctx context.Context, tx *gorm.DB, announcementUUID uuid.UUID, packageType models.PackageType) (*AnnouncementBuildResult, error) {
	announcement, err := models.GetAnnouncementByUUID(tx, announcementUUID)
	if err != nil {
		return nil, fmt.Errorf("loading announcement: %w", err)
	}
	publication := announcement.Publication
	act := publication.Act

	environment, err := models.GetEnvironmentForUpdate(tx, publication.EnvironmentUUID)
	if err != nil {
		return nil, fmt.Errorf("locking environment: %w", err)
	}

	if err := b.guard(environment, announcement, act, packageType); err != nil {
		return nil, err
	}

	aboutActFrbr, aboutBillFrbr, err := b.aboutFrbrs(tx, announcement.ActPackage, act)
	if err != nil {
		return nil, err
	}

	docFrbr, err := b.docProvider.Generate(tx, environment, publication.DocumentType)
	if err != nil {
		return nil, fmt.Errorf("generating doc frbr: %w", err)
	}

	deliveryID := uuid.New().String()
	publicationFilename := frbr.AnnouncementFilename(docFrbr, packageType.Abbreviation())

	req, err := b.renderRequest(announcement, packageType, docFrbr, aboutActFrbr, aboutBillFrbr, deliveryID, publicationFilename)
	if err != nil {
		return nil, err
	}
	rendered, err := b.renderer.RenderAnnouncement(ctx, req)
	if err != nil {
		return nil, err
	}

	zipData, err := buildZip(publicationFilename, rendered.Documents)
	if err != nil {
		return nil, fmt.Errorf("archiving announcement bundle: %w", err)
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

	pkg := &models.AnnouncementPackage{
		UUID:             uuid.New(),
		AnnouncementUUID: announcement.UUID,
		ZipUUID:          packageZip.UUID,
		PackageType:      packageType,
		ReportStatus:     reportStatus,
		DeliveryID:       deliveryID,
	}
	if err := tx.Create(pkg).Error; err != nil {
		return nil, fmt.Errorf("persisting package: %w", err)
	}

	if environment.HasState && packageType == models.PublicationPackageType {
		if err := b.recordNewState(tx, environment, publication, pkg, docFrbr, aboutActFrbr, aboutBillFrbr); err != nil {
			return nil, err
		}
		if err := b.recordDocHistory(tx, environment, publication, pkg, docFrbr); err != nil {
			return nil, err
		}
	}

	return &AnnouncementBuildResult{Package: pkg, Zip: packageZip}, nil
}

func (b *AnnouncementBuilder) guard(environment *models.Environment, announcement *models.Announcement, act *models.Act, packageType models.PackageType) error {
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

	if announcement.IsLocked {
		return newConflict("this announcement is locked")
	}
	if environment.IsLocked {
		return newConflict("this environment is locked")
	}
	if act == nil || !act.IsActive {
		return newConflict("this act can no longer be used")
	}
	return nil
}

// aboutFrbrs reconstructs the act and bill expressions the announcement is
// about from the act package's history rows.
func (b *AnnouncementBuilder) aboutFrbrs(tx *gorm.DB, actPackage *models.ActPackage, act *models.Act) (frbr.ActFrbr, frbr.BillFrbr, error) {
	var actFrbr frbr.ActFrbr
	var billFrbr frbr.BillFrbr

	if actPackage == nil || actPackage.ActVersionUUID == nil || actPackage.BillVersionUUID == nil {
		return actFrbr, billFrbr, newConflict("announcement's act package has no publication history")
	}

	var actVersion models.ActVersion
	if err := tx.Where("uuid = ?", *actPackage.ActVersionUUID).First(&actVersion).Error; err != nil {
		return actFrbr, billFrbr, fmt.Errorf("loading act expression: %w", err)
	}
	actFrbr = frbr.ActFrbr{
		Frbr: frbr.Frbr{
			WorkProvinceID:     act.WorkProvinceID,
			WorkCountry:        act.WorkCountry,
			WorkDate:           act.WorkDate,
			WorkOther:          act.WorkOther,
			ExpressionLanguage: actVersion.ExpressionLanguage,
			ExpressionDate:     actVersion.ExpressionDate,
			ExpressionVersion:  actVersion.ExpressionVersion,
		},
		ActID: act.ID,
	}

	var billVersion models.BillVersion
	err := tx.Preload("Bill").Where("uuid = ?", *actPackage.BillVersionUUID).First(&billVersion).Error
	if err != nil {
		return actFrbr, billFrbr, fmt.Errorf("loading bill expression: %w", err)
	}
	bill := billVersion.Bill
	billFrbr = frbr.BillFrbr{
		Frbr: frbr.Frbr{
			WorkProvinceID:     bill.WorkProvinceID,
			WorkCountry:        bill.WorkCountry,
			WorkDate:           bill.WorkDate,
			WorkOther:          bill.WorkOther,
			ExpressionLanguage: billVersion.ExpressionLanguage,
			ExpressionDate:     billVersion.ExpressionDate,
			ExpressionVersion:  billVersion.ExpressionVersion,
		},
	}
	return actFrbr, billFrbr, nil
}

func (b *AnnouncementBuilder) renderRequest(
	announcement *models.Announcement,
	packageType models.PackageType,
	docFrbr frbr.DocFrbr,
	aboutActFrbr frbr.ActFrbr,
	aboutBillFrbr frbr.BillFrbr,
	deliveryID string,
	publicationFilename string,
) (*renderer.AnnouncementRequest, error) {
	metadata, err := decodeBlob(announcement.Metadata)
	if err != nil {
		return nil, fmt.Errorf("decoding announcement metadata: %w", err)
	}
	content, err := decodeBlob(announcement.Content)
	if err != nil {
		return nil, fmt.Errorf("decoding announcement content: %w", err)
	}

	req := &renderer.AnnouncementRequest{
		DeliveryID:          deliveryID,
		PublicationFilename: publicationFilename,
		DocumentType:        announcement.Publication.DocumentType,
		ProcedureType:       string(announcement.Publication.ProcedureType),
		PackageType:         string(packageType),
		DocFrbr:             docFrbr,
		AboutActFrbr:        aboutActFrbr,
		AboutBillFrbr:       aboutBillFrbr,
		Metadata:            metadata,
		Content:             content,
	}
	if announcement.AnnouncementDate != nil {
		req.AnnouncementDate = announcement.AnnouncementDate.Format("2006-01-02")
	}
	return req, nil
}

func (b *AnnouncementBuilder) recordNewState(
	tx *gorm.DB,
	environment *models.Environment,
	publication *models.Publication,
	pkg *models.AnnouncementPackage,
	docFrbr frbr.DocFrbr,
	aboutActFrbr frbr.ActFrbr,
	aboutBillFrbr frbr.BillFrbr,
) error {
	currentState, err := b.loader.Load(tx, environment)
	if err != nil {
		return fmt.Errorf("loading environment state: %w", err)
	}
	if currentState == nil {
		return newConflict("environment has no activated state to adjust on")
	}

	patch := state.AnnouncementPatch{
		DocFrbr:       docFrbr,
		AboutActFrbr:  aboutActFrbr,
		AboutBillFrbr: aboutBillFrbr,
		DocumentType:  publication.DocumentType,
		ProcedureType: string(publication.ProcedureType),
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
	return tx.Model(environment).Update("is_locked", true).Error
}

func (b *AnnouncementBuilder) recordDocHistory(
	tx *gorm.DB,
	environment *models.Environment,
	publication *models.Publication,
	pkg *models.AnnouncementPackage,
	docFrbr frbr.DocFrbr,
) error {
	doc := &models.Doc{
		UUID:            uuid.New(),
		EnvironmentUUID: environment.UUID,
		DocumentType:    publication.DocumentType,
		WorkProvinceID:  docFrbr.WorkProvinceID,
		WorkCountry:     docFrbr.WorkCountry,
		WorkDate:        docFrbr.WorkDate,
		WorkOther:       docFrbr.WorkOther,
	}
	if err := tx.Create(doc).Error; err != nil {
		return fmt.Errorf("persisting doc work: %w", err)
	}

	docVersion := &models.DocVersion{
		UUID:               uuid.New(),
		DocUUID:            doc.UUID,
		ExpressionLanguage: docFrbr.ExpressionLanguage,
		ExpressionDate:     docFrbr.ExpressionDate,
		ExpressionVersion:  docFrbr.ExpressionVersion,
	}
	if err := tx.Create(docVersion).Error; err != nil {
		return fmt.Errorf("persisting doc expression: %w", err)
	}

	pkg.DocVersionUUID = &docVersion.UUID
	return tx.Model(pkg).Update("doc_version_uuid", pkg.DocVersionUUID).Error
}
