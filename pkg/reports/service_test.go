package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/packages"
	"github.com/provincie-forge/publicatie/pkg/renderer/mock"
	"github.com/provincie-forge/publicatie/pkg/state"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(models.ModelsToAutoMigrate()...)
	require.NoError(t, err)

	return db
}

type fixture struct {
	Environment *models.Environment
	Publication *models.Publication
	Version     *models.PublicationVersion
	Package     *models.ActPackage
}

// createFixture builds an environment with an initial active state and runs a
// publication build, leaving the package PENDING with a locked environment.
func createFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	return createProcedureFixture(t, db, models.FinalProcedureType)
}

func createProcedureFixture(t *testing.T, db *gorm.DB, procedure models.ProcedureType) *fixture {
	t.Helper()

	env := &models.Environment{
		UUID:         uuid.New(),
		Title:        "Productie",
		ProvinceID:   "pv28",
		AuthorityID:  "0001",
		SubmitterID:  "0001",
		FrbrCountry:  "nl",
		FrbrLanguage: "nld",
		IsActive:     true,
		HasState:     true,
		CanValidate:  true,
		CanPublicate: true,
	}
	require.NoError(t, db.Create(env).Error)

	raw, err := state.Marshal(state.NewInitialState())
	require.NoError(t, err)

	stateRow := &models.EnvironmentState{
		UUID:            uuid.New(),
		EnvironmentUUID: env.UUID,
		State:           raw,
		IsActivated:     true,
	}
	require.NoError(t, db.Create(stateRow).Error)
	env.ActiveStateUUID = &stateRow.UUID
	require.NoError(t, db.Save(env).Error)

	act := &models.Act{
		UUID:            uuid.New(),
		EnvironmentUUID: env.UUID,
		DocumentType:    "omgevingsvisie",
		ProcedureType:   procedure,
		Title:           "Omgevingsvisie",
		IsActive:        true,
		WorkProvinceID:  "pv28",
		WorkCountry:     "nl",
		WorkDate:        "2025",
		WorkOther:       "omgevingsvisie-1",
	}
	require.NoError(t, db.Create(act).Error)

	publication := &models.Publication{
		UUID:            uuid.New(),
		ModuleID:        1,
		Title:           "Omgevingsvisie Gelderland",
		DocumentType:    "omgevingsvisie",
		ProcedureType:   procedure,
		EnvironmentUUID: env.UUID,
		ActUUID:         act.UUID,
	}
	require.NoError(t, db.Create(publication).Error)

	announcementDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	effectiveDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	version := &models.PublicationVersion{
		UUID:             uuid.New(),
		PublicationUUID:  publication.UUID,
		BillMetadata:     models.JSON(`{"Official_Title": "Omgevingsvisie Gelderland", "Quote_Title": "Omgevingsvisie"}`),
		BillCompact:      models.JSON(`{}`),
		Procedural:       models.JSON(`{"Signed_Date": "2025-02-01", "Procedural_Announcement_Date": "2025-02-15"}`),
		AnnouncementDate: &announcementDate,
		EffectiveDate:    &effectiveDate,
		Status:           models.VersionStatusActive,
	}
	require.NoError(t, db.Create(version).Error)

	builder, err := packages.NewActBuilder(packages.ActBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), version.UUID, models.PublicationPackageType)
	require.NoError(t, err)

	return &fixture{
		Environment: env,
		Publication: publication,
		Version:     version,
		Package:     result.Package,
	}
}

func newService(t *testing.T, db *gorm.DB, debug bool) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{DB: db, Debug: debug})
	require.NoError(t, err)
	return service
}

func TestUploadActReportsValidActivatesState(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: successReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusValid, result.Status)
	assert.Equal(t, 0, result.DuplicateCount)

	// The created state became the active one and the environment unlocked.
	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)
	assert.False(t, env.IsLocked)
	require.NotNil(t, env.ActiveStateUUID)
	assert.Equal(t, *fx.Package.CreatedEnvironmentStateUUID, *env.ActiveStateUUID)

	var used models.EnvironmentState
	require.NoError(t, db.First(&used, "uuid = ?", *fx.Package.UsedEnvironmentStateUUID).Error)
	assert.False(t, used.IsActivated)

	// A final procedure publication completes and locks its version.
	var version models.PublicationVersion
	require.NoError(t, db.First(&version, "uuid = ?", fx.Version.UUID).Error)
	assert.True(t, version.IsLocked)
	assert.Equal(t, models.VersionStatusCompleted, version.Status)
}

func TestUploadActReportsFailedUnlocksWithoutActivation(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: failureReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, result.Status)

	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)
	assert.False(t, env.IsLocked)

	// The previously active state stays active.
	assert.Equal(t, *fx.Package.UsedEnvironmentStateUUID, *env.ActiveStateUUID)

	var version models.PublicationVersion
	require.NoError(t, db.First(&version, "uuid = ?", fx.Version.UUID).Error)
	assert.False(t, version.IsLocked)
	assert.Equal(t, models.VersionStatusPublicationFailed, version.Status)
}

func TestUploadActReportsProgressOnlyStaysPending(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: progressReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, result.Status)

	// Inconclusive, so the environment stays locked.
	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)
	assert.True(t, env.IsLocked)
}

func TestUploadActReportsMixedBatchConcludes(t *testing.T) {
	// A progress file and a conclusive file in one batch. Order between them
	// must not matter.
	cases := []struct {
		name  string
		files func(deliveryID string) []UploadedFile
	}{
		{
			name: "conclusive first",
			files: func(deliveryID string) []UploadedFile {
				return []UploadedFile{
					{Filename: "report-2.xml", Content: successReport(deliveryID)},
					{Filename: "report-1.xml", Content: progressReport(deliveryID)},
				}
			},
		},
		{
			name: "progress first",
			files: func(deliveryID string) []UploadedFile {
				return []UploadedFile{
					{Filename: "report-1.xml", Content: progressReport(deliveryID)},
					{Filename: "report-2.xml", Content: successReport(deliveryID)},
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)
			fx := createFixture(t, db)
			service := newService(t, db, false)

			result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, tc.files(fx.Package.DeliveryID))
			require.NoError(t, err)
			assert.Equal(t, models.ReportStatusValid, result.Status)

			count, err := models.CountActReportsForPackage(db, fx.Package.UUID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})
	}
}

func TestUploadActReportsDuplicateFilenameSkipped(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	content := progressReport(fx.Package.DeliveryID)
	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: content},
	})
	require.NoError(t, err)

	result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: content},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DuplicateCount)

	count, err := models.CountActReportsForPackage(db, fx.Package.UUID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUploadActReportsMalformedAbortsBatch(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: progressReport(fx.Package.DeliveryID)},
		{Filename: "report-2.xml", Content: []byte("<broken")},
	})
	var merr *MalformedReportError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "report-2.xml", merr.Filename)

	// The whole batch rolled back, including the well-formed file.
	count, err := models.CountActReportsForPackage(db, fx.Package.UUID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUploadActReportsDeliveryMismatch(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)

	_, err := newService(t, db, false).UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: successReport("some-other-delivery")},
	})
	var derr *DeliveryMismatchError
	require.ErrorAs(t, err, &derr)

	// Debug mode accepts reports regardless of their delivery id.
	result, err := newService(t, db, true).UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: successReport("some-other-delivery")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusValid, result.Status)
}

func TestUploadActReportsEmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, nil)
	require.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadActReportsStatelessEnvironment(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	require.NoError(t, db.Model(fx.Environment).Update("has_state", false).Error)

	service := newService(t, db, false)
	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: successReport(fx.Package.DeliveryID)},
	})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestUploadActReportsFailedPackageStaysFailed(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)
	service := newService(t, db, false)

	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-1.xml", Content: failureReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)

	// A later success report can not flip a conclusively failed package.
	result, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "report-2.xml", Content: successReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, result.Status)
}

func TestUploadAnnouncementReportsValidLocksAnnouncement(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db)

	// Settle the act package first, then build the announcement package.
	service := newService(t, db, false)
	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "act-report.xml", Content: successReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)

	announcementDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	announcement := &models.Announcement{
		UUID:             uuid.New(),
		ActPackageUUID:   fx.Package.UUID,
		PublicationUUID:  fx.Publication.UUID,
		Metadata:         models.JSON(`{"Official_Title": "Kennisgeving Omgevingsvisie"}`),
		Content:          models.JSON(`{"Texts": []}`),
		AnnouncementDate: &announcementDate,
	}
	require.NoError(t, db.Create(announcement).Error)

	builder, err := packages.NewAnnouncementBuilder(packages.AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	built, err := builder.Build(context.Background(), announcement.UUID, models.PublicationPackageType)
	require.NoError(t, err)

	result, err := service.UploadAnnouncementPackageReports(context.Background(), built.Package.UUID, []UploadedFile{
		{Filename: "doc-report.xml", Content: successReport(built.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusValid, result.Status)

	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)
	assert.False(t, env.IsLocked)
	assert.Equal(t, *built.Package.CreatedEnvironmentStateUUID, *env.ActiveStateUUID)

	var locked models.Announcement
	require.NoError(t, db.First(&locked, "uuid = ?", announcement.UUID).Error)
	assert.True(t, locked.IsLocked)
}

func TestUploadAnnouncementReportsValidCompletesDraftVersion(t *testing.T) {
	db := setupTestDB(t)
	fx := createProcedureFixture(t, db, models.DraftProcedureType)
	service := newService(t, db, false)

	_, err := service.UploadActPackageReports(context.Background(), fx.Package.UUID, []UploadedFile{
		{Filename: "act-report.xml", Content: successReport(fx.Package.DeliveryID)},
	})
	require.NoError(t, err)

	// A draft procedure only completes through its announcement.
	var version models.PublicationVersion
	require.NoError(t, db.First(&version, "uuid = ?", fx.Version.UUID).Error)
	assert.Equal(t, models.VersionStatusPublication, version.Status)

	announcementDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	announcement := &models.Announcement{
		UUID:             uuid.New(),
		ActPackageUUID:   fx.Package.UUID,
		PublicationUUID:  fx.Publication.UUID,
		Metadata:         models.JSON(`{"Official_Title": "Kennisgeving ontwerp Omgevingsvisie"}`),
		Content:          models.JSON(`{"Texts": []}`),
		AnnouncementDate: &announcementDate,
	}
	require.NoError(t, db.Create(announcement).Error)

	builder, err := packages.NewAnnouncementBuilder(packages.AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	built, err := builder.Build(context.Background(), announcement.UUID, models.PublicationPackageType)
	require.NoError(t, err)

	result, err := service.UploadAnnouncementPackageReports(context.Background(), built.Package.UUID, []UploadedFile{
		{Filename: "doc-report.xml", Content: successReport(built.Package.DeliveryID)},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusValid, result.Status)

	require.NoError(t, db.First(&version, "uuid = ?", fx.Version.UUID).Error)
	assert.Equal(t, models.VersionStatusCompleted, version.Status)
}
