package packages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/renderer/mock"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// publishedFixture builds a publication act package and settles it the way a
// conclusive VALID report would, so an announcement can follow.
func publishedFixture(t *testing.T, db *gorm.DB) (*fixture, *models.Announcement) {
	t.Helper()

	fx := createFixture(t, db, fixtureOptions{hasState: true, procedureType: models.FinalProcedureType})
	builder := newActBuilder(t, db, mock.NewRenderer())

	result, err := builder.Build(context.Background(), fx.Version.UUID, models.PublicationPackageType)
	require.NoError(t, err)

	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)

	var created models.EnvironmentState
	require.NoError(t, db.First(&created, "uuid = ?", *result.Package.CreatedEnvironmentStateUUID).Error)
	require.NoError(t, created.Activate(db, &env, time.Now()))
	require.NoError(t, db.Model(&env).Update("is_locked", false).Error)
	fx.Environment = &env

	announcementDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	announcement := &models.Announcement{
		UUID:             uuid.New(),
		ActPackageUUID:   result.Package.UUID,
		PublicationUUID:  fx.Publication.UUID,
		Metadata:         models.JSON(`{"Official_Title": "Kennisgeving Omgevingsvisie"}`),
		Content:          models.JSON(`{"Texts": []}`),
		AnnouncementDate: &announcementDate,
	}
	require.NoError(t, db.Create(announcement).Error)

	return fx, announcement
}

func TestBuildAnnouncementPublicationPackage(t *testing.T) {
	db := setupTestDB(t)
	fx, announcement := publishedFixture(t, db)

	builder, err := NewAnnouncementBuilder(AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), announcement.UUID, models.PublicationPackageType)
	require.NoError(t, err)

	pkg := result.Package
	assert.Equal(t, models.ReportStatusPending, pkg.ReportStatus)
	require.NotNil(t, pkg.CreatedEnvironmentStateUUID)
	require.NotNil(t, pkg.DocVersionUUID)
	assert.Contains(t, result.Zip.Filename, "akn_nl_doc_pv28-pub-")

	var env models.Environment
	require.NoError(t, db.First(&env, "uuid = ?", fx.Environment.UUID).Error)
	assert.True(t, env.IsLocked)

	// The derived snapshot records the announcement next to the act.
	var created models.EnvironmentState
	require.NoError(t, db.First(&created, "uuid = ?", *pkg.CreatedEnvironmentStateUUID).Error)
	assert.False(t, created.IsActivated)

	var envelope state.Envelope
	require.NoError(t, created.State.Unmarshal(&envelope))
	assert.Equal(t, state.CurrentSchemaVersion, envelope.SchemaVersion)
}

func TestBuildAnnouncementValidationRecordsNoDocHistory(t *testing.T) {
	db := setupTestDB(t)
	_, announcement := publishedFixture(t, db)

	builder, err := NewAnnouncementBuilder(AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), announcement.UUID, models.ValidationPackageType)
	require.NoError(t, err)

	// A validation run leaves the counting-based identifier sequence alone.
	assert.Nil(t, result.Package.DocVersionUUID)
	assert.Nil(t, result.Package.CreatedEnvironmentStateUUID)

	var docs int64
	require.NoError(t, db.Model(&models.Doc{}).Count(&docs).Error)
	assert.Zero(t, docs)
}

func TestBuildAnnouncementRequiresPublicationHistory(t *testing.T) {
	db := setupTestDB(t)
	fx := createFixture(t, db, fixtureOptions{hasState: true, procedureType: models.FinalProcedureType})

	// An act package without history rows, like a validation-only build.
	zip := &models.PackageZip{UUID: uuid.New(), Filename: "x.zip", Binary: []byte("x"), Checksum: "abc"}
	require.NoError(t, db.Create(zip).Error)
	actPackage := &models.ActPackage{
		UUID:                   uuid.New(),
		PublicationVersionUUID: fx.Version.UUID,
		ZipUUID:                zip.UUID,
		PackageType:            models.ValidationPackageType,
		ReportStatus:           models.ReportStatusNotApplicable,
		DeliveryID:             uuid.New().String(),
	}
	require.NoError(t, db.Create(actPackage).Error)

	announcement := &models.Announcement{
		UUID:            uuid.New(),
		ActPackageUUID:  actPackage.UUID,
		PublicationUUID: fx.Publication.UUID,
	}
	require.NoError(t, db.Create(announcement).Error)

	builder, err := NewAnnouncementBuilder(AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), announcement.UUID, models.PublicationPackageType)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "no publication history")
}

func TestBuildAnnouncementLockedAnnouncement(t *testing.T) {
	db := setupTestDB(t)
	_, announcement := publishedFixture(t, db)
	require.NoError(t, db.Model(announcement).Update("is_locked", true).Error)

	builder, err := NewAnnouncementBuilder(AnnouncementBuilderConfig{DB: db, Renderer: mock.NewRenderer()})
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), announcement.UUID, models.PublicationPackageType)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "announcement is locked")
}
