package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/config"
	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/renderer/mock"
)

func testServer(t *testing.T) (server.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))

	srv := server.Server{
		Config: &config.Config{
			Debug: false,
			Identity: &config.Identity{
				ProvinceID:   "pv28",
				AuthorityID:  "0001",
				SubmitterID:  "0001",
				FrbrCountry:  "nl",
				FrbrLanguage: "nld",
			},
		},
		DB:       db,
		Renderer: mock.NewRenderer(),
		Logger:   hclog.NewNullLogger(),
	}
	return srv, db
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func createEnvironment(t *testing.T, mux *http.ServeMux, hasState bool) models.Environment {
	t.Helper()
	w := postJSON(t, mux, "/api/v2/environments", EnvironmentsPostRequest{
		Title:        "Productie",
		HasState:     hasState,
		CanValidate:  true,
		CanPublicate: true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env models.Environment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createPublicationVersion(t *testing.T, db *gorm.DB, env models.Environment) models.PublicationVersion {
	t.Helper()

	act := &models.Act{
		UUID:            uuid.New(),
		EnvironmentUUID: env.UUID,
		DocumentType:    "omgevingsvisie",
		ProcedureType:   models.FinalProcedureType,
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
		ProcedureType:   models.FinalProcedureType,
		EnvironmentUUID: env.UUID,
		ActUUID:         act.UUID,
	}
	require.NoError(t, db.Create(publication).Error)

	announcementDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	effectiveDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	version := models.PublicationVersion{
		UUID:             uuid.New(),
		PublicationUUID:  publication.UUID,
		BillMetadata:     models.JSON(`{"Official_Title": "Omgevingsvisie Gelderland", "Quote_Title": "Omgevingsvisie"}`),
		BillCompact:      models.JSON(`{}`),
		Procedural:       models.JSON(`{"Signed_Date": "2025-02-01", "Procedural_Announcement_Date": "2025-02-15"}`),
		AnnouncementDate: &announcementDate,
		EffectiveDate:    &effectiveDate,
		Status:           models.VersionStatusActive,
	}
	require.NoError(t, db.Create(&version).Error)
	return version
}

func TestEnvironmentsEndpoint(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	assert.Equal(t, "pv28", env.ProvinceID)
	require.NotNil(t, env.ActiveStateUUID)

	// The initial snapshot exists and is activated.
	var stateRow models.EnvironmentState
	require.NoError(t, db.First(&stateRow, "uuid = ?", *env.ActiveStateUUID).Error)
	assert.True(t, stateRow.IsActivated)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/environments", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Environment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestEnvironmentsEndpointRequiresTitle(t *testing.T) {
	srv, _ := testServer(t)
	mux := New(srv)

	w := postJSON(t, mux, "/api/v2/environments", EnvironmentsPostRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActPackagesEndpointBuilds(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	version := createPublicationVersion(t, db, env)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ActPackagesPostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ReportStatusPending, resp.Package.ReportStatus)
	assert.Len(t, resp.Checksum, 64)

	// A second build against the now locked environment conflicts.
	w = postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The list endpoint shows the one built package.
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID), nil)
	lw := httptest.NewRecorder()
	mux.ServeHTTP(lw, req)
	require.Equal(t, http.StatusOK, lw.Code)

	var list []models.ActPackage
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestActPackagesEndpointValidationFailure(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	version := createPublicationVersion(t, db, env)
	require.NoError(t, db.Model(&version).Update("effective_date", nil).Error)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp validationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Effective_Date", resp.Errors[0].Field)
}

func TestActPackagesEndpointUnknownVersion(t *testing.T) {
	srv, _ := testServer(t)
	mux := New(srv)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", uuid.New()),
		ActPackagesPostRequest{PackageType: models.ValidationPackageType})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPackageZipDownload(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	version := createPublicationVersion(t, db, env)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp ActPackagesPostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v2/package-zips/%s/download", resp.ZipUUID), nil)
	req.Header.Set("X-Downloaded-By", "operator@example.test")
	dw := httptest.NewRecorder()
	mux.ServeHTTP(dw, req)

	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, "application/zip", dw.Header().Get("Content-Type"))
	assert.Equal(t, resp.Checksum, dw.Header().Get("X-Checksum-SHA256"))
	assert.NotEmpty(t, dw.Body.Bytes())

	var zip models.PackageZip
	require.NoError(t, db.First(&zip, "uuid = ?", resp.ZipUUID).Error)
	assert.Equal(t, "operator@example.test", zip.LatestDownloadBy)
	require.NotNil(t, zip.LatestDownloadDate)
}

func TestAttachmentsEndpoint(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, false)
	version := createPublicationVersion(t, db, env)

	content := []byte("<gml>gebied</gml>")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "gebied.gml")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Werkingsgebied"))
	require.NoError(t, mw.Close())

	path := fmt.Sprintf("/api/v2/publication-versions/%s/attachments", version.UUID)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var attachment models.PublicationVersionAttachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attachment))
	assert.Equal(t, "gebied.gml", attachment.Filename)
	assert.Equal(t, "Werkingsgebied", attachment.Title)

	lw := httptest.NewRecorder()
	mux.ServeHTTP(lw, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, lw.Code)
	var listed []models.PublicationVersionAttachment
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	dw := httptest.NewRecorder()
	mux.ServeHTTP(dw, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v2/storage-files/%s/download", attachment.FileUUID), nil))
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, content, dw.Body.Bytes())

	// The stored file is content addressed.
	var file models.StorageFile
	require.NoError(t, db.First(&file, "uuid = ?", attachment.FileUUID).Error)
	assert.Equal(t, file.Checksum[:10], file.Lookup)
	assert.Equal(t, file.Checksum, dw.Header().Get("X-Checksum-SHA256"))
}

func TestAttachmentsEndpointLockedVersion(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, false)
	version := createPublicationVersion(t, db, env)
	require.NoError(t, db.Model(&version).Update("is_locked", true).Error)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "gebied.gml")
	require.NoError(t, err)
	_, err = part.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v2/publication-versions/%s/attachments", version.UUID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

func reportBatch(t *testing.T, filenames []string, contents [][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, name := range filenames {
		part, err := mw.CreateFormFile("reports", name)
		require.NoError(t, err)
		_, err = part.Write(contents[i])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestActPackageReportUpload(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	version := createPublicationVersion(t, db, env)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp ActPackagesPostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	report := []byte(fmt.Sprintf(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb">
  <lvbb:uitkomst>succes</lvbb:uitkomst>
  <lvbb:verslag>
    <lvbb:idLevering>%s</lvbb:idLevering>
    <lvbb:uitkomst>publicatie gelukt</lvbb:uitkomst>
  </lvbb:verslag>
</lvbb:aanleveringResultaat>`, resp.Package.DeliveryID))

	body, contentType := reportBatch(t, []string{"report-1.xml"}, [][]byte{report})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v2/act-packages/%s/reports", resp.Package.UUID), body)
	req.Header.Set("Content-Type", contentType)
	uw := httptest.NewRecorder()
	mux.ServeHTTP(uw, req)
	require.Equal(t, http.StatusOK, uw.Code, uw.Body.String())

	var uploadResult struct {
		Status models.ReportStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(uw.Body.Bytes(), &uploadResult))
	assert.Equal(t, models.ReportStatusValid, uploadResult.Status)

	// The environment unlocked and repointed to the created state.
	var updated models.Environment
	require.NoError(t, db.First(&updated, "uuid = ?", env.UUID).Error)
	assert.False(t, updated.IsLocked)
	assert.Equal(t, *resp.Package.CreatedEnvironmentStateUUID, *updated.ActiveStateUUID)

	// The list endpoint shows the stored report.
	lreq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v2/act-packages/%s/reports", resp.Package.UUID), nil)
	lw := httptest.NewRecorder()
	mux.ServeHTTP(lw, lreq)
	require.Equal(t, http.StatusOK, lw.Code)

	var stored []models.ActPackageReport
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &stored))
	assert.Len(t, stored, 1)
}

func TestActPackageReportUploadMalformed(t *testing.T) {
	srv, db := testServer(t)
	mux := New(srv)

	env := createEnvironment(t, mux, true)
	version := createPublicationVersion(t, db, env)

	w := postJSON(t, mux,
		fmt.Sprintf("/api/v2/act-packages/%s", version.UUID),
		ActPackagesPostRequest{PackageType: models.PublicationPackageType})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp ActPackagesPostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	body, contentType := reportBatch(t,
		[]string{"report-1.xml"}, [][]byte{[]byte("{not xml}")})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v2/act-packages/%s/reports", resp.Package.UUID), body)
	req.Header.Set("Content-Type", contentType)
	uw := httptest.NewRecorder()
	mux.ServeHTTP(uw, req)
	assert.Equal(t, http.StatusBadRequest, uw.Code)
}
