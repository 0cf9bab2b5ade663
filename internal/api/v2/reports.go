package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/reports"
)

// maxReportUploadBytes caps a single acknowledgement batch upload.
const maxReportUploadBytes = 32 << 20

// ActPackageReportsHandler uploads acknowledgement report batches for an act
// package (POST, multipart form, field "reports") and lists stored reports
// (GET).
func ActPackageReportsHandler(srv server.Server) http.Handler {
	service, err := reports.NewService(reports.ServiceConfig{
		DB:     srv.DB,
		Debug:  srv.Config.Debug,
		Logger: srv.Logger,
	})

	return reportsHandler(srv, "act-packages", err,
		func(db *gorm.DB, packageUUID uuid.UUID) (interface{}, error) {
			return models.ListActReports(db, packageUUID)
		},
		func(r *http.Request, packageUUID uuid.UUID, files []reports.UploadedFile) (*reports.UploadResult, error) {
			return service.UploadActPackageReports(r.Context(), packageUUID, files)
		})
}

// AnnouncementPackageReportsHandler is the announcement-side mirror of
// ActPackageReportsHandler.
func AnnouncementPackageReportsHandler(srv server.Server) http.Handler {
	service, err := reports.NewService(reports.ServiceConfig{
		DB:     srv.DB,
		Debug:  srv.Config.Debug,
		Logger: srv.Logger,
	})

	return reportsHandler(srv, "announcement-packages", err,
		func(db *gorm.DB, packageUUID uuid.UUID) (interface{}, error) {
			return models.ListAnnouncementReports(db, packageUUID)
		},
		func(r *http.Request, packageUUID uuid.UUID, files []reports.UploadedFile) (*reports.UploadResult, error) {
			return service.UploadAnnouncementPackageReports(r.Context(), packageUUID, files)
		})
}

func reportsHandler(
	srv server.Server,
	apiPath string,
	initErr error,
	list func(db *gorm.DB, packageUUID uuid.UUID) (interface{}, error),
	upload func(r *http.Request, packageUUID uuid.UUID, files []reports.UploadedFile) (*reports.UploadResult, error),
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}
		if initErr != nil {
			srv.Logger.Error("report service unavailable",
				append([]interface{}{"error", initErr}, logArgs...)...)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		packageUUID, err := parseResourceUUIDFromURL(r.URL.Path, apiPath, "reports")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "package_uuid", packageUUID)

		switch r.Method {
		case "GET":
			stored, err := list(srv.DB, packageUUID)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, stored)

		case "POST":
			files, err := parseReportUpload(r)
			if err != nil {
				srv.Logger.Warn("error parsing report upload",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}

			result, err := upload(r, packageUUID, files)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, result)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// parseReportUpload reads the multipart "reports" file fields of an upload
// request.
func parseReportUpload(r *http.Request) ([]reports.UploadedFile, error) {
	if err := r.ParseMultipartForm(maxReportUploadBytes); err != nil {
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("missing multipart form")
	}

	var files []reports.UploadedFile
	for _, header := range r.MultipartForm.File["reports"] {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("opening uploaded file %s: %w", header.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading uploaded file %s: %w", header.Filename, err)
		}
		files = append(files, reports.UploadedFile{
			Filename: header.Filename,
			Content:  content,
		})
	}
	return files, nil
}
