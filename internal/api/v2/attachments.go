package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
)

// maxAttachmentUploadBytes caps a single attachment upload.
const maxAttachmentUploadBytes = 64 << 20

// AttachmentsHandler uploads GIO/GML attachments for a publication version
// (POST, multipart form, file field "file" plus a "title" field) and lists
// the version's attachments (GET). Identical content is stored once and
// shared between versions.
func AttachmentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}

		versionUUID, err := parseResourceUUIDFromURL(
			r.URL.Path, "publication-versions", "attachments")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "version_uuid", versionUUID)

		version, err := models.GetPublicationVersionByUUID(srv.DB, versionUUID)
		if err != nil {
			writeDomainError(w, srv.Logger, err, logArgs...)
			return
		}

		switch r.Method {
		case "GET":
			attachments, err := version.GetAttachments(srv.DB)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, attachments)

		case "POST":
			if version.IsLocked {
				http.Error(w, "Conflict: this publication version is locked",
					http.StatusConflict)
				return
			}

			filename, title, content, err := parseAttachmentUpload(r)
			if err != nil {
				srv.Logger.Warn("error parsing attachment upload",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}

			var attachment *models.PublicationVersionAttachment
			err = srv.DB.Transaction(func(tx *gorm.DB) error {
				file, err := models.StoreFile(tx, filename, "application/octet-stream", content)
				if err != nil {
					return fmt.Errorf("storing attachment file: %w", err)
				}
				attachment = &models.PublicationVersionAttachment{
					PublicationVersionUUID: version.UUID,
					FileUUID:               file.UUID,
					Filename:               filename,
					Title:                  title,
					CreatedAt:              time.Now().UTC(),
				}
				return tx.Create(attachment).Error
			})
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}

			srv.Logger.Info("attachment uploaded",
				append([]interface{}{
					"attachment_id", attachment.ID,
					"file_uuid", attachment.FileUUID,
				}, logArgs...)...)
			respondJSON(w, srv.Logger, http.StatusCreated, attachment)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// StorageFilesHandler downloads a stored attachment file by its UUID.
func StorageFilesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		fileUUID, err := parseResourceUUIDFromURL(
			r.URL.Path, "storage-files", "download")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "file_uuid", fileUUID)

		file, err := models.GetStorageFileByUUID(srv.DB, fileUUID)
		if err != nil {
			writeDomainError(w, srv.Logger, err, logArgs...)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", file.Filename))
		w.Header().Set("X-Checksum-SHA256", file.Checksum)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(file.Binary); err != nil {
			srv.Logger.Error("error writing file response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// parseAttachmentUpload reads the multipart "file" and "title" fields of an
// attachment upload request.
func parseAttachmentUpload(r *http.Request) (filename, title string, content []byte, err error) {
	if err := r.ParseMultipartForm(maxAttachmentUploadBytes); err != nil {
		return "", "", nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		return "", "", nil, fmt.Errorf("missing file field")
	}

	header := r.MultipartForm.File["file"][0]
	f, err := header.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("opening uploaded file %s: %w", header.Filename, err)
	}
	defer f.Close()
	content, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading uploaded file %s: %w", header.Filename, err)
	}

	title = r.FormValue("title")
	if title == "" {
		title = header.Filename
	}
	return header.Filename, title, content, nil
}
