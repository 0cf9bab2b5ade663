package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
)

// PackageZipsHandler downloads delivery zips. Every download is recorded on
// the zip row so operators can see whether a package ever left the system.
func PackageZipsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		zipUUID, err := parseResourceUUIDFromURL(
			r.URL.Path, "package-zips", "download")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "zip_uuid", zipUUID)

		zip, err := models.GetPackageZipByUUID(srv.DB, zipUUID)
		if err != nil {
			writeDomainError(w, srv.Logger, err, logArgs...)
			return
		}

		downloadedBy := r.Header.Get("X-Downloaded-By")
		if downloadedBy == "" {
			downloadedBy = r.RemoteAddr
		}
		if err := zip.MarkDownloaded(srv.DB, downloadedBy, time.Now().UTC()); err != nil {
			writeDomainError(w, srv.Logger, err, logArgs...)
			return
		}

		srv.Logger.Info("package zip downloaded",
			append([]interface{}{"downloaded_by", downloadedBy}, logArgs...)...)

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", zip.Filename))
		w.Header().Set("X-Checksum-SHA256", zip.Checksum)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(zip.Binary); err != nil {
			srv.Logger.Error("error writing zip response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}
