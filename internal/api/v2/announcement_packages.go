package api

import (
	"fmt"
	"net/http"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/packages"
)

// AnnouncementPackagesPostRequest is the body for building an announcement
// package.
type AnnouncementPackagesPostRequest struct {
	PackageType models.PackageType `json:"packageType"`
}

// AnnouncementPackagesPostResponse returns the built package and its delivery
// zip metadata.
type AnnouncementPackagesPostResponse struct {
	Package  *models.AnnouncementPackage `json:"package"`
	ZipUUID  string                      `json:"zipUuid"`
	Filename string                      `json:"filename"`
	Checksum string                      `json:"checksum"`
}

// AnnouncementPackagesHandler builds announcement packages for an
// announcement (POST) and lists the packages built for it (GET).
func AnnouncementPackagesHandler(srv server.Server) http.Handler {
	builder, err := packages.NewAnnouncementBuilder(packages.AnnouncementBuilderConfig{
		DB:       srv.DB,
		Renderer: srv.Renderer,
		Logger:   srv.Logger,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}
		if err != nil {
			srv.Logger.Error("announcement package builder unavailable",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		announcementUUID, err := parseResourceUUIDFromURL(
			r.URL.Path, "announcement-packages", "")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "announcement_uuid", announcementUUID)

		switch r.Method {
		case "GET":
			list, err := models.ListAnnouncementPackagesForAnnouncement(
				srv.DB, announcementUUID)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, list)

		case "POST":
			req := &AnnouncementPackagesPostRequest{}
			if err := decodeRequest(r, req); err != nil {
				srv.Logger.Warn("error decoding request",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}
			if !req.PackageType.IsValid() {
				http.Error(w, "Bad request: unknown package type",
					http.StatusBadRequest)
				return
			}

			result, err := builder.Build(r.Context(), announcementUUID, req.PackageType)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}

			srv.Logger.Info("built announcement package",
				append([]interface{}{
					"package_uuid", result.Package.UUID,
					"package_type", req.PackageType,
				}, logArgs...)...)
			respondJSON(w, srv.Logger, http.StatusCreated, AnnouncementPackagesPostResponse{
				Package:  result.Package,
				ZipUUID:  result.Package.ZipUUID.String(),
				Filename: result.Zip.Filename,
				Checksum: result.Zip.Checksum,
			})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
