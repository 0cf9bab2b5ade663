package api

import (
	"fmt"
	"net/http"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/packages"
)

// ActPackagesPostRequest is the body for building an act package.
type ActPackagesPostRequest struct {
	PackageType models.PackageType `json:"packageType"`
}

// ActPackagesPostResponse returns the built package and its delivery zip
// metadata.
type ActPackagesPostResponse struct {
	Package  *models.ActPackage `json:"package"`
	ZipUUID  string             `json:"zipUuid"`
	Filename string             `json:"filename"`
	Checksum string             `json:"checksum"`
}

// ActPackagesHandler builds act packages for a publication version (POST) and
// lists the packages built for it (GET).
func ActPackagesHandler(srv server.Server) http.Handler {
	builder, err := packages.NewActBuilder(packages.ActBuilderConfig{
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
			srv.Logger.Error("act package builder unavailable",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		versionUUID, err := parseResourceUUIDFromURL(r.URL.Path, "act-packages", "")
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}
		logArgs = append(logArgs, "version_uuid", versionUUID)

		switch r.Method {
		case "GET":
			list, err := models.ListActPackagesForVersion(srv.DB, versionUUID)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, list)

		case "POST":
			req := &ActPackagesPostRequest{}
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

			result, err := builder.Build(r.Context(), versionUUID, req.PackageType)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}

			srv.Logger.Info("built act package",
				append([]interface{}{
					"package_uuid", result.Package.UUID,
					"package_type", req.PackageType,
				}, logArgs...)...)
			respondJSON(w, srv.Logger, http.StatusCreated, ActPackagesPostResponse{
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
