package api

import (
	"net/http"
	"strings"

	"github.com/provincie-forge/publicatie/internal/server"
)

// New returns the /api/v2 route mux. Package routes and their nested report
// routes share a prefix, so the mux dispatches on the "/reports" suffix.
func New(srv server.Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/api/v2/environments", EnvironmentsHandler(srv))

	actPackages := ActPackagesHandler(srv)
	actReports := ActPackageReportsHandler(srv)
	mux.Handle("/api/v2/act-packages/", dispatchReports(actPackages, actReports))

	announcementPackages := AnnouncementPackagesHandler(srv)
	announcementReports := AnnouncementPackageReportsHandler(srv)
	mux.Handle("/api/v2/announcement-packages/",
		dispatchReports(announcementPackages, announcementReports))

	mux.Handle("/api/v2/publication-versions/", AttachmentsHandler(srv))
	mux.Handle("/api/v2/package-zips/", PackageZipsHandler(srv))
	mux.Handle("/api/v2/storage-files/", StorageFilesHandler(srv))

	return mux
}

func dispatchReports(packages, reports http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/reports") {
			reports.ServeHTTP(w, r)
			return
		}
		packages.ServeHTTP(w, r)
	})
}
