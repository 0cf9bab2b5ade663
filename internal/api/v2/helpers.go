package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/packages"
	"github.com/provincie-forge/publicatie/pkg/renderer"
	"github.com/provincie-forge/publicatie/pkg/reports"
	"github.com/provincie-forge/publicatie/pkg/validator"
)

// HTTP status codes for render-service failures, distinct from plain 4xx so
// callers can tell a misconfigured delivery from a rejected render.
const (
	statusRendererConfiguration = 442
	statusRendererRejected      = 443
)

// decodeRequest decodes a JSON request body into reqStruct, rejecting unknown
// fields.
func decodeRequest(r *http.Request, reqStruct interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(reqStruct)
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, log hclog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response", "error", err)
	}
}

// parseResourceUUIDFromURL parses a URL path with the format
// "/api/v2/{apiPath}/{resourceUUID}[/{suffix}]" and returns the resource UUID.
func parseResourceUUIDFromURL(url, apiPath, suffix string) (uuid.UUID, error) {
	url = strings.TrimPrefix(url, fmt.Sprintf("/api/v2/%s", apiPath))
	if suffix != "" {
		url = strings.TrimSuffix(url, "/"+suffix)
	}

	var resultPath []string
	for _, v := range strings.Split(url, "/") {
		if v != "" {
			resultPath = append(resultPath, v)
		}
	}
	if len(resultPath) != 1 {
		return uuid.Nil, fmt.Errorf("invalid URL path")
	}

	id, err := uuid.Parse(resultPath[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid resource UUID: %w", err)
	}
	return id, nil
}

// validationErrorResponse carries the field errors of a rejected build.
type validationErrorResponse struct {
	Message string                 `json:"message"`
	Errors  []validator.FieldError `json:"errors"`
}

// writeDomainError translates the domain error taxonomy to HTTP statuses:
// guard conflicts and validation failures map to 409, malformed uploads to
// 400, render-service failures to 442/443, unknown resources to 404 and
// everything else to 500.
func writeDomainError(w http.ResponseWriter, log hclog.Logger, err error, logArgs ...interface{}) {
	var (
		conflictErr       *packages.ConflictError
		validationErr     *packages.ValidationFailedError
		reportConflictErr *reports.ConflictError
		malformedErr      *reports.MalformedReportError
		mismatchErr       *reports.DeliveryMismatchError
		configErr         *renderer.ConfigurationError
		renderErr         *renderer.RenderError
	)

	switch {
	case errors.As(err, &conflictErr):
		http.Error(w, conflictErr.Message, http.StatusConflict)

	case errors.As(err, &validationErr):
		respondJSON(w, log, http.StatusConflict, validationErrorResponse{
			Message: "publication version failed validation",
			Errors:  validationErr.Errors,
		})

	case errors.As(err, &reportConflictErr):
		http.Error(w, reportConflictErr.Message, http.StatusConflict)

	case errors.As(err, &malformedErr):
		http.Error(w, malformedErr.Error(), http.StatusBadRequest)

	case errors.As(err, &mismatchErr):
		http.Error(w, mismatchErr.Error(), http.StatusBadRequest)

	case errors.Is(err, reports.ErrNoFiles):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.As(err, &configErr):
		http.Error(w, configErr.Error(), statusRendererConfiguration)

	case errors.As(err, &renderErr):
		http.Error(w, renderErr.Error(), statusRendererRejected)

	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "Resource not found", http.StatusNotFound)

	default:
		log.Error("request failed", append([]interface{}{"error", err}, logArgs...)...)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
