package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/internal/server"
	"github.com/provincie-forge/publicatie/pkg/models"
	"github.com/provincie-forge/publicatie/pkg/state"
)

// EnvironmentsPostRequest is the body for creating an environment. Identity
// fields default to the configured provincial identity.
type EnvironmentsPostRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ProvinceID   string `json:"provinceId,omitempty"`
	AuthorityID  string `json:"authorityId,omitempty"`
	SubmitterID  string `json:"submitterId,omitempty"`
	FrbrCountry  string `json:"frbrCountry,omitempty"`
	FrbrLanguage string `json:"frbrLanguage,omitempty"`
	HasState     bool   `json:"hasState"`
	CanValidate  bool   `json:"canValidate"`
	CanPublicate bool   `json:"canPublicate"`
}

// EnvironmentsHandler creates and lists publication environments. Creating an
// environment with state provisions the initial snapshot in the same
// transaction.
func EnvironmentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
		}

		switch r.Method {
		case "GET":
			environments, err := models.ListEnvironments(srv.DB)
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}
			respondJSON(w, srv.Logger, http.StatusOK, environments)

		case "POST":
			req := &EnvironmentsPostRequest{}
			if err := decodeRequest(r, req); err != nil {
				srv.Logger.Warn("error decoding request",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}
			if req.Title == "" {
				http.Error(w, "Bad request: title is required",
					http.StatusBadRequest)
				return
			}

			identity := srv.Config.Identity
			env := &models.Environment{
				UUID:         uuid.New(),
				Title:        req.Title,
				Description:  req.Description,
				ProvinceID:   valueOr(req.ProvinceID, identity.ProvinceID),
				AuthorityID:  valueOr(req.AuthorityID, identity.AuthorityID),
				SubmitterID:  valueOr(req.SubmitterID, identity.SubmitterID),
				FrbrCountry:  valueOr(req.FrbrCountry, identity.FrbrCountry),
				FrbrLanguage: valueOr(req.FrbrLanguage, identity.FrbrLanguage),
				IsActive:     true,
				HasState:     req.HasState,
				CanValidate:  req.CanValidate,
				CanPublicate: req.CanPublicate,
			}

			err := srv.DB.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(env).Error; err != nil {
					return fmt.Errorf("creating environment: %w", err)
				}
				if !env.HasState {
					return nil
				}
				return provisionInitialState(tx, env)
			})
			if err != nil {
				writeDomainError(w, srv.Logger, err, logArgs...)
				return
			}

			srv.Logger.Info("created environment",
				append([]interface{}{
					"environment_uuid", env.UUID,
					"has_state", env.HasState,
				}, logArgs...)...)
			respondJSON(w, srv.Logger, http.StatusCreated, env)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// provisionInitialState seeds an empty activated snapshot for a stateful
// environment.
func provisionInitialState(tx *gorm.DB, env *models.Environment) error {
	raw, err := state.Marshal(state.NewInitialState())
	if err != nil {
		return fmt.Errorf("marshaling initial state: %w", err)
	}

	stateRow := &models.EnvironmentState{
		UUID:            uuid.New(),
		EnvironmentUUID: env.UUID,
		State:           raw,
		IsActivated:     true,
	}
	if err := tx.Create(stateRow).Error; err != nil {
		return fmt.Errorf("creating initial state: %w", err)
	}

	env.ActiveStateUUID = &stateRow.UUID
	return tx.Model(env).Update("active_state_uuid", stateRow.UUID).Error
}

func valueOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
