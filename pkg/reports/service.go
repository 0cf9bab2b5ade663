package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// ErrNoFiles rejects an upload without any files.
var ErrNoFiles = errors.New("missing uploaded files")

// ConflictError rejects an upload for a package whose environment keeps no
// state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DeliveryMismatchError rejects a report whose idLevering does not correlate
// to the package it was uploaded for.
type DeliveryMismatchError struct {
	Filename string
}

func (e *DeliveryMismatchError) Error() string {
	return fmt.Sprintf("report %s idLevering does not match the package delivery", e.Filename)
}

// UploadedFile is one acknowledgement file of a batch.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// UploadResult summarizes a processed batch.
type UploadResult struct {
	Status         models.ReportStatus `json:"status"`
	DuplicateCount int                 `json:"duplicateCount"`
}

// runningStatus accumulates the batch outcome across files.
type runningStatus struct {
	status     models.ReportStatus
	conclusive bool
}

// Service processes acknowledgement report batches. One transaction per
// batch: either every new report row and the resulting status transition
// commit together, or nothing does.
type Service struct {
	db     *gorm.DB
	parser *Parser
	debug  bool
	logger hclog.Logger
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	DB *gorm.DB

	// Debug skips the delivery-ID correlation check, so platform test
	// reports can be replayed against any package.
	Debug  bool
	Logger hclog.Logger // Optional
}

// NewService creates a new report reconciliation service.
func NewService(config ServiceConfig) (*Service, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	return &Service{
		db:     config.DB,
		parser: NewParser(),
		debug:  config.Debug,
		logger: config.Logger.Named("report-service"),
	}, nil
}

// UploadActPackageReports processes a batch of acknowledgement files for an
// act package.
func (s *Service) UploadActPackageReports(ctx context.Context, packageUUID uuid.UUID, files []UploadedFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var result *UploadResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pkg, err := models.GetActPackageByUUID(tx, packageUUID)
		if err != nil {
			return fmt.Errorf("loading act package: %w", err)
		}
		version := pkg.PublicationVersion
		environment := version.Publication.Environment

		if !environment.HasState {
			return &ConflictError{Message: "can not upload reports for a stateless environment"}
		}

		starting := pkg.ReportStatus
		running := runningStatus{status: starting}
		duplicates := 0

		for _, file := range files {
			existing, err := models.CountActReportsByFilename(tx, pkg.UUID, file.Filename)
			if err != nil {
				return fmt.Errorf("checking for duplicate report: %w", err)
			}
			if existing > 0 {
				duplicates++
				continue
			}

			parsed, err := s.parseFile(file, pkg.DeliveryID)
			if err != nil {
				return err
			}

			report := &models.ActPackageReport{
				UUID:           uuid.New(),
				ActPackageUUID: pkg.UUID,
				ReportStatus:   parsed.Status,
				Filename:       file.Filename,
				SourceDocument: string(file.Content),
				MainOutcome:    parsed.MainOutcome,
				SubDeliveryID:  parsed.SubDeliveryID,
				SubProgress:    parsed.SubProgress,
				SubOutcome:     parsed.SubOutcome,
			}
			if err := tx.Create(report).Error; err != nil {
				return fmt.Errorf("persisting report: %w", err)
			}

			running = updateRunningStatus(running, starting, parsed)
		}

		if running.conclusive && running.status != starting {
			if err := s.applyActStatus(tx, pkg, version, environment, running.status); err != nil {
				return err
			}
		}

		result = &UploadResult{Status: pkg.ReportStatus, DuplicateCount: duplicates}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("processed act package report batch",
		"package_uuid", packageUUID,
		"files", len(files),
		"duplicates", result.DuplicateCount,
		"status", result.Status,
	)
	return result, nil
}

// UploadAnnouncementPackageReports processes a batch of acknowledgement files
// for an announcement package.
func (s *Service) UploadAnnouncementPackageReports(ctx context.Context, packageUUID uuid.UUID, files []UploadedFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var result *UploadResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pkg, err := models.GetAnnouncementPackageByUUID(tx, packageUUID)
		if err != nil {
			return fmt.Errorf("loading announcement package: %w", err)
		}
		announcement := pkg.Announcement
		environment := announcement.Publication.Environment

		if !environment.HasState {
			return &ConflictError{Message: "can not upload reports for a stateless environment"}
		}

		starting := pkg.ReportStatus
		running := runningStatus{status: starting}
		duplicates := 0

		for _, file := range files {
			existing, err := models.CountAnnouncementReportsByFilename(tx, pkg.UUID, file.Filename)
			if err != nil {
				return fmt.Errorf("checking for duplicate report: %w", err)
			}
			if existing > 0 {
				duplicates++
				continue
			}

			parsed, err := s.parseFile(file, pkg.DeliveryID)
			if err != nil {
				return err
			}

			report := &models.AnnouncementPackageReport{
				UUID:                    uuid.New(),
				AnnouncementPackageUUID: pkg.UUID,
				ReportStatus:            parsed.Status,
				Filename:                file.Filename,
				SourceDocument:          string(file.Content),
				MainOutcome:             parsed.MainOutcome,
				SubDeliveryID:           parsed.SubDeliveryID,
				SubProgress:             parsed.SubProgress,
				SubOutcome:              parsed.SubOutcome,
			}
			if err := tx.Create(report).Error; err != nil {
				return fmt.Errorf("persisting report: %w", err)
			}

			running = updateRunningStatus(running, starting, parsed)
		}

		if running.conclusive && running.status != starting {
			if err := s.applyAnnouncementStatus(tx, pkg, announcement, environment, running.status); err != nil {
				return err
			}
		}

		result = &UploadResult{Status: pkg.ReportStatus, DuplicateCount: duplicates}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("processed announcement package report batch",
		"package_uuid", packageUUID,
		"files", len(files),
		"duplicates", result.DuplicateCount,
		"status", result.Status,
	)
	return result, nil
}

func (s *Service) parseFile(file UploadedFile, deliveryID string) (*ParsedReport, error) {
	parsed, err := s.parser.Parse(file.Filename, file.Content)
	if err != nil {
		return nil, err
	}
	if !s.debug && parsed.SubDeliveryID != deliveryID {
		return nil, &DeliveryMismatchError{Filename: file.Filename}
	}
	return parsed, nil
}

// updateRunningStatus folds one parsed report into the batch accumulator. A
// failed start or a failed report is conclusively FAILED; a valid report with
// a non-empty sub-outcome is conclusively VALID. Everything else leaves the
// accumulator untouched.
func updateRunningStatus(running runningStatus, starting models.ReportStatus, report *ParsedReport) runningStatus {
	if starting == models.ReportStatusFailed {
		return runningStatus{status: models.ReportStatusFailed, conclusive: true}
	}
	if report.Status == models.ReportStatusFailed {
		return runningStatus{status: models.ReportStatusFailed, conclusive: true}
	}
	if report.Status == models.ReportStatusValid && report.SubOutcome != "" {
		return runningStatus{status: models.ReportStatusValid, conclusive: true}
	}
	return running
}

func (s *Service) applyActStatus(tx *gorm.DB, pkg *models.ActPackage, version *models.PublicationVersion, environment *models.Environment, status models.ReportStatus) error {
	pkg.ReportStatus = status
	if err := tx.Model(pkg).Update("report_status", status).Error; err != nil {
		return fmt.Errorf("updating package status: %w", err)
	}

	// A package that created no state, like a validation build, needs no
	// environment bookkeeping.
	if pkg.CreatedEnvironmentStateUUID == nil {
		return nil
	}

	switch status {
	case models.ReportStatusFailed:
		if err := tx.Model(environment).Update("is_locked", false).Error; err != nil {
			return fmt.Errorf("unlocking environment: %w", err)
		}
		return tx.Model(version).Update("status", pkg.PackageType.FailedVariant()).Error

	case models.ReportStatusValid:
		if pkg.CreatedEnvironmentState == nil {
			return fmt.Errorf("package %s has no loaded created state", pkg.UUID)
		}
		if err := pkg.CreatedEnvironmentState.Activate(tx, environment, time.Now().UTC()); err != nil {
			return fmt.Errorf("activating created state: %w", err)
		}
		if err := tx.Model(environment).Update("is_locked", false).Error; err != nil {
			return fmt.Errorf("unlocking environment: %w", err)
		}

		if pkg.PackageType == models.PublicationPackageType {
			updates := map[string]interface{}{"is_locked": true}
			if version.Publication.ProcedureType == models.FinalProcedureType {
				updates["status"] = models.VersionStatusCompleted
			}
			if err := tx.Model(version).Updates(updates).Error; err != nil {
				return fmt.Errorf("locking publication version: %w", err)
			}
		}
	}
	return nil
}

func (s *Service) applyAnnouncementStatus(tx *gorm.DB, pkg *models.AnnouncementPackage, announcement *models.Announcement, environment *models.Environment, status models.ReportStatus) error {
	pkg.ReportStatus = status
	if err := tx.Model(pkg).Update("report_status", status).Error; err != nil {
		return fmt.Errorf("updating package status: %w", err)
	}

	if pkg.CreatedEnvironmentStateUUID == nil {
		return nil
	}

	switch status {
	case models.ReportStatusFailed:
		return tx.Model(environment).Update("is_locked", false).Error

	case models.ReportStatusValid:
		if pkg.CreatedEnvironmentState == nil {
			return fmt.Errorf("package %s has no loaded created state", pkg.UUID)
		}
		if err := pkg.CreatedEnvironmentState.Activate(tx, environment, time.Now().UTC()); err != nil {
			return fmt.Errorf("activating created state: %w", err)
		}
		if err := tx.Model(environment).Update("is_locked", false).Error; err != nil {
			return fmt.Errorf("unlocking environment: %w", err)
		}

		if pkg.PackageType == models.PublicationPackageType {
			if err := tx.Model(announcement).Update("is_locked", true).Error; err != nil {
				return fmt.Errorf("locking announcement: %w", err)
			}

			// The announcement closes out the publication procedure, so the
			// version behind its act package completes here.
			actPackage, err := models.GetActPackageByUUID(tx, announcement.ActPackageUUID)
			if err != nil {
				return fmt.Errorf("loading announcement's act package: %w", err)
			}
			if err := tx.Model(&models.PublicationVersion{}).
				Where("uuid = ?", actPackage.PublicationVersionUUID).
				Update("status", models.VersionStatusCompleted).Error; err != nil {
				return fmt.Errorf("completing publication version: %w", err)
			}
		}
	}
	return nil
}
