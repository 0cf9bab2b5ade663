package models

// PackageType distinguishes a dry-run validation delivery from a real
// publication delivery to the national platform.
type PackageType string

const (
	ValidationPackageType  PackageType = "VALIDATION"
	PublicationPackageType PackageType = "PUBLICATION"
)

// IsValid returns true if this is a recognized package type.
func (pt PackageType) IsValid() bool {
	switch pt {
	case ValidationPackageType, PublicationPackageType:
		return true
	default:
		return false
	}
}

// Abbreviation returns the three letter package type code used in the
// delivery filename convention.
func (pt PackageType) Abbreviation() string {
	switch pt {
	case ValidationPackageType:
		return "val"
	case PublicationPackageType:
		return "pub"
	default:
		return "unk"
	}
}

// ReportStatus tracks the reconciliation state of a package against the
// acknowledgement reports uploaded for it.
//
// Packages built against a stateless environment start and stay at
// NOT_APPLICABLE. Stateful packages start PENDING and transition exactly once,
// to VALID or FAILED, when a conclusive report batch arrives.
type ReportStatus string

const (
	ReportStatusNotApplicable ReportStatus = "NOT_APPLICABLE"
	ReportStatusPending       ReportStatus = "PENDING"
	ReportStatusValid         ReportStatus = "VALID"
	ReportStatusFailed        ReportStatus = "FAILED"
)

// IsConclusive returns true for the terminal reconciliation states.
func (rs ReportStatus) IsConclusive() bool {
	return rs == ReportStatusValid || rs == ReportStatusFailed
}

// ProcedureType is the legal procedure a publication runs under. A DRAFT
// (ontwerp) publication carries fewer mandatory procedural dates than a FINAL
// (definitief) one.
type ProcedureType string

const (
	DraftProcedureType ProcedureType = "DRAFT"
	FinalProcedureType ProcedureType = "FINAL"
)

// VersionStatus is the lifecycle status of a publication version.
type VersionStatus string

const (
	VersionStatusNotApplicable     VersionStatus = "NOT_APPLICABLE"
	VersionStatusActive            VersionStatus = "ACTIVE"
	VersionStatusValidation        VersionStatus = "VALIDATION"
	VersionStatusValidationFailed  VersionStatus = "VALIDATION_FAILED"
	VersionStatusPublication       VersionStatus = "PUBLICATION"
	VersionStatusPublicationFailed VersionStatus = "PUBLICATION_FAILED"
	VersionStatusCompleted         VersionStatus = "COMPLETED"
)

// FailedVariant maps a package type to the version status that records a
// conclusive failed delivery of that package type.
func (pt PackageType) FailedVariant() VersionStatus {
	if pt == ValidationPackageType {
		return VersionStatusValidationFailed
	}
	return VersionStatusPublicationFailed
}
