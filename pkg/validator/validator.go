// Package validator implements the pre-flight gate deciding whether a
// publication version may be packaged. It is a pure predicate: no database
// access, no side effects. An empty error list means packageable.
package validator

import (
	"fmt"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// FieldError is one structured validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// billMetadata is the subset of the bill metadata blob the gate checks.
type billMetadata struct {
	OfficialTitle string `json:"Official_Title"`
	QuoteTitle    string `json:"Quote_Title"`
}

// procedural is the procedural-dates blob of a publication version.
type procedural struct {
	EnactmentDate              string `json:"Enactment_Date"`
	SignedDate                 string `json:"Signed_Date"`
	ProceduralAnnouncementDate string `json:"Procedural_Announcement_Date"`
}

// Validator validates a publication version against the DRAFT or FINAL
// schema. FINAL additionally requires an effective date.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate returns the schema violations of a publication version. The
// version's Publication must be loaded; its procedure type selects the
// schema.
func (v *Validator) Validate(version *models.PublicationVersion) []FieldError {
	var errs []FieldError

	procedureType := models.DraftProcedureType
	if version.Publication != nil {
		procedureType = version.Publication.ProcedureType
	}

	errs = append(errs, v.validateBillMetadata(version)...)
	errs = append(errs, v.validateProcedural(version)...)

	if version.AnnouncementDate == nil {
		errs = append(errs, FieldError{
			Field:   "Announcement_Date",
			Message: "announcement date is required",
		})
	}

	if procedureType == models.FinalProcedureType && version.EffectiveDate == nil {
		errs = append(errs, FieldError{
			Field:   "Effective_Date",
			Message: "effective date is required for a final procedure",
		})
	}

	return errs
}

func (v *Validator) validateBillMetadata(version *models.PublicationVersion) []FieldError {
	var meta billMetadata
	if len(version.BillMetadata) == 0 {
		return []FieldError{{Field: "Bill_Metadata", Message: "bill metadata is required"}}
	}
	if err := version.BillMetadata.Unmarshal(&meta); err != nil {
		return []FieldError{{Field: "Bill_Metadata", Message: fmt.Sprintf("invalid bill metadata: %v", err)}}
	}

	err := validation.ValidateStruct(&meta,
		validation.Field(&meta.OfficialTitle, validation.Required),
		validation.Field(&meta.QuoteTitle, validation.Required),
	)
	return fieldErrors("Bill_Metadata", err)
}

func (v *Validator) validateProcedural(version *models.PublicationVersion) []FieldError {
	var proc procedural
	if len(version.Procedural) == 0 {
		return []FieldError{{Field: "Procedural", Message: "procedural dates are required"}}
	}
	if err := version.Procedural.Unmarshal(&proc); err != nil {
		return []FieldError{{Field: "Procedural", Message: fmt.Sprintf("invalid procedural data: %v", err)}}
	}

	err := validation.ValidateStruct(&proc,
		validation.Field(&proc.EnactmentDate, validation.By(optionalDate)),
		validation.Field(&proc.SignedDate, validation.Required, validation.By(optionalDate)),
		validation.Field(&proc.ProceduralAnnouncementDate, validation.Required, validation.By(optionalDate)),
	)
	return fieldErrors("Procedural", err)
}

// optionalDate accepts an empty value or anything that parses as a date and
// normalizes to YYYY-MM-DD.
func optionalDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	parsed, err := dateparse.ParseStrict(s)
	if err != nil {
		return fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}
	if parsed.Format("2006-01-02") != s {
		return fmt.Errorf("invalid date format, expected YYYY-MM-DD, got %s", s)
	}
	return nil
}

// NormalizeDate parses a lenient date input and returns it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	parsed, err := dateparse.ParseStrict(s)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return parsed.Format("2006-01-02"), nil
}

// fieldErrors flattens an ozzo error into the structured list, prefixing the
// blob name. Ozzo keys errors by the json tag of the failing field.
func fieldErrors(prefix string, err error) []FieldError {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		return []FieldError{{Field: prefix, Message: err.Error()}}
	}

	var result []FieldError
	for field, ferr := range verrs {
		result = append(result, FieldError{
			Field:   fmt.Sprintf("%s.%s", prefix, field),
			Message: ferr.Error(),
		})
	}
	return result
}
