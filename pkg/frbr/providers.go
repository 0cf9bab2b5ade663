package frbr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"gorm.io/gorm"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// ExpressionLanguageDutch is the only expression language the national
// platform accepts from provincial authorities.
const ExpressionLanguageDutch = "nld"

// ActProvider allocates the next expression identifier for an act. The work
// fields are fixed at act creation and copied verbatim; only the expression
// advances, by counting the act's existing version rows.
type ActProvider struct{}

func NewActProvider() *ActProvider {
	return &ActProvider{}
}

// Generate returns the act's FRBR tuple with the next expression version.
func (p *ActProvider) Generate(tx *gorm.DB, act *models.Act) (ActFrbr, error) {
	count, err := act.CountVersions(tx)
	if err != nil {
		return ActFrbr{}, fmt.Errorf("counting act versions: %w", err)
	}

	result := ActFrbr{
		Frbr: Frbr{
			WorkProvinceID: act.WorkProvinceID,
			WorkCountry:    act.WorkCountry,
			WorkDate:       act.WorkDate,
			WorkOther:      act.WorkOther,

			ExpressionLanguage: ExpressionLanguageDutch,
			ExpressionDate:     time.Now().Format("2006-01-02"),
			ExpressionVersion:  int(count) + 1,
		},
		ActID: act.ID,
	}
	return result, nil
}

// BillProvider allocates a fresh bill work per package build. Environments
// with state derive the work suffix from a row count so identifiers stay
// stable towards the platform; stateless environments get a random suffix.
type BillProvider struct{}

func NewBillProvider() *BillProvider {
	return &BillProvider{}
}

// Generate allocates a new bill work and a first expression, scoped to the
// environment and document type of the act being published.
func (p *BillProvider) Generate(tx *gorm.DB, environment *models.Environment, documentType string, actFrbr ActFrbr) (BillFrbr, error) {
	other, err := workOther(tx, environment, documentType, func() (int64, error) {
		return models.CountBillsForEnvironment(tx, environment.UUID, documentType)
	})
	if err != nil {
		return BillFrbr{}, err
	}

	now := time.Now()
	result := BillFrbr{
		Frbr: Frbr{
			WorkProvinceID: environment.ProvinceID,
			WorkCountry:    environment.FrbrCountry,
			WorkDate:       fmt.Sprintf("%d", now.Year()),
			WorkOther:      other,

			ExpressionLanguage: environment.FrbrLanguage,
			ExpressionDate:     now.Format("2006-01-02"),
			ExpressionVersion:  1,
		},
	}
	return result, nil
}

// DocProvider allocates a fresh document work for an announcement.
type DocProvider struct{}

func NewDocProvider() *DocProvider {
	return &DocProvider{}
}

// Generate allocates a new doc work and a first expression.
func (p *DocProvider) Generate(tx *gorm.DB, environment *models.Environment, documentType string) (DocFrbr, error) {
	other, err := workOther(tx, environment, documentType, func() (int64, error) {
		return models.CountDocsForEnvironment(tx, environment.UUID, documentType)
	})
	if err != nil {
		return DocFrbr{}, err
	}

	now := time.Now()
	result := DocFrbr{
		Frbr: Frbr{
			WorkProvinceID: environment.ProvinceID,
			WorkCountry:    environment.FrbrCountry,
			WorkDate:       fmt.Sprintf("%d", now.Year()),
			WorkOther:      other,

			ExpressionLanguage: environment.FrbrLanguage,
			ExpressionDate:     now.Format("2006-01-02"),
			ExpressionVersion:  1,
		},
		DocumentType: documentType,
	}
	return result, nil
}

// workOther derives the unique work suffix for a new bill or doc work.
func workOther(tx *gorm.DB, environment *models.Environment, documentType string, counter func() (int64, error)) (string, error) {
	slug := strcase.ToKebab(documentType)

	if !environment.HasState {
		suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		return fmt.Sprintf("%s-%s", slug, suffix), nil
	}

	count, err := counter()
	if err != nil {
		return "", fmt.Errorf("counting works for environment %s: %w", environment.UUID, err)
	}
	return fmt.Sprintf("%s-%d", slug, count+1), nil
}
