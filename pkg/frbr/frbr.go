// Package frbr allocates FRBR (Functional Requirements for Bibliographic
// Records) work and expression identifiers for bills, acts and announcement
// documents. Identifier allocation is counting based for environments that
// maintain state, so that the same environment always produces the same
// platform-facing identifiers; stateless environments get a random suffix.
package frbr

import (
	"fmt"
)

// Frbr is one work+expression identifier tuple.
type Frbr struct {
	WorkProvinceID string `json:"Work_Province_ID"`
	WorkCountry    string `json:"Work_Country"`
	WorkDate       string `json:"Work_Date"`
	WorkOther      string `json:"Work_Other"`

	ExpressionLanguage string `json:"Expression_Language"`
	ExpressionDate     string `json:"Expression_Date"`
	ExpressionVersion  int    `json:"Expression_Version"`
}

// BillFrbr identifies a bill (draft decision) work and expression.
type BillFrbr struct {
	Frbr
}

// Work returns the AKN work identifier for the bill.
func (f BillFrbr) Work() string {
	return fmt.Sprintf("/akn/%s/bill/%s/%s/%s", f.WorkCountry, f.WorkProvinceID, f.WorkDate, f.WorkOther)
}

// ExpressionPart returns the expression suffix of the AKN identifier.
func (f BillFrbr) ExpressionPart() string {
	return expressionPart(f.Frbr)
}

// ActFrbr identifies a consolidated act work and expression.
type ActFrbr struct {
	Frbr

	ActID uint
}

// Work returns the AKN work identifier for the act.
func (f ActFrbr) Work() string {
	return fmt.Sprintf("/akn/%s/act/%s/%s/%s", f.WorkCountry, f.WorkProvinceID, f.WorkDate, f.WorkOther)
}

// ExpressionPart returns the expression suffix of the AKN identifier.
func (f ActFrbr) ExpressionPart() string {
	return expressionPart(f.Frbr)
}

// DocFrbr identifies an announcement document work and expression.
type DocFrbr struct {
	Frbr

	DocumentType string
}

// Work returns the AKN work identifier for the document.
func (f DocFrbr) Work() string {
	return fmt.Sprintf("/akn/%s/doc/%s/%s/%s", f.WorkCountry, f.WorkProvinceID, f.WorkDate, f.WorkOther)
}

// ExpressionPart returns the expression suffix of the AKN identifier.
func (f DocFrbr) ExpressionPart() string {
	return expressionPart(f.Frbr)
}

func expressionPart(f Frbr) string {
	return fmt.Sprintf("%s@%s;%d", f.ExpressionLanguage, f.ExpressionDate, f.ExpressionVersion)
}

// PurposeWork returns the join identifier for a consolidation purpose built
// from the same work fields.
func PurposeWork(provinceID, workDate, workOther string) string {
	return fmt.Sprintf("/join/id/proces/%s/%s/%s", provinceID, workDate, workOther)
}

// AnnouncementFilename returns the canonical filename of the main
// announcement document inside a package zip.
func AnnouncementFilename(f DocFrbr, packageTypeAbbrev string) string {
	return fmt.Sprintf("akn_nl_doc_%s-%s-%s-%s-%d.xml",
		f.WorkProvinceID,
		packageTypeAbbrev,
		f.WorkDate,
		f.WorkOther,
		f.ExpressionVersion,
	)
}

// PublicationFilename returns the canonical filename of the main publication
// document inside a package zip.
func PublicationFilename(f BillFrbr, packageTypeAbbrev string) string {
	return fmt.Sprintf("akn_nl_bill_%s-%s-%s-%s-%d.xml",
		f.WorkProvinceID,
		packageTypeAbbrev,
		f.WorkDate,
		f.WorkOther,
		f.ExpressionVersion,
	)
}
