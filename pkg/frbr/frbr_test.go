package frbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillFrbrWork(t *testing.T) {
	f := BillFrbr{
		Frbr: Frbr{
			WorkProvinceID:     "pv28",
			WorkCountry:        "nl",
			WorkDate:           "2026",
			WorkOther:          "omgevingsvisie-4",
			ExpressionLanguage: "nld",
			ExpressionDate:     "2026-08-31",
			ExpressionVersion:  2,
		},
	}

	assert.Equal(t, "/akn/nl/bill/pv28/2026/omgevingsvisie-4", f.Work())
	assert.Equal(t, "nld@2026-08-31;2", f.ExpressionPart())
}

func TestActAndDocWork(t *testing.T) {
	base := Frbr{
		WorkProvinceID:     "pv28",
		WorkCountry:        "nl",
		WorkDate:           "2026",
		WorkOther:          "1",
		ExpressionLanguage: "nld",
		ExpressionDate:     "2026-01-01",
		ExpressionVersion:  1,
	}

	assert.Equal(t, "/akn/nl/act/pv28/2026/1", ActFrbr{Frbr: base}.Work())
	assert.Equal(t, "/akn/nl/doc/pv28/2026/1", DocFrbr{Frbr: base}.Work())
}

func TestPurposeWork(t *testing.T) {
	work := PurposeWork("pv28", "2026-09-01", "instelling-3")
	assert.Equal(t, "/join/id/proces/pv28/2026-09-01/instelling-3", work)
}

func TestPublicationFilename(t *testing.T) {
	f := BillFrbr{
		Frbr: Frbr{
			WorkProvinceID:    "pv28",
			WorkDate:          "2026",
			WorkOther:         "omgevingsvisie-1",
			ExpressionVersion: 3,
		},
	}

	filename := PublicationFilename(f, "val")
	require.Equal(t, "akn_nl_bill_pv28-val-2026-omgevingsvisie-1-3.xml", filename)
}
