package reports

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provincie-forge/publicatie/pkg/models"
)

func successReport(deliveryID string) []byte {
	return []byte(fmt.Sprintf(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb" xmlns:stop="http://www.overheid.nl/2017/stop">
  <lvbb:uitkomst>succes</lvbb:uitkomst>
  <lvbb:verslag>
    <lvbb:idLevering>%s</lvbb:idLevering>
    <lvbb:voortgang>afgerond</lvbb:voortgang>
    <lvbb:uitkomst>publicatie gelukt</lvbb:uitkomst>
  </lvbb:verslag>
</lvbb:aanleveringResultaat>`, deliveryID))
}

func progressReport(deliveryID string) []byte {
	return []byte(fmt.Sprintf(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb">
  <lvbb:uitkomst>succes</lvbb:uitkomst>
  <lvbb:verslag>
    <lvbb:idLevering>%s</lvbb:idLevering>
    <lvbb:voortgang>in behandeling</lvbb:voortgang>
  </lvbb:verslag>
</lvbb:aanleveringResultaat>`, deliveryID))
}

func failureReport(deliveryID string) []byte {
	return []byte(fmt.Sprintf(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb">
  <lvbb:uitkomst>mislukt</lvbb:uitkomst>
  <lvbb:verslag>
    <lvbb:idLevering>%s</lvbb:idLevering>
    <lvbb:uitkomst>validatie gefaald</lvbb:uitkomst>
  </lvbb:verslag>
</lvbb:aanleveringResultaat>`, deliveryID))
}

func dl0005Report(deliveryID string) []byte {
	return []byte(fmt.Sprintf(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb" xmlns:stop="http://www.overheid.nl/2017/stop">
  <lvbb:uitkomst>succes</lvbb:uitkomst>
  <lvbb:verslag>
    <lvbb:idLevering>%s</lvbb:idLevering>
  </lvbb:verslag>
  <stop:meldingen>
    <stop:code>DL-0005</stop:code>
  </stop:meldingen>
</lvbb:aanleveringResultaat>`, deliveryID))
}

func TestParseSuccessReport(t *testing.T) {
	parsed, err := NewParser().Parse("report.xml", successReport("levering-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusValid, parsed.Status)
	assert.Equal(t, "succes", parsed.MainOutcome)
	assert.Equal(t, "levering-1", parsed.SubDeliveryID)
	assert.Equal(t, "afgerond", parsed.SubProgress)
	assert.Equal(t, "publicatie gelukt", parsed.SubOutcome)
}

func TestParseFailureReport(t *testing.T) {
	parsed, err := NewParser().Parse("report.xml", failureReport("levering-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusFailed, parsed.Status)
	assert.Equal(t, "mislukt", parsed.MainOutcome)
}

func TestParseProgressReportIsInconclusive(t *testing.T) {
	parsed, err := NewParser().Parse("report.xml", progressReport("levering-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusValid, parsed.Status)
	assert.Empty(t, parsed.SubOutcome)
	assert.Equal(t, "in behandeling", parsed.SubProgress)
}

func TestParseDL0005SubstitutesSubOutcome(t *testing.T) {
	parsed, err := NewParser().Parse("report.xml", dl0005Report("levering-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusValid, parsed.Status)
	assert.Equal(t, "Received code DL-0005", parsed.SubOutcome)
}

func TestParseMalformedReports(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "not xml", content: []byte("{not xml}")},
		{name: "missing outcome", content: []byte(`<lvbb:verslag xmlns:lvbb="http://www.overheid.nl/2017/lvbb"><lvbb:idLevering>x</lvbb:idLevering></lvbb:verslag>`)},
		{name: "missing delivery id", content: []byte(`<lvbb:aanleveringResultaat xmlns:lvbb="http://www.overheid.nl/2017/lvbb"><lvbb:uitkomst>succes</lvbb:uitkomst></lvbb:aanleveringResultaat>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse("report.xml", tt.content)
			var merr *MalformedReportError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, "report.xml", merr.Filename)
		})
	}
}
