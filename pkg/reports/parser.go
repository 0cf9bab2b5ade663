// Package reports reconciles acknowledgement reports from the national
// platform against the packages that were delivered to it.
package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/provincie-forge/publicatie/pkg/models"
)

const (
	lvbbNamespace = "http://www.overheid.nl/2017/lvbb"
	stopNamespace = "http://www.overheid.nl/2017/stop"
)

// outcomeSuccess is the platform's literal success outcome.
const outcomeSuccess = "succes"

// dl0005SubOutcome substitutes a missing sub-outcome when the platform only
// returned its DL-0005 completion code.
const dl0005SubOutcome = "Received code DL-0005"

// MalformedReportError rejects a report file the platform schema does not
// explain. It aborts the entire upload batch.
type MalformedReportError struct {
	Filename string
	Reason   string
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("malformed report %s: %s", e.Filename, e.Reason)
}

// ParsedReport is the extracted content of one acknowledgement file.
type ParsedReport struct {
	Status models.ReportStatus

	MainOutcome   string
	SubDeliveryID string
	SubProgress   string
	SubOutcome    string
}

// Parser extracts acknowledgement data from the platform's lvbb/stop XML.
type Parser struct {
	mainOutcome *xpath.Expr
	deliveryID  *xpath.Expr
	progress    *xpath.Expr
	subOutcome  *xpath.Expr
	dl0005      *xpath.Expr
}

// NewParser creates a new report parser.
func NewParser() *Parser {
	namespaces := map[string]string{
		"lvbb": lvbbNamespace,
		"stop": stopNamespace,
	}
	compile := func(expr string) *xpath.Expr {
		compiled, err := xpath.CompileWithNS(expr, namespaces)
		if err != nil {
			panic(fmt.Sprintf("invalid report xpath %q: %v", expr, err))
		}
		return compiled
	}

	return &Parser{
		mainOutcome: compile("//lvbb:uitkomst"),
		deliveryID:  compile("//lvbb:verslag/lvbb:idLevering"),
		progress:    compile("//lvbb:verslag/lvbb:voortgang"),
		subOutcome:  compile("//lvbb:verslag/lvbb:uitkomst"),
		dl0005:      compile("//stop:code[text()='DL-0005']"),
	}
}

// Parse extracts one acknowledgement file. A file that does not parse or
// misses a required element returns a MalformedReportError.
func (p *Parser) Parse(filename string, content []byte) (*ParsedReport, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, &MalformedReportError{Filename: filename, Reason: err.Error()}
	}

	mainOutcome, ok := p.text(doc, p.mainOutcome)
	if !ok {
		return nil, &MalformedReportError{Filename: filename, Reason: "missing lvbb:uitkomst"}
	}
	deliveryID, ok := p.text(doc, p.deliveryID)
	if !ok {
		return nil, &MalformedReportError{Filename: filename, Reason: "missing lvbb:verslag/lvbb:idLevering"}
	}

	progress, _ := p.text(doc, p.progress)
	subOutcome, _ := p.text(doc, p.subOutcome)
	if subOutcome == "" {
		if node := xmlquery.QuerySelector(doc, p.dl0005); node != nil {
			subOutcome = dl0005SubOutcome
		}
	}

	status := models.ReportStatusFailed
	if mainOutcome == outcomeSuccess {
		status = models.ReportStatusValid
	}

	return &ParsedReport{
		Status:        status,
		MainOutcome:   mainOutcome,
		SubDeliveryID: deliveryID,
		SubProgress:   progress,
		SubOutcome:    subOutcome,
	}, nil
}

func (p *Parser) text(doc *xmlquery.Node, expr *xpath.Expr) (string, bool) {
	node := xmlquery.QuerySelector(doc, expr)
	if node == nil {
		return "", false
	}
	return strings.TrimSpace(node.InnerText()), true
}
