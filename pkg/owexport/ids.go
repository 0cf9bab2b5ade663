package owexport

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/provincie-forge/publicatie/pkg/models"
)

// owIDPattern is the official IMOW identifier grammar.
var owIDPattern = regexp.MustCompile(`^nl\.imow-(gm|pv|ws|mn|mnre)[0-9]{1,6}\.` +
	`(regeltekst|gebied|gebiedengroep|lijn|lijnengroep|punt|puntengroep|activiteit|gebiedsaanwijzing|omgevingswaarde|omgevingsnorm|pons|kaart|tekstdeel|hoofdlijn|divisie|kaartlaag|juridischeregel|activiteitlocatieaanduiding|normwaarde|regelingsgebied|ambtsgebied|divisietekst)` +
	`\.[A-Za-z0-9]{1,32}$`)

// ValidOWID reports whether id conforms to the IMOW identifier grammar.
func ValidOWID(id string) bool {
	return owIDPattern.MatchString(id)
}

// GenerateOWID builds a fresh OW identifier under the given authority prefix
// (for example "pv28"). When uniqueCode is empty a random hex code is used.
//
// The result is checked against the official grammar; a mismatch means the
// inputs were produced by a code bug, so it panics rather than returning an
// error a caller might swallow.
func GenerateOWID(authorityPrefix string, owType models.IMOWType, uniqueCode string) string {
	if uniqueCode == "" {
		uniqueCode = strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	id := fmt.Sprintf("nl.imow-%s.%s.%s", authorityPrefix, owType, uniqueCode)
	if !ValidOWID(id) {
		panic(fmt.Sprintf("generated IMOW identifier %q does not match the official grammar", id))
	}
	return id
}
