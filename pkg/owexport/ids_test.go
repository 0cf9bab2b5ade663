package owexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provincie-forge/publicatie/pkg/models"
)

func TestValidOWID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"province area", "nl.imow-pv28.gebied.0001", true},
		{"municipality tekstdeel", "nl.imow-gm0345.tekstdeel.abc123", true},
		{"national authority", "nl.imow-mnre1034.ambtsgebied.X1", true},
		{"missing prefix", "imow-pv28.gebied.0001", false},
		{"unknown kind", "nl.imow-pv28.something.0001", false},
		{"authority number too long", "nl.imow-pv1234567.gebied.0001", false},
		{"suffix with dash", "nl.imow-pv28.gebied.aa-bb", false},
		{"empty suffix", "nl.imow-pv28.gebied.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidOWID(tt.id))
		})
	}
}

func TestGenerateOWID(t *testing.T) {
	id := GenerateOWID("pv28", models.IMOWRegelingsgebied, "")
	assert.True(t, ValidOWID(id))

	fixed := GenerateOWID("pv28", models.IMOWAmbtsgebied, "abc123")
	assert.Equal(t, "nl.imow-pv28.ambtsgebied.abc123", fixed)
}

func TestGenerateOWIDPanicsOnBadInput(t *testing.T) {
	require.Panics(t, func() {
		GenerateOWID("bogus99", models.IMOWGebied, "0001")
	})
}
