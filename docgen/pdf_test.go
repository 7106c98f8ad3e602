package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []CatalogueEntry {
	return []CatalogueEntry{
		{Name: "Glass-Shield Cloaking", Type: "Dermal", Area: "Skin", Activation: "Manual", EnergyRate: "High", Description: "Renders the agent invisible"},
		{Name: "Combat Strength", Type: "Arm", Area: "Arms", Activation: "Automatic", EnergyRate: "Low", Description: "Boosts melee damage"},
	}
}

func TestCatalogueProducesPDF(t *testing.T) {
	g := NewPDFGenerator("Augmentation Catalogue")

	out, err := g.Catalogue(sampleEntries())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
	assert.Greater(t, len(out), 500)
}

func TestCatalogueEmptyList(t *testing.T) {
	g := NewPDFGenerator("Augmentation Catalogue")

	out, err := g.Catalogue(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 50)
	got := truncate(long, 10)
	assert.LessOrEqual(t, len(got), 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}
