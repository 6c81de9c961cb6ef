package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCatalogue(t *testing.T) {
	reg := NewRegistry()

	require.Len(t, reg.Rows(), 20)
	assert.Len(t, reg.BaseRows(), 15)
	assert.Len(t, reg.DerivedRows(), 5)

	// Canonical order is ascending numeric row order.
	last := ""
	for _, def := range reg.Rows() {
		assert.Greater(t, string(def.ID), last)
		last = string(def.ID)
	}
}

func TestRegistryDependencies(t *testing.T) {
	reg := NewRegistry()

	for _, def := range reg.DerivedRows() {
		deps := reg.Dependencies(def.ID)
		require.NotEmpty(t, deps, "derived row %s must have dependencies", def.ID)
		for _, dep := range deps {
			_, ok := reg.Lookup(dep)
			assert.True(t, ok, "dependency %s of %s must be a known row", dep, def.ID)
		}
		assert.NotEmpty(t, def.FormulaNote)
	}

	for _, def := range reg.BaseRows() {
		assert.Nil(t, reg.Dependencies(def.ID))
	}
}

func TestRegistryDeductionRows(t *testing.T) {
	reg := NewRegistry()

	var ids []RowID
	for _, def := range reg.DeductionRows() {
		ids = append(ids, def.ID)
	}
	assert.Equal(t, []RowID{Row080, Row090, Row320, Row520}, ids)
}
