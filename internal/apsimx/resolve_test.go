package apsimx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root := loadFixture(t)

	testCases := []struct {
		name     string
		path     string
		wantKind string
		wantErr  bool
	}{
		{name: "dotted with root", path: ".Simulations.Simulation.Field.Soil.Organic", wantKind: "Organic"},
		{name: "dotted without root", path: "Simulation.Clock", wantKind: "Clock"},
		{name: "slash notation", path: "/Simulations/Simulation/Field/Sow using a variable rule", wantKind: "Manager"},
		{name: "root only", path: ".Simulations", wantKind: "Simulations"},
		{name: "case sensitive", path: ".Simulations.simulation.Clock", wantErr: true},
		{name: "missing leaf", path: ".Simulations.Simulation.Field.Soil.Solute", wantErr: true},
		{name: "missing middle", path: ".Simulations.Nope.Clock", wantErr: true},
		{name: "invalid syntax", path: "a..b", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Resolve(root, tc.path)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, n)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, n.Kind())
		})
	}
}

func TestResolve_NotFoundErrorNamesSegment(t *testing.T) {
	root := loadFixture(t)
	_, err := Resolve(root, ".Simulations.Simulation.Field.Soil.Solute")

	require.ErrorIs(t, err, ErrNodeNotFound)
	var nf *NodeNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Solute", nf.Segment)
	assert.Equal(t, ".Simulations.Simulation.Field.Soil", nf.Parent)
}

func TestResolve_AgreesWithTypeQuery(t *testing.T) {
	root := loadFixture(t)
	for _, kind := range []string{"Clock", "Weather", "Physical", "Organic", "Chemical", "Report", "Manager", "Cultivar"} {
		t.Run(kind, func(t *testing.T) {
			hits := FindAll(root.Child("Simulation"), kind, "")
			require.Len(t, hits, 1)
			byPath, err := Resolve(root, hits[0].FullPath())
			require.NoError(t, err)
			assert.Same(t, hits[0], byPath)
		})
	}
}

func TestFindAll(t *testing.T) {
	root := loadFixture(t)

	clocks := FindAll(root, "Clock", "")
	require.Len(t, clocks, 2)
	assert.Equal(t, "Simulation", clocks[0].Parent().Name)
	assert.Equal(t, "LateSowing", clocks[1].Parent().Name)

	assert.Len(t, FindAll(root, "Models.Clock, Models", "Clock"), 2)
	assert.Empty(t, FindAll(root, "Clock", "Other"))
	assert.Len(t, FindAll(root, "", "Field"), 2)
}

func TestFindInScope(t *testing.T) {
	root := loadFixture(t)
	manager, err := Resolve(root, ".Simulations.Simulation.Field.Sow using a variable rule")
	require.NoError(t, err)

	clock, err := FindInScope(manager, "Clock", "")
	require.NoError(t, err)
	assert.Equal(t, ".Simulations.Simulation.Clock", clock.FullPath())

	organic, err := FindInScope(manager, "Organic", "")
	require.NoError(t, err)
	assert.Equal(t, "Organic", organic.Name)

	_, err = FindInScope(manager, "Solute", "")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSimulations(t *testing.T) {
	root := loadFixture(t)

	all, err := Simulations(root)
	require.NoError(t, err)
	require.Len(t, all, 2)

	late, err := Simulations(root, "LateSowing")
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "LateSowing", late[0].Name)

	_, err = Simulations(root, "Missing")
	require.ErrorIs(t, err, ErrNodeNotFound)
}
