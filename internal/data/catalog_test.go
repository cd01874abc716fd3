package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heat-dispatch/internal/model"
)

const catalogYAML = `name: Heatington
buildings: 1600
production_units:
  - name: GB
    max_heat: 5.0
    production_cost: 500
    co2_emissions: 215
    gas_consumption: 1.1
  - name: GM
    max_heat: 3.6
    production_cost: 1100
    co2_emissions: 640
    gas_consumption: 1.9
    max_electricity: 2.7
`

const catalogXML = `<?xml version="1.0" encoding="utf-8"?>
<HeatingGrid>
  <Name>Heatington</Name>
  <Buildings>1600</Buildings>
  <ProductionUnits>
    <ProductionUnit>
      <Name>GB</Name>
      <MaxHeat>5.0</MaxHeat>
      <ProductionCost>500</ProductionCost>
      <CO2Emission>215</CO2Emission>
      <GasConsumption>1.1</GasConsumption>
      <MaxElectricity>0</MaxElectricity>
    </ProductionUnit>
    <ProductionUnit>
      <Name>EK</Name>
      <MaxHeat>8.0</MaxHeat>
      <ProductionCost>50</ProductionCost>
      <CO2Emission>0</CO2Emission>
      <GasConsumption>0</GasConsumption>
      <MaxElectricity>-8.0</MaxElectricity>
    </ProductionUnit>
  </ProductionUnits>
</HeatingGrid>
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCatalogYAML(t *testing.T) {
	grid, err := LoadCatalog(writeFile(t, "grid.yaml", catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, "Heatington", grid.Name)
	require.Len(t, grid.Units, 2)
	assert.Equal(t, "GM", grid.Units[1].Name)
	assert.Equal(t, 2.7, grid.Units[1].MaxElectricity)
	assert.Equal(t, 640.0, grid.Units[1].CO2Emissions)
}

func TestLoadCatalogXML(t *testing.T) {
	for _, name := range []string{"grid.xml", "HeatingGrid.config"} {
		grid, err := LoadCatalog(writeFile(t, name, catalogXML))
		require.NoError(t, err, name)
		require.Len(t, grid.Units, 2)
		assert.Equal(t, "EK", grid.Units[1].Name)
		assert.Equal(t, -8.0, grid.Units[1].MaxElectricity)
		assert.Equal(t, 215.0, grid.Units[0].CO2Emissions)
	}
}

func TestLoadCatalogTrimsUnitNames(t *testing.T) {
	body := strings.Replace(catalogXML, "<Name>GB</Name>", "<Name>\n        GB\n      </Name>", 1)
	grid, err := LoadCatalog(writeFile(t, "grid.xml", body))
	require.NoError(t, err)
	assert.Equal(t, "GB", grid.Units[0].Name)

	sub, err := grid.Select([]string{"GB"})
	require.NoError(t, err)
	assert.Len(t, sub.Units, 1)
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	_, err := LoadCatalog(writeFile(t, "grid.yaml", "production_units:\n  - name: X\n    max_heat: 0\n"))
	require.Error(t, err)
	var invalid *model.InvalidUnitError
	assert.True(t, errors.As(err, &invalid))
	var cerr *CatalogError
	assert.True(t, errors.As(err, &cerr))

	_, err = LoadCatalog(writeFile(t, "grid.yaml", "name: empty\n"))
	assert.ErrorIs(t, err, model.ErrEmptyCatalog)

	_, err = LoadCatalog(writeFile(t, "grid.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported catalog format")

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveCatalogRoundTrip(t *testing.T) {
	grid, err := LoadCatalog(writeFile(t, "grid.yaml", catalogYAML))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.yaml", "out.xml", "sub/out.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveCatalog(path, grid), name)
		back, err := LoadCatalog(path)
		require.NoError(t, err, name)
		assert.Equal(t, grid.Units, back.Units, name)
		assert.Equal(t, grid.Buildings, back.Buildings, name)
	}

	assert.Error(t, SaveCatalog(filepath.Join(dir, "out.bin"), grid))
	assert.Error(t, SaveCatalog(filepath.Join(dir, "out.yaml"), nil))
}
