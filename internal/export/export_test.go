package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heat-dispatch/internal/model"
)

func sampleResults() []model.OptimizationResult {
	from := time.Date(2023, 2, 8, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	return []model.OptimizationResult{
		{UnitName: "GM", TimeFrom: from, TimeTo: to, ProducedHeat: 3.6, ElectricityProduced: 2.7, PrimaryEnergyConsumption: 6.84, Costs: 1260, CO2Emissions: 2304},
		{UnitName: "GB", TimeFrom: from, TimeTo: to, ProducedHeat: 1.4, PrimaryEnergyConsumption: 1.54, Costs: 700, CO2Emissions: 301},
		{UnitName: "EK", TimeFrom: from, TimeTo: to},
		{UnitName: "OB", TimeFrom: to, TimeTo: to.Add(time.Hour), ProducedHeat: 2, Costs: -12.5},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults(), Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "UnitName,TimeFrom,TimeTo,ProducedHeat,ElectricityProduced,PrimaryEnergyConsumption,Costs,CO2Emissions", lines[0])
	assert.Equal(t, "GM,2023-02-08T00:00:00Z,2023-02-08T01:00:00Z,3.60,2.70,6.84,1260.00,2304.00", lines[1])
	assert.Equal(t, "EK,2023-02-08T00:00:00Z,2023-02-08T01:00:00Z,0.00,0.00,0.00,0.00,0.00", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "OB,"))
	assert.Contains(t, lines[4], "-12.50")
}

func TestWriteCSVSkipIdle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults(), Options{SkipIdle: true}))
	out := buf.String()
	assert.NotContains(t, out, "EK,")
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestSkipIdleKeepsSubCentDispatch(t *testing.T) {
	rows := []model.OptimizationResult{
		{UnitName: "GB", ProducedHeat: 0, Costs: 4, CO2Emissions: 2},
		{UnitName: "EK"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, Options{SkipIdle: true}))
	out := buf.String()
	assert.Contains(t, out, "GB,")
	assert.NotContains(t, out, "EK,")
}

func TestCSVReadBack(t *testing.T) {
	var buf bytes.Buffer
	in := sampleResults()
	require.NoError(t, WriteCSV(&buf, in, Options{}))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(in))
	for i := range in {
		assert.Equal(t, in[i].UnitName, got[i].UnitName)
		assert.True(t, in[i].TimeFrom.Equal(got[i].TimeFrom))
		assert.Equal(t, in[i].Costs, got[i].Costs)
	}
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing header")

	_, err = ReadCSV(strings.NewReader("Unit,TimeFrom,TimeTo,ProducedHeat,ElectricityProduced,PrimaryEnergyConsumption,Costs,CO2Emissions\n"))
	assert.ErrorContains(t, err, "column 1")

	bad := strings.Join(csvHeader, ",") + "\nGB,2023-02-08T00:00:00Z,2023-02-08T01:00:00Z,abc,0,0,0,0\n"
	_, err = ReadCSV(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, "ProducedHeat")
}

func TestXMLReadBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, sampleResults(), Options{SkipIdle: true}))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), "<OptimizationResults>")
	assert.Contains(t, buf.String(), "<UnitName>GM</UnitName>")

	got, err := ReadXML(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"GM", "GB", "OB"}, []string{got[0].UnitName, got[1].UnitName, got[2].UnitName})
	assert.Equal(t, 2.7, got[0].ElectricityProduced)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults(), Options{}))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "GM", got[0]["unit_name"])
	assert.Equal(t, 3.6, got[0]["produced_heat"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil, Options{SkipIdle: true}))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, ".XML": FormatXML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)

	f, err := FormatFromPath("out/results.xml")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, f)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.csv")
	require.NoError(t, WriteFile(path, FormatCSV, sampleResults(), Options{}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "UnitName,"))
}
