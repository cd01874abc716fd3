package dispatch

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heat-dispatch/internal/model"
)

var t0 = time.Date(2023, 2, 8, 0, 0, 0, 0, time.UTC)

func period(i int, demand, price float64) model.MarketCondition {
	from := t0.Add(time.Duration(i) * time.Hour)
	return model.MarketCondition{TimeFrom: from, TimeTo: from.Add(time.Hour), HeatDemand: demand, ElectricityPrice: price}
}

func heatington() []model.ProductionUnit {
	return []model.ProductionUnit{
		{Name: "GB", MaxHeat: 5, ProductionCost: 500, CO2Emissions: 215, GasConsumption: 1.1},
		{Name: "OB", MaxHeat: 4, ProductionCost: 700, CO2Emissions: 265, GasConsumption: 1.2},
		{Name: "GM", MaxHeat: 3.6, ProductionCost: 1100, CO2Emissions: 640, GasConsumption: 1.9, MaxElectricity: 2.7},
		{Name: "EK", MaxHeat: 8, ProductionCost: 50, MaxElectricity: -8},
	}
}

func TestOptimize_SingleGasBoiler(t *testing.T) {
	units := []model.ProductionUnit{
		{Name: "Gas Boiler", MaxHeat: 5, ProductionCost: 500, CO2Emissions: 215, GasConsumption: 1.01},
	}
	res, err := Optimize(units, []model.MarketCondition{period(0, 6.62, 1190.94)})
	require.NoError(t, err)
	require.Len(t, res, 1)

	want := model.OptimizationResult{
		UnitName:                 "Gas Boiler",
		TimeFrom:                 t0,
		TimeTo:                   t0.Add(time.Hour),
		ProducedHeat:             5,
		ElectricityProduced:      0,
		PrimaryEnergyConsumption: 5.05,
		Costs:                    2500,
		CO2Emissions:             1075,
	}
	assert.Equal(t, want, res[0])
	assert.False(t, math.Signbit(res[0].ElectricityProduced))
}

func TestOptimize_CheaperNetCostFirst(t *testing.T) {
	units := []model.ProductionUnit{
		{Name: "boiler", MaxHeat: 5, ProductionCost: 500},
		{Name: "chp", MaxHeat: 3.6, ProductionCost: 1100, MaxElectricity: 2.7},
	}

	// At 1000/MWh the CHP nets 350/MWh and beats the boiler.
	res, err := Optimize(units, []model.MarketCondition{period(0, 4, 1000)})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "chp", res[0].UnitName)
	assert.Equal(t, 3.6, res[0].ProducedHeat)
	assert.Equal(t, "boiler", res[1].UnitName)
	assert.Equal(t, 0.4, res[1].ProducedHeat)

	// At 100/MWh the CHP nets 1025/MWh and falls behind.
	res, err = Optimize(units, []model.MarketCondition{period(0, 4, 100)})
	require.NoError(t, err)
	assert.Equal(t, "boiler", res[0].UnitName)
	assert.Equal(t, 4.0, res[0].ProducedHeat)
	assert.Equal(t, "chp", res[1].UnitName)
	assert.Equal(t, 0.0, res[1].ProducedHeat)
}

func TestOptimize_EmptyInputs(t *testing.T) {
	_, err := Optimize(heatington(), nil)
	assert.ErrorIs(t, err, ErrNoResults)
	assert.ErrorIs(t, err, model.ErrEmptyPeriods)

	_, err = Optimize(nil, []model.MarketCondition{period(0, 1, 1)})
	assert.ErrorIs(t, err, ErrNoResults)
	assert.ErrorIs(t, err, model.ErrEmptyCatalog)

	_, err = Optimize(nil, nil)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestOptimize_RejectsInvalidUnit(t *testing.T) {
	units := heatington()
	units[2].MaxHeat = 0
	res, err := Optimize(units, []model.MarketCondition{period(0, 1, 1)})
	assert.Nil(t, res)
	var ie *model.InvalidUnitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "GM", ie.Unit)
	assert.False(t, errors.Is(err, ErrNoResults))
}

func TestOptimize_RejectsNonFinitePeriod(t *testing.T) {
	_, err := Optimize(heatington(), []model.MarketCondition{period(0, 1, 1), period(1, math.NaN(), 1)})
	var pe *model.InvalidPeriodError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Index)
}

func TestOptimize_FourUnitMeritOrder(t *testing.T) {
	res, err := Optimize(heatington(), []model.MarketCondition{period(0, 10, 1000)})
	require.NoError(t, err)
	require.Len(t, res, 4)

	names := []string{res[0].UnitName, res[1].UnitName, res[2].UnitName, res[3].UnitName}
	assert.Equal(t, []string{"GM", "GB", "OB", "EK"}, names)

	gm := res[0]
	assert.Equal(t, 3.6, gm.ProducedHeat)
	assert.Equal(t, 2.7, gm.ElectricityProduced)
	assert.Equal(t, 1260.0, gm.Costs)
	assert.Equal(t, 2304.0, gm.CO2Emissions)
	assert.Equal(t, 6.84, gm.PrimaryEnergyConsumption)

	assert.Equal(t, 5.0, res[1].ProducedHeat)
	assert.Equal(t, 5.5, res[1].PrimaryEnergyConsumption)

	ob := res[2]
	assert.Equal(t, 1.4, ob.ProducedHeat)
	assert.Equal(t, 980.0, ob.Costs)
	assert.Equal(t, 371.0, ob.CO2Emissions)

	assert.True(t, res[3].Idle())
	assert.Equal(t, 0.0, res[3].ElectricityProduced)
}

func TestOptimize_ElectricBoilerAndPartialCHP(t *testing.T) {
	res, err := Optimize(heatington(), []model.MarketCondition{period(0, 20, 100)})
	require.NoError(t, err)
	require.Len(t, res, 4)

	ek := res[0]
	assert.Equal(t, "EK", ek.UnitName)
	assert.Equal(t, 8.0, ek.ProducedHeat)
	assert.Equal(t, -8.0, ek.ElectricityProduced)
	// Consumed electricity adds to the heat production cost.
	assert.Equal(t, 1200.0, ek.Costs)

	gm := res[3]
	assert.Equal(t, "GM", gm.UnitName)
	assert.Equal(t, 3.0, gm.ProducedHeat)
	assert.Equal(t, 2.25, gm.ElectricityProduced)
	assert.Equal(t, 3075.0, gm.Costs)
	assert.Equal(t, 1920.0, gm.CO2Emissions)
	assert.Equal(t, 5.7, gm.PrimaryEnergyConsumption)
}

func TestOptimize_StableTieBreak(t *testing.T) {
	a := model.ProductionUnit{Name: "a", MaxHeat: 2, ProductionCost: 300}
	b := model.ProductionUnit{Name: "b", MaxHeat: 2, ProductionCost: 300}
	// c nets 300 at price 100 as well.
	c := model.ProductionUnit{Name: "c", MaxHeat: 2, ProductionCost: 400, MaxElectricity: 2}

	res, err := Optimize([]model.ProductionUnit{a, b, c}, []model.MarketCondition{period(0, 3, 100)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, unitNames(res))
	assert.Equal(t, []float64{2, 1, 0}, produced(res))

	res, err = Optimize([]model.ProductionUnit{c, b, a}, []model.MarketCondition{period(0, 3, 100)})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, unitNames(res))
	assert.Equal(t, []float64{2, 1, 0}, produced(res))
}

func TestOptimize_ZeroAndNegativeDemand(t *testing.T) {
	periods := []model.MarketCondition{period(0, 0, 500), period(1, -3.5, 500)}
	res, err := Optimize(heatington(), periods)
	require.NoError(t, err)
	require.Len(t, res, 8)
	for _, r := range res {
		assert.Equal(t, 0.0, r.ProducedHeat)
		assert.Equal(t, 0.0, r.Costs)
		assert.Equal(t, 0.0, r.ElectricityProduced)
		assert.Equal(t, 0.0, r.CO2Emissions)
		assert.Equal(t, 0.0, r.PrimaryEnergyConsumption)
	}
}

func TestOptimize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	units := heatington()
	capacity := 0.0
	for _, u := range units {
		capacity += u.MaxHeat
	}
	maxHeat := map[string]float64{}
	for _, u := range units {
		maxHeat[u.Name] = u.MaxHeat
	}

	periods := make([]model.MarketCondition, 200)
	for i := range periods {
		demand := rng.Float64()*(capacity+5) - 2
		price := rng.Float64() * 2500
		periods[i] = period(i, math.Round(demand*100)/100, math.Round(price*100)/100)
	}

	res, err := Optimize(units, periods)
	require.NoError(t, err)

	// Completeness: one record per (unit, period), period-major.
	require.Len(t, res, len(units)*len(periods))

	for i, p := range periods {
		rows := res[i*len(units) : (i+1)*len(units)]
		sum := 0.0
		seen := map[string]bool{}
		for _, r := range rows {
			assert.Equal(t, p.TimeFrom, r.TimeFrom)
			assert.False(t, seen[r.UnitName], "unit repeated within a period")
			seen[r.UnitName] = true

			// Capacity bound.
			assert.GreaterOrEqual(t, r.ProducedHeat, 0.0)
			assert.LessOrEqual(t, r.ProducedHeat, maxHeat[r.UnitName])
			sum += r.ProducedHeat
		}
		switch {
		case p.HeatDemand <= 0:
			assert.Equal(t, 0.0, sum)
		case p.HeatDemand <= capacity:
			// Conservation.
			assert.InDelta(t, Round2(p.HeatDemand), sum, 1e-6, "period %d", i)
		default:
			assert.InDelta(t, capacity, sum, 1e-6, "period %d", i)
		}
	}

	// Determinism.
	again, err := Optimize(units, periods)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestOptimize_OverflowFailsWithoutResults(t *testing.T) {
	tests := []struct {
		name  string
		unit  model.ProductionUnit
		price float64
		field string
	}{
		{"costs", model.ProductionUnit{Name: "X", MaxHeat: 5, ProductionCost: 1e308}, 1, "production_cost"},
		{"electricity revenue", model.ProductionUnit{Name: "X", MaxHeat: 5, ProductionCost: 1e6, MaxElectricity: 1e308}, 1e10, "production_cost"},
		{"emissions", model.ProductionUnit{Name: "X", MaxHeat: 5, ProductionCost: 1e6, CO2Emissions: 1e308}, 1, "co2_emissions"},
		{"primary energy", model.ProductionUnit{Name: "X", MaxHeat: 5, ProductionCost: 1e6, GasConsumption: 1e308}, 1, "gas_consumption"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := []model.ProductionUnit{{Name: "GB", MaxHeat: 5, ProductionCost: 500}, tt.unit}
			// X overflows as soon as it is dispatched, at the latest in the second period.
			periods := []model.MarketCondition{period(0, 1, tt.price), period(1, 10, tt.price)}

			var (
				res []model.OptimizationResult
				err error
			)
			require.NotPanics(t, func() { res, err = Optimize(units, periods) })
			require.Error(t, err)
			assert.Nil(t, res)

			var invalid *model.InvalidUnitError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "X", invalid.Unit)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, "overflows", invalid.Reason)
		})
	}
}

func TestOptimize_SubCentRemainderIsNotIdle(t *testing.T) {
	units := []model.ProductionUnit{{Name: "GB", MaxHeat: 5, ProductionCost: 1000, CO2Emissions: 500}}
	run, err := New().Run(units, []model.MarketCondition{period(0, 0.004, 0)})
	require.NoError(t, err)
	require.Len(t, run.Results, 1)

	r := run.Results[0]
	assert.Equal(t, 0.0, r.ProducedHeat)
	assert.Equal(t, 4.0, r.Costs)
	assert.Equal(t, 2.0, r.CO2Emissions)
	assert.False(t, r.Idle())

	assert.Len(t, run.Active(), 1)
	assert.Equal(t, 4.0, run.Totals.Costs)
}

func TestEngineRun_CoverageAndTotals(t *testing.T) {
	periods := []model.MarketCondition{
		period(0, 10, 1000),
		period(1, 25, 1000),
		period(2, -1, 1000),
	}
	run, err := New().Run(heatington(), periods)
	require.NoError(t, err)

	assert.Equal(t, 3, run.Periods())
	assert.Equal(t, 4, run.Units)
	require.Len(t, run.Results, 12)

	assert.True(t, run.Coverage[0].Covered())
	assert.Equal(t, 10.0, run.Coverage[0].Produced)

	// 25 MWh against 20.6 MWh of capacity.
	assert.False(t, run.Coverage[1].Covered())
	assert.Equal(t, 20.6, run.Coverage[1].Produced)
	assert.Equal(t, 4.4, run.Coverage[1].Shortfall)

	assert.True(t, run.Coverage[2].Covered())
	assert.Equal(t, 0.0, run.Coverage[2].Produced)

	assert.Equal(t, 30.6, run.Totals.Heat)
	assert.Equal(t, 4.4, run.Totals.Shortfall)

	active := run.Active()
	assert.Len(t, active, 3+4)
	for _, r := range active {
		assert.False(t, r.Idle())
	}
}

func TestEngineRun_PropagatesErrors(t *testing.T) {
	run, err := New().Run(heatington(), nil)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrNoResults)
}

func unitNames(res []model.OptimizationResult) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.UnitName
	}
	return out
}

func produced(res []model.OptimizationResult) []float64 {
	out := make([]float64, len(res))
	for i, r := range res {
		out[i] = r.ProducedHeat
	}
	return out
}
