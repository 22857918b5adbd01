package derived

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openashp/aerona3-bridge/internal/state"
)

var t0 = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

// harness wires an engine over a connected store with the named raw
// inputs registered.
func harness(t *testing.T, specs []Spec, inputs ...string) (*state.Store, *Engine) {
	t.Helper()
	store := state.NewStore(1)
	for _, id := range inputs {
		store.Register(state.EntityValue{ID: id, Name: id})
	}
	eng := NewEngine(store, specs)
	store.SetConnected(true)
	return store, eng
}

func setAvailable(store *state.Store, id string, v float64) {
	store.SetNumeric(id, nil, v, "", t0)
}

func TestEngine_ComputesOnInputChange(t *testing.T) {
	store, eng := harness(t, []Spec{{
		Output:  "double",
		Inputs:  []string{"x"},
		Compute: func(in Inputs) float64 { return 2 * in["x"] },
	}}, "x")

	setAvailable(store, "x", 21)
	touched := eng.Recompute([]string{"x"}, t0)

	assert.Equal(t, []string{"double"}, touched)
	ev, _ := store.Get("double")
	assert.Equal(t, state.Available, ev.Availability)
	assert.Equal(t, 42.0, ev.Value)
	assert.True(t, ev.Computed)
}

func TestEngine_UnrelatedChangeTouchesNothing(t *testing.T) {
	_, eng := harness(t, []Spec{{
		Output:  "double",
		Inputs:  []string{"x"},
		Compute: func(in Inputs) float64 { return 2 * in["x"] },
	}}, "x", "y")

	assert.Nil(t, eng.Recompute([]string{"y"}, t0))
}

func TestEngine_UnavailableInputInvalidatesOutput(t *testing.T) {
	store, eng := harness(t, []Spec{{
		Output:  "double",
		Inputs:  []string{"x"},
		Compute: func(in Inputs) float64 { return 2 * in["x"] },
	}}, "x")

	setAvailable(store, "x", 5)
	eng.Recompute([]string{"x"}, t0)

	store.Fail([]string{"x"}) // threshold 1 flips immediately
	eng.Recompute([]string{"x"}, t0)

	ev, _ := store.Get("double")
	assert.Equal(t, state.Unavailable, ev.Availability)
	assert.Equal(t, 10.0, ev.Value, "last good value retained")
}

func TestEngine_ValidityPredicateGuards(t *testing.T) {
	store, eng := harness(t, []Spec{{
		Output:  "ratio",
		Inputs:  []string{"x"},
		Valid:   func(in Inputs) bool { return in["x"] > 0 },
		Compute: func(in Inputs) float64 { return 100 / in["x"] },
	}}, "x")

	setAvailable(store, "x", 0)
	eng.Recompute([]string{"x"}, t0)

	ev, _ := store.Get("ratio")
	assert.Equal(t, state.Unavailable, ev.Availability)

	setAvailable(store, "x", 4)
	eng.Recompute([]string{"x"}, t0)

	ev, _ = store.Get("ratio")
	assert.Equal(t, state.Available, ev.Availability)
	assert.Equal(t, 25.0, ev.Value)
}

func TestAerona3_COP(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "outgoing_water_temp", 40)
	setAvailable(store, "outdoor_air_temp", 5)
	eng.Recompute([]string{"outgoing_water_temp", "outdoor_air_temp"}, t0)

	ev, _ := store.Get("cop")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 3.3, ev.Value, 1e-9) // 6.8 - 0.1*35
}

func TestAerona3_COPFloorsAtOne(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "outgoing_water_temp", 65)
	setAvailable(store, "outdoor_air_temp", -25)
	eng.Recompute([]string{"outgoing_water_temp"}, t0)

	ev, _ := store.Get("cop")
	require.Equal(t, state.Available, ev.Availability)
	assert.Equal(t, 1.0, ev.Value) // lift 90 would go negative
}

func TestAerona3_COPInvalidOnNonPositiveLift(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "outgoing_water_temp", 20)
	setAvailable(store, "outdoor_air_temp", 25)
	eng.Recompute([]string{"outgoing_water_temp"}, t0)

	ev, _ := store.Get("cop")
	assert.Equal(t, state.Unavailable, ev.Availability)
}

func TestAerona3_EstimatedPower(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "compressor_frequency", 50)
	eng.Recompute([]string{"compressor_frequency"}, t0)

	ev, _ := store.Get("estimated_power")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 1500, ev.Value, 1e-9)

	// Caps at the nameplate ceiling.
	setAvailable(store, "compressor_frequency", 400)
	eng.Recompute([]string{"compressor_frequency"}, t0)
	ev, _ = store.Get("estimated_power")
	assert.Equal(t, 8000.0, ev.Value)

	// Compressor off: no estimate.
	setAvailable(store, "compressor_frequency", 0)
	eng.Recompute([]string{"compressor_frequency"}, t0)
	ev, _ = store.Get("estimated_power")
	assert.Equal(t, state.Unavailable, ev.Availability)
}

func TestAerona3_WeatherCompTarget(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	for _, tc := range []struct {
		outdoor float64
		want    float64
	}{
		{21, 35},   // at the indoor reference
		{25, 35},   // warmer than indoors, base flow
		{11, 50},   // 35 + 10*1.5
		{-20, 55},  // clamped
		{7.7, 54.95},
	} {
		setAvailable(store, "outdoor_air_temp", tc.outdoor)
		eng.Recompute([]string{"outdoor_air_temp"}, t0)
		ev, _ := store.Get("weather_comp_target")
		require.Equal(t, state.Available, ev.Availability)
		assert.InDelta(t, tc.want, ev.Value, 1e-9, "outdoor %v", tc.outdoor)
	}
}

func TestAerona3_FlowMetricsNeedConfiguredFlow(t *testing.T) {
	specs := Aerona3Specs(0, 0)
	for _, sp := range specs {
		assert.NotEqual(t, "heat_output", sp.Output)
		assert.NotEqual(t, "performance_ratio", sp.Output)
		assert.NotEqual(t, "daily_cost_projection", sp.Output)
	}
	assert.Len(t, Aerona3Specs(0.25, 0), len(specs)+2)
	assert.Len(t, Aerona3Specs(0, 0.30), len(specs)+1)
}

func TestAerona3_DailyEnergyProjection(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "compressor_frequency", 50)
	eng.Recompute([]string{"compressor_frequency"}, t0)

	ev, _ := store.Get("daily_energy_projection")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 36, ev.Value, 1e-9) // 1500 W * 24h

	// Idle compressor projects to zero, not Unavailable.
	setAvailable(store, "compressor_frequency", 0)
	eng.Recompute([]string{"compressor_frequency"}, t0)
	ev, _ = store.Get("daily_energy_projection")
	require.Equal(t, state.Available, ev.Availability)
	assert.Equal(t, 0.0, ev.Value)
}

func TestAerona3_DailyCostProjection(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0, 0.30),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "compressor_frequency", 100)
	eng.Recompute([]string{"compressor_frequency"}, t0)

	ev, _ := store.Get("daily_cost_projection")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 3000*24.0/1000*0.30, ev.Value, 1e-9)
}

func TestAerona3_HeatOutput(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0.25, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "outgoing_water_temp", 40)
	setAvailable(store, "return_water_temp", 35)
	eng.Recompute([]string{"outgoing_water_temp", "return_water_temp"}, t0)

	ev, _ := store.Get("heat_output")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 0.25*4186*5, ev.Value, 1e-9)
}

func TestAerona3_HeatOutputRejectsImplausibleDelta(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0.25, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	// Outgoing colder than return: sensors disagree with physics.
	setAvailable(store, "outgoing_water_temp", 30)
	setAvailable(store, "return_water_temp", 35)
	eng.Recompute([]string{"outgoing_water_temp"}, t0)
	ev, _ := store.Get("heat_output")
	assert.Equal(t, state.Unavailable, ev.Availability)

	// 20 degree lift through the plate exchanger is a lying sensor.
	setAvailable(store, "outgoing_water_temp", 55)
	eng.Recompute([]string{"outgoing_water_temp"}, t0)
	ev, _ = store.Get("heat_output")
	assert.Equal(t, state.Unavailable, ev.Availability)
}

func TestAerona3_PerformanceRatioNeedsPower(t *testing.T) {
	store, eng := harness(t, Aerona3Specs(0.25, 0),
		"outgoing_water_temp", "outdoor_air_temp", "return_water_temp",
		"compressor_frequency", "power_consumption")

	setAvailable(store, "outgoing_water_temp", 40)
	setAvailable(store, "return_water_temp", 36)
	setAvailable(store, "power_consumption", 0)
	eng.Recompute([]string{"power_consumption"}, t0)

	ev, _ := store.Get("performance_ratio")
	assert.Equal(t, state.Unavailable, ev.Availability)

	setAvailable(store, "power_consumption", 1200)
	eng.Recompute([]string{"power_consumption"}, t0)

	ev, _ = store.Get("performance_ratio")
	require.Equal(t, state.Available, ev.Availability)
	assert.InDelta(t, 0.25*4186*4/1200, ev.Value, 1e-9)
}
