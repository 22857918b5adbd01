package derived

import "math"

// Formula constants carried over from the heat pump's published
// performance characteristics.
const (
	copBase      = 6.8  // COP at zero temperature lift
	copSlope     = 0.1  // COP lost per degree of lift
	copFloor     = 1.0  // a compressor never does worse than resistive
	maxPowerW    = 8000 // nameplate ceiling
	ratedPowerW  = 3000 // nominal draw at 100 Hz
	specificHeat = 4186 // J/(kg*K), water

	weatherBaseFlow  = 35.0
	weatherCurve     = 1.5
	weatherMaxFlow   = 55.0
	weatherIndoorRef = 21.0

	// ΔT outside (0, maxPlausibleDelta] means a sensor is lying;
	// publishing a heat figure from it would be nonsense.
	maxPlausibleDelta = 15.0
)

// estimatedPowerW is the compressor power model shared by the power
// and daily-projection metrics.
func estimatedPowerW(freq float64) float64 {
	return math.Min(freq/100*ratedPowerW, maxPowerW)
}

// Aerona3Specs builds the derived metric set. nominalFlowLPS is the
// installer-measured circulation flow in litres per second; zero
// disables the heat-output and performance-ratio metrics rather than
// inventing a flow figure. tariffPerKWh prices the daily energy
// projection; zero disables the cost metric.
func Aerona3Specs(nominalFlowLPS, tariffPerKWh float64) []Spec {
	specs := []Spec{
		{
			Output: "cop",
			Name:   "Coefficient of Performance",
			Inputs: []string{"outgoing_water_temp", "outdoor_air_temp"},
			Valid: func(in Inputs) bool {
				return in["outgoing_water_temp"]-in["outdoor_air_temp"] > 0
			},
			Compute: func(in Inputs) float64 {
				lift := in["outgoing_water_temp"] - in["outdoor_air_temp"]
				return math.Max(copBase-copSlope*lift, copFloor)
			},
		},
		{
			Output: "estimated_power",
			Name:   "Estimated Power Draw",
			Unit:   "W",
			Inputs: []string{"compressor_frequency"},
			Valid: func(in Inputs) bool {
				return in["compressor_frequency"] > 0
			},
			Compute: func(in Inputs) float64 {
				return estimatedPowerW(in["compressor_frequency"])
			},
		},
		{
			Output: "system_efficiency",
			Name:   "System Efficiency",
			Unit:   "%",
			Inputs: []string{"compressor_frequency"},
			Valid: func(in Inputs) bool {
				return in["compressor_frequency"] > 0
			},
			Compute: func(in Inputs) float64 {
				return math.Min(in["compressor_frequency"]/100*85, 95)
			},
		},
		{
			// Projection at the current draw, not a meter: a compressor
			// sitting at 0 Hz projects to zero.
			Output: "daily_energy_projection",
			Name:   "Projected Daily Energy",
			Unit:   "kWh",
			Inputs: []string{"compressor_frequency"},
			Compute: func(in Inputs) float64 {
				return estimatedPowerW(in["compressor_frequency"]) * 24 / 1000
			},
		},
		{
			Output: "weather_comp_target",
			Name:   "Weather Compensation Flow Target",
			Unit:   "°C",
			Inputs: []string{"outdoor_air_temp"},
			Compute: func(in Inputs) float64 {
				outdoor := in["outdoor_air_temp"]
				if outdoor >= weatherIndoorRef {
					return weatherBaseFlow
				}
				target := weatherBaseFlow + (weatherIndoorRef-outdoor)*weatherCurve
				return math.Min(target, weatherMaxFlow)
			},
		},
	}

	if tariffPerKWh > 0 {
		specs = append(specs, Spec{
			Output: "daily_cost_projection",
			Name:   "Projected Daily Cost",
			Inputs: []string{"compressor_frequency"},
			Compute: func(in Inputs) float64 {
				return estimatedPowerW(in["compressor_frequency"]) * 24 / 1000 * tariffPerKWh
			},
		})
	}

	if nominalFlowLPS > 0 {
		deltaValid := func(in Inputs) bool {
			delta := in["outgoing_water_temp"] - in["return_water_temp"]
			return delta > 0 && delta <= maxPlausibleDelta
		}

		specs = append(specs,
			Spec{
				Output: "heat_output",
				Name:   "Thermal Output",
				Unit:   "W",
				Inputs: []string{"outgoing_water_temp", "return_water_temp"},
				Valid:  deltaValid,
				Compute: func(in Inputs) float64 {
					delta := in["outgoing_water_temp"] - in["return_water_temp"]
					return nominalFlowLPS * specificHeat * delta
				},
			},
			Spec{
				Output: "performance_ratio",
				Name:   "Measured Performance Ratio",
				Inputs: []string{"outgoing_water_temp", "return_water_temp", "power_consumption"},
				Valid: func(in Inputs) bool {
					return deltaValid(in) && in["power_consumption"] > 0
				},
				Compute: func(in Inputs) float64 {
					delta := in["outgoing_water_temp"] - in["return_water_temp"]
					thermal := nominalFlowLPS * specificHeat * delta
					return thermal / in["power_consumption"]
				},
			},
		)
	}

	return specs
}
