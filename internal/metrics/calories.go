package metrics

// CalorieParams drives the server-side calorie estimate used when the client
// did not report one.
type CalorieParams struct {
	// BaseKcalPerHourPerKg is the walking base rate applied to body + load mass
	BaseKcalPerHourPerKg float64

	// Gravity in m/s²
	Gravity float64

	// Efficiency of converting metabolic energy into vertical work
	Efficiency float64

	// JoulesPerKcal converts mechanical work into kilocalories
	JoulesPerKcal float64
}

// DefaultCalorieParams returns the constants used for loaded walks
func DefaultCalorieParams() CalorieParams {
	return CalorieParams{
		BaseKcalPerHourPerKg: 4.5,
		Gravity:              9.81,
		Efficiency:           0.25,
		JoulesPerKcal:        4186.0,
	}
}

// EstimateCalories combines a weight-and-duration base rate with the
// mechanical work of lifting the combined mass through the elevation gain.
func EstimateCalories(weightKg, ruckWeightKg float64, durationSeconds int64, elevationGainM float64, p CalorieParams) float64 {
	mass := weightKg + ruckWeightKg
	if mass <= 0 {
		return 0
	}

	hours := float64(durationSeconds) / 3600.0
	base := p.BaseKcalPerHourPerKg * mass * hours

	climb := 0.0
	if elevationGainM > 0 && p.Efficiency > 0 && p.JoulesPerKcal > 0 {
		climb = mass * p.Gravity * elevationGainM / (p.Efficiency * p.JoulesPerKcal)
	}

	return base + climb
}
