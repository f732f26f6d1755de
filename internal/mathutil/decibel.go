package mathutil

import "math"

// DBToAmplitude converts a gain in decibels to a linear amplitude factor.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/dbAmplitudeDivisor)
}

// DBToShelfAmplitude returns A = 10^(dB/40), the square root of the linear
// gain used by the cookbook shelf and peaking designs.
func DBToShelfAmplitude(db float64) float64 {
	return math.Pow(10, db/dbShelfDivisor)
}

// AmplitudeToDB converts a linear magnitude to decibels.
// Magnitudes below 1e-10 are floored to avoid log(0).
func AmplitudeToDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbAmplitudeDivisor * math.Log10(magnitude)
}
