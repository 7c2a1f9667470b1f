package aqi

import (
	"math"

	"github.com/pridkett/airsage2mqtt/gas"
)

// History is a set of readings split into chartable series. All series have
// one entry per reading; missing concentrations are recorded as 0.
type History struct {
	Overall []float64
	PPM     map[gas.Pollutant][]float64
}

// Series extracts the overall AQI and per-pollutant ppm series of readings.
func Series(readings []gas.Concentrations) History {
	h := History{
		Overall: make([]float64, 0, len(readings)),
		PPM:     make(map[gas.Pollutant][]float64, len(gas.All)),
	}
	for _, p := range gas.All {
		h.PPM[p] = make([]float64, 0, len(readings))
	}

	for _, r := range readings {
		h.Overall = append(h.Overall, float64(Compute(r).Overall))
		for _, p := range gas.All {
			h.PPM[p] = append(h.PPM[p], r[p])
		}
	}
	return h
}

// MinMax returns the smallest and largest concentration present in readings,
// across all pollutants. ok is false when no reading has any concentration.
func MinMax(readings []gas.Concentrations) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, r := range readings {
		for _, v := range r {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}
