// Package aqi maps pollutant concentrations to Air Quality Index values and
// classifies them into the EPA categories.
package aqi

import (
	"fmt"
	"math"

	"github.com/pridkett/airsage2mqtt/gas"
)

// Breakpoint is one point of a piecewise linear AQI table.
type Breakpoint struct {
	Concentration float64 // ppm
	AQI           int
}

// Table is a breakpoint table, ordered by concentration.
type Table []Breakpoint

// Validate checks that t has at least two points and that both concentration
// and AQI strictly increase.
func (t Table) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("table needs at least 2 breakpoints, has %d", len(t))
	}
	for i := 1; i < len(t); i++ {
		if t[i].Concentration <= t[i-1].Concentration {
			return fmt.Errorf("breakpoint %d: concentration %v not above %v", i, t[i].Concentration, t[i-1].Concentration)
		}
		if t[i].AQI <= t[i-1].AQI {
			return fmt.Errorf("breakpoint %d: aqi %d not above %d", i, t[i].AQI, t[i-1].AQI)
		}
	}
	return nil
}

// AQI interpolates the index for concentration c. Values at or below the first
// breakpoint give the first AQI, values at or above the last one are clamped to
// the last AQI. Interpolated values are rounded half away from zero.
func (t Table) AQI(c float64) int {
	if len(t) == 0 {
		return 0
	}
	first, last := t[0], t[len(t)-1]
	if c <= first.Concentration || math.IsNaN(c) {
		return first.AQI
	}
	if c >= last.Concentration {
		return last.AQI
	}

	for i := 0; i < len(t)-1; i++ {
		lo, hi := t[i], t[i+1]
		if c <= hi.Concentration {
			return int(math.Round(float64(hi.AQI-lo.AQI)*(c-lo.Concentration)/(hi.Concentration-lo.Concentration) + float64(lo.AQI)))
		}
	}
	return last.AQI
}

// ForPollutant returns the AQI of concentration c for pollutant p. Unknown
// pollutants give 0.
func ForPollutant(p gas.Pollutant, c float64) int {
	t, ok := TableFor(p)
	if !ok {
		return 0
	}
	return t.AQI(c)
}

// ToAQI computes the sub-index of every pollutant in gas.All. A pollutant
// without a concentration gets AQI 0, the same value as clean air; callers
// that need to tell the two apart must check c.Missing().
func ToAQI(c gas.Concentrations) map[gas.Pollutant]int {
	out := make(map[gas.Pollutant]int, len(gas.All))
	for _, p := range gas.All {
		v, ok := c[p]
		if !ok {
			out[p] = 0
			continue
		}
		out[p] = ForPollutant(p, v)
	}
	return out
}

// Overall is the highest sub-index, or 0 when there are none.
func Overall(perPollutant map[gas.Pollutant]int) int {
	overall := 0
	first := true
	for _, v := range perPollutant {
		if first || v > overall {
			overall = v
			first = false
		}
	}
	return overall
}

// Result holds the sub-indices of one reading and their maximum.
type Result struct {
	PerPollutant map[gas.Pollutant]int
	Overall      int
}

// Compute maps every concentration and aggregates the result.
func Compute(c gas.Concentrations) Result {
	per := ToAQI(c)
	return Result{PerPollutant: per, Overall: Overall(per)}
}

// Dominant returns the pollutant with the highest sub-index. Ties go to the
// pollutant listed first in gas.All.
func (r Result) Dominant() (gas.Pollutant, bool) {
	var (
		best  gas.Pollutant
		found bool
	)
	for _, p := range gas.All {
		v, ok := r.PerPollutant[p]
		if !ok {
			continue
		}
		if !found || v > r.PerPollutant[best] {
			best = p
			found = true
		}
	}
	return best, found
}

// Classification returns the category, color and health message of the
// overall AQI.
func (r Result) Classification() Classification {
	return Classify(r.Overall)
}
