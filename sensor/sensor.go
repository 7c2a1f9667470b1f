// Package sensor converts raw ADC readings from MQ series gas sensors into
// concentrations in ppm.
//
// The sensor sits in a voltage divider with a load resistor RL. The ADC value
// gives the voltage across RL, from which the sensor resistance Rs follows.
// Each gas has a datasheet curve log10(ppm) = A*log10(Rs/R0) + B, where R0 is
// the sensor resistance in clean air.
package sensor

import (
	"math"

	"github.com/pridkett/airsage2mqtt/gas"
)

// MaxResistance is returned by Circuit.Resistance when there is no voltage
// across the load resistor.
const MaxResistance = math.MaxFloat64

// Circuit describes the divider and the ADC the sensors are wired to.
type Circuit struct {
	Vcc    float64 // supply voltage
	RL     float64 // load resistance in ohms
	ADCMax float64 // highest ADC value, 1023 for a 10-bit converter
}

// DefaultCircuit is a 5V Arduino style board with 10k load resistors.
var DefaultCircuit = Circuit{
	Vcc:    5.0,
	RL:     10000,
	ADCMax: 1023,
}

// Profile is the calibration curve of one gas on one sensor.
type Profile struct {
	R0 float64
	A  float64
	B  float64
}

var (
	// MQ-7
	COProfile = Profile{R0: 10.0, A: -1.525, B: 1.994}

	// MQ-135
	NH3Profile     = Profile{R0: 102.2, A: -0.41, B: 0.234}
	SmokeProfile   = Profile{R0: 77.0, A: -0.361, B: 0.711}
	BenzeneProfile = Profile{R0: 100.0, A: -0.42, B: 0.65} // rough, MQ-135 is not made for benzene

	// MQ-5
	LPGProfile = Profile{R0: 6.5, A: -0.57, B: 2.3}
	CH4Profile = Profile{R0: 10.0, A: -0.44, B: 1.18}
	H2Profile  = Profile{R0: 21.24, A: -0.48, B: 0.93}
)

// ProfileFor returns the built-in profile for p.
func ProfileFor(p gas.Pollutant) (Profile, bool) {
	switch p {
	case gas.CO:
		return COProfile, true
	case gas.Benzene:
		return BenzeneProfile, true
	case gas.NH3:
		return NH3Profile, true
	case gas.Smoke:
		return SmokeProfile, true
	case gas.LPG:
		return LPGProfile, true
	case gas.CH4:
		return CH4Profile, true
	case gas.H2:
		return H2Profile, true
	}
	return Profile{}, false
}

// Voltage converts an ADC value to the voltage across the load resistor.
func (c Circuit) Voltage(analog int) float64 {
	return float64(analog) * (c.Vcc / c.ADCMax)
}

// Resistance computes the sensor resistance from the measured voltage. No
// voltage means MaxResistance; a saturated reading means zero resistance.
func (c Circuit) Resistance(vOut float64) float64 {
	if vOut <= 0 {
		return MaxResistance
	}
	if vOut >= c.Vcc {
		return 0
	}
	return (c.Vcc - vOut) * c.RL / vOut
}

// PPM converts an ADC value to a concentration using profile p.
func (c Circuit) PPM(analog int, p Profile) float64 {
	return p.PPM(c.Resistance(c.Voltage(analog)))
}

// PPM converts a sensor resistance to a concentration. A profile without a
// positive R0 always yields 0. The result is always finite.
func (p Profile) PPM(rs float64) float64 {
	if p.R0 <= 0 {
		return 0
	}

	exp := p.A*math.Log10(rs/p.R0) + p.B
	if math.IsNaN(exp) {
		// A == 0 with an infinite log: the curve is flat
		exp = p.B
	}

	ppm := math.Pow(10, exp)
	if math.IsInf(ppm, 1) {
		return math.MaxFloat64
	}
	return ppm
}

// Convert converts an ADC value for pollutant p using the default circuit and
// built-in profiles.
func Convert(analog int, p gas.Pollutant) float64 {
	profile, _ := ProfileFor(p)
	return DefaultCircuit.PPM(analog, profile)
}

func ConvertCO(analog int) float64      { return DefaultCircuit.PPM(analog, COProfile) }
func ConvertBenzene(analog int) float64 { return DefaultCircuit.PPM(analog, BenzeneProfile) }
func ConvertNH3(analog int) float64     { return DefaultCircuit.PPM(analog, NH3Profile) }
func ConvertSmoke(analog int) float64   { return DefaultCircuit.PPM(analog, SmokeProfile) }
func ConvertLPG(analog int) float64     { return DefaultCircuit.PPM(analog, LPGProfile) }
func ConvertCH4(analog int) float64     { return DefaultCircuit.PPM(analog, CH4Profile) }
func ConvertH2(analog int) float64      { return DefaultCircuit.PPM(analog, H2Profile) }
