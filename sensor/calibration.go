package sensor

import (
	"fmt"

	"github.com/pridkett/airsage2mqtt/gas"
)

// Calibration is a circuit plus one profile per pollutant. It is built once at
// startup and only read afterwards.
type Calibration struct {
	Circuit  Circuit
	Profiles map[gas.Pollutant]Profile
}

// DefaultCalibration returns the default circuit with the built-in profiles.
func DefaultCalibration() Calibration {
	profiles := make(map[gas.Pollutant]Profile, len(gas.All))
	for _, p := range gas.All {
		profiles[p], _ = ProfileFor(p)
	}
	return Calibration{Circuit: DefaultCircuit, Profiles: profiles}
}

// Validate reports circuit constants that would make every conversion
// meaningless. Profiles are not checked: a bad R0 already degrades to 0 ppm.
func (c Calibration) Validate() error {
	if c.Circuit.Vcc <= 0 {
		return fmt.Errorf("vcc must be positive, got %v", c.Circuit.Vcc)
	}
	if c.Circuit.RL <= 0 {
		return fmt.Errorf("load resistance must be positive, got %v", c.Circuit.RL)
	}
	if c.Circuit.ADCMax <= 0 {
		return fmt.Errorf("adc max must be positive, got %v", c.Circuit.ADCMax)
	}
	return nil
}

// Convert converts an ADC value for pollutant p.
func (c Calibration) Convert(analog int, p gas.Pollutant) float64 {
	return c.Circuit.PPM(analog, c.Profiles[p])
}

// Concentrations converts every channel present in raw.
func (c Calibration) Concentrations(raw gas.RawReading) gas.Concentrations {
	out := make(gas.Concentrations, len(raw.Values))
	for p, v := range raw.Values {
		out[p] = c.Convert(v, p)
	}
	return out
}
