// Package gas holds the pollutant kinds measured by the sensor board and the
// reading types passed between the calibration and AQI stages.
package gas

import (
	"fmt"
	"strings"
	"time"
)

// Pollutant identifies one sensor channel.
type Pollutant int

const (
	CO Pollutant = iota
	Benzene
	NH3
	Smoke
	LPG
	CH4
	H2
)

// All lists every pollutant in reporting order.
var All = []Pollutant{CO, Benzene, NH3, Smoke, LPG, CH4, H2}

func (p Pollutant) String() string {
	switch p {
	case CO:
		return "CO"
	case Benzene:
		return "Benzene"
	case NH3:
		return "NH3"
	case Smoke:
		return "Smoke"
	case LPG:
		return "LPG"
	case CH4:
		return "CH4"
	case H2:
		return "H2"
	}
	return fmt.Sprintf("Pollutant(%d)", int(p))
}

// DisplayName is the human readable name shown next to an AQI value.
func (p Pollutant) DisplayName() string {
	switch p {
	case CH4:
		return "Methane"
	case H2:
		return "Hydrogen"
	}
	return p.String()
}

// Key is the lowercase short name, e.g. "nh3".
func (p Pollutant) Key() string {
	return strings.ToLower(p.String())
}

// Valid reports whether p is one of the known pollutants.
func (p Pollutant) Valid() bool {
	return p >= CO && p <= H2
}

// ParsePollutant accepts the short name, the display name or the lowercase
// key of a pollutant. "Benzen" is accepted because that is what the board
// firmware sends.
func ParsePollutant(s string) (Pollutant, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, p := range All {
		if key == p.Key() || key == strings.ToLower(p.DisplayName()) {
			return p, nil
		}
	}
	if key == "benzen" {
		return Benzene, nil
	}
	return 0, fmt.Errorf("unknown pollutant %q", s)
}

// RawReading is one sample of analog values as read from the ADC. A channel
// missing from Values was not reported by the board.
type RawReading struct {
	Time   time.Time
	Values map[Pollutant]int
}

// Concentrations maps a pollutant to its concentration in ppm. A missing key
// means there is no reading for that pollutant.
type Concentrations map[Pollutant]float64

// Get returns the concentration for p and whether it is present.
func (c Concentrations) Get(p Pollutant) (float64, bool) {
	v, ok := c[p]
	return v, ok
}

// Missing returns the pollutants from All that have no concentration.
func (c Concentrations) Missing() []Pollutant {
	var missing []Pollutant
	for _, p := range All {
		if _, ok := c[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
