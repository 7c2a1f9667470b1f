package gas

// Thresholds are the gauge limits for a pollutant, in ppm.
type Thresholds struct {
	Max     float64
	Warning float64
	Danger  float64
}

// Level is the gauge zone a concentration falls into.
type Level int

const (
	Normal Level = iota
	Warning
	Danger
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	}
	return "normal"
}

var thresholds = map[Pollutant]Thresholds{
	CO:      {Max: 1000, Warning: 500, Danger: 800},
	Benzene: {Max: 800, Warning: 400, Danger: 640},
	NH3:     {Max: 800, Warning: 400, Danger: 640},
	Smoke:   {Max: 700, Warning: 350, Danger: 560},
	LPG:     {Max: 1000, Warning: 500, Danger: 800},
	CH4:     {Max: 1000, Warning: 500, Danger: 800},
	H2:      {Max: 1000, Warning: 500, Danger: 800},
}

// ThresholdsFor returns the gauge thresholds of p.
func ThresholdsFor(p Pollutant) (Thresholds, bool) {
	t, ok := thresholds[p]
	return t, ok
}

// Level classifies v against the warning and danger limits.
func (t Thresholds) Level(v float64) Level {
	switch {
	case v >= t.Danger:
		return Danger
	case v >= t.Warning:
		return Warning
	}
	return Normal
}

// Fraction is how full the gauge is for v, between 0 and 1.
func (t Thresholds) Fraction(v float64) float64 {
	if t.Max <= 0 || v <= 0 || v != v {
		return 0
	}
	if v >= t.Max {
		return 1
	}
	return v / t.Max
}
