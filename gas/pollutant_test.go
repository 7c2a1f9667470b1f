package gas

import (
	"testing"
)

func TestParsePollutant(t *testing.T) {
	tests := []struct {
		in   string
		want Pollutant
	}{
		{in: "CO", want: CO},
		{in: "co", want: CO},
		{in: "Benzene", want: Benzene},
		{in: "Benzen", want: Benzene},
		{in: " NH3 ", want: NH3},
		{in: "Smoke", want: Smoke},
		{in: "LPG", want: LPG},
		{in: "CH4", want: CH4},
		{in: "Methane", want: CH4},
		{in: "H2", want: H2},
		{in: "hydrogen", want: H2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePollutant(tt.in)
			if err != nil {
				t.Fatalf("ParsePollutant(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePollutant(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePollutant_Invalid(t *testing.T) {
	for _, in := range []string{"", "Time", "CO2", "NOx"} {
		if _, err := ParsePollutant(in); err == nil {
			t.Errorf("ParsePollutant(%q) error = nil, want non-nil", in)
		}
	}
}

func TestPollutant_Names(t *testing.T) {
	tests := []struct {
		p       Pollutant
		name    string
		display string
		key     string
	}{
		{CO, "CO", "CO", "co"},
		{Benzene, "Benzene", "Benzene", "benzene"},
		{NH3, "NH3", "NH3", "nh3"},
		{Smoke, "Smoke", "Smoke", "smoke"},
		{LPG, "LPG", "LPG", "lpg"},
		{CH4, "CH4", "Methane", "ch4"},
		{H2, "H2", "Hydrogen", "h2"},
	}

	for _, tt := range tests {
		if got := tt.p.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.p.DisplayName(); got != tt.display {
			t.Errorf("DisplayName() = %q, want %q", got, tt.display)
		}
		if got := tt.p.Key(); got != tt.key {
			t.Errorf("Key() = %q, want %q", got, tt.key)
		}
		if !tt.p.Valid() {
			t.Errorf("%v.Valid() = false, want true", tt.p)
		}
	}

	if Pollutant(42).Valid() {
		t.Errorf("Pollutant(42).Valid() = true, want false")
	}
	if got := Pollutant(42).String(); got != "Pollutant(42)" {
		t.Errorf("Pollutant(42).String() = %q", got)
	}
}

func TestConcentrations_Missing(t *testing.T) {
	c := Concentrations{CO: 1.5, LPG: 0}

	if v, ok := c.Get(LPG); !ok || v != 0 {
		t.Errorf("Get(LPG) = %v, %v; want 0, true", v, ok)
	}
	if _, ok := c.Get(H2); ok {
		t.Errorf("Get(H2) ok = true, want false")
	}

	missing := c.Missing()
	want := []Pollutant{Benzene, NH3, Smoke, CH4, H2}
	if len(missing) != len(want) {
		t.Fatalf("Missing() = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("Missing()[%d] = %v, want %v", i, missing[i], want[i])
		}
	}
}

func TestThresholds(t *testing.T) {
	for _, p := range All {
		if _, ok := ThresholdsFor(p); !ok {
			t.Errorf("ThresholdsFor(%v) missing", p)
		}
	}

	smoke, _ := ThresholdsFor(Smoke)
	tests := []struct {
		v        float64
		level    Level
		fraction float64
	}{
		{v: -1, level: Normal, fraction: 0},
		{v: 0, level: Normal, fraction: 0},
		{v: 349.9, level: Normal, fraction: 349.9 / 700},
		{v: 350, level: Warning, fraction: 0.5},
		{v: 560, level: Danger, fraction: 0.8},
		{v: 700, level: Danger, fraction: 1},
		{v: 5000, level: Danger, fraction: 1},
	}

	for _, tt := range tests {
		if got := smoke.Level(tt.v); got != tt.level {
			t.Errorf("Level(%v) = %v, want %v", tt.v, got, tt.level)
		}
		if got := smoke.Fraction(tt.v); got != tt.fraction {
			t.Errorf("Fraction(%v) = %v, want %v", tt.v, got, tt.fraction)
		}
	}
}
