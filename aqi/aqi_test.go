package aqi

import (
	"math"
	"testing"

	"github.com/pridkett/airsage2mqtt/gas"
)

func TestTables_Valid(t *testing.T) {
	for _, p := range gas.All {
		table, ok := TableFor(p)
		if !ok {
			t.Fatalf("TableFor(%v) missing", p)
		}
		if err := table.Validate(); err != nil {
			t.Errorf("%v table: Validate() error = %v", p, err)
		}
		if len(table) != 8 {
			t.Errorf("%v table has %d breakpoints, want 8", p, len(table))
		}
		if table[0].AQI != 0 || table[len(table)-1].AQI != 500 {
			t.Errorf("%v table spans %d..%d, want 0..500", p, table[0].AQI, table[len(table)-1].AQI)
		}
	}

	if _, ok := TableFor(gas.Pollutant(99)); ok {
		t.Errorf("TableFor(unknown) ok = true, want false")
	}
}

func TestTable_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{name: "empty", table: Table{}},
		{name: "single point", table: Table{{0, 0}}},
		{name: "flat concentration", table: Table{{0, 0}, {1, 50}, {1, 100}}},
		{name: "decreasing aqi", table: Table{{0, 0}, {1, 50}, {2, 40}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); err == nil {
				t.Errorf("Validate() error = nil, want non-nil")
			}
		})
	}
}

func TestTable_AQI_Breakpoints(t *testing.T) {
	for _, p := range gas.All {
		table, _ := TableFor(p)
		for _, bp := range table {
			if got := table.AQI(bp.Concentration); got != bp.AQI {
				t.Errorf("%v: AQI(%v) = %d, want %d", p, bp.Concentration, got, bp.AQI)
			}
		}
	}
}

func TestTable_AQI_Midpoints(t *testing.T) {
	want := []int{25, 75, 125, 175, 250, 350, 450}
	for _, p := range gas.All {
		table, _ := TableFor(p)
		for i := 0; i < len(table)-1; i++ {
			mid := (table[i].Concentration + table[i+1].Concentration) / 2
			if got := table.AQI(mid); got != want[i] {
				t.Errorf("%v: AQI(%v) = %d, want %d", p, mid, got, want[i])
			}
		}
	}
}

func TestTable_AQI_Monotonic(t *testing.T) {
	for _, p := range gas.All {
		table, _ := TableFor(p)
		for i := 0; i < len(table)-1; i++ {
			lo, hi := table[i], table[i+1]
			step := (hi.Concentration - lo.Concentration) / 97
			prev := lo.AQI
			for c := lo.Concentration + step; c < hi.Concentration; c += step {
				got := table.AQI(c)
				if got < lo.AQI || got > hi.AQI {
					t.Fatalf("%v: AQI(%v) = %d, outside [%d, %d]", p, c, got, lo.AQI, hi.AQI)
				}
				if got < prev {
					t.Fatalf("%v: AQI(%v) = %d decreased from %d", p, c, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestTable_AQI_Clamp(t *testing.T) {
	for _, p := range gas.All {
		table, _ := TableFor(p)
		top := table[len(table)-1].Concentration
		for _, c := range []float64{top * 1.01, top * 10, math.MaxFloat64, math.Inf(1)} {
			if got := table.AQI(c); got != 500 {
				t.Errorf("%v: AQI(%v) = %d, want 500", p, c, got)
			}
		}
		for _, c := range []float64{-1, math.Inf(-1), math.NaN()} {
			if got := table.AQI(c); got != 0 {
				t.Errorf("%v: AQI(%v) = %d, want 0", p, c, got)
			}
		}
	}
}

func TestTable_AQI_Empty(t *testing.T) {
	if got := (Table{}).AQI(12); got != 0 {
		t.Errorf("empty table AQI = %d, want 0", got)
	}
}

func TestForPollutant(t *testing.T) {
	tests := []struct {
		name string
		p    gas.Pollutant
		c    float64
		want int
	}{
		{name: "CO exact breakpoint", p: gas.CO, c: 9.4, want: 100},
		{name: "CO interval midpoint", p: gas.CO, c: 6.9, want: 75},
		{name: "CO rounds up", p: gas.CO, c: 9.5, want: 102},
		{name: "CO rounds down", p: gas.CO, c: 2.0, want: 23},
		{name: "LPG above table", p: gas.LPG, c: 50000, want: 500},
		{name: "LPG half rounds away from zero", p: gas.LPG, c: 1, want: 1},
		{name: "LPG two and a half", p: gas.LPG, c: 5, want: 3},
		{name: "NH3", p: gas.NH3, c: 0.6, want: 75},
		{name: "Benzene", p: gas.Benzene, c: 0.0123, want: 58},
		{name: "unknown pollutant", p: gas.Pollutant(42), c: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForPollutant(tt.p, tt.c); got != tt.want {
				t.Errorf("ForPollutant(%v, %v) = %d, want %d", tt.p, tt.c, got, tt.want)
			}
		})
	}
}

func TestToAQI(t *testing.T) {
	got := ToAQI(gas.Concentrations{gas.CO: 9.4, gas.LPG: 50000})

	if len(got) != len(gas.All) {
		t.Fatalf("ToAQI() has %d entries, want %d", len(got), len(gas.All))
	}
	want := map[gas.Pollutant]int{
		gas.CO:      100,
		gas.Benzene: 0,
		gas.NH3:     0,
		gas.Smoke:   0,
		gas.LPG:     500,
		gas.CH4:     0,
		gas.H2:      0,
	}
	for p, w := range want {
		if got[p] != w {
			t.Errorf("ToAQI()[%v] = %d, want %d", p, got[p], w)
		}
	}

	empty := ToAQI(nil)
	for _, p := range gas.All {
		v, ok := empty[p]
		if !ok || v != 0 {
			t.Errorf("ToAQI(nil)[%v] = %d, %v; want 0, true", p, v, ok)
		}
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   map[gas.Pollutant]int
		want int
	}{
		{name: "empty", in: map[gas.Pollutant]int{}, want: 0},
		{name: "nil", in: nil, want: 0},
		{name: "max wins", in: map[gas.Pollutant]int{gas.CO: 40, gas.LPG: 120}, want: 120},
		{name: "hazardous dominates", in: map[gas.Pollutant]int{gas.CO: 100, gas.LPG: 500, gas.NH3: 20}, want: 500},
		{name: "all zero", in: map[gas.Pollutant]int{gas.CO: 0, gas.H2: 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.in); got != tt.want {
				t.Errorf("Overall(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	r := Compute(gas.Concentrations{gas.CO: 6.9, gas.NH3: 0.2, gas.H2: 50000})

	if r.Overall != 500 {
		t.Errorf("Overall = %d, want 500", r.Overall)
	}
	if r.PerPollutant[gas.CO] != 75 {
		t.Errorf("CO = %d, want 75", r.PerPollutant[gas.CO])
	}
	if r.PerPollutant[gas.NH3] != 50 {
		t.Errorf("NH3 = %d, want 50", r.PerPollutant[gas.NH3])
	}

	dom, ok := r.Dominant()
	if !ok || dom != gas.H2 {
		t.Errorf("Dominant() = %v, %v; want H2, true", dom, ok)
	}

	c := r.Classification()
	if c.Category != Hazardous || c.Color != "#7E0023" {
		t.Errorf("Classification() = %+v, want Hazardous #7E0023", c)
	}
}

func TestResult_Dominant(t *testing.T) {
	t.Run("ties go to first in order", func(t *testing.T) {
		r := Result{PerPollutant: map[gas.Pollutant]int{gas.H2: 80, gas.NH3: 80, gas.CO: 10}}
		if got, ok := r.Dominant(); !ok || got != gas.NH3 {
			t.Errorf("Dominant() = %v, %v; want NH3, true", got, ok)
		}
	})

	t.Run("all clean picks first", func(t *testing.T) {
		r := Compute(nil)
		if got, ok := r.Dominant(); !ok || got != gas.CO {
			t.Errorf("Dominant() = %v, %v; want CO, true", got, ok)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, ok := (Result{}).Dominant(); ok {
			t.Errorf("Dominant() ok = true, want false")
		}
	})
}
