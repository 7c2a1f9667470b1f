package aqi

import "github.com/pridkett/airsage2mqtt/gas"

// Breakpoint tables in ppm. Only CO follows the EPA breakpoints; the other
// gases have no official AQI and use health or explosive-limit based
// thresholds.
var (
	COTable = Table{
		{0, 0},
		{4.4, 50},
		{9.4, 100},
		{12.4, 150},
		{15.4, 200},
		{30.4, 300},
		{40.4, 400},
		{50.4, 500},
	}

	BenzeneTable = Table{
		{0, 0},
		{0.005, 50},
		{0.05, 100},
		{0.3, 150},
		{1.0, 200},
		{3.0, 300},
		{5.0, 400},
		{10.0, 500},
	}

	// smoke is a particulate proxy, scaled like PM2.5
	SmokeTable = Table{
		{0, 0},
		{50, 50},
		{150, 100},
		{350, 150},
		{600, 200},
		{1000, 300},
		{1500, 400},
		{2000, 500},
	}

	NH3Table = Table{
		{0, 0},
		{0.2, 50},
		{1.0, 100},
		{5.0, 150},
		{15.0, 200},
		{30.0, 300},
		{40.0, 400},
		{50.0, 500},
	}

	LPGTable = Table{
		{0, 0},
		{100, 50},
		{300, 100},
		{800, 150},
		{1500, 200},
		{3000, 300},
		{6000, 400},
		{10000, 500},
	}

	CH4Table = Table{
		{0, 0},
		{500, 50},
		{1000, 100},
		{3000, 150},
		{5000, 200},
		{10000, 300},
		{15000, 400},
		{20000, 500},
	}

	// H2 lower explosive limit is around 40000 ppm
	H2Table = Table{
		{0, 0},
		{100, 50},
		{400, 100},
		{800, 150},
		{1500, 200},
		{3000, 300},
		{6000, 400},
		{10000, 500},
	}
)

// TableFor returns the breakpoint table of p.
func TableFor(p gas.Pollutant) (Table, bool) {
	switch p {
	case gas.CO:
		return COTable, true
	case gas.Benzene:
		return BenzeneTable, true
	case gas.NH3:
		return NH3Table, true
	case gas.Smoke:
		return SmokeTable, true
	case gas.LPG:
		return LPGTable, true
	case gas.CH4:
		return CH4Table, true
	case gas.H2:
		return H2Table, true
	}
	return nil, false
}
