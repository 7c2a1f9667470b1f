package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pridkett/airsage2mqtt/aqi"
	"github.com/pridkett/airsage2mqtt/gas"
	"github.com/pridkett/airsage2mqtt/sensor"
)

// layouts the board has been seen to use for its "Time" field
var readingTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// decodeReading parses a board payload such as
//
//	{"CO":412,"Benzen":"130","NH3":98,"Time":"2025-04-02 10:15:00"}
//
// Values may be numbers or numeric strings. Unknown keys are skipped. When
// there is no usable time the reading is stamped with now.
func decodeReading(r io.Reader, now time.Time) (gas.RawReading, error) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return gas.RawReading{}, fmt.Errorf("decoding reading: %w", err)
	}

	raw := gas.RawReading{Time: now, Values: make(map[gas.Pollutant]int, len(gas.All))}
	for key, value := range payload {
		if key == "Time" {
			if t, ok := parseReadingTime(value); ok {
				raw.Time = t
			} else {
				logger.Debugf("Unparseable reading time %s - using receipt time", value)
			}
			continue
		}

		p, err := gas.ParsePollutant(key)
		if err != nil {
			logger.Debugf("Ignoring reading field %q", key)
			continue
		}

		var n json.Number
		if err := json.Unmarshal(value, &n); err != nil {
			return gas.RawReading{}, fmt.Errorf("reading field %q: %w", key, err)
		}
		v, err := numberToInt(n)
		if err != nil {
			return gas.RawReading{}, fmt.Errorf("reading field %q: %w", key, err)
		}
		raw.Values[p] = v
	}
	return raw, nil
}

// numberToInt converts an ADC value. Values outside the int32 range are
// rejected rather than wrapped.
func numberToInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, fmt.Errorf("value %d out of range", i)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid value %v", f)
	}
	f = math.Round(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("value %v out of range", n)
	}
	return int(f), nil
}

func parseReadingTime(value json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil || s == "" {
		return time.Time{}, false
	}
	for _, layout := range readingTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// airSageStatus is what gets published for every reading. Concentrations are
// pointers so that channels the board did not report are left out.
type airSageStatus struct {
	Device   string    `json:"device" mqtt:"-" hass:"-" influx:"-"`
	Time     time.Time `json:"time" mqtt:"-" hass:"-" influx:"-"`
	CO       *float64  `json:"co,omitempty" mqtt:"co" hass:"co,ppm,carbon_monoxide" influx:"co"`
	Benzene  *float64  `json:"benzene,omitempty" mqtt:"benzene" hass:"benzene,ppm" influx:"benzene"`
	NH3      *float64  `json:"nh3,omitempty" mqtt:"nh3" hass:"nh3,ppm" influx:"nh3"`
	Smoke    *float64  `json:"smoke,omitempty" mqtt:"smoke" hass:"smoke,ppm" influx:"smoke"`
	LPG      *float64  `json:"lpg,omitempty" mqtt:"lpg" hass:"lpg,ppm" influx:"lpg"`
	CH4      *float64  `json:"ch4,omitempty" mqtt:"ch4" hass:"ch4,ppm" influx:"ch4"`
	H2       *float64  `json:"h2,omitempty" mqtt:"h2" hass:"h2,ppm" influx:"h2"`
	AqiCO    int       `json:"aqi_co" mqtt:"aqi_co" hass:"aqi_co,-,aqi" influx:"aqi_co"`
	AqiBenz  int       `json:"aqi_benzene" mqtt:"aqi_benzene" hass:"aqi_benzene,-,aqi" influx:"aqi_benzene"`
	AqiNH3   int       `json:"aqi_nh3" mqtt:"aqi_nh3" hass:"aqi_nh3,-,aqi" influx:"aqi_nh3"`
	AqiSmoke int       `json:"aqi_smoke" mqtt:"aqi_smoke" hass:"aqi_smoke,-,aqi" influx:"aqi_smoke"`
	AqiLPG   int       `json:"aqi_lpg" mqtt:"aqi_lpg" hass:"aqi_lpg,-,aqi" influx:"aqi_lpg"`
	AqiCH4   int       `json:"aqi_ch4" mqtt:"aqi_ch4" hass:"aqi_ch4,-,aqi" influx:"aqi_ch4"`
	AqiH2    int       `json:"aqi_h2" mqtt:"aqi_h2" hass:"aqi_h2,-,aqi" influx:"aqi_h2"`
	AQI      int       `json:"aqi" mqtt:"aqi" hass:"aqi,-,aqi" influx:"aqi"`
	Category string    `json:"category" mqtt:"category" hass:"category" influx:"category"`
	Color    string    `json:"color" mqtt:"color" hass:"-" influx:"-"`
	Health   string    `json:"health" mqtt:"health" hass:"health" influx:"-"`
	Dominant string    `json:"dominant" mqtt:"dominant" hass:"dominant" influx:"-"`
	Missing  []string  `json:"missing,omitempty" mqtt:"-" hass:"-" influx:"-"`

	LevelCO      *string `json:"level_co,omitempty" mqtt:"level_co" hass:"level_co" influx:"level_co"`
	LevelBenzene *string `json:"level_benzene,omitempty" mqtt:"level_benzene" hass:"level_benzene" influx:"level_benzene"`
	LevelNH3     *string `json:"level_nh3,omitempty" mqtt:"level_nh3" hass:"level_nh3" influx:"level_nh3"`
	LevelSmoke   *string `json:"level_smoke,omitempty" mqtt:"level_smoke" hass:"level_smoke" influx:"level_smoke"`
	LevelLPG     *string `json:"level_lpg,omitempty" mqtt:"level_lpg" hass:"level_lpg" influx:"level_lpg"`
	LevelCH4     *string `json:"level_ch4,omitempty" mqtt:"level_ch4" hass:"level_ch4" influx:"level_ch4"`
	LevelH2      *string `json:"level_h2,omitempty" mqtt:"level_h2" hass:"level_h2" influx:"level_h2"`
}

// newStatus runs a raw reading through calibration, AQI mapping and
// classification.
func newStatus(device string, raw gas.RawReading, cal sensor.Calibration) *airSageStatus {
	conc := cal.Concentrations(raw)
	result := aqi.Compute(conc)
	class := result.Classification()

	status := &airSageStatus{
		Device:   device,
		Time:     raw.Time,
		AQI:      result.Overall,
		Category: class.Category.String(),
		Color:    class.Color,
		Health:   class.HealthMessage,
	}
	// only channels the board reported can be dominant
	reported := aqi.Result{PerPollutant: make(map[gas.Pollutant]int, len(conc))}
	for p := range conc {
		reported.PerPollutant[p] = result.PerPollutant[p]
	}
	if dom, ok := reported.Dominant(); ok {
		status.Dominant = dom.DisplayName()
	}

	for _, p := range gas.All {
		var (
			ppm   *float64
			level *string
		)
		if v, ok := conc.Get(p); ok {
			ppm = &v
			if t, ok := gas.ThresholdsFor(p); ok {
				l := t.Level(v).String()
				level = &l
			}
		}
		sub := result.PerPollutant[p]

		switch p {
		case gas.CO:
			status.CO, status.AqiCO, status.LevelCO = ppm, sub, level
		case gas.Benzene:
			status.Benzene, status.AqiBenz, status.LevelBenzene = ppm, sub, level
		case gas.NH3:
			status.NH3, status.AqiNH3, status.LevelNH3 = ppm, sub, level
		case gas.Smoke:
			status.Smoke, status.AqiSmoke, status.LevelSmoke = ppm, sub, level
		case gas.LPG:
			status.LPG, status.AqiLPG, status.LevelLPG = ppm, sub, level
		case gas.CH4:
			status.CH4, status.AqiCH4, status.LevelCH4 = ppm, sub, level
		case gas.H2:
			status.H2, status.AqiH2, status.LevelH2 = ppm, sub, level
		}
	}
	for _, p := range conc.Missing() {
		status.Missing = append(status.Missing, p.String())
	}
	return status
}

// concentrations returns the ppm values carried by the status.
func (s *airSageStatus) concentrations() gas.Concentrations {
	c := gas.Concentrations{}
	for p, v := range map[gas.Pollutant]*float64{
		gas.CO:      s.CO,
		gas.Benzene: s.Benzene,
		gas.NH3:     s.NH3,
		gas.Smoke:   s.Smoke,
		gas.LPG:     s.LPG,
		gas.CH4:     s.CH4,
		gas.H2:      s.H2,
	} {
		if v != nil {
			c[p] = *v
		}
	}
	return c
}

// subIndices returns the per-pollutant AQI values carried by the status.
func (s *airSageStatus) subIndices() map[gas.Pollutant]int {
	return map[gas.Pollutant]int{
		gas.CO:      s.AqiCO,
		gas.Benzene: s.AqiBenz,
		gas.NH3:     s.AqiNH3,
		gas.Smoke:   s.AqiSmoke,
		gas.LPG:     s.AqiLPG,
		gas.CH4:     s.AqiCH4,
		gas.H2:      s.AqiH2,
	}
}
