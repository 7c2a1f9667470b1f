package aqi

// Category is an EPA AQI category.
type Category int

const (
	Good Category = iota
	Moderate
	UnhealthyForSensitive
	Unhealthy
	VeryUnhealthy
	Hazardous
	OutOfRange
)

func (c Category) String() string {
	switch c {
	case Good:
		return "Good"
	case Moderate:
		return "Moderate"
	case UnhealthyForSensitive:
		return "Unhealthy for Sensitive Groups"
	case Unhealthy:
		return "Unhealthy"
	case VeryUnhealthy:
		return "Very Unhealthy"
	case Hazardous:
		return "Hazardous"
	}
	return "Out of Range"
}

// Classification is everything a display needs to style an AQI value.
type Classification struct {
	Category      Category
	Color         string
	HealthMessage string
}

// CategoryOf returns the category of aqi. Negative values and values above
// 500 are OutOfRange.
func CategoryOf(aqi int) Category {
	switch {
	case aqi < 0:
		return OutOfRange
	case aqi <= 50:
		return Good
	case aqi <= 100:
		return Moderate
	case aqi <= 150:
		return UnhealthyForSensitive
	case aqi <= 200:
		return Unhealthy
	case aqi <= 300:
		return VeryUnhealthy
	case aqi <= 500:
		return Hazardous
	}
	return OutOfRange
}

// ColorOf returns the hex color of aqi. Anything outside 0-300 is maroon.
func ColorOf(aqi int) string {
	switch CategoryOf(aqi) {
	case Good:
		return "#00E400" // green
	case Moderate:
		return "#FFFF00" // yellow
	case UnhealthyForSensitive:
		return "#FF7E00" // orange
	case Unhealthy:
		return "#FF0000" // red
	case VeryUnhealthy:
		return "#8F3F97" // purple
	}
	return "#7E0023" // maroon
}

// HealthMessageOf returns the health implications of aqi.
func HealthMessageOf(aqi int) string {
	switch CategoryOf(aqi) {
	case Good:
		return "Air quality is satisfactory, and air pollution poses little or no risk."
	case Moderate:
		return "Air quality is acceptable. However, some pollutants may be a concern for a very small number of people who are unusually sensitive to air pollution."
	case UnhealthyForSensitive:
		return "Members of sensitive groups may experience health effects. The general public is less likely to be affected."
	case Unhealthy:
		return "Some members of the general public may experience health effects; members of sensitive groups may experience more serious health effects."
	case VeryUnhealthy:
		return "Health alert: The risk of health effects is increased for everyone."
	}
	return "Health warning of emergency conditions: everyone is more likely to be affected."
}

// Classify returns the category, color and health message of aqi.
func Classify(aqi int) Classification {
	return Classification{
		Category:      CategoryOf(aqi),
		Color:         ColorOf(aqi),
		HealthMessage: HealthMessageOf(aqi),
	}
}
