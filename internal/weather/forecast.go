package weather

import "inkwell/internal/models"

// Forecast bundles the hourly and daily outlook for a resolved city.
type Forecast struct {
	City   *models.City
	Hourly []HourlyForecast
	Daily  []DailyForecast
}

// HourlyForecast is one hour of forecast data.
type HourlyForecast struct {
	Time                     string
	Temperature              float64
	RelativeHumidity         float64
	SurfacePressure          float64
	CloudCover               int
	WindSpeed                float64
	PrecipitationProbability int
	WeatherCode              int
}

// Description returns the textual version of the WMO weather code.
func (f HourlyForecast) Description() string {
	return describeCode(f.WeatherCode)
}

// DailyForecast is one day of forecast data.
type DailyForecast struct {
	Time                     string
	TemperatureMax           float64
	TemperatureMin           float64
	PrecipitationProbability int
	WeatherCode              int
	Sunrise                  string
	Sunset                   string
}

// Description returns the textual version of the WMO weather code.
func (f DailyForecast) Description() string {
	return describeCode(f.WeatherCode)
}

// describeCode maps WMO weather interpretation codes to short text.
func describeCode(code int) string {
	switch code {
	case 0:
		return "clear sky"
	case 1, 2, 3:
		return "partly cloudy"
	case 45, 48:
		return "foggy"
	case 51, 53, 55:
		return "light precipitation"
	case 56, 57:
		return "freezing light precipitation"
	case 61, 63, 65:
		return "rain"
	case 66, 67:
		return "freezing rain"
	case 71, 73, 75:
		return "snow fall"
	case 77:
		return "snow grains"
	case 80, 81, 82:
		return "rain shower"
	case 85, 86:
		return "snow shower"
	case 95:
		return "thunderstorm"
	case 96, 99:
		return "thunderstorm and hail"
	default:
		return "unknown"
	}
}
