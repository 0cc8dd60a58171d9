package domain

// providerOK is the status code OpenWeatherMap reports on a successful lookup.
const providerOK = 200

// WeatherReport carries the current conditions for one city as reported by
// the provider. Code is the provider's own status indicator: a non-200 value
// (unknown city, bad query) is a normal negative result, not a system error.
type WeatherReport struct {
	Code        int
	Description string
	Temperature float64
	FeelsLike   float64
	IconID      string
}

// Found reports whether the provider actually resolved the city.
func (r WeatherReport) Found() bool {
	return r.Code == providerOK
}
