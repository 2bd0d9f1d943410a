package audio

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// MainsFrequency returns the local electrical mains frequency (50 or 60 Hz),
// falling back to 50 Hz when the timezone cannot be resolved.
func MainsFrequency() int {
	zone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50
	}
	return MainsFrequencyFor(zone)
}

// MainsFrequencyFor maps an IANA timezone to its country's mains frequency.
// Zones with no country (UTC, Etc/*) and unknown zones are 50 Hz, the more
// common system worldwide. Japan is split by region; the 50 Hz east is used.
func MainsFrequencyFor(zone string) int {
	if zone == "UTC" || zone == "GMT" || strings.HasPrefix(zone, "Etc/") {
		return 50
	}

	countries, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := countries.GetCountry(zone)
	if err != nil {
		return 50
	}
	if sixtyHertz[country] {
		return 60
	}
	return 50
}

// sixtyHertz is the set of countries on 60 Hz mains, keyed by the country names
// go-timezone-country reports.
var sixtyHertz = func() map[string]bool {
	names := []string{
		// North and Central America
		"United States", "Canada", "Mexico", "Belize", "Costa Rica", "El Salvador",
		"Guatemala", "Honduras", "Nicaragua", "Panama",
		// Caribbean
		"Bahamas", "Barbados", "Cayman Islands", "Cuba", "Dominican Republic", "Haiti",
		"Jamaica", "Puerto Rico", "Trinidad and Tobago", "U.S. Virgin Islands",
		// South America, where Brazil is predominantly 60 Hz
		"Brazil", "Colombia", "Ecuador", "Guyana", "Peru", "Suriname", "Venezuela",
		// Asia
		"South Korea", "Taiwan", "Philippines", "Saudi Arabia",
		// Pacific
		"Guam", "American Samoa", "Marshall Islands", "Micronesia", "Palau",
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}()
