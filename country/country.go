package country

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile describes one supported bidding zone. Profiles are static and
// read-only for the lifetime of the process.
type Profile struct {
	Code          string  // two-letter lowercase country code
	Name          string
	BiddingZone   string  // ENTSO-E EIC area code
	StekkerRegion string  // region identifier used by stekker.app
	Currency      string  // ISO 4217
	Timezone      string  // IANA zone name
	DefaultVat    float64 // fraction in [0,1)
	Locale        string
}

// Location resolves the profile's IANA timezone. The zone names in the
// registry are validated at init, so failure here means a broken tzdata
// installation.
func (p Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		panic(fmt.Sprintf("failed to load timezone %s: %v", p.Timezone, err))
	}
	return loc
}

func (p Profile) VatPercent() string {
	return fmt.Sprintf("%d%%", int(p.DefaultVat*100+0.5))
}

var registry = map[string]Profile{
	"nl": {
		Code:          "nl",
		Name:          "Netherlands",
		BiddingZone:   "10YNL----------L",
		StekkerRegion: "NL",
		Currency:      "EUR",
		Timezone:      "Europe/Amsterdam",
		DefaultVat:    0.21,
		Locale:        "nl-NL",
	},
	"de": {
		Code:          "de",
		Name:          "Germany",
		BiddingZone:   "10Y1001A1001A82H",
		StekkerRegion: "DE-LU",
		Currency:      "EUR",
		Timezone:      "Europe/Berlin",
		DefaultVat:    0.19,
		Locale:        "de-DE",
	},
	"be": {
		Code:          "be",
		Name:          "Belgium",
		BiddingZone:   "10YBE----------2",
		StekkerRegion: "BE",
		Currency:      "EUR",
		Timezone:      "Europe/Brussels",
		DefaultVat:    0.21,
		Locale:        "nl-BE",
	},
	"fr": {
		Code:          "fr",
		Name:          "France",
		BiddingZone:   "10YFR-RTE------C",
		StekkerRegion: "FR",
		Currency:      "EUR",
		Timezone:      "Europe/Paris",
		DefaultVat:    0.20,
		Locale:        "fr-FR",
	},
	"at": {
		Code:          "at",
		Name:          "Austria",
		BiddingZone:   "10YAT-APG------L",
		StekkerRegion: "AT",
		Currency:      "EUR",
		Timezone:      "Europe/Vienna",
		DefaultVat:    0.20,
		Locale:        "de-AT",
	},
	"ch": {
		Code:          "ch",
		Name:          "Switzerland",
		BiddingZone:   "10YCH-SWISSGRIDZ",
		StekkerRegion: "CH",
		Currency:      "CHF",
		Timezone:      "Europe/Zurich",
		DefaultVat:    0.077,
		Locale:        "de-CH",
	},
	"dk": {
		Code:          "dk",
		Name:          "Denmark",
		BiddingZone:   "10YDK-1--------W", // West Denmark
		StekkerRegion: "DK1",
		Currency:      "DKK",
		Timezone:      "Europe/Copenhagen",
		DefaultVat:    0.25,
		Locale:        "da-DK",
	},
	"no": {
		Code:          "no",
		Name:          "Norway",
		BiddingZone:   "10YNO-2--------T", // South-west Norway
		StekkerRegion: "NO2",
		Currency:      "NOK",
		Timezone:      "Europe/Oslo",
		DefaultVat:    0.25,
		Locale:        "nb-NO",
	},
	"se": {
		Code:          "se",
		Name:          "Sweden",
		BiddingZone:   "10Y1001A1001A44P", // SE1, Luleå
		StekkerRegion: "SE1",
		Currency:      "SEK",
		Timezone:      "Europe/Stockholm",
		DefaultVat:    0.25,
		Locale:        "sv-SE",
	},
}

func init() {
	for code, p := range registry {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			panic(fmt.Sprintf("invalid timezone for country %s: %v", code, err))
		}
	}
}

// Lookup returns the profile for a country code, case-insensitively. There is
// no fallback country: an unknown code returns ok=false.
func Lookup(code string) (Profile, bool) {
	p, ok := registry[strings.ToLower(code)]
	return p, ok
}

// All returns every supported profile ordered by country code.
func All() []Profile {
	profiles := make([]Profile, 0, len(registry))
	for _, p := range registry {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Code < profiles[j].Code })
	return profiles
}
