package restaurant

import (
	"regexp"
	"strings"
)

// AddressComponents holds the pieces parsed out of a street address.
// All fields stay nil when the address format is not recognized.
type AddressComponents struct {
	Suburb   *string
	State    *string
	Postcode *string
	Country  *string
}

// AddressParser extracts address components for one regional format.
// Parsing is best-effort and must never fail the calling pipeline.
type AddressParser interface {
	Parse(streetAddress string) AddressComponents
}

// --------------------------------------------------
// Australian format
// --------------------------------------------------

var auStates = map[string]bool{
	"NSW": true,
	"VIC": true,
	"QLD": true,
	"SA":  true,
	"WA":  true,
	"TAS": true,
	"NT":  true,
	"ACT": true,
}

// "South Brisbane QLD 4101" -> suburb, state, postcode
var (
	auLocationPattern      = regexp.MustCompile(`^(.+?)\s+([A-Z]{2,3})\s+(\d{4})$`)
	auStatePostcodePattern = regexp.MustCompile(`\b(NSW|VIC|QLD|SA|WA|TAS|NT|ACT)\s+\d{4}\b`)
)

type AustralianAddressParser struct{}

func NewAustralianAddressParser() *AustralianAddressParser {
	return &AustralianAddressParser{}
}

func (p *AustralianAddressParser) Parse(streetAddress string) AddressComponents {
	var components AddressComponents

	if !p.isAustralian(streetAddress) {
		return components
	}

	parts := splitAndTrim(streetAddress, ",")
	if len(parts) < 2 {
		return components
	}

	switch {
	case len(parts) == 2:
		// "29 Stanley St Plaza, South Brisbane QLD 4101"
		p.parseLocation(parts[1], &components)

	case len(parts) == 3:
		// "123 Eagle St, Brisbane City QLD 4000, Australia"
		components.Country = strptr(parts[2])
		p.parseLocation(parts[1], &components)

	default:
		// "Riverside Centre, 123 Eagle St, Brisbane City QLD 4000, Australia"
		components.Country = strptr(parts[len(parts)-1])
		p.parseLocation(parts[len(parts)-2], &components)
	}

	// A matched AU state implies the country even when it isn't spelled out
	if components.Country == nil && components.State != nil && auStates[*components.State] {
		components.Country = strptr("Australia")
	}

	return components
}

func (p *AustralianAddressParser) parseLocation(location string, components *AddressComponents) {
	location = strings.TrimSpace(location)

	match := auLocationPattern.FindStringSubmatch(location)
	if match == nil {
		// Fallback: keep the whole segment as the suburb
		components.Suburb = strptr(location)
		return
	}

	components.Suburb = strptr(strings.TrimSpace(match[1]))
	components.State = strptr(match[2])
	components.Postcode = strptr(match[3])
}

func (p *AustralianAddressParser) isAustralian(streetAddress string) bool {
	if strings.Contains(strings.ToLower(streetAddress), "australia") {
		return true
	}
	return auStatePostcodePattern.MatchString(streetAddress)
}

func splitAndTrim(s, sep string) []string {
	raw := strings.Split(s, sep)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func strptr(s string) *string { return &s }
