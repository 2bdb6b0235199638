package transform

import (
	"strings"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/strapi"
)

// stateCodes maps full US state and territory names, lowercased, to their
// two-letter postal codes.
var stateCodes = map[string]string{
	"alabama":              "AL",
	"alaska":               "AK",
	"arizona":              "AZ",
	"arkansas":             "AR",
	"california":           "CA",
	"colorado":             "CO",
	"connecticut":          "CT",
	"delaware":             "DE",
	"district of columbia": "DC",
	"florida":              "FL",
	"georgia":              "GA",
	"hawaii":               "HI",
	"idaho":                "ID",
	"illinois":             "IL",
	"indiana":              "IN",
	"iowa":                 "IA",
	"kansas":               "KS",
	"kentucky":             "KY",
	"louisiana":            "LA",
	"maine":                "ME",
	"maryland":             "MD",
	"massachusetts":        "MA",
	"michigan":             "MI",
	"minnesota":            "MN",
	"mississippi":          "MS",
	"missouri":             "MO",
	"montana":              "MT",
	"nebraska":             "NE",
	"nevada":               "NV",
	"new hampshire":        "NH",
	"new jersey":           "NJ",
	"new mexico":           "NM",
	"new york":             "NY",
	"north carolina":       "NC",
	"north dakota":         "ND",
	"ohio":                 "OH",
	"oklahoma":             "OK",
	"oregon":               "OR",
	"pennsylvania":         "PA",
	"puerto rico":          "PR",
	"rhode island":         "RI",
	"south carolina":       "SC",
	"south dakota":         "SD",
	"tennessee":            "TN",
	"texas":                "TX",
	"utah":                 "UT",
	"vermont":              "VT",
	"virginia":             "VA",
	"washington":           "WA",
	"west virginia":        "WV",
	"wisconsin":            "WI",
	"wyoming":              "WY",
}

// normalizeAddress converts a source address into the destination shape.
// Addresses are optional but must be complete: if street, city, state, or
// postal code is missing, the whole address is dropped rather than stored
// partially.
func normalizeAddress(src *printavo.Address) *strapi.Address {
	if src == nil {
		return nil
	}

	street := strings.TrimSpace(src.Address1)
	if line2 := strings.TrimSpace(src.Address2); line2 != "" {
		street += "\n" + line2
	}

	city := strings.TrimSpace(src.City)
	state := normalizeState(src.State)
	zip := strings.TrimSpace(src.Zip)

	if street == "" || city == "" || state == "" || zip == "" {
		return nil
	}

	country := strings.TrimSpace(src.Country)
	if country == "" {
		country = "US"
	}

	return &strapi.Address{
		City:    city,
		Country: country,
		State:   state,
		Street:  street,
		Zip:     zip,
	}
}

// normalizeState reduces a state name or code to a two-letter code. Known full
// names go through the lookup table; anything else falls back to the first two
// characters uppercased. The fallback is lossy ("British Columbia" becomes
// "BR", not "BC") and exists only so non-US addresses still store something.
func normalizeState(state string) string {
	state = strings.TrimSpace(state)
	if state == "" {
		return ""
	}
	runes := []rune(state)
	if len(runes) == 2 {
		return strings.ToUpper(state)
	}
	if code, ok := stateCodes[strings.ToLower(state)]; ok {
		return code
	}
	return strings.ToUpper(string(runes[:2]))
}
