package transform

import "strings"

// deliveryMap maps source delivery method labels, lowercased and trimmed, to
// the destination enum.
var deliveryMap = map[string]string{
	"delivery": "delivery",
	"pickup":   "pickup",
	"ship":     "ship",
	"shipping": "ship",
}

// MapDeliveryMethod maps a source delivery method to the destination enum.
// Matching is case-insensitive and whitespace-trimmed; an empty source value
// stays empty, and any unrecognized label maps to "other".
func MapDeliveryMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return ""
	}
	if mapped, ok := deliveryMap[method]; ok {
		return mapped
	}
	return "other"
}
