package types

import "strings"

// LocationInfo contains human-readable location metadata
type LocationInfo struct {
	Name        string
	County      string
	State       string
	Country     string
	CountryCode string
}

// DisplayName joins the non-empty name parts, most specific first.
func (l LocationInfo) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.State, l.Country} {
		if p != "" && (len(parts) == 0 || parts[len(parts)-1] != p) {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
