// Package names resolves competitor names: historical franchise names map to
// their current canonical form, and canonical names map to the short form
// used by statistics tables.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// aliases maps a folded historical name to the current franchise name.
var aliases = map[string]string{
	"washington redskins":      "Washington Commanders",
	"washington football team": "Washington Commanders",
	"oakland raiders":          "Las Vegas Raiders",
	"san diego chargers":       "Los Angeles Chargers",
	"st. louis rams":           "Los Angeles Rams",
	"st louis rams":            "Los Angeles Rams",
}

// statsNames maps a canonical franchise name to its statistics-table form.
var statsNames = map[string]string{
	"Arizona Cardinals":     "Arizona",
	"Atlanta Falcons":       "Atlanta",
	"Baltimore Ravens":      "Baltimore",
	"Buffalo Bills":         "Buffalo",
	"Carolina Panthers":     "Carolina",
	"Chicago Bears":         "Chicago",
	"Cincinnati Bengals":    "Cincinnati",
	"Cleveland Browns":      "Cleveland",
	"Dallas Cowboys":        "Dallas",
	"Denver Broncos":        "Denver",
	"Detroit Lions":         "Detroit",
	"Green Bay Packers":     "Green Bay",
	"Houston Texans":        "Houston",
	"Indianapolis Colts":    "Indianapolis",
	"Jacksonville Jaguars":  "Jacksonville",
	"Kansas City Chiefs":    "Kansas City",
	"Las Vegas Raiders":     "Las Vegas",
	"Los Angeles Chargers":  "LA Chargers",
	"Los Angeles Rams":      "LA Rams",
	"Miami Dolphins":        "Miami",
	"Minnesota Vikings":     "Minnesota",
	"New England Patriots":  "New England",
	"New Orleans Saints":    "New Orleans",
	"New York Giants":       "NY Giants",
	"New York Jets":         "NY Jets",
	"Philadelphia Eagles":   "Philadelphia",
	"Pittsburgh Steelers":   "Pittsburgh",
	"San Francisco 49ers":   "San Francisco",
	"Seattle Seahawks":      "Seattle",
	"Tampa Bay Buccaneers":  "Tampa Bay",
	"Tennessee Titans":      "Tennessee",
	"Washington Commanders": "Washington",
}

// Canonical trims, strips diacritics and collapses whitespace, then resolves
// historical franchise names. Unknown names keep their cleaned spelling.
func Canonical(name string) string {
	clean := collapseWhitespace(stripDiacritics(strings.TrimSpace(name)))
	if c, ok := aliases[strings.ToLower(clean)]; ok {
		return c
	}
	return clean
}

// StatsName returns the statistics-table form of a canonical name; unknown
// names pass through unchanged.
func StatsName(name string) string {
	if s, ok := statsNames[name]; ok {
		return s
	}
	return name
}

// Key folds a name for case-insensitive comparison.
func Key(name string) string {
	return strings.ToLower(Canonical(name))
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
