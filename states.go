package df

import "strings"

// USStates are the 50 states, lowercase and in alphabetical order.
var USStates = []string{"alabama", "alaska", "arizona", "arkansas", "california",
	"colorado", "connecticut", "delaware", "florida", "georgia",
	"hawaii", "idaho", "illinois", "indiana", "iowa", "kansas",
	"kentucky", "louisiana", "maine", "maryland", "massachusetts",
	"michigan", "minnesota", "mississippi", "missouri", "montana", "nebraska",
	"nevada", "new hampshire", "new jersey", "new mexico", "new york",
	"north carolina", "north dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
	"rhode island", "south carolina", "south dakota", "tennessee", "texas", "utah",
	"vermont", "virginia", "washington", "west virginia", "wisconsin", "wyoming"}

// NonStates are the regions reported in the NICS data that are not states.
var NonStates = []string{"District of Columbia", "Guam", "Mariana Islands", "Puerto Rico", "Virgin Islands"}

// IsState returns true if name is one of the 50 states. Case and surrounding space are ignored.
func IsState(name string) bool {
	return has(strings.ToLower(strings.TrimSpace(name)), USStates)
}
