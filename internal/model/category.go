package model

// Categories is the closed set of menu section labels used both by the admin
// form and by public filtering.  The order is the order the menu page lists
// its filter chips in; it is not the order groups are returned in.
var Categories = []string{
	"Salads",
	"Sandwiches",
	"Fries",
	"Burgers",
	"Sliders",
	"Pizza",
	"Pasta",
	"Garlic Bread",
	"Wraps",
	"Dumpling",
	"Chinese",
	"Deserts",
	"CheeseCake",
}

// IsCategory reports whether name is one of the enumerated categories.
// Matching is exact.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
