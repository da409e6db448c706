package core

import "strings"

const (
	Water       Category = "water"
	Electricity Category = "electricity"
	Gas         Category = "gas"
	Fees        Category = "fees"
)

// Category is the bill type, also called "type" or "service" by the document store.
type Category string

// Theme is the presentation attached to a category.
type Theme struct {
	Title string
	Color string
	Light string
	Icon  string
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{Water, Electricity, Gas, Fees}
}

// Theme returns the icon and colours for c. New categories are added here.
func (c Category) Theme() (Theme, bool) {
	switch c {
	case Water:
		return Theme{Title: "Water Bills", Color: "#3b82f6", Light: "#dbeafe", Icon: "water_drop"}, true
	case Electricity:
		return Theme{Title: "Electricity Bills", Color: "#a855f7", Light: "#ede9fe", Icon: "bolt"}, true
	case Gas:
		return Theme{Title: "Gas Bills", Color: "#f59e0b", Light: "#fef3c7", Icon: "local_fire_department"}, true
	case Fees:
		return Theme{Title: "Fees", Color: "#10b981", Light: "#d1fae5", Icon: "credit_card"}, true
	default:
		return Theme{}, false
	}
}

// ParseCategory normalizes s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := c.Theme()
	return c, ok
}

// CategoryOrDefault falls back to Water for unknown services.
func CategoryOrDefault(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return Water
}
