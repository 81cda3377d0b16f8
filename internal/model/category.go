package model

import (
	"fmt"
	"strings"
)

// Category is the closed set of command categories.
type Category string

const (
	CategoryDiagnostic  Category = "diagnostic"
	CategoryQuality     Category = "quality"
	CategoryIntensity   Category = "intensity"
	CategoryAdaptation  Category = "adaptation"
	CategoryEnhancement Category = "enhancement"
	CategorySystem      Category = "system"
)

// IsValid returns true if the category belongs to the enumerated set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryDiagnostic, CategoryQuality, CategoryIntensity,
		CategoryAdaptation, CategoryEnhancement, CategorySystem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryDiagnostic,
		CategoryQuality,
		CategoryIntensity,
		CategoryAdaptation,
		CategoryEnhancement,
		CategorySystem,
	}
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
