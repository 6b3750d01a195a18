package enums

import "fmt"

// StockCategory splits the inventory between tires and parts/accessories.
type StockCategory string

const (
	StockCategoryTire StockCategory = "tire"
	StockCategoryPart StockCategory = "part"
)

var validStockCategories = []StockCategory{
	StockCategoryTire,
	StockCategoryPart,
}

// String implements fmt.Stringer.
func (s StockCategory) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockCategory.
func (s StockCategory) IsValid() bool {
	for _, candidate := range validStockCategories {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockCategory converts the raw string to StockCategory.
func ParseStockCategory(value string) (StockCategory, error) {
	for _, candidate := range validStockCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock category %q", value)
}
