package enums

import "fmt"

// ProductSort orders catalog listings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortRating    ProductSort = "rating"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortPriceLow,
	ProductSortPriceHigh,
	ProductSortRating,
}

func (s ProductSort) String() string {
	return string(s)
}

func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort defaults to newest for empty input.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortNewest, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
