package enums

import "fmt"

// ProductCategory represents the categories a listing can be filed under.
type ProductCategory string

const (
	ProductCategoryElectronics ProductCategory = "Electronics"
	ProductCategoryFashion     ProductCategory = "Fashion"
	ProductCategoryHomeGoods   ProductCategory = "Home Goods"
	ProductCategoryBooks       ProductCategory = "Books"
	ProductCategoryOther       ProductCategory = "Other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryElectronics,
	ProductCategoryFashion,
	ProductCategoryHomeGoods,
	ProductCategoryBooks,
	ProductCategoryOther,
}

// ProductCategories returns every known category in declaration order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductCondition describes the wear of a secondhand item.
type ProductCondition string

const (
	ProductConditionNew         ProductCondition = "New"
	ProductConditionUsedLikeNew ProductCondition = "Used - Like New"
	ProductConditionUsedGood    ProductCondition = "Used - Good"
	ProductConditionUsedFair    ProductCondition = "Used - Fair"
)

var validProductConditions = []ProductCondition{
	ProductConditionNew,
	ProductConditionUsedLikeNew,
	ProductConditionUsedGood,
	ProductConditionUsedFair,
}

// String implements fmt.Stringer.
func (c ProductCondition) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known ProductCondition.
func (c ProductCondition) IsValid() bool {
	for _, candidate := range validProductConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCondition converts raw input into a ProductCondition.
func ParseProductCondition(value string) (ProductCondition, error) {
	for _, candidate := range validProductConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product condition %q", value)
}
