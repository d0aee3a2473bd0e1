package menu

type Category string

const (
	CategoryBreakfast Category = "Breakfast"
	CategoryLunch     Category = "Lunch"
	CategoryDinner    Category = "Dinner"
	CategoryDessert   Category = "Dessert"
	CategoryBeverages Category = "Beverages"
)

// FeaturedItemsLimit caps the homepage "popular dishes" strip.
const FeaturedItemsLimit = 6

func ValidCategory(c Category) bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner, CategoryDessert, CategoryBeverages:
		return true
	}
	return false
}

type Dietary struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"glutenFree"`
}

type MenuItem struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Dietary     Dietary  `json:"dietary"`
	SpicyLevel  int      `json:"spicyLevel"`
	Available   bool     `json:"available"`
	Popular     bool     `json:"popular"`
}

// ListFilter narrows public catalog reads.
type ListFilter struct {
	Category      *Category
	Vegetarian    *bool
	Vegan         *bool
	GlutenFree    *bool
	AvailableOnly bool
}
