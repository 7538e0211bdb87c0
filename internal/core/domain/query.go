package domain

import "time"

type SortOption string

const (
	SortUnset       SortOption = ""
	SortBestSelling SortOption = "best-selling"
	SortPriceAsc    SortOption = "price-asc"
	SortPriceDesc   SortOption = "price-desc"
	SortRelevance   SortOption = "relevance"
)

// AllRetailers is the retailer selection that disables the retailer filter.
const AllRetailers = "All"

// DefaultPageSize is the initial number of revealed products.
const DefaultPageSize = 24

// A QueryIntent is what the user asks of the catalog.
//
// Empty SelectedCategory means no category is selected.
type QueryIntent struct {
	Query              string
	SelectedRetailer   string
	SelectedCategory   string
	ShowOutOfStock     bool
	ShowOnDiscountOnly bool
	Sort               SortOption
}

type RetailerFacet struct {
	Name  string
	Count int
}

// A Page is a revealed prefix of a query result.
type Page struct {
	Items   []Product
	Total   int
	HasMore bool
}

type SiteStatus struct {
	Name         string
	LastUpdated  string
	ProductCount int
}

// A Catalog is an immutable snapshot of all products.
type Catalog struct {
	LastUpdated string
	Sites       []SiteStatus
	Products    []Product
}

type Status struct {
	LastUpdated   string
	LoadedAt      time.Time
	TotalProducts int
	Sites         []SiteStatus
}
