package catalog

import (
	"math"
	"sort"
	"strings"

	"storefront/internal/product"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// AllCategories disables the category filter.
	AllCategories   = "all"
	DefaultPageSize = 12

	fallbackPriceMin = 0
	fallbackPriceMax = 1000
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// FilterSpec drives one listing render. The price range is inclusive on
// both ends; callers start from DefaultFilterSpec to get the catalog's bounds.
type FilterSpec struct {
	SearchQuery string
	CategoryIDs []string
	PriceMin    float64
	PriceMax    float64
	InStockOnly bool
	Sort        SortOrder
	Page        int
	PageSize    int
}

type Page struct {
	Items      []product.Product
	TotalCount int
	Page       int
	PageSize   int
}

func (p Page) PageCount() int {
	if p.PageSize <= 0 {
		return 0
	}
	if p.TotalCount <= 0 {
		return 0
	}
	return (p.TotalCount-1)/p.PageSize + 1
}

// DefaultPriceBounds returns the floor of the cheapest and the ceiling of
// the most expensive product in the whole catalog.
func DefaultPriceBounds(all []product.Product) (min, max float64) {
	if len(all) == 0 {
		return fallbackPriceMin, fallbackPriceMax
	}
	min, max = all[0].Price, all[0].Price
	for _, p := range all[1:] {
		min = math.Min(min, p.Price)
		max = math.Max(max, p.Price)
	}
	return math.Floor(min), math.Ceil(max)
}

func DefaultFilterSpec(all []product.Product) FilterSpec {
	lo, hi := DefaultPriceBounds(all)
	return FilterSpec{
		CategoryIDs: []string{AllCategories},
		PriceMin:    lo,
		PriceMax:    hi,
		Sort:        SortNewest,
		Page:        1,
		PageSize:    DefaultPageSize,
	}
}

// VisibleProducts is the products page listing: active products only.
func VisibleProducts(all []product.Product, spec FilterSpec) Page {
	return run(all, spec, isActive)
}

// StorefrontProducts is the store listing: active products that can be bought.
func StorefrontProducts(all []product.Product, spec FilterSpec) Page {
	return run(all, spec, func(p product.Product) bool {
		return isActive(p) && p.Stock > 0
	})
}

// FindProduct looks a product up for the detail view. Inactive and sold
// out products are still returned.
func FindProduct(all []product.Product, id string) (product.Product, bool) {
	for _, p := range all {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}

func isActive(p product.Product) bool { return p.IsActive }

func run(all []product.Product, spec FilterSpec, gate func(product.Product) bool) Page {
	spec = normalize(spec)

	matches := make([]product.Product, 0, len(all))
	for _, p := range all {
		if gate(p) && spec.matches(p) {
			matches = append(matches, p)
		}
	}

	sortProducts(matches, spec.Sort)

	page := Page{TotalCount: len(matches), Page: spec.Page, PageSize: spec.PageSize}
	if spec.Page > page.PageCount() {
		page.Items = []product.Product{}
		return page
	}
	// Page is within range here, so the offset cannot overflow.
	start := (spec.Page - 1) * spec.PageSize
	end := start + min(spec.PageSize, len(matches)-start)
	page.Items = matches[start:end]
	return page
}

func normalize(spec FilterSpec) FilterSpec {
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.PageSize < 1 {
		spec.PageSize = 1
	}
	if !spec.Sort.Valid() {
		spec.Sort = SortNewest
	}
	spec.SearchQuery = strings.ToLower(spec.SearchQuery)
	return spec
}

func (spec FilterSpec) matches(p product.Product) bool {
	if spec.SearchQuery != "" &&
		!strings.Contains(strings.ToLower(p.Name), spec.SearchQuery) &&
		!strings.Contains(strings.ToLower(p.Description), spec.SearchQuery) {
		return false
	}
	if !spec.categoryMatches(p.Category.ID) {
		return false
	}
	if p.Price < spec.PriceMin || p.Price > spec.PriceMax {
		return false
	}
	if spec.InStockOnly && p.Stock <= 0 {
		return false
	}
	return true
}

func (spec FilterSpec) categoryMatches(id string) bool {
	if len(spec.CategoryIDs) == 0 {
		return true
	}
	for _, c := range spec.CategoryIDs {
		if c == "" || c == AllCategories || c == id {
			return true
		}
	}
	return false
}

func sortProducts(ps []product.Product, order SortOrder) {
	var less func(a, b product.Product) bool

	switch order {
	case SortPriceAsc:
		less = func(a, b product.Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b product.Product) bool { return a.Price > b.Price }
	case SortNameAsc, SortNameDesc:
		// Collators keep internal buffers, so one per sort.
		col := collate.New(language.English)
		if order == SortNameAsc {
			less = func(a, b product.Product) bool { return col.CompareString(a.Name, b.Name) < 0 }
		} else {
			less = func(a, b product.Product) bool { return col.CompareString(a.Name, b.Name) > 0 }
		}
	default:
		less = func(a, b product.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}
