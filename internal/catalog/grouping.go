package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNewest    SortKey = "newest"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

// VariantWithProduct is one row of the flat listing feed: a variant joined
// with its owning product and its images in display order.
type VariantWithProduct struct {
	models.Variant
	Product models.Product `db:"product" json:"product"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductGroup is the combined card for a grouped product. Ephemeral, built
// fresh on every listing call.
type ProductGroup struct {
	Product        models.Product       `json:"product"`
	Variants       []VariantWithProduct `json:"variants"`
	PrimaryVariant VariantWithProduct   `json:"primary_variant"`
	PriceRange     PriceRange           `json:"price_range"`
}

// MixedItem is the output unit of the grouped listing: exactly one of Group
// or Variant is set, discriminated by IsGrouped.
type MixedItem struct {
	IsGrouped bool                `json:"is_grouped"`
	Group     *ProductGroup       `json:"group,omitempty"`
	Variant   *VariantWithProduct `json:"variant,omitempty"`
}

type PageDisplayMode string

const (
	PageMixed      PageDisplayMode = "mixed"
	PageGrouped    PageDisplayMode = "grouped"
	PageIndividual PageDisplayMode = "individual"
)

type GroupPageOptions struct {
	Page     int
	Size     int
	SortBy   SortKey
	Category string // "" or "all" selects mixed mode
	Rules    DisplayRules

	// EmitAllIndividualVariants disables the legacy collapse behavior in
	// which a product resolved to individual display still has its later
	// variants dropped once the first one is emitted. The zero value
	// reproduces the original system; flip it only after the storefront
	// owner signs off on showing sibling variants in mixed listings.
	EmitAllIndividualVariants bool
}

type GroupedPage struct {
	Items       []MixedItem     `json:"items"`
	Total       int             `json:"total"`
	DisplayMode PageDisplayMode `json:"display_mode"`
}

// BuildGroupedPage transforms a flat, unpaginated variant list into a
// sorted, paginated sequence of mixed items. Pure and deterministic: the
// same input always yields the same page.
func BuildGroupedPage(variants []VariantWithProduct, opts GroupPageOptions) GroupedPage {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Page < 0 {
		opts.Page = 0
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultDisplayRules()
	}

	mixedMode := opts.Category == "" || opts.Category == CategoryAll

	if !mixedMode {
		categoryMode := resolveCategoryMode(variants, opts.Category, rules)
		if categoryMode == models.DisplayIndividual {
			// pass-through: no grouping work when the whole category
			// renders individually
			from, to := pageBounds(len(variants), opts.Page, opts.Size)
			items := make([]MixedItem, 0, to-from)
			for i := from; i < to; i++ {
				items = append(items, MixedItem{Variant: &variants[i]})
			}
			return GroupedPage{
				Items:       items,
				Total:       len(variants),
				DisplayMode: PageIndividual,
			}
		}
	}

	items := partition(variants, rules, opts.EmitAllIndividualVariants)
	sortMixed(items, opts.SortBy)

	from, to := pageBounds(len(items), opts.Page, opts.Size)
	page := append(make([]MixedItem, 0, to-from), items[from:to]...)

	mode := PageGrouped
	if mixedMode {
		mode = PageMixed
	}
	return GroupedPage{Items: page, Total: len(items), DisplayMode: mode}
}

// resolveCategoryMode decides the uniform mode for a single-category
// listing. The first explicit product display_mode in the feed wins,
// otherwise the injected rules table, otherwise individual.
func resolveCategoryMode(variants []VariantWithProduct, category string, rules DisplayRules) models.DisplayMode {
	for i := range variants {
		if m := variants[i].Product.ExplicitDisplayMode(); m != nil {
			return *m
		}
	}
	return ResolveDisplayMode(nil, category, rules)
}

func partition(variants []VariantWithProduct, rules DisplayRules, emitAll bool) []MixedItem {
	items := make([]MixedItem, 0, len(variants))
	emitted := make(map[string]bool, len(variants))

	for i := range variants {
		v := &variants[i]
		if emitted[v.ProductID] {
			continue
		}

		mode := ResolveDisplayMode(v.Product.ExplicitDisplayMode(), v.Product.CategoryLabel(), rules)
		if v.Product.ID == "" {
			// variant whose product was missing from the joined feed:
			// keep it visible as an individual item rather than dropping it
			mode = models.DisplayIndividual
		}

		if mode == models.DisplayGrouped {
			group := collectGroup(variants, v.ProductID)
			items = append(items, MixedItem{IsGrouped: true, Group: &group})
			emitted[v.ProductID] = true
			continue
		}

		items = append(items, MixedItem{Variant: v})
		if !emitAll {
			// legacy collapse: later variants of this product never surface
			emitted[v.ProductID] = true
		}
	}
	return items
}

// collectGroup gathers every variant sharing productID; they may be
// non-contiguous in the feed. The first one in input order is primary.
func collectGroup(variants []VariantWithProduct, productID string) ProductGroup {
	var members []VariantWithProduct
	for i := range variants {
		if variants[i].ProductID == productID {
			members = append(members, variants[i])
		}
	}

	pr := PriceRange{Min: members[0].Price, Max: members[0].Price}
	for _, m := range members[1:] {
		if m.Price < pr.Min {
			pr.Min = m.Price
		}
		if m.Price > pr.Max {
			pr.Max = m.Price
		}
	}

	return ProductGroup{
		Product:        members[0].Product,
		Variants:       members,
		PrimaryVariant: members[0],
		PriceRange:     pr,
	}
}

// sortMixed orders items by the requested key. SliceStable keeps input
// order as the final tiebreaker.
func sortMixed(items []MixedItem, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(items, func(i, j int) bool {
			return sortPrice(items[i]) < sortPrice(items[j])
		})
	case SortPriceHigh:
		sort.SliceStable(items, func(i, j int) bool {
			return sortPrice(items[i]) > sortPrice(items[j])
		})
	case SortNewest:
		sort.SliceStable(items, func(i, j int) bool {
			return createdAt(items[i]).After(createdAt(items[j]))
		})
	default: // name
		sort.SliceStable(items, func(i, j int) bool {
			return strings.Compare(sortName(items[i]), sortName(items[j])) < 0
		})
	}
}

// sortPrice is the effective price for ordering: a group ranks by its
// minimum price in both directions, matching the storefront's behavior.
func sortPrice(it MixedItem) float64 {
	if it.IsGrouped {
		return it.Group.PriceRange.Min
	}
	return it.Variant.Price
}

func createdAt(it MixedItem) time.Time {
	if it.IsGrouped {
		return it.Group.PrimaryVariant.CreatedAt
	}
	return it.Variant.CreatedAt
}

func sortName(it MixedItem) string {
	if it.IsGrouped {
		return it.Group.Product.Name
	}
	return it.Variant.VariantName
}

// pageBounds clamps [page*size, page*size+size) to n. Slicing past the end
// yields an empty slice, never an error.
func pageBounds(n, page, size int) (from, to int) {
	from = page * size
	if from > n {
		from = n
	}
	to = from + size
	if to > n {
		to = n
	}
	return from, to
}
