package catalog

import (
	"reflect"
	"testing"
	"time"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

func mode(m models.DisplayMode) *string {
	s := string(m)
	return &s
}

func label(s string) *string {
	return &s
}

func row(variantID, productID, productName, category string, price float64, displayMode *string, created time.Time) VariantWithProduct {
	return VariantWithProduct{
		Variant: models.Variant{
			ID:          variantID,
			ProductID:   productID,
			SKU:         "SKU-" + variantID,
			VariantName: productName + " " + variantID,
			Price:       price,
			CreatedAt:   created,
		},
		Product: models.Product{
			ID:          productID,
			Name:        productName,
			Category:    label(category),
			DisplayMode: displayMode,
			CreatedAt:   created,
		},
	}
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// mixedFeed: product A explicitly grouped with two variants, product B
// explicitly individual with one.
func mixedFeed() []VariantWithProduct {
	return []VariantWithProduct{
		row("v1", "pa", "Alpha", "Tas", 100, mode(models.DisplayGrouped), t0),
		row("v2", "pa", "Alpha", "Tas", 150, mode(models.DisplayGrouped), t0.Add(time.Hour)),
		row("v3", "pb", "Beta", "Boneka", 80, mode(models.DisplayIndividual), t0.Add(2*time.Hour)),
	}
}

func TestBuildGroupedPageMixedPriceLow(t *testing.T) {
	page := BuildGroupedPage(mixedFeed(), GroupPageOptions{
		Size:   10,
		SortBy: SortPriceLow,
	})

	if page.DisplayMode != PageMixed {
		t.Fatalf("display mode: got %s want %s", page.DisplayMode, PageMixed)
	}
	if page.Total != 2 {
		t.Fatalf("total: got %d want 2", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items: got %d want 2", len(page.Items))
	}

	first := page.Items[0]
	if first.IsGrouped || first.Variant == nil || first.Variant.ID != "v3" {
		t.Fatalf("first item should be individual v3 (price 80), got %+v", first)
	}

	second := page.Items[1]
	if !second.IsGrouped || second.Group == nil {
		t.Fatalf("second item should be the Alpha group, got %+v", second)
	}
	if got := second.Group.PriceRange; got.Min != 100 || got.Max != 150 {
		t.Fatalf("group price range: got %+v want {100 150}", got)
	}
	if len(second.Group.Variants) != 2 {
		t.Fatalf("group variants: got %d want 2", len(second.Group.Variants))
	}
	if second.Group.PrimaryVariant.ID != "v1" {
		t.Fatalf("primary variant: got %s want v1", second.Group.PrimaryVariant.ID)
	}
}

func TestBuildGroupedPagePriceHighRanksGroupByMin(t *testing.T) {
	page := BuildGroupedPage(mixedFeed(), GroupPageOptions{
		Size:   10,
		SortBy: SortPriceHigh,
	})
	// descending by effective price: group Alpha (min 100) before v3 (80)
	if !page.Items[0].IsGrouped {
		t.Fatalf("expected Alpha group first under price-high, got %+v", page.Items[0])
	}
	if page.Items[1].Variant == nil || page.Items[1].Variant.ID != "v3" {
		t.Fatalf("expected v3 second under price-high, got %+v", page.Items[1])
	}
}

func TestBuildGroupedPageNewest(t *testing.T) {
	page := BuildGroupedPage(mixedFeed(), GroupPageOptions{
		Size:   10,
		SortBy: SortNewest,
	})
	// v3 created last; group Alpha ranks by its primary (v1, oldest)
	if page.Items[0].Variant == nil || page.Items[0].Variant.ID != "v3" {
		t.Fatalf("expected newest v3 first, got %+v", page.Items[0])
	}
}

func TestBuildGroupedPageNameSort(t *testing.T) {
	page := BuildGroupedPage(mixedFeed(), GroupPageOptions{
		Size:   10,
		SortBy: SortName,
	})
	// "Alpha" (group product name) < "Beta v3" (variant name)
	if !page.Items[0].IsGrouped {
		t.Fatalf("expected Alpha group first under name sort, got %+v", page.Items[0])
	}
}

func TestBuildGroupedPageDeterministic(t *testing.T) {
	opts := GroupPageOptions{Size: 10, SortBy: SortPriceLow}
	a := BuildGroupedPage(mixedFeed(), opts)
	b := BuildGroupedPage(mixedFeed(), opts)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same input and options must yield identical pages")
	}
}

func TestBuildGroupedPagePagination(t *testing.T) {
	feed := make([]VariantWithProduct, 0, 25)
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i))
		feed = append(feed, row("v"+id, "p"+id, "Item "+id, "Boneka", float64(10+i), nil, t0))
	}

	page := BuildGroupedPage(feed, GroupPageOptions{Page: 2, Size: 10, SortBy: SortName})
	if page.Total != 25 {
		t.Fatalf("total: got %d want 25", page.Total)
	}
	if len(page.Items) != 5 {
		t.Fatalf("page 2 of 25 with size 10: got %d items want 5", len(page.Items))
	}

	empty := BuildGroupedPage(feed, GroupPageOptions{Page: 9, Size: 10})
	if len(empty.Items) != 0 {
		t.Fatalf("out-of-range page: got %d items want 0", len(empty.Items))
	}
	if empty.Items == nil {
		t.Fatal("out-of-range page must be an empty slice, not nil")
	}
	if empty.Total != 25 {
		t.Fatalf("out-of-range page total: got %d want 25", empty.Total)
	}
}

func TestBuildGroupedPageEmptyInput(t *testing.T) {
	page := BuildGroupedPage(nil, GroupPageOptions{Size: 10})
	if page.Total != 0 || len(page.Items) != 0 {
		t.Fatalf("empty input: got total %d, %d items", page.Total, len(page.Items))
	}
	if page.Items == nil {
		t.Fatal("empty input must yield an empty slice, not nil")
	}
}

func TestBuildGroupedPageClampsOptions(t *testing.T) {
	page := BuildGroupedPage(mixedFeed(), GroupPageOptions{Page: -3, Size: 0})
	if len(page.Items) != 1 {
		t.Fatalf("size clamped to 1: got %d items", len(page.Items))
	}
}

func TestSingleCategoryIndividualPassThrough(t *testing.T) {
	// two variants of the same product; individual mode must not group or
	// collapse them
	feed := []VariantWithProduct{
		row("v1", "pa", "Alpha", "Boneka", 300, nil, t0),
		row("v2", "pa", "Alpha", "Boneka", 100, nil, t0),
	}

	page := BuildGroupedPage(feed, GroupPageOptions{
		Size:     10,
		SortBy:   SortPriceLow,
		Category: "Boneka",
	})

	if page.DisplayMode != PageIndividual {
		t.Fatalf("display mode: got %s want %s", page.DisplayMode, PageIndividual)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("pass-through must keep every variant: total %d, %d items", page.Total, len(page.Items))
	}
	// pass-through preserves feed order, no re-sort
	if page.Items[0].Variant.ID != "v1" || page.Items[1].Variant.ID != "v2" {
		t.Fatalf("pass-through must preserve input order, got %s then %s",
			page.Items[0].Variant.ID, page.Items[1].Variant.ID)
	}
}

func TestSingleCategoryIndividualPagination(t *testing.T) {
	// 25 variants of a category whose fallback rule is individual, fed in
	// price order the way the feed query delivers it for price-low
	feed := make([]VariantWithProduct, 0, 25)
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i))
		feed = append(feed, row("v"+id, "p"+id, "Item "+id, "Boneka", float64(10+i), nil, t0))
	}

	page := BuildGroupedPage(feed, GroupPageOptions{
		Page:     2,
		Size:     10,
		SortBy:   SortPriceLow,
		Category: "Boneka",
	})

	if page.DisplayMode != PageIndividual {
		t.Fatalf("display mode: got %s want %s", page.DisplayMode, PageIndividual)
	}
	if page.Total != 25 {
		t.Fatalf("total: got %d want 25", page.Total)
	}
	if len(page.Items) != 5 {
		t.Fatalf("page 2 of 25 with size 10: got %d items want 5", len(page.Items))
	}
	// the slice keeps the feed's price order
	for i, it := range page.Items {
		want := feed[20+i].ID
		if it.Variant.ID != want {
			t.Fatalf("item %d: got %s want %s", i, it.Variant.ID, want)
		}
		if i > 0 && it.Variant.Price < page.Items[i-1].Variant.Price {
			t.Fatalf("prices out of order at item %d: %v after %v",
				i, it.Variant.Price, page.Items[i-1].Variant.Price)
		}
	}
}

func TestSingleCategoryGrouped(t *testing.T) {
	feed := []VariantWithProduct{
		row("v1", "pa", "Alpha", "Tas", 100, nil, t0),
		row("v2", "pa", "Alpha", "Tas", 150, nil, t0),
		row("v3", "pb", "Beta", "Tas", 80, nil, t0),
	}

	page := BuildGroupedPage(feed, GroupPageOptions{
		Size:     10,
		SortBy:   SortName,
		Category: "Tas",
	})

	if page.DisplayMode != PageGrouped {
		t.Fatalf("display mode: got %s want %s", page.DisplayMode, PageGrouped)
	}
	if page.Total != 2 {
		t.Fatalf("two products grouped: total got %d want 2", page.Total)
	}
	for _, it := range page.Items {
		if !it.IsGrouped {
			t.Fatalf("grouped category must emit only groups, got %+v", it)
		}
	}
}

func TestPartitionCompleteness(t *testing.T) {
	feed := []VariantWithProduct{
		row("v1", "pa", "Alpha", "Tas", 100, nil, t0),
		row("v2", "pb", "Beta", "Boneka", 80, nil, t0),
		row("v3", "pa", "Alpha", "Tas", 150, nil, t0),
		row("v4", "pc", "Gamma", "Gelang", 60, nil, t0),
	}

	page := BuildGroupedPage(feed, GroupPageOptions{Size: 100, SortBy: SortName, EmitAllIndividualVariants: true})

	seen := map[string]int{}
	for _, it := range page.Items {
		if it.IsGrouped {
			for _, v := range it.Group.Variants {
				seen[v.ID]++
			}
		} else {
			seen[it.Variant.ID]++
		}
	}
	for _, id := range []string{"v1", "v2", "v3", "v4"} {
		if seen[id] != 1 {
			t.Fatalf("variant %s appeared %d times, want exactly once", id, seen[id])
		}
	}
}

func TestLegacyCollapseDropsSiblingVariants(t *testing.T) {
	feed := []VariantWithProduct{
		row("v1", "pb", "Beta", "Boneka", 80, nil, t0),
		row("v2", "pb", "Beta", "Boneka", 90, nil, t0),
	}

	collapsed := BuildGroupedPage(feed, GroupPageOptions{Size: 10, SortBy: SortName})
	if collapsed.Total != 1 {
		t.Fatalf("legacy collapse: total got %d want 1", collapsed.Total)
	}
	if collapsed.Items[0].Variant.ID != "v1" {
		t.Fatalf("legacy collapse keeps the first variant, got %s", collapsed.Items[0].Variant.ID)
	}

	expanded := BuildGroupedPage(feed, GroupPageOptions{
		Size: 10, SortBy: SortName, EmitAllIndividualVariants: true,
	})
	if expanded.Total != 2 {
		t.Fatalf("expanded: total got %d want 2", expanded.Total)
	}
}

func TestOrphanVariantStaysVisible(t *testing.T) {
	orphan := VariantWithProduct{
		Variant: models.Variant{
			ID:          "v9",
			ProductID:   "missing",
			VariantName: "Stray",
			Price:       40,
			CreatedAt:   t0,
		},
		// zero-value product: the join found nothing
	}
	feed := append(mixedFeed(), orphan)

	page := BuildGroupedPage(feed, GroupPageOptions{Size: 10, SortBy: SortPriceLow})
	found := false
	for _, it := range page.Items {
		if !it.IsGrouped && it.Variant.ID == "v9" {
			found = true
		}
	}
	if !found {
		t.Fatal("variant with a missing product must surface as an individual item")
	}
}

func TestNonContiguousGroupMembers(t *testing.T) {
	feed := []VariantWithProduct{
		row("v1", "pa", "Alpha", "Tas", 100, mode(models.DisplayGrouped), t0),
		row("v2", "pb", "Beta", "Boneka", 80, mode(models.DisplayIndividual), t0),
		row("v3", "pa", "Alpha", "Tas", 150, mode(models.DisplayGrouped), t0),
	}

	page := BuildGroupedPage(feed, GroupPageOptions{Size: 10, SortBy: SortName})
	for _, it := range page.Items {
		if it.IsGrouped {
			if len(it.Group.Variants) != 2 {
				t.Fatalf("group must gather non-contiguous members: got %d", len(it.Group.Variants))
			}
			if it.Group.PriceRange.Min != 100 || it.Group.PriceRange.Max != 150 {
				t.Fatalf("price range: got %+v", it.Group.PriceRange)
			}
			return
		}
	}
	t.Fatal("expected a grouped item")
}

func TestResolveCategoryModeFirstExplicitWins(t *testing.T) {
	feed := []VariantWithProduct{
		row("v1", "pa", "Alpha", "Boneka", 100, mode(models.DisplayGrouped), t0),
		row("v2", "pb", "Beta", "Boneka", 80, mode(models.DisplayIndividual), t0),
	}
	// Boneka's rule says individual, but the first explicit product mode is
	// grouped and wins for the whole category listing
	page := BuildGroupedPage(feed, GroupPageOptions{Size: 10, Category: "Boneka"})
	if page.DisplayMode != PageGrouped {
		t.Fatalf("display mode: got %s want %s", page.DisplayMode, PageGrouped)
	}
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		n, page, size int
		from, to      int
	}{
		{25, 0, 10, 0, 10},
		{25, 2, 10, 20, 25},
		{25, 3, 10, 25, 25},
		{0, 0, 10, 0, 0},
		{5, 0, 10, 0, 5},
	}
	for _, tc := range cases {
		from, to := pageBounds(tc.n, tc.page, tc.size)
		if from != tc.from || to != tc.to {
			t.Fatalf("pageBounds(%d, %d, %d): got (%d, %d) want (%d, %d)",
				tc.n, tc.page, tc.size, from, to, tc.from, tc.to)
		}
	}
}
