package catalog

import "testing"

func TestFeedOrderFollowsSortKey(t *testing.T) {
	cases := []struct {
		key  SortKey
		want string
	}{
		{SortPriceLow, "v.price ASC, v.id ASC"},
		{SortPriceHigh, "v.price DESC, v.id ASC"},
		{SortNewest, "v.created_at DESC, v.id ASC"},
		{SortName, "v.variant_name ASC, v.id ASC"},
		{"", "v.variant_name ASC, v.id ASC"},
		{"bogus", "v.variant_name ASC, v.id ASC"},
	}
	for _, tc := range cases {
		if got := feedOrder(tc.key); got != tc.want {
			t.Fatalf("feedOrder(%q): got %q want %q", tc.key, got, tc.want)
		}
	}
}
