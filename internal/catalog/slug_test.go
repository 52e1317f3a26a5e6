package catalog

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Tote Bag  ", "tote-bag"},
		{"Café au Lait!", "caf-au-lait"},
		{"snake_case_name", "snake-case-name"},
		{"--already--slugged--", "already-slugged"},
		{"Multiple   spaces", "multiple-spaces"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestVariantSlug(t *testing.T) {
	cases := []struct {
		name, color, size string
		want              string
	}{
		{"Tote Bag", "Red", "L", "tote-bag-red-l"},
		{"Tote Bag", "", "", "tote-bag"},
		{"Tote Bag", " ", "M", "tote-bag-m"},
		{"Plush Bear", "Brown", "", "plush-bear-brown"},
	}
	for _, tc := range cases {
		if got := VariantSlug(tc.name, tc.color, tc.size); got != tc.want {
			t.Fatalf("VariantSlug(%q, %q, %q): got %q want %q",
				tc.name, tc.color, tc.size, got, tc.want)
		}
	}
}
