package storage

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

var keyTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestVariantImageKey(t *testing.T) {
	key := VariantImageKey("var-1", "photo.JPG", keyTime)
	want := fmt.Sprintf("variant-images/var-1/%d.jpg", keyTime.UnixNano())
	if key != want {
		t.Fatalf("got %q want %q", key, want)
	}
}

func TestReceiptKey(t *testing.T) {
	key := ReceiptKey("ord-1", "receipt.png", keyTime)
	if !strings.HasPrefix(key, "receipts/ord-1/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestKeyDefaultsExtension(t *testing.T) {
	key := VariantImageKey("var-1", "noextension", keyTime)
	if !strings.HasSuffix(key, ".bin") {
		t.Fatalf("missing default extension: %q", key)
	}
}

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		url, prefix, want string
	}{
		{
			"https://storage.googleapis.com/saisokuphotos/variant-images/var-1/123.jpg?X-Goog-Signature=abc",
			"variant-images",
			"variant-images/var-1/123.jpg",
		},
		{
			"https://storage.googleapis.com/order-receipts/receipts/ord-9/456.png",
			"receipts",
			"receipts/ord-9/456.png",
		},
		{
			"https://example.com/unrelated/path.jpg",
			"variant-images",
			"",
		},
		{
			"",
			"receipts",
			"",
		},
	}
	for _, tc := range cases {
		if got := KeyFromURL(tc.url, tc.prefix); got != tc.want {
			t.Fatalf("KeyFromURL(%q, %q): got %q want %q", tc.url, tc.prefix, got, tc.want)
		}
	}
}
