package location

import (
	"context"
	"testing"
)

// An all-nil patch is a no-op, not a missing row; it must not read as 404.
func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	r := &Repo{}
	ok, err := r.Update(context.Background(), "loc-1", Patch{})
	if err != nil {
		t.Fatalf("empty patch returned error: %v", err)
	}
	if !ok {
		t.Fatal("empty patch must report the row as updated")
	}
}
