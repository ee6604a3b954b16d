package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		ErrBadRequest, ErrNoResource, ErrInvalidTarget,
		ErrConflict, ErrBlocked, ErrGameOver, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Fatalf("IsKnownCode(%q)=false want true", code)
		}
	}
	if IsKnownCode("E_MADE_UP") {
		t.Fatalf("IsKnownCode(E_MADE_UP)=true want false")
	}
	// Empty code means success; treated as known.
	if !IsKnownCode("") {
		t.Fatalf("IsKnownCode(\"\")=false want true")
	}
}
