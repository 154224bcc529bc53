package env

import "testing"

func TestGetFallsBack(t *testing.T) {
	t.Setenv("CARTSYNC_TEST_VALUE", "  ")
	if got := Get("CARTSYNC_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("CARTSYNC_TEST_VALUE", "set")
	if got := Get("CARTSYNC_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set value, got %q", got)
	}
}

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("CARTSYNC_A", "")
	t.Setenv("CARTSYNC_B", "b")
	t.Setenv("CARTSYNC_C", "c")
	if got := First("none", "CARTSYNC_A", "CARTSYNC_B", "CARTSYNC_C"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := First("none", "CARTSYNC_MISSING"); got != "none" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
