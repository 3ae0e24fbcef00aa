package ratelimit

import "testing"

func TestAllowExhaustsBurst(t *testing.T) {
	// One request per minute gives the minimum burst of one token.
	l := New(1)

	if !l.Allow() {
		t.Fatal("first request denied, want allowed")
	}
	if l.Allow() {
		t.Error("second immediate request allowed, want denied")
	}
}

func TestBurstScalesWithBudget(t *testing.T) {
	// 100 per minute gives a burst of 10.
	l := New(100)

	for i := 0; i < 10; i++ {
		if !l.Allow() {
			t.Fatalf("request %d denied inside burst", i+1)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst allowed, want denied")
	}
}
