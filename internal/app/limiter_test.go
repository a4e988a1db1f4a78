package app

import (
	"testing"
	"time"
)

func TestLimiterAllowsWithinWindow(t *testing.T) {
	rl := NewSlidingLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("sid") {
			t.Fatalf("attempt %d blocked below the limit", i)
		}
	}
	if rl.Allow("sid") {
		t.Error("attempt above the limit allowed")
	}
}

func TestLimiterWindowSlides(t *testing.T) {
	rl := NewSlidingLimiter(1, 20*time.Millisecond)
	if !rl.Allow("sid") {
		t.Fatal("first attempt blocked")
	}
	if rl.Allow("sid") {
		t.Fatal("second attempt allowed inside the window")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("sid") {
		t.Error("attempt blocked after the window passed")
	}
}

func TestLimiterIsPerSession(t *testing.T) {
	rl := NewSlidingLimiter(1, time.Minute)
	if !rl.Allow("a") {
		t.Fatal("a blocked")
	}
	if !rl.Allow("b") {
		t.Error("b blocked by a's window")
	}
}

func TestLimiterForget(t *testing.T) {
	rl := NewSlidingLimiter(1, time.Minute)
	rl.Allow("sid")
	rl.Forget("sid")
	if !rl.Allow("sid") {
		t.Error("window survived Forget")
	}
}
