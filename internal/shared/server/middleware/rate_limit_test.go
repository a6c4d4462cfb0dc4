package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstThenRefuses(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 3}

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("caller|UPLOAD", rule)
		if !allowed {
			t.Fatalf("call %d should be within burst", i)
		}
	}

	allowed, retryAfter := limiter.Allow("caller|UPLOAD", rule)
	if allowed {
		t.Fatal("fourth call should be refused")
	}
	if retryAfter <= 0 {
		t.Errorf("retryAfter = %v, want positive", retryAfter)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	if allowed, _ := limiter.Allow("k", rule); !allowed {
		t.Fatal("first call should pass")
	}
	if allowed, _ := limiter.Allow("k", rule); allowed {
		t.Fatal("second immediate call should be refused")
	}

	now = now.Add(time.Second)
	if allowed, _ := limiter.Allow("k", rule); !allowed {
		t.Fatal("call after refill window should pass")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(nil)
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if allowed, _ := limiter.Allow("a|G", rule); !allowed {
		t.Fatal("first key should pass")
	}
	if allowed, _ := limiter.Allow("b|G", rule); !allowed {
		t.Fatal("second key has its own bucket")
	}
}
