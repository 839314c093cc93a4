// Package quota implements the tier-based request quota policy.
//
// The policy is a pure function of (tier, current count). Enforcement and
// counter persistence live in the quota gate middleware and the repository;
// this package is the single source of truth for the limit itself.
package quota

import "github.com/taskhive/taskhive/internal/model"

// MaxFreeRequests is the lifetime request ceiling for free-tier accounts.
// The boundary is closed: a free account at exactly this count is denied.
const MaxFreeRequests int64 = 5

// Allow reports whether an account of the given tier may perform another
// gated request when its counter currently reads count.
// Paid accounts are unbounded. Unknown tiers are treated as free.
func Allow(tier string, count int64) bool {
	if tier == model.TierPaid {
		return true
	}
	return count < MaxFreeRequests
}

// Remaining returns how many gated requests the account may still perform.
// The boolean is false for unbounded (paid) accounts, in which case the
// count is meaningless.
func Remaining(tier string, count int64) (int64, bool) {
	if tier == model.TierPaid {
		return 0, false
	}
	left := MaxFreeRequests - count
	if left < 0 {
		left = 0
	}
	return left, true
}
