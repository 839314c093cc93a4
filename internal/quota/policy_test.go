package quota

import (
	"testing"

	"github.com/taskhive/taskhive/internal/model"
)

func TestAllow_FreeTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int64
		want  bool
	}{
		{"zero count", 0, true},
		{"one below limit", MaxFreeRequests - 1, true},
		{"exactly at limit", MaxFreeRequests, false},
		{"past limit", MaxFreeRequests + 1, false},
		{"far past limit", MaxFreeRequests * 100, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Allow(model.TierFree, tt.count); got != tt.want {
				t.Errorf("Allow(free, %d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestAllow_PaidTierUnbounded(t *testing.T) {
	t.Parallel()

	counts := []int64{0, MaxFreeRequests, MaxFreeRequests + 1, 1 << 40}
	for _, count := range counts {
		if !Allow(model.TierPaid, count) {
			t.Errorf("Allow(paid, %d) = false, want true", count)
		}
	}
}

func TestAllow_UnknownTierTreatedAsFree(t *testing.T) {
	t.Parallel()

	if Allow("platinum", MaxFreeRequests) {
		t.Error("unknown tier at the limit should be denied")
	}
	if !Allow("platinum", 0) {
		t.Error("unknown tier below the limit should be allowed")
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		tier        string
		count       int64
		want        int64
		wantLimited bool
	}{
		{"free with full budget", model.TierFree, 0, MaxFreeRequests, true},
		{"free with partial budget", model.TierFree, 3, MaxFreeRequests - 3, true},
		{"free exhausted", model.TierFree, MaxFreeRequests, 0, true},
		{"free past limit clamps to zero", model.TierFree, MaxFreeRequests + 2, 0, true},
		{"paid is unbounded", model.TierPaid, 1000, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, limited := Remaining(tt.tier, tt.count)
			if got != tt.want || limited != tt.wantLimited {
				t.Errorf("Remaining(%s, %d) = (%d, %v), want (%d, %v)",
					tt.tier, tt.count, got, limited, tt.want, tt.wantLimited)
			}
		})
	}
}
