package stats

import (
	"testing"

	"novel_lens/internal/vocab"
)

func TestStarBucketBoundaries(t *testing.T) {
	cases := []struct {
		rank int
		has  bool
		want int
	}{
		{1, true, 5},
		{1500, true, 5},
		{1501, true, 4},
		{5000, true, 4},
		{5001, true, 3},
		{15000, true, 3},
		{15001, true, 2},
		{30000, true, 2},
		{30001, true, 1},
		{60000, true, 1},
		{60001, true, 0},
		{0, false, 0},
	}
	for _, tc := range cases {
		if got := StarsFromRank(tc.rank, tc.has); got != tc.want {
			t.Errorf("StarsFromRank(%d, %v) = %d, want %d", tc.rank, tc.has, got, tc.want)
		}
	}
}

func TestComprehensionRateExcludesIgnored(t *testing.T) {
	// Ignored occurrences never enter the calculation, regardless of volume.
	if got := ComprehensionRate(80, 20); got != 80.0 {
		t.Fatalf("ComprehensionRate(80, 20) = %v, want 80.0", got)
	}
	if got := DifficultyLevel(80.0); got != "Intermediate" {
		t.Fatalf("DifficultyLevel(80.0) = %q, want Intermediate", got)
	}
	if got := ComprehensionRate(0, 0); got != 0 {
		t.Fatalf("empty denominator should yield 0, got %v", got)
	}
}

func TestDifficultyBands(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{100, "Beginner"},
		{95, "Beginner"},
		{94.9, "Elementary"},
		{85, "Elementary"},
		{84.9, "Intermediate"},
		{75, "Intermediate"},
		{74.9, "Advanced"},
		{65, "Advanced"},
		{64.9, "Expert"},
		{0, "Expert"},
	}
	for _, tc := range cases {
		if got := DifficultyLevel(tc.rate); got != tc.want {
			t.Errorf("DifficultyLevel(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	known := []vocab.WordEntry{
		{Word: "猫", Count: 4, HasFrequency: true, Rank: 500},   // 5 stars
		{Word: "犬", Count: 2, HasFrequency: true, Rank: 20000}, // 2 stars
	}
	ignored := []vocab.WordEntry{
		{Word: "鳥", Count: 1, HasFrequency: true, Rank: 1000}, // 5 stars
	}
	unknown := []vocab.WordEntry{
		{Word: "麒麟", Count: 3}, // no frequency: 0 stars
	}

	agg := Aggregate(known, ignored, unknown)

	if agg.Known.StarCounts[5] != 1 || agg.Known.StarCounts[2] != 1 {
		t.Fatalf("known histogram wrong: %v", agg.Known.StarCounts)
	}
	// (5*4 + 2*2) / 6 = 4.0
	if agg.Known.AverageRating != 4.0 {
		t.Fatalf("known average = %v, want 4.0", agg.Known.AverageRating)
	}
	if agg.Unknown.StarCounts[0] != 1 || agg.Unknown.AverageRating != 0 {
		t.Fatalf("unknown stats wrong: %+v", agg.Unknown)
	}
	if agg.Combined[5] != 2 {
		t.Fatalf("combined 5-star count = %d, want 2", agg.Combined[5])
	}
	if agg.TotalUniqueWords != 4 {
		t.Fatalf("total unique = %d, want 4", agg.TotalUniqueWords)
	}
	if agg.TotalInstances != 10 {
		t.Fatalf("total instances = %d, want 10", agg.TotalInstances)
	}
}
