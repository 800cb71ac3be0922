package stats

import (
	"math"

	"novel_lens/internal/vocab"
)

// StarsFromRank discretizes a frequency rank into a 0-5 star rating.
// Lower rank means more common; words with no frequency data get 0.
func StarsFromRank(rank int, hasFrequency bool) int {
	if !hasFrequency {
		return 0
	}
	switch {
	case rank <= 1500:
		return 5
	case rank <= 5000:
		return 4
	case rank <= 15000:
		return 3
	case rank <= 30000:
		return 2
	case rank <= 60000:
		return 1
	default:
		return 0
	}
}

// CategoryStars is the star histogram for one classification bucket.
// StarCounts is indexed by star rating over unique words; AverageRating
// is weighted by occurrence count.
type CategoryStars struct {
	StarCounts     [6]int  `json:"star_counts"`
	UniqueWords    int     `json:"unique_words"`
	TotalInstances int     `json:"total_instances"`
	AverageRating  float64 `json:"average_rating"`
}

// StarStats holds per-category histograms plus a combined view.
type StarStats struct {
	Known            CategoryStars `json:"known"`
	Ignored          CategoryStars `json:"ignored"`
	Unknown          CategoryStars `json:"unknown"`
	Combined         [6]int        `json:"combined_star_distribution"`
	TotalUniqueWords int           `json:"total_unique_words"`
	TotalInstances   int           `json:"total_word_instances"`
}

// Aggregate builds star statistics across the three category lists.
func Aggregate(known, ignored, unknown []vocab.WordEntry) StarStats {
	out := StarStats{
		Known:   categoryStars(known),
		Ignored: categoryStars(ignored),
		Unknown: categoryStars(unknown),
	}
	for _, cat := range []CategoryStars{out.Known, out.Ignored, out.Unknown} {
		for star, n := range cat.StarCounts {
			out.Combined[star] += n
		}
		out.TotalUniqueWords += cat.UniqueWords
		out.TotalInstances += cat.TotalInstances
	}
	return out
}

func categoryStars(entries []vocab.WordEntry) CategoryStars {
	var cat CategoryStars
	score := 0
	for _, e := range entries {
		stars := StarsFromRank(e.Rank, e.HasFrequency)
		cat.StarCounts[stars]++
		cat.UniqueWords++
		cat.TotalInstances += e.Count
		score += stars * e.Count
	}
	if cat.TotalInstances > 0 {
		cat.AverageRating = round2(float64(score) / float64(cat.TotalInstances))
	}
	return cat
}

// ComprehensionRate is the percentage of word occurrences the reader
// knows, with ignored occurrences excluded from both sides.
func ComprehensionRate(knownOccurrences, unknownOccurrences int) float64 {
	total := knownOccurrences + unknownOccurrences
	if total == 0 {
		return 0
	}
	return float64(knownOccurrences) / float64(total) * 100
}

// DifficultyLevel maps a comprehension rate to a discrete label. Bands
// are inclusive on their lower edge and checked from easiest down.
func DifficultyLevel(rate float64) string {
	switch {
	case rate >= 95:
		return "Beginner"
	case rate >= 85:
		return "Elementary"
	case rate >= 75:
		return "Intermediate"
	case rate >= 65:
		return "Advanced"
	default:
		return "Expert"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
