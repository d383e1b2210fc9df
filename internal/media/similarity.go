package media

import (
	"math"
	"strings"
)

// TitleSimilarity returns the cosine similarity of the token frequency
// vectors of two titles, in [0, 1]. Tokenization lowercases and splits
// on anything that is not a letter or digit, so punctuation and case
// never affect the comparison.
func TitleSimilarity(a, b string) float64 {
	va, na := titleVector(a)
	vb, nb := titleVector(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for token, count := range va {
		if other, ok := vb[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (na * nb)
}

func titleVector(title string) (map[string]float64, float64) {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	counts := make(map[string]float64, len(fields))
	for _, token := range fields {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return counts, math.Sqrt(norm)
}
