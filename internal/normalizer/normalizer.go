// Package normalizer maps raw bookmaker team strings onto canonical
// names. It is the only layer allowed to alter team strings; everything
// downstream assumes canonical names.
package normalizer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultThreshold is the fuzzy acceptance score on the 0–100 scale.
const DefaultThreshold = 85.0

// Normalizer resolves raw team names via an exact dictionary with a
// fuzzy fallback over the set of canonical values.
type Normalizer struct {
	mapping   map[string]string
	canonical []string
	threshold float64
	metric    *metrics.SorensenDice
}

// New builds a Normalizer from a raw→canonical mapping. A threshold of
// 0 means DefaultThreshold.
func New(mapping map[string]string, threshold float64) *Normalizer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	seen := make(map[string]struct{}, len(mapping))
	var canonical []string
	for _, v := range mapping {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		canonical = append(canonical, v)
	}
	sort.Strings(canonical)
	return &Normalizer{
		mapping:   mapping,
		canonical: canonical,
		threshold: threshold,
		metric:    metrics.NewSorensenDice(),
	}
}

// Load reads the mapping dictionary from a JSON file. A missing path is
// not an error: the normalizer then passes names through unchanged.
func Load(path string, threshold float64) (*Normalizer, error) {
	if path == "" {
		return New(nil, threshold), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil, threshold), nil
		}
		return nil, fmt.Errorf("read team mapping: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("parse team mapping %s: %w", path, err)
	}
	return New(mapping, threshold), nil
}

// Standardize resolves a raw team name: empty → "Unknown", exact
// dictionary hit → its value, else the best fuzzy match among canonical
// names if it scores at or above the threshold, else raw unchanged.
func (n *Normalizer) Standardize(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	if canonical, ok := n.mapping[raw]; ok {
		return canonical
	}
	if best, score := n.bestMatch(raw); score >= n.threshold {
		return best
	}
	return raw
}

// bestMatch returns the highest-scoring canonical name and its score on
// a 0–100 scale (bigram Sorensen-Dice similarity).
func (n *Normalizer) bestMatch(raw string) (string, float64) {
	var best string
	var bestScore float64
	for _, candidate := range n.canonical {
		score := strutil.Similarity(raw, candidate, n.metric) * 100
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore
}
