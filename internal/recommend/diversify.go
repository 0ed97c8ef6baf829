// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import "strings"

// CategoryOther is the bucket for dishes without a category.
const CategoryOther = "other"

// categoryKey normalizes a dish category for diversification.
func categoryKey(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return CategoryOther
	}
	return c
}

// MaxPerCategory returns the per-category cap for a result limit.
func MaxPerCategory(limit int, cfg DiversityConfig) int {
	divisor := cfg.LimitDivisor
	if divisor < 1 {
		divisor = 1
	}
	return max(cfg.MinPerCategory, limit/divisor)
}

// Diversify caps same-category repetition in a score-descending list. The
// first pass admits items while their category is under the cap; the
// second pass backfills remaining slots in score order.
func Diversify(scored []RankedDish, limit int, cfg DiversityConfig) []RankedDish {
	if len(scored) == 0 || limit <= 0 {
		return []RankedDish{}
	}

	perCategory := MaxPerCategory(limit, cfg)
	result := make([]RankedDish, 0, min(limit, len(scored)))
	admitted := make([]bool, len(scored))
	counts := make(map[string]int)

	for i := range scored {
		if len(result) >= limit {
			break
		}
		cat := categoryKey(scored[i].Dish.Category)
		if counts[cat] < perCategory {
			result = append(result, scored[i])
			admitted[i] = true
			counts[cat]++
		}
	}

	for i := range scored {
		if len(result) >= limit {
			break
		}
		if !admitted[i] {
			result = append(result, scored[i])
			admitted[i] = true
		}
	}
	return result
}
