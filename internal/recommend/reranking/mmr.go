// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package reranking implements post-processing algorithms for recommendation diversity.
package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// DefaultWindow is how many top items MMR reorders. Items past the window
// keep their score order.
const DefaultWindow = 100

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): original relevance score for item i
//   - sim(i, s): Jaccard similarity of the dishes' cuisine, category and
//     ingredient features
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
	window int
}

// NewMMR creates a new MMR reranker. lambda is clamped to [0, 1] and a
// non-positive window uses DefaultWindow.
func NewMMR(lambda float64, window int) *MMR {
	lambda = max(0, min(1, lambda))
	if window <= 0 {
		window = DefaultWindow
	}
	return &MMR{lambda: lambda, window: window}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank reorders the first min(k, window) items and returns them followed
// by the untouched remainder, so the result has the same length as items.
// Scores are not modified.
func (m *MMR) Rerank(ctx context.Context, items []recommend.RankedDish, k int) []recommend.RankedDish {
	if len(items) < 2 || k <= 1 || m.lambda >= 1.0 {
		return items
	}
	n := min(k, m.window, len(items))

	features := make([]map[string]struct{}, n)
	for i := range n {
		features[i] = dishFeatures(&items[i].Dish)
	}

	// maxSim[i] is the highest similarity of item i to any selected item.
	maxSim := make([]float64, n)
	taken := make([]bool, n)
	out := make([]recommend.RankedDish, 0, len(items))

	for len(out) < n {
		if ctx.Err() != nil {
			break
		}
		best := -1
		bestMMR := 0.0
		for i := range n {
			if taken[i] {
				continue
			}
			score := m.lambda*items[i].Score - (1-m.lambda)*maxSim[i]
			if best < 0 || score > bestMMR {
				best, bestMMR = i, score
			}
		}

		taken[best] = true
		out = append(out, items[best])
		for i := range n {
			if !taken[i] {
				maxSim[i] = max(maxSim[i], recommend.Jaccard(features[i], features[best]))
			}
		}
	}

	// Anything not selected before cancellation keeps its original order.
	for i := range n {
		if !taken[i] {
			out = append(out, items[i])
		}
	}
	return append(out, items[n:]...)
}

// dishFeatures returns the lowercased cuisine, category and ingredient
// names of a dish, prefixed so the three vocabularies never collide.
func dishFeatures(d *recommend.Dish) map[string]struct{} {
	set := make(map[string]struct{}, len(d.Ingredients)+2)
	if c := strings.ToLower(strings.TrimSpace(d.CuisineType)); c != "" {
		set["cuisine:"+c] = struct{}{}
	}
	if c := strings.ToLower(strings.TrimSpace(d.Category)); c != "" {
		set["category:"+c] = struct{}{}
	}
	for _, ing := range d.Ingredients {
		if name := strings.ToLower(strings.TrimSpace(ing.Name)); name != "" {
			set["ingredient:"+name] = struct{}{}
		}
	}
	return set
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
