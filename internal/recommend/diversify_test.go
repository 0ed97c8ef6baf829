// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rankedList(categories ...string) []RankedDish {
	out := make([]RankedDish, len(categories))
	for i, c := range categories {
		out[i] = RankedDish{
			Dish:  Dish{ID: primitive.NewObjectID(), Category: c},
			Score: float64(len(categories) - i),
		}
	}
	return out
}

func TestMaxPerCategory(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Diversity
	tests := []struct {
		limit, want int
	}{
		{1, 3}, {10, 3}, {15, 3}, {20, 4}, {24, 4}, {50, 10},
	}
	for _, tt := range tests {
		if got := MaxPerCategory(tt.limit, cfg); got != tt.want {
			t.Errorf("MaxPerCategory(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestDiversify_CapsCategories(t *testing.T) {
	t.Parallel()

	cats := make([]string, 0, 40)
	for i := 0; i < 8; i++ {
		for _, c := range []string{"Soup", "salad", "Dessert", "main", "drink"} {
			cats = append(cats, c)
		}
	}
	// Front-load one category so the cap has to kick in.
	cats = append([]string{"soup", "soup", "soup", "soup", "soup", "soup"}, cats...)
	scored := rankedList(cats...)

	got := Diversify(scored, 20, DefaultConfig().Diversity)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	counts := map[string]int{}
	for _, r := range got {
		counts[categoryKey(r.Dish.Category)]++
	}
	for c, n := range counts {
		if n > 4 {
			t.Errorf("category %q appears %d times, cap is 4", c, n)
		}
	}
}

func TestDiversify_BackfillsWhenCategoriesExhausted(t *testing.T) {
	t.Parallel()

	scored := rankedList("a", "a", "a", "a", "a", "b", "b", "", "")
	got := Diversify(scored, 8, DefaultConfig().Diversity)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}

	// First pass admits a,a,a,b,b,other,other; second pass adds the
	// highest scoring remaining "a".
	wantOrder := []int{0, 1, 2, 5, 6, 7, 8, 3}
	for i, idx := range wantOrder {
		if got[i].Dish.ID != scored[idx].Dish.ID {
			t.Errorf("position %d: got dish %d", i, idx)
		}
	}
}

func TestDiversify_Edges(t *testing.T) {
	t.Parallel()

	if got := Diversify(nil, 10, DefaultConfig().Diversity); len(got) != 0 {
		t.Errorf("nil input: got %d items", len(got))
	}
	if got := Diversify(rankedList("a", "b"), 10, DefaultConfig().Diversity); len(got) != 2 {
		t.Errorf("short input: got %d items, want 2", len(got))
	}
	if got := Diversify(rankedList("a", "b"), 0, DefaultConfig().Diversity); len(got) != 0 {
		t.Errorf("zero limit: got %d items", len(got))
	}
}
