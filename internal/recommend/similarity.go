// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets have no similarity.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for k := range small {
		if _, ok := large[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// rankNeighbors sorts by similarity descending and truncates to limit.
// Ties are ordered by user id so results are deterministic.
func rankNeighbors(neighbors []Neighbor, limit int) []Neighbor {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID.Hex() < neighbors[j].UserID.Hex()
	})
	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors
}

// FindSimilarUsers returns the users whose favorites overlap the given set
// by more than the configured threshold, best first. A warm neighbor index
// answers directly; otherwise the repository is scanned under the
// configured time budget, and a scan cut short by the budget still ranks
// what it collected.
func (e *Engine) FindSimilarUsers(ctx context.Context, userID primitive.ObjectID, favorites map[string]struct{}) ([]Neighbor, error) {
	if len(favorites) == 0 {
		return nil, nil
	}
	if e.index != nil && e.index.Ready() {
		return e.index.Neighbors(userID, favorites), nil
	}

	scanCtx := ctx
	if e.config.Similarity.ScanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, e.config.Similarity.ScanTimeout)
		defer cancel()
	}

	threshold := e.config.Similarity.Threshold
	var neighbors []Neighbor
	err := e.repo.ScanFavorites(scanCtx, userID, func(rec FavoritesRecord) error {
		if rec.UserID == userID || len(rec.Favorites) == 0 {
			return nil
		}
		if sim := Jaccard(favorites, toSet(rec.Favorites)); sim > threshold {
			neighbors = append(neighbors, Neighbor{UserID: rec.UserID, Similarity: sim})
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fmt.Errorf("scan favorites: %w", err)
		}
		e.logger.Warn().
			Dur("budget", e.config.Similarity.ScanTimeout).
			Int("collected", len(neighbors)).
			Msg("Similarity scan exceeded its time budget, using partial neighbors")
	}
	return rankNeighbors(neighbors, e.config.Similarity.MaxNeighbors), nil
}

// LoadSimilarActivities batch loads the activities of exactly the given
// neighbors. Neighbors without an activity are absent from the result.
func (e *Engine) LoadSimilarActivities(ctx context.Context, neighbors []Neighbor) (map[primitive.ObjectID]*UserActivity, error) {
	if len(neighbors) == 0 {
		return map[primitive.ObjectID]*UserActivity{}, nil
	}
	ids := make([]primitive.ObjectID, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.UserID
	}
	activities, err := e.repo.FindActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load neighbor activities: %w", err)
	}
	return activities, nil
}
