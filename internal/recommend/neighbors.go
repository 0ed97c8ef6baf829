// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IndexSnapshot is the persisted form of a NeighborIndex.
type IndexSnapshot struct {
	BuiltAt   time.Time
	Favorites map[primitive.ObjectID][]string
}

// IndexStore persists neighbor index snapshots between restarts.
type IndexStore interface {
	SaveSnapshot(ctx context.Context, snap *IndexSnapshot) error
	LoadSnapshot(ctx context.Context) (*IndexSnapshot, error)
}

// NeighborIndex is a precomputed favorites index with an inverted
// dish-to-users map, so neighbor lookups only touch users that share at
// least one favorite. Users whose favorites change are marked dirty and
// reloaded by Refresh.
//
// Each mark carries a sequence number. A reload only clears the mark it
// observed, so a user marked again while the reload was reading stays dirty.
type NeighborIndex struct {
	mu        sync.RWMutex
	favorites map[primitive.ObjectID]map[string]struct{}
	byDish    map[string]map[primitive.ObjectID]struct{}
	dirty     map[primitive.ObjectID]uint64
	seq       uint64
	ready     bool
	builtAt   time.Time

	threshold float64
	limit     int
}

// NewNeighborIndex creates an empty, not yet ready index.
func NewNeighborIndex(cfg SimilarityConfig) *NeighborIndex {
	return &NeighborIndex{
		favorites: make(map[primitive.ObjectID]map[string]struct{}),
		byDish:    make(map[string]map[primitive.ObjectID]struct{}),
		dirty:     make(map[primitive.ObjectID]uint64),
		threshold: cfg.Threshold,
		limit:     cfg.MaxNeighbors,
	}
}

// Ready reports whether the index has been built or loaded.
func (x *NeighborIndex) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ready
}

// Size returns the number of indexed users.
func (x *NeighborIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.favorites)
}

// BuiltAt returns when the index was last fully built.
func (x *NeighborIndex) BuiltAt() time.Time {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.builtAt
}

// Rebuild replaces the index with a full scan of the repository. Users
// marked dirty after the scan started stay dirty.
func (x *NeighborIndex) Rebuild(ctx context.Context, repo Repository) error {
	x.mu.RLock()
	since := x.seq
	x.mu.RUnlock()

	fresh := make(map[primitive.ObjectID][]string)
	err := repo.ScanFavorites(ctx, primitive.NilObjectID, func(rec FavoritesRecord) error {
		fresh[rec.UserID] = rec.Favorites
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuild neighbor index: %w", err)
	}
	x.load(&IndexSnapshot{BuiltAt: time.Now(), Favorites: fresh}, since)
	return nil
}

// Load replaces the index contents with a snapshot and marks it ready.
// Pending dirty marks are kept, since the snapshot may predate them.
func (x *NeighborIndex) Load(snap *IndexSnapshot) {
	x.load(snap, 0)
}

// load installs snap and drops the dirty marks numbered through or below.
func (x *NeighborIndex) load(snap *IndexSnapshot, through uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.favorites = make(map[primitive.ObjectID]map[string]struct{}, len(snap.Favorites))
	x.byDish = make(map[string]map[primitive.ObjectID]struct{})
	maps.DeleteFunc(x.dirty, func(_ primitive.ObjectID, seq uint64) bool {
		return seq <= through
	})
	for user, favs := range snap.Favorites {
		x.setLocked(user, favs)
	}
	x.builtAt = snap.BuiltAt
	x.ready = true
}

// Snapshot returns a copy of the index contents.
func (x *NeighborIndex) Snapshot() *IndexSnapshot {
	x.mu.RLock()
	defer x.mu.RUnlock()

	favs := make(map[primitive.ObjectID][]string, len(x.favorites))
	for user, set := range x.favorites {
		list := make([]string, 0, len(set))
		for id := range set {
			list = append(list, id)
		}
		favs[user] = list
	}
	return &IndexSnapshot{BuiltAt: x.builtAt, Favorites: favs}
}

// Upsert sets a user's favorites and clears its dirty mark. An empty list
// removes the user.
func (x *NeighborIndex) Upsert(userID primitive.ObjectID, favorites []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.setLocked(userID, favorites)
	delete(x.dirty, userID)
}

func (x *NeighborIndex) setLocked(userID primitive.ObjectID, favorites []string) {
	if old, ok := x.favorites[userID]; ok {
		for id := range old {
			if users := x.byDish[id]; users != nil {
				delete(users, userID)
				if len(users) == 0 {
					delete(x.byDish, id)
				}
			}
		}
		delete(x.favorites, userID)
	}
	if len(favorites) == 0 {
		return
	}
	set := toSet(favorites)
	x.favorites[userID] = set
	for id := range set {
		users := x.byDish[id]
		if users == nil {
			users = make(map[primitive.ObjectID]struct{})
			x.byDish[id] = users
		}
		users[userID] = struct{}{}
	}
}

// MarkDirty schedules a user for reload on the next Refresh.
func (x *NeighborIndex) MarkDirty(userID primitive.ObjectID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.seq++
	x.dirty[userID] = x.seq
}

// DirtyCount returns the number of users awaiting refresh.
func (x *NeighborIndex) DirtyCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.dirty)
}

// Refresh reloads the favorites of dirty users. It returns how many users
// were reloaded.
func (x *NeighborIndex) Refresh(ctx context.Context, repo Repository) (int, error) {
	x.mu.RLock()
	marks := maps.Clone(x.dirty)
	x.mu.RUnlock()
	if len(marks) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	activities, err := repo.FindActivities(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("refresh neighbor index: %w", err)
	}
	for id, seq := range marks {
		var favs []string
		if a, ok := activities[id]; ok && a != nil {
			favs = a.FavoriteDishes
		}
		x.refreshUser(id, favs, seq)
	}
	return len(ids), nil
}

func (x *NeighborIndex) refreshUser(userID primitive.ObjectID, favorites []string, seq uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.setLocked(userID, favorites)
	if x.dirty[userID] == seq {
		delete(x.dirty, userID)
	}
}

// Neighbors returns the ranked neighbors of a user with the given
// favorites, excluding the user itself. Users sharing no favorite have zero
// similarity and are never candidates.
func (x *NeighborIndex) Neighbors(userID primitive.ObjectID, favorites map[string]struct{}) []Neighbor {
	if len(favorites) == 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	candidates := make(map[primitive.ObjectID]struct{})
	for id := range favorites {
		for user := range x.byDish[id] {
			if user != userID {
				candidates[user] = struct{}{}
			}
		}
	}

	neighbors := make([]Neighbor, 0, len(candidates))
	for user := range candidates {
		if sim := Jaccard(favorites, x.favorites[user]); sim > x.threshold {
			neighbors = append(neighbors, Neighbor{UserID: user, Similarity: sim})
		}
	}
	return rankNeighbors(neighbors, x.limit)
}
