// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend_test

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
	"github.com/tomtom215/cookrank/internal/store/memory"
)

// racingStore runs duringRead once, right after a read has returned its
// data, the way a concurrent favorite write lands mid-refresh.
type racingStore struct {
	*memory.Store
	duringRead func()
}

func (s *racingStore) fire() {
	if s.duringRead != nil {
		fn := s.duringRead
		s.duringRead = nil
		fn()
	}
}

func (s *racingStore) FindActivities(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*recommend.UserActivity, error) {
	out, err := s.Store.FindActivities(ctx, ids)
	s.fire()
	return out, err
}

func (s *racingStore) ScanFavorites(ctx context.Context, exclude primitive.ObjectID, fn func(recommend.FavoritesRecord) error) error {
	err := s.Store.ScanFavorites(ctx, exclude, fn)
	s.fire()
	return err
}

func TestNeighborIndex_RefreshKeepsMarkSetDuringRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	user := primitive.NewObjectID()
	store := &racingStore{Store: memory.New()}
	store.PutActivity(&recommend.UserActivity{UserID: user, FavoriteDishes: []string{"d1"}})

	idx := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	idx.Load(&recommend.IndexSnapshot{})
	idx.MarkDirty(user)

	store.duringRead = func() {
		store.PutActivity(&recommend.UserActivity{UserID: user, FavoriteDishes: []string{"d1", "d2"}})
		idx.MarkDirty(user)
	}
	if n, err := idx.Refresh(ctx, store); err != nil || n != 1 {
		t.Fatalf("Refresh() = %d, %v", n, err)
	}
	if idx.DirtyCount() != 1 {
		t.Fatalf("DirtyCount() = %d, want the newer mark kept", idx.DirtyCount())
	}

	if n, err := idx.Refresh(ctx, store); err != nil || n != 1 {
		t.Fatalf("second Refresh() = %d, %v", n, err)
	}
	if idx.DirtyCount() != 0 {
		t.Errorf("DirtyCount() = %d, want 0", idx.DirtyCount())
	}
	favs := idx.Snapshot().Favorites[user]
	if len(favs) != 2 {
		t.Errorf("indexed favorites = %v, want [d1 d2]", favs)
	}
}

func TestNeighborIndex_RebuildKeepsMarksFromDuringScan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	before := primitive.NewObjectID()
	during := primitive.NewObjectID()
	store := &racingStore{Store: memory.New()}
	store.PutActivity(&recommend.UserActivity{UserID: before, FavoriteDishes: []string{"a"}})

	idx := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	idx.MarkDirty(before)
	store.duringRead = func() { idx.MarkDirty(during) }

	if err := idx.Rebuild(ctx, store); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !idx.Ready() || idx.Size() != 1 {
		t.Fatalf("Ready=%v Size=%d, want ready with 1 user", idx.Ready(), idx.Size())
	}
	if idx.DirtyCount() != 1 {
		t.Errorf("DirtyCount() = %d, want only the mark made during the scan", idx.DirtyCount())
	}
}

func TestNeighborIndex_LoadKeepsPendingMarks(t *testing.T) {
	t.Parallel()

	idx := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	idx.MarkDirty(primitive.NewObjectID())
	idx.Load(&recommend.IndexSnapshot{Favorites: map[primitive.ObjectID][]string{
		primitive.NewObjectID(): {"a"},
	}})
	if idx.DirtyCount() != 1 {
		t.Errorf("DirtyCount() = %d, want the mark to survive a snapshot load", idx.DirtyCount())
	}
}
