// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package badgerindex

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestStore_LoadWithoutSnapshot(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, "")
	defer s.Close()

	if _, err := s.LoadSnapshot(context.Background()); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, "")
	defer s.Close()
	ctx := context.Background()

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	first := &recommend.IndexSnapshot{
		BuiltAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Favorites: map[primitive.ObjectID][]string{a: {"d1", "d2"}, b: {"d3"}},
	}
	if err := s.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if !got.BuiltAt.Equal(first.BuiltAt) || len(got.Favorites) != 2 {
		t.Fatalf("LoadSnapshot() = %+v", got)
	}
	favs := append([]string(nil), got.Favorites[a]...)
	sort.Strings(favs)
	if len(favs) != 2 || favs[0] != "d1" || favs[1] != "d2" {
		t.Errorf("favorites[a] = %v", favs)
	}

	second := &recommend.IndexSnapshot{
		BuiltAt:   first.BuiltAt.Add(time.Hour),
		Favorites: map[primitive.ObjectID][]string{b: {"d4"}},
	}
	if err := s.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	got, _ = s.LoadSnapshot(ctx)
	if len(got.Favorites) != 1 || got.Favorites[b][0] != "d4" {
		t.Errorf("stale users survived replacement: %v", got.Favorites)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()
	user := primitive.NewObjectID()

	s := openTestStore(t, dir)
	snap := &recommend.IndexSnapshot{
		BuiltAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Favorites: map[primitive.ObjectID][]string{user: {"d1"}},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTestStore(t, dir)
	defer reopened.Close()
	got, err := reopened.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(got.Favorites[user]) != 1 {
		t.Errorf("favorites after reopen = %v", got.Favorites)
	}

	idx := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	idx.Load(got)
	if !idx.Ready() || idx.Size() != 1 {
		t.Errorf("index from snapshot: ready=%v size=%d", idx.Ready(), idx.Size())
	}
}
