// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package badgerindex persists neighbor index snapshots in BadgerDB so a
// restarted node can serve neighbor lookups before its first full rebuild.
package badgerindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Key layout:
//
//	meta:built_at        RFC3339Nano build time
//	fav:<user hex id>    JSON array of favorite dish ids
const (
	metaBuiltAtKey = "meta:built_at"
	favKeyPrefix   = "fav:"
)

// Store is a BadgerDB backed recommend.IndexStore.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

var _ recommend.IndexStore = (*Store)(nil)

// Open opens or creates a store at path. An empty path opens an in-memory
// database.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create index directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "badgerindex").Logger(),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the stored snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap *recommend.IndexSnapshot) error {
	stale, err := s.staleKeys(snap)
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete stale user: %w", err)
		}
	}
	for user, favs := range snap.Favorites {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(favs)
		if err != nil {
			return fmt.Errorf("marshal favorites: %w", err)
		}
		if err := wb.Set([]byte(favKeyPrefix+user.Hex()), data); err != nil {
			return fmt.Errorf("set favorites: %w", err)
		}
	}
	builtAt, err := snap.BuiltAt.MarshalText()
	if err != nil {
		return fmt.Errorf("marshal built_at: %w", err)
	}
	if err := wb.Set([]byte(metaBuiltAtKey), builtAt); err != nil {
		return fmt.Errorf("set built_at: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	s.logger.Debug().
		Int("users", len(snap.Favorites)).
		Time("built_at", snap.BuiltAt).
		Msg("Saved neighbor index snapshot")
	return nil
}

// staleKeys lists stored users that are absent from snap.
func (s *Store) staleKeys(snap *recommend.IndexSnapshot) ([][]byte, error) {
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(favKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			user, err := primitive.ObjectIDFromHex(string(key[len(favKeyPrefix):]))
			if err == nil {
				if _, ok := snap.Favorites[user]; ok {
					continue
				}
			}
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stored users: %w", err)
	}
	return stale, nil
}

// LoadSnapshot returns the stored snapshot, or recommend.ErrNotFound when
// none has been saved.
func (s *Store) LoadSnapshot(ctx context.Context) (*recommend.IndexSnapshot, error) {
	snap := &recommend.IndexSnapshot{Favorites: make(map[primitive.ObjectID][]string)}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaBuiltAtKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return recommend.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get built_at: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			var t time.Time
			if err := t.UnmarshalText(val); err != nil {
				return err
			}
			snap.BuiltAt = t
			return nil
		}); err != nil {
			return fmt.Errorf("decode built_at: %w", err)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(favKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			user, err := primitive.ObjectIDFromHex(string(item.Key()[len(favKeyPrefix):]))
			if err != nil {
				s.logger.Warn().Str("key", string(item.Key())).Msg("Skipping malformed index key")
				continue
			}
			var favs []string
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &favs)
			}); err != nil {
				return fmt.Errorf("decode favorites: %w", err)
			}
			snap.Favorites[user] = favs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
