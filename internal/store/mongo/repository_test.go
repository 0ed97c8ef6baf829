// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tomtom215/cookrank/internal/recommend"
)

func TestDecodeEach_SkipsUndecodableDishes(t *testing.T) {
	t.Parallel()

	good := primitive.NewObjectID()
	badRating := primitive.NewObjectID()
	badCreated := primitive.NewObjectID()
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	docs := []interface{}{
		bson.M{"_id": good, "name": "Pho", "average_rating": 4.5, "created_at": created},
		bson.M{"_id": badRating, "name": "Broken", "average_rating": "four"},
		bson.M{"_id": badCreated, "name": "Undated", "average_rating": 4.0, "created_at": "yesterday"},
	}
	cursor, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	if err != nil {
		t.Fatalf("NewCursorFromDocuments() error = %v", err)
	}

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	dishes, err := decodeEach[recommend.Dish](context.Background(), cursor, &logger, "dishes")
	if err != nil {
		t.Fatalf("decodeEach() error = %v", err)
	}

	if len(dishes) != 2 {
		t.Fatalf("decoded %d dishes, want 2", len(dishes))
	}
	if dishes[0].ID != good || dishes[0].CreatedAt == nil || !dishes[0].CreatedAt.Equal(created) {
		t.Errorf("first dish = %+v", dishes[0])
	}
	if dishes[1].ID != badCreated || dishes[1].CreatedAt != nil || dishes[1].AverageRating != 4.0 {
		t.Errorf("undated dish = %+v, want created_at dropped and rating kept", dishes[1])
	}
	if !strings.Contains(logs.String(), "Skipping undecodable document") || !strings.Contains(logs.String(), badRating.Hex()) {
		t.Errorf("expected a warning naming %s, got %q", badRating.Hex(), logs.String())
	}
}

func TestDecodeEach_ActivityWithBadTimestamp(t *testing.T) {
	t.Parallel()

	user := primitive.NewObjectID()
	ts := time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)
	docs := []interface{}{
		bson.M{
			"_id":             primitive.NewObjectID(),
			"user_id":         user,
			"favorite_dishes": bson.A{"a"},
			"viewed_dishes_and_users": bson.A{
				bson.M{"type": "dish", "id": "a", "ts": ts},
				bson.M{"type": "dish", "id": "b", "ts": "not-a-timestamp"},
			},
		},
	}
	cursor, err := mongo.NewCursorFromDocuments(docs, nil, nil)
	if err != nil {
		t.Fatalf("NewCursorFromDocuments() error = %v", err)
	}

	logger := zerolog.Nop()
	activities, err := decodeEach[recommend.UserActivity](context.Background(), cursor, &logger, "user activity")
	if err != nil {
		t.Fatalf("decodeEach() error = %v", err)
	}
	if len(activities) != 1 || len(activities[0].History) != 2 {
		t.Fatalf("activities = %+v, want one activity with two entries", activities)
	}
	history := activities[0].History
	if !history[0].TS.Equal(ts) || !history[1].TS.IsZero() || history[1].ID != "b" {
		t.Errorf("history = %+v, want the malformed ts read as zero", history)
	}
}
