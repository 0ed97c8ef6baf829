// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

func TestBuildDishFilter(t *testing.T) {
	t.Parallel()

	f := recommend.DishFilter{
		ActiveOnly:      true,
		MinRating:       4,
		Cuisines:        []string{"Thai"},
		Difficulty:      "easy",
		MinRatingsCount: 5,
		ExcludeTags:     []string{"Pork", " ", "a.b"},
	}
	q := buildDishFilter(&f)

	if q["is_active"] != true {
		t.Errorf("is_active = %v", q["is_active"])
	}
	if got := q["average_rating"].(bson.M)["$gte"]; got != 4.0 {
		t.Errorf("average_rating $gte = %v", got)
	}
	if q["difficulty"] != "easy" {
		t.Errorf("difficulty = %v", q["difficulty"])
	}
	if _, ok := q["ratings.4"]; !ok {
		t.Errorf("missing ratings.4 existence check in %v", q)
	}

	nin := q["tags"].(bson.M)["$nin"].(bson.A)
	if len(nin) != 2 {
		t.Fatalf("$nin = %v, want 2 patterns", nin)
	}
	re := nin[0].(primitive.Regex)
	if re.Pattern != "^Pork$" || re.Options != "i" {
		t.Errorf("pattern = %+v", re)
	}
	if p := nin[1].(primitive.Regex).Pattern; p != `^a\.b$` {
		t.Errorf("metacharacters not quoted: %q", p)
	}
}

func TestBuildDishFilter_ZeroValues(t *testing.T) {
	t.Parallel()

	if q := buildDishFilter(&recommend.DishFilter{}); len(q) != 0 {
		t.Errorf("zero filter = %v, want empty", q)
	}
}

func TestBuildDishFilter_Similarity(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	q := buildDishFilter(&recommend.DishFilter{SimilarTo: &recommend.SimilarityClause{
		ExcludeID:       id,
		Category:        "Soup",
		Tags:            []string{"spicy"},
		IngredientNames: []string{"noodle"},
	}})

	if q["_id"].(bson.M)["$ne"] != id {
		t.Errorf("_id = %v, want $ne source", q["_id"])
	}
	if or := q["$or"].(bson.A); len(or) != 3 {
		t.Errorf("$or = %v, want 3 clauses", or)
	}

	empty := buildDishFilter(&recommend.DishFilter{SimilarTo: &recommend.SimilarityClause{ExcludeID: id}})
	if _, ok := empty["$or"]; ok {
		t.Error("empty clause should not produce $or")
	}
	if in, ok := empty["_id"].(bson.M)["$in"]; !ok || len(in.(bson.A)) != 0 {
		t.Errorf("empty clause should match nothing, got %v", empty["_id"])
	}
}

func TestBuildSort(t *testing.T) {
	t.Parallel()

	got := buildSort(recommend.SortFeed)
	want := bson.D{{Key: "average_rating", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	if len(got) != len(want) {
		t.Fatalf("buildSort() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sort[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if d := buildSort(nil); len(d) != 1 || d[0].Key != "_id" {
		t.Errorf("default sort = %v", d)
	}
}

func TestActivityUpdate(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dish := primitive.NewObjectID()
	w := recommend.InteractionWrite{
		UserID:  primitive.NewObjectID(),
		DishID:  dish,
		Type:    recommend.InteractionFavorite,
		Entry:   &recommend.HistoryEntry{Type: recommend.HistoryEntryDish, ID: dish.Hex(), TS: at},
		At:      at,
		LogSize: 50,
	}
	u := activityUpdate(&w)

	if got := u["$addToSet"].(bson.M)["favorite_dishes"]; got != dish.Hex() {
		t.Errorf("$addToSet = %v", u["$addToSet"])
	}
	if got := u["$set"].(bson.M)["updated_at"]; got != at {
		t.Errorf("$set = %v", u["$set"])
	}
	push := u["$push"].(bson.M)["viewed_dishes_and_users"].(bson.M)
	if push["$position"] != 0 || push["$slice"] != 50 {
		t.Errorf("$push = %v", push)
	}

	w.Entry = nil
	w.LogSize = 0
	if _, ok := activityUpdate(&w)["$push"]; ok {
		t.Error("no entry should mean no $push")
	}
}
