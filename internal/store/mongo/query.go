// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// buildDishFilter translates a DishFilter into a query document.
func buildDishFilter(f *recommend.DishFilter) bson.M {
	q := bson.M{}
	if f.ActiveOnly {
		q["is_active"] = true
	}
	if f.MinRating > 0 {
		q["average_rating"] = bson.M{"$gte": f.MinRating}
	}
	if len(f.Cuisines) > 0 {
		q["cuisine_type"] = bson.M{"$in": f.Cuisines}
	}
	if f.Difficulty != "" {
		q["difficulty"] = f.Difficulty
	}
	if f.MinRatingsCount > 0 {
		// ratings.N exists only when the array has at least N+1 entries.
		q[fmt.Sprintf("ratings.%d", f.MinRatingsCount-1)] = bson.M{"$exists": true}
	}
	if len(f.ExcludeTags) > 0 {
		q["tags"] = bson.M{"$nin": tagPatterns(f.ExcludeTags)}
	}
	if s := f.SimilarTo; s != nil {
		q["_id"] = bson.M{"$ne": s.ExcludeID}
		if or := similarityClauses(s); len(or) > 0 {
			q["$or"] = or
		} else {
			// Nothing to match on means nothing is similar.
			q["_id"] = bson.M{"$in": bson.A{}}
		}
	}
	return q
}

func similarityClauses(s *recommend.SimilarityClause) bson.A {
	var or bson.A
	if s.Category != "" {
		or = append(or, bson.M{"category": s.Category})
	}
	if len(s.Tags) > 0 {
		or = append(or, bson.M{"tags": bson.M{"$in": s.Tags}})
	}
	if s.CuisineType != "" {
		or = append(or, bson.M{"cuisine_type": s.CuisineType})
	}
	if len(s.IngredientNames) > 0 {
		or = append(or, bson.M{"ingredients.name": bson.M{"$in": s.IngredientNames}})
	}
	return or
}

// tagPatterns builds anchored case-insensitive patterns for exact tag
// matches regardless of case.
func tagPatterns(terms []string) bson.A {
	out := make(bson.A, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(t) + "$", Options: "i"})
	}
	return out
}

// buildSort converts sort fields into an ordered sort document.
func buildSort(fields []recommend.SortField) bson.D {
	if len(fields) == 0 {
		return bson.D{{Key: "_id", Value: 1}}
	}
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

// activityUpdate builds the upsert document for one interaction.
func activityUpdate(w *recommend.InteractionWrite) bson.M {
	update := bson.M{
		"$set": bson.M{"updated_at": w.At},
	}
	if field := w.Type.ActivityField(); field != "" {
		update["$addToSet"] = bson.M{field: w.DishID.Hex()}
	}
	if w.Entry != nil {
		push := bson.M{
			"$each":     bson.A{w.Entry},
			"$position": 0,
		}
		if w.LogSize > 0 {
			push["$slice"] = w.LogSize
		}
		update["$push"] = bson.M{"viewed_dishes_and_users": push}
	}
	return update
}
