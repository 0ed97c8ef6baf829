// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

/*
Package mongo implements recommend.Repository on MongoDB.

Three collections are used:

  - dishes: one document per dish, keyed by ObjectID.
  - user_activity: one document per user holding favorite, cooked and viewed
    id sets plus the bounded interaction log (viewed_dishes_and_users).
  - user_preferences: explicit cuisine, difficulty and dietary filters.

Interaction writes are single round trip upserts: $addToSet keeps the id sets
duplicate free and $push with $position 0 and $slice keeps the log newest
first and bounded. Dish counters are bumped with $inc.

Dietary restrictions are applied server side with case-insensitive anchored
regular expressions under $nin, matching the in-memory filter semantics.
*/
package mongo
