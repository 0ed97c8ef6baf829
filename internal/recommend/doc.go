// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package recommend implements the personalized dish ranking engine.
//
// # Architecture
//
// A personalized request flows through five stages:
//
//   - Candidate selection: active dishes above a rating floor, restricted
//     by the user's cuisine and difficulty preferences
//   - Pattern analysis: meal-time histogram and mined favorite ingredients
//     from the user's interaction log
//   - Similarity search: Jaccard similarity over favorite sets, served by a
//     NeighborIndex when warm and by a repository scan otherwise
//   - Scoring: six weighted components (rating quality, collaborative,
//     ingredient match, time habit, popularity, recency)
//   - Diversification: a per-category cap with score-ordered backfill
//
// Users without history, and requests whose candidate set is empty, take
// the popular fallback instead.
//
// # Missing Signals
//
// Missing data never fails a request. Each component returns a documented
// neutral value (usually 0.5) when its signal is absent, and a dish that
// cannot be scored is logged and skipped. Only malformed ids and unknown
// interaction types surface as errors (ErrInvalidID, ErrInvalidInteraction).
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, repo, logger,
//	    recommend.WithNeighborIndex(index),
//	    recommend.WithResultCache(cache),
//	)
//	recs, err := engine.GetRecommendations(ctx, userID, recommend.RecommendOptions{
//	    Limit:       20,
//	    ExcludeSeen: true,
//	})
//
// # Thread Safety
//
// Engine and NeighborIndex are safe for concurrent use.
package recommend
