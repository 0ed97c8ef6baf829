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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Note: This package depends on no other internal package. Storage,
// caching, events and metrics are plugged in through interfaces and hooks.

// ResultCache stores serialized results for the non-personalized paths.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Reranker post-processes a score-sorted list before diversification.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, items []RankedDish, k int) []RankedDish
}

// Hooks observe engine activity, typically to feed metrics.
type Hooks struct {
	OnRecommendation func(algorithm string, d time.Duration)
	OnScoringFailure func()
	OnInteraction    func(typ InteractionType)
	OnCache          func(hit bool)
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests        int64 `json:"requests"`
	Fallbacks       int64 `json:"fallbacks"`
	ScoringFailures int64 `json:"scoring_failures"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
}

// Engine ranks dishes for users. It is safe for concurrent use; it holds no
// per-request state.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	repo     Repository
	scorer   *Scorer
	location *time.Location
	now      func() time.Time

	index *NeighborIndex
	cache ResultCache
	sink  InteractionSink
	hooks Hooks

	rerankers []Reranker
	rrMu      sync.RWMutex

	requests        atomic.Int64
	fallbacks       atomic.Int64
	scoringFailures atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithNeighborIndex serves similarity lookups from a precomputed index.
func WithNeighborIndex(idx *NeighborIndex) Option {
	return func(e *Engine) { e.index = idx }
}

// WithResultCache caches trending, popular and similar results.
func WithResultCache(c ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithInteractionSink publishes recorded interactions.
func WithInteractionSink(s InteractionSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithHooks installs observation hooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine over repo.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, repo Repository, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	loc, err := time.LoadLocation(cfg.Patterns.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		repo:     repo,
		location: loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scorer = NewScorer(e.config.Weights, e.config.Similarity, e.now)
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// NeighborIndex returns the attached index, or nil.
func (e *Engine) NeighborIndex() *NeighborIndex {
	return e.index
}

// RegisterReranker adds a reranker to the post-processing pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.rrMu.Lock()
	defer e.rrMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:        e.requests.Load(),
		Fallbacks:       e.fallbacks.Load(),
		ScoringFailures: e.scoringFailures.Load(),
		CacheHits:       e.cacheHits.Load(),
		CacheMisses:     e.cacheMisses.Load(),
	}
}

// userContext is everything loaded about the requesting user.
type userContext struct {
	activity   *UserActivity
	prefs      *UserPreferences
	candidates []Dish
}

// GetRecommendations returns personalized, diversified recommendations.
// Users without activity, with an empty interaction log, or with no
// remaining candidates get the popular fallback.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, opts RecommendOptions) (*Recommendations, error) {
	start := time.Now()
	e.requests.Add(1)

	uid, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	opts.Limit = e.config.clampLimit(opts.Limit, e.config.Limits.DefaultLimit)
	minRating := ratingFloor(opts.MinRating, e.config.Limits.DefaultMinRating)
	logger := e.logger.With().Str("user_id", userID).Int("limit", opts.Limit).Logger()

	uc, err := e.loadUserContext(ctx, uid, minRating)
	if err != nil {
		return nil, err
	}

	if uc.activity == nil || len(uc.activity.History) == 0 {
		logger.Debug().Msg("No interaction history, using popular fallback")
		return e.fallback(ctx, start, opts, uc.prefs)
	}

	candidates := uc.candidates
	if opts.ExcludeSeen {
		candidates = excludeSeen(candidates, SeenDishIDs(uc.activity))
	}
	if len(candidates) == 0 {
		logger.Debug().Msg("No candidates left, using popular fallback")
		return e.fallback(ctx, start, opts, uc.prefs)
	}

	patterns, err := e.analyzePatterns(ctx, uc.activity)
	if err != nil {
		logger.Warn().Err(err).Msg("Ingredient mining failed, continuing without ingredient signal")
	}

	neighbors, err := e.FindSimilarUsers(ctx, uid, uc.activity.FavoriteSet())
	if err != nil {
		return nil, err
	}
	neighborActivities, err := e.LoadSimilarActivities(ctx, neighbors)
	if err != nil {
		return nil, err
	}

	input := &ScoreInput{
		Activity:           uc.activity,
		Preferences:        uc.prefs,
		Patterns:           patterns,
		Neighbors:          neighbors,
		NeighborActivities: neighborActivities,
	}
	scored := e.scoreCandidates(candidates, input, logger)
	scored = e.applyRerankers(ctx, scored)
	items := Diversify(scored, opts.Limit, e.config.Diversity)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("neighbors", len(neighbors)).
		Int("returned", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations generated")

	e.observe(AlgorithmPersonalized, start)
	return &Recommendations{Items: items, Algorithm: AlgorithmPersonalized}, nil
}

// loadUserContext fetches activity, preferences and candidates
// concurrently. Candidates depend on preferences, so they are selected once
// preferences arrive.
func (e *Engine) loadUserContext(ctx context.Context, uid primitive.ObjectID, minRating float64) (*userContext, error) {
	uc := &userContext{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		activity, err := e.repo.FindUserActivity(gctx, uid)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("find user activity: %w", err)
		}
		uc.activity = activity
		return nil
	})
	g.Go(func() error {
		prefs, err := e.repo.FindUserPreferences(gctx, uid)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("find user preferences: %w", err)
		}
		uc.prefs = prefs
		candidates, err := e.selectCandidates(gctx, prefs, minRating)
		if err != nil {
			return err
		}
		uc.candidates = candidates
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uc, nil
}

func (e *Engine) fallback(ctx context.Context, start time.Time, opts RecommendOptions, prefs *UserPreferences) (*Recommendations, error) {
	e.fallbacks.Add(1)
	items, err := e.GetPopularDishes(ctx, opts.Limit, prefs, opts.MinRating)
	if err != nil {
		return nil, err
	}
	e.observe(AlgorithmPopular, start)
	return &Recommendations{Items: items, Algorithm: AlgorithmPopular}, nil
}

// scoreCandidates scores and sorts candidates. A dish that fails to score
// is logged and skipped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) scoreCandidates(candidates []Dish, input *ScoreInput, logger zerolog.Logger) []RankedDish {
	scored := make([]RankedDish, 0, len(candidates))
	for i := range candidates {
		breakdown, err := e.scorer.Score(&candidates[i], input)
		if err != nil {
			e.scoringFailures.Add(1)
			if e.hooks.OnScoringFailure != nil {
				e.hooks.OnScoringFailure()
			}
			logger.Warn().Err(err).Str("dish_id", candidates[i].IDHex()).Msg("Skipping dish that failed to score")
			continue
		}
		scored = append(scored, RankedDish{
			Dish:      candidates[i],
			Score:     breakdown.Total(),
			Breakdown: breakdown,
			Reason:    explain(breakdown, e.config.Weights),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// applyRerankers reorders the full scored list; truncation is left to
// Diversify.
func (e *Engine) applyRerankers(ctx context.Context, items []RankedDish) []RankedDish {
	e.rrMu.RLock()
	defer e.rrMu.RUnlock()

	for _, rr := range e.rerankers {
		items = rr.Rerank(ctx, items, len(items))
	}
	return items
}

func (e *Engine) observe(algorithm string, start time.Time) {
	if e.hooks.OnRecommendation != nil {
		e.hooks.OnRecommendation(algorithm, time.Since(start))
	}
}

func (e *Engine) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if e.cache == nil || !e.config.Cache.Enabled {
		return false
	}
	data, ok := e.cache.Get(ctx, key)
	if ok {
		if err := json.Unmarshal(data, dst); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
			ok = false
		}
	}
	if ok {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}
	if e.hooks.OnCache != nil {
		e.hooks.OnCache(ok)
	}
	return ok
}

func (e *Engine) cacheSet(ctx context.Context, key string, value interface{}) {
	if e.cache == nil || !e.config.Cache.Enabled {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	e.cache.Set(ctx, key, data, e.config.Cache.TTL)
}

// cacheKey joins the parts of a cache key.
func cacheKey(kind string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString("recommend:")
	b.WriteString(kind)
	for _, p := range parts {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
