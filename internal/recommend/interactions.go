// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"fmt"
	"time"
)

// InteractionEvent is emitted after an interaction is stored.
type InteractionEvent struct {
	UserID     string          `json:"user_id"`
	DishID     string          `json:"dish_id"`
	Type       InteractionType `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ChangesFavorites reports whether the event alters the user's favorites.
func (ev *InteractionEvent) ChangesFavorites() bool {
	return ev.Type == InteractionFavorite || ev.Type == InteractionLike
}

// InteractionSink receives recorded interactions.
type InteractionSink interface {
	PublishInteraction(ctx context.Context, ev *InteractionEvent) error
}

// RecordInteraction stores a user's interaction with a dish.
//
// A view pushes a log entry and adds the dish to the viewed set; favorite
// and like add it to the favorites; cook adds it to the cooked set. Each
// also increments the matching dish counter. Set insertions are idempotent,
// counters are not. Unknown dishes are ignored. Malformed ids and unknown
// types return an error.
func (e *Engine) RecordInteraction(ctx context.Context, userID, dishID string, typ InteractionType) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidInteraction, typ)
	}
	uid, err := ParseID(userID)
	if err != nil {
		return err
	}
	did, err := ParseID(dishID)
	if err != nil {
		return err
	}

	dish, err := e.repo.FindDish(ctx, did)
	if err != nil {
		if isNotFound(err) {
			e.logger.Debug().Str("dish_id", dishID).Msg("Interaction for unknown dish ignored")
			return nil
		}
		return fmt.Errorf("find dish %s: %w", dishID, err)
	}

	now := e.now().UTC()
	write := InteractionWrite{
		UserID:  uid,
		DishID:  did,
		Type:    typ,
		At:      now,
		LogSize: e.config.Limits.HistoryCap,
	}
	if typ == InteractionView {
		write.Entry = &HistoryEntry{
			Type:  HistoryEntryDish,
			ID:    did.Hex(),
			Name:  dish.Name,
			Image: dish.ImageURL,
			TS:    now,
		}
	}

	if err := e.repo.ApplyInteraction(ctx, write); err != nil {
		return fmt.Errorf("record %s interaction: %w", typ, err)
	}

	ev := &InteractionEvent{UserID: uid.Hex(), DishID: did.Hex(), Type: typ, OccurredAt: now}
	if e.index != nil && ev.ChangesFavorites() {
		e.index.MarkDirty(uid)
	}
	if e.sink != nil {
		if err := e.sink.PublishInteraction(ctx, ev); err != nil {
			e.logger.Warn().Err(err).
				Str("user_id", ev.UserID).
				Str("type", string(typ)).
				Msg("Failed to publish interaction event")
		}
	}
	if e.hooks.OnInteraction != nil {
		e.hooks.OnInteraction(typ)
	}
	return nil
}
