// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/cookrank/internal/recommend"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	ev := &recommend.InteractionEvent{
		UserID:     "65f000000000000000000001",
		DishID:     "65f000000000000000000002",
		Type:       recommend.InteractionFavorite,
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	msg, err := NewMessage(ev)
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if msg.UUID == "" {
		t.Error("message has no UUID")
	}
	if got := msg.Metadata.Get(MetadataEventType); got != EventTypeInteractionRecorded {
		t.Errorf("event_type = %q", got)
	}
	if got := msg.Metadata.Get(MetadataInteractionType); got != "favorite" {
		t.Errorf("interaction_type = %q", got)
	}

	decoded, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if decoded.UserID != ev.UserID || decoded.Type != ev.Type || !decoded.OccurredAt.Equal(ev.OccurredAt) {
		t.Errorf("DecodeMessage() = %+v, want %+v", decoded, ev)
	}
}

func TestDecodeMessage_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		metadata map[string]string
	}{
		{"garbage", "not json", nil},
		{"unknown type", `{"user_id":"u","dish_id":"d","type":"share"}`, nil},
		{"wrong event", `{"type":"view"}`, map[string]string{MetadataEventType: "dish.created"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := message.NewMessage("id", []byte(tt.payload))
			for k, v := range tt.metadata {
				msg.Metadata.Set(k, v)
			}
			if _, err := DecodeMessage(msg); err == nil {
				t.Error("DecodeMessage() should fail")
			}
		})
	}

	msg := message.NewMessage("id", []byte(`{"type":"share"}`))
	if _, err := DecodeMessage(msg); !errors.Is(err, recommend.ErrInvalidInteraction) {
		t.Errorf("error = %v, want ErrInvalidInteraction", err)
	}
}
