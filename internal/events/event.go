// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// EventTypeInteractionRecorded is the event_type metadata of interaction
// messages.
const EventTypeInteractionRecorded = "interaction.recorded"

// Metadata keys set on every interaction message.
const (
	MetadataEventType       = "event_type"
	MetadataInteractionType = "interaction_type"
	MetadataUserID          = "user_id"
)

// NewMessage encodes an interaction event as a Watermill message with a
// fresh UUID.
func NewMessage(ev *recommend.InteractionEvent) (*message.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(MetadataEventType, EventTypeInteractionRecorded)
	msg.Metadata.Set(MetadataInteractionType, string(ev.Type))
	msg.Metadata.Set(MetadataUserID, ev.UserID)
	return msg, nil
}

// DecodeMessage decodes an interaction message payload.
func DecodeMessage(msg *message.Message) (*recommend.InteractionEvent, error) {
	if t := msg.Metadata.Get(MetadataEventType); t != "" && t != EventTypeInteractionRecorded {
		return nil, fmt.Errorf("unexpected event type %q", t)
	}
	var ev recommend.InteractionEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal interaction event: %w", err)
	}
	if !ev.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", recommend.ErrInvalidInteraction, ev.Type)
	}
	return &ev, nil
}
