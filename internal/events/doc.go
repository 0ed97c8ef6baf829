// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

/*
Package events carries recorded interactions between nodes.

The engine publishes an interaction.recorded message for every stored
interaction through Publisher, which implements recommend.InteractionSink.
IndexConsumer subscribes to the same topic and marks users dirty in the
neighbor index when their favorites change, so every node converges without
a full rebuild.

Two brokers are supported:

  - memory: a Watermill GoChannel. Single process only.
  - nats: Watermill over NATS JetStream. The stream is created or updated on
    startup, and an embedded JetStream server can be started for single node
    deployments that do not run a NATS cluster.
*/
package events
