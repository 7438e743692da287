// Package kafkaconsumer consumes OSM update events and expires the
// affected cached lookups.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/citygrid/hexpoi/internal/invalidation"
	"github.com/citygrid/hexpoi/internal/metrics"
)

// Invalidator drops every cached lookup for a place.
type Invalidator interface {
	InvalidatePlace(ctx context.Context, place string) (int, error)
}

type Consumer struct {
	cfg   Config
	cache Invalidator
	log   zerolog.Logger
}

func New(cfg Config, cache Invalidator, log zerolog.Logger) *Consumer {
	return &Consumer{cfg: cfg, cache: cache, log: log}
}

// Start joins the consumer group and processes events until the context
// is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil {
		return errors.New("kafkaconsumer: missing invalidator")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.log.Info().
		Strs("brokers", c.cfg.Brokers).
		Str("topic", c.cfg.Topic).
		Str("group", c.cfg.GroupID).
		Msg("invalidation consumer starting")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.log.Error().Err(err).Str("topic", c.cfg.Topic).Msg("consumer error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single event message. Decode and validation
// failures are counted and skipped; invalidation failures are returned
// so the message is not acked silently.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		metrics.IncInvalidation("decode_error")
		c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("undecodable invalidation event")
		return nil
	}
	if err := ev.Validate(); err != nil {
		metrics.IncInvalidation("invalid")
		c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("invalid invalidation event")
		return nil
	}

	n, err := c.cache.InvalidatePlace(ctx, ev.Place)
	if err != nil {
		metrics.IncInvalidation("error")
		return fmt.Errorf("invalidate place %q: %w", ev.Place, err)
	}
	metrics.IncInvalidation("ok")
	c.log.Info().Str("place", ev.Place).Str("op", ev.Op).Int("keys", n).Msg("cache invalidated")
	return nil
}

type groupHandler struct {
	process func(ctx context.Context, msg *sarama.ConsumerMessage) error
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.process(sess.Context(), msg); err != nil {
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
