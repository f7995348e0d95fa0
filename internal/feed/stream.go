package feed

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/pkg/enums"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// eventHandler is the slice of the feed the stream drives.
type eventHandler interface {
	HandleEvent(ctx context.Context, event ChangeEvent) error
}

// receiver matches the Pub/Sub v2 Subscriber surface.
type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Stream pumps the board subscription into the feed. It runs until the
// context is cancelled.
type Stream struct {
	sub  receiver
	feed eventHandler
	logg *logger.Logger
}

// NewStream wires the board subscription to the feed.
func NewStream(sub receiver, feed eventHandler, logg *logger.Logger) (*Stream, error) {
	if sub == nil {
		return nil, fmt.Errorf("board subscription required")
	}
	if feed == nil {
		return nil, fmt.Errorf("feed required")
	}
	return &Stream{sub: sub, feed: feed, logg: logg}, nil
}

// Run blocks on the subscription's receive loop.
func (s *Stream) Run(ctx context.Context) error {
	if s.logg != nil {
		s.logg.Info(ctx, "board feed stream started")
	}
	return s.sub.Receive(ctx, s.handle)
}

func (s *Stream) handle(ctx context.Context, msg *pubsub.Message) {
	event, err := decodeChangeEvent(msg.Attributes)
	if err != nil {
		// Malformed attributes never become deliverable; ack so the
		// subscription does not redeliver forever.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "decode_error", err.Error()), "discarding undecodable board event")
		}
		msg.Ack()
		return
	}

	if err := s.feed.HandleEvent(ctx, event); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "board event processing failed", err)
		}
		msg.Nack()
		return
	}
	msg.Ack()
}

// decodeChangeEvent rebuilds the ChangeEvent from the publisher's message
// attributes.
func decodeChangeEvent(attributes map[string]string) (ChangeEvent, error) {
	eventType := enums.OutboxEventType(attributes["event_type"])
	if !eventType.IsValid() {
		return ChangeEvent{}, fmt.Errorf("unknown event type %q", attributes["event_type"])
	}
	aggregateType := enums.OutboxAggregateType(attributes["aggregate_type"])
	if !aggregateType.IsValid() {
		return ChangeEvent{}, fmt.Errorf("unknown aggregate type %q", attributes["aggregate_type"])
	}
	aggregateID, err := uuid.Parse(attributes["aggregate_id"])
	if err != nil {
		return ChangeEvent{}, fmt.Errorf("parsing aggregate id: %w", err)
	}
	return ChangeEvent{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
	}, nil
}
