package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/observability"
)

// Grading event kinds.
const (
	EventAssessmentGraded    = "assessment_response.graded"
	EventProjectGraded       = "project_submission.graded"
	EventAssessmentSubmitted = "assessment_response.submitted"
	EventProjectSubmitted    = "project_submission.submitted"
)

const gradingQueueGroup = "progress-total-score"

// GradingEvent announces that a student's scores changed after a committed write.
type GradingEvent struct {
	ID         string                 `json:"id"`
	Kind       string                 `json:"kind"`
	StudentID  uint                   `json:"student_id"`
	EntityType models.GradeEntityType `json:"entity_type"`
	EntityID   uint                   `json:"entity_id"`
	HistoryID  *uint                  `json:"history_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Source     string                 `json:"source"`
}

// NewGradingEvent fills the identifier and timestamp of an event.
func NewGradingEvent(kind string, studentID uint, entityType models.GradeEntityType, entityID uint, historyID *uint) GradingEvent {
	return GradingEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		StudentID:  studentID,
		EntityType: entityType,
		EntityID:   entityID,
		HistoryID:  historyID,
		OccurredAt: time.Now().UTC(),
	}
}

// GradingEventHandler reacts to a grading event.
type GradingEventHandler func(ctx context.Context, event GradingEvent) error

// GradingEventBus delivers grading events to subscribers.
type GradingEventBus interface {
	Publish(ctx context.Context, event GradingEvent) error
	Subscribe(handler GradingEventHandler)
}

type handlerSet struct {
	mu       sync.RWMutex
	handlers []GradingEventHandler
}

func (h *handlerSet) add(handler GradingEventHandler) {
	if handler == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

func (h *handlerSet) dispatch(ctx context.Context, event GradingEvent) error {
	h.mu.RLock()
	handlers := make([]GradingEventHandler, len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LocalGradingEventBus dispatches events synchronously in-process, so every
// subscriber has finished by the time Publish returns.
type LocalGradingEventBus struct {
	handlers handlerSet
}

// NewLocalGradingEventBus constructs an in-process bus.
func NewLocalGradingEventBus() *LocalGradingEventBus {
	return &LocalGradingEventBus{}
}

// Publish runs every subscriber and joins their errors.
func (b *LocalGradingEventBus) Publish(ctx context.Context, event GradingEvent) error {
	observability.GradingEvents().WithLabelValues(event.Kind).Inc()
	return b.handlers.dispatch(ctx, event)
}

// Subscribe registers a handler.
func (b *LocalGradingEventBus) Subscribe(handler GradingEventHandler) {
	b.handlers.add(handler)
}

// BrokerGradingEventBus ships events through NATS when connected, otherwise
// through Redis pub/sub. NATS deliveries use a queue group so one replica
// handles each event; Redis deliveries reach every replica, which is safe
// because subscribers are idempotent.
type BrokerGradingEventBus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	handlers     handlerSet
	logger       zerolog.Logger
	nodeID       string
}

// NewBrokerGradingEventBus constructs a broker-backed bus. channelBase names
// the Redis channel and, with ':' replaced by '.', the NATS subject.
func NewBrokerGradingEventBus(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *BrokerGradingEventBus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &BrokerGradingEventBus{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "grading_event_bus").Logger(),
		nodeID:       uuid.NewString(),
	}
}

// Subscribe registers a handler for events received from the broker.
func (b *BrokerGradingEventBus) Subscribe(handler GradingEventHandler) {
	b.handlers.add(handler)
}

func (b *BrokerGradingEventBus) useNATS() bool {
	return b.nats != nil && b.natsSubject != ""
}

func (b *BrokerGradingEventBus) useRedis() bool {
	return !b.useNATS() && b.redis != nil && b.redisChannel != ""
}

// Publish serialises the event onto the active transport.
func (b *BrokerGradingEventBus) Publish(ctx context.Context, event GradingEvent) error {
	if event.Source == "" {
		event.Source = b.nodeID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	switch {
	case b.useNATS():
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	case b.useRedis():
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	default:
		return errors.New("no grading event transport configured")
	}

	observability.GradingEvents().WithLabelValues(event.Kind).Inc()
	return nil
}

// Start launches the consumer for the active transport. It returns once the
// subscription is established; consumption stops when ctx is cancelled.
func (b *BrokerGradingEventBus) Start(ctx context.Context) error {
	switch {
	case b.useNATS():
		return b.consumeNATS(ctx)
	case b.useRedis():
		return b.consumeRedis(ctx)
	default:
		return errors.New("no grading event transport configured")
	}
}

func (b *BrokerGradingEventBus) consumeRedis(ctx context.Context) error {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer func() { _ = pubsub.Close() }()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				b.logger.Error().Err(err).Msg("grading event redis subscription closed")
				return
			}
			b.handlePayload(ctx, []byte(msg.Payload))
		}
	}()

	return nil
}

func (b *BrokerGradingEventBus) consumeNATS(ctx context.Context) error {
	sub, err := b.nats.QueueSubscribe(b.natsSubject, gradingQueueGroup, func(msg *nats.Msg) {
		b.handlePayload(ctx, msg.Data)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain grading event nats subscription")
		}
	}()

	return nil
}

func (b *BrokerGradingEventBus) handlePayload(ctx context.Context, payload []byte) {
	var event GradingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid grading event payload")
		return
	}

	if err := b.handlers.dispatch(ctx, event); err != nil {
		b.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("kind", event.Kind).
			Uint("student_id", event.StudentID).
			Msg("grading event handler failed")
	}
}
