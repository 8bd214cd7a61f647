package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/observability"
)

const (
	// eventChanBufferSize bounds the publisher queue; events beyond it are discarded.
	eventChanBufferSize = 1024
	fanOutTimeout       = 10 * time.Second
)

// Event is a record lifecycle event delivered to the registered providers.
type Event struct {
	ID        uuid.UUID // UUIDv7
	Type      datatypes.EventType
	Timestamp time.Time
	Data      any // *models.DiaryEntry, *models.Note or *models.FinanceRecord
}

// MessagePublisher publishes record events. Record services depend on this, not on the manager.
type MessagePublisher interface {
	PublishEvent(ctx context.Context, eventType datatypes.EventType, data any)
}

// eventPublisher is implemented by providers that consume events.
type eventPublisher interface {
	PublishEvent(ctx context.Context, event Event)
}

// MessagePublisherManager queues events on a buffered channel and fans each one out to every
// registered provider from a single goroutine. Publishing never blocks the request path.
type MessagePublisherManager struct {
	eventChan chan Event
	providers []eventPublisher
	metrics   observability.EventMetrics
	wg        sync.WaitGroup
}

// NewMessagePublisherManager starts the fan-out goroutine. metrics may be nil.
func NewMessagePublisherManager(metrics observability.EventMetrics) *MessagePublisherManager {
	return newMessagePublisherManager(eventChanBufferSize, metrics)
}

func newMessagePublisherManager(bufferSize int, metrics observability.EventMetrics) *MessagePublisherManager {
	m := &MessagePublisherManager{
		eventChan: make(chan Event, bufferSize),
		metrics:   metrics,
	}

	m.wg.Add(1)

	go m.startWorker()

	return m
}

// RegisterProvider adds a provider. Must only be called during startup, before any events are
// published.
func (m *MessagePublisherManager) RegisterProvider(provider eventPublisher) {
	m.providers = append(m.providers, provider)
}

// PublishEvent queues an event. When the channel is full the event is discarded and counted.
func (m *MessagePublisherManager) PublishEvent(ctx context.Context, eventType datatypes.EventType, data any) {
	event := Event{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	select {
	case m.eventChan <- event:
		slog.DebugContext(ctx, "event queued", "event_id", event.ID, "event_type", event.Type.String())
	default:
		if m.metrics != nil {
			m.metrics.RecordEventDiscarded(ctx, event.Type.String())
		}

		slog.WarnContext(ctx, "event channel full, event discarded", "event_id", event.ID, "event_type", event.Type.String())
	}

	if m.metrics != nil {
		m.metrics.SetChannelDepth(len(m.eventChan))
	}
}

func (m *MessagePublisherManager) startWorker() {
	defer m.wg.Done()

	for event := range m.eventChan {
		// Bound each fan-out so one stuck provider cannot stall the queue.
		ctx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
		start := time.Now()

		for _, provider := range m.providers {
			provider.PublishEvent(ctx, event)
		}

		cancel()

		if m.metrics != nil {
			m.metrics.RecordFanOutDuration(context.Background(), time.Since(start), event.Type.String())
			m.metrics.SetChannelDepth(len(m.eventChan))
		}
	}
}

// Shutdown stops accepting events and waits for queued events to be delivered.
func (m *MessagePublisherManager) Shutdown() {
	close(m.eventChan)
	m.wg.Wait()
}
