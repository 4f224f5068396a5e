package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
	"github.com/sasetin42/RidersBUD-sub003/internal/websocket"
	"github.com/sasetin42/RidersBUD-sub003/pkg/jobs"
)

// Booking event types.
const (
	BookingEventCreated  = "booking_created"
	BookingEventStatus   = "booking_status"
	BookingEventAssigned = "mechanic_assigned"
)

// BookingEvent describes a booking change worth telling the customer and mechanic about.
type BookingEvent struct {
	Type        string               `json:"type"`
	BookingID   string               `json:"bookingId"`
	CustomerID  string               `json:"customerId"`
	MechanicID  string               `json:"mechanicId,omitempty"`
	Status      models.BookingStatus `json:"status"`
	Date        string               `json:"date"`
	Time        string               `json:"time"`
	ServiceName string               `json:"serviceName"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

type realtimePublisher interface {
	Publish(msg *websocket.Message)
}

// NotificationConfig sizes the delivery worker pool.
type NotificationConfig struct {
	Workers int
	Retries int
}

// NotificationService delivers booking events to realtime clients through a worker queue.
// Delivery is best effort and never blocks the booking write that produced the event.
type NotificationService struct {
	hub    realtimePublisher
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service. Call Start before use.
func NewNotificationService(hub realtimePublisher, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{hub: hub, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: 256,
		MaxRetries: cfg.Retries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// BookingChanged queues event for delivery.
func (s *NotificationService) BookingChanged(ctx context.Context, event BookingEvent) {
	job := jobs.Job{ID: uuid.NewString(), Type: event.Type, Payload: event}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("booking notification dropped", zap.String("booking_id", event.BookingID), zap.Error(err))
	}
}

// StoreChanged tells every client that a new database version is available.
func (s *NotificationService) StoreChanged(change store.Change) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(&websocket.Message{
		Type:      websocket.MessageTypeDatabaseChanged,
		Version:   change.Version,
		Source:    string(change.Source),
		Timestamp: change.At.UnixMilli(),
	})
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(BookingEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	if s.hub == nil {
		return fmt.Errorf("realtime hub unavailable")
	}
	s.hub.Publish(&websocket.Message{
		Type:       websocket.MessageTypeBookingStatus,
		BookingID:  event.BookingID,
		Status:     string(event.Status),
		Date:       event.Date,
		Time:       event.Time,
		Message:    describeBookingEvent(event),
		Timestamp:  event.OccurredAt.UnixMilli(),
		Recipients: []string{event.CustomerID, event.MechanicID},
	})
	return nil
}

func describeBookingEvent(event BookingEvent) string {
	switch event.Type {
	case BookingEventCreated:
		return fmt.Sprintf("%s booked for %s at %s", event.ServiceName, event.Date, event.Time)
	case BookingEventAssigned:
		return fmt.Sprintf("A mechanic has been assigned to your %s booking", event.ServiceName)
	default:
		return fmt.Sprintf("Your %s booking is now %s", event.ServiceName, event.Status)
	}
}
